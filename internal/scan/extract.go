// Package scan turns raw QR payloads into ticket identifiers.
package scan

import (
	"regexp"
	"strings"
)

// Kind tags the identifier recovered from a scanned code.
type Kind int

const (
	// KindUnrecognized means no known pattern matched.
	KindUnrecognized Kind = iota

	// KindDetail identifies one physical ticket allocation.
	KindDetail

	// KindDocument identifies a payment/order, possibly covering
	// several tickets.
	KindDocument
)

// Identifier is the immutable result of extracting one scan payload.
type Identifier struct {
	Kind  Kind
	Value string
}

// The QR codes printed on tickets embed one of two URL suffixes. The
// plural form carries the detail id and is checked first; the check
// order is fixed so a degenerate payload matching both resolves to the
// detail id.
var (
	detailPattern   = regexp.MustCompile(`/invoices/(\d+)$`)
	documentPattern = regexp.MustCompile(`/invoice/(\d+)$`)
)

// Extract parses a raw scan payload. It never fails: anything that
// matches neither pattern comes back as KindUnrecognized.
func Extract(raw string) Identifier {
	raw = strings.TrimSpace(raw)

	if m := detailPattern.FindStringSubmatch(raw); m != nil {
		return Identifier{Kind: KindDetail, Value: m[1]}
	}
	if m := documentPattern.FindStringSubmatch(raw); m != nil {
		return Identifier{Kind: KindDocument, Value: m[1]}
	}
	return Identifier{Kind: KindUnrecognized}
}
