package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ticket-checker/internal/status"
)

// Gate states per operator device.
const (
	GateIdle      = "idle"
	GateResolving = "resolving"
)

// GateService is the re-entrancy gate: one resolution at a time per
// device, held from extraction until the operator acts or dismisses.
// It lives in Redis with a TTL so a crashed device frees itself.
type GateService struct {
	Redis *redis.Client
	ttl   time.Duration
}

func NewGateService(redisClient *redis.Client, ttl time.Duration) *GateService {
	if ttl == 0 {
		ttl = 2 * time.Minute
	}
	return &GateService{
		Redis: redisClient,
		ttl:   ttl,
	}
}

func gateKey(deviceID string) string {
	return fmt.Sprintf("gate:scan:%s", deviceID)
}

// Acquire moves the device gate Idle → Resolving. status.ErrGateHeld
// when a resolution is already running.
func (s *GateService) Acquire(ctx context.Context, deviceID string) error {
	ok, err := s.Redis.SetNX(ctx, gateKey(deviceID), GateResolving, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("gate: acquire: %w", err)
	}
	if !ok {
		return status.ErrGateHeld
	}
	return nil
}

// Release moves the gate back to Idle. Releasing an idle gate is a
// no-op.
func (s *GateService) Release(ctx context.Context, deviceID string) error {
	if err := s.Redis.Del(ctx, gateKey(deviceID)).Err(); err != nil {
		return fmt.Errorf("gate: release: %w", err)
	}
	return nil
}

// State reports the current gate state for a device.
func (s *GateService) State(ctx context.Context, deviceID string) (string, error) {
	val, err := s.Redis.Get(ctx, gateKey(deviceID)).Result()
	if err == redis.Nil {
		return GateIdle, nil
	}
	if err != nil {
		return "", fmt.Errorf("gate: state: %w", err)
	}
	return val, nil
}
