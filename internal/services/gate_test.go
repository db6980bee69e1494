package services

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticket-checker/internal/status"
)

func setupTestGateService() (*GateService, redismock.ClientMock) {
	db, mock := redismock.NewClientMock()
	service := &GateService{
		Redis: db,
		ttl:   2 * time.Minute,
	}
	return service, mock
}

func TestGateService_AcquireIdleGate(t *testing.T) {
	service, mock := setupTestGateService()
	defer mock.ClearExpect()

	mock.ExpectSetNX("gate:scan:device-1", GateResolving, 2*time.Minute).SetVal(true)

	err := service.Acquire(context.Background(), "device-1")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGateService_AcquireHeldGate(t *testing.T) {
	service, mock := setupTestGateService()
	defer mock.ClearExpect()

	mock.ExpectSetNX("gate:scan:device-1", GateResolving, 2*time.Minute).SetVal(false)

	err := service.Acquire(context.Background(), "device-1")

	assert.ErrorIs(t, err, status.ErrGateHeld)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGateService_Release(t *testing.T) {
	service, mock := setupTestGateService()
	defer mock.ClearExpect()

	mock.ExpectDel("gate:scan:device-1").SetVal(1)

	err := service.Release(context.Background(), "device-1")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGateService_State(t *testing.T) {
	service, mock := setupTestGateService()
	defer mock.ClearExpect()

	mock.ExpectGet("gate:scan:device-1").SetVal(GateResolving)
	state, err := service.State(context.Background(), "device-1")
	require.NoError(t, err)
	assert.Equal(t, GateResolving, state)

	mock.ExpectGet("gate:scan:device-2").RedisNil()
	state, err = service.State(context.Background(), "device-2")
	require.NoError(t, err)
	assert.Equal(t, GateIdle, state)

	assert.NoError(t, mock.ExpectationsWereMet())
}
