package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchit/watchit/pkg/services"
)

func TestSettingsService_GetUnsetReturnsFalse(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewSettingsService(db)

	_, ok, err := svc.Get(context.Background(), "paused_until")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSettingsService_SetAndGet(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewSettingsService(db)

	require.NoError(t, svc.Set(context.Background(), "paused_until", "1700000000000"))
	value, ok, err := svc.Get(context.Background(), "paused_until")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1700000000000", value)
}

func TestSettingsService_SetUpserts(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewSettingsService(db)

	require.NoError(t, svc.Set(context.Background(), "k", "v1"))
	require.NoError(t, svc.Set(context.Background(), "k", "v2"))

	value, _, err := svc.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", value)
}

func TestSettingsService_Delete(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewSettingsService(db)

	require.NoError(t, svc.Set(context.Background(), "k", "v"))
	require.NoError(t, svc.Delete(context.Background(), "k"))

	_, ok, err := svc.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
