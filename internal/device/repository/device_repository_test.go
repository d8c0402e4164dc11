package repository

import (
	"testing"
	"time"

	"todo-backend/pkg/clock"
	"todo-backend/pkg/kvstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceRepository(t *testing.T) {
	start := time.Date(2024, 11, 22, 12, 0, 0, 0, time.UTC)
	clk := clock.NewFake(start)
	store := kvstore.NewMemory()
	repo := NewSlotDeviceRepository(store, "devices", clk)

	tokens, err := repo.ListTokens()
	require.NoError(t, err)
	assert.Empty(t, tokens)

	first, err := repo.SaveToken("token-a", "Firefox")
	require.NoError(t, err)
	_, err = repo.SaveToken("token-b", "Pixel 8")
	require.NoError(t, err)

	clk.Advance(time.Hour)
	again, err := repo.SaveToken("token-a", "Firefox 132")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.True(t, again.CreatedAt.Equal(start))
	assert.True(t, again.UpdatedAt.Equal(start.Add(time.Hour)))

	tokens, err = NewSlotDeviceRepository(store, "devices", clk).ListTokens()
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, "token-a", tokens[0].Token)
	assert.Equal(t, "Firefox 132", tokens[0].DeviceInfo)
	assert.Equal(t, "token-b", tokens[1].Token)

	require.NoError(t, repo.DeleteToken("token-a"))
	require.NoError(t, repo.DeleteToken("never-registered"))
	tokens, err = repo.ListTokens()
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "token-b", tokens[0].Token)
}

func TestDeviceRepository_RejectsEmptyToken(t *testing.T) {
	repo := NewSlotDeviceRepository(kvstore.NewMemory(), "devices", clock.NewFake(time.Now()))

	_, err := repo.SaveToken("", "x")
	assert.ErrorIs(t, err, ErrEmptyToken)
}

func TestDeviceRepository_CorruptSlot(t *testing.T) {
	store := kvstore.NewMemory()
	require.NoError(t, store.Put("devices", []byte("nope")))
	repo := NewSlotDeviceRepository(store, "devices", clock.NewFake(time.Now()))

	_, err := repo.ListTokens()
	assert.ErrorContains(t, err, "failed to decode devices")
}
