package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateValidatesPhone(t *testing.T) {
	m := NewManager(NewMemoryStore(), nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		phone   string
		wantErr error
	}{
		{"valid nigerian number", "+234 803 123 4567", nil},
		{"valid formatted number", "(234) 803-123-4567", nil},
		{"too short", "12345", ErrInvalidPhone},
		{"empty", "", ErrInvalidPhone},
		{"letters only", "not-a-phone", ErrInvalidPhone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess, err := m.Create(ctx, "client-1", tt.phone, "", "Ada Obi")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "+2348031234567", sess.Phone)
			assert.NotEmpty(t, sess.SessionID)
		})
	}
}

func TestCreateRequiresName(t *testing.T) {
	m := NewManager(NewMemoryStore(), nil)
	_, err := m.Create(context.Background(), "client-1", "+2348031234567", "", "   ")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestCreateMintsFreshSessionID(t *testing.T) {
	m := NewManager(NewMemoryStore(), nil)
	ctx := context.Background()

	first, err := m.Create(ctx, "client-1", "+2348031234567", "", "Ada Obi")
	require.NoError(t, err)
	second, err := m.Create(ctx, "client-1", "+2348031234567", "", "Ada Obi")
	require.NoError(t, err)

	assert.NotEqual(t, first.SessionID, second.SessionID)
}

func TestGetActiveTTLBoundary(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	clock := now
	m := NewManager(NewMemoryStore(), nil, WithClock(func() time.Time { return clock }))
	ctx := context.Background()

	created, err := m.Create(ctx, "client-1", "+2348031234567", "ada@example.com", "Ada Obi")
	require.NoError(t, err)

	// Any time inside [T, T+24h) returns the session.
	clock = now.Add(23*time.Hour + 59*time.Minute)
	got, err := m.GetActive(ctx, "client-1")
	require.NoError(t, err)
	assert.Equal(t, created.SessionID, got.SessionID)

	// At exactly T+24h the session is expired and cleared.
	clock = now.Add(24 * time.Hour)
	_, err = m.GetActive(ctx, "client-1")
	assert.ErrorIs(t, err, ErrSessionExpired)

	// Subsequent reads see nothing: the expired session was discarded.
	_, err = m.GetActive(ctx, "client-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestGetActiveMissing(t *testing.T) {
	m := NewManager(NewMemoryStore(), nil)
	_, err := m.GetActive(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestClear(t *testing.T) {
	m := NewManager(NewMemoryStore(), nil)
	ctx := context.Background()

	_, err := m.Create(ctx, "client-1", "+2348031234567", "", "Ada Obi")
	require.NoError(t, err)
	require.NoError(t, m.Clear(ctx, "client-1"))

	_, err = m.GetActive(ctx, "client-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestNormalizePhone(t *testing.T) {
	if got := NormalizePhone(" +234 (803) 123-4567 "); got != "+2348031234567" {
		t.Fatalf("unexpected normalization: %s", got)
	}
	if got := NormalizePhone(""); got != "" {
		t.Fatalf("expected empty result, got %s", got)
	}
}
