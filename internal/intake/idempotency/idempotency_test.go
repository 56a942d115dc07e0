package idempotency_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aussiebroadwan/leadflow/internal/intake/idempotency"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]func(t *testing.T) (idempotency.Store, func(time.Duration)) {
	return map[string]func(t *testing.T) (idempotency.Store, func(time.Duration)){
		"memory": func(t *testing.T) (idempotency.Store, func(time.Duration)) {
			m := idempotency.NewMemory(time.Hour)
			return m, func(d time.Duration) { idempotency.Advance(m, d) }
		},
		"redis": func(t *testing.T) (idempotency.Store, func(time.Duration)) {
			mr := miniredis.RunT(t)
			client, err := idempotency.Connect(context.Background(), "redis://"+mr.Addr())
			require.NoError(t, err)
			t.Cleanup(func() { _ = client.Close() })
			return idempotency.NewRedis(client, time.Hour), mr.FastForward
		},
	}
}

func TestStores(t *testing.T) {
	for name, newStore := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			t.Run("replays completed result", func(t *testing.T) {
				s, _ := newStore(t)
				_, replay, err := s.Begin(ctx, "key-1")
				require.NoError(t, err)
				require.False(t, replay)

				require.NoError(t, s.Complete(ctx, "key-1", []byte(`{"success":true}`)))

				got, replay, err := s.Begin(ctx, "key-1")
				require.NoError(t, err)
				require.True(t, replay)
				require.JSONEq(t, `{"success":true}`, string(got))
			})

			t.Run("concurrent duplicate is rejected", func(t *testing.T) {
				s, _ := newStore(t)
				_, _, err := s.Begin(ctx, "key-2")
				require.NoError(t, err)

				_, _, err = s.Begin(ctx, "key-2")
				require.ErrorIs(t, err, idempotency.ErrInProgress)
			})

			t.Run("release lets a retry proceed", func(t *testing.T) {
				s, _ := newStore(t)
				_, _, err := s.Begin(ctx, "key-3")
				require.NoError(t, err)
				require.NoError(t, s.Release(ctx, "key-3"))

				_, replay, err := s.Begin(ctx, "key-3")
				require.NoError(t, err)
				require.False(t, replay)
			})

			t.Run("results expire", func(t *testing.T) {
				s, advance := newStore(t)
				_, _, err := s.Begin(ctx, "key-4")
				require.NoError(t, err)
				require.NoError(t, s.Complete(ctx, "key-4", []byte("x")))

				advance(2 * time.Hour)

				_, replay, err := s.Begin(ctx, "key-4")
				require.NoError(t, err)
				require.False(t, replay)
			})
		})
	}
}

func TestConnectFailsWithoutServer(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := idempotency.Connect(context.Background(), addr)
	require.Error(t, err)
}
