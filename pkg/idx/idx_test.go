package idx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/leadflow/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestNewAndParse(t *testing.T) {
	id := idx.New()
	require.False(t, id.IsZero())

	parsed, err := idx.Parse(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)
	require.True(t, idx.Valid(id.String()))
}

func TestParseRejectsJunk(t *testing.T) {
	for _, s := range []string{"", "   ", "not-a-ulid", "01HQ7T3Z1MZ0JQ3M6MZQ1FQ3Z"} {
		_, err := idx.Parse(s)
		require.ErrorIs(t, err, idx.ErrInvalid, s)
		require.False(t, idx.Valid(s))
	}
}

func TestOrdering(t *testing.T) {
	a := idx.NewAt(time.Unix(1, 0))
	b := idx.NewAt(time.Unix(2, 0))

	require.Equal(t, -1, idx.Compare(a, b))
	require.Equal(t, 1, idx.Compare(b, a))
	require.Equal(t, 0, idx.Compare(a, a))
}

func TestMonotonicWithinSameMillisecond(t *testing.T) {
	now := time.Now()
	prev := idx.NewAt(now)
	for range 50 {
		next := idx.NewAt(now)
		require.Equal(t, -1, idx.Compare(prev, next))
		prev = next
	}
}

func TestTimeExtraction(t *testing.T) {
	tm := time.Unix(1700000000, 0).UTC()
	id := idx.NewAt(tm)

	require.WithinDuration(t, tm, id.Time(), time.Millisecond)
	require.True(t, idx.ID("garbage").Time().IsZero())
}
