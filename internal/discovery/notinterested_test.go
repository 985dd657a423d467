package discovery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryNotInterested(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryNotInterested()

	ok, err := m.Contains(ctx, "v1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Add(ctx, "v1"))
	require.NoError(t, m.Add(ctx, "v1")) // idempotent
	require.NoError(t, m.Add(ctx, "v2"))

	ok, err = m.Contains(ctx, "v1")
	require.NoError(t, err)
	assert.True(t, ok)

	ids, err := m.IDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"v1", "v2"}, ids)
}
