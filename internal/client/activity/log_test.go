package activity

import (
	"context"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/tutorsync/internal/client/localstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_NewestFirstAndCapped(t *testing.T) {
	ctx := context.Background()
	l := New(localstore.NewMemoryStore(0), "ADMIN")

	for i := 0; i < MaxEntries+5; i++ {
		require.NoError(t, l.Record(ctx, "SAVE", fmt.Sprintf("chapter %d", i)))
	}

	entries, err := l.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, MaxEntries)
	assert.Equal(t, fmt.Sprintf("chapter %d", MaxEntries+4), entries[0].Details)
	assert.Equal(t, "ADMIN", entries[0].Actor)
	assert.NotEmpty(t, entries[0].ID)
}

func TestList_Empty(t *testing.T) {
	entries, err := New(localstore.NewMemoryStore(0), "").List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}
