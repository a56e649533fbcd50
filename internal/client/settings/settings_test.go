package settings

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/tutorsync/internal/client/keys"
	"github.com/dmitrijs2005/tutorsync/internal/client/localstore"
	"github.com/dmitrijs2005/tutorsync/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	ctx := context.Background()
	local := localstore.NewMemoryStore(0)

	s, err := Load(ctx, local)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSettings(), s)

	require.NoError(t, local.Set(ctx, keys.SystemSettings, `{"aiModel":"m","chatCost":0,"dailyReward":7}`))
	s, err = Load(ctx, local)
	require.NoError(t, err)
	assert.Equal(t, "m", s.AIModel)
	assert.Equal(t, 1, s.ChatCost)
	assert.Equal(t, 7, s.DailyReward)

	require.NoError(t, Save(ctx, local, models.SystemSettings{APIKeys: []string{"k"}, ChatCost: 2, DailyReward: 3}))
	s, err = Load(ctx, local)
	require.NoError(t, err)
	assert.Equal(t, []string{"k"}, s.APIKeys)
	assert.Equal(t, 2, s.ChatCost)

	require.NoError(t, local.Set(ctx, keys.SystemSettings, `{oops`))
	_, err = Load(ctx, local)
	assert.Error(t, err)
}
