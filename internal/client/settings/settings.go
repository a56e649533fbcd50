// Package settings loads and stores the admin-controlled system settings.
package settings

import (
	"context"

	"github.com/dmitrijs2005/tutorsync/internal/client/keys"
	"github.com/dmitrijs2005/tutorsync/internal/client/localstore"
	"github.com/dmitrijs2005/tutorsync/internal/client/models"
)

// Load returns the stored settings with zero amounts replaced by defaults.
func Load(ctx context.Context, local localstore.Store) (models.SystemSettings, error) {
	s := models.DefaultSettings()
	var stored models.SystemSettings
	found, err := localstore.GetJSON(ctx, local, keys.SystemSettings, &stored)
	if err != nil || !found {
		return s, err
	}

	def := s
	s = stored
	if s.ChatCost <= 0 {
		s.ChatCost = def.ChatCost
	}
	if s.DailyReward <= 0 {
		s.DailyReward = def.DailyReward
	}
	return s, nil
}

func Save(ctx context.Context, local localstore.Store, s models.SystemSettings) error {
	return localstore.SetJSON(ctx, local, keys.SystemSettings, s)
}
