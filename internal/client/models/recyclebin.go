package models

import (
	"encoding/json"
	"time"
)

type BinItemType string

const (
	BinItemUser    BinItemType = "USER"
	BinItemChapter BinItemType = "CHAPTER"
	BinItemContent BinItemType = "CONTENT"
)

// RecycleBinRetention is how long soft-deleted items stay restorable.
const RecycleBinRetention = 90 * 24 * time.Hour

type RecycleBinItem struct {
	ID         string          `json:"id"`
	OriginalID string          `json:"originalId"`
	Type       BinItemType     `json:"type"`
	Name       string          `json:"name"`
	Data       json.RawMessage `json:"data"`
	DeletedAt  time.Time       `json:"deletedAt"`
	ExpiresAt  time.Time       `json:"expiresAt"`
	RestoreKey string          `json:"restoreKey,omitempty"`
}

// Expired reports whether the item is past its retention at now.
func (i *RecycleBinItem) Expired(now time.Time) bool {
	return !i.ExpiresAt.After(now)
}
