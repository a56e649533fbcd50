// Package contentadmin holds the admin write paths for chapter content.
package contentadmin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"

	"github.com/dmitrijs2005/tutorsync/internal/client/keys"
	"github.com/dmitrijs2005/tutorsync/internal/client/models"
	"github.com/dmitrijs2005/tutorsync/internal/client/synccache"
	"github.com/dmitrijs2005/tutorsync/internal/logging"
)

type Cache interface {
	Read(ctx context.Context, key string) (*models.ContentRecord, error)
	Write(ctx context.Context, key string, rec *models.ContentRecord) error
	BulkWrite(ctx context.Context, records map[string]*models.ContentRecord) error
}

type Recorder interface {
	Record(ctx context.Context, action, details string) error
}

type Trash interface {
	SoftDelete(ctx context.Context, typ models.BinItemType, name string, data any, restoreKey, originalID string) (*models.RecycleBinItem, error)
}

// Links is one row of a bulk link import.
type Links struct {
	ChapterID   string
	FreeLink    string
	PremiumLink string
	Price       int
}

type Service struct {
	cache    Cache
	activity Recorder
	bin      Trash
	logger   logging.Logger
}

func NewService(cache Cache, activity Recorder, bin Trash, logger logging.Logger) *Service {
	return &Service{cache: cache, activity: activity, bin: bin, logger: logger.With("module", "contentadmin")}
}

// existing returns the stored record for key, or nil when there is none
// that can be read.
func (s *Service) existing(ctx context.Context, key string) *models.ContentRecord {
	rec, err := s.cache.Read(ctx, key)
	if err != nil {
		if !errors.Is(err, synccache.ErrNotFound) {
			s.logger.Warn(ctx, "reading existing content failed", "key", key, "error", err)
		}
		return nil
	}
	return rec
}

// SaveChapter replaces the chapter's record. Fields this program does not
// know about survive from the stored record. A new record without a price
// gets models.DefaultPrice.
func (s *Service) SaveChapter(ctx context.Context, sel models.Selection, chapter models.Chapter, rec models.ContentRecord) (*models.ContentRecord, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	key := keys.Content(sel.Board, sel.ClassLevel, sel.Stream, sel.Subject, chapter.ID)
	prev := s.existing(ctx, key)
	if prev == nil {
		if rec.Price == 0 {
			rec.Price = models.DefaultPrice
		}
	} else if len(prev.Extra) > 0 {
		extra := make(map[string]json.RawMessage, len(prev.Extra)+len(rec.Extra))
		maps.Copy(extra, prev.Extra)
		maps.Copy(extra, rec.Extra)
		rec.Extra = extra
	}

	if err := s.cache.Write(ctx, key, &rec); err != nil {
		return nil, err
	}

	s.record(ctx, "CONTENT_SAVED", fmt.Sprintf("%s (%s %s %s)", chapter.Title, sel.Board, sel.ClassLevel, sel.Subject))
	return &rec, nil
}

// SaveBulkLinks writes link rows for many chapters in one batch. Rows replace
// the link fields and price of any existing record.
func (s *Service) SaveBulkLinks(ctx context.Context, sel models.Selection, rows []Links) error {
	records := make(map[string]*models.ContentRecord, len(rows))
	for _, row := range rows {
		if row.ChapterID == "" {
			return errors.New("bulk links: empty chapter id")
		}
		key := keys.Content(sel.Board, sel.ClassLevel, sel.Stream, sel.Subject, row.ChapterID)

		rec := s.existing(ctx, key)
		if rec == nil {
			rec = &models.ContentRecord{Price: models.DefaultPrice}
		}
		rec.FreeLink = row.FreeLink
		rec.PremiumLink = row.PremiumLink
		if row.Price > 0 {
			rec.Price = row.Price
		}
		if err := rec.Validate(); err != nil {
			return fmt.Errorf("bulk links %s: %w", row.ChapterID, err)
		}
		records[key] = rec
	}

	if err := s.cache.BulkWrite(ctx, records); err != nil {
		return err
	}

	s.record(ctx, "BULK_LINKS_SAVED", fmt.Sprintf("%d chapters (%s %s %s)", len(rows), sel.Board, sel.ClassLevel, sel.Subject))
	return nil
}

// ClearChapter moves the chapter's record to the recycle bin and stores an
// empty record in its place.
func (s *Service) ClearChapter(ctx context.Context, sel models.Selection, chapter models.Chapter) error {
	key := keys.Content(sel.Board, sel.ClassLevel, sel.Stream, sel.Subject, chapter.ID)
	prev := s.existing(ctx, key)
	if prev == nil {
		return synccache.ErrNotFound
	}

	if _, err := s.bin.SoftDelete(ctx, models.BinItemContent, chapter.Title, prev, key, chapter.ID); err != nil {
		return err
	}
	if err := s.cache.Write(ctx, key, &models.ContentRecord{Price: prev.Price}); err != nil {
		return err
	}

	s.record(ctx, "CONTENT_CLEARED", chapter.Title)
	return nil
}

func (s *Service) record(ctx context.Context, action, details string) {
	if s.activity == nil {
		return
	}
	if err := s.activity.Record(ctx, action, details); err != nil {
		s.logger.Warn(ctx, "activity log write failed", "action", action, "error", err)
	}
}
