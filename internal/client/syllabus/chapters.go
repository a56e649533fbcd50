// Package syllabus resolves the subjects and chapter lists shown to students.
//
// Chapter lists come from the first source that has one: an admin-curated
// list, the in-memory memo, the built-in syllabus, the generative service,
// and finally a two-chapter placeholder.
package syllabus

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/tutorsync/internal/client/genai"
	"github.com/dmitrijs2005/tutorsync/internal/client/keys"
	"github.com/dmitrijs2005/tutorsync/internal/client/localstore"
	"github.com/dmitrijs2005/tutorsync/internal/client/models"
	"github.com/dmitrijs2005/tutorsync/internal/client/recyclebin"
	"github.com/dmitrijs2005/tutorsync/internal/client/settings"
	"github.com/dmitrijs2005/tutorsync/internal/logging"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

var ErrChapterNotFound = errors.New("chapter not found")

// Languages a custom chapter list is saved under.
var Languages = []string{"English", "Hindi"}

// Generator is the part of the generative client the syllabus uses.
type Generator interface {
	GenerateJSON(ctx context.Context, req genai.Request, dest any) error
}

//go:embed static.json
var staticJSON []byte

type staticSyllabus struct {
	Lists   map[string][]string `json:"lists"`
	Aliases map[string]string   `json:"aliases"`
}

func loadStatic() staticSyllabus {
	var s staticSyllabus
	if err := json.Unmarshal(staticJSON, &s); err != nil {
		panic(fmt.Sprintf("syllabus: embedded static.json: %v", err))
	}
	return s
}

type Options struct {
	CacheSize int
	CacheTTL  time.Duration
}

type Service struct {
	local  localstore.Store
	gen    Generator
	bin    *recyclebin.Bin
	logger logging.Logger
	static staticSyllabus
	memo   *expirable.LRU[string, []models.Chapter]
}

// NewService builds the service. gen may be nil, in which case lists not
// known locally fall straight to the placeholder.
func NewService(local localstore.Store, gen Generator, bin *recyclebin.Bin, logger logging.Logger, opts Options) *Service {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 256
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Hour
	}
	return &Service{
		local:  local,
		gen:    gen,
		bin:    bin,
		logger: logger.With("module", "syllabus"),
		static: loadStatic(),
		memo:   expirable.NewLRU[string, []models.Chapter](opts.CacheSize, nil, opts.CacheTTL),
	}
}

func customKey(sel models.Selection) string {
	return keys.CustomChapters(sel.Board, sel.ClassLevel, sel.Stream, sel.Subject, sel.Language)
}

// StaticChapters returns the built-in list for board, class and subject name.
func (s *Service) StaticChapters(board, class, subject string) []models.Chapter {
	key := board + "-" + class + "-" + subject
	if alias, ok := s.static.Aliases[key]; ok {
		key = alias
	}
	titles := s.static.Lists[key]
	if len(titles) == 0 {
		return nil
	}
	out := make([]models.Chapter, len(titles))
	for i, t := range titles {
		out[i] = models.Chapter{ID: fmt.Sprintf("static-%d", i+1), Title: t, Description: fmt.Sprintf("Chapter %d", i+1)}
	}
	return out
}

func placeholder() []models.Chapter {
	return []models.Chapter{{ID: "1", Title: "Chapter 1"}, {ID: "2", Title: "Chapter 2"}}
}

// Custom returns the admin-curated list for sel, if any.
func (s *Service) Custom(ctx context.Context, sel models.Selection) ([]models.Chapter, error) {
	var list []models.Chapter
	if _, err := localstore.GetJSON(ctx, s.local, customKey(sel), &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Service) Chapters(ctx context.Context, sel models.Selection) ([]models.Chapter, error) {
	custom, err := s.Custom(ctx, sel)
	if err != nil {
		s.logger.Warn(ctx, "custom chapter list unreadable", "key", customKey(sel), "error", err)
	}
	if len(custom) > 0 {
		return custom, nil
	}

	memoKey := customKey(sel)
	if cached, ok := s.memo.Get(memoKey); ok {
		return cached, nil
	}

	chapters := s.StaticChapters(sel.Board, sel.ClassLevel, sel.Subject)
	if len(chapters) == 0 {
		chapters, err = s.generate(ctx, sel)
		if err != nil {
			s.logger.Warn(ctx, "chapter generation failed, using placeholder", "subject", sel.Subject, "error", err)
			chapters = placeholder()
		}
	}

	s.memo.Add(memoKey, chapters)
	return chapters, nil
}

func (s *Service) generate(ctx context.Context, sel models.Selection) ([]models.Chapter, error) {
	if s.gen == nil {
		return nil, genai.ErrNoKeys
	}
	cfg, err := settings.Load(ctx, s.local)
	if err != nil {
		return nil, err
	}

	stream := ""
	if keys.IsSenior(sel.ClassLevel) {
		stream = sel.Stream + " "
	}
	prompt := fmt.Sprintf(`List 15 standard chapters for Class %s %sSubject: %s (%s). Return JSON array: [{"title": "...", "description": "..."}].`,
		sel.ClassLevel, stream, sel.Subject, sel.Board)

	var items []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := s.gen.GenerateJSON(ctx, genai.Request{Prompt: prompt, Model: cfg.AIModel, Keys: cfg.APIKeys}, &items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, genai.ErrEmptyResponse
	}

	out := make([]models.Chapter, 0, len(items))
	for i, it := range items {
		out = append(out, models.Chapter{ID: fmt.Sprintf("ch-%d", i+1), Title: strings.TrimSpace(it.Title), Description: it.Description})
	}
	return out, nil
}

// SaveCustom stores an admin-curated list under every language for sel.
func (s *Service) SaveCustom(ctx context.Context, sel models.Selection, chapters []models.Chapter) error {
	for _, lang := range Languages {
		l := sel
		l.Language = lang
		if err := localstore.SetJSON(ctx, s.local, customKey(l), chapters); err != nil {
			return err
		}
		s.memo.Remove(customKey(l))
	}
	return nil
}

// DeleteChapter removes a chapter from the curated list of sel and keeps it
// in the recycle bin.
func (s *Service) DeleteChapter(ctx context.Context, sel models.Selection, chapterID string) error {
	list, err := s.Custom(ctx, sel)
	if err != nil {
		return err
	}
	for i, ch := range list {
		if ch.ID != chapterID {
			continue
		}
		key := customKey(sel)
		if _, err := s.bin.SoftDelete(ctx, models.BinItemChapter, ch.Title, ch, key, ch.ID); err != nil {
			return err
		}
		s.memo.Remove(key)
		return localstore.SetJSON(ctx, s.local, key, append(list[:i], list[i+1:]...))
	}
	return fmt.Errorf("chapter %s: %w", chapterID, ErrChapterNotFound)
}
