// Package lesson assembles what a student sees for a chapter: admin content
// from the sync cache when there is some, generated notes or questions
// otherwise.
package lesson

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tutorsync/internal/client/genai"
	"github.com/dmitrijs2005/tutorsync/internal/client/keys"
	"github.com/dmitrijs2005/tutorsync/internal/client/localstore"
	"github.com/dmitrijs2005/tutorsync/internal/client/models"
	"github.com/dmitrijs2005/tutorsync/internal/client/settings"
	"github.com/dmitrijs2005/tutorsync/internal/logging"
	"github.com/google/uuid"
)

var ErrGenerationUnavailable = errors.New("content generation unavailable")

const DefaultQuestionCount = 15

type ContentReader interface {
	Read(ctx context.Context, key string) (*models.ContentRecord, error)
}

type Generator interface {
	Generate(ctx context.Context, req genai.Request) (string, error)
	GenerateJSON(ctx context.Context, req genai.Request, dest any) error
}

type Service struct {
	content ContentReader
	gen     Generator
	local   localstore.Store
	logger  logging.Logger
	now     func() time.Time
}

func NewService(content ContentReader, gen Generator, local localstore.Store, logger logging.Logger) *Service {
	return &Service{content: content, gen: gen, local: local, logger: logger.With("module", "lesson"), now: time.Now}
}

func (s *Service) lesson(title, subtitle string, typ models.ContentType) *models.LessonContent {
	return &models.LessonContent{
		ID:          uuid.NewString(),
		Title:       title,
		Subtitle:    subtitle,
		Type:        typ,
		DateCreated: s.now().UTC(),
	}
}

// fromRecord returns the admin-provided lesson for typ, or nil when rec has
// nothing for it.
func (s *Service) fromRecord(rec *models.ContentRecord, chapter models.Chapter, typ models.ContentType) *models.LessonContent {
	var l *models.LessonContent
	switch {
	case typ == models.PDFFree && rec.FreeLink != "":
		l = s.lesson(chapter.Title, "Provided by Admin", typ)
		l.Content = rec.FreeLink
	case typ == models.PDFPremium && rec.PremiumLink != "":
		l = s.lesson(chapter.Title, "High Quality Content", typ)
		l.Content = rec.PremiumLink
	case typ == models.PDFViewer && rec.Link != "":
		l = s.lesson(chapter.Title, "Provided by Teacher", typ)
		l.Content = rec.Link
	case typ.IsMCQ() && len(rec.ManualMCQData) > 0:
		l = s.lesson(chapter.Title, fmt.Sprintf("%d Questions", len(rec.ManualMCQData)), typ)
		l.MCQData = rec.ManualMCQData
	}
	return l
}

// Fetch resolves the lesson of one content type for a chapter. PDFs are
// never generated: without an admin link the lesson is marked coming soon.
func (s *Service) Fetch(ctx context.Context, sel models.Selection, chapter models.Chapter, typ models.ContentType, questions int) (*models.LessonContent, error) {
	key := keys.Content(sel.Board, sel.ClassLevel, sel.Stream, sel.Subject, chapter.ID)

	rec, err := s.content.Read(ctx, key)
	if err != nil {
		s.logger.Debug(ctx, "no admin content", "key", key, "error", err)
	} else if l := s.fromRecord(rec, chapter, typ); l != nil {
		return l, nil
	}

	if typ.IsPDF() {
		l := s.lesson(chapter.Title, "Content Unavailable", typ)
		l.IsComingSoon = true
		return l, nil
	}

	if s.gen == nil {
		return nil, ErrGenerationUnavailable
	}
	cfg, err := settings.Load(ctx, s.local)
	if err != nil {
		return nil, err
	}
	instruction := ""
	if cfg.AIInstruction != "" {
		instruction = "IMPORTANT INSTRUCTION: " + cfg.AIInstruction + "\n"
	}

	if typ.IsMCQ() {
		if questions <= 0 {
			questions = DefaultQuestionCount
		}
		return s.generateMCQ(ctx, sel, chapter, typ, questions, instruction, cfg)
	}
	return s.generateNotes(ctx, sel, chapter, typ, instruction, cfg)
}

func (s *Service) generateMCQ(ctx context.Context, sel models.Selection, chapter models.Chapter, typ models.ContentType, n int, instruction string, cfg models.SystemSettings) (*models.LessonContent, error) {
	prompt := fmt.Sprintf(`%sCreate %d MCQs for %s Class %s %s, Chapter: %q.
Language: %s.
Return valid JSON array:
[{"question": "Question text", "options": ["A", "B", "C", "D"], "correctAnswer": 0, "explanation": "Explanation here", "mnemonic": "Short memory trick", "concept": "Core concept"}]`,
		instruction, n, sel.Board, sel.ClassLevel, sel.Subject, chapter.Title, sel.Language)

	var items []models.MCQItem
	if err := s.gen.GenerateJSON(ctx, genai.Request{Prompt: prompt, Model: cfg.AIModel, Keys: cfg.APIKeys}, &items); err != nil {
		return nil, err
	}

	valid := items[:0]
	for _, it := range items {
		if err := it.Validate(); err != nil {
			s.logger.Debug(ctx, "dropping generated question", "error", err)
			continue
		}
		valid = append(valid, it)
	}

	l := s.lesson("MCQ Test: "+chapter.Title, fmt.Sprintf("%d Questions", len(valid)), typ)
	l.MCQData = valid
	return l, nil
}

func (s *Service) generateNotes(ctx context.Context, sel models.Selection, chapter models.Chapter, typ models.ContentType, instruction string, cfg models.SystemSettings) (*models.LessonContent, error) {
	detailed := typ == models.NotesPremium
	depth, subtitle := "Keep it concise and clear.", "Quick Revision Notes"
	if detailed {
		depth, subtitle = "Include deep insights, memory tips, and exam strategies.", "Premium Study Notes"
	}

	prompt := fmt.Sprintf(`%sWrite detailed study notes for %s Class %s %s, Chapter: %q.
Language: %s.
Format: Markdown.
Structure:
1. Introduction
2. Key Concepts (Bullet points)
3. Detailed Explanations
4. Important Formulas/Dates
5. Summary
%s`, instruction, sel.Board, sel.ClassLevel, sel.Subject, chapter.Title, sel.Language, depth)

	text, err := s.gen.Generate(ctx, genai.Request{Prompt: prompt, Model: cfg.AIModel, Keys: cfg.APIKeys})
	if err != nil {
		return nil, err
	}

	l := s.lesson(chapter.Title, subtitle, typ)
	l.Content = text
	return l, nil
}
