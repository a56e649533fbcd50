package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/tutorsync/internal/client/accounts"
	"github.com/dmitrijs2005/tutorsync/internal/client/contentadmin"
	"github.com/dmitrijs2005/tutorsync/internal/client/keys"
	"github.com/dmitrijs2005/tutorsync/internal/client/models"
	"github.com/dmitrijs2005/tutorsync/internal/client/synccache"
)

// chapter looks id up in the selection's chapter list so lessons and
// activity entries carry its title.
func (a *App) chapter(ctx context.Context, sel models.Selection, id string) models.Chapter {
	list, err := a.syllabus.Chapters(ctx, sel)
	if err == nil {
		for _, c := range list {
			if c.ID == id {
				return c
			}
		}
	}
	return models.Chapter{ID: id, Title: id}
}

func (a *App) Chapters(ctx context.Context, args []string) error {
	sel, rest, err := a.selection(ctx, args)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		sel.Language = rest[0]
	}

	list, err := a.syllabus.Chapters(ctx, sel)
	if err != nil {
		return err
	}
	for _, c := range list {
		a.printf("%-10s %s\n", c.ID, c.Title)
	}
	return nil
}

func (a *App) Lesson(ctx context.Context, args []string) error {
	sel, rest, err := a.selection(ctx, args)
	if err != nil {
		return err
	}
	if len(rest) != 2 {
		return ErrUsage
	}
	typ := models.ContentType(strings.ToUpper(rest[1]))

	u := a.currentUser()
	price := 0
	if typ.IsPremium() {
		price = a.price(ctx, sel, rest[0])
		if !accounts.HasCredits(u, price) {
			return fmt.Errorf("%w: %d needed, %d available", accounts.ErrInsufficientCredits, price, u.Credits)
		}
	}

	l, err := a.lessons.Fetch(ctx, sel, a.chapter(ctx, sel, rest[0]), typ, 0)
	if err != nil {
		return err
	}
	if price > 0 && !l.IsComingSoon && !u.IsAdmin() {
		if u, err = a.accounts.Spend(ctx, u.ID, price); err != nil {
			return err
		}
		a.setUser(u)
		a.printf("Charged %d credits, %d left\n", price, u.Credits)
	}

	a.printf("%s\n%s\n\n", l.Title, l.Subtitle)
	switch {
	case l.IsComingSoon:
		a.printf("Coming soon.\n")
	case len(l.MCQData) > 0:
		for i, q := range l.MCQData {
			a.printf("%d. %s\n", i+1, q.Question)
			for j, o := range q.Options {
				a.printf("   %c) %s\n", 'A'+j, o)
			}
		}
	default:
		a.printf("%s\n", l.Content)
	}
	return nil
}

// price is what a student pays for the premium content of a chapter.
func (a *App) price(ctx context.Context, sel models.Selection, chapterID string) int {
	rec, err := a.cache.Read(ctx, keys.Content(sel.Board, sel.ClassLevel, sel.Stream, sel.Subject, chapterID))
	if err != nil {
		return models.DefaultPrice
	}
	return rec.Price
}

// Subjects lists the subjects taught in a class and, for senior classes, a stream.
func (a *App) Subjects(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return ErrUsage
	}
	stream := ""
	if len(args) == 2 && args[1] != "-" {
		stream = args[1]
	}
	list, err := a.syllabus.SubjectsFor(ctx, args[0], stream)
	if err != nil {
		return err
	}
	for _, s := range list {
		a.printf("%-12s %s\n", s.ID, s.Name)
	}
	return nil
}

// Read prints the stored content record of a chapter.
func (a *App) Read(ctx context.Context, args []string) error {
	sel, rest, err := a.selection(ctx, args)
	if err != nil {
		return err
	}
	if len(rest) != 1 {
		return ErrUsage
	}

	key := keys.Content(sel.Board, sel.ClassLevel, sel.Stream, sel.Subject, rest[0])
	rec, err := a.cache.Read(ctx, key)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	a.printf("%s\n%s\n", key, b)
	return nil
}

// Save prompts for the link fields and price of a chapter. Empty answers
// keep the stored values.
func (a *App) Save(ctx context.Context, args []string) error {
	sel, rest, err := a.selection(ctx, args)
	if err != nil {
		return err
	}
	if len(rest) != 1 {
		return ErrUsage
	}
	ch := a.chapter(ctx, sel, rest[0])

	var rec models.ContentRecord
	prev, err := a.cache.Read(ctx, keys.Content(sel.Board, sel.ClassLevel, sel.Stream, sel.Subject, ch.ID))
	switch {
	case err == nil:
		rec = *prev
	case !errors.Is(err, synccache.ErrNotFound):
		a.logger.Warn(ctx, "existing content unreadable", "chapter", ch.ID, "error", err)
	}

	for _, f := range []struct {
		prompt string
		dst    *string
	}{
		{"Free PDF link", &rec.FreeLink},
		{"Premium PDF link", &rec.PremiumLink},
	} {
		v, err := getSimpleText(a.reader, f.prompt+" ["+*f.dst+"]", a.out)
		if err != nil {
			return err
		}
		if v != "" {
			*f.dst = v
		}
	}

	price, err := getSimpleText(a.reader, "Price", a.out)
	if err != nil {
		return err
	}
	if price != "" {
		if rec.Price, err = atoi(price); err != nil {
			return err
		}
	}

	saved, err := a.admin.SaveChapter(ctx, sel, ch, rec)
	if err != nil {
		return err
	}
	a.printf("Saved %s (price %d)\n", ch.Title, saved.Price)
	return nil
}

// Links reads "chapterId freeLink premiumLink [price]" rows and writes them
// in one batch. "-" leaves a link empty.
func (a *App) Links(ctx context.Context, args []string) error {
	sel, rest, err := a.selection(ctx, args)
	if err != nil {
		return err
	}
	if len(rest) != 0 {
		return ErrUsage
	}

	lines, err := getLines(a.reader, "chapterId freeLink premiumLink [price]", a.out)
	if err != nil {
		return err
	}

	rows := make([]contentadmin.Links, 0, len(lines))
	for _, line := range lines {
		f := strings.Fields(line)
		if len(f) < 3 || len(f) > 4 {
			a.printf("skipping %q\n", line)
			continue
		}
		row := contentadmin.Links{ChapterID: f[0], FreeLink: dash(f[1]), PremiumLink: dash(f[2])}
		if len(f) == 4 {
			if row.Price, err = atoi(f[3]); err != nil {
				return err
			}
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil
	}

	err = a.admin.SaveBulkLinks(ctx, sel, rows)
	if errors.Is(err, synccache.ErrRemoteSync) {
		a.printf("Saved %d chapters locally, remote sync failed: %v\n", len(rows), err)
		return nil
	}
	if err != nil {
		return err
	}
	a.printf("Saved %d chapters\n", len(rows))
	return nil
}

func dash(s string) string {
	if s == "-" {
		return ""
	}
	return s
}

// AddSubject adds a subject to the pool or renames an existing one.
func (a *App) AddSubject(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return ErrUsage
	}
	subj := models.Subject{ID: strings.ToLower(args[0]), Name: strings.Join(args[1:], " ")}
	if err := a.syllabus.AddSubject(ctx, subj); err != nil {
		return err
	}
	_ = a.activity.Record(ctx, "SUBJECT_ADDED", subj.Name)
	a.printf("Subject %s saved\n", subj.Name)
	return nil
}

// SaveSyllabus reads "chapterId title" rows and stores them as the curated
// chapter list of the selection.
func (a *App) SaveSyllabus(ctx context.Context, args []string) error {
	sel, rest, err := a.selection(ctx, args)
	if err != nil {
		return err
	}
	if len(rest) != 0 {
		return ErrUsage
	}

	lines, err := getLines(a.reader, "chapterId title", a.out)
	if err != nil {
		return err
	}
	chapters := make([]models.Chapter, 0, len(lines))
	for _, line := range lines {
		id, title, ok := strings.Cut(strings.TrimSpace(line), " ")
		if !ok || strings.TrimSpace(title) == "" {
			a.printf("skipping %q\n", line)
			continue
		}
		chapters = append(chapters, models.Chapter{ID: id, Title: strings.TrimSpace(title)})
	}
	if len(chapters) == 0 {
		return nil
	}

	if err := a.syllabus.SaveCustom(ctx, sel, chapters); err != nil {
		return err
	}
	_ = a.activity.Record(ctx, "SYLLABUS_SAVED", sel.Subject+" "+sel.ClassLevel)
	a.printf("Saved %d chapters\n", len(chapters))
	return nil
}

func (a *App) DeleteChapter(ctx context.Context, args []string) error {
	sel, rest, err := a.selection(ctx, args)
	if err != nil {
		return err
	}
	if len(rest) != 1 {
		return ErrUsage
	}
	ch := a.chapter(ctx, sel, rest[0])
	if err := a.syllabus.DeleteChapter(ctx, sel, ch.ID); err != nil {
		return err
	}
	_ = a.activity.Record(ctx, "CHAPTER_DELETED", ch.Title)
	a.printf("Moved %s to the recycle bin\n", ch.Title)
	return nil
}
