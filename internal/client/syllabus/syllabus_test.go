package syllabus

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/dmitrijs2005/tutorsync/internal/client/genai"
	"github.com/dmitrijs2005/tutorsync/internal/client/keys"
	"github.com/dmitrijs2005/tutorsync/internal/client/localstore"
	"github.com/dmitrijs2005/tutorsync/internal/client/models"
	"github.com/dmitrijs2005/tutorsync/internal/client/recyclebin"
	"github.com/dmitrijs2005/tutorsync/internal/common"
	"github.com/dmitrijs2005/tutorsync/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGen struct {
	calls int
	reply string
	err   error
	last  genai.Request
}

func (f *fakeGen) GenerateJSON(_ context.Context, req genai.Request, dest any) error {
	f.calls++
	f.last = req
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.reply), dest)
}

func newService(t *testing.T, gen Generator) (*Service, *localstore.MemoryStore) {
	t.Helper()
	local := localstore.NewMemoryStore(0)
	return NewService(local, gen, recyclebin.New(local), logging.NewNop(), Options{}), local
}

func TestSubjectName(t *testing.T) {
	ctx := context.Background()
	s, _ := newService(t, nil)

	assert.Equal(t, "Social Science", s.SubjectName(ctx, "sst"))
	assert.Equal(t, "Political Science", s.SubjectName(ctx, "POLITY"))
	assert.Equal(t, "Business Studies", s.SubjectName(ctx, "business studies"))
	assert.Equal(t, "Astronomy", s.SubjectName(ctx, "Astronomy"))

	require.NoError(t, s.AddSubject(ctx, models.Subject{ID: "Music", Name: "Indian Music"}))
	assert.Equal(t, "Indian Music", s.SubjectName(ctx, "Music"))
}

func TestSubjectsFor(t *testing.T) {
	ctx := context.Background()
	s, _ := newService(t, nil)

	names := func(subjects []models.Subject) []string {
		var out []string
		for _, x := range subjects {
			out = append(out, x.ID)
		}
		return out
	}

	junior, err := s.SubjectsFor(ctx, "10", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"math", "science", "sst", "english", "hindi", "sanskrit", "computer"}, names(junior))

	commerce, err := s.SubjectsFor(ctx, "12", "Commerce")
	require.NoError(t, err)
	assert.Equal(t, []string{"accounts", "business", "economics", "math", "english", "hindi", "computer"}, names(commerce))

	none, err := s.SubjectsFor(ctx, "11", "")
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, s.AddSubject(ctx, models.Subject{ID: "music", Name: "Music"}))
	arts, err := s.SubjectsFor(ctx, "11", "Arts")
	require.NoError(t, err)
	assert.Equal(t, []string{"history", "geography", "polity", "economics", "english", "hindi", "computer", "music"}, names(arts))

	assert.ErrorIs(t, s.AddSubject(ctx, models.Subject{ID: " "}), common.ErrorValidation)
}

func TestChapters_Static(t *testing.T) {
	gen := &fakeGen{}
	s, _ := newService(t, gen)

	got, err := s.Chapters(context.Background(), models.Selection{Board: "CBSE", ClassLevel: "10", Subject: "Mathematics", Language: "English"})
	require.NoError(t, err)
	require.Len(t, got, 14)
	assert.Equal(t, models.Chapter{ID: "static-1", Title: "Real Numbers", Description: "Chapter 1"}, got[0])

	alias := s.StaticChapters("BSEB", "12", "Physics")
	require.NotEmpty(t, alias)
	assert.Equal(t, "Electric Charges and Fields", alias[0].Title)

	assert.Zero(t, gen.calls)
}

func TestChapters_CustomWins(t *testing.T) {
	ctx := context.Background()
	s, local := newService(t, nil)
	sel := models.Selection{Board: "CBSE", ClassLevel: "12", Stream: "Science", Subject: "Physics", Language: "Hindi"}

	list := []models.Chapter{{ID: "c1", Title: "Custom"}}
	require.NoError(t, s.SaveCustom(ctx, sel, list))

	for _, lang := range []string{"English", "Hindi"} {
		_, ok, _ := local.Get(ctx, keys.CustomChapters("CBSE", "12", "Science", "Physics", lang))
		assert.True(t, ok, lang)
	}

	got, err := s.Chapters(ctx, sel)
	require.NoError(t, err)
	assert.Equal(t, list, got)
}

func TestChapters_GeneratedThenMemoized(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGen{reply: `[{"title":"Intro","description":"d"},{"title":"Next"}]`}
	s, local := newService(t, gen)
	require.NoError(t, local.Set(ctx, keys.SystemSettings, `{"aiModel":"m","apiKeys":["k1"]}`))

	sel := models.Selection{Board: "ICSE", ClassLevel: "12", Stream: "Arts", Subject: "History", Language: "English"}
	got, err := s.Chapters(ctx, sel)
	require.NoError(t, err)
	assert.Equal(t, []models.Chapter{{ID: "ch-1", Title: "Intro", Description: "d"}, {ID: "ch-2", Title: "Next"}}, got)
	assert.Equal(t, "m", gen.last.Model)
	assert.Equal(t, []string{"k1"}, gen.last.Keys)
	assert.Contains(t, gen.last.Prompt, "Class 12 Arts Subject: History (ICSE)")

	_, err = s.Chapters(ctx, sel)
	require.NoError(t, err)
	assert.Equal(t, 1, gen.calls)
}

func TestChapters_Fallback(t *testing.T) {
	gen := &fakeGen{err: errors.New("quota")}
	s, _ := newService(t, gen)

	got, err := s.Chapters(context.Background(), models.Selection{Board: "ICSE", ClassLevel: "7", Subject: "Art"})
	require.NoError(t, err)
	assert.Equal(t, placeholder(), got)

	s2, _ := newService(t, nil)
	got, err = s2.Chapters(context.Background(), models.Selection{Board: "ICSE", ClassLevel: "7", Subject: "Art"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestDeleteChapter(t *testing.T) {
	ctx := context.Background()
	s, local := newService(t, nil)
	sel := models.Selection{Board: "CBSE", ClassLevel: "9", Subject: "Science", Language: "English"}

	require.NoError(t, s.SaveCustom(ctx, sel, []models.Chapter{{ID: "1", Title: "A"}, {ID: "2", Title: "B"}}))
	require.NoError(t, s.DeleteChapter(ctx, sel, "1"))

	got, err := s.Chapters(ctx, sel)
	require.NoError(t, err)
	assert.Equal(t, []models.Chapter{{ID: "2", Title: "B"}}, got)

	bin := recyclebin.New(local)
	items, err := bin.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)

	_, err = bin.Restore(ctx, items[0].ID)
	require.NoError(t, err)
	got, _ = s.Custom(ctx, sel)
	assert.Len(t, got, 2)

	assert.ErrorIs(t, s.DeleteChapter(ctx, sel, "missing"), ErrChapterNotFound)
}
