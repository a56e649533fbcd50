package syllabus

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/tutorsync/internal/client/keys"
	"github.com/dmitrijs2005/tutorsync/internal/client/localstore"
	"github.com/dmitrijs2005/tutorsync/internal/client/models"
	"github.com/dmitrijs2005/tutorsync/internal/common"
)

// DefaultSubjects is the built-in subject pool keyed by subject id.
var DefaultSubjects = map[string]models.Subject{
	"physics":   {ID: "physics", Name: "Physics", Icon: "physics", Color: "blue"},
	"chemistry": {ID: "chemistry", Name: "Chemistry", Icon: "flask", Color: "purple"},
	"biology":   {ID: "biology", Name: "Biology", Icon: "bio", Color: "green"},
	"math":      {ID: "math", Name: "Mathematics", Icon: "math", Color: "emerald"},
	"history":   {ID: "history", Name: "History", Icon: "history", Color: "rose"},
	"geography": {ID: "geography", Name: "Geography", Icon: "geo", Color: "indigo"},
	"polity":    {ID: "polity", Name: "Political Science", Icon: "gov", Color: "amber"},
	"economics": {ID: "economics", Name: "Economics", Icon: "social", Color: "cyan"},
	"business":  {ID: "business", Name: "Business Studies", Icon: "business", Color: "blue"},
	"accounts":  {ID: "accounts", Name: "Accountancy", Icon: "accounts", Color: "emerald"},
	"science":   {ID: "science", Name: "Science", Icon: "science", Color: "blue"},
	"sst":       {ID: "sst", Name: "Social Science", Icon: "geo", Color: "orange"},
	"english":   {ID: "english", Name: "English", Icon: "english", Color: "sky"},
	"hindi":     {ID: "hindi", Name: "Hindi", Icon: "hindi", Color: "orange"},
	"sanskrit":  {ID: "sanskrit", Name: "Sanskrit", Icon: "book", Color: "yellow"},
	"computer":  {ID: "computer", Name: "Computer Science", Icon: "computer", Color: "slate"},
}

var (
	juniorSubjects = []string{"math", "science", "sst", "english", "hindi", "sanskrit", "computer"}
	commonSenior   = []string{"english", "hindi", "computer"}
	streamSubjects = map[string][]string{
		"Science":  {"physics", "chemistry", "math", "biology"},
		"Commerce": {"accounts", "business", "economics", "math"},
		"Arts":     {"history", "geography", "polity", "economics"},
	}
)

// Pool returns the stored subject pool, or the defaults when none is stored.
func (s *Service) Pool(ctx context.Context) (map[string]models.Subject, error) {
	var pool map[string]models.Subject
	found, err := localstore.GetJSON(ctx, s.local, keys.CustomSubjectsPool, &pool)
	if err != nil {
		return nil, err
	}
	if !found || pool == nil {
		pool = make(map[string]models.Subject, len(DefaultSubjects))
		for k, v := range DefaultSubjects {
			pool[k] = v
		}
	}
	return pool, nil
}

// SubjectsFor lists the subjects offered to a class and stream, followed by
// admin-added subjects in id order.
func (s *Service) SubjectsFor(ctx context.Context, class, stream string) ([]models.Subject, error) {
	pool, err := s.Pool(ctx)
	if err != nil {
		return nil, err
	}

	var ids []string
	if !keys.IsSenior(class) {
		ids = juniorSubjects
	} else if core, ok := streamSubjects[stream]; ok {
		ids = append(append([]string(nil), core...), commonSenior...)
	}

	out := make([]models.Subject, 0, len(ids))
	for _, id := range ids {
		if subj, ok := pool[id]; ok {
			out = append(out, subj)
		}
	}

	var custom []string
	for id := range pool {
		if _, builtin := DefaultSubjects[id]; !builtin {
			custom = append(custom, id)
		}
	}
	sort.Strings(custom)
	for _, id := range custom {
		out = append(out, pool[id])
	}
	return out, nil
}

// AddSubject adds or replaces a subject in the pool.
func (s *Service) AddSubject(ctx context.Context, subj models.Subject) error {
	subj.ID = strings.TrimSpace(subj.ID)
	if subj.ID == "" || strings.TrimSpace(subj.Name) == "" {
		return fmt.Errorf("%w: subject id and name required", common.ErrorValidation)
	}
	pool, err := s.Pool(ctx)
	if err != nil {
		return err
	}
	pool[subj.ID] = subj
	return localstore.SetJSON(ctx, s.local, keys.CustomSubjectsPool, pool)
}

// SubjectName resolves a subject id or name to the display name content and
// chapter keys are built from. Input that matches nothing in the pool is
// returned unchanged.
func (s *Service) SubjectName(ctx context.Context, arg string) string {
	pool, err := s.Pool(ctx)
	if err != nil {
		s.logger.Warn(ctx, "subject pool unreadable", "error", err)
		return arg
	}
	if subj, ok := pool[arg]; ok {
		return subj.Name
	}
	if subj, ok := pool[strings.ToLower(arg)]; ok {
		return subj.Name
	}
	for _, subj := range pool {
		if strings.EqualFold(subj.Name, arg) {
			return subj.Name
		}
	}
	return arg
}
