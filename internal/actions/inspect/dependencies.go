package inspect

import (
	"time"

	"github.com/footprint-tools/storyteller/internal/app"
	"github.com/footprint-tools/storyteller/internal/domain"
	"github.com/footprint-tools/storyteller/internal/format"
	"github.com/footprint-tools/storyteller/internal/history"
	"github.com/footprint-tools/storyteller/internal/learning"
)

type Deps struct {
	History  func() (*history.Store, error)
	Learning func() (*learning.Ledger, error)
	ListRuns func(domain.RunFilter) ([]domain.RunRecord, error)

	// Theme is the render theme used when seed is given no --theme.
	Theme string

	Format format.Formatter
	Now    func() time.Time
	Logger domain.Logger
	Styler domain.Styler

	Printf  func(string, ...any) (int, error)
	Println func(...any) (int, error)
}

func DefaultDeps(a *app.App) Deps {
	return Deps{
		History:  a.History,
		Learning: a.Learning,
		ListRuns: func(f domain.RunFilter) ([]domain.RunRecord, error) {
			s, err := a.Ledger()
			if err != nil {
				return nil, err
			}
			return s.ListRuns(f)
		},
		Theme:   a.Config.Theme,
		Format:  format.New(a.Config.UI.DateFormat, a.Config.UI.TimeFormat),
		Now:     time.Now,
		Logger:  a.Logger,
		Styler:  a.Styler,
		Printf:  a.Output.Printf,
		Println: a.Output.Println,
	}
}

func shortHash(h string) string {
	if len(h) > 8 {
		return h[:8]
	}
	return h
}
