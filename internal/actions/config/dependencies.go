package config

import (
	"github.com/footprint-tools/storyteller/internal/app"
	"github.com/footprint-tools/storyteller/internal/config"
	"github.com/footprint-tools/storyteller/internal/domain"
)

type Deps struct {
	Get          func(string) (string, bool)
	GetAll       func() map[string]string
	Keys         []config.Key
	Path         string
	WriteDefault func(string) (bool, error)
	Styler       domain.Styler
	Printf       func(string, ...any) (int, error)
	Println      func(...any) (int, error)
}

func DefaultDeps(a *app.App) Deps {
	return Deps{
		Get:          a.Config.Get,
		GetAll:       a.Config.GetAll,
		Keys:         config.Keys,
		Path:         a.ConfigPath,
		WriteDefault: config.WriteDefault,
		Styler:       a.Styler,
		Printf:       a.Output.Printf,
		Println:      a.Output.Println,
	}
}
