package actions

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/footprint-tools/storyteller/internal/app"
)

type actionDependencies struct {
	Printf  func(format string, a ...any) (n int, err error)
	Version func() string
	Runtime func() string
	Stdout  io.Writer
	Getenv  func(string) string
}

func defaultDeps() actionDependencies {
	return actionDependencies{
		Printf:  fmt.Printf,
		Version: func() string { return app.Version },
		Runtime: func() string { return runtime.Version() + " " + runtime.GOOS + "/" + runtime.GOARCH },
		Stdout:  os.Stdout,
		Getenv:  os.Getenv,
	}
}
