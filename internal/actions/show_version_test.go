package actions

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/footprint-tools/storyteller/internal/dispatchers"
)

func captureDeps(printed *string) actionDependencies {
	return actionDependencies{
		Printf: func(format string, a ...any) (int, error) {
			*printed = fmt.Sprintf(format, a...)
			return len(*printed), nil
		},
		Version: func() string { return "1.2.3" },
		Runtime: func() string { return "go1.25.4 linux/amd64" },
	}
}

func TestShowVersion_PrintsVersion(t *testing.T) {
	var printed string

	err := showVersion(nil, nil, captureDeps(&printed))

	require.NoError(t, err)
	require.Equal(t, "story version 1.2.3\n", printed)
}

func TestShowVersion_Verbose(t *testing.T) {
	var printed string

	err := showVersion(nil, dispatchers.NewParsedFlags([]string{"--verbose"}), captureDeps(&printed))

	require.NoError(t, err)
	require.Equal(t, "story version 1.2.3 (go1.25.4 linux/amd64)\n", printed)
}
