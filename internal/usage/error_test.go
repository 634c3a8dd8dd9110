package usage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want int
	}{
		{"invalid flag", InvalidFlag("--nope"), 2},
		{"missing argument", MissingArgument("target"), 2},
		{"invalid value", InvalidValue("--limit", "x", "must be a number"), 2},
		{"conflicting flags", ConflictingFlags("--test", "--confirm"), 2},
		{"unknown command", UnknownCommand("bogus"), 1},
		{"git missing", GitNotInstalled(), 1},
		{"config key", InvalidConfigKey("nope"), 1},
		{"watch list", WatchListUnavailable("/x.yaml", errors.New("boom")), 1},
		{"run failed", RunFailed(1, 3), 1},
		{"unexpected argument", UnexpectedArgument("x"), 2},
		{"explicit override", &Error{Kind: ErrInvalidFlag, ExitCode: 7}, 7},
		{"unknown kind", &Error{Kind: ErrorKind(99)}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.err.GetExitCode())
		})
	}
}

func TestMessages(t *testing.T) {
	require.Equal(t, "story: invalid flag '--nope'", InvalidFlag("--nope").Error())
	require.Equal(t, "story: invalid flag '--tset'\n\nDid you mean '--test'?", InvalidFlag("--tset", "--test", "--help").Error())
	require.Equal(t, "story: missing required argument 'target'", MissingArgument("target").Error())
	require.Equal(t, "story: 'bogus' is not a story command. See 'story --help'.", UnknownCommand("bogus").Error())
	require.Equal(t, "story: 1 of 3 repositories failed", RunFailed(1, 3).Error())
	require.Equal(t, "story: unexpected argument 'extra'", UnexpectedArgument("extra").Error())
	require.Contains(t, UnknownCommand("rnu", "run").Error(), "The most similar commands are:\n\trun")
	require.Contains(t, WatchListUnavailable("/x.yaml", errors.New("boom")).Error(), "boom")
}

func TestErrorsAs(t *testing.T) {
	var err error = MissingArgument("hash")

	var ue *Error
	require.True(t, errors.As(err, &ue))
	require.Equal(t, ErrMissingArgument, ue.Kind)
}
