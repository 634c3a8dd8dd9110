package usage

import (
	"fmt"
	"strings"
)

// InvalidFlag is returned when a flag is not valid in the current context.
// The first suggestion, if any, is offered as a correction.
func InvalidFlag(flag string, suggestions ...string) *Error {
	msg := fmt.Sprintf("story: invalid flag '%s'", flag)
	if len(suggestions) > 0 {
		msg += fmt.Sprintf("\n\nDid you mean '%s'?", suggestions[0])
	}
	return &Error{
		Kind:    ErrInvalidFlag,
		Message: msg,
	}
}

// MissingArgument is returned when a required argument is not provided.
func MissingArgument(arg string) *Error {
	return &Error{
		Kind:    ErrMissingArgument,
		Message: fmt.Sprintf("story: missing required argument '%s'", arg),
	}
}

// UnknownCommand lists close matches, if any, below the message.
func UnknownCommand(command string, suggestions ...string) *Error {
	msg := fmt.Sprintf("story: '%s' is not a story command. See 'story --help'.", command)
	if len(suggestions) > 0 {
		msg += "\n\nThe most similar commands are:\n\t" + strings.Join(suggestions, "\n\t")
	}
	return &Error{
		Kind:    ErrUnknownCommand,
		Message: msg,
	}
}

// UnexpectedArgument is returned when a command receives more arguments than it accepts.
func UnexpectedArgument(arg string) *Error {
	return &Error{
		Kind:    ErrMissingArgument,
		Message: fmt.Sprintf("story: unexpected argument '%s'", arg),
	}
}

// InvalidValue is returned when a flag or argument has an unusable value.
func InvalidValue(name, value, reason string) *Error {
	return &Error{
		Kind:    ErrInvalidValue,
		Message: fmt.Sprintf("story: invalid value '%s' for %s: %s", value, name, reason),
	}
}

// ConflictingFlags is returned when two mutually exclusive flags are set.
func ConflictingFlags(a, b string) *Error {
	return &Error{
		Kind:    ErrInvalidFlag,
		Message: fmt.Sprintf("story: %s and %s cannot be used together", a, b),
	}
}

func GitNotInstalled() *Error {
	return &Error{
		Kind:    ErrGitNotInstalled,
		Message: "story: git is not installed or not in PATH",
	}
}

func InvalidConfigKey(key string) *Error {
	return &Error{
		Kind:    ErrInvalidConfigKey,
		Message: fmt.Sprintf("story: '%s' is not a valid config key. See 'story config list'.", key),
	}
}

// WatchListUnavailable wraps a watch list that could not be read at all.
func WatchListUnavailable(path string, err error) *Error {
	return &Error{
		Kind:    ErrWatchListUnavailable,
		Message: fmt.Sprintf("story: could not load watch list %s: %v", path, err),
	}
}

// RunFailed is returned when at least one repository ended in a failed state.
func RunFailed(failed, total int) *Error {
	return &Error{
		Kind:    ErrRunFailed,
		Message: fmt.Sprintf("story: %d of %d repositories failed", failed, total),
	}
}
