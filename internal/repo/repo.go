// Package repo derives stable identifiers and display names for repository targets.
package repo

import (
	"errors"
	"path/filepath"
	"strings"
)

// ID is a normalized repository identifier such as "github.com/user/repo"
// or "local:/path/to/repo".
type ID string

// containsPathTraversal checks if a string contains path traversal sequences
func containsPathTraversal(s string) bool {
	if strings.Contains(s, "..") {
		return true
	}
	// Check for null bytes which could be used to bypass checks
	return strings.Contains(s, "\x00")
}

// DeriveID derives an ID from a remote URL or a local path.
func DeriveID(location string) (ID, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return "", errors.New("cannot derive repo id")
	}

	trimmed := strings.TrimSuffix(strings.TrimRight(location, "/"), ".git")

	if strings.HasPrefix(trimmed, "git@") {
		parts := strings.SplitN(trimmed, ":", 2)
		if len(parts) != 2 {
			return "", errors.New("invalid ssh remote url")
		}
		host := strings.TrimPrefix(parts[0], "git@")
		path := parts[1]

		if containsPathTraversal(host) || containsPathTraversal(path) {
			return "", errors.New("invalid remote url: contains path traversal sequence")
		}

		// Normalize remote URLs to lowercase to prevent duplicates
		return ID(strings.ToLower(host + "/" + path)), nil
	}

	for _, scheme := range []string{"https://", "http://", "git://", "ssh://"} {
		if rest, ok := strings.CutPrefix(trimmed, scheme); ok {
			// ssh://git@host/path
			if i := strings.Index(rest, "@"); i >= 0 && i < strings.Index(rest+"/", "/") {
				rest = rest[i+1:]
			}
			if containsPathTraversal(rest) {
				return "", errors.New("invalid remote url: contains path traversal sequence")
			}
			return ID(strings.ToLower(rest)), nil
		}
	}

	if path, ok := strings.CutPrefix(trimmed, "file://"); ok {
		return ID("local:" + filepath.Clean(path)), nil
	}

	if strings.Contains(trimmed, "://") {
		return "", errors.New("unsupported remote url format: only git@, https://, http://, ssh://, git://, and file:// are supported")
	}

	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", err
	}
	return ID("local:" + abs), nil
}

// Name returns the last path segment, used as the display name of a repository.
func (id ID) Name() string {
	s := strings.TrimPrefix(string(id), "local:")
	s = strings.TrimRight(s, "/")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	return s
}

// DisplayName returns Name for location, or location itself when no ID can be derived.
func DisplayName(location string) string {
	id, err := DeriveID(location)
	if err != nil {
		return location
	}
	if name := id.Name(); name != "" {
		return name
	}
	return location
}

// ToFilesystemSafe converts an ID to a filesystem-safe directory name.
// Transforms:
//   - "github.com/user/repo" -> "github.com__user__repo"
//   - "local:/path/to/repo" -> "local____path__to__repo"
func (id ID) ToFilesystemSafe() string {
	return Slug(string(id))
}

// Slug makes an arbitrary repository name usable as a directory name.
func Slug(name string) string {
	s := strings.ReplaceAll(name, ":", "__")
	s = strings.ReplaceAll(s, "/", "__")
	s = strings.ReplaceAll(s, "\\", "__")
	s = strings.ReplaceAll(s, "..", "_")
	s = strings.TrimLeft(s, "_")
	if s == "" {
		return "repo"
	}
	return s
}
