package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

const appDirName = "storyteller"

// AppDataDir returns the application data directory for config, logs and the run ledger.
// Uses os.UserConfigDir() which returns:
//   - macOS: ~/Library/Application Support
//   - Linux: $XDG_CONFIG_HOME or ~/.config
//   - Windows: %AppData% (roaming)
func AppDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}

	path := filepath.Join(dir, appDirName)

	// Use restrictive permissions for application data
	_ = os.MkdirAll(path, 0700)

	return path
}

// AppLocalDataDir returns the OS-appropriate local data directory.
// History, learning data and rendered output live here.
//   - macOS: ~/Library/Application Support/storyteller
//   - Linux: $XDG_DATA_HOME/storyteller or ~/.local/share/storyteller
//   - Windows: %LOCALAPPDATA%\storyteller
func AppLocalDataDir() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "."
		}
		base = filepath.Join(home, "Library", "Application Support")

	case "windows":
		base = os.Getenv("LOCALAPPDATA")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "."
			}
			base = filepath.Join(home, "AppData", "Local")
		}

	default:
		base = os.Getenv("XDG_DATA_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "."
			}
			base = filepath.Join(home, ".local", "share")
		}
	}

	return filepath.Join(base, appDirName)
}

// ConfigFilePath returns the path of config.yaml.
// STORY_CONFIG overrides the default location.
func ConfigFilePath() string {
	if p := os.Getenv("STORY_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(AppDataDir(), "config.yaml")
}

// WatchListPath returns the default watch list location.
func WatchListPath() string {
	return filepath.Join(AppDataDir(), "watch_list.yaml")
}

// LogFilePath returns the path to the application log file.
func LogFilePath() string {
	return filepath.Join(AppDataDir(), "story.log")
}

// DBPath returns the path of the sqlite run ledger.
func DBPath() string {
	return filepath.Join(AppDataDir(), "store.db")
}

// HistoryFilePath returns the path of the watch-list history document.
func HistoryFilePath() string {
	return filepath.Join(AppLocalDataDir(), "history", "watch_list_history.json")
}

// LearningFilePath returns the path of the engagement learning document.
func LearningFilePath() string {
	return filepath.Join(AppLocalDataDir(), "learning.json")
}

// OutputDir returns the directory rendered images and captions are written to.
func OutputDir() string {
	return filepath.Join(AppLocalDataDir(), "output")
}
