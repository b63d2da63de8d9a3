package server

import (
	"fmt"
	"os"
	"path/filepath"
)

func getXDGStateHome(appName string) (string, error) {
	xdgStateHome := os.Getenv("XDG_STATE_HOME")
	if xdgStateHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		xdgStateHome = filepath.Join(homeDir, ".local", "state")
	}

	appStateDir := filepath.Join(xdgStateHome, appName)

	// Create it if it doesn't exist
	if err := os.MkdirAll(appStateDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create state directory: %w", err)
	}

	return appStateDir, nil
}

// isSubsequence reports whether the runes of query occur in order within
// text. An empty query matches everything.
func isSubsequence(query, text string) bool {
	if query == "" {
		return true
	}

	runes := []rune(query)
	i := 0
	for _, r := range text {
		if r != runes[i] {
			continue
		}
		i++
		if i == len(runes) {
			return true
		}
	}
	return false
}
