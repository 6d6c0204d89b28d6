package config

import (
	"os"
	"path/filepath"
	"strings"
)

const fallbackVersion = "0.1.0"

// GetVersion returns the dashboard version shown in the page footer.
// APP_VERSION wins, then a VERSION file in dir or its parent.
func GetVersion(dir string) string {
	if envVersion := strings.TrimSpace(os.Getenv("APP_VERSION")); envVersion != "" {
		return envVersion
	}

	for _, candidate := range []string{
		filepath.Join(dir, "VERSION"),
		filepath.Join(dir, "..", "VERSION"),
	} {
		if content, err := os.ReadFile(candidate); err == nil {
			if v := strings.TrimSpace(string(content)); v != "" {
				return v
			}
		}
	}

	return fallbackVersion
}
