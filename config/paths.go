package config

import (
	"os"
	"path/filepath"
)

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", ".uptime", "session")
	}
	return filepath.Join(dir, "uptime-client", "session")
}
