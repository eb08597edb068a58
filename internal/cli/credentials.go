package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Credentials is the TOML file written by login and register.
type Credentials struct {
	APIURL    string    `toml:"api_url"`
	Token     string    `toml:"token"`
	Email     string    `toml:"email"`
	ExpiresAt time.Time `toml:"expires_at"`
}

func defaultCredentialsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config dir: %w", err)
	}
	return filepath.Join(dir, "tasklists", "credentials.toml"), nil
}

// loadCredentials returns empty credentials when the file does not exist.
func loadCredentials(path string) (Credentials, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Credentials{}, nil
	}
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var creds Credentials
	if err := toml.Unmarshal(raw, &creds); err != nil {
		return Credentials{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return creds, nil
}

func saveCredentials(path string, creds Credentials) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := toml.NewEncoder(f).Encode(creds); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	return f.Close()
}
