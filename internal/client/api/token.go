package api

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// DefaultTokenFile is where the CLI keeps the access token between runs.
const DefaultTokenFile = ".taskkeeper_token"

// SaveToken writes token to path, readable only by the current user.
func SaveToken(path, token string) error {
	if err := os.WriteFile(path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// LoadToken reads a token written by SaveToken. A missing file yields
// ErrNotSignedIn.
func LoadToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotSignedIn
		}
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNotSignedIn
	}
	return token, nil
}
