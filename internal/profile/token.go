package profile

import (
	"fmt"
	"os"
	"strings"
)

// LoadToken reads the bearer token for a profile. The token file holds a
// single line written by `rigdeskctl login` or provisioned out of band.
func LoadToken(name string) (string, error) {
	data, err := os.ReadFile(TokenPath(name))
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("token file %s is empty", TokenPath(name))
	}
	return token, nil
}

// SaveToken writes the bearer token for a profile.
func SaveToken(name, token string) error {
	if err := EnsureDir(name); err != nil {
		return err
	}
	return os.WriteFile(TokenPath(name), []byte(token+"\n"), 0600)
}

// ClearToken removes the stored token. Called when the server answers 401;
// the next start goes back through login. Missing file is not an error.
func ClearToken(name string) error {
	err := os.Remove(TokenPath(name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
