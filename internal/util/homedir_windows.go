package util

import (
	"fmt"
	"os/user"
)

// Homedir returns the current user's profile directory.
func Homedir() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("failed to look up current user: %w", err)
	}
	return u.HomeDir, nil
}
