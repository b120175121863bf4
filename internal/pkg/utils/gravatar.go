package utils

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// GetGravatarURL builds the Gravatar URL for an email address. Unset or
// unregistered addresses resolve to the "mystery person" placeholder.
func GetGravatarURL(email string, size int) string {
	if size <= 0 {
		size = 200
	}

	email = strings.ToLower(strings.TrimSpace(email))
	hash := sha256.Sum256([]byte(email))

	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?s=%d&d=mp", hash, size)
}
