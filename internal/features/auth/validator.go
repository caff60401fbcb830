package auth

import (
	"errors"
	"regexp"
	"strings"

	"github.com/devlink-social/devlink/internal/pkg/validator"
)

var usernameRegex = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// ValidateUsername checks if the username format is valid. Usernames double
// as mention handles, so the character set must stay word-character safe.
func ValidateUsername(username string) error {
	username = strings.ToLower(strings.TrimSpace(username))

	if len(username) < 3 || len(username) > 20 {
		return errors.New("username must be between 3 and 20 characters")
	}

	if !usernameRegex.MatchString(username) {
		return errors.New("username must start with a letter and contain only letters, numbers, underscores, or hyphens")
	}

	return nil
}

// ValidateDisplayName checks if the display name is valid
func ValidateDisplayName(name string) error {
	name = strings.TrimSpace(name)

	if len(name) < 1 || len(name) > 50 {
		return errors.New("display name must be between 1 and 50 characters")
	}

	return nil
}

// ValidatePassword checks password strength on registration and reset
func ValidatePassword(password string) error {
	if !validator.IsStrongPassword(password) {
		return errors.New("password must be at least 8 characters with upper and lower case letters, a number, and a symbol")
	}
	return nil
}

// ValidateWebsite checks an optional profile website URL
func ValidateWebsite(website string) error {
	if website == "" {
		return nil
	}
	if !validator.IsValidURL(website) {
		return errors.New("website must be a valid http(s) URL")
	}
	return nil
}

// ValidateBio checks if the bio length is valid
func ValidateBio(bio string) error {
	if len(strings.TrimSpace(bio)) > 160 {
		return errors.New("bio cannot exceed 160 characters")
	}
	return nil
}

// GenerateUniqueUsername creates a base username from a name string.
// Uniqueness is not guaranteed here; callers append a numeric suffix until
// the repository reports the name as free.
func GenerateUniqueUsername(name string) string {
	reg := regexp.MustCompile(`[^a-zA-Z0-9]+`)
	username := strings.ToLower(reg.ReplaceAllString(name, ""))

	if username == "" || (username[0] >= '0' && username[0] <= '9') {
		username = "user" + username
	}

	// Leave room for suffix numbers
	if len(username) > 15 {
		username = username[:15]
	}

	if len(username) < 3 {
		username = username + "dev"
	}

	return username
}
