package auth

import (
	"fmt"
	"unicode"
)

// Password rule bounds.
const (
	MinPasswordLen = 8
	MaxPasswordLen = 64
)

// Username bounds.
const (
	MinUsernameLen = 3
	MaxUsernameLen = 32
)

// ValidatePassword checks the password rules and returns an empty string
// when the password is acceptable, or a diagnostic describing the first
// violated rule.
func ValidatePassword(password string) string {
	runes := []rune(password)
	if len(runes) < MinPasswordLen {
		return fmt.Sprintf("Password must be at least %d characters.", MinPasswordLen)
	}
	if len(runes) > MaxPasswordLen {
		return fmt.Sprintf("Password cannot exceed %d characters.", MaxPasswordLen)
	}

	var hasLetter, hasDigit, hasSpace bool
	for _, r := range runes {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsSpace(r):
			hasSpace = true
		}
	}
	if hasSpace {
		return "Password cannot contain spaces."
	}
	if !hasLetter {
		return "Password must contain at least one letter."
	}
	if !hasDigit {
		return "Password must contain at least one digit."
	}
	return ""
}

// usernameState drives the username scanner. A username must start with a
// letter, may contain letters, digits and single separators (underscore or
// hyphen), and must end on a letter or digit.
type usernameState int

const (
	stateStart usernameState = iota
	stateAlnum
	stateSeparator
)

// ValidateUsername checks the username shape and returns an empty string
// when acceptable, or a diagnostic describing the first violated rule.
func ValidateUsername(username string) string {
	runes := []rune(username)
	if len(runes) < MinUsernameLen {
		return fmt.Sprintf("Username must be at least %d characters.", MinUsernameLen)
	}
	if len(runes) > MaxUsernameLen {
		return fmt.Sprintf("Username cannot exceed %d characters.", MaxUsernameLen)
	}

	state := stateStart
	for _, r := range runes {
		switch state {
		case stateStart:
			if !unicode.IsLetter(r) {
				return "Username must start with a letter."
			}
			state = stateAlnum
		case stateAlnum:
			switch {
			case unicode.IsLetter(r) || unicode.IsDigit(r):
				// stay
			case r == '_' || r == '-':
				state = stateSeparator
			default:
				return fmt.Sprintf("Username cannot contain %q.", r)
			}
		case stateSeparator:
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				return "Username cannot contain consecutive separators."
			}
			state = stateAlnum
		}
	}
	if state == stateSeparator {
		return "Username must end with a letter or digit."
	}
	return ""
}
