package service

import (
	"net/mail"
	"regexp"
	"strings"
)

const (
	minPasswordLen = 6
	maxPasswordLen = 100
	defaultColor   = "#0078D4"
)

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// normalizeEmail trims and lower-cases an address so lookups are case-insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return invalid("email", "email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return invalid("email", "email is not a valid address")
	}
	return nil
}

func validateRegister(in RegisterInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("name", "name is required")
	}
	if err := validateEmail(normalizeEmail(in.Email)); err != nil {
		return err
	}
	if in.Password == "" {
		return invalid("password", "password is required")
	}
	if n := len([]rune(in.Password)); n < minPasswordLen || n > maxPasswordLen {
		return invalid("password", "password must be between 6 and 100 characters")
	}
	if in.ConfirmPassword != in.Password {
		return invalid("confirm_password", "passwords do not match")
	}
	return nil
}

func requireTitle(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", invalid(field, field+" is required")
	}
	return value, nil
}

// normalizeColor falls back to the default colour for blank input.
func normalizeColor(color string) (string, error) {
	color = strings.TrimSpace(color)
	if color == "" {
		return defaultColor, nil
	}
	if !colorPattern.MatchString(color) {
		return "", invalid("color", "color must look like #RRGGBB")
	}
	return strings.ToUpper(color), nil
}
