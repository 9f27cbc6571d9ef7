package service

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

const (
	minCustomURLLength = 3
	maxCustomURLLength = 30
)

var customURLPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// Custom URLs share the root path with the service's own routes and pages
var reservedCustomURLs = map[string]bool{
	"about":     true,
	"admin":     true,
	"analytics": true,
	"api":       true,
	"assets":    true,
	"auth":      true,
	"ftp":       true,
	"health":    true,
	"help":      true,
	"links":     true,
	"localhost": true,
	"login":     true,
	"logout":    true,
	"mail":      true,
	"metrics":   true,
	"profile":   true,
	"profiles":  true,
	"qrcode":    true,
	"register":  true,
	"settings":  true,
	"signin":    true,
	"signout":   true,
	"signup":    true,
	"static":    true,
	"www":       true,
}

// NormalizeCustomURL trims and lower-cases a custom URL; lookups and
// uniqueness are case-insensitive.
func NormalizeCustomURL(customURL string) string {
	return strings.ToLower(strings.TrimSpace(customURL))
}

// ValidateCustomURL checks an already normalized custom URL
func ValidateCustomURL(customURL string) error {
	if len(customURL) < minCustomURLLength {
		return fmt.Errorf("%w: must be at least %d characters long", ErrInvalidCustomURL, minCustomURLLength)
	}
	if len(customURL) > maxCustomURLLength {
		return fmt.Errorf("%w: must be at most %d characters long", ErrInvalidCustomURL, maxCustomURLLength)
	}
	if !customURLPattern.MatchString(customURL) {
		return fmt.Errorf("%w: can only contain letters, numbers, hyphens, and underscores", ErrInvalidCustomURL)
	}
	if reservedCustomURLs[customURL] {
		return fmt.Errorf("%w: '%s' cannot be used", ErrCustomURLReserved, customURL)
	}
	return nil
}

// validateHTTPURL accepts absolute http and https URLs with a host
func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: %q must be an absolute http or https URL", ErrInvalidURL, raw)
	}
	return nil
}
