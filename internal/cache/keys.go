package cache

import "fmt"

// ProfileKey holds the cached public profile for a custom URL
func ProfileKey(customURL string) string {
	return fmt.Sprintf("profile:%s", customURL)
}

// CustomURLKey holds a "taken" or "available" marker for a custom URL
func CustomURLKey(customURL string) string {
	return fmt.Sprintf("customurl:exists:%s", customURL)
}
