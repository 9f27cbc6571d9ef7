package models

import "time"

// ProfileResponse is a profile as returned by the API
type ProfileResponse struct {
	UserProfile
	ProfileURL string    `json:"profileUrl"` // Frontend URL of the public profile page
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// AvailabilityResponse reports whether a custom URL can be claimed
type AvailabilityResponse struct {
	CustomURL string `json:"customUrl"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// ClickBucket is the number of social link clicks within one time bucket
type ClickBucket struct {
	Time  time.Time `json:"time"`
	Count int       `json:"count"`
}
