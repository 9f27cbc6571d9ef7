package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Platform identifies the external service a social link points to.
// Only the values declared below are valid.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformYouTube   Platform = "youtube"
	PlatformTikTok    Platform = "tiktok"
	PlatformTwitter   Platform = "twitter"
	PlatformWebsite   Platform = "website"
)

var (
	ErrInvalidPlatform = errors.New("invalid platform")
	ErrMissingField    = errors.New("missing required field")
)

var platforms = []Platform{
	PlatformInstagram,
	PlatformYouTube,
	PlatformTikTok,
	PlatformTwitter,
	PlatformWebsite,
}

// Platforms returns every supported platform in declaration order
func Platforms() []Platform {
	out := make([]Platform, len(platforms))
	copy(out, platforms)
	return out
}

// ParsePlatform converts a raw string into a Platform
func ParsePlatform(s string) (Platform, error) {
	p := Platform(s)
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPlatform, s)
	}
	return p, nil
}

func (p Platform) Valid() bool {
	switch p {
	case PlatformInstagram, PlatformYouTube, PlatformTikTok, PlatformTwitter, PlatformWebsite:
		return true
	}
	return false
}

func (p Platform) String() string {
	return string(p)
}

func (p Platform) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPlatform, string(p))
	}
	return []byte(p), nil
}

func (p *Platform) UnmarshalText(text []byte) error {
	parsed, err := ParsePlatform(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// SocialLink is one external profile link owned by a profile
type SocialLink struct {
	ID       string   `json:"id" validate:"required"`
	Platform Platform `json:"platform" validate:"platform"`
	URL      string   `json:"url" validate:"required"`
}

// UserProfile is the public identity of a user. SocialLinks are rendered
// in slice order; Tags carry no ordering or uniqueness guarantee.
type UserProfile struct {
	CustomURL     string       `json:"customUrl"`
	Username      string       `json:"username"`
	AvatarURL     string       `json:"avatarUrl"`
	BackgroundURL string       `json:"backgroundUrl"`
	About         string       `json:"about"`
	SocialLinks   []SocialLink `json:"socialLinks" validate:"unique=ID,dive"`
	Tags          []string     `json:"tags"`
}

var profileFields = []string{
	"customUrl",
	"username",
	"avatarUrl",
	"backgroundUrl",
	"about",
	"socialLinks",
	"tags",
}

// ValidateSocialLink reports whether link has a known platform and non-empty id and url.
func ValidateSocialLink(link SocialLink) error {
	return validateStruct(link)
}

// Normalize replaces nil collections with empty ones, the form DecodeProfile
// produces.
func (p *UserProfile) Normalize() {
	if p.SocialLinks == nil {
		p.SocialLinks = []SocialLink{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
}

// ValidateProfile normalizes p, then checks every social link and that link
// ids are unique within the profile. Empty collections are valid.
func ValidateProfile(p *UserProfile) error {
	if p == nil {
		return ValidationErrors{{Field: "profile", Message: "is required"}}
	}
	p.Normalize()
	return validateStruct(p)
}

// EncodeProfile serializes p to its JSON wire form. Nil collections are
// written as empty arrays.
func EncodeProfile(p *UserProfile) ([]byte, error) {
	out := *p
	out.Normalize()
	return json.Marshal(out)
}

// DecodeProfile parses the JSON wire form of a profile. Every field must be
// present and non-null; records written before customUrl, backgroundUrl or
// tags existed are rejected rather than defaulted.
func DecodeProfile(data []byte) (*UserProfile, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}

	for _, field := range profileFields {
		value, ok := raw[field]
		if !ok || bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, field)
		}
	}

	var p UserProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}

	if err := ValidateProfile(&p); err != nil {
		return nil, err
	}

	return &p, nil
}
