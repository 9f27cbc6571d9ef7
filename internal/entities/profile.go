package entities

import (
	"time"

	"linkpage-be/internal/models"
)

// Profile represents a row of the profiles table together with its links
type Profile struct {
	ID            string // UUID
	UserID        string // UUID, one profile per user
	CustomURL     string
	Username      string
	AvatarURL     string
	BackgroundURL string
	About         string
	Tags          []string
	SocialLinks   []*SocialLink // Sorted by Position
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SocialLink represents a row of the social_links table
type SocialLink struct {
	ID        string // UUID
	ProfileID string
	Platform  string
	URL       string
	Position  int
	CreatedAt time.Time
}

// ClickBucket is one row of the click analytics query
type ClickBucket struct {
	Time  time.Time
	Count int
}

// FindLink returns the link with the given id, or nil
func (p *Profile) FindLink(id string) *SocialLink {
	for _, l := range p.SocialLinks {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// ToModel converts the row into the public profile shape
func (p *Profile) ToModel() *models.UserProfile {
	links := make([]models.SocialLink, 0, len(p.SocialLinks))
	for _, l := range p.SocialLinks {
		links = append(links, l.ToModel())
	}

	tags := make([]string, len(p.Tags))
	copy(tags, p.Tags)

	return &models.UserProfile{
		CustomURL:     p.CustomURL,
		Username:      p.Username,
		AvatarURL:     p.AvatarURL,
		BackgroundURL: p.BackgroundURL,
		About:         p.About,
		SocialLinks:   links,
		Tags:          tags,
	}
}

func (l *SocialLink) ToModel() models.SocialLink {
	return models.SocialLink{
		ID:       l.ID,
		Platform: models.Platform(l.Platform),
		URL:      l.URL,
	}
}
