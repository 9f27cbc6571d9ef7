package models

// SocialLinkInput is a social link as submitted by a client. ID is only
// set when an existing link is kept during a full replacement.
type SocialLinkInput struct {
	ID       string   `json:"id,omitempty"`
	Platform Platform `json:"platform" binding:"required,platform"`
	URL      string   `json:"url" binding:"required,http_url,max=2048"`
}

// CreateProfileRequest represents the request body for creating the caller's profile
type CreateProfileRequest struct {
	CustomURL     string            `json:"customUrl" binding:"required"`
	Username      string            `json:"username" binding:"required,max=50"`
	AvatarURL     string            `json:"avatarUrl" binding:"omitempty,http_url,max=2048"`
	BackgroundURL string            `json:"backgroundUrl" binding:"omitempty,http_url,max=2048"`
	About         string            `json:"about" binding:"max=1000"`
	SocialLinks   []SocialLinkInput `json:"socialLinks" binding:"max=50,dive"`
	Tags          []string          `json:"tags"`
}

// UpdateProfileRequest is a partial update; nil fields are left unchanged.
// SocialLinks and Tags replace the whole collection when present.
type UpdateProfileRequest struct {
	Username      *string            `json:"username,omitempty" binding:"omitempty,min=1,max=50"`
	AvatarURL     *string            `json:"avatarUrl,omitempty" binding:"omitempty,max=2048"`
	BackgroundURL *string            `json:"backgroundUrl,omitempty" binding:"omitempty,max=2048"`
	About         *string            `json:"about,omitempty" binding:"omitempty,max=1000"`
	SocialLinks   *[]SocialLinkInput `json:"socialLinks,omitempty" binding:"omitempty,max=50,dive"`
	Tags          *[]string          `json:"tags,omitempty"`
}

// UpdateSocialLinkRequest changes the platform and/or target of one link
type UpdateSocialLinkRequest struct {
	Platform *Platform `json:"platform,omitempty" binding:"omitempty,platform"`
	URL      *string   `json:"url,omitempty" binding:"omitempty,http_url,max=2048"`
}

type ChangeCustomURLRequest struct {
	CustomURL string `json:"customUrl" binding:"required"`
}

// ReorderLinksRequest lists every link id of the profile in the new display order
type ReorderLinksRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

type SetTagsRequest struct {
	Tags []string `json:"tags"`
}
