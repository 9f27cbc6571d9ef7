package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"linkpage-be/internal/cache"
	"linkpage-be/internal/entities"
	"linkpage-be/internal/metrics"
	"linkpage-be/internal/models"
	"linkpage-be/internal/repository"
)

const (
	maxSocialLinks = 50
	maxTags        = 20
	maxTagLength   = 32

	defaultSearchLimit    = 20
	defaultAnalyticsHours = 24
	maxAnalyticsHours     = 30 * 24

	profileCacheTTL       = 1 * time.Hour
	customURLTakenTTL     = 1 * time.Hour
	customURLAvailableTTL = 30 * time.Second
)

// ProfileService defines the interface for profile business logic
type ProfileService interface {
	CreateProfile(ctx context.Context, userID string, req *models.CreateProfileRequest) (*models.ProfileResponse, error)
	GetProfile(ctx context.Context, customURL string) (*models.ProfileResponse, error)
	GetMyProfile(ctx context.Context, userID string) (*models.ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.ProfileResponse, error)
	ChangeCustomURL(ctx context.Context, userID, customURL string) (*models.ProfileResponse, error)
	DeleteProfile(ctx context.Context, userID string) error
	AddSocialLink(ctx context.Context, userID string, input *models.SocialLinkInput) (*models.SocialLink, error)
	UpdateSocialLink(ctx context.Context, userID, linkID string, req *models.UpdateSocialLinkRequest) (*models.SocialLink, error)
	RemoveSocialLink(ctx context.Context, userID, linkID string) error
	ReorderSocialLinks(ctx context.Context, userID string, ids []string) (*models.ProfileResponse, error)
	SetTags(ctx context.Context, userID string, tags []string) ([]string, error)
	SearchByTag(ctx context.Context, tag string, limit, offset int) ([]*models.ProfileResponse, error)
	CheckAvailability(ctx context.Context, customURL string) (*models.AvailabilityResponse, error)
	VisitSocialLink(ctx context.Context, customURL, linkID string) (string, error)
	GetClickAnalytics(ctx context.Context, userID string, hours int) ([]models.ClickBucket, error)
	ProfileURL(customURL string) string
}

type profileService struct {
	repo        repository.ProfileRepository
	cache       cache.Cache
	log         *zap.Logger
	metrics     *metrics.Metrics
	frontendURL string
}

// NewProfileService creates a profile service. cacheClient and m may be nil.
func NewProfileService(
	repo repository.ProfileRepository,
	cacheClient cache.Cache,
	log *zap.Logger,
	m *metrics.Metrics,
	frontendURL string,
) ProfileService {
	if log == nil {
		log = zap.NewNop()
	}
	return &profileService{
		repo:        repo,
		cache:       cacheClient,
		log:         log,
		metrics:     m,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

func (s *profileService) ProfileURL(customURL string) string {
	return fmt.Sprintf("%s/%s", s.frontendURL, customURL)
}

func (s *profileService) toResponse(p *entities.Profile) *models.ProfileResponse {
	return &models.ProfileResponse{
		UserProfile: *p.ToModel(),
		ProfileURL:  s.ProfileURL(p.CustomURL),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// loadOwn returns the profile owned by userID
func (s *profileService) loadOwn(ctx context.Context, userID string) (*entities.Profile, error) {
	profile, err := s.repo.FindByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return profile, nil
}

// checkCustomURLAvailability consults the cache before the database. Only
// "taken" markers are trusted; "available" ones just save nothing.
func (s *profileService) checkCustomURLAvailability(ctx context.Context, customURL string) (bool, error) {
	key := cache.CustomURLKey(customURL)
	if s.cache != nil {
		if val, err := s.cache.Get(ctx, key); err == nil && val == "taken" {
			return false, nil
		}
	}

	exists, err := s.repo.ExistsCustomURL(ctx, customURL)
	if err != nil {
		return false, fmt.Errorf("failed to check custom url availability: %w", err)
	}
	if exists {
		s.cacheSet(ctx, key, "taken", customURLTakenTTL)
		return false, nil
	}
	s.cacheSet(ctx, key, "available", customURLAvailableTTL)
	return true, nil
}

func (s *profileService) cacheSet(ctx context.Context, key, value string, ttl time.Duration) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, ttl); err != nil {
		s.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *profileService) cacheDelete(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.log.Warn("cache delete failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// invalidate drops the cached public profiles for the given custom URLs
func (s *profileService) invalidate(ctx context.Context, customURLs ...string) {
	keys := make([]string, len(customURLs))
	for i, u := range customURLs {
		keys[i] = cache.ProfileKey(u)
	}
	s.cacheDelete(ctx, keys...)
}

func validateOptionalURL(raw string) error {
	if raw == "" {
		return nil
	}
	return validateHTTPURL(raw)
}

// normalizeTags trims tags and drops empty ones. Duplicates and casing are kept.
func normalizeTags(tags []string) ([]string, error) {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if utf8.RuneCountInString(tag) > maxTagLength {
			return nil, fmt.Errorf("%w: %q exceeds %d characters", ErrTagTooLong, tag, maxTagLength)
		}
		out = append(out, tag)
	}
	if len(out) > maxTags {
		return nil, fmt.Errorf("%w: at most %d allowed", ErrTooManyTags, maxTags)
	}
	return out, nil
}

// buildLinks turns client input into link rows in input order. Inputs
// without an id get a fresh one; an id must name a link of existing. When
// existing is nil every link gets a fresh id.
func buildLinks(inputs []models.SocialLinkInput, existing *entities.Profile) ([]*entities.SocialLink, error) {
	if len(inputs) > maxSocialLinks {
		return nil, fmt.Errorf("%w: at most %d allowed", ErrTooManyLinks, maxSocialLinks)
	}

	links := make([]*entities.SocialLink, 0, len(inputs))
	for _, in := range inputs {
		if !in.Platform.Valid() {
			return nil, fmt.Errorf("%w: %q", models.ErrInvalidPlatform, string(in.Platform))
		}
		target := strings.TrimSpace(in.URL)
		if err := validateHTTPURL(target); err != nil {
			return nil, err
		}

		// Without an existing profile there is nothing to keep, so ids are ignored.
		id := in.ID
		if existing == nil || id == "" {
			id = uuid.NewString()
		} else if existing.FindLink(id) == nil {
			return nil, fmt.Errorf("%w: %s", ErrLinkNotFound, id)
		}

		link := &entities.SocialLink{
			ID:       id,
			Platform: string(in.Platform),
			URL:      target,
		}
		if existing != nil {
			link.ProfileID = existing.ID
		}
		links = append(links, link)
	}
	return links, nil
}

func requiredField(field string) error {
	return models.ValidationErrors{{Field: field, Message: "is required"}}
}

// CreateProfile creates the caller's profile. Each user owns at most one.
func (s *profileService) CreateProfile(ctx context.Context, userID string, req *models.CreateProfileRequest) (*models.ProfileResponse, error) {
	if _, err := s.repo.FindByUserID(ctx, userID); err == nil {
		return nil, ErrProfileExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing profile: %w", err)
	}

	customURL := NormalizeCustomURL(req.CustomURL)
	if err := ValidateCustomURL(customURL); err != nil {
		return nil, err
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, requiredField("username")
	}

	avatarURL := strings.TrimSpace(req.AvatarURL)
	if err := validateOptionalURL(avatarURL); err != nil {
		return nil, err
	}
	backgroundURL := strings.TrimSpace(req.BackgroundURL)
	if err := validateOptionalURL(backgroundURL); err != nil {
		return nil, err
	}

	tags, err := normalizeTags(req.Tags)
	if err != nil {
		return nil, err
	}
	links, err := buildLinks(req.SocialLinks, nil)
	if err != nil {
		return nil, err
	}

	available, err := s.checkCustomURLAvailability(ctx, customURL)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, fmt.Errorf("%w: '%s'", ErrCustomURLTaken, customURL)
	}

	profile := &entities.Profile{
		UserID:        userID,
		CustomURL:     customURL,
		Username:      username,
		AvatarURL:     avatarURL,
		BackgroundURL: backgroundURL,
		About:         req.About,
		Tags:          tags,
		SocialLinks:   links,
	}
	if err := models.ValidateProfile(profile.ToModel()); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Lost a race: either for the custom URL or for the user's single profile.
			if _, findErr := s.repo.FindByUserID(ctx, userID); findErr == nil {
				return nil, ErrProfileExists
			}
			s.cacheSet(ctx, cache.CustomURLKey(customURL), "taken", customURLTakenTTL)
			return nil, fmt.Errorf("%w: '%s'", ErrCustomURLTaken, customURL)
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	s.cacheSet(ctx, cache.CustomURLKey(customURL), "taken", customURLTakenTTL)
	s.log.Info("profile created", zap.String("user_id", userID), zap.String("custom_url", customURL))

	return s.toResponse(profile), nil
}

// loadPublic reads a profile through the cache without counting a view
func (s *profileService) loadPublic(ctx context.Context, customURL string) (*models.ProfileResponse, error) {
	key := cache.ProfileKey(customURL)
	if s.cache != nil {
		var cached models.ProfileResponse
		err := s.cache.GetJSON(ctx, key, &cached)
		if err == nil {
			s.metrics.CacheResult(true)
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn("profile cache read failed", zap.String("key", key), zap.Error(err))
		}
		s.metrics.CacheResult(false)
	}

	profile, err := s.repo.FindByCustomURL(ctx, customURL)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	resp := s.toResponse(profile)
	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, resp, profileCacheTTL); err != nil {
			s.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return resp, nil
}

// GetProfile returns the public profile addressed by customURL
func (s *profileService) GetProfile(ctx context.Context, customURL string) (*models.ProfileResponse, error) {
	resp, err := s.loadPublic(ctx, NormalizeCustomURL(customURL))
	if err != nil {
		return nil, err
	}
	s.metrics.ProfileViewed()
	return resp, nil
}

func (s *profileService) GetMyProfile(ctx context.Context, userID string) (*models.ProfileResponse, error) {
	profile, err := s.loadOwn(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(profile), nil
}

// UpdateProfile applies a partial update to the caller's profile
func (s *profileService) UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.ProfileResponse, error) {
	profile, err := s.loadOwn(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username == "" {
			return nil, requiredField("username")
		}
		profile.Username = username
	}
	if req.AvatarURL != nil {
		avatarURL := strings.TrimSpace(*req.AvatarURL)
		if err := validateOptionalURL(avatarURL); err != nil {
			return nil, err
		}
		profile.AvatarURL = avatarURL
	}
	if req.BackgroundURL != nil {
		backgroundURL := strings.TrimSpace(*req.BackgroundURL)
		if err := validateOptionalURL(backgroundURL); err != nil {
			return nil, err
		}
		profile.BackgroundURL = backgroundURL
	}
	if req.About != nil {
		profile.About = *req.About
	}
	if req.Tags != nil {
		tags, err := normalizeTags(*req.Tags)
		if err != nil {
			return nil, err
		}
		profile.Tags = tags
	}

	var links []*entities.SocialLink
	if req.SocialLinks != nil {
		links, err = buildLinks(*req.SocialLinks, profile)
		if err != nil {
			return nil, err
		}
		profile.SocialLinks = links
	}

	if err := models.ValidateProfile(profile.ToModel()); err != nil {
		return nil, err
	}

	// A failed commit may still have landed, so the cached copy goes either way.
	defer s.invalidate(ctx, profile.CustomURL)

	if req.SocialLinks != nil {
		err = s.repo.UpdateWithLinks(ctx, profile, links)
	} else {
		err = s.repo.Update(ctx, profile)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return s.toResponse(profile), nil
}

// ChangeCustomURL moves the caller's profile to a new custom URL
func (s *profileService) ChangeCustomURL(ctx context.Context, userID, customURL string) (*models.ProfileResponse, error) {
	profile, err := s.loadOwn(ctx, userID)
	if err != nil {
		return nil, err
	}

	customURL = NormalizeCustomURL(customURL)
	if customURL == profile.CustomURL {
		return s.toResponse(profile), nil
	}
	if err := ValidateCustomURL(customURL); err != nil {
		return nil, err
	}

	available, err := s.checkCustomURLAvailability(ctx, customURL)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, fmt.Errorf("%w: '%s'", ErrCustomURLTaken, customURL)
	}

	oldURL := profile.CustomURL
	profile.CustomURL = customURL
	if err := s.repo.Update(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.cacheSet(ctx, cache.CustomURLKey(customURL), "taken", customURLTakenTTL)
			return nil, fmt.Errorf("%w: '%s'", ErrCustomURLTaken, customURL)
		}
		return nil, fmt.Errorf("failed to change custom url: %w", err)
	}

	s.invalidate(ctx, oldURL, customURL)
	s.cacheDelete(ctx, cache.CustomURLKey(oldURL))
	s.cacheSet(ctx, cache.CustomURLKey(customURL), "taken", customURLTakenTTL)
	s.log.Info("custom url changed",
		zap.String("user_id", userID),
		zap.String("from", oldURL),
		zap.String("to", customURL),
	)

	return s.toResponse(profile), nil
}

func (s *profileService) DeleteProfile(ctx context.Context, userID string) error {
	profile, err := s.loadOwn(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProfileNotFound
		}
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	s.invalidate(ctx, profile.CustomURL)
	s.cacheDelete(ctx, cache.CustomURLKey(profile.CustomURL))
	s.log.Info("profile deleted", zap.String("user_id", userID), zap.String("custom_url", profile.CustomURL))
	return nil
}

// AddSocialLink appends a new link to the end of the caller's link list
func (s *profileService) AddSocialLink(ctx context.Context, userID string, input *models.SocialLinkInput) (*models.SocialLink, error) {
	profile, err := s.loadOwn(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(profile.SocialLinks) >= maxSocialLinks {
		return nil, fmt.Errorf("%w: at most %d allowed", ErrTooManyLinks, maxSocialLinks)
	}

	// Ids of new links are always generated here.
	links, err := buildLinks([]models.SocialLinkInput{{Platform: input.Platform, URL: input.URL}}, profile)
	if err != nil {
		return nil, err
	}
	link := links[0]

	if err := models.ValidateSocialLink(link.ToModel()); err != nil {
		return nil, err
	}
	if err := s.repo.AddSocialLink(ctx, link); err != nil {
		return nil, fmt.Errorf("failed to add social link: %w", err)
	}

	s.invalidate(ctx, profile.CustomURL)
	result := link.ToModel()
	return &result, nil
}

func (s *profileService) UpdateSocialLink(ctx context.Context, userID, linkID string, req *models.UpdateSocialLinkRequest) (*models.SocialLink, error) {
	profile, err := s.loadOwn(ctx, userID)
	if err != nil {
		return nil, err
	}
	current := profile.FindLink(linkID)
	if current == nil {
		return nil, ErrLinkNotFound
	}

	updated := *current
	if req.Platform != nil {
		if !req.Platform.Valid() {
			return nil, fmt.Errorf("%w: %q", models.ErrInvalidPlatform, string(*req.Platform))
		}
		updated.Platform = string(*req.Platform)
	}
	if req.URL != nil {
		target := strings.TrimSpace(*req.URL)
		if err := validateHTTPURL(target); err != nil {
			return nil, err
		}
		updated.URL = target
	}

	if err := models.ValidateSocialLink(updated.ToModel()); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateSocialLink(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to update social link: %w", err)
	}

	s.invalidate(ctx, profile.CustomURL)
	result := updated.ToModel()
	return &result, nil
}

func (s *profileService) RemoveSocialLink(ctx context.Context, userID, linkID string) error {
	profile, err := s.loadOwn(ctx, userID)
	if err != nil {
		return err
	}
	if profile.FindLink(linkID) == nil {
		return ErrLinkNotFound
	}

	if err := s.repo.DeleteSocialLink(ctx, profile.ID, linkID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrLinkNotFound
		}
		return fmt.Errorf("failed to remove social link: %w", err)
	}

	s.invalidate(ctx, profile.CustomURL)
	return nil
}

// ReorderSocialLinks sets the display order. ids must contain every link
// id of the profile exactly once.
func (s *profileService) ReorderSocialLinks(ctx context.Context, userID string, ids []string) (*models.ProfileResponse, error) {
	profile, err := s.loadOwn(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) != len(profile.SocialLinks) {
		return nil, ErrInvalidLinkOrder
	}

	seen := make(map[string]bool, len(ids))
	reordered := make([]*entities.SocialLink, 0, len(ids))
	for i, id := range ids {
		link := profile.FindLink(id)
		if link == nil || seen[id] {
			return nil, ErrInvalidLinkOrder
		}
		seen[id] = true
		link.Position = i
		reordered = append(reordered, link)
	}

	if err := s.repo.ReorderSocialLinks(ctx, profile.ID, ids); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidLinkOrder
		}
		return nil, fmt.Errorf("failed to reorder social links: %w", err)
	}
	profile.SocialLinks = reordered

	s.invalidate(ctx, profile.CustomURL)
	return s.toResponse(profile), nil
}

// SetTags replaces the caller's tags and returns them as stored
func (s *profileService) SetTags(ctx context.Context, userID string, tags []string) ([]string, error) {
	profile, err := s.loadOwn(ctx, userID)
	if err != nil {
		return nil, err
	}

	normalized, err := normalizeTags(tags)
	if err != nil {
		return nil, err
	}
	profile.Tags = normalized

	if err := s.repo.Update(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to set tags: %w", err)
	}

	s.invalidate(ctx, profile.CustomURL)
	return normalized, nil
}

func (s *profileService) SearchByTag(ctx context.Context, tag string, limit, offset int) ([]*models.ProfileResponse, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, ErrInvalidTag
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	profiles, err := s.repo.SearchByTag(ctx, tag, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to search profiles: %w", err)
	}

	responses := make([]*models.ProfileResponse, len(profiles))
	for i, p := range profiles {
		responses[i] = s.toResponse(p)
	}
	return responses, nil
}

// CheckAvailability reports whether customURL could be claimed right now.
// Invalid or reserved values are reported as unavailable with a reason.
func (s *profileService) CheckAvailability(ctx context.Context, customURL string) (*models.AvailabilityResponse, error) {
	normalized := NormalizeCustomURL(customURL)
	resp := &models.AvailabilityResponse{CustomURL: normalized}

	if err := ValidateCustomURL(normalized); err != nil {
		resp.Reason = err.Error()
		return resp, nil
	}

	available, err := s.checkCustomURLAvailability(ctx, normalized)
	if err != nil {
		return nil, err
	}
	resp.Available = available
	if !available {
		resp.Reason = ErrCustomURLTaken.Error()
	}
	return resp, nil
}

// VisitSocialLink returns the target of a profile's link and records the click
func (s *profileService) VisitSocialLink(ctx context.Context, customURL, linkID string) (string, error) {
	profile, err := s.loadPublic(ctx, NormalizeCustomURL(customURL))
	if err != nil {
		return "", err
	}

	for _, link := range profile.SocialLinks {
		if link.ID != linkID {
			continue
		}
		// A failed click log must not break the redirect.
		if err := s.repo.RecordLinkClick(ctx, linkID); err != nil {
			s.log.Warn("failed to record link click", zap.String("link_id", linkID), zap.Error(err))
		}
		s.metrics.LinkClicked(string(link.Platform))
		return link.URL, nil
	}
	return "", ErrLinkNotFound
}

// GetClickAnalytics returns link clicks of the caller's profile over the last hours
func (s *profileService) GetClickAnalytics(ctx context.Context, userID string, hours int) ([]models.ClickBucket, error) {
	if hours <= 0 {
		hours = defaultAnalyticsHours
	}
	if hours > maxAnalyticsHours {
		hours = maxAnalyticsHours
	}

	profile, err := s.loadOwn(ctx, userID)
	if err != nil {
		return nil, err
	}

	buckets, err := s.repo.GetClickAnalytics(ctx, profile.ID, hours)
	if err != nil {
		return nil, fmt.Errorf("failed to get click analytics: %w", err)
	}

	out := make([]models.ClickBucket, len(buckets))
	for i, b := range buckets {
		out[i] = models.ClickBucket{Time: b.Time, Count: b.Count}
	}
	return out, nil
}
