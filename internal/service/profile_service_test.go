package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkpage-be/internal/cache"
	"linkpage-be/internal/metrics"
	"linkpage-be/internal/models"
	"linkpage-be/internal/testing/fakes"
)

const frontendURL = "https://links.example.com"

type fixture struct {
	svc     ProfileService
	repo    *fakes.ProfileRepository
	cache   *fakes.Cache
	metrics *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:    fakes.NewProfileRepository(),
		cache:   fakes.NewCache(),
		metrics: metrics.New(),
	}
	f.svc = NewProfileService(f.repo, f.cache, nil, f.metrics, frontendURL+"/")
	return f
}

func youtube(url string) models.SocialLinkInput {
	return models.SocialLinkInput{Platform: models.PlatformYouTube, URL: url}
}

func website(url string) models.SocialLinkInput {
	return models.SocialLinkInput{Platform: models.PlatformWebsite, URL: url}
}

func (f *fixture) create(t *testing.T, userID, customURL string, links ...models.SocialLinkInput) *models.ProfileResponse {
	t.Helper()
	resp, err := f.svc.CreateProfile(context.Background(), userID, &models.CreateProfileRequest{
		CustomURL:   customURL,
		Username:    strings.ToUpper(customURL[:1]) + customURL[1:],
		SocialLinks: links,
	})
	require.NoError(t, err)
	return resp
}

func strPtr(s string) *string { return &s }

// ============================================================================
// Create
// ============================================================================

func TestCreateProfile(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.CreateProfile(context.Background(), "u1", &models.CreateProfileRequest{
		CustomURL: "  Jane_Doe ",
		Username:  " Jane ",
		About:     "Travel vlogs",
		SocialLinks: []models.SocialLinkInput{
			youtube("https://youtube.com/@jane"),
			website("https://jane.example.com"),
		},
		Tags: []string{" travel ", "", "food"},
	})
	require.NoError(t, err)

	assert.Equal(t, "jane_doe", resp.CustomURL)
	assert.Equal(t, "Jane", resp.Username)
	assert.Equal(t, frontendURL+"/jane_doe", resp.ProfileURL)
	assert.Equal(t, []string{"travel", "food"}, resp.Tags)
	require.Len(t, resp.SocialLinks, 2)
	assert.Equal(t, models.PlatformYouTube, resp.SocialLinks[0].Platform)
	assert.Equal(t, models.PlatformWebsite, resp.SocialLinks[1].Platform)
	for _, l := range resp.SocialLinks {
		_, err := uuid.Parse(l.ID)
		assert.NoError(t, err)
	}
	assert.Equal(t, "taken", f.cache.Data[cache.CustomURLKey("jane_doe")])
}

func TestCreateProfile_EmptyCollections(t *testing.T) {
	f := newFixture(t)

	resp := f.create(t, "u1", "jane")
	assert.NotNil(t, resp.SocialLinks)
	assert.Empty(t, resp.SocialLinks)
	assert.NotNil(t, resp.Tags)
	assert.Empty(t, resp.Tags)
}

func TestCreateProfile_IgnoresClientLinkIDs(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.CreateProfile(context.Background(), "u1", &models.CreateProfileRequest{
		CustomURL: "jane",
		Username:  "Jane",
		SocialLinks: []models.SocialLinkInput{
			{ID: "l1", Platform: models.PlatformTikTok, URL: "https://tiktok.com/@jane"},
			{ID: "l1", Platform: models.PlatformWebsite, URL: "https://jane.example.com"},
		},
	})
	require.NoError(t, err)

	require.Len(t, resp.SocialLinks, 2)
	assert.NotEqual(t, "l1", resp.SocialLinks[0].ID)
	assert.NotEqual(t, resp.SocialLinks[0].ID, resp.SocialLinks[1].ID)
	_, err = uuid.Parse(resp.SocialLinks[0].ID)
	assert.NoError(t, err)
}

func TestCreateProfile_OnePerUser(t *testing.T) {
	f := newFixture(t)
	f.create(t, "u1", "jane")

	_, err := f.svc.CreateProfile(context.Background(), "u1", &models.CreateProfileRequest{
		CustomURL: "jane2",
		Username:  "Jane",
	})
	assert.ErrorIs(t, err, ErrProfileExists)
}

func TestCreateProfile_CustomURLTaken(t *testing.T) {
	f := newFixture(t)
	f.create(t, "u1", "jane")

	_, err := f.svc.CreateProfile(context.Background(), "u2", &models.CreateProfileRequest{
		CustomURL: "JANE",
		Username:  "Other Jane",
	})
	assert.ErrorIs(t, err, ErrCustomURLTaken)
	assert.Equal(t, 1, f.repo.Count())
}

func TestCreateProfile_Rejects(t *testing.T) {
	manyTags := make([]string, maxTags+1)
	for i := range manyTags {
		manyTags[i] = fmt.Sprintf("tag%d", i)
	}
	manyLinks := make([]models.SocialLinkInput, maxSocialLinks+1)
	for i := range manyLinks {
		manyLinks[i] = website(fmt.Sprintf("https://example.com/%d", i))
	}

	tests := []struct {
		name    string
		mutate  func(*models.CreateProfileRequest)
		wantErr error
	}{
		{"reserved", func(r *models.CreateProfileRequest) { r.CustomURL = "Admin" }, ErrCustomURLReserved},
		{"too short", func(r *models.CreateProfileRequest) { r.CustomURL = "ab" }, ErrInvalidCustomURL},
		{"too long", func(r *models.CreateProfileRequest) { r.CustomURL = strings.Repeat("a", 31) }, ErrInvalidCustomURL},
		{"bad characters", func(r *models.CreateProfileRequest) { r.CustomURL = "jane.doe" }, ErrInvalidCustomURL},
		{"avatar not http", func(r *models.CreateProfileRequest) { r.AvatarURL = "ftp://cdn.example.com/a.png" }, ErrInvalidURL},
		{"link not absolute", func(r *models.CreateProfileRequest) {
			r.SocialLinks = []models.SocialLinkInput{youtube("youtube.com/@jane")}
		}, ErrInvalidURL},
		{"unknown platform", func(r *models.CreateProfileRequest) {
			r.SocialLinks = []models.SocialLinkInput{{Platform: "mastodon", URL: "https://mastodon.social/@jane"}}
		}, models.ErrInvalidPlatform},
		{"too many links", func(r *models.CreateProfileRequest) { r.SocialLinks = manyLinks }, ErrTooManyLinks},
		{"too many tags", func(r *models.CreateProfileRequest) { r.Tags = manyTags }, ErrTooManyTags},
		{"tag too long", func(r *models.CreateProfileRequest) { r.Tags = []string{strings.Repeat("x", maxTagLength+1)} }, ErrTagTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := &models.CreateProfileRequest{CustomURL: "jane", Username: "Jane"}
			tt.mutate(req)

			_, err := f.svc.CreateProfile(context.Background(), "u1", req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, f.repo.Count())
		})
	}
}

func TestCreateProfile_BlankUsername(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateProfile(context.Background(), "u1", &models.CreateProfileRequest{
		CustomURL: "jane",
		Username:  "   ",
	})
	var verrs models.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "username", verrs[0].Field)
}

// ============================================================================
// Read
// ============================================================================

func TestGetProfile_CachesAndCountsViews(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, "u1", "jane", youtube("https://youtube.com/@jane"))

	first, err := f.svc.GetProfile(context.Background(), "JANE")
	require.NoError(t, err)
	assert.True(t, f.cache.Has(cache.ProfileKey("jane")))

	second, err := f.svc.GetProfile(context.Background(), "jane")
	require.NoError(t, err)

	assert.Equal(t, created.SocialLinks, first.SocialLinks)
	assert.Equal(t, first.UserProfile, second.UserProfile)
	assert.Equal(t, first.ProfileURL, second.ProfileURL)
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.ProfileViewsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CacheResultsTotal.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CacheResultsTotal.WithLabelValues("hit")))
}

func TestGetProfile_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetProfile(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrProfileNotFound)
	assert.Zero(t, testutil.ToFloat64(f.metrics.ProfileViewsTotal))
}

func TestGetProfile_WithoutCache(t *testing.T) {
	repo := fakes.NewProfileRepository()
	svc := NewProfileService(repo, nil, nil, nil, frontendURL)

	_, err := svc.CreateProfile(context.Background(), "u1", &models.CreateProfileRequest{CustomURL: "jane", Username: "Jane"})
	require.NoError(t, err)

	resp, err := svc.GetProfile(context.Background(), "jane")
	require.NoError(t, err)
	assert.Equal(t, "Jane", resp.Username)
}

func TestGetProfile_CacheFailureFallsBackToRepository(t *testing.T) {
	f := newFixture(t)
	f.create(t, "u1", "jane")
	f.cache.Err = errors.New("connection reset")

	resp, err := f.svc.GetProfile(context.Background(), "jane")
	require.NoError(t, err)
	assert.Equal(t, "jane", resp.CustomURL)
}

func TestGetMyProfile_RepositoryError(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("boom")
	f.repo.Err = boom

	_, err := f.svc.GetMyProfile(context.Background(), "u1")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrProfileNotFound)
}

// ============================================================================
// Update
// ============================================================================

func TestUpdateProfile_PartialUpdateInvalidatesCache(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, "u1", "jane",
		youtube("https://youtube.com/@jane"),
		website("https://jane.example.com"),
	)
	_, err := f.svc.GetProfile(context.Background(), "jane")
	require.NoError(t, err)

	kept := created.SocialLinks[1]
	links := []models.SocialLinkInput{
		{ID: kept.ID, Platform: kept.Platform, URL: "https://jane.example.org"},
		{Platform: models.PlatformInstagram, URL: "https://instagram.com/jane"},
	}
	resp, err := f.svc.UpdateProfile(context.Background(), "u1", &models.UpdateProfileRequest{
		About:       strPtr("New bio"),
		SocialLinks: &links,
	})
	require.NoError(t, err)

	assert.Equal(t, "Jane", resp.Username)
	assert.Equal(t, "New bio", resp.About)
	require.Len(t, resp.SocialLinks, 2)
	assert.Equal(t, kept.ID, resp.SocialLinks[0].ID)
	assert.Equal(t, "https://jane.example.org", resp.SocialLinks[0].URL)
	assert.Equal(t, models.PlatformInstagram, resp.SocialLinks[1].Platform)
	assert.False(t, f.cache.Has(cache.ProfileKey("jane")))

	public, err := f.svc.GetProfile(context.Background(), "jane")
	require.NoError(t, err)
	assert.Equal(t, resp.SocialLinks, public.SocialLinks)
}

func TestUpdateProfile_ClearsAvatar(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateProfile(context.Background(), "u1", &models.CreateProfileRequest{
		CustomURL: "jane",
		Username:  "Jane",
		AvatarURL: "https://cdn.example.com/jane.png",
	})
	require.NoError(t, err)

	resp, err := f.svc.UpdateProfile(context.Background(), "u1", &models.UpdateProfileRequest{AvatarURL: strPtr("")})
	require.NoError(t, err)
	assert.Empty(t, resp.AvatarURL)
}

func TestUpdateProfile_UnknownLinkID(t *testing.T) {
	f := newFixture(t)
	f.create(t, "u1", "jane", youtube("https://youtube.com/@jane"))

	links := []models.SocialLinkInput{{ID: uuid.NewString(), Platform: models.PlatformWebsite, URL: "https://example.com"}}
	_, err := f.svc.UpdateProfile(context.Background(), "u1", &models.UpdateProfileRequest{SocialLinks: &links})
	assert.ErrorIs(t, err, ErrLinkNotFound)
}

func TestUpdateProfile_DuplicateLinkIDs(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, "u1", "jane", youtube("https://youtube.com/@jane"))
	id := created.SocialLinks[0].ID

	links := []models.SocialLinkInput{
		{ID: id, Platform: models.PlatformYouTube, URL: "https://youtube.com/@jane"},
		{ID: id, Platform: models.PlatformWebsite, URL: "https://jane.example.com"},
	}
	_, err := f.svc.UpdateProfile(context.Background(), "u1", &models.UpdateProfileRequest{SocialLinks: &links})

	var verrs models.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	mine, err := f.svc.GetMyProfile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, mine.SocialLinks, 1)
}

func TestUpdateProfile_FailedWriteLeavesProfileUnchanged(t *testing.T) {
	f := newFixture(t)
	f.create(t, "u1", "jane", youtube("https://youtube.com/@jane"))
	_, err := f.svc.GetProfile(context.Background(), "jane")
	require.NoError(t, err)

	f.repo.UpdateErr = errors.New("db down")
	links := []models.SocialLinkInput{website("https://site.example")}
	_, err = f.svc.UpdateProfile(context.Background(), "u1", &models.UpdateProfileRequest{
		Username:    strPtr("New Name"),
		SocialLinks: &links,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	assert.False(t, f.cache.Has(cache.ProfileKey("jane")))

	f.repo.UpdateErr = nil
	mine, err := f.svc.GetMyProfile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Jane", mine.Username)
	require.Len(t, mine.SocialLinks, 1)
	assert.Equal(t, "https://youtube.com/@jane", mine.SocialLinks[0].URL)
}

func TestUpdateProfile_NoProfile(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.UpdateProfile(context.Background(), "u1", &models.UpdateProfileRequest{About: strPtr("x")})
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

// ============================================================================
// Custom URL
// ============================================================================

func TestChangeCustomURL(t *testing.T) {
	f := newFixture(t)
	f.create(t, "u1", "jane")
	_, err := f.svc.GetProfile(context.Background(), "jane")
	require.NoError(t, err)

	resp, err := f.svc.ChangeCustomURL(context.Background(), "u1", "Jane-Travels")
	require.NoError(t, err)
	assert.Equal(t, "jane-travels", resp.CustomURL)
	assert.Equal(t, frontendURL+"/jane-travels", resp.ProfileURL)

	_, err = f.svc.GetProfile(context.Background(), "jane")
	assert.ErrorIs(t, err, ErrProfileNotFound)
	_, err = f.svc.GetProfile(context.Background(), "jane-travels")
	assert.NoError(t, err)

	availability, err := f.svc.CheckAvailability(context.Background(), "jane")
	require.NoError(t, err)
	assert.True(t, availability.Available)
}

func TestChangeCustomURL_SameValueIsNoop(t *testing.T) {
	f := newFixture(t)
	f.create(t, "u1", "jane")

	resp, err := f.svc.ChangeCustomURL(context.Background(), "u1", " JANE ")
	require.NoError(t, err)
	assert.Equal(t, "jane", resp.CustomURL)
}

func TestChangeCustomURL_Taken(t *testing.T) {
	f := newFixture(t)
	f.create(t, "u1", "jane")
	f.create(t, "u2", "joe")

	_, err := f.svc.ChangeCustomURL(context.Background(), "u1", "joe")
	assert.ErrorIs(t, err, ErrCustomURLTaken)

	mine, err := f.svc.GetMyProfile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "jane", mine.CustomURL)
}

func TestCheckAvailability(t *testing.T) {
	f := newFixture(t)
	f.create(t, "u1", "jane")

	tests := []struct {
		input     string
		customURL string
		available bool
		reason    string
	}{
		{"Fresh", "fresh", true, ""},
		{"jane", "jane", false, ErrCustomURLTaken.Error()},
		{"api", "api", false, "reserved"},
		{"ab", "ab", false, "at least 3"},
		{"a b c", "a b c", false, "can only contain"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			resp, err := f.svc.CheckAvailability(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.customURL, resp.CustomURL)
			assert.Equal(t, tt.available, resp.Available)
			if tt.reason == "" {
				assert.Empty(t, resp.Reason)
			} else {
				assert.Contains(t, resp.Reason, tt.reason)
			}
		})
	}
}

func TestCheckAvailability_TrustsTakenMarker(t *testing.T) {
	f := newFixture(t)
	f.cache.Data[cache.CustomURLKey("ghost")] = "taken"

	resp, err := f.svc.CheckAvailability(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, resp.Available)
}

// ============================================================================
// Delete
// ============================================================================

func TestDeleteProfile(t *testing.T) {
	f := newFixture(t)
	f.create(t, "u1", "jane")
	_, err := f.svc.GetProfile(context.Background(), "jane")
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteProfile(context.Background(), "u1"))
	assert.False(t, f.cache.Has(cache.ProfileKey("jane")))
	assert.False(t, f.cache.Has(cache.CustomURLKey("jane")))

	_, err = f.svc.GetMyProfile(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrProfileNotFound)
	assert.ErrorIs(t, f.svc.DeleteProfile(context.Background(), "u1"), ErrProfileNotFound)

	// The freed custom URL can be claimed again.
	f.create(t, "u2", "jane")
}

// ============================================================================
// Social links
// ============================================================================

func TestAddSocialLink(t *testing.T) {
	f := newFixture(t)
	f.create(t, "u1", "jane", youtube("https://youtube.com/@jane"))

	link, err := f.svc.AddSocialLink(context.Background(), "u1", &models.SocialLinkInput{
		ID:       "client-chosen",
		Platform: models.PlatformTikTok,
		URL:      " https://tiktok.com/@jane ",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "client-chosen", link.ID)
	assert.Equal(t, "https://tiktok.com/@jane", link.URL)

	mine, err := f.svc.GetMyProfile(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, mine.SocialLinks, 2)
	assert.Equal(t, *link, mine.SocialLinks[1])
}

func TestAddSocialLink_Limit(t *testing.T) {
	f := newFixture(t)
	links := make([]models.SocialLinkInput, maxSocialLinks)
	for i := range links {
		links[i] = website(fmt.Sprintf("https://example.com/%d", i))
	}
	f.create(t, "u1", "jane", links...)

	_, err := f.svc.AddSocialLink(context.Background(), "u1", &models.SocialLinkInput{
		Platform: models.PlatformWebsite,
		URL:      "https://example.com/extra",
	})
	assert.ErrorIs(t, err, ErrTooManyLinks)
}

func TestUpdateSocialLink(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, "u1", "jane", youtube("https://youtube.com/@jane"))
	id := created.SocialLinks[0].ID

	link, err := f.svc.UpdateSocialLink(context.Background(), "u1", id, &models.UpdateSocialLinkRequest{
		URL: strPtr("https://youtube.com/@jane.doe"),
	})
	require.NoError(t, err)
	assert.Equal(t, id, link.ID)
	assert.Equal(t, models.PlatformYouTube, link.Platform)
	assert.Equal(t, "https://youtube.com/@jane.doe", link.URL)

	bad := models.Platform("myspace")
	_, err = f.svc.UpdateSocialLink(context.Background(), "u1", id, &models.UpdateSocialLinkRequest{Platform: &bad})
	assert.ErrorIs(t, err, models.ErrInvalidPlatform)

	_, err = f.svc.UpdateSocialLink(context.Background(), "u1", "not-a-uuid", &models.UpdateSocialLinkRequest{})
	assert.ErrorIs(t, err, ErrLinkNotFound)
}

func TestRemoveSocialLink(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, "u1", "jane",
		youtube("https://youtube.com/@jane"),
		website("https://jane.example.com"),
	)
	first := created.SocialLinks[0].ID

	require.NoError(t, f.svc.RemoveSocialLink(context.Background(), "u1", first))

	mine, err := f.svc.GetMyProfile(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, mine.SocialLinks, 1)
	assert.Equal(t, created.SocialLinks[1], mine.SocialLinks[0])

	assert.ErrorIs(t, f.svc.RemoveSocialLink(context.Background(), "u1", first), ErrLinkNotFound)
}

func TestRemoveSocialLink_OtherUsersLink(t *testing.T) {
	f := newFixture(t)
	joe := f.create(t, "u2", "joe", youtube("https://youtube.com/@joe"))
	f.create(t, "u1", "jane")

	err := f.svc.RemoveSocialLink(context.Background(), "u1", joe.SocialLinks[0].ID)
	assert.ErrorIs(t, err, ErrLinkNotFound)
}

func TestReorderSocialLinks(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, "u1", "jane",
		youtube("https://youtube.com/@jane"),
		website("https://jane.example.com"),
		models.SocialLinkInput{Platform: models.PlatformTwitter, URL: "https://x.com/jane"},
	)
	a, b, c := created.SocialLinks[0].ID, created.SocialLinks[1].ID, created.SocialLinks[2].ID

	resp, err := f.svc.ReorderSocialLinks(context.Background(), "u1", []string{c, a, b})
	require.NoError(t, err)
	assert.Equal(t, c, resp.SocialLinks[0].ID)

	mine, err := f.svc.GetMyProfile(context.Background(), "u1")
	require.NoError(t, err)
	ids := make([]string, len(mine.SocialLinks))
	for i, l := range mine.SocialLinks {
		ids[i] = l.ID
	}
	assert.Equal(t, []string{c, a, b}, ids)
}

func TestReorderSocialLinks_Invalid(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, "u1", "jane",
		youtube("https://youtube.com/@jane"),
		website("https://jane.example.com"),
	)
	a, b := created.SocialLinks[0].ID, created.SocialLinks[1].ID

	tests := map[string][]string{
		"missing":   {a},
		"duplicate": {a, a},
		"foreign":   {a, uuid.NewString()},
		"extra":     {a, b, uuid.NewString()},
	}
	for name, ids := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.ReorderSocialLinks(context.Background(), "u1", ids)
			assert.ErrorIs(t, err, ErrInvalidLinkOrder)
		})
	}
}

// ============================================================================
// Tags
// ============================================================================

func TestSetTags(t *testing.T) {
	f := newFixture(t)
	f.create(t, "u1", "jane")

	tags, err := f.svc.SetTags(context.Background(), "u1", []string{" Travel", "food", "", "Travel"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Travel", "food", "Travel"}, tags)

	mine, err := f.svc.GetMyProfile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, tags, mine.Tags)

	tags, err = f.svc.SetTags(context.Background(), "u1", nil)
	require.NoError(t, err)
	assert.NotNil(t, tags)
	assert.Empty(t, tags)
}

func TestSearchByTag(t *testing.T) {
	f := newFixture(t)
	for _, p := range []struct {
		user, url string
		tags      []string
	}{
		{"u1", "jane", []string{"travel"}},
		{"u2", "joe", []string{"food", "travel"}},
		{"u3", "kim", []string{"food"}},
	} {
		_, err := f.svc.CreateProfile(context.Background(), p.user, &models.CreateProfileRequest{
			CustomURL: p.url,
			Username:  p.url,
			Tags:      p.tags,
		})
		require.NoError(t, err)
	}

	results, err := f.svc.SearchByTag(context.Background(), " travel ", 0, 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "jane", results[0].CustomURL)
	assert.Equal(t, "joe", results[1].CustomURL)

	results, err = f.svc.SearchByTag(context.Background(), "travel", 1, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "joe", results[0].CustomURL)

	_, err = f.svc.SearchByTag(context.Background(), "  ", 10, 0)
	assert.ErrorIs(t, err, ErrInvalidTag)
}

// ============================================================================
// Clicks
// ============================================================================

func TestVisitSocialLink(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, "u1", "jane", youtube("https://youtube.com/@jane"))
	id := created.SocialLinks[0].ID

	target, err := f.svc.VisitSocialLink(context.Background(), "Jane", id)
	require.NoError(t, err)
	assert.Equal(t, "https://youtube.com/@jane", target)
	assert.Equal(t, 1, f.repo.Clicks(id))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.LinkClicksTotal.WithLabelValues("youtube")))

	_, err = f.svc.VisitSocialLink(context.Background(), "jane", "missing")
	assert.ErrorIs(t, err, ErrLinkNotFound)

	_, err = f.svc.VisitSocialLink(context.Background(), "nobody", id)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestVisitSocialLink_ClickFailureStillRedirects(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, "u1", "jane", youtube("https://youtube.com/@jane"))
	_, err := f.svc.GetProfile(context.Background(), "jane")
	require.NoError(t, err)

	f.repo.Err = errors.New("database is down")
	target, err := f.svc.VisitSocialLink(context.Background(), "jane", created.SocialLinks[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "https://youtube.com/@jane", target)
}

func TestGetClickAnalytics(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, "u1", "jane",
		youtube("https://youtube.com/@jane"),
		website("https://jane.example.com"),
	)
	for _, l := range created.SocialLinks {
		_, err := f.svc.VisitSocialLink(context.Background(), "jane", l.ID)
		require.NoError(t, err)
	}

	buckets, err := f.svc.GetClickAnalytics(context.Background(), "u1", 0)
	require.NoError(t, err)
	total := 0
	for _, b := range buckets {
		total += b.Count
	}
	assert.Equal(t, 2, total)

	_, err = f.svc.GetClickAnalytics(context.Background(), "u2", 24)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}
