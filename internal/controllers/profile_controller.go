package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"linkpage-be/internal/models"
	"linkpage-be/internal/service"
)

type ProfileController struct {
	profileService service.ProfileService
	log            *zap.Logger
}

func NewProfileController(profileService service.ProfileService, log *zap.Logger) *ProfileController {
	return &ProfileController{
		profileService: profileService,
		log:            log,
	}
}

// ============================================================================
// Public
// ============================================================================

// GetPublicProfile handles GET /:customUrl and GET /api/v1/profiles/:customUrl
func (pc *ProfileController) GetPublicProfile(c *gin.Context) {
	profile, err := pc.profileService.GetProfile(c.Request.Context(), c.Param("customUrl"))
	if err != nil {
		respondError(c, pc.log, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// VisitLink handles GET /:customUrl/links/:linkId - records the click and
// redirects to the link target
func (pc *ProfileController) VisitLink(c *gin.Context) {
	target, err := pc.profileService.VisitSocialLink(c.Request.Context(), c.Param("customUrl"), c.Param("linkId"))
	if err != nil {
		respondError(c, pc.log, err)
		return
	}

	// 302 so browsers do not cache the redirect and every click is counted
	c.Redirect(http.StatusFound, target)
}

// SearchProfiles handles GET /api/v1/profiles?tag=&limit=&offset=
func (pc *ProfileController) SearchProfiles(c *gin.Context) {
	limit, ok := intQuery(c, "limit", 0)
	if !ok {
		return
	}
	offset, ok := intQuery(c, "offset", 0)
	if !ok {
		return
	}

	profiles, err := pc.profileService.SearchByTag(c.Request.Context(), c.Query("tag"), limit, offset)
	if err != nil {
		respondError(c, pc.log, err)
		return
	}

	c.JSON(http.StatusOK, profiles)
}

// CheckAvailability handles GET /api/v1/profiles/available/:customUrl
func (pc *ProfileController) CheckAvailability(c *gin.Context) {
	availability, err := pc.profileService.CheckAvailability(c.Request.Context(), c.Param("customUrl"))
	if err != nil {
		respondError(c, pc.log, err)
		return
	}

	c.JSON(http.StatusOK, availability)
}

// ============================================================================
// Owner
// ============================================================================

// CreateProfile handles POST /api/v1/profile
func (pc *ProfileController) CreateProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	profile, err := pc.profileService.CreateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, pc.log, err)
		return
	}

	c.JSON(http.StatusCreated, profile)
}

// GetMyProfile handles GET /api/v1/profile
func (pc *ProfileController) GetMyProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	profile, err := pc.profileService.GetMyProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, pc.log, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateProfile handles PATCH /api/v1/profile
func (pc *ProfileController) UpdateProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	profile, err := pc.profileService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, pc.log, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// DeleteProfile handles DELETE /api/v1/profile
func (pc *ProfileController) DeleteProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := pc.profileService.DeleteProfile(c.Request.Context(), userID); err != nil {
		respondError(c, pc.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile deleted successfully",
	})
}

// ChangeCustomURL handles PUT /api/v1/profile/custom-url
func (pc *ProfileController) ChangeCustomURL(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.ChangeCustomURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	profile, err := pc.profileService.ChangeCustomURL(c.Request.Context(), userID, req.CustomURL)
	if err != nil {
		respondError(c, pc.log, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// AddSocialLink handles POST /api/v1/profile/links
func (pc *ProfileController) AddSocialLink(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.SocialLinkInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	link, err := pc.profileService.AddSocialLink(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, pc.log, err)
		return
	}

	c.JSON(http.StatusCreated, link)
}

// UpdateSocialLink handles PATCH /api/v1/profile/links/:linkId
func (pc *ProfileController) UpdateSocialLink(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.UpdateSocialLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	link, err := pc.profileService.UpdateSocialLink(c.Request.Context(), userID, c.Param("linkId"), &req)
	if err != nil {
		respondError(c, pc.log, err)
		return
	}

	c.JSON(http.StatusOK, link)
}

// RemoveSocialLink handles DELETE /api/v1/profile/links/:linkId
func (pc *ProfileController) RemoveSocialLink(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := pc.profileService.RemoveSocialLink(c.Request.Context(), userID, c.Param("linkId")); err != nil {
		respondError(c, pc.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Social link removed successfully",
	})
}

// ReorderSocialLinks handles PUT /api/v1/profile/links/order
func (pc *ProfileController) ReorderSocialLinks(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.ReorderLinksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	profile, err := pc.profileService.ReorderSocialLinks(c.Request.Context(), userID, req.IDs)
	if err != nil {
		respondError(c, pc.log, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// SetTags handles PUT /api/v1/profile/tags
func (pc *ProfileController) SetTags(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.SetTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	tags, err := pc.profileService.SetTags(c.Request.Context(), userID, req.Tags)
	if err != nil {
		respondError(c, pc.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tags": tags,
	})
}

// GetClickAnalytics handles GET /api/v1/profile/analytics - click counts over
// the last ?hours= (default 24)
func (pc *ProfileController) GetClickAnalytics(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	hours := 24
	if hoursStr := c.Query("hours"); hoursStr != "" {
		if parsedHours, err := strconv.Atoi(hoursStr); err == nil && parsedHours > 0 {
			hours = parsedHours
		}
	}

	analytics, err := pc.profileService.GetClickAnalytics(c.Request.Context(), userID, hours)
	if err != nil {
		respondError(c, pc.log, err)
		return
	}

	c.JSON(http.StatusOK, analytics)
}

// intQuery parses an optional non-negative integer query parameter,
// answering 400 when it is malformed
func intQuery(c *gin.Context, name string, fallback int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": name + " must be a non-negative integer",
		})
		return 0, false
	}
	return n, true
}
