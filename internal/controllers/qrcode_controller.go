package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"linkpage-be/internal/service"
)

const (
	defaultQRCodeSize = 256
	minQRCodeSize     = 128
	maxQRCodeSize     = 1024
)

type QRCodeController struct {
	profileService service.ProfileService
	log            *zap.Logger
}

func NewQRCodeController(profileService service.ProfileService, log *zap.Logger) *QRCodeController {
	return &QRCodeController{
		profileService: profileService,
		log:            log,
	}
}

// GenerateQRCode handles GET /api/v1/qrcode/:customUrl - PNG QR code of a profile page.
// An optional ?size= sets the edge length in pixels.
func (qc *QRCodeController) GenerateQRCode(c *gin.Context) {
	customURL := service.NormalizeCustomURL(c.Param("customUrl"))
	if err := service.ValidateCustomURL(customURL); err != nil {
		respondError(c, qc.log, err)
		return
	}

	size := defaultQRCodeSize
	if sizeStr := c.Query("size"); sizeStr != "" {
		parsed, err := strconv.Atoi(sizeStr)
		if err != nil || parsed < minQRCodeSize || parsed > maxQRCodeSize {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "size must be an integer between 128 and 1024",
			})
			return
		}
		size = parsed
	}

	profileURL := qc.profileService.ProfileURL(customURL)

	// Medium error recovery
	pngData, err := qrcode.Encode(profileURL, qrcode.Medium, size)
	if err != nil {
		qc.log.Error("failed to generate QR code", zap.String("url", profileURL), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate QR code",
		})
		return
	}

	c.Header("Content-Disposition", "inline; filename="+customURL+".png")
	c.Data(http.StatusOK, "image/png", pngData)
}
