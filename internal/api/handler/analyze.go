package handler

import (
	"errors"
	"io"
	"net/http"

	"nagarseva/backend/internal/analysis"
	"nagarseva/backend/internal/config"

	"github.com/gin-gonic/gin"
)

// AnalyzeMedia runs the uploaded photo through the media-analysis gate before
// the complaint form is finalized. Three distinct outcomes reach the client:
// accepted (with a suggested description the citizen may edit), rejected
// (the photo must be discarded, with the reason), and analysis unavailable
// (the citizen should type the description manually).
func (h *Handler) AnalyzeMedia(c *gin.Context) {
	issueType := c.PostForm("issue_type")
	if issueType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "issue_type is required before analyzing media"})
		return
	}

	file, _, err := c.Request.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	defer file.Close()

	imageBytes, err := io.ReadAll(io.LimitReader(file, config.MaxImageUploadBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read photo"})
		return
	}
	if len(imageBytes) > config.MaxImageUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "photo exceeds the upload size limit"})
		return
	}

	result, err := h.Gate.Analyze(c.Request.Context(), imageBytes, issueType)
	if err != nil {
		if errors.Is(err, analysis.ErrUnknownIssueType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown issue type"})
			return
		}
		// Classification being down is not a rejected image: the client
		// falls back to manual description entry and may still submit.
		c.JSON(http.StatusBadGateway, gin.H{
			"error":           "media analysis is unavailable",
			"fallback_manual": true,
		})
		return
	}

	c.JSON(http.StatusOK, result)
}
