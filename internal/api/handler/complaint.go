package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"nagarseva/backend/internal/config"
	"nagarseva/backend/internal/submission"

	"github.com/gin-gonic/gin"
)

// SubmitComplaint accepts the finalized multipart complaint form and runs it
// through the submission pipeline. Synchronous failures map onto the error
// taxonomy; a success always carries the generated complaint code.
func (h *Handler) SubmitComplaint(c *gin.Context) {
	reporterID, _ := reporterFromRequest(c)

	chatID, _ := strconv.ParseInt(c.PostForm("telegram_chat_id"), 10, 64)

	form := submission.Form{
		ReporterID:     reporterID,
		State:          c.PostForm("state"),
		City:           c.PostForm("city"),
		District:       c.PostForm("district"),
		AddressLine1:   c.PostForm("address_line1"),
		AddressLine2:   c.PostForm("address_line2"),
		IssueType:      c.PostForm("issue_type"),
		Description:    c.PostForm("description"),
		ReporterChatID: chatID,
	}

	photo, err := readUpload(c, "photo", config.MaxImageUploadBytes)
	if err != nil {
		rejectUpload(c, err)
		return
	}
	form.Photo = photo

	voice, err := readUpload(c, "voice_note", config.MaxVoiceUploadBytes)
	if err != nil {
		rejectUpload(c, err)
		return
	}
	form.VoiceNote = voice

	receipt, err := h.Pipeline.Submit(c.Request.Context(), form)
	if err != nil {
		switch {
		case errors.Is(err, submission.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			// Upload/persistence failures left no partial state; the
			// citizen can simply retry.
			c.JSON(http.StatusBadGateway, gin.H{"error": "submission failed, please try again"})
		}
		return
	}

	c.JSON(http.StatusCreated, receipt)
}

// GetComplaint returns a complaint and its status trail, looked up by code.
func (h *Handler) GetComplaint(c *gin.Context) {
	code := c.Param("code")

	complaint, err := h.Storage.GetComplaintByCode(code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if complaint == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "complaint not found"})
		return
	}

	trail, err := h.Storage.StatusTrail(complaint.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"complaint":    complaint,
		"status_trail": trail,
	})
}

// errUploadTooLarge marks a rejected upload that exceeded its size cap, as
// opposed to one that could not be read at all.
var errUploadTooLarge = errors.New("upload exceeds the size limit")

// rejectUpload maps a rejected upload onto the right status code.
func rejectUpload(c *gin.Context, err error) {
	if errors.Is(err, errUploadTooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// readUpload pulls one optional file out of the multipart form, enforcing
// the size cap. An absent file is fine; a file that is present but unreadable
// is an error, never a silent drop.
func readUpload(c *gin.Context, field string, maxBytes int64) (*submission.Upload, error) {
	file, header, err := c.Request.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("malformed %s upload: %w", field, err)
	}
	defer file.Close()

	data, err := readCapped(file, maxBytes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}

	return &submission.Upload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func readCapped(file multipart.File, maxBytes int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, errUploadTooLarge
	}
	return data, nil
}
