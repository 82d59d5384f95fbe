package handler

import (
	"fmt"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/harshitjain593/workree-chat/internal/identity"
	"github.com/harshitjain593/workree-chat/internal/storage"
	"github.com/harshitjain593/workree-chat/internal/transport/httpdto"
)

// UploadHandler issues presigned URLs for message attachments.
type UploadHandler struct {
	s3 *storage.Client
}

func NewUploadHandler(s3 *storage.Client) *UploadHandler {
	return &UploadHandler{s3: s3}
}

func (h *UploadHandler) Presign(c *gin.Context) {
	if h.s3 == nil {
		c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse("uploads not configured", "UNAVAILABLE"))
		return
	}
	user, ok := identity.FromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	var req httpdto.PresignUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	key := fmt.Sprintf("attachments/%s/%s%s", user.ID, uuid.NewString(), path.Ext(req.FileName))
	uploadURL, headers, err := h.s3.PresignPut(c.Request.Context(), key, req.MimeType, req.SizeBytes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse(err.Error(), "INTERNAL_ERROR"))
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.PresignUploadResponse{
		UploadURL: uploadURL,
		FileURL:   h.s3.FileURL(key),
		Key:       key,
		Headers:   headers,
	}))
}
