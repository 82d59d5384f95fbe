package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harshitjain593/workree-chat/internal/directory"
	"github.com/harshitjain593/workree-chat/internal/identity"
	"github.com/harshitjain593/workree-chat/internal/transport/httpdto"
	chaterrors "github.com/harshitjain593/workree-chat/pkg/errors"
)

// AuthHandler issues development tokens for seeded directory users. It is
// only mounted outside production; real tokens come from the marketplace
// auth service.
type AuthHandler struct {
	parser *identity.TokenParser
	dir    *directory.Directory
	ttl    time.Duration
}

func NewAuthHandler(parser *identity.TokenParser, dir *directory.Directory) *AuthHandler {
	return &AuthHandler{parser: parser, dir: dir, ttl: 24 * time.Hour}
}

func (h *AuthHandler) DevToken(c *gin.Context) {
	var req httpdto.DevTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	user, err := h.dir.GetByID(c.Request.Context(), req.UserID)
	if err != nil {
		if errors.Is(err, chaterrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, httpdto.NewErrorResponse("user not found", "NOT_FOUND"))
			return
		}
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse(err.Error(), "INTERNAL_ERROR"))
		return
	}

	token, err := h.parser.Issue(user, h.ttl)
	if err != nil {
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse(err.Error(), "INTERNAL_ERROR"))
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.DevTokenResponse{
		Token: token,
		User:  httpdto.FromParticipant(user),
	}))
}
