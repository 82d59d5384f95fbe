package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harshitjain593/workree-chat/internal/chat"
	"github.com/harshitjain593/workree-chat/internal/identity"
	"github.com/harshitjain593/workree-chat/internal/transport/httpdto"
)

// DirectoryHandler serves user search for the start-new-conversation flow.
// Searches go through the session store so results are cached there.
type DirectoryHandler struct {
	registry *chat.Registry
}

func NewDirectoryHandler(registry *chat.Registry) *DirectoryHandler {
	return &DirectoryHandler{registry: registry}
}

func (h *DirectoryHandler) Search(c *gin.Context) {
	user, ok := identity.FromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	store := h.registry.StoreFor(user)

	results, err := store.SearchDirectory(c.Request.Context(), c.Query("query"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.SearchUsersResponse{
		Users: httpdto.FromParticipantSlice(results),
	}))
}
