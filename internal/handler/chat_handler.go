package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harshitjain593/workree-chat/internal/chat"
	"github.com/harshitjain593/workree-chat/internal/domain"
	"github.com/harshitjain593/workree-chat/internal/events"
	"github.com/harshitjain593/workree-chat/internal/identity"
	"github.com/harshitjain593/workree-chat/internal/transport/httpdto"
	chaterrors "github.com/harshitjain593/workree-chat/pkg/errors"
)

// ChatHandler exposes the conversation store over HTTP. Every route runs
// behind auth middleware, so the session store is resolved from the
// authenticated participant.
type ChatHandler struct {
	registry  *chat.Registry
	publisher events.Publisher
}

func NewChatHandler(registry *chat.Registry, publisher events.Publisher) *ChatHandler {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &ChatHandler{registry: registry, publisher: publisher}
}

func (h *ChatHandler) store(c *gin.Context) (*chat.Store, bool) {
	user, ok := identity.FromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return nil, false
	}
	return h.registry.StoreFor(user), true
}

func (h *ChatHandler) List(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	convs := store.Conversations(c.Query("filter"))
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.ListConversationsResponse{
		Conversations: httpdto.FromConversationSlice(convs),
		Total:         len(convs),
	}))
}

func (h *ChatHandler) Active(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	conv, found := store.Active()
	if !found {
		c.JSON(http.StatusNotFound, httpdto.NewErrorResponse("no active conversation", "NOT_FOUND"))
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromConversation(conv, true)))
}

func (h *ChatHandler) Select(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	conv, err := store.Select(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromConversation(conv, true)))
}

func (h *ChatHandler) CreateDirect(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	var req httpdto.CreateDirectConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}
	conv, err := store.CreateDirect(c.Request.Context(), req.Participant.ToDomain())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromConversation(conv, true)))
}

func (h *ChatHandler) CreateTeam(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	var req httpdto.CreateTeamConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}
	members := make([]domain.Participant, 0, len(req.Members))
	for _, m := range req.Members {
		members = append(members, m.ToDomain())
	}
	conv, err := store.CreateTeam(c.Request.Context(), req.TeamID, req.TeamName, members)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromConversation(conv, true)))
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	var req httpdto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}
	attachments := make([]domain.Attachment, 0, len(req.Attachments))
	for _, a := range req.Attachments {
		attachments = append(attachments, a.ToDomain())
	}
	msg, err := store.Send(c.Request.Context(), c.Param("id"), req.Content, domain.MessageType(req.Type), attachments)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromMessage(msg)))
}

func (h *ChatHandler) MarkRead(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	if err := store.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

func (h *ChatHandler) Delete(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	if err := store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

func (h *ChatHandler) Typing(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	var req httpdto.TypingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}
	conversationID := c.Param("id")
	eventType := events.EventTypingStopped
	if req.Typing {
		store.StartTyping(conversationID, store.Self().ID)
		eventType = events.EventTypingStarted
	} else {
		store.StopTyping(conversationID, store.Self().ID)
	}
	if envelope, err := events.NewEnvelope(eventType, "conversation", conversationID, events.TypingPayload{
		ConversationID: conversationID,
		UserID:         store.Self().ID,
	}); err == nil {
		_ = h.publisher.Publish(c.Request.Context(), envelope)
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.TypingUsersResponse{
		ConversationID: conversationID,
		UserIDs:        store.TypingUsers(conversationID),
	}))
}

func (h *ChatHandler) TypingUsers(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	conversationID := c.Param("id")
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.TypingUsersResponse{
		ConversationID: conversationID,
		UserIDs:        store.TypingUsers(conversationID),
	}))
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, chaterrors.ErrNotFound):
		c.JSON(http.StatusNotFound, httpdto.NewErrorResponse(err.Error(), "NOT_FOUND"))
	case chaterrors.IsValidation(err):
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse(err.Error(), "VALIDATION_ERROR"))
	case errors.Is(err, chaterrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse(err.Error(), "UNAUTHORIZED"))
	default:
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse(err.Error(), "INTERNAL_ERROR"))
	}
}
