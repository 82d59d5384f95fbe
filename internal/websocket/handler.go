package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/harshitjain593/workree-chat/internal/chat"
	"github.com/harshitjain593/workree-chat/internal/domain"
	"github.com/harshitjain593/workree-chat/internal/events"
	"github.com/harshitjain593/workree-chat/internal/identity"
	"github.com/harshitjain593/workree-chat/internal/presence"
	"github.com/harshitjain593/workree-chat/pkg/logger"
)

// Handler upgrades authenticated connections and runs the per-client pumps.
// Inbound frames carry message sends and typing signals; everything else
// reaches the client through hub broadcasts.
type Handler struct {
	registry  *chat.Registry
	hub       *Hub
	parser    *identity.TokenParser
	presence  presence.Source
	publisher events.Publisher
	log       *logger.Logger
	upgrader  websocket.Upgrader
}

func NewHandler(registry *chat.Registry, hub *Hub, parser *identity.TokenParser, presenceSource presence.Source, publisher events.Publisher, log *logger.Logger) *Handler {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Handler{
		registry:  registry,
		hub:       hub,
		parser:    parser,
		presence:  presenceSource,
		publisher: publisher,
		log:       log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// inboundFrame is what clients send over the socket.
type inboundFrame struct {
	Action         string `json:"action"`
	ConversationID string `json:"conversation_id"`
	Content        string `json:"content"`
	Type           string `json:"type"`
}

// Serve handles GET /ws. The token travels as a query parameter because
// browsers cannot set headers on WebSocket upgrades.
func (h *Handler) Serve(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = extractBearer(c.GetHeader("Authorization"))
	}
	user, err := h.parser.Parse(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Warnf("websocket upgrade for %s failed: %v", user.ID, err)
		}
		return
	}

	store := h.registry.StoreFor(user)
	client := NewClient(conn, user.ID)
	h.hub.Register(client)
	for _, conv := range store.Conversations("") {
		h.hub.Subscribe(client, conversationChannel(conv.ID))
	}

	ctx := c.Request.Context()
	if h.presence != nil {
		if err := h.presence.SetOnline(ctx, user.ID); err != nil && h.log != nil {
			h.log.Warnf("set online for %s: %v", user.ID, err)
		}
	}

	go client.WriteLoop(context.Background())
	go h.readLoop(client, store)
}

func (h *Handler) readLoop(client *Client, store *chat.Store) {
	defer func() {
		h.hub.Unregister(client)
		if h.presence != nil {
			if err := h.presence.SetOffline(context.Background(), client.UserID); err != nil && h.log != nil {
				h.log.Warnf("set offline for %s: %v", client.UserID, err)
			}
		}
	}()

	client.Conn.SetReadLimit(64 << 10)
	_ = client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		return client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := client.Conn.ReadMessage()
		if err != nil {
			return
		}
		var frame inboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			h.sendError(client, "malformed frame")
			continue
		}
		h.handleFrame(client, store, frame)
	}
}

func (h *Handler) handleFrame(client *Client, store *chat.Store, frame inboundFrame) {
	ctx := context.Background()
	switch frame.Action {
	case "message.send":
		if _, err := store.Send(ctx, frame.ConversationID, frame.Content, domain.MessageType(frame.Type), nil); err != nil {
			h.sendError(client, err.Error())
		}
	case "typing.start":
		store.StartTyping(frame.ConversationID, client.UserID)
		h.publishTyping(ctx, events.EventTypingStarted, frame.ConversationID, client.UserID)
	case "typing.stop":
		store.StopTyping(frame.ConversationID, client.UserID)
		h.publishTyping(ctx, events.EventTypingStopped, frame.ConversationID, client.UserID)
	case "subscribe":
		h.hub.Subscribe(client, conversationChannel(frame.ConversationID))
	default:
		h.sendError(client, "unknown action")
	}
}

func (h *Handler) publishTyping(ctx context.Context, eventType events.EventType, conversationID, userID string) {
	envelope, err := events.NewEnvelope(eventType, "conversation", conversationID, events.TypingPayload{
		ConversationID: conversationID,
		UserID:         userID,
	})
	if err != nil {
		return
	}
	if err := h.publisher.Publish(ctx, envelope); err != nil && h.log != nil {
		h.log.Warnf("publishing %s: %v", eventType, err)
	}
}

func (h *Handler) sendError(client *Client, message string) {
	payload, _ := json.Marshal(gin.H{"event_type": "error", "error": message})
	client.SendMessage(payload)
}

func conversationChannel(conversationID string) string {
	return "chat:conversation:" + conversationID
}

func extractBearer(value string) string {
	parts := strings.SplitN(value, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
