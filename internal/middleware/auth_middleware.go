package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/harshitjain593/workree-chat/internal/identity"
	"github.com/harshitjain593/workree-chat/internal/transport/httpdto"
	"github.com/harshitjain593/workree-chat/pkg/logger"
)

func AuthMiddleware(parser *identity.TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c)
		user, err := parser.Parse(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
			c.Abort()
			return
		}

		ctx := identity.WithParticipant(c.Request.Context(), user)
		ctx = context.WithValue(ctx, logger.UserIdKey, user.ID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func extractBearer(c *gin.Context) string {
	value := c.GetHeader("Authorization")
	parts := strings.SplitN(value, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
