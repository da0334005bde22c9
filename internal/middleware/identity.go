package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/intisuite/aula-api/internal/models"
	appErrors "github.com/intisuite/aula-api/pkg/errors"
	"github.com/intisuite/aula-api/pkg/response"
)

// ContextActorKey is the gin context key storing the acting identity.
const ContextActorKey = "currentActor"

const (
	headerUserID = "X-User-Id"
	headerRole   = "X-User-Role"
)

// Identity loads the pre-verified identity forwarded by the API gateway.
// Token verification happens upstream; these headers are trusted inside the
// perimeter.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(headerUserID))
		if userID == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		actor := models.Actor{
			UserID: userID,
			Role:   strings.ToUpper(strings.TrimSpace(c.GetHeader(headerRole))),
		}
		c.Set(ContextActorKey, actor)
		c.Next()
	}
}

// ActorValue returns the identity stored on the context.
func ActorValue(c *gin.Context) (models.Actor, bool) {
	value, exists := c.Get(ContextActorKey)
	if !exists {
		return models.Actor{}, false
	}
	actor, ok := value.(models.Actor)
	return actor, ok
}
