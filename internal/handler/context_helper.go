package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/intisuite/aula-api/internal/middleware"
	"github.com/intisuite/aula-api/internal/models"
)

func actorFromContext(c *gin.Context) models.Actor {
	actor, _ := middleware.ActorValue(c)
	return actor
}
