package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/disaster_resource_system/internal/apperror"
	"github.com/shenikar/disaster_resource_system/internal/auth"
	"github.com/shenikar/disaster_resource_system/internal/models"
	"github.com/shenikar/disaster_resource_system/internal/service"
)

const actorKey = "actor"

// BearerAuthMiddleware - middleware для аутентификации по bearer-токену.
// Если required == false, запрос без токена выполняется от имени анонимного пользователя;
// неверный токен отклоняется в обоих случаях.
func BearerAuthMiddleware(secret string, users service.UserService, log *logrus.Logger, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		token, hasBearer := strings.CutPrefix(authHeader, "Bearer ")
		token = strings.TrimSpace(token)

		if authHeader == "" || !hasBearer || token == "" {
			if required || authHeader != "" {
				log.Warn("Bearer token missing from request")
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "bearer token required"})
				return
			}
			c.Set(actorKey, models.Anonymous())
			c.Next()
			return
		}

		userID, err := auth.ParseToken(token, secret)
		if err != nil {
			log.WithError(err).Warn("Invalid bearer token provided")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		actor, err := users.ResolveActor(c.Request.Context(), userID)
		if err != nil {
			if apperror.Is(err, apperror.KindNotFound) {
				log.WithField("user_id", userID).Warn("Token refers to a missing user")
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				return
			}
			log.WithError(err).Error("Failed to resolve actor")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// actorFrom возвращает субъекта запроса, установленного BearerAuthMiddleware
func actorFrom(c *gin.Context) models.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(models.Actor); ok {
			return actor
		}
	}
	return models.Anonymous()
}
