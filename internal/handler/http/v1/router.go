package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	// Чтение ресурсов и оповещений доступно без токена
	optional := BearerAuthMiddleware(h.cfg.JWTSecret, h.userService, h.logger, false)
	required := BearerAuthMiddleware(h.cfg.JWTSecret, h.userService, h.logger, true)
	limited := h.limiter.Middleware()

	resources := api.Group("/resources")
	{
		resources.GET("", limited, optional, h.listResources)
		resources.GET("/nearby", limited, optional, h.nearbyResources)
		resources.GET("/stats", required, h.resourceStats)
		resources.GET("/export", required, h.exportResources)
		resources.GET("/:id", limited, optional, h.getResource)
		resources.POST("", required, h.createResource)
		resources.PUT("/:id", required, h.updateResource)
		resources.PATCH("/:id", required, h.updateResource)
		resources.DELETE("/:id", required, h.deleteResource)
		resources.POST("/:id/verify", required, h.verifyResource)
		resources.POST("/:id/update_capacity", required, h.updateCapacity)
		resources.POST("/:id/assign_coordinator", required, h.assignCoordinator)
	}

	// Журнал изменений вместимости, только чтение
	api.GET("/resource-updates", required, h.listResourceUpdates)

	alerts := api.Group("/alerts")
	{
		alerts.GET("", limited, optional, h.listAlerts)
		alerts.GET("/active", limited, optional, h.listActiveAlerts)
		alerts.GET("/:id", limited, optional, h.getAlert)
		alerts.POST("", required, h.createAlert)
		alerts.PATCH("/:id", required, h.updateAlert)
		alerts.POST("/:id/deactivate", required, h.deactivateAlert)
		alerts.DELETE("/:id", required, h.deleteAlert)
	}

	users := api.Group("/users", required)
	{
		users.GET("", h.listUsers)
		users.GET("/:id", h.getUser)
		users.PATCH("/:id", h.updateUser)
		users.POST("/:id/approve", h.approveUser)
	}
	api.GET("/auth/me", required, h.me)

	// Маршрут Health-check
	api.GET("/system/health", h.healthCheck)
}
