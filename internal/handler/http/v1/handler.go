package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/disaster_resource_system/internal/config"
	"github.com/shenikar/disaster_resource_system/internal/service"
)

type Handler struct {
	resourceService  service.ResourceService
	proximityService service.ProximityService
	alertService     service.AlertService
	userService      service.UserService
	logger           *logrus.Logger
	validate         *validator.Validate
	limiter          *RateLimiter
	cfg              *config.Config
}

func NewHandler(
	resourceService service.ResourceService,
	proximityService service.ProximityService,
	alertService service.AlertService,
	userService service.UserService,
	logger *logrus.Logger,
	cfg *config.Config,
) *Handler {
	return &Handler{
		resourceService:  resourceService,
		proximityService: proximityService,
		alertService:     alertService,
		userService:      userService,
		logger:           logger,
		validate:         validator.New(),
		limiter:          NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		cfg:              cfg,
	}
}

// bindJSON разбирает и валидирует тело запроса; при ошибке ответ уже отправлен
func (h *Handler) bindJSON(c *gin.Context, log *logrus.Entry, input any) bool {
	if err := c.ShouldBindJSON(input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// pathID разбирает параметр :id; при ошибке ответ уже отправлен
func pathID(c *gin.Context, entity string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + entity + " ID"})
		return uuid.Nil, false
	}
	return id, true
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
