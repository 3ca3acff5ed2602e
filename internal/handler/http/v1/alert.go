package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shenikar/disaster_resource_system/internal/models"
)

// @Summary List alerts
// @Description All alerts including expired and deactivated ones, newest first
// @Tags Alerts
// @Produce json
// @Param region query string false "Region substring"
// @Param severity query string false "Severity"
// @Success 200 {array} AlertResponse
// @Router /alerts [get]
func (h *Handler) listAlerts(c *gin.Context) {
	log := h.logger.WithField("method", "listAlerts")

	alerts, err := h.alertService.ListAlerts(c.Request.Context(), actorFrom(c), models.AlertFilter{
		Region:   c.Query("region"),
		Severity: models.AlertSeverity(c.Query("severity")),
	})
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToAlertResponses(alerts))
}

// @Summary List active alerts
// @Description Alerts that are active and not expired at the time of the request
// @Tags Alerts
// @Produce json
// @Param region query string false "Region substring"
// @Success 200 {array} AlertResponse
// @Router /alerts/active [get]
func (h *Handler) listActiveAlerts(c *gin.Context) {
	log := h.logger.WithField("method", "listActiveAlerts")

	alerts, err := h.alertService.ListActive(c.Request.Context(), actorFrom(c), c.Query("region"))
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToAlertResponses(alerts))
}

// @Summary Get alert by ID
// @Tags Alerts
// @Produce json
// @Param id path string true "Alert ID"
// @Success 200 {object} AlertResponse
// @Failure 404 {object} map[string]string "Alert not found"
// @Router /alerts/{id} [get]
func (h *Handler) getAlert(c *gin.Context) {
	id, ok := pathID(c, "alert")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "getAlert").WithField("id", id)

	alert, err := h.alertService.GetAlert(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToAlertResponse(alert))
}

// @Summary Create an alert
// @Tags Alerts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param alert body CreateAlertRequest true "Alert creation request"
// @Success 201 {object} AlertResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 403 {object} map[string]string "Forbidden"
// @Router /alerts [post]
func (h *Handler) createAlert(c *gin.Context) {
	var input CreateAlertRequest
	log := h.logger.WithField("method", "createAlert")

	if !h.bindJSON(c, log, &input) {
		return
	}

	model := DTOToAlertModel(input)
	if err := h.alertService.CreateAlert(c.Request.Context(), actorFrom(c), model); err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, ModelToAlertResponse(model))
}

// @Summary Update an alert
// @Tags Alerts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Alert ID"
// @Param alert body UpdateAlertRequest true "Fields to change"
// @Success 200 {object} AlertResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Alert not found"
// @Router /alerts/{id} [patch]
func (h *Handler) updateAlert(c *gin.Context) {
	id, ok := pathID(c, "alert")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "updateAlert").WithField("id", id)

	var input UpdateAlertRequest
	if !h.bindJSON(c, log, &input) {
		return
	}

	alert, err := h.alertService.UpdateAlert(c.Request.Context(), actorFrom(c), id, DTOToAlertPatch(input))
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToAlertResponse(alert))
}

// @Summary Deactivate an alert
// @Tags Alerts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Alert ID"
// @Success 200 {object} AlertResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Alert not found"
// @Router /alerts/{id}/deactivate [post]
func (h *Handler) deactivateAlert(c *gin.Context) {
	id, ok := pathID(c, "alert")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "deactivateAlert").WithField("id", id)

	alert, err := h.alertService.DeactivateAlert(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToAlertResponse(alert))
}

// @Summary Delete an alert
// @Tags Alerts
// @Security BearerAuth
// @Param id path string true "Alert ID"
// @Success 204 "No Content"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Alert not found"
// @Router /alerts/{id} [delete]
func (h *Handler) deleteAlert(c *gin.Context) {
	id, ok := pathID(c, "alert")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "deleteAlert").WithField("id", id)

	if err := h.alertService.DeleteAlert(c.Request.Context(), actorFrom(c), id); err != nil {
		respondError(c, log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
