package v1

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shenikar/disaster_resource_system/internal/models"
)

func resourceFilterFromQuery(c *gin.Context) models.ResourceFilter {
	return models.ResourceFilter{
		Type:   models.ResourceType(c.Query("type")),
		Status: models.ResourceStatus(c.Query("status")),
		Region: c.Query("region"),
		Search: c.Query("search"),
	}
}

// optionalFloat разбирает необязательный числовой параметр запроса
func optionalFloat(c *gin.Context, name string) (*float64, bool) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + " parameter"})
		return nil, false
	}
	return &v, true
}

// @Summary List resources
// @Description List emergency resources, newest first. Coordinators see only resources assigned to them.
// @Tags Resources
// @Produce json
// @Security BearerAuth
// @Param type query string false "Resource type"
// @Param status query string false "Resource status"
// @Param region query string false "Region substring (case-insensitive)"
// @Param search query string false "Name or description substring (case-insensitive)"
// @Success 200 {array} ResourceResponse
// @Failure 400 {object} map[string]string "Invalid filter"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /resources [get]
func (h *Handler) listResources(c *gin.Context) {
	log := h.logger.WithField("method", "listResources")

	resources, err := h.resourceService.ListResources(c.Request.Context(), actorFrom(c), resourceFilterFromQuery(c))
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToResourceResponses(resources))
}

// @Summary Find nearby resources
// @Description Resources within max_distance kilometres of the point, nearest first. Distance is rounded to 2 decimals.
// @Tags Resources
// @Produce json
// @Security BearerAuth
// @Param lat query number true "Latitude"
// @Param lon query number true "Longitude"
// @Param max_distance query number false "Maximum distance in km" default(10)
// @Param type query string false "Resource type"
// @Param status query string false "Resource status"
// @Param region query string false "Region substring"
// @Param search query string false "Name or description substring"
// @Success 200 {array} NearbyResourceResponse
// @Failure 400 {object} map[string]string "Invalid coordinates or distance"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /resources/nearby [get]
func (h *Handler) nearbyResources(c *gin.Context) {
	log := h.logger.WithField("method", "nearbyResources")

	lat, ok := optionalFloat(c, "lat")
	if !ok {
		return
	}
	lon, ok := optionalFloat(c, "lon")
	if !ok {
		return
	}
	maxDistance, ok := optionalFloat(c, "max_distance")
	if !ok {
		return
	}

	nearby, err := h.proximityService.FindNearby(c.Request.Context(), actorFrom(c), models.NearbyQuery{
		Latitude:      lat,
		Longitude:     lon,
		MaxDistanceKm: maxDistance,
		Filter:        resourceFilterFromQuery(c),
	})
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, NearbyToResponses(nearby))
}

// @Summary Get resource by ID
// @Tags Resources
// @Produce json
// @Security BearerAuth
// @Param id path string true "Resource ID"
// @Success 200 {object} ResourceResponse
// @Failure 400 {object} map[string]string "Invalid resource ID"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Resource not found"
// @Router /resources/{id} [get]
func (h *Handler) getResource(c *gin.Context) {
	id, ok := pathID(c, "resource")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "getResource").WithField("id", id)

	resource, err := h.resourceService.GetResource(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToResourceResponse(resource))
}

// @Summary Create a new resource
// @Description Create a resource. Available capacity above capacity is clamped. Coordinators become the coordinator of the resource they create.
// @Tags Resources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param resource body CreateResourceRequest true "Resource creation request"
// @Success 201 {object} ResourceResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /resources [post]
func (h *Handler) createResource(c *gin.Context) {
	var input CreateResourceRequest
	log := h.logger.WithField("method", "createResource")

	if !h.bindJSON(c, log, &input) {
		return
	}

	model := DTOToResourceModel(input)
	if err := h.resourceService.CreateResource(c.Request.Context(), actorFrom(c), model); err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, ModelToResourceResponse(model))
}

// @Summary Update a resource
// @Description Partial update of descriptive fields and total capacity (admin only). Lowering capacity below available capacity clamps it and records a capacity update.
// @Tags Resources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Resource ID"
// @Param resource body UpdateResourceRequest true "Fields to change"
// @Success 200 {object} ResourceResponse
// @Failure 400 {object} map[string]string "Invalid resource ID or request body"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Resource not found"
// @Failure 409 {object} map[string]string "Concurrent update"
// @Router /resources/{id} [patch]
func (h *Handler) updateResource(c *gin.Context) {
	id, ok := pathID(c, "resource")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "updateResource").WithField("id", id)

	var input UpdateResourceRequest
	if !h.bindJSON(c, log, &input) {
		return
	}

	resource, err := h.resourceService.UpdateResource(c.Request.Context(), actorFrom(c), id, DTOToResourcePatch(input))
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToResourceResponse(resource))
}

// @Summary Delete a resource
// @Description Delete a resource and its capacity history (admin only)
// @Tags Resources
// @Security BearerAuth
// @Param id path string true "Resource ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid resource ID"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Resource not found"
// @Router /resources/{id} [delete]
func (h *Handler) deleteResource(c *gin.Context) {
	id, ok := pathID(c, "resource")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "deleteResource").WithField("id", id)

	if err := h.resourceService.DeleteResource(c.Request.Context(), actorFrom(c), id); err != nil {
		respondError(c, log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Verify a resource
// @Tags Resources
// @Produce json
// @Security BearerAuth
// @Param id path string true "Resource ID"
// @Success 200 {object} ResourceResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Resource not found"
// @Router /resources/{id}/verify [post]
func (h *Handler) verifyResource(c *gin.Context) {
	id, ok := pathID(c, "resource")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "verifyResource").WithField("id", id)

	resource, err := h.resourceService.VerifyResource(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToResourceResponse(resource))
}

// @Summary Update available capacity
// @Description Set available capacity, record the change and derive the status. Values above capacity are rejected.
// @Tags Resources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Resource ID"
// @Param capacity body UpdateCapacityRequest true "New available capacity"
// @Success 200 {object} ResourceResponse
// @Failure 400 {object} map[string]string "Invalid value"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Resource not found"
// @Failure 409 {object} map[string]string "Concurrent update"
// @Router /resources/{id}/update_capacity [post]
func (h *Handler) updateCapacity(c *gin.Context) {
	id, ok := pathID(c, "resource")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "updateCapacity").WithField("id", id)

	var input UpdateCapacityRequest
	if !h.bindJSON(c, log, &input) {
		return
	}

	resource, err := h.resourceService.UpdateCapacity(c.Request.Context(), actorFrom(c), id, input.AvailableCapacity, input.ChangeLog)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToResourceResponse(resource))
}

// @Summary Assign a coordinator
// @Tags Resources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Resource ID"
// @Param coordinator body AssignCoordinatorRequest true "Coordinator"
// @Success 200 {object} ResourceResponse
// @Failure 400 {object} map[string]string "User is not a coordinator"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Resource or user not found"
// @Router /resources/{id}/assign_coordinator [post]
func (h *Handler) assignCoordinator(c *gin.Context) {
	id, ok := pathID(c, "resource")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "assignCoordinator").WithField("id", id)

	var input AssignCoordinatorRequest
	if !h.bindJSON(c, log, &input) {
		return
	}

	resource, err := h.resourceService.AssignCoordinator(c.Request.Context(), actorFrom(c), id, *input.CoordinatorID)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToResourceResponse(resource))
}

// @Summary Resource statistics
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} StatsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Router /resources/stats [get]
func (h *Handler) resourceStats(c *gin.Context) {
	log := h.logger.WithField("method", "resourceStats")

	stats, err := h.resourceService.Stats(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, StatsToResponse(stats))
}

// @Summary Export resources as CSV
// @Tags Admin
// @Produce text/csv
// @Security BearerAuth
// @Success 200 {file} file "resources.csv"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Router /resources/export [get]
func (h *Handler) exportResources(c *gin.Context) {
	log := h.logger.WithField("method", "exportResources")

	var buf bytes.Buffer
	if err := h.resourceService.Export(c.Request.Context(), actorFrom(c), &buf); err != nil {
		respondError(c, log, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="resources.csv"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// @Summary List capacity updates
// @Description Capacity change history, newest first. limit defaults to 50; limit<=0 returns everything.
// @Tags Resources
// @Produce json
// @Security BearerAuth
// @Param resource query string false "Resource ID"
// @Param limit query int false "Maximum number of records" default(50)
// @Success 200 {array} ResourceUpdateResponse
// @Failure 400 {object} map[string]string "Invalid parameters"
// @Failure 403 {object} map[string]string "Forbidden"
// @Router /resource-updates [get]
func (h *Handler) listResourceUpdates(c *gin.Context) {
	log := h.logger.WithField("method", "listResourceUpdates")

	var filter models.UpdateFilter
	if raw := c.Query("resource"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid resource ID"})
			return
		}
		filter.ResourceID = &id
	}
	if raw, ok := c.GetQuery("limit"); ok && raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit parameter"})
			return
		}
		// 0 у сервиса означает лимит по умолчанию
		if limit <= 0 {
			limit = -1
		}
		filter.Limit = limit
	}

	updates, err := h.resourceService.ListUpdates(c.Request.Context(), actorFrom(c), filter)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, UpdatesToResponses(updates))
}
