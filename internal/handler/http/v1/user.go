package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary Current user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /auth/me [get]
func (h *Handler) me(c *gin.Context) {
	actor := actorFrom(c)
	log := h.logger.WithField("method", "me").WithField("user_id", actor.ID)

	user, err := h.userService.GetUser(c.Request.Context(), actor, actor.ID)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToUserResponse(user))
}

// @Summary List users
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Router /users [get]
func (h *Handler) listUsers(c *gin.Context) {
	log := h.logger.WithField("method", "listUsers")

	users, err := h.userService.ListUsers(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToUserResponses(users))
}

// @Summary Get user by ID
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} UserResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "User not found"
// @Router /users/{id} [get]
func (h *Handler) getUser(c *gin.Context) {
	id, ok := pathID(c, "user")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "getUser").WithField("id", id)

	user, err := h.userService.GetUser(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToUserResponse(user))
}

// @Summary Update a user
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param user body UpdateUserRequest true "Fields to change"
// @Success 200 {object} UserResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "User not found"
// @Router /users/{id} [patch]
func (h *Handler) updateUser(c *gin.Context) {
	id, ok := pathID(c, "user")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "updateUser").WithField("id", id)

	var input UpdateUserRequest
	if !h.bindJSON(c, log, &input) {
		return
	}

	user, err := h.userService.UpdateUser(c.Request.Context(), actorFrom(c), id, DTOToUserPatch(input))
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToUserResponse(user))
}

// @Summary Approve a user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} UserResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "User not found"
// @Router /users/{id}/approve [post]
func (h *Handler) approveUser(c *gin.Context) {
	id, ok := pathID(c, "user")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "approveUser").WithField("id", id)

	user, err := h.userService.ApproveUser(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToUserResponse(user))
}
