package controllers

import (
	"net/http"

	"github.com/hieuit01/BTL-CCNLTHD/services"

	"github.com/gin-gonic/gin"
)

type HealthController struct {
	Health *services.HealthService
}

func NewHealthController(health *services.HealthService) *HealthController {
	return &HealthController{Health: health}
}

/* -------- Profiles -------- */

func (h *HealthController) ListProfiles(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	userID, ok := queryID(c, "user_id")
	if !ok {
		return
	}
	out, err := h.Health.ListProfiles(c.Request.Context(), caller, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *HealthController) CreateProfile(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	var input services.ProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	out, err := h.Health.CreateProfile(c.Request.Context(), caller, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *HealthController) GetProfile(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := h.Health.GetProfile(c.Request.Context(), caller, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *HealthController) UpdateProfile(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input services.ProfilePatch
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	out, err := h.Health.UpdateProfile(c.Request.Context(), caller, id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *HealthController) DeleteProfile(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Health.DeleteProfile(c.Request.Context(), caller, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HealthController) CurrentProfile(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	out, err := h.Health.CurrentProfile(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

/* -------- Trackings -------- */

func (h *HealthController) ListTrackings(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	userID, ok := queryID(c, "user_id")
	if !ok {
		return
	}
	out, err := h.Health.ListTrackings(c.Request.Context(), caller, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *HealthController) CreateTracking(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	var input services.TrackingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	out, err := h.Health.CreateTracking(c.Request.Context(), caller, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *HealthController) GetTracking(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := h.Health.GetTracking(c.Request.Context(), caller, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *HealthController) UpdateTracking(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input services.TrackingPatch
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	out, err := h.Health.UpdateTracking(c.Request.Context(), caller, id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *HealthController) DeleteTracking(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Health.DeleteTracking(c.Request.Context(), caller, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HealthController) CurrentTracking(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	out, err := h.Health.CurrentTracking(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
