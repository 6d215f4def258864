package controllers

import (
	"net/http"

	"github.com/hieuit01/BTL-CCNLTHD/services"

	"github.com/gin-gonic/gin"
)

type ReportController struct {
	Svc *services.ReportService
}

func NewReportController(svc *services.ReportService) *ReportController {
	return &ReportController{Svc: svc}
}

// reportParams reads ?user_id= and ?period=week|month|year.
func reportParams(c *gin.Context) (services.Caller, uint, string, bool) {
	caller, ok := mustCaller(c)
	if !ok {
		return caller, 0, "", false
	}
	userID, ok := queryID(c, "user_id")
	if !ok {
		return caller, 0, "", false
	}
	return caller, userID, c.Query("period"), true
}

func (h *ReportController) HealthProgress(c *gin.Context) {
	caller, userID, period, ok := reportParams(c)
	if !ok {
		return
	}
	out, err := h.Svc.HealthProgress(c.Request.Context(), caller, userID, period)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *ReportController) WorkoutStats(c *gin.Context) {
	caller, userID, period, ok := reportParams(c)
	if !ok {
		return
	}
	out, err := h.Svc.WorkoutStats(c.Request.Context(), caller, userID, period)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *ReportController) MealStats(c *gin.Context) {
	caller, userID, period, ok := reportParams(c)
	if !ok {
		return
	}
	out, err := h.Svc.MealStats(c.Request.Context(), caller, userID, period)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *ReportController) ExpertClientProgress(c *gin.Context) {
	caller, userID, period, ok := reportParams(c)
	if !ok {
		return
	}
	out, err := h.Svc.ExpertClientProgress(c.Request.Context(), caller, userID, period)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
