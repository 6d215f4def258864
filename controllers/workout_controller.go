package controllers

import (
	"net/http"

	"github.com/hieuit01/BTL-CCNLTHD/models"
	"github.com/hieuit01/BTL-CCNLTHD/services"

	"github.com/gin-gonic/gin"
)

type WorkoutController struct {
	Workouts *services.WorkoutService
}

func NewWorkoutController(workouts *services.WorkoutService) *WorkoutController {
	return &WorkoutController{Workouts: workouts}
}

func catalogFilter(c *gin.Context) services.CatalogFilter {
	return services.CatalogFilter{
		Goal:              c.Query("goal"),
		Own:               queryBool(c, "own"),
		SuggestedByExpert: queryBool(c, "suggested_by_expert"),
	}
}

/* -------- Catalog -------- */

func (h *WorkoutController) List(c *gin.Context) {
	h.list(c, catalogFilter(c))
}

func (h *WorkoutController) Own(c *gin.Context) {
	f := catalogFilter(c)
	f.Own = true
	h.list(c, f)
}

func (h *WorkoutController) SuggestedByExpert(c *gin.Context) {
	f := catalogFilter(c)
	f.SuggestedByExpert = true
	h.list(c, f)
}

func (h *WorkoutController) list(c *gin.Context, f services.CatalogFilter) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	out, err := h.Workouts.ListWorkouts(c.Request.Context(), caller, f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *WorkoutController) Create(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	var input services.WorkoutInput
	if err := c.ShouldBind(&input); err != nil {
		bindError(c, err)
		return
	}
	image, closeFn, err := formUpload(c, "image")
	if err != nil {
		uploadError(c, "image")
		return
	}
	defer closeFn()

	out, err := h.Workouts.CreateWorkout(c.Request.Context(), caller, input, image)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *WorkoutController) Get(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := h.Workouts.GetWorkout(c.Request.Context(), caller, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *WorkoutController) Update(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input services.WorkoutPatch
	if err := c.ShouldBind(&input); err != nil {
		bindError(c, err)
		return
	}
	image, closeFn, err := formUpload(c, "image")
	if err != nil {
		uploadError(c, "image")
		return
	}
	defer closeFn()

	out, err := h.Workouts.UpdateWorkout(c.Request.Context(), caller, id, input, image)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *WorkoutController) Delete(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Workouts.DeleteWorkout(c.Request.Context(), caller, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

/* -------- Plans -------- */

func (h *WorkoutController) ListPlans(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	userID, ok := queryID(c, "user_id")
	if !ok {
		return
	}
	out, err := h.Workouts.ListPlans(c.Request.Context(), caller, services.PlanFilter{UserID: userID, Today: queryBool(c, "today")})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *WorkoutController) CreatePlan(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	var input services.WorkoutPlanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	out, err := h.Workouts.CreatePlan(c.Request.Context(), caller, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *WorkoutController) GetPlan(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := h.Workouts.GetPlan(c.Request.Context(), caller, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *WorkoutController) UpdatePlan(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input services.WorkoutPlanPatch
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	out, err := h.Workouts.UpdatePlan(c.Request.Context(), caller, id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *WorkoutController) DeletePlan(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Workouts.DeletePlan(c.Request.Context(), caller, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *WorkoutController) AddWorkout(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input services.SessionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	out, err := h.Workouts.AddWorkout(c.Request.Context(), caller, id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

type removeSessionReq struct {
	SessionID uint `json:"session_id" binding:"required"`
}

func (h *WorkoutController) RemoveWorkout(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input removeSessionReq
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	out, err := h.Workouts.RemoveWorkout(c.Request.Context(), caller, id, input.SessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *WorkoutController) MarkPlanCompleted(c *gin.Context) { h.setPlanStatus(c, models.StatusCompleted) }
func (h *WorkoutController) MarkPlanPending(c *gin.Context)   { h.setPlanStatus(c, models.StatusPending) }

func (h *WorkoutController) setPlanStatus(c *gin.Context, status string) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := h.Workouts.SetPlanStatus(c.Request.Context(), caller, id, status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

/* -------- Sessions -------- */

func (h *WorkoutController) UpdateSession(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	planID, ok := pathID(c, "id")
	if !ok {
		return
	}
	sessionID, ok := pathID(c, "sessionId")
	if !ok {
		return
	}
	var input services.SessionPatch
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	out, err := h.Workouts.UpdateSession(c.Request.Context(), caller, planID, sessionID, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *WorkoutController) MarkSessionComplete(c *gin.Context) {
	h.setSessionStatus(c, models.StatusCompleted)
}

func (h *WorkoutController) MarkSessionPending(c *gin.Context) {
	h.setSessionStatus(c, models.StatusPending)
}

func (h *WorkoutController) setSessionStatus(c *gin.Context, status string) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	planID, ok := pathID(c, "id")
	if !ok {
		return
	}
	sessionID, ok := pathID(c, "sessionId")
	if !ok {
		return
	}
	out, err := h.Workouts.SetSessionStatus(c.Request.Context(), caller, planID, sessionID, status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
