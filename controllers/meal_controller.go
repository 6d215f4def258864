package controllers

import (
	"net/http"

	"github.com/hieuit01/BTL-CCNLTHD/services"

	"github.com/gin-gonic/gin"
)

type MealController struct {
	Meals *services.MealService
}

func NewMealController(meals *services.MealService) *MealController {
	return &MealController{Meals: meals}
}

/* -------- Catalog -------- */

func (h *MealController) List(c *gin.Context) { h.list(c, catalogFilter(c)) }

func (h *MealController) Own(c *gin.Context) {
	f := catalogFilter(c)
	f.Own = true
	h.list(c, f)
}

func (h *MealController) SuggestedByExpert(c *gin.Context) {
	f := catalogFilter(c)
	f.SuggestedByExpert = true
	h.list(c, f)
}

func (h *MealController) list(c *gin.Context, f services.CatalogFilter) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	out, err := h.Meals.ListMeals(c.Request.Context(), caller, f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *MealController) Create(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	var input services.MealInput
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

	out, err := h.Meals.CreateMeal(c.Request.Context(), caller, input, image)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *MealController) Get(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := h.Meals.GetMeal(c.Request.Context(), caller, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *MealController) Update(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input services.MealPatch
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

	out, err := h.Meals.UpdateMeal(c.Request.Context(), caller, id, input, image)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *MealController) Delete(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Meals.DeleteMeal(c.Request.Context(), caller, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

/* -------- Plans -------- */

func (h *MealController) ListPlans(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	userID, ok := queryID(c, "user_id")
	if !ok {
		return
	}
	out, err := h.Meals.ListPlans(c.Request.Context(), caller, services.PlanFilter{UserID: userID, Today: queryBool(c, "today")})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *MealController) CreatePlan(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	var input services.MealPlanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	out, err := h.Meals.CreatePlan(c.Request.Context(), caller, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *MealController) GetPlan(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := h.Meals.GetPlan(c.Request.Context(), caller, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *MealController) UpdatePlan(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input services.MealPlanPatch
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	out, err := h.Meals.UpdatePlan(c.Request.Context(), caller, id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *MealController) DeletePlan(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Meals.DeletePlan(c.Request.Context(), caller, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *MealController) AddMeal(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input services.PlanMealInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	out, err := h.Meals.AddMeal(c.Request.Context(), caller, id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

type removePlanMealReq struct {
	PlanMealID uint `json:"plan_meal_id" binding:"required"`
}

func (h *MealController) RemoveMeal(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input removePlanMealReq
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	out, err := h.Meals.RemoveMeal(c.Request.Context(), caller, id, input.PlanMealID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
