package controllers

import (
	"net/http"

	"github.com/hieuit01/BTL-CCNLTHD/models"
	"github.com/hieuit01/BTL-CCNLTHD/services"
	"github.com/hieuit01/BTL-CCNLTHD/utils"

	"github.com/gin-gonic/gin"
)

type ExpertController struct {
	Experts *services.ExpertService
}

func NewExpertController(experts *services.ExpertService) *ExpertController {
	return &ExpertController{Experts: experts}
}

// List serves /experts/?expert_type=trainer|nutritionist.
func (h *ExpertController) List(c *gin.Context) {
	t := c.Query("expert_type")
	if t != "" && t != models.RoleTrainer && t != models.RoleNutritionist {
		utils.SendValidationError(c, "Dữ liệu không hợp lệ.",
			map[string]string{"expert_type": "Giá trị phải là một trong: trainer, nutritionist."})
		return
	}
	h.list(c, t)
}

func (h *ExpertController) Trainers(c *gin.Context)      { h.list(c, models.RoleTrainer) }
func (h *ExpertController) Nutritionists(c *gin.Context) { h.list(c, models.RoleNutritionist) }

func (h *ExpertController) list(c *gin.Context, expertType string) {
	out, err := h.Experts.List(c.Request.Context(), expertType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *ExpertController) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := h.Experts.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *ExpertController) Current(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	out, err := h.Experts.Current(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *ExpertController) UpdateCurrent(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	var input services.UpdateExpertInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	out, err := h.Experts.UpdateCurrent(c.Request.Context(), caller, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *ExpertController) ConnectedUsers(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	out, err := h.Experts.ConnectedUsers(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *ExpertController) ConnectedUserCount(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	n, err := h.Experts.ConnectedUserCount(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (h *ExpertController) UserDetail(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := h.Experts.ConnectedUserDetail(c.Request.Context(), caller, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
