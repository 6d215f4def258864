package controllers

import (
	"net/http"
	"time"

	"github.com/hieuit01/BTL-CCNLTHD/services"
	"github.com/hieuit01/BTL-CCNLTHD/utils"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	Users  *services.UserService
	Secret string
	TTL    time.Duration
}

func NewAuthController(users *services.UserService, secret string, ttl time.Duration) *AuthController {
	return &AuthController{Users: users, Secret: secret, TTL: ttl}
}

// Register accepts JSON or a multipart form with an optional "avatar" file.
func (h *AuthController) Register(c *gin.Context) {
	var input services.RegisterInput
	if err := c.ShouldBind(&input); err != nil {
		bindError(c, err)
		return
	}
	avatar, closeFn, err := formUpload(c, "avatar")
	if err != nil {
		uploadError(c, "avatar")
		return
	}
	defer closeFn()

	profile, err := h.Users.Register(c.Request.Context(), input, avatar)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, profile)
}

type LoginInput struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// Login issues a bearer token. Form-encoded bodies are accepted so OAuth2
// password-grant clients work unchanged.
func (h *AuthController) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBind(&input); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.Users.Authenticate(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := utils.GenerateJWT(h.Secret, user.ID, user.Role, h.TTL)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   int(h.TTL.Seconds()),
		"user":         user,
	})
}
