package controllers

import (
	"net/http"
	"strconv"

	"github.com/hieuit01/BTL-CCNLTHD/services"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	Users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{Users: users}
}

func (h *UserController) GetCurrent(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	profile, err := h.Users.Profile(c.Request.Context(), caller.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateCurrent handles PATCH with JSON, or multipart when an avatar is sent.
func (h *UserController) UpdateCurrent(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}

	var input services.UpdateUserInput
	if isMultipart(c) {
		var err error
		if input, err = updateInputFromForm(c); err != nil {
			bindError(c, err)
			return
		}
	} else if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	avatar, closeFn, err := formUpload(c, "avatar")
	if err != nil {
		uploadError(c, "avatar")
		return
	}
	defer closeFn()

	profile, err := h.Users.UpdateCurrent(c.Request.Context(), caller, input, avatar)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// DeleteCurrent deactivates the account; tokens stop working immediately.
func (h *UserController) DeleteCurrent(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	if err := h.Users.Deactivate(c.Request.Context(), caller); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func updateInputFromForm(c *gin.Context) (services.UpdateUserInput, error) {
	var in services.UpdateUserInput
	str := func(key string) *string {
		if v, ok := c.GetPostForm(key); ok {
			return &v
		}
		return nil
	}
	in.Username = str("username")
	in.Email = str("email")
	in.Password = str("password")
	in.FirstName = str("first_name")
	in.LastName = str("last_name")
	in.Phone = str("phone")
	in.Gender = str("gender")
	in.TrackingMode = str("tracking_mode")

	var err error
	if in.ConnectedTrainer, err = formOptionalID(c, "connected_trainer"); err != nil {
		return in, err
	}
	if in.ConnectedNutritionist, err = formOptionalID(c, "connected_nutritionist"); err != nil {
		return in, err
	}
	return in, validate(in)
}

func formOptionalID(c *gin.Context, key string) (services.OptionalID, error) {
	raw, ok := c.GetPostForm(key)
	if !ok {
		return services.OptionalID{}, nil
	}
	if raw == "" || raw == "null" {
		return services.OptionalID{Set: true}, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return services.OptionalID{}, err
	}
	id := uint(v)
	return services.OptionalID{Set: true, Value: &id}, nil
}
