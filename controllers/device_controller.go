package controllers

import (
	"errors"
	"net/http"

	"github.com/hieuit01/BTL-CCNLTHD/services"
	"github.com/hieuit01/BTL-CCNLTHD/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type DeviceController struct {
	Push *services.PushService
	DB   *gorm.DB
}

func NewDeviceController(ps *services.PushService, db *gorm.DB) *DeviceController {
	return &DeviceController{Push: ps, DB: db}
}

type RegisterDeviceReq struct {
	Platform string `json:"platform" binding:"required,oneof=android ios"`
	Token    string `json:"token" binding:"required"`
}

func (dc *DeviceController) Register(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	if dc.Push == nil {
		utils.SendError(c, http.StatusServiceUnavailable, utils.CodeUpstreamError, "Push disabled",
			"Thông báo đẩy chưa được cấu hình.", nil)
		return
	}

	var req RegisterDeviceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	dev, err := dc.Push.RegisterDevice(c.Request.Context(), caller.ID, req.Platform, req.Token)
	if err != nil {
		if errors.Is(err, services.ErrUnknownPlatform) {
			utils.SendValidationError(c, "Dữ liệu không hợp lệ.", map[string]string{"platform": "Nền tảng không được hỗ trợ."})
			return
		}
		_ = c.Error(err)
		utils.SendError(c, http.StatusBadGateway, utils.CodeUpstreamError, "Push registration failed",
			"Không thể đăng ký thiết bị, vui lòng thử lại sau.", nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": dev.ID, "endpoint_arn": dev.EndpointARN})
}

type toggleReq struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// ToggleNotifications serves POST /notifications/toggle.
func (dc *DeviceController) ToggleNotifications(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}

	var req toggleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := services.SetNotifications(c.Request.Context(), dc.DB, caller.ID, *req.Enabled); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Đã cập nhật cài đặt thông báo.",
		"enabled": *req.Enabled,
	})
}
