package controllers

import (
	"net/http"

	"github.com/hieuit01/BTL-CCNLTHD/services"
	"github.com/hieuit01/BTL-CCNLTHD/utils"

	"github.com/gin-gonic/gin"
)

type UploadController struct {
	Images services.ImageStore
}

func NewUploadController(images services.ImageStore) *UploadController {
	return &UploadController{Images: images}
}

// UploadImage stores a multipart "image" and returns its public URL, used
// for image chat messages.
func (h *UploadController) UploadImage(c *gin.Context) {
	if _, ok := mustCaller(c); !ok {
		return
	}
	if h.Images == nil {
		utils.SendError(c, http.StatusServiceUnavailable, utils.CodeUpstreamError, "Uploads disabled",
			"Chức năng tải ảnh chưa được cấu hình.", nil)
		return
	}
	image, closeFn, err := formUpload(c, "image")
	if err != nil {
		uploadError(c, "image")
		return
	}
	defer closeFn()
	if image == nil {
		utils.SendValidationError(c, "Dữ liệu không hợp lệ.", map[string]string{"image": "Trường này là bắt buộc."})
		return
	}

	url, err := h.Images.Upload(c.Request.Context(), "chat", image.Filename, image.ContentType, image.Body)
	if err != nil {
		_ = c.Error(err)
		utils.SendError(c, http.StatusBadGateway, utils.CodeUpstreamError, "Upload failed",
			"Tải ảnh thất bại, vui lòng thử lại sau.", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
