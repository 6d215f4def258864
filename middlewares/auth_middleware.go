package middlewares

import (
	"context"
	"strings"

	"github.com/hieuit01/BTL-CCNLTHD/models"
	"github.com/hieuit01/BTL-CCNLTHD/utils"

	"github.com/gin-gonic/gin"
)

const (
	CtxUserID = "userID"
	CtxRole   = "role"
)

// ActiveUsers resolves a token subject to a live account.
type ActiveUsers interface {
	Active(ctx context.Context, id uint) (*models.User, error)
}

// AuthMiddleware accepts "Authorization: Bearer <jwt>" and, for websocket
// handshakes, a ?token= query parameter.
func AuthMiddleware(secret string, users ActiveUsers) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
			tokenString = strings.TrimPrefix(h, "Bearer ")
		} else if c.IsWebsocket() {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			utils.SendUnauthorized(c, utils.CodeMissingToken, "Vui lòng đăng nhập.")
			return
		}

		claims, err := utils.ParseJWT(secret, tokenString)
		if err != nil {
			utils.SendUnauthorized(c, utils.CodeInvalidToken, "Phiên đăng nhập không hợp lệ hoặc đã hết hạn.")
			return
		}

		user, err := users.Active(c.Request.Context(), claims.UserID)
		if err != nil {
			utils.SendUnauthorized(c, utils.CodeInvalidToken, "Tài khoản không tồn tại hoặc đã bị vô hiệu hóa.")
			return
		}

		// role comes from the database so a role change takes effect immediately
		c.Set(CtxUserID, user.ID)
		c.Set(CtxRole, user.Role)
		c.Next()
	}
}
