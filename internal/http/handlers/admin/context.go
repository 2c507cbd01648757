package admin

import (
	handlershared "github.com/Skynami/LunFirPay/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUintWithKeys(c, "admin_id", "admin id invalid", "admin id type invalid")
}
