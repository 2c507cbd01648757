package admin

import (
	"errors"
	"strings"
	"time"

	"github.com/Skynami/LunFirPay/internal/http/response"
	"github.com/Skynami/LunFirPay/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token     string                 `json:"token"`
	Admin     map[string]interface{} `json:"admin"`
	ExpiresAt string                 `json:"expires_at"`
}

// Login 管理员登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "username and password required", nil)
		return
	}

	admin, token, expiresAt, err := h.AuthService.Login(strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		if errors.Is(err, service.ErrAdminNotFound) || errors.Is(err, service.ErrAdminPasswordInvalid) {
			requestLog(c).Warnw("admin_login_failed", "username", req.Username, "client_ip", c.ClientIP())
			respondError(c, response.CodeUnauthorized, "username or password incorrect", nil)
			return
		}
		respondError(c, response.CodeInternal, "login failed", err)
		return
	}

	response.Success(c, LoginResponse{
		Token: token,
		Admin: map[string]interface{}{
			"id":       admin.ID,
			"username": admin.Username,
		},
		ExpiresAt: expiresAt.Format(time.RFC3339),
	})
}

// UpdatePasswordRequest 修改密码请求
type UpdatePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// UpdatePassword 修改当前管理员密码
func (h *Handler) UpdatePassword(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	var req UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "password params invalid", nil)
		return
	}

	admin, err := h.AdminRepo.GetByID(adminID)
	if err != nil || admin == nil {
		respondError(c, response.CodeUnauthorized, "admin not found", err)
		return
	}
	if err := h.AuthService.VerifyPassword(admin.PasswordHash, req.OldPassword); err != nil {
		respondError(c, response.CodeBadRequest, "old password incorrect", nil)
		return
	}

	hash, err := h.AuthService.HashPassword(req.NewPassword)
	if err != nil {
		respondError(c, response.CodeInternal, "password update failed", err)
		return
	}
	admin.PasswordHash = hash
	if err := h.AdminRepo.Update(admin); err != nil {
		respondError(c, response.CodeInternal, "password update failed", err)
		return
	}

	response.Success(c, nil)
}
