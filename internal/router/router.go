package router

import (
	"fmt"
	"strings"

	"github.com/Skynami/LunFirPay/internal/cache"
	"github.com/Skynami/LunFirPay/internal/config"
	adminhandlers "github.com/Skynami/LunFirPay/internal/http/handlers/admin"
	publichandlers "github.com/Skynami/LunFirPay/internal/http/handlers/public"
	"github.com/Skynami/LunFirPay/internal/http/response"
	"github.com/Skynami/LunFirPay/internal/logger"
	"github.com/Skynami/LunFirPay/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "lfp"
	}
	redisClient := cache.Client()
	submitRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:submit", redisPrefix),
		WindowSeconds: cfg.Security.SubmitRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.SubmitRateLimit.MaxAttempts,
		Message:       "submit too frequently",
	}
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "login too frequently",
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	r.GET("/healthz", func(c *gin.Context) {
		response.Success(c, gin.H{"status": "ok"})
	})

	apiV1 := r.Group("/api/v1")
	{
		// 商户开放接口
		pay := apiV1.Group("/pay")
		{
			pay.POST("/submit", RateLimitMiddleware(redisClient, submitRule, KeyByFormField("pid")), publicHandler.SubmitPay)
			pay.GET("/orders/:out_trade_no", publicHandler.QueryOrder)
		}

		// 上游异步回调（地址由下单时按 提供方/渠道 生成）
		apiV1.POST("/notify/:provider/:channel_id", publicHandler.ProviderNotify)
		apiV1.GET("/notify/:provider/:channel_id", publicHandler.ProviderNotify)

		// 管理端
		adminGroup := apiV1.Group("/admin")
		{
			adminGroup.POST("/auth/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("username")), adminHandler.Login)

			authed := adminGroup.Group("")
			authed.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo))
			{
				authed.PUT("/auth/password", adminHandler.UpdatePassword)

				authed.GET("/channels", adminHandler.ListChannels)
				authed.POST("/channels", adminHandler.CreateChannel)
				authed.GET("/channels/:id", adminHandler.GetChannel)
				authed.PUT("/channels/:id", adminHandler.UpdateChannel)
				authed.DELETE("/channels/:id", adminHandler.DeleteChannel)
				authed.GET("/channels/:id/consumed", adminHandler.ChannelConsumedToday)

				authed.GET("/pay-groups", adminHandler.ListPayGroups)
				authed.POST("/pay-groups", adminHandler.CreatePayGroup)
				authed.GET("/pay-groups/:id", adminHandler.GetPayGroup)
				authed.PUT("/pay-groups/:id", adminHandler.UpdatePayGroup)
				authed.DELETE("/pay-groups/:id", adminHandler.DeletePayGroup)
				authed.POST("/pay-groups/:id/default", adminHandler.SetDefaultPayGroup)
				authed.PUT("/pay-groups/:id/rules", adminHandler.SavePayGroupRule)
				authed.DELETE("/pay-groups/:id/rules/:pay_type", adminHandler.DeletePayGroupRule)

				authed.GET("/channel-groups", adminHandler.ListChannelGroups)
				authed.POST("/channel-groups", adminHandler.CreateChannelGroup)
				authed.GET("/channel-groups/:id", adminHandler.GetChannelGroup)
				authed.PUT("/channel-groups/:id", adminHandler.UpdateChannelGroup)
				authed.DELETE("/channel-groups/:id", adminHandler.DeleteChannelGroup)
				authed.PUT("/channel-groups/:id/members", adminHandler.ReplaceChannelGroupMembers)

				authed.GET("/merchants", adminHandler.ListMerchants)
				authed.POST("/merchants", adminHandler.CreateMerchant)
				authed.GET("/merchants/:id", adminHandler.GetMerchant)
				authed.PUT("/merchants/:id", adminHandler.UpdateMerchant)
				authed.DELETE("/merchants/:id", adminHandler.DeleteMerchant)
				authed.POST("/merchants/:id/reset-secret", adminHandler.ResetMerchantSecret)

				authed.GET("/pay-types", adminHandler.ListPayTypes)
				authed.POST("/pay-types", adminHandler.CreatePayType)
				authed.PUT("/pay-types/:id", adminHandler.UpdatePayType)
				authed.DELETE("/pay-types/:id", adminHandler.DeletePayType)

				authed.GET("/orders", adminHandler.ListOrders)
				authed.GET("/orders/:trade_no", adminHandler.GetOrder)
				authed.POST("/orders/:trade_no/notify", adminHandler.RetryOrderNotify)
			}
		}
	}

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "route not found")
	})

	return r
}
