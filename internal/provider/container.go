package provider

import (
	"github.com/Skynami/LunFirPay/internal/cache"
	"github.com/Skynami/LunFirPay/internal/config"
	"github.com/Skynami/LunFirPay/internal/logger"
	"github.com/Skynami/LunFirPay/internal/models"
	"github.com/Skynami/LunFirPay/internal/payment"
	"github.com/Skynami/LunFirPay/internal/payment/epay"
	"github.com/Skynami/LunFirPay/internal/payment/wechatpay"
	"github.com/Skynami/LunFirPay/internal/queue"
	"github.com/Skynami/LunFirPay/internal/repository"
	"github.com/Skynami/LunFirPay/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Registry    *payment.Registry

	// Repositories
	AdminRepo        repository.AdminRepository
	MerchantRepo     repository.MerchantRepository
	PayTypeRepo      repository.PayTypeRepository
	ChannelRepo      repository.ChannelRepository
	PayGroupRepo     repository.PayGroupRepository
	ChannelGroupRepo repository.ChannelGroupRepository
	OrderRepo        repository.OrderRepository

	// Services
	AuthService         *service.AuthService
	RoutingService      *service.RoutingService
	OrderService        *service.OrderService
	NotifyService       *service.NotifyService
	ChannelService      *service.ChannelService
	PayGroupService     *service.PayGroupService
	ChannelGroupService *service.ChannelGroupService
	MerchantService     *service.MerchantService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	qc, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
	} else {
		queueClient = qc
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		Registry:    payment.NewRegistry(epay.New(), wechatpay.New()),
	}

	c.initRepositories()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.MerchantRepo = repository.NewMerchantRepository(db)
	c.PayTypeRepo = repository.NewPayTypeRepository(db)
	c.ChannelRepo = repository.NewChannelRepository(db)
	c.PayGroupRepo = repository.NewPayGroupRepository(db)
	c.ChannelGroupRepo = repository.NewChannelGroupRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
}

func (c *Container) initServices() {
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.RoutingService = service.NewRoutingService(
		c.ChannelRepo,
		c.PayGroupRepo,
		c.ChannelGroupRepo,
		c.PayTypeRepo,
		c.MerchantRepo,
		c.OrderRepo,
		c.Config.Routing.Timezone,
	)
	c.OrderService = service.NewOrderService(
		c.OrderRepo,
		c.MerchantRepo,
		c.ChannelRepo,
		c.RoutingService,
		c.Registry,
		c.QueueClient,
		c.Config.Server.BaseURL,
		c.Config.Order.ExpireMinutes,
	)
	c.NotifyService = service.NewNotifyService(c.OrderRepo, c.MerchantRepo, c.Config.Notify.TimeoutSeconds)
	c.ChannelService = service.NewChannelService(c.ChannelRepo, c.Registry)
	c.PayGroupService = service.NewPayGroupService(c.PayGroupRepo, c.ChannelRepo, c.ChannelGroupRepo)
	c.ChannelGroupService = service.NewChannelGroupService(c.ChannelGroupRepo, c.ChannelRepo)
	c.MerchantService = service.NewMerchantService(c.MerchantRepo, c.PayGroupRepo)
}
