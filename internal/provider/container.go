package provider

import (
	"github.com/mallfront/internal/cache"
	"github.com/mallfront/internal/client"
	"github.com/mallfront/internal/config"
	"github.com/mallfront/internal/logger"
	"github.com/mallfront/internal/models"
	"github.com/mallfront/internal/queue"
	"github.com/mallfront/internal/repository"
	"github.com/mallfront/internal/service"
	"github.com/mallfront/internal/store"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Snapshot store
	Snapshots store.Store

	// Repositories
	ReceiptRepo repository.ReceiptRepository
	ArchiveRepo repository.ArchiveRepository

	// Upstream clients
	OrderClient     *client.OrderClient
	AssistantClient *client.AssistantClient
	ProfileClient   *client.ProfileClient

	// Services
	CartService     *service.CartService
	CheckoutService *service.CheckoutService
	ChatService     *service.ChatService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	queueClient, err := queue.NewClient(cfg.Redis, cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient = nil
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.initStore()
	c.initRepositories()
	c.initClients()
	c.initServices()

	return c
}

// initStore 选择快照存储后端：缓存可用时走 Redis，否则落库
func (c *Container) initStore() {
	if cache.Enabled() {
		c.Snapshots = store.NewRedisStore(cache.Client(), c.Config.Redis.KeyPrefix+":snapshot")
		return
	}
	c.Snapshots = store.NewGormStore(models.DB)
}

func (c *Container) initRepositories() {
	db := models.DB
	c.ReceiptRepo = repository.NewReceiptRepository(db)
	c.ArchiveRepo = repository.NewArchiveRepository(db)
}

func (c *Container) initClients() {
	up := c.Config.Upstream

	orderClient, err := client.NewOrderClient(up.Order.BaseURL, up.Order.AuthToken, up.Order.Timeout())
	if err != nil {
		logger.Errorw("provider_init_order_client_failed", "error", err)
		panic(err)
	}
	c.OrderClient = orderClient

	assistantClient, err := client.NewAssistantClient(up.Assistant.BaseURL, up.Assistant.AuthToken, up.Assistant.Timeout())
	if err != nil {
		logger.Errorw("provider_init_assistant_client_failed", "error", err)
		panic(err)
	}
	c.AssistantClient = assistantClient

	profileClient, err := client.NewProfileClient(up.Profile.BaseURL, up.Profile.AuthToken, up.Profile.Timeout())
	if err != nil {
		logger.Errorw("provider_init_profile_client_failed", "error", err)
		panic(err)
	}
	c.ProfileClient = profileClient
}

func (c *Container) initServices() {
	c.CartService = service.NewCartService(c.Snapshots, c.Config.Cart.Currency)

	var notifier service.CheckoutNotifier
	var archiver service.ChatArchiver
	if c.QueueClient.Enabled() {
		notifier = c.QueueClient
		archiver = c.QueueClient
	}

	c.CheckoutService = service.NewCheckoutService(c.CartService, c.OrderClient, c.ReceiptRepo, notifier)
	c.ChatService = service.NewChatService(
		c.Snapshots,
		c.AssistantClient,
		archiver,
		c.Config.Chat.RevealInterval(),
		c.Config.Chat.HistoryLimit,
	)
}
