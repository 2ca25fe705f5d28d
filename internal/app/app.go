package app

import (
	"sync"

	"github.com/bobmcallan/wordpress-mcp/internal/common"
	"github.com/bobmcallan/wordpress-mcp/internal/config"
	"github.com/bobmcallan/wordpress-mcp/internal/handlers"
	"github.com/bobmcallan/wordpress-mcp/internal/mcp"
	"github.com/bobmcallan/wordpress-mcp/internal/metrics"
	"github.com/bobmcallan/wordpress-mcp/internal/wordpress"
)

// App holds all application components and dependencies. It is built once
// at startup and shared by reference with every request handler.
type App struct {
	Config  *config.Config
	Logger  *common.Logger
	Metrics *metrics.Metrics

	// WordPress is the single upstream client handle. It is nil when no
	// site URL is configured.
	WordPress  *wordpress.Client
	Dispatcher *mcp.Dispatcher

	// HTTP handlers
	InfoHandler    *handlers.InfoHandler
	HealthHandler  *handlers.HealthHandler
	VersionHandler *handlers.VersionHandler
	SSEHandler     *handlers.SSEHandler
	MCPHandler     *mcp.Handler

	closeOnce sync.Once
}

// New initializes the application with all dependencies.
func New(cfg *config.Config, logger *common.Logger) (*App, error) {
	a := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.New(),
	}

	a.initClient()
	a.initHandlers()

	logger.Info().Msg("application initialization complete")

	return a, nil
}

func (a *App) initClient() {
	wp := a.Config.WordPress
	if wp.URL == "" {
		a.Logger.Warn().Msg("WordPress URL not configured, tool calls will fail")
		return
	}
	a.WordPress = wordpress.NewClient(wp.URL, wp.Username, wp.Password, wp.GetTimeout(), a.Logger,
		wordpress.WithObserver(a.Metrics))
}

// initHandlers initializes all HTTP handlers.
func (a *App) initHandlers() {
	var posts mcp.PostService
	if a.WordPress != nil {
		posts = a.WordPress
	}
	a.Dispatcher = mcp.NewDispatcher(posts, a.Logger, a.Metrics)

	a.InfoHandler = handlers.NewInfoHandler(a.Config.WordPress.URL)
	a.HealthHandler = handlers.NewHealthHandler()
	a.VersionHandler = handlers.NewVersionHandler()
	a.SSEHandler = handlers.NewSSEHandler(
		a.Config.BaseURL()+"/mcp",
		a.Config.SSE.GetHeartbeatInterval(),
		a.Logger,
		a.Metrics,
	)
	a.MCPHandler = mcp.NewHandler(a.Dispatcher, a.Logger)

	a.Logger.Debug().Msg("HTTP handlers initialized")
}

// Close releases the upstream client. Calling it more than once is a no-op.
func (a *App) Close() error {
	var err error
	a.closeOnce.Do(func() {
		if a.WordPress != nil {
			err = a.WordPress.Close()
		}
	})
	return err
}
