// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/go-petr/p2p-bank/internal/accountdelivery"
	"github.com/go-petr/p2p-bank/internal/accountrepo"
	"github.com/go-petr/p2p-bank/internal/accountservice"
	"github.com/go-petr/p2p-bank/internal/domain"
	"github.com/go-petr/p2p-bank/internal/historycache"
	"github.com/go-petr/p2p-bank/internal/historydelivery"
	"github.com/go-petr/p2p-bank/internal/historyservice"
	"github.com/go-petr/p2p-bank/internal/middleware"
	"github.com/go-petr/p2p-bank/internal/transferdelivery"
	"github.com/go-petr/p2p-bank/internal/transferrepo"
	"github.com/go-petr/p2p-bank/internal/transferservice"
	"github.com/go-petr/p2p-bank/internal/userdelivery"
	"github.com/go-petr/p2p-bank/internal/userservice"
	"github.com/go-petr/p2p-bank/pkg/configpkg"
	"github.com/go-petr/p2p-bank/pkg/tokenpkg"
	"github.com/go-petr/p2p-bank/pkg/web"
)

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB         *sql.DB
	Engine     *gin.Engine
	Config     configpkg.Config
	TokenMaker tokenpkg.Maker
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

type options struct {
	cache     *historycache.Cache
	publisher transferservice.Publisher
}

// Option configures optional infrastructure of the Server.
type Option func(*options)

// WithHistoryCache makes history reads go through c.
func WithHistoryCache(c *historycache.Cache) Option {
	return func(o *options) {
		o.cache = c
	}
}

// WithPublisher makes committed transfers be published through p.
func WithPublisher(p transferservice.Publisher) Option {
	return func(o *options) {
		o.publisher = p
	}
}

// New creates Server type with instantiated domains and routes.
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config, opts ...Option) (*Server, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	tokenMaker, err := tokenpkg.NewMaker(config.TokenType, config.TokenSymmetricKey)
	if err != nil {
		return nil, fmt.Errorf("cannot create token maker: %w", err)
	}

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("account_number", web.ValidAccountNumber); err != nil {
			return nil, fmt.Errorf("cannot register account_number validator: %w", err)
		}
	}

	accountRepo := accountrepo.NewRepoPGS(conn)
	transferRepo := transferrepo.NewRepoPGS(conn)

	var (
		transferOpts []transferservice.Option
		historyOpts  []historyservice.Option
	)

	if o.cache != nil {
		historyOpts = append(historyOpts, historyservice.WithCache(o.cache))
	}

	if o.publisher != nil {
		transferOpts = append(transferOpts, transferservice.WithPublisher(o.publisher))
	}

	historyService := historyservice.New(accountRepo, transferRepo, historyOpts...)
	transferOpts = append(transferOpts, transferservice.WithCacheInvalidator(historyService))

	userService := userservice.New(accountRepo, tokenMaker)
	accountService := accountservice.New(accountRepo)
	transferService := transferservice.New(transferRepo, transferOpts...)

	userHandler := userdelivery.NewHandler(userService)
	accountHandler := accountdelivery.NewHandler(accountService)
	transferHandler := transferdelivery.NewHandler(transferService)
	historyHandler := historydelivery.NewHandler(historyService)

	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}))

	engine.POST("/register", userHandler.Register)
	engine.POST("/login", userHandler.Login)

	authRoutes := engine.Group("/").Use(middleware.AuthMiddleware(tokenMaker))

	authRoutes.POST("/transferencias", transferHandler.Create)
	authRoutes.POST("/historial", historyHandler.List)
	authRoutes.GET("/accounts/me", accountHandler.Me)
	authRoutes.PATCH(
		"/accounts/:account_number/status",
		middleware.RequireRole(domain.RoleAdmin, domain.RoleSuperuser),
		accountHandler.SetStatus,
	)

	server := &Server{
		DB:         conn,
		Engine:     engine,
		Config:     config,
		TokenMaker: tokenMaker,
	}

	return server, nil
}
