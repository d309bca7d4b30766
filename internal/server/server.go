package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ninjapaylabs/ninjapay/internal/config"
	fundingdomain "github.com/ninjapaylabs/ninjapay/internal/funding/domain"
	"github.com/ninjapaylabs/ninjapay/internal/identity"
	paymentdomain "github.com/ninjapaylabs/ninjapay/internal/payment/domain"
	"github.com/ninjapaylabs/ninjapay/internal/plugins"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	HeaderProviderInvoiceKey = "X-Provider-Invoice-Key"
	HeaderProviderAdminKey   = "X-Provider-Admin-Key"

	sessionCookie = "token"
	contextUIDKey = "uid"
)

type Params struct {
	fx.In

	Config     *config.Config
	Identity   identity.Client
	FundingSvc fundingdomain.Service
	PaymentSvc paymentdomain.Service
	PluginsSvc plugins.Service
	Logger     *zap.Logger
}

type Server struct {
	config     *config.Config
	identity   identity.Client
	fundingSvc fundingdomain.Service
	paymentSvc paymentdomain.Service
	pluginsSvc plugins.Service
	logger     *zap.Logger
}

func New(p Params) *Server {
	return &Server{
		config:     p.Config,
		identity:   p.Identity,
		fundingSvc: p.FundingSvc,
		paymentSvc: p.PaymentSvc,
		pluginsSvc: p.PluginsSvc,
		logger:     p.Logger,
	}
}

// Router wires every route. Payment endpoints accept either a session or
// the provider routing-key headers; funding management and plugin install
// require a session.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestMetrics())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", metricsHandler())

	router.POST("/signup", s.SignUp)
	router.POST("/login", s.Login)
	router.GET("/logout", s.Logout)

	paid := router.Group("/", s.PaymentAccess())
	{
		paid.POST("/createPayLink", s.CreatePayLink)
		paid.GET("/balance", s.GetBalance)
		paid.POST("/payInvoice", s.PayInvoice)
		paid.GET("/transactions", s.GetTransactions)
		paid.GET("/checkStatus", s.CheckStatus)
	}

	authed := router.Group("/", s.SessionRequired())
	{
		authed.GET("/funding", s.GetFunding)
		authed.POST("/add-funding/lnbits", s.AddLNbits)
		authed.POST("/add-funding/opennode", s.AddOpenNode)
		authed.POST("/set-default-provider", s.SetDefaultProvider)
		authed.POST("/install", s.InstallPlugin)
		authed.GET("/plugins", s.ListPlugins)
	}

	return router
}

// SessionRequired verifies the token cookie through the identity service
// and stores the subject uid on the request.
func (s *Server) SessionRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(sessionCookie)
		if err != nil || token == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		uid, err := s.identity.VerifyToken(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, identity.ErrInvalidToken) {
				AbortWithError(c, ErrUnauthorized)
				return
			}
			AbortWithError(c, err)
			return
		}

		c.Set(contextUIDKey, uid)
		c.Next()
	}
}

// PaymentAccess lets the provider routing-key headers stand in for a
// session on payment endpoints. With a header present the request goes
// through untouched; resolution happens later against the key itself.
func (s *Server) PaymentAccess() gin.HandlerFunc {
	sessionRequired := s.SessionRequired()
	return func(c *gin.Context) {
		if c.GetHeader(HeaderProviderInvoiceKey) != "" || c.GetHeader(HeaderProviderAdminKey) != "" {
			c.Next()
			return
		}
		sessionRequired(c)
	}
}

// resolveInput gathers everything the provider resolver may use.
func (s *Server) resolveInput(c *gin.Context) fundingdomain.ResolveInput {
	return fundingdomain.ResolveInput{
		InvoiceKeyHeader: c.GetHeader(HeaderProviderInvoiceKey),
		AdminKeyHeader:   c.GetHeader(HeaderProviderAdminKey),
		UserUID:          c.GetString(contextUIDKey),
	}
}

func Start(lc fx.Lifecycle, s *Server, cfg *config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.ListenAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

var Module = fx.Module("server",
	fx.Provide(New),
	fx.Invoke(Start),
)
