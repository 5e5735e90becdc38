package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/immochat/auth-service/internal/config"
	"github.com/immochat/auth-service/internal/domain"
	"github.com/immochat/auth-service/internal/handler"
	"github.com/immochat/auth-service/internal/mailer"
	"github.com/immochat/auth-service/internal/repository"
	"github.com/immochat/auth-service/internal/service"
	"github.com/immochat/auth-service/internal/utils"
	"github.com/immochat/auth-service/pkg/observability"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	infra   Infrastructure
	config  *config.Config
	router  *gin.Engine
	server  *http.Server
	janitor *Janitor
}

func NewApp(infra Infrastructure, cfg *config.Config) *App {
	return NewAppWithOAuth(infra, cfg, service.OAuthConfig{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		RedirectURL:  cfg.Google.RedirectURL,
	})
}

// NewAppWithOAuth wires the application with explicit OAuth provider
// settings. Lets tests point the flow at a fake provider.
func NewAppWithOAuth(infra Infrastructure, cfg *config.Config, oauthCfg service.OAuthConfig) *App {
	logger := infra.Logger()
	repos := repository.NewRepositories(infra.Postgres())

	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry.Duration,
		cfg.JWT.RefreshTokenExpiry.Duration,
	)

	blacklistService := service.NewTokenBlacklistService(infra.Redis())
	rateLimiter := service.NewRateLimiter(infra.Redis())
	healthChecker := NewHealthChecker(infra)

	var sender mailer.Sender
	if cfg.SMTP.Enabled() {
		sender = mailer.NewSMTPSender(mailer.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			From:     cfg.SMTP.From,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			Timeout:  cfg.SMTP.Timeout.Duration,
		})
	} else {
		sender = mailer.NewLogSender(logger)
	}

	minter := service.NewSessionMinter(jwtManager, repos.Token, cfg.JWT.RefreshTokenExpiry.Duration)
	otpService := service.NewOTPService(repos.Code, sender, cfg.OTP.TTL.Duration, logger)

	authService := service.NewAuthService(
		repos.User,
		repos.Token,
		minter,
		jwtManager,
		blacklistService,
		cfg.Security.BCryptCost,
		cfg.JWT.RefreshTokenExpiry.Duration,
		logger,
	)
	passwordService := service.NewPasswordService(repos.User, otpService, cfg.Security.BCryptCost, logger)
	oauthService := service.NewOAuthService(oauthCfg, repos.User, repos.Identity, minter, logger)
	adminService := service.NewAdminService(repos.User, logger)

	authHandler := handler.NewAuthHandler(authService, logger)
	passwordHandler := handler.NewPasswordHandler(passwordService, logger)
	oauthHandler := handler.NewOAuthHandler(oauthService, logger)
	adminHandler := handler.NewAdminHandler(adminService, logger)

	router := gin.Default()
	router.Use(otelgin.Middleware("immochat-auth"))
	router.Use(handler.LoggerMiddleware(logger))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	setupRoutes(router, cfg, routeHandlers{
		auth:     authHandler,
		password: passwordHandler,
		oauth:    oauthHandler,
		admin:    adminHandler,
	}, authService, rateLimiter, healthChecker, infra.MetricsHandler())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:   infra,
		config:  cfg,
		router:  router,
		server:  srv,
		janitor: NewJanitor(otpService, repos.Token, cfg.OTP.CleanupInterval.Duration, logger),
	}
}

func (a *App) Router() *gin.Engine {
	return a.router
}

type routeHandlers struct {
	auth     *handler.AuthHandler
	password *handler.PasswordHandler
	oauth    *handler.OAuthHandler
	admin    *handler.AdminHandler
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	h routeHandlers,
	authService service.AuthService,
	rateLimiter *service.RateLimiter,
	healthChecker *HealthChecker,
	metricsHandler http.Handler,
) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", healthChecker.Handler)

	limit := handler.RateLimitMiddleware(
		rateLimiter,
		cfg.Security.RateLimitRequests,
		cfg.Security.RateLimitWindow.Duration,
		handler.IPBasedKey,
	)
	authRequired := handler.AuthMiddleware(authService)

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", limit, h.auth.Register)
			auth.POST("/login", limit, h.auth.Login)
			auth.POST("/refresh", h.auth.Refresh)
			auth.POST("/logout", authRequired, h.auth.Logout)
			auth.GET("/me", authRequired, h.auth.GetMe)

			auth.GET("/google/login", h.oauth.GoogleLogin)
			auth.GET("/google/callback", h.oauth.GoogleCallback)

			password := auth.Group("/password")
			{
				password.POST("/forgot", limit, h.password.Forgot)
				password.POST("/verify-otp", limit, h.password.VerifyOTP)
				password.POST("/reset", limit, h.password.Reset)
				password.POST("/change", authRequired, h.password.Change)
				password.POST("/set", authRequired, h.password.Set)
			}
		}

		users := api.Group("/users", authRequired, handler.RequireRole(domain.RoleAdmin))
		{
			users.GET("/:id", h.admin.GetUser)
			users.PUT("/:id/role", h.admin.UpdateRole)
			users.DELETE("/:id", h.admin.DeleteUser)
		}
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go a.janitor.Run(ctx)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
		)

		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		a.infra.Logger().Error("Shutdown error", zap.Error(err))
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	errs := make(chan error, 2)

	go func() {
		errs <- a.server.Shutdown(ctx)
	}()

	go func() {
		errs <- a.infra.Shutdown(ctx)
	}()

	err := errors.Join(<-errs, <-errs)
	if err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
