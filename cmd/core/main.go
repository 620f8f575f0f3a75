package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/templatecore/core/internal/access"
	"github.com/templatecore/core/internal/app"
	"github.com/templatecore/core/internal/auth"
	"github.com/templatecore/core/internal/authorities"
	"github.com/templatecore/core/internal/masterdata/personaldata"
	"github.com/templatecore/core/internal/masterdata/products"
	"github.com/templatecore/core/internal/observability"
	"github.com/templatecore/core/internal/platform/cache"
	"github.com/templatecore/core/internal/platform/db"
	"github.com/templatecore/core/internal/platform/httpx"
	"github.com/templatecore/core/internal/rbac"
	"github.com/templatecore/core/internal/roles"
	"github.com/templatecore/core/internal/users"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	metrics := observability.NewMetrics()

	gate, err := access.NewDecisionPoint(cfg.ServiceKey, cfg.PublicPaths)
	if err != nil {
		logger.Error("service key", slog.Any("error", err))
		os.Exit(1)
	}
	gate.WithLogger(logger).WithMetrics(metrics)

	verifier, err := auth.NewTokenVerifier(cfg.JWTSecret)
	if err != nil {
		logger.Error("jwt secret", slog.Any("error", err))
		os.Exit(1)
	}

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	if err := db.Migrate(ctx, dbpool); err != nil {
		logger.Error("migrate schema", slog.Any("error", err))
		os.Exit(1)
	}

	var identityCache *auth.IdentityCache
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, identity cache disabled", slog.Any("error", err))
	} else {
		identityCache = auth.NewIdentityCache(redisClient, cfg.IdentityCacheTTL)
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo, identityCache, logger)

	rbacStore := rbac.NewStore(dbpool)
	rbacService := rbac.NewService(rbacStore)

	rolesRepo := roles.NewRepository(dbpool)
	rolesService := roles.NewService(rolesRepo, rbacService, identityCache, logger)

	productsService := products.NewService(products.NewRepository(dbpool))
	authoritiesService := authorities.NewService(authorities.NewRepository(dbpool), logger)
	personalDataService := personaldata.NewService(personaldata.NewRepository(dbpool), logger)

	resolver := auth.NewResolver(usersRepo, identityCache, cfg.IdentityLookupTimeout, logger)
	authenticator := auth.NewAuthenticator(verifier, resolver, logger).WithMetrics(metrics)

	protected := []httpx.RouteDeclarer{
		users.NewHandler(logger, usersService),
		roles.NewHandler(logger, rolesService),
		rbac.NewPermissionsHandler(logger, rbacService),
		rbac.NewRoutesHandler(logger, rbacService),
		products.NewHandler(logger, productsService),
		authorities.NewHandler(logger, authoritiesService),
		personaldata.NewHandler(logger, personalDataService),
	}
	params := app.RouterParams{
		Logger:        logger,
		Config:        cfg,
		Metrics:       metrics,
		Gate:          gate,
		Authenticator: authenticator,
		Docs:          app.NewDocsHandler(cfg.DocsAPIPath, protected...),
		SwaggerUI:     app.NewSwaggerUIHandler(cfg.DocsAPIPath),
		Protected:     protected,
	}

	catalog := rbac.NewCatalogBuilder(rbacStore, logger, rbac.WithCatalogMetrics(metrics))
	if _, err := catalog.Build(ctx, params.Declarers()...); err != nil {
		logger.Error("build permission catalog", slog.Any("error", err))
		os.Exit(1)
	}

	seed := seeders{
		authorities:  authoritiesService,
		personalData: personalDataService,
		roles:        rolesService,
		users:        usersService,
	}
	if err := seed.run(ctx, cfg.AdminPassword); err != nil {
		logger.Error("bootstrap", slog.Any("error", err))
		os.Exit(1)
	}

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      app.NewRouter(params),
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

// seeders creates the bootstrap records on an empty database.
type seeders struct {
	authorities  *authorities.Service
	personalData *personaldata.Service
	roles        *roles.Service
	users        *users.Service
}

func (s seeders) run(ctx context.Context, adminPassword string) error {
	if _, err := s.authorities.EnsureAdminAuthority(ctx); err != nil {
		return err
	}
	data, found, err := s.personalData.EnsureAdmin(ctx)
	if err != nil {
		return err
	}
	admin := users.AdminSeed{Password: adminPassword}
	if found {
		admin.PersonalDataID = &data.ID
	}
	role, found, err := s.roles.EnsureAdminRole(ctx)
	if err != nil {
		return err
	}
	if found {
		admin.Roles = []users.RoleRef{{ID: role.ID, Name: role.Name}}
	}
	_, err = s.users.EnsureAdmin(ctx, admin)
	return err
}
