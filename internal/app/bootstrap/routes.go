// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	authfeature "github.com/campushub/campushub/internal/app/features/auth"
	campusesfeature "github.com/campushub/campushub/internal/app/features/campuses"
	coursesfeature "github.com/campushub/campushub/internal/app/features/courses"
	healthfeature "github.com/campushub/campushub/internal/app/features/health"
	ordersfeature "github.com/campushub/campushub/internal/app/features/orders"
	usersfeature "github.com/campushub/campushub/internal/app/features/users"
	userstore "github.com/campushub/campushub/internal/app/store/users"
	sysauth "github.com/campushub/campushub/internal/app/system/auth"
	"github.com/campushub/campushub/internal/app/system/storage"
)

// newStorage builds the object store named by config: S3 in production
// deployments, a local directory for dev.
func newStorage(appCfg AppConfig) (storage.Store, error) {
	if appCfg.StorageType == "s3" {
		return storage.NewS3(context.Background(), appCfg.StorageS3Region, appCfg.StorageS3Bucket, appCfg.StorageS3Prefix)
	}
	return storage.NewLocal(appCfg.StorageLocalPath, appCfg.StorageLocalURL)
}

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE
// app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and the Startup hook have completed. The JSON API mounts under
// /api/v1; /health stays at the root for load balancers.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"

	// The token manager fetches fresh user data on each request so role
	// and permission changes take effect immediately.
	tokens, err := sysauth.NewTokenManager(appCfg.AuthSecret, appCfg.TokenTTL, secure,
		userstore.NewFetcher(deps.MongoDatabase), logger)
	if err != nil {
		logger.Error("token manager init failed", zap.Error(err))
		return nil, err
	}

	store, err := newStorage(appCfg)
	if err != nil {
		logger.Error("storage init failed", zap.Error(err))
		return nil, err
	}

	r := chi.NewRouter()

	// Global auth middleware: loads the token's user into context if
	// signed in, making it available via auth.CurrentUser(r).
	r.Use(tokens.LoadTokenUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Locally stored uploads are served straight from disk; with S3 the
	// bucket serves objects and this route is never registered.
	if appCfg.StorageType == "local" {
		r.Handle(appCfg.StorageLocalURL+"/*", fileserver.Handler(appCfg.StorageLocalURL, appCfg.StorageLocalPath))
	}

	r.Route("/api/v1", func(api chi.Router) {
		authHandler := authfeature.NewHandler(deps.MongoDatabase, tokens, logger)
		api.Mount("/auth", authfeature.Routes(authHandler))

		campusHandler := campusesfeature.NewHandler(deps.MongoDatabase, logger)
		api.Mount("/campus", campusesfeature.Routes(campusHandler))

		usersfeature.Register(api, usersfeature.NewHandler(deps.MongoDatabase, logger))

		courseHandler := coursesfeature.NewHandler(deps.MongoDatabase, store, logger)
		api.Mount("/courses", coursesfeature.Routes(courseHandler))

		orderHandler := ordersfeature.NewHandler(deps.MongoDatabase, logger)
		api.Mount("/orders", ordersfeature.Routes(orderHandler))
	})

	return r, nil
}
