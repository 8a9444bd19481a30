// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	analyticsfeature "github.com/dalemusser/applytrack/internal/app/features/analytics"
	applicationsfeature "github.com/dalemusser/applytrack/internal/app/features/applications"
	dashboardfeature "github.com/dalemusser/applytrack/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/applytrack/internal/app/features/errors"
	eventsfeature "github.com/dalemusser/applytrack/internal/app/features/events"
	filesfeature "github.com/dalemusser/applytrack/internal/app/features/files"
	healthfeature "github.com/dalemusser/applytrack/internal/app/features/health"
	homefeature "github.com/dalemusser/applytrack/internal/app/features/home"
	loginfeature "github.com/dalemusser/applytrack/internal/app/features/login"
	logoutfeature "github.com/dalemusser/applytrack/internal/app/features/logout"
	profilefeature "github.com/dalemusser/applytrack/internal/app/features/profile"
	signupfeature "github.com/dalemusser/applytrack/internal/app/features/signup"
	"github.com/dalemusser/applytrack/internal/app/resources"
	applicationstore "github.com/dalemusser/applytrack/internal/app/store/applications"
	userstore "github.com/dalemusser/applytrack/internal/app/store/users"
	"github.com/dalemusser/applytrack/internal/app/system/auth"
	"github.com/dalemusser/applytrack/internal/app/system/changefeed"
	"github.com/dalemusser/applytrack/internal/app/system/metrics"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. Every handler gets its stores, the
// notifier, the attachment store and the logger through its constructor;
// the signed-in user travels in the request context.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Reload the user on each request so disabled accounts and name changes
	// take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase))

	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	errLog := errorsfeature.NewErrorLogger(logger)
	users := userstore.New(deps.MongoDatabase)
	apps := applicationstore.New(deps.MongoDatabase, logger)
	notifier := notifierOrHub(deps)

	r := chi.NewRouter()
	r.Use(metrics.Middleware)

	// Machine endpoints sit outside CSRF and sessions.
	healthHandler := healthfeature.NewHandler(deps.MongoClient, healthChecks(deps), logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Handle("/metrics", metrics.Handler())
	r.Handle("/assets/*", http.StripPrefix("/assets", resources.Assets()))
	if deps.LocalFiles != nil {
		r.Mount("/files", filesfeature.Routes(filesfeature.NewHandler(deps.LocalFiles, logger)))
	}

	r.Group(func(r chi.Router) {
		if !secure {
			r.Use(plaintextCSRF)
		}
		r.Use(csrf.Protect([]byte(appCfg.CSRFKey),
			csrf.Secure(secure),
			csrf.Path("/"),
			csrf.FieldName("gorilla.csrf.Token"),
		))
		r.Use(sessionMgr.LoadSessionUser)

		// Public pages
		r.Mount("/", homefeature.Routes(homefeature.NewHandler(logger)))

		signupHandler := signupfeature.NewHandler(users, sessionMgr, errLog, logger)
		r.Mount("/signup", signupfeature.Routes(signupHandler))

		loginHandler := loginfeature.NewHandler(users, sessionMgr, deps.LoginLimiter, errLog, logger)
		r.Mount("/login", loginfeature.Routes(loginHandler))

		logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
		r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

		// Error pages
		errorsHandler := errorsfeature.NewHandler()
		r.Get("/forbidden", errorsHandler.Forbidden)
		r.Get("/unauthorized", errorsHandler.Unauthorized)

		// Signed-in area
		profileHandler := profilefeature.NewHandler(users, errLog, logger)
		r.Mount("/settings", profilefeature.Routes(profileHandler, sessionMgr))

		dashboardHandler := dashboardfeature.NewHandler(apps, errLog, logger)
		r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

		appsHandler := applicationsfeature.NewHandler(apps, deps.Files, notifier, appCfg.StorageSignedURLTTL, errLog, logger)
		r.Mount("/applications", applicationsfeature.Routes(appsHandler, sessionMgr))

		analyticsHandler := analyticsfeature.NewHandler(apps, logger)
		r.Mount("/analytics", analyticsfeature.Routes(analyticsHandler, sessionMgr))

		eventsHandler := eventsfeature.NewHandler(notifier, logger)
		r.Mount("/events", eventsfeature.Routes(eventsHandler, sessionMgr))
	})

	r.NotFound(errorsfeature.NewHandler().NotFound)

	return r, nil
}

// plaintextCSRF tells gorilla/csrf the request arrived over plain HTTP, so
// local development without TLS passes the origin checks.
func plaintextCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}

func healthChecks(deps DBDeps) map[string]healthfeature.Pinger {
	checks := map[string]healthfeature.Pinger{}
	if n, ok := deps.Notifier.(*changefeed.Redis); ok {
		checks["redis"] = n
	}
	if deps.S3Files != nil {
		checks["s3"] = deps.S3Files
	}
	return checks
}

func notifierOrHub(deps DBDeps) changefeed.Notifier {
	if deps.Notifier != nil {
		return deps.Notifier
	}
	return changefeed.NewHub()
}
