package main

import (
	"context"
	"database/sql"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/adaptive-quiz/backend/internal/auth"
	"github.com/adaptive-quiz/backend/internal/avail"
	"github.com/adaptive-quiz/backend/internal/config"
	"github.com/adaptive-quiz/backend/internal/database"
	"github.com/adaptive-quiz/backend/internal/generator"
	"github.com/adaptive-quiz/backend/internal/metrics"
	"github.com/adaptive-quiz/backend/internal/middleware"
	"github.com/adaptive-quiz/backend/internal/quiz"
	"github.com/adaptive-quiz/backend/internal/store"
)

type app struct {
	handler http.Handler
	closers []io.Closer
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i].Close()
	}
}

// newApp wires every service handle. Missing credentials degrade the
// matching feature instead of failing startup.
func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger, reg *prometheus.Registry) (*app, error) {
	a := &app{}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	llm, model, err := generator.NewClient(ctx, cfg)
	if err != nil {
		logger.Warn("oracle client init failed", zap.Error(err))
	}
	if c, ok := llm.Get(); ok {
		if closer, ok := c.(io.Closer); ok {
			a.closers = append(a.closers, closer)
		}
		logger.Info("oracle ready", zap.String("provider", cfg.Oracle.Provider), zap.String("model", model))
	} else {
		logger.Warn("oracle not configured, serving mock questions", zap.String("reason", llm.Reason()))
	}
	gen := generator.NewGenerator(llm, model, logger.Named("generator"), m)

	var sqlStore *store.SQLStore
	if cfg.StoreConfigured() {
		db, err := openStore(ctx, cfg)
		if err != nil {
			logger.Warn("attempt store unavailable", zap.Error(err))
		} else {
			a.closers = append(a.closers, db)
			sqlStore = store.NewSQLStore(db)
			logger.Info("attempt store ready", zap.String("driver", cfg.Database.Driver))
		}
	} else {
		logger.Warn("DATABASE_URL not set, attempt history disabled")
	}

	attempts := avail.Unavailable[store.AttemptStore]("database not configured")
	if sqlStore != nil {
		attempts = avail.Ready[store.AttemptStore](sqlStore)
	}

	verifier, authHandler := buildIdentity(cfg, sqlStore, logger)
	if !verifier.IsReady() {
		logger.Warn("identity verification disabled, open-access mode", zap.String("reason", verifier.Reason()))
	}

	service := quiz.NewService(gen, attempts, cfg.Feedback.Persist, logger.Named("quiz"), m)
	quizHandler := quiz.NewHandler(service, logger.Named("quiz"))

	r := mux.NewRouter()
	r.Use(m.Middleware, middleware.RequestLogger(logger.Named("http")))
	r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)

	requireAuth := middleware.RequireAuth(verifier, logger.Named("auth"))
	mount := func(base *mux.Router) {
		protected := base.NewRoute().Subrouter()
		protected.Use(requireAuth)
		quizHandler.Register(base, protected)
		if authHandler != nil {
			authHandler.Register(base, protected)
		}
	}
	mount(r.PathPrefix("/api").Subrouter())
	mount(r)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	a.handler = c.Handler(r)
	return a, nil
}

func openStore(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := database.Open(openCtx, cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db, cfg.Database.Driver); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func buildIdentity(cfg *config.Config, users *store.SQLStore, logger *zap.Logger) (avail.Handle[auth.Verifier], *auth.Handler) {
	switch cfg.Identity.Mode {
	case config.IdentityLocal:
		if !cfg.LocalIdentityConfigured() {
			return avail.Unavailable[auth.Verifier]("JWT_SECRET not set"), nil
		}
		if users == nil {
			return avail.Unavailable[auth.Verifier]("local identity needs the attempt store"), nil
		}
		local := auth.NewLocalIdentity(cfg.Identity.JWTSecret, time.Duration(cfg.Identity.JWTTTLHours)*time.Hour)
		return avail.Ready[auth.Verifier](local), auth.NewHandler(users, local, logger.Named("auth"))
	default:
		if !cfg.FirebaseConfigured() {
			return avail.Unavailable[auth.Verifier]("firebase credential not set"), nil
		}
		v, err := auth.NewFirebaseVerifier(cfg.Identity, nil)
		if err != nil {
			logger.Warn("firebase identity init failed", zap.Error(err))
			return avail.Unavailable[auth.Verifier](err.Error()), nil
		}
		return avail.Ready[auth.Verifier](v), nil
	}
}
