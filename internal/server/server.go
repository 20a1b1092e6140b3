package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pametni-paketnik/locker-api/internal/api"
	"github.com/pametni-paketnik/locker-api/internal/auth"
	"github.com/pametni-paketnik/locker-api/internal/box"
	"github.com/pametni-paketnik/locker-api/internal/config"
	"github.com/pametni-paketnik/locker-api/internal/face"
	"github.com/pametni-paketnik/locker-api/internal/logs"
)

type Server struct {
	config         *config.AppConfig
	log            *zap.Logger
	httpServer     *http.Server
	router         chi.Router
	authMiddleware *auth.AuthMiddleware
}

type Params struct {
	fx.In

	Config         *config.AppConfig
	Logger         *zap.Logger
	AuthHandler    *auth.Handler
	AuthMiddleware *auth.AuthMiddleware
	FaceHandler    *face.Handler
	BoxHandler     *box.Handler
	LogHandler     *logs.Handler
}

func NewServer(p Params) *Server {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Recoverer)
	router.Use(requestLogger(p.Logger))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   p.Config.HTTP.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", auth.ClientTypeHeader},
		AllowCredentials: true,
	}))

	router.Get(RouteIndex, func(w http.ResponseWriter, r *http.Request) {
		api.JSON(w, http.StatusOK, api.Response{Success: true, Message: "Smart locker API"})
	})

	// Public authentication routes
	router.Post(RouteAuthRegister, p.AuthHandler.Register)
	router.Post(RouteAuthLogin, p.AuthHandler.Login)

	// Face verification acts as its own step-up credential, so it stays
	// outside the session guard
	router.Post(RouteFaceVerify, p.FaceHandler.Verify)

	// Session-guarded routes
	router.Group(func(r chi.Router) {
		r.Use(p.AuthMiddleware.RequireAuth)

		r.Get(RouteAuthMe, p.AuthHandler.CurrentUser)
		r.Get(RouteAuthNotifications, p.AuthHandler.Notifications)

		r.Post(RouteFaceRegister, p.FaceHandler.Register)
		r.Get(RouteFaceStatus, p.FaceHandler.Status)
		r.Delete(RouteFaceDelete, p.FaceHandler.Delete)

		r.Route(RouteBoxes, func(r chi.Router) {
			r.Get("/", p.BoxHandler.ListOwn)
			r.Post("/claim", p.BoxHandler.Claim)
			r.Delete("/{id}/disown", p.BoxHandler.Disown)

			// Admin-only locker management
			r.Group(func(r chi.Router) {
				r.Use(p.AuthMiddleware.RequireAdmin)
				r.Post("/", p.BoxHandler.Create)
				r.Get("/all", p.BoxHandler.ListAll)
				r.Delete("/{id}", p.BoxHandler.Delete)
			})
		})

		r.Route(RouteLogs, func(r chi.Router) {
			r.Post("/", p.LogHandler.Create)
			r.Get("/", p.LogHandler.List)
		})

		r.Route(RouteUsers, func(r chi.Router) {
			r.Use(p.AuthMiddleware.RequireAdmin)
			r.Get("/", p.AuthHandler.ListUsers)
			r.Put("/{id}/toggle-admin", p.AuthHandler.ToggleAdmin)
		})
	})

	addr := fmt.Sprintf("%s:%s", p.Config.Server.Host, p.Config.Server.Port)

	server := &Server{
		config: p.Config,
		log:    p.Logger,
		router: router,
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  p.Config.HTTP.ReadTimeout,
			WriteTimeout: p.Config.HTTP.WriteTimeout,
		},
		authMiddleware: p.AuthMiddleware,
	}

	return server
}

// Router exposes the route tree, mainly for tests.
func (s *Server) Router() chi.Router {
	return s.router
}

func (s *Server) Start() error {
	s.log.Info("Starting HTTP server",
		zap.String("address", s.httpServer.Addr),
		zap.Object("config", serverConfigToField(s.config)),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to serve: %w", err)
	}

	return nil
}

func serverConfigToField(config *config.AppConfig) zapcore.ObjectMarshaler {
	return zapcore.ObjectMarshalerFunc(func(enc zapcore.ObjectEncoder) error {
		enc.AddString("environment", os.Getenv("APP_ENV"))
		enc.AddDuration("read_timeout", config.HTTP.ReadTimeout)
		enc.AddDuration("write_timeout", config.HTTP.WriteTimeout)
		return nil
	})
}

func (s *Server) Stop() {
	s.log.Info("shutting down HTTP server")

	timeout := s.config.HTTP.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.log.Error("graceful shutdown failed", zap.Error(err))
	}
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
