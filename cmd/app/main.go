package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"tripwise/cmd/fx/config_fx"
	"tripwise/cmd/fx/controllers_fx"
	"tripwise/cmd/fx/db_fx"
	"tripwise/cmd/fx/distance_matrix_fx"
	"tripwise/cmd/fx/goal_fx"
	"tripwise/cmd/fx/itinerary_fx"
	"tripwise/cmd/fx/memcache_fx"
	"tripwise/cmd/fx/realtime_fx"
	"tripwise/cmd/fx/redis_fx"
	"tripwise/cmd/fx/scorer_fx"
	"tripwise/internal/api/controllers"
	"tripwise/internal/config"
	"tripwise/internal/realtime"
	"tripwise/pkg/middleware"
)

func main() {
	app := fx.New(
		config_fx.Module,
		db_fx.Module,
		redis_fx.Module,
		memcache_fx.Module,
		distance_matrix_fx.Module,
		scorer_fx.Module,
		realtime_fx.Module,
		goal_fx.Module,
		itinerary_fx.Module,
		controllers_fx.Module,

		fx.Provide(ProvideRouter),
		// build the logger before anything else logs
		fx.Invoke(func(*slog.Logger) {}),
		fx.Invoke(StartServer),
	)

	app.Run()
}

func StartServer(lc fx.Lifecycle, cfg *config.Config, engine *gin.Engine) {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				slog.Info("starting HTTP server", "port", cfg.Port)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					slog.Error("HTTP server stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			slog.Info("stopping HTTP server")
			return srv.Shutdown(ctx)
		},
	})
}

func ProvideRouter(
	cfg *config.Config,
	itineraryController *controllers.ItineraryController,
	goalController *controllers.GoalController,
	hub *realtime.Hub) *gin.Engine {

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.CORSMiddleware())

	RegisterRoutes(r, []byte(cfg.JWTSecret), itineraryController, goalController, hub)

	return r
}

func RegisterRoutes(r *gin.Engine,
	secret []byte,
	itineraryController *controllers.ItineraryController,
	goalController *controllers.GoalController,
	hub *realtime.Hub) {

	auth := middleware.JWTAuthMiddleware(secret)

	itineraryGroup := r.Group("/itineraries", auth)
	itineraryGroup.POST("/generate", itineraryController.GenerateItinerary)

	goalGroup := r.Group("/goals", auth)
	goalGroup.POST("", goalController.CreateGoal)
	goalGroup.GET("/:goalId", goalController.GetGoal)
	goalGroup.GET("/:goalId/report", goalController.GetReport)
	goalGroup.PATCH("/:goalId/status", goalController.UpdateStatus)
	goalGroup.POST("/:goalId/progress", goalController.UpdateProgress)
	goalGroup.GET("/:goalId/itinerary", goalController.GetItinerary)
	goalGroup.POST("/:goalId/itinerary/rollback", goalController.RollbackItinerary)

	r.POST("/progress/batch", auth, middleware.RoleMiddleware("system"), goalController.IngestProgress)

	r.GET("/ws", auth, hub.ServeWS)
}
