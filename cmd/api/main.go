package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"leftoverapi/docs"
	"leftoverapi/internal/auth"
	"leftoverapi/internal/config"
	"leftoverapi/internal/database"
	"leftoverapi/internal/database/migration"
	handlers "leftoverapi/internal/http/handler"
	"leftoverapi/internal/http/middleware"
	"leftoverapi/internal/leftover"
	"leftoverapi/internal/logging"
	"leftoverapi/internal/otel"
	"leftoverapi/internal/repository/postgres"
	"leftoverapi/internal/segmentation"
	"leftoverapi/internal/service"
	"leftoverapi/internal/storage"
)

// maxUploadBytes bounds request bodies; phone photos stay well below it.
const maxUploadBytes = 20 << 20

// @title Leftover Ratio API
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	logger, logCloser := logging.New(cfg.Log)
	defer logCloser.Close()
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("unknown timezone, using UTC", slog.String("timezone", cfg.Timezone))
		loc = time.UTC
	}

	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, logger, cfg.Database.Host); err != nil {
		return err
	}

	objStore, err := storage.NewMinIO(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	tokens, err := auth.NewTokenManager(cfg.Auth.SecretKey, time.Duration(cfg.Auth.AccessTokenExpireMin)*time.Minute)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	mode, err := segmentation.ParseMode(cfg.Segmenter.Mode)
	if err != nil {
		return err
	}
	seg, err := segmentation.NewHTTPSegmenter(cfg.Segmenter, reg)
	if err != nil {
		return err
	}
	params, err := leftoverParams(cfg.Leftover)
	if err != nil {
		return err
	}
	estimator, err := segmentation.NewModelEstimator(seg, mode, params, reg)
	if err != nil {
		return err
	}

	userSvc := service.NewUserService(postgres.NewUserPostgres(db), tokens)
	measurementSvc := service.NewMeasurementService(estimator, objStore, postgres.NewMeasurementPostgres(db), logger, service.MeasurementOptions{
		KeyPrefix:  cfg.Storage.KeyPrefix,
		Location:   loc,
		PresignTTL: time.Duration(cfg.Storage.PresignTTLMin) * time.Minute,
	})

	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return err
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    maxUploadBytes,
	})

	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		return c.Path() == "/metrics" || c.Path() == "/healthz"
	})))
	app.Use(middleware.Logger(loc))
	app.Use(promMiddleware.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	handlers.RegisterRoutes(app, handlers.Deps{
		DB:           db,
		Segmenter:    seg,
		Tokens:       tokens,
		Users:        userSvc,
		Measurements: measurementSvc,
		StaticDir:    cfg.StaticDir,
	})

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info("server starting", slog.String("addr", addr), slog.String("segmenter_mode", string(mode)))
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	return app.ShutdownWithTimeout(10 * time.Second)
}

func leftoverParams(c config.LeftoverConfig) (leftover.Params, error) {
	for name, v := range map[string]int{
		"LEFTOVER_PLATE_CLASS":    c.PlateClass,
		"LEFTOVER_LEFTOVER_CLASS": c.LeftoverClass,
	} {
		if v < 0 || v > math.MaxUint8 {
			return leftover.Params{}, fmt.Errorf("%s must be between 0 and %d, got %d", name, math.MaxUint8, v)
		}
	}
	if c.PlateClass == c.LeftoverClass {
		return leftover.Params{}, fmt.Errorf("plate and leftover class must differ, both are %d", c.PlateClass)
	}

	return leftover.Params{
		LeftoverMinConfidence: c.LeftoverMinConfidence,
		PlateClass:            uint8(c.PlateClass),
		LeftoverClass:         uint8(c.LeftoverClass),
		MinPlateAreaRatio:     c.MinPlateAreaRatio,
		MinPlatePixels:        c.MinPlatePixels,
		Border:                c.Border,
		MaxSideTouch:          c.MaxSideTouch,
		TouchRatio:            c.TouchRatio,
		Weighted:              c.Weighted,
		DistTau:               c.DistTau,
		WeightEps:             c.WeightEps,
	}, nil
}
