package handler

import (
	"database/sql"
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"leftoverapi/internal/auth"
	"leftoverapi/internal/http/middleware"
	"leftoverapi/internal/segmentation"
	"leftoverapi/internal/service"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	DB           *sql.DB
	Segmenter    segmentation.Segmenter
	Tokens       auth.TokenParser
	Users        service.UserService
	Measurements service.MeasurementService
	// StaticDir holds index.html, login.html and the assets served under /static.
	StaticDir string
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", HealthCheck(d.DB, d.Segmenter))
	app.Get("/healthz", LivenessProbe())

	app.Static("/static", d.StaticDir)
	app.Get("/", page(d.StaticDir, "index.html"))
	app.Get("/login", page(d.StaticDir, "login.html"))

	app.Post("/predict/leftover_ratio", LegacyPredict(d.Measurements))

	requireAuth := middleware.RequireAuth(d.Tokens, writeError)

	api := app.Group("/api")
	api.Post("/register", Register(d.Users))
	api.Post("/login", Login(d.Users))
	api.Post("/login/with-name", LoginWithName(d.Users))
	api.Post("/analyze", Analyze(d.Measurements))

	api.Post("/predict", requireAuth, Predict(d.Measurements))
	api.Get("/history", requireAuth, History(d.Measurements))
	api.Get("/user/info", requireAuth, UserInfo(d.Users))
	api.Get("/measurements/:id/image", requireAuth, MeasurementImage(d.Measurements))
	api.Delete("/measurements/:id", requireAuth, DeleteMeasurement(d.Measurements))
}

func page(dir, name string) fiber.Handler {
	path := filepath.Join(dir, name)
	return func(c *fiber.Ctx) error {
		return c.SendFile(path)
	}
}
