package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/config"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

const appName = "timeclock"

var Version = "v1.0.0"

func NewRouter(cfg *config.Config, staffHandler StaffHandler, shiftHandler ShiftHandler, debugHandler DebugHandler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", appName),
		slog.String("version", Version),
		slog.String("env", cfg.App.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.App.CORSAllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api", func(r chi.Router) {
		r.Route("/staff", func(r chi.Router) {
			r.Get("/", staffHandler.List)
			r.Post("/add", staffHandler.Add)
			r.Put("/{name}", staffHandler.Update)
		})

		r.Route("/status", func(r chi.Router) {
			r.Get("/", shiftHandler.Status)
			r.Get("/{name}", shiftHandler.StatusFor)
		})

		r.Post("/clock-in", shiftHandler.ClockIn)
		r.Post("/clock-out", shiftHandler.ClockOut)
		r.Post("/take-break", shiftHandler.TakeBreak)
		r.Post("/return-break", shiftHandler.ReturnFromBreak)

		r.Get("/debug/store", debugHandler.Store)
	})
	return r
}
