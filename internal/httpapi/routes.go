package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

type Options struct {
	MaxBodyBytes   int64
	AllowedOrigins []string
}

func SetupRoutes(g Game, log *zap.Logger, opts Options) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("http")
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 10 << 20
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))
	r.Use(limitBody(opts.MaxBodyBytes))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", Health)
		r.Get("/state", RoomState(g, log))
		r.Get("/stats", Stats(g, log))

		r.Post("/create-room", CreateRoom(g, log))
		r.Post("/join-room", JoinRoom(g, log))
		r.Post("/leave-room", LeaveRoom(g, log))
		r.Post("/toggle-ready", ToggleReady(g, log))
		r.Post("/start-round", StartRound(g, log))
		r.Post("/post-drawing", PostDrawing(g, log))
		r.Post("/submit-answer", SubmitAnswer(g, log))
		r.Post("/end-round", EndRound(g, log))
		r.Post("/cleanup", Cleanup(g, log))
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, envelope{"ok": false, "error": "not found"})
	})
	return r
}
