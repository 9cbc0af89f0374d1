package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/jaidee/backend/internal/handler/activity"
	"github.com/jaidee/backend/internal/handler/chat"
	"github.com/jaidee/backend/internal/handler/diary"
	"github.com/jaidee/backend/internal/handler/stream"
	activityService "github.com/jaidee/backend/internal/service/activity"
	chatService "github.com/jaidee/backend/internal/service/chat"
	emotionService "github.com/jaidee/backend/internal/service/emotion"
	riskService "github.com/jaidee/backend/internal/service/risk"
	"github.com/jaidee/backend/pkg/utils"
)

// Services groups the domain services exposed over HTTP.
type Services struct {
	Chat     *chatService.Service
	Risk     *riskService.Service
	Emotion  *emotionService.Service
	Activity *activityService.Service
}

// Options carries transport-level settings.
type Options struct {
	Provider       string
	AllowedOrigins []string
}

// NewRouter wires HTTP routes to core services.
func NewRouter(svc Services, opts Options) http.Handler {
	r := chi.NewRouter()

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{
			"status":   "ok",
			"provider": opts.Provider,
		})
	})

	chat.New(svc.Chat).RegisterRoutes(r)
	stream.New(svc.Chat).RegisterRoutes(r)
	diary.New(svc.Risk, svc.Emotion).RegisterRoutes(r)
	activity.New(svc.Activity).RegisterRoutes(r)

	return r
}
