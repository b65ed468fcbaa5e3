package http

import (
	"net/http"

	"upnext/internal/auth"
	"upnext/internal/clock"
	"upnext/internal/config"
	"upnext/internal/event"
	"upnext/internal/http/handler"
	mw "upnext/internal/http/middleware"
	"upnext/internal/kv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(cfg config.Config, store *event.Store, kvStore kv.Store, clk clock.Clock, jwtSvc *auth.JWT) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	ah := &handler.AuthHandler{Cfg: cfg, JWT: jwtSvc}
	r.Post("/auth/login", ah.Login)

	eh := &handler.EventHandler{Store: store, Clock: clk}
	th := &handler.ThemeHandler{KV: kvStore}

	me := &handler.MeHandler{}

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtSvc))

		r.Get("/me", me.Me)

		r.Route("/events", func(r chi.Router) {
			r.Get("/", eh.List)
			r.Post("/", eh.Create)
			r.Get("/{id}", eh.Get)
			r.Put("/{id}", eh.Update)
			r.Delete("/{id}", eh.Delete)
		})

		r.Get("/theme", th.Get)
		r.Put("/theme", th.Put)
	})

	return r
}
