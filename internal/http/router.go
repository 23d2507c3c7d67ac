package http

import (
	"net/http"
	"time"

	"stationreports/internal/auth"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Logger          *zap.Logger
	Verifier        *auth.Verifier
	CookieName      string
	RequestTimeout  time.Duration
	CORSAllowOrigin string
}

func NewRouter(handler *Handler, cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	if cfg.CORSAllowOrigin == "" {
		cfg.CORSAllowOrigin = "*"
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "session"
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(RequestID)
	r.Use(AccessLog(log))
	r.Use(Recoverer(log))
	r.Use(Timeout(cfg.RequestTimeout))
	r.Use(CORS(cfg.CORSAllowOrigin))

	r.Get("/healthz", handler.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/reports", func(r chi.Router) {
		if cfg.Verifier != nil {
			r.Use(Authenticate(cfg.Verifier, cfg.CookieName, log))
		}
		for _, p := range reportPages {
			route := p.path[len("/reports"):]
			if p.key == "fuel" {
				r.Get(route, handler.FuelReport(p))
			} else {
				r.Get(route, handler.ShowReport(p))
			}
			r.Post(route, handler.SubmitFilters(p))
		}
	})

	return r
}
