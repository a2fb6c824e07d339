package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"calendar-backend/internal/authn"
	"calendar-backend/internal/observability"
)

// Router builds the chi.Router mounting every handler: request-id,
// recoverer, and CORS as global middleware, a route group gated by an
// authentication middleware, and a plain health endpoint outside that
// group.
type Router struct {
	handlers *Handlers
	verifier authn.Verifier
	metrics  *observability.Collector
	logger   *zap.Logger
}

func NewRouter(handlers *Handlers, verifier authn.Verifier, metrics *observability.Collector, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{handlers: handlers, verifier: verifier, metrics: metrics, logger: logger}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(rt.metricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "Last-Event-Id"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", rt.handlers.Healthz)
	if rt.metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(rt.metrics.Registry(), promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(authn.Middleware(rt.verifier, rt.logger))

		r.Post("/calendars", rt.handlers.CreateCalendar)
		r.Route("/calendars/{id}", func(r chi.Router) {
			r.Get("/", rt.handlers.GetCalendar)
			r.Get("/entries", rt.handlers.GetEntriesByCalendar)
			r.Get("/events", rt.handlers.StreamEvents)
			r.Post("/entries/{entryId}", rt.handlers.CreateEntry)
			r.Put("/entries/{entryId}", rt.handlers.UpdateEntry)
			r.Delete("/entries/{entryId}", rt.handlers.DeleteEntry)
		})

		r.Get("/ssr", rt.handlers.Prerender)
	})

	return r
}

// metricsMiddleware records HTTP request counts and latency. chi's route
// pattern (not the raw path) is used as the label to avoid an unbounded
// cardinality explosion from path parameters such as calendar ids.
func (rt *Router) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rt.metrics == nil {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		rt.metrics.ObserveHTTP(route, r.Method, strconv.Itoa(status), time.Since(start))
	})
}
