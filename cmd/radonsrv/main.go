// Command radonsrv exposes the RADON engine over HTTP: POST /v1/execute
// runs a full retrieve/aggregate/tally request and returns a JSON summary
// of its Tally report (execution id, result, failed flag, consensus ratio).
package main

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"radon-engine/pkg/config"
)

func main() {
	_ = godotenv.Load()
	logrus.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.LoadFromEnv()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	if lvl, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
		logrus.SetLevel(lvl)
	}

	limiter := rate.NewLimiter(rate.Limit(cfg.Server.RateLimitPerSecond), cfg.Server.RateLimitBurst)
	h, err := newHandler(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("build handler")
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(rateLimit(limiter))
	r.Post("/v1/execute", h.execute)
	r.Handle("/metrics", promhttp.Handler())

	addr := cfg.Server.ListenAddr
	if addr == "" {
		addr = ":8787"
	}
	logrus.WithField("addr", addr).Info("radonsrv listening")
	if err := http.ListenAndServe(addr, r); err != nil {
		logrus.WithError(err).Fatal("serve")
	}
	os.Exit(0)
}

func rateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
