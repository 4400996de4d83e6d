package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/forecast-cli/internal/analytics"
	"github.com/sells-group/forecast-cli/internal/model"
	"github.com/sells-group/forecast-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve analysis reports as a JSON API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.Migrate(ctx); err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		api := &apiServer{store: s}
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           api.routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

type apiServer struct {
	store store.Store
}

func (a *apiServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	}))
	r.Use(rateLimit(rate.Limit(cfg.Server.RateLimit), cfg.Server.RateBurst))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/forecast", a.report(func(opps []model.Opportunity, today time.Time) any {
			return analytics.Forecast(opps, a.probs(opps))
		}))
		r.Get("/velocity", a.report(func(opps []model.Opportunity, today time.Time) any {
			cycle := analytics.Cycle(opps)
			return analytics.Velocity(opps, cycle.AvgDays)
		}))
		r.Get("/scenarios", a.report(func(opps []model.Opportunity, today time.Time) any {
			cycle := analytics.Cycle(opps)
			return analytics.Scenarios(opps, analytics.Historical(opps),
				cfg.Probabilities.StageProbabilities(), cycle.WonSample)
		}))
		r.Get("/reps", a.report(func(opps []model.Opportunity, today time.Time) any {
			return analytics.RepPerformance(opps, a.probs(opps))
		}))
		r.Get("/stages", a.report(func(opps []model.Opportunity, today time.Time) any {
			return analytics.StageProgression(opps, today)
		}))
		r.Get("/cohorts", a.report(func(opps []model.Opportunity, today time.Time) any {
			return analytics.Cohorts(opps)
		}))
		r.Get("/trends", a.report(func(opps []model.Opportunity, today time.Time) any {
			return analytics.Trends(opps, cfg.Quota.Quarterly())
		}))
		r.Get("/at-risk", a.report(func(opps []model.Opportunity, today time.Time) any {
			cycle := analytics.Cycle(opps)
			return analytics.AtRisk(opps, cycle.AvgDays, today)
		}))
	})

	return r
}

// rateLimit applies a token-bucket limiter shared across all clients.
func rateLimit(limit rate.Limit, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(limit, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// report adapts an analyzer to an HTTP handler: resolve the snapshot and
// filters from the query string, run the analyzer, write JSON.
func (a *apiServer) report(analyze func(opps []model.Opportunity, today time.Time) any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		today := time.Now().UTC().Truncate(24 * time.Hour)
		if v := q.Get("as_of"); v != "" {
			t, err := time.Parse(time.DateOnly, v)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid as_of date"})
				return
			}
			today = t
		}

		id := q.Get("snapshot")
		if id == "" {
			latest, err := a.store.LatestSnapshot(r.Context())
			if err != nil {
				a.serverError(w, r, err)
				return
			}
			if latest == nil {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "no snapshots stored"})
				return
			}
			id = latest.ID
		}

		f := model.Filter{
			Owner:  q.Get("owner"),
			Stage:  model.Stage(q.Get("stage")),
			Status: model.Status(q.Get("status")),
		}
		opps, err := a.store.LoadOpportunities(r.Context(), id, f)
		if err != nil {
			a.serverError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, analyze(opps, today))
	}
}

func (a *apiServer) probs(opps []model.Opportunity) model.StageProbabilities {
	return stageProbabilities(opps, false)
}

func (a *apiServer) serverError(w http.ResponseWriter, r *http.Request, err error) {
	zap.L().Error("request failed",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
