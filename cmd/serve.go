package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/foundersignal/validate-cli/internal/model"
	"github.com/foundersignal/validate-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for analysis requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Post("/analyze", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				Hypothesis string         `json:"hypothesis"`
				Subject    string         `json:"subject"`
				Geography  string         `json:"geography"`
				Price      float64        `json:"price"`
				MSC        float64        `json:"msc"`
				Signals    []model.Signal `json:"signals"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
				return
			}
			if body.Hypothesis == "" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "hypothesis is required"})
				return
			}
			if len(body.Signals) == 0 {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "signals are required"})
				return
			}

			job, err := env.Store.CreateJob(req.Context(), model.Hypothesis{
				Text:      body.Hypothesis,
				Subject:   body.Subject,
				Geography: body.Geography,
				Price:     body.Price,
				MSC:       body.MSC,
			})
			if err != nil {
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "create job failed"})
				return
			}
			if err := env.Store.SaveSignals(req.Context(), job.ID, body.Signals); err != nil {
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "save signals failed"})
				return
			}

			// Run asynchronously; the caller polls GET /jobs/{id}.
			go func() {
				if _, err := env.Pipeline.RunJob(ctx, job.ID); err != nil {
					zap.L().Error("serve: analysis failed",
						zap.String("job_id", job.ID),
						zap.Error(err),
					)
				}
			}()

			writeJSON(w, http.StatusAccepted, map[string]string{
				"job_id": job.ID,
				"status": string(model.JobStatusQueued),
			})
		})

		r.Get("/jobs", func(w http.ResponseWriter, req *http.Request) {
			limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
			jobs, err := env.Store.ListJobs(req.Context(), store.JobFilter{
				Status: model.JobStatus(req.URL.Query().Get("status")),
				Limit:  limit,
			})
			if err != nil {
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list jobs failed"})
				return
			}
			writeJSON(w, http.StatusOK, jobs)
		})

		r.Get("/jobs/{id}", func(w http.ResponseWriter, req *http.Request) {
			job, err := env.Store.GetJob(req.Context(), chi.URLParam(req, "id"))
			if err != nil {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "job not found"})
				return
			}
			writeJSON(w, http.StatusOK, job)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
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
