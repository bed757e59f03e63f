package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Sternrassler/uniprot-idmapping/pkg/idmapping"
	"github.com/Sternrassler/uniprot-idmapping/pkg/metrics"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
)

const (
	shutdownTimeout = 10 * time.Second
	maxRequestBody  = 8 << 20

	// mappingErrorTrailer reports a failure after the response has started.
	mappingErrorTrailer = "X-Mapping-Error"
)

func serveAction(ctx context.Context, cmd *cli.Command) error {
	app, err := newAppContext(ctx, cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	opts, err := app.options(cmd)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cmd.Int("port")),
		Handler:           newServer(app, opts).routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info().Str("addr", srv.Addr).Str("mode", opts.Mode.String()).Msg("Starting mapping server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	app.logger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type server struct {
	app    *appContext
	opts   idmapping.Options
	logger zerolog.Logger
}

func newServer(app *appContext, opts idmapping.Options) *server {
	return &server{
		app:    app,
		opts:   opts,
		logger: app.logger.With().Str("component", "server").Logger(),
	}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("POST /map", s.handleMap)
	return mux
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

func (s *server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.app.redis != nil {
		if err := s.app.redis.Ping(r.Context()).Err(); err != nil {
			http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "READY")
}

// handleMap maps the newline-separated identifiers in the request body and
// streams the result pages back. Query parameters format, mode and parse
// override the server defaults for this request.
func (s *server) handleMap(w http.ResponseWriter, r *http.Request) {
	opts := s.opts
	q := r.URL.Query()
	if v := q.Get("format"); v != "" {
		opts.Format = v
	}
	if v := q.Get("mode"); v != "" {
		mode, err := idmapping.ParseMode(v)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		opts.Mode = mode
	}
	parse := false
	if v := q.Get("parse"); v != "" {
		var err error
		if parse, err = strconv.ParseBool(v); err != nil {
			http.Error(w, fmt.Sprintf("invalid parse value %q", v), http.StatusBadRequest)
			return
		}
	}

	ids, err := readIdentifiers(http.MaxBytesReader(w, r.Body, maxRequestBody), parse, s.logger)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(ids) == 0 {
		http.Error(w, "no identifiers in request body", http.StatusBadRequest)
		return
	}

	o, err := idmapping.New(s.app.client, opts)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	flusher, _ := w.(http.Flusher)
	pw := newPayloadWriter(w, opts.Format)
	started := false

	for page, err := range o.Run(r.Context(), ids) {
		if err != nil {
			s.logger.Warn().Err(err).Int("identifiers", len(ids)).Int("pages", pw.pages).Msg("Mapping request failed")
			if !started {
				http.Error(w, err.Error(), errorStatus(err))
				return
			}
			w.Header().Set(mappingErrorTrailer, err.Error())
			return
		}

		if !started {
			w.Header().Set("Trailer", mappingErrorTrailer)
			w.Header().Set("Content-Type", contentType(opts.Format))
			w.WriteHeader(http.StatusOK)
			started = true
		}
		if err := pw.WritePage(page.Page.Data); err != nil {
			s.logger.Warn().Err(err).Msg("Client went away")
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}

	if !started {
		w.Header().Set("Content-Type", contentType(opts.Format))
		w.WriteHeader(http.StatusOK)
	}
}

// errorStatus maps a run failure to the status of a response that has not
// started yet.
func errorStatus(err error) int {
	var subErr *idmapping.SubmissionError
	if errors.As(err, &subErr) && subErr.StatusCode >= 400 && subErr.StatusCode < 500 {
		return http.StatusBadRequest
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

func contentType(format string) string {
	switch format {
	case "json":
		return "application/json"
	case "tsv", "":
		return "text/tab-separated-values; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}
