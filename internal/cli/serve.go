package cli

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depcollect/pkg/artifact"
	"github.com/matzehuels/depcollect/pkg/buildinfo"
	"github.com/matzehuels/depcollect/pkg/cache"
	"github.com/matzehuels/depcollect/pkg/collect"
	"github.com/matzehuels/depcollect/pkg/config"
	derrors "github.com/matzehuels/depcollect/pkg/errors"
	pkgio "github.com/matzehuels/depcollect/pkg/io"
	"github.com/matzehuels/depcollect/pkg/observability"
	"github.com/matzehuels/depcollect/pkg/observability/prom"
	"github.com/matzehuels/depcollect/pkg/repository/memory"
)

const (
	maxRequestBody  = 1 << 20
	shutdownTimeout = 10 * time.Second
	requestIDHeader = "X-Request-ID"
	resultKeyType   = "result"
)

// serveCommand creates the serve command, which exposes collection over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var fixture string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve dependency collection over HTTP",
		Long: `Serve starts an HTTP server with the following endpoints:

  POST /collect   body {"coordinate": "g:a:v", "max_depth": 0, "excluded_scopes": []}
  GET  /healthz   build information
  GET  /metrics   Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}

			var (
				store cache.Cache = cache.NewNullCache()
				repo  collect.Repository
			)
			if fixture != "" {
				mem, err := memory.LoadTOML(fixture)
				if err != nil {
					return derrors.Wrap(derrors.ErrCodeInvalidInput, err, "load fixture")
				}
				repo = mem
			} else {
				if store, err = newCache(ctx, cfg); err != nil {
					return err
				}
				st, err := c.newStack(cfg, store, false)
				if err != nil {
					return err
				}
				repo = st.repo
			}
			defer store.Close()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			prom.New(reg).Register()
			defer observability.Reset()

			srv := &http.Server{
				Addr:              cfg.Serve.Addr,
				Handler:           newServer(c.Logger, cfg, repo, store).routes(reg),
				ReadHeaderTimeout: 10 * time.Second,
			}
			return c.listen(ctx, srv)
		},
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().StringVar(&fixture, "fixture", "", "serve a TOML fixture instead of Maven repositories")
	addWalkFlags(cmd)

	return cmd
}

// listen runs srv until ctx is canceled, then shuts it down gracefully.
func (c *CLI) listen(ctx context.Context, srv *http.Server) error {
	errc := make(chan error, 1)
	go func() {
		c.Logger.Info("Listening", "addr", srv.Addr, "version", buildinfo.Get())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// =============================================================================
// Server
// =============================================================================

type server struct {
	logger  *log.Logger
	cfg     *config.Config
	repo    collect.Repository
	store   cache.Cache
	keyer   cache.Keyer
	started time.Time
}

func newServer(logger *log.Logger, cfg *config.Config, repo collect.Repository, store cache.Cache) *server {
	return &server{
		logger:  logger,
		cfg:     cfg,
		repo:    repo,
		store:   store,
		keyer:   cfg.Cache.Keyer(),
		started: time.Now(),
	}
}

func (s *server) routes(reg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Post("/collect", s.collect)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	return r
}

// requestID tags every request with an id, taken from the client when it
// sends one, and attaches a logger carrying it to the request context.
func (s *server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := withLogger(r.Context(), s.logger.With("request_id", id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		loggerFromContext(r.Context()).Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Millisecond),
		)
	})
}

type healthResponse struct {
	Status  string         `json:"status"`
	Service string         `json:"service"`
	Uptime  string         `json:"uptime"`
	Build   buildinfo.Info `json:"build"`
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Service: appName,
		Uptime:  time.Since(s.started).Round(time.Second).String(),
		Build:   buildinfo.Get(),
	})
}

type collectRequest struct {
	Coordinate     string   `json:"coordinate"`
	MaxDepth       int      `json:"max_depth,omitempty"`
	ExcludedScopes []string `json:"excluded_scopes,omitempty"`
}

func (s *server) collect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := loggerFromContext(ctx)

	var req collectRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}

	root, err := derrors.ValidateCoordinate(req.Coordinate)
	if err != nil {
		writeError(w, err)
		return
	}
	opts := s.cfg.CollectOptions(logger.Debugf)
	if req.MaxDepth > 0 {
		opts.MaxDepth = req.MaxDepth
	}
	if req.ExcludedScopes != nil {
		opts.ExcludedScopes = nil
		for _, name := range req.ExcludedScopes {
			scope, err := derrors.ValidateScope(name)
			if err != nil {
				writeError(w, err)
				return
			}
			opts.ExcludedScopes = append(opts.ExcludedScopes, scope)
		}
	}

	key := s.keyer.ResultKey(root.String(), cache.ResultKeyOpts{
		Repositories:   s.cfg.Repositories,
		MaxDepth:       opts.WithDefaults().MaxDepth,
		ExcludedScopes: scopeNames(opts.ExcludedScopes),
	})
	if data, ok, err := s.store.Get(ctx, key); err == nil && ok {
		observability.Cache().OnCacheHit(ctx, resultKeyType)
		w.Header().Set("X-Cache", "hit")
		writeRaw(w, http.StatusOK, data)
		return
	}
	observability.Cache().OnCacheMiss(ctx, resultKeyType)

	if s.cfg.Serve.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Serve.Timeout)
		defer cancel()
	}
	res, err := collect.New(s.repo, opts).Collect(ctx, root)
	if err != nil {
		logger.Warn("collection failed", "root", root, "err", err)
		writeError(w, err)
		return
	}

	data, err := json.Marshal(pkgio.NewReport(res))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.Set(ctx, key, data, s.cfg.Cache.TTL); err != nil {
		logger.Warn("cache write failed", "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, resultKeyType, len(data))
	}
	w.Header().Set("X-Cache", "miss")
	writeRaw(w, http.StatusOK, data)
}

func scopeNames(scopes []artifact.Scope) []string {
	out := make([]string, len(scopes))
	for i, s := range scopes {
		out[i] = s.String()
	}
	return out
}

type errorBody struct {
	Error struct {
		Code    derrors.Code `json:"code"`
		Message string       `json:"message"`
	} `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	err = derrors.Classify(err)
	var body errorBody
	body.Error.Code = derrors.GetCode(err)
	body.Error.Message = derrors.UserMessage(err)
	writeJSON(w, derrors.HTTPStatus(body.Error.Code), body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeRaw(w, status, data)
}

func writeRaw(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
	_, _ = w.Write([]byte("\n"))
}
