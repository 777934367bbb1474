package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tinytelemetry/carbondash/internal/duckdb"
	"github.com/tinytelemetry/carbondash/internal/model"
	"github.com/tinytelemetry/carbondash/internal/pipeline"
)

// QueryStore is the narrow store contract required by the HTTP API.
type QueryStore interface {
	model.SchemaQuerier
	DatasetRowCounts() (map[string]int64, error)
	SchemaVersion() (version, pending int, err error)
	ChartRows(ctx context.Context, dataset string) ([]duckdb.ChartRow, error)
	DatasetLoads(ctx context.Context) ([]duckdb.DatasetLoad, error)
}

// Runner executes dashboard runs.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*model.Dashboard, error)
	Streams(ctx context.Context, server, token string) ([]model.Stream, error)
	LoadCharts(ctx context.Context) ([]model.TabularDataset, error)
}

// DatasetLoader loads a single chart dataset by name.
type DatasetLoader interface {
	Load(ctx context.Context, name string) (model.TabularDataset, error)
}

// Server provides the dashboard over HTTP.
type Server struct {
	addr      string
	store     QueryStore
	runner    Runner
	datasets  DatasetLoader
	logger    *slog.Logger
	server    *http.Server
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
}

// NewServer creates a new HTTP API server.
func NewServer(addr string, store QueryStore, runner Runner, datasets DatasetLoader, logger *slog.Logger) *Server {
	if addr == "" {
		addr = "0.0.0.0:3000"
	}
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:     addr,
		store:    store,
		runner:   runner,
		datasets: datasets,
		logger:   logger.With("component", "api"),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Handler builds the gin engine with every route registered.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	s.routes(r)
	return r
}

func (s *Server) routes(r gin.IRoutes) {
	r.GET("/api/health", s.handleHealth)
	r.GET("/api/streams", s.handleStreams)
	r.GET("/api/dashboard", s.handleDashboard)
	r.GET("/api/charts", s.handleCharts)
	r.GET("/api/charts/:name", s.handleChart)
	r.GET("/api/schema", s.handleSchema)
	r.POST("/api/query", s.handleQuery)
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)

	s.server = &http.Server{
		Handler:           s.Handler(),
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// A dashboard run makes several remote calls.
		WriteTimeout: 3 * time.Minute,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	s.startTime = time.Now()

	go s.server.Serve(listener)
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	s.cancel()
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

// statusFor maps pipeline error kinds onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrServiceUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, model.ErrDatasetNotFound), errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrSchemaMismatch):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrAmbiguousSelection):
		return http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func errorKind(err error) string {
	for _, k := range []error{
		model.ErrAuthentication, model.ErrServiceUnavailable, model.ErrDatasetNotFound,
		model.ErrNotFound, model.ErrSchemaMismatch, model.ErrAmbiguousSelection,
	} {
		if errors.Is(err, k) {
			return k.Error()
		}
	}
	return "internal error"
}

func (s *Server) fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error(), "kind": errorKind(err)})
}

// credentials reads the bearer token and optional server override.
func credentials(c *gin.Context) (server, token string, err error) {
	auth := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", "", fmt.Errorf("%w: missing bearer token", model.ErrAuthentication)
	}
	return c.GetHeader("X-Server-URL"), strings.TrimSpace(token), nil
}

func (s *Server) handleHealth(c *gin.Context) {
	counts, err := s.store.DatasetRowCounts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read health metrics"})
		return
	}
	version, pending, err := s.store.SchemaVersion()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read schema version"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"uptime":         time.Since(s.startTime).String(),
		"chart_rows":     counts,
		"schema_version": version,
		"pending_schema": pending,
	})
}

func (s *Server) handleStreams(c *gin.Context) {
	server, token, err := credentials(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	streams, err := s.runner.Streams(c.Request.Context(), server, token)
	if err != nil {
		s.fail(c, err)
		return
	}

	out := make([]gin.H, 0, len(streams))
	for _, st := range streams {
		out = append(out, gin.H{"id": st.ID, "name": st.Name, "description": st.Description})
	}
	c.JSON(http.StatusOK, gin.H{"streams": out})
}

func (s *Server) handleDashboard(c *gin.Context) {
	server, token, err := credentials(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	req := pipeline.Request{
		Server:      server,
		Token:       token,
		StreamName:  c.Query("stream"),
		CommitLabel: c.Query("commit"),
		CommitID:    c.Query("commit_id"),
	}
	if prev := c.Query("prev_commit_id"); prev != "" {
		req.Previous = &model.Selection{
			StreamID:   c.Query("prev_stream_id"),
			StreamName: req.StreamName,
			CommitID:   prev,
		}
	}

	d, err := s.runner.Run(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (s *Server) handleCharts(c *gin.Context) {
	datasets, err := s.runner.LoadCharts(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"datasets": datasets})
}

func (s *Server) handleChart(c *gin.Context) {
	ds, err := s.datasets.Load(c.Request.Context(), c.Param("name"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ds)
}

// chartTables are the tables /api/schema and /api/query expose.
var chartTables = []string{"chart_rows", "dataset_loads"}

func (s *Server) handleSchema(c *gin.Context) {
	columns, err := s.store.ExecuteQuery(
		"SELECT table_name, column_name, data_type FROM information_schema.columns " +
			"WHERE table_schema = 'main' AND table_name IN ('chart_rows', 'dataset_loads') " +
			"ORDER BY table_name, ordinal_position",
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read schema metadata"})
		return
	}

	tables := make(map[string][]gin.H, len(chartTables))
	for _, row := range columns {
		name := fmt.Sprint(row["table_name"])
		tables[name] = append(tables[name], gin.H{
			"column": fmt.Sprint(row["column_name"]),
			"type":   fmt.Sprint(row["data_type"]),
		})
	}

	loads, err := s.store.DatasetLoads(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read dataset loads"})
		return
	}
	counts, err := s.store.TableRowCounts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read table row counts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"description": s.store.GetSchemaDescription(),
		"tables":      tables,
		"row_counts":  counts,
		"datasets":    loads,
	})
}

// queryRequest selects either the stored rows of one dataset or an
// arbitrary read-only query over the chart tables.
type queryRequest struct {
	SQL     string `json:"sql"`
	Dataset string `json:"dataset"`
}

func (s *Server) handleQuery(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	req.SQL = strings.TrimSpace(req.SQL)
	req.Dataset = strings.TrimSpace(req.Dataset)

	switch {
	case req.SQL == "" && req.Dataset == "":
		c.JSON(http.StatusBadRequest, gin.H{"error": "one of sql or dataset is required"})
	case req.SQL != "" && req.Dataset != "":
		c.JSON(http.StatusBadRequest, gin.H{"error": "sql and dataset are mutually exclusive"})
	case req.Dataset != "":
		rows, err := s.store.ChartRows(c.Request.Context(), req.Dataset)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"dataset":   req.Dataset,
			"columns":   []string{"ordinal", "category", "metric"},
			"rows":      rows,
			"row_count": len(rows),
		})
	default:
		results, err := s.store.ExecuteQuery(req.SQL)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"columns":   resultColumns(results),
			"rows":      results,
			"row_count": len(results),
		})
	}
}

// resultColumns returns the column names of a result set in sorted order.
func resultColumns(results []map[string]interface{}) []string {
	if len(results) == 0 {
		return []string{}
	}
	cols := make([]string, 0, len(results[0]))
	for col := range results[0] {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}
