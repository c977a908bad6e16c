package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eugenenazirov/knapsack-solver/internal/instance"
	"github.com/eugenenazirov/knapsack-solver/internal/knapsack"
	"github.com/eugenenazirov/knapsack-solver/internal/metrics"
	"github.com/eugenenazirov/knapsack-solver/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

const (
	defaultMaxItems     = 200
	defaultSolveTimeout = 5 * time.Second
	textPlain           = "text/plain"
)

// Handler wires solver, storage and metrics dependencies into HTTP handlers.
type Handler struct {
	solver  knapsack.Solver
	storage storage.Storage
	metrics *metrics.Collector
	logger  *zap.Logger

	clock        func() time.Time
	solveTimeout time.Duration
	maxItems     int

	mu                 sync.RWMutex
	instancesUpdatedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithMetrics records every solve on the given collector.
func WithMetrics(c *metrics.Collector) HandlerOption {
	return func(h *Handler) {
		h.metrics = c
	}
}

// WithLogger sets the logger used for per-solve diagnostics.
func WithLogger(logger *zap.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithSolveTimeout bounds every search; zero disables the bound.
func WithSolveTimeout(d time.Duration) HandlerOption {
	return func(h *Handler) {
		h.solveTimeout = d
	}
}

// WithMaxItems caps the number of items accepted per instance.
func WithMaxItems(n int) HandlerOption {
	return func(h *Handler) {
		h.maxItems = n
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(solver knapsack.Solver, store storage.Storage, opts ...HandlerOption) *Handler {
	h := &Handler{
		solver:       solver,
		storage:      store,
		logger:       zap.NewNop(),
		solveTimeout: defaultSolveTimeout,
		maxItems:     defaultMaxItems,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.instancesUpdatedAt = h.clock()
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req solveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}
	if req.Capacity == nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "capacity is required")
		return
	}

	h.solve(w, r, knapsack.Problem{Capacity: *req.Capacity, Items: req.Items})
}

func (h *Handler) handleListInstances(w http.ResponseWriter, r *http.Request) {
	_ = r
	names, err := h.storage.ListInstances()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := instancesResponse{
		Instances: names,
		UpdatedAt: h.currentInstancesUpdatedAt(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetInstance(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	problem, err := h.storage.GetInstance(name)
	if err != nil {
		writeStorageError(w, err)
		return
	}

	if acceptsText(r) {
		w.Header().Set("Content-Type", textPlain+"; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_ = instance.Write(w, problem)
		return
	}

	resp := instanceResponse{
		Name:     name,
		Capacity: problem.Capacity,
		Items:    problem.Items,
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePutInstance(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var problem knapsack.Problem
	if isTextBody(r) {
		parsed, err := instance.Parse(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid instance", err.Error())
			return
		}
		problem = parsed
	} else if err := json.NewDecoder(r.Body).Decode(&problem); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if len(problem.Items) > h.maxItems {
		writeTooManyItems(w, len(problem.Items), h.maxItems)
		return
	}
	if _, err := knapsack.BuildCatalog(problem.Items); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid items", err.Error())
		return
	}

	if err := h.storage.PutInstance(name, problem); err != nil {
		writeStorageError(w, err)
		return
	}
	h.markInstancesUpdated()

	resp := instanceResponse{
		Name:     name,
		Capacity: problem.Capacity,
		Items:    problem.Items,
		Message:  "Instance stored successfully",
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleDeleteInstance(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.DeleteInstance(r.PathValue("name")); err != nil {
		writeStorageError(w, err)
		return
	}
	h.markInstancesUpdated()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSolveInstance(w http.ResponseWriter, r *http.Request) {
	problem, err := h.storage.GetInstance(r.PathValue("name"))
	if err != nil {
		writeStorageError(w, err)
		return
	}
	h.solve(w, r, problem)
}

func (h *Handler) solve(w http.ResponseWriter, r *http.Request, problem knapsack.Problem) {
	if len(problem.Items) > h.maxItems {
		writeTooManyItems(w, len(problem.Items), h.maxItems)
		return
	}

	ctx := r.Context()
	if h.solveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.solveTimeout)
		defer cancel()
	}

	start := time.Now()
	result, solveErr := h.solver.Solve(ctx, problem)
	elapsed := time.Since(start)

	h.metrics.ObserveSolve(len(problem.Items), result, elapsed, solveErr)
	h.logger.Debug("solve finished",
		zap.Int("items", len(problem.Items)),
		zap.Int("capacity", problem.Capacity),
		zap.String("outcome", metrics.Outcome(result, solveErr)),
		zap.Int64("nodes_visited", result.Stats.NodesVisited),
		zap.Duration("duration", elapsed),
		zap.String("request_id", requestIDFromContext(r.Context())),
	)

	if solveErr != nil {
		switch {
		case errors.Is(solveErr, knapsack.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "Invalid items", solveErr.Error())
		case errors.Is(solveErr, knapsack.ErrSearchInterrupted):
			suggestion := "Reduce the number of items or raise the solve timeout"
			if result.Feasible {
				suggestion = fmt.Sprintf("Best value found before the interruption was %d; raise the solve timeout to prove optimality", result.Value)
			}
			writeError(w, http.StatusServiceUnavailable, "Search interrupted", solveErr.Error(), suggestion)
		default:
			writeInternalError(w, solveErr)
		}
		return
	}

	writeJSON(w, http.StatusOK, newSolveResponse(result, elapsed))
}

func (h *Handler) currentInstancesUpdatedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.instancesUpdatedAt
}

func (h *Handler) markInstancesUpdated() {
	h.mu.Lock()
	h.instancesUpdatedAt = h.clock()
	h.mu.Unlock()
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

func isTextBody(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == textPlain
}

func acceptsText(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Accept"))
	return err == nil && mediaType == textPlain
}

type solveRequest struct {
	Capacity *int            `json:"capacity"`
	Items    []knapsack.Item `json:"items"`
}

type solveResponse struct {
	BestValue         *int  `json:"bestValue"`
	Feasible          bool  `json:"feasible"`
	Optimal           bool  `json:"optimal"`
	TotalWeight       int   `json:"totalWeight"`
	Selected          []int `json:"selected"`
	NodesVisited      int64 `json:"nodesVisited"`
	NodesPruned       int64 `json:"nodesPruned"`
	CalculationTimeMs int64 `json:"calculationTimeMs"`
}

func newSolveResponse(result knapsack.Result, elapsed time.Duration) solveResponse {
	resp := solveResponse{
		Feasible:          result.Feasible,
		Optimal:           result.Optimal,
		Selected:          []int{},
		NodesVisited:      result.Stats.NodesVisited,
		NodesPruned:       result.Stats.NodesPruned,
		CalculationTimeMs: elapsed.Milliseconds(),
	}
	if result.Feasible {
		value := result.Value
		resp.BestValue = &value
		resp.TotalWeight = result.Weight
		resp.Selected = append(resp.Selected, result.Selected...)
	}
	return resp
}

type instanceResponse struct {
	Name     string          `json:"name"`
	Capacity int             `json:"capacity"`
	Items    []knapsack.Item `json:"items"`
	Message  string          `json:"message,omitempty"`
}

type instancesResponse struct {
	Instances []string  `json:"instances"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}

func writeTooManyItems(w http.ResponseWriter, got, limit int) {
	writeError(w, http.StatusBadRequest, "Too many items",
		fmt.Sprintf("instance has %d items, the limit is %d", got, limit),
		"Split the instance or raise the max items setting")
}

func writeStorageError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "Instance not found", err.Error())
	case errors.Is(err, storage.ErrInvalidName):
		writeError(w, http.StatusBadRequest, "Invalid instance name", err.Error())
	default:
		writeInternalError(w, err)
	}
}
