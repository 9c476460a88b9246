package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/liamcoop/numclass/funfact"
	"github.com/liamcoop/numclass/internal/config"
	"github.com/liamcoop/numclass/internal/logger"
	"github.com/liamcoop/numclass/numbers"
	"github.com/liamcoop/numclass/rules"
)

type Server struct {
	cfg        *config.Config
	classifier *numbers.Classifier
	facts      *funfact.Resolver // nil when fun facts are disabled
	engine     *rules.Engine     // nil for the standard policy
	router     *chi.Mux
	startedAt  time.Time
}

// NewServer builds the policy and classifier described by cfg. A nil
// source disables external fun facts; the fallback is always used.
func NewServer(cfg *config.Config, source funfact.Source) (*Server, error) {
	s := &Server{
		cfg:       cfg,
		startedAt: time.Now(),
	}

	policy, err := s.buildPolicy()
	if err != nil {
		return nil, err
	}
	s.classifier = numbers.NewClassifier(numbers.WithPolicy(policy))

	if source != nil {
		s.facts = funfact.NewResolver(source, cfg.FunFact.Timeout)
	}

	s.setupRoutes()

	return s, nil
}

func (s *Server) buildPolicy() (numbers.Policy, error) {
	policy, engine, err := rules.PolicyFromConfig(s.cfg.Policy)
	if err != nil {
		return nil, err
	}

	if engine == nil {
		logger.Info("using standard property policy")
		return policy, nil
	}
	s.engine = engine

	active, _ := engine.Rules()
	logger.Info("using CEL property policy", "rules", len(active), "extraRules", len(s.cfg.Policy.Rules))

	return policy, nil
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors(s.cfg.CORS))
	r.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

	// Classification
	r.Get("/api/classify-number", s.handleClassify)
	r.Get("/api/v1/classify", s.handleClassify)

	// Operations
	r.Get("/api/v1/health", s.handleHealth)
	r.Get("/api/v1/metrics", s.handleMetrics)

	// Property rule management
	r.Route("/api/v1/properties", func(r chi.Router) {
		r.Get("/", s.handleListProperties)
		r.Post("/", s.handleCreateProperty)

		r.Route("/{ruleId}", func(r chi.Router) {
			r.Get("/", s.handleGetProperty)
			r.Put("/", s.handleUpdateProperty)
			r.Delete("/", s.handleDeleteProperty)
			r.Get("/evaluate", s.handleEvaluateProperty)
		})
	})

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Classification handler
func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("number")

	n, err := numbers.Parse(raw)
	switch {
	case errors.Is(err, numbers.ErrMissingInput):
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Number parameter is missing"})
		return
	case err != nil:
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid input - non-numeric value", Number: raw})
		return
	}

	result := s.classifier.Classify(n, s.lookupFact(r.Context(), n))
	logger.RecordClassification()

	respondJSON(w, http.StatusOK, result)
}

// lookupFact returns an external fact, or "" so the classifier falls back
func (s *Server) lookupFact(ctx context.Context, n float64) string {
	if s.facts == nil {
		return ""
	}

	fact, err := s.facts.Resolve(ctx, n)
	switch {
	case err == nil:
		logger.RecordFactLookup(false)
		return fact
	case errors.Is(err, funfact.ErrNotInteger):
		return ""
	default:
		logger.RecordFactLookup(true)
		logger.Warn("fun fact lookup failed, using fallback",
			"number", n,
			"requestId", middleware.GetReqID(ctx),
			"error", err,
		)
		return ""
	}
}

// Health check handler
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{
		Status:   "healthy",
		Policy:   s.cfg.Policy.Engine,
		FunFacts: s.facts != nil,
		Uptime:   time.Since(s.startedAt).Round(time.Second).String(),
	})
}

// Metrics handler
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, MetricsResponse{
		Counters: logger.Snapshot(),
		Uptime:   time.Since(s.startedAt).Round(time.Second).String(),
	})
}

// List property rules handler
func (s *Server) handleListProperties(w http.ResponseWriter, r *http.Request) {
	resp := PropertiesResponse{
		Policy: s.cfg.Policy.Engine,
		Rules:  []*rules.Rule{},
	}

	if s.engine != nil {
		active, err := s.engine.Rules()
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to list property rules", err)
			return
		}
		resp.Rules = active
	}

	respondJSON(w, http.StatusOK, resp)
}

// requireEngine answers 409 when rules cannot be managed because the
// standard policy is in use
func (s *Server) requireEngine(w http.ResponseWriter) bool {
	if s.engine == nil {
		respondError(w, http.StatusConflict, "property rules require the cel policy engine", nil)
		return false
	}
	return true
}

// Create property rule handler
func (s *Server) handleCreateProperty(w http.ResponseWriter, r *http.Request) {
	if !s.requireEngine(w) {
		return
	}

	var req CreatePropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if req.Name == "" || req.Expression == "" {
		respondError(w, http.StatusBadRequest, "name and expression are required", nil)
		return
	}

	rule := &rules.Rule{
		Name:       req.Name,
		Expression: req.Expression,
		Priority:   req.Priority,
		Active:     req.Active == nil || *req.Active,
	}

	// AddRule validates and compiles the rule
	if err := s.engine.AddRule(rule); err != nil {
		respondError(w, ruleErrorStatus(err), "failed to add property rule", err)
		return
	}

	logger.Info("property rule added", "rule", rule.Name, "ruleId", rule.ID)
	respondJSON(w, http.StatusCreated, rule)
}

// Get property rule handler
func (s *Server) handleGetProperty(w http.ResponseWriter, r *http.Request) {
	if !s.requireEngine(w) {
		return
	}

	rule, err := s.engine.GetRule(chi.URLParam(r, "ruleId"))
	if err != nil {
		respondError(w, http.StatusNotFound, "property rule not found", err)
		return
	}

	respondJSON(w, http.StatusOK, rule)
}

// Update property rule handler. Omitted fields keep their current value.
func (s *Server) handleUpdateProperty(w http.ResponseWriter, r *http.Request) {
	if !s.requireEngine(w) {
		return
	}

	existing, err := s.engine.GetRule(chi.URLParam(r, "ruleId"))
	if err != nil {
		respondError(w, http.StatusNotFound, "property rule not found", err)
		return
	}

	var req UpdatePropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	rule := *existing
	if req.Name != "" {
		rule.Name = req.Name
	}
	if req.Expression != "" {
		rule.Expression = req.Expression
	}
	if req.Priority != nil {
		rule.Priority = *req.Priority
	}
	if req.Active != nil {
		rule.Active = *req.Active
	}

	if err := s.engine.UpdateRule(&rule); err != nil {
		respondError(w, ruleErrorStatus(err), "failed to update property rule", err)
		return
	}

	logger.Info("property rule updated", "rule", rule.Name, "ruleId", rule.ID)
	respondJSON(w, http.StatusOK, &rule)
}

// Delete property rule handler
func (s *Server) handleDeleteProperty(w http.ResponseWriter, r *http.Request) {
	if !s.requireEngine(w) {
		return
	}

	ruleID := chi.URLParam(r, "ruleId")
	if err := s.engine.DeleteRule(ruleID); err != nil {
		respondError(w, ruleErrorStatus(err), "failed to delete property rule", err)
		return
	}

	logger.Info("property rule deleted", "ruleId", ruleID)
	w.WriteHeader(http.StatusNoContent)
}

// Evaluate one property rule against a number
func (s *Server) handleEvaluateProperty(w http.ResponseWriter, r *http.Request) {
	if !s.requireEngine(w) {
		return
	}

	raw := r.URL.Query().Get("number")
	n, err := numbers.Parse(raw)
	switch {
	case errors.Is(err, numbers.ErrMissingInput):
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Number parameter is missing"})
		return
	case err != nil:
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid input - non-numeric value", Number: raw})
		return
	}

	result, err := s.engine.Evaluate(chi.URLParam(r, "ruleId"), numbers.Evaluate(n))
	switch {
	case errors.Is(err, rules.ErrRuleNotFound):
		respondError(w, http.StatusNotFound, "property rule not found", err)
		return
	case err != nil:
		respondError(w, http.StatusUnprocessableEntity, "property rule evaluation failed", err)
		return
	}

	respondJSON(w, http.StatusOK, EvaluatePropertyResponse{
		RuleID:  result.RuleID,
		Name:    result.RuleName,
		Number:  n,
		Matched: result.Matched,
	})
}

// ruleErrorStatus maps rule management errors to HTTP status codes
func ruleErrorStatus(err error) int {
	switch {
	case errors.Is(err, rules.ErrRuleNotFound):
		return http.StatusNotFound
	case errors.Is(err, rules.ErrReservedTag), errors.Is(err, rules.ErrRuleExists):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// Helper functions
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := ErrorResponse{Error: message}
	if err != nil {
		response.Details = err.Error()
	}
	respondJSON(w, status, response)
}

func main() {
	if err := run(); err != nil {
		logger.Fatal("server failed", "error", err)
	}
}

func run() error {
	configPath := flag.String("config", "", "Path to YAML config file (default config.yaml when present)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := logger.Setup(ctx, cfg.Logging.Options()); err != nil {
		logger.Warn("logger setup degraded", "error", err)
	}

	var source funfact.Source
	if cfg.FunFact.Enabled {
		source = funfact.NewNumbersAPI(cfg.FunFact.BaseURL, cfg.FunFact.Timeout)
	}

	server, err := NewServer(cfg, source)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting", "addr", httpServer.Addr, "policy", cfg.Policy.Engine, "funFacts", cfg.FunFact.Enabled)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return logger.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}
