package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragrouter/internal/domain"
	domtool "github.com/kailas-cloud/ragrouter/internal/domain/tool"
	healthuc "github.com/kailas-cloud/ragrouter/internal/usecase/health"
)

const defaultMaxBodyBytes = 10 << 20

// Client-facing messages.
const (
	msgInvalidJSON    = "無効なJSONフォーマット"
	msgMissingMessage = "メッセージが指定されていません"
	msgMissingTexts   = "textsが指定されていないか、配列ではありません"
	msgLoadFailed     = "ドキュメントのロードに失敗しました"
	msgUnknownError   = "不明なエラー"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the router HTTP API.
type Server struct {
	agent         Agent
	docs          DocumentLoader
	health        HealthReporter
	tools         []domtool.Name
	logger        *zap.Logger
	maxBodyBytes  int64
	now           func() time.Time
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(agent Agent, docs DocumentLoader, health HealthReporter, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		agent:        agent,
		docs:         docs,
		health:       health,
		logger:       logger,
		maxBodyBytes: defaultMaxBodyBytes,
		now:          time.Now,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway),
		sentinelHandler(domain.ErrChatProviderError, http.StatusBadGateway),
		sentinelHandler(domain.ErrKeywordSearchFailed, http.StatusBadGateway),
	}
	return s
}

// WithTools lists the registered tools in /api/info.
func (s *Server) WithTools(names []domtool.Name) *Server {
	s.tools = names
	return s
}

// WithMaxBodyBytes caps request bodies. Values <= 0 keep the default.
func (s *Server) WithMaxBodyBytes(n int64) *Server {
	if n > 0 {
		s.maxBodyBytes = n
	}
	return s
}

// Register mounts the API routes on r.
func (s *Server) Register(r chirouter.Router) {
	r.Route("/api", func(r chirouter.Router) {
		r.Post("/chat", s.Chat)
		r.Post("/documents/load", s.LoadDocuments)
		r.Get("/health", s.HealthCheck)
		r.Get("/info", s.Info)
	})
	r.Get("/metrics", s.Metrics)
}

// Chat handles POST /api/chat.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := s.decode(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msgInvalidJSON})
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: msgMissingMessage,
			Usage: map[string]any{"message": "質問内容を入力してください"},
		})
		return
	}

	resp := s.agent.Query(r.Context(), req.Message)
	if !resp.Success {
		errMsg := resp.Error
		if errMsg == "" {
			errMsg = msgUnknownError
		}
		writeJSON(w, http.StatusInternalServerError, ChatFailure{
			Status:    statusError,
			Message:   req.Message,
			Error:     errMsg,
			Timestamp: s.timestamp(),
		})
		return
	}

	tools := resp.ToolsUsed
	if tools == nil {
		tools = []domtool.Name{}
	}
	writeJSON(w, http.StatusOK, ChatResponse{
		Status:    statusSuccess,
		Message:   req.Message,
		Answer:    resp.Answer,
		Intent:    string(resp.Intent),
		ToolsUsed: tools,
		Timestamp: s.timestamp(),
	})
}

// LoadDocuments handles POST /api/documents/load.
func (s *Server) LoadDocuments(w http.ResponseWriter, r *http.Request) {
	var req LoadRequest
	if err := s.decode(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msgInvalidJSON})
		return
	}

	var texts []string
	if len(req.Texts) == 0 || json.Unmarshal(req.Texts, &texts) != nil || len(texts) == 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: msgMissingTexts,
			Usage: map[string]any{
				"texts":    []string{"ドキュメント1", "ドキュメント2"},
				"metadata": []map[string]string{{"source": "doc1"}, {"source": "doc2"}},
			},
		})
		return
	}

	if err := s.docs.Add(r.Context(), texts, req.Metadata); err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, LoadResponse{
		Status:  statusSuccess,
		Message: fmt.Sprintf("%d個のドキュメントをロードしました", len(texts)),
		Loaded:  len(texts),
		Total:   s.docs.Count(),
	})
}

// HealthCheck handles GET /api/health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:    string(report.Status),
		Service:   ServiceName,
		Version:   ServiceVersion,
		AgentType: AgentType,
		Documents: s.docs.Count(),
		Checks:    checks,
		Timestamp: s.timestamp(),
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodyBytes)).Decode(v)
}

func (s *Server) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidInput,
		domain.ErrVectorDimMismatch,
		domain.ErrEmbeddingProviderError,
		domain.ErrChatProviderError,
		domain.ErrKeywordSearchFailed,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return ""
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeJSON(w, status, ErrorResponse{Status: statusError, Error: msgLoadFailed, Details: msg})
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Status: statusError, Error: msgLoadFailed, Details: msg})
}
