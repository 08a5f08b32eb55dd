package a2a

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/soyeahso/quizsmith/internal/config"
	"github.com/soyeahso/quizsmith/internal/llm"
	"github.com/soyeahso/quizsmith/internal/logging"
	"github.com/soyeahso/quizsmith/internal/version"
)

// ErrBadDeploymentURL is returned when the configured deployment URL cannot
// be turned into a listen address.
var ErrBadDeploymentURL = errors.New("invalid deployment url")

// Handler processes the message history of one task and returns the agent's
// response. It is invoked once per task on a worker goroutine.
type Handler func(ctx context.Context, messages []llm.Message) (*llm.CompletionResponse, error)

// Server serves the JSON-RPC task protocol over HTTP.
type Server struct {
	cfg     config.Config
	handler Handler
	store   *TaskStore
	log     *logging.Logger

	httpServer *http.Server
	upgrader   websocket.Upgrader
	startedAt  time.Time
}

// NewServer creates a task server for the given agent handler.
func NewServer(cfg config.Config, handler Handler, log *logging.Logger) *Server {
	return &Server{
		cfg:     cfg,
		handler: handler,
		store:   NewTaskStore(log),
		log:     log.Sub("a2a"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

// Routes returns the HTTP handler. Exposed separately so tests can mount it
// on an httptest server.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRPC)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/tasks/subscribe", s.handleSubscribe)
	mux.HandleFunc("/.well-known/agent.json", s.handleAgentCard)
	return mux
}

// ListenAddr derives the listen address from the deployment config. When
// expose is set the server binds all interfaces on the configured port.
func (s *Server) ListenAddr() (string, error) {
	u, err := url.Parse(s.cfg.Deployment.URL)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrBadDeploymentURL, s.cfg.Deployment.URL)
	}
	if s.cfg.Deployment.Expose {
		port := u.Port()
		if port == "" {
			port = "3773"
		}
		return "0.0.0.0:" + port, nil
	}
	return u.Host, nil
}

// Start runs the HTTP server until it fails or Shutdown is called.
func (s *Server) Start() error {
	addr, err := s.ListenAddr()
	if err != nil {
		return err
	}

	s.startedAt = time.Now()
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.Info().Str("addr", addr).Str("agent", s.cfg.Name).Msg("task server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// handleRPC dispatches a JSON-RPC request envelope.
func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, nil, CodeInvalidRequest, "POST required")
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, nil, CodeParseError, "malformed JSON-RPC request")
		return
	}
	if req.JSONRPC != JSONRPCVersion {
		writeError(w, req.ID, CodeInvalidRequest, "jsonrpc must be \"2.0\"")
		return
	}

	switch req.Method {
	case MethodMessageSend:
		s.handleMessageSend(w, req)
	case MethodTasksGet:
		s.handleTasksGet(w, req)
	default:
		writeError(w, req.ID, CodeMethodNotFound, "unknown method: "+req.Method)
	}
}

// handleMessageSend submits a task and kicks off the agent asynchronously.
// The response carries the task snapshot in the submitted state; clients
// poll tasks/get for the result.
func (s *Server) handleMessageSend(w http.ResponseWriter, req Request) {
	var params SendParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		writeError(w, req.ID, CodeInvalidParams, "malformed message/send params")
		return
	}
	if params.Message.Text() == "" {
		writeError(w, req.ID, CodeInvalidParams, "message has no text part")
		return
	}

	task := s.store.Create(params.Message)
	go s.runTask(task.ID)

	writeResult(w, req.ID, task)
}

// handleTasksGet returns the current task snapshot.
func (s *Server) handleTasksGet(w http.ResponseWriter, req Request) {
	var params GetParams
	if err := json.Unmarshal(req.Params, &params); err != nil || params.TaskID == "" {
		writeError(w, req.ID, CodeInvalidParams, "taskId required")
		return
	}

	task, ok := s.store.Get(params.TaskID)
	if !ok {
		writeError(w, req.ID, CodeTaskNotFound, "no such task: "+params.TaskID)
		return
	}
	writeResult(w, req.ID, task)
}

// runTask drives one task through working to a terminal state. One blocking
// handler call per task, no retries: any handler error fails the task.
func (s *Server) runTask(id string) {
	s.store.SetWorking(id)

	task, ok := s.store.Get(id)
	if !ok {
		return
	}

	messages := make([]llm.Message, 0, len(task.History))
	for _, m := range task.History {
		role := llm.RoleUser
		if m.Role == "assistant" || m.Role == "agent" {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Content: m.Text()})
	}

	resp, err := s.handler(context.Background(), messages)
	if err != nil {
		s.store.Fail(id, err)
		return
	}
	s.store.Complete(id, resp.Content)
}

// handleSubscribe upgrades to WebSocket and streams task status events
// until the task reaches a terminal state or the client disconnects.
func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	taskID := r.URL.Query().Get("taskId")
	if taskID == "" {
		http.Error(w, "taskId required", http.StatusBadRequest)
		return
	}
	if _, ok := s.store.Get(taskID); !ok {
		http.Error(w, "no such task", http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	events, unsubscribe := s.store.Subscribe(taskID)
	defer unsubscribe()

	// Reader pump: detect client disconnect while we only write.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// handleHealth returns the public health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleAgentCard serves the agent manifest.
func (s *Server) handleAgentCard(w http.ResponseWriter, _ *http.Request) {
	card := AgentCard{
		Name:               s.cfg.Name,
		Description:        "Generates multiple-choice quizzes from input text.",
		URL:                s.cfg.Deployment.URL,
		Version:            version.Version,
		Author:             s.cfg.Author,
		DefaultInputModes:  []string{"text"},
		DefaultOutputModes: []string{"text"},
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(card)
}

func writeResult(w http.ResponseWriter, id json.RawMessage, result any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Response{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Result:  result,
	})
}

func writeError(w http.ResponseWriter, id json.RawMessage, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Response{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Error:   &Error{Code: code, Message: message},
	})
}
