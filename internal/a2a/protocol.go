// Package a2a implements the JSON-RPC task-polling surface the quiz agent
// is served behind: message/send submits work, tasks/get polls it, and a
// WebSocket endpoint streams task state transitions.
package a2a

import (
	"encoding/json"
	"time"
)

// JSONRPCVersion is the fixed protocol version in every envelope.
const JSONRPCVersion = "2.0"

// RPC methods.
const (
	MethodMessageSend = "message/send"
	MethodTasksGet    = "tasks/get"
)

// JSON-RPC error codes. The standard codes plus the task-protocol range.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeTaskNotFound   = -32001
)

// Request is a JSON-RPC 2.0 request envelope. The ID is kept raw and echoed
// back verbatim so string and numeric ids both round-trip.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is a JSON-RPC 2.0 response envelope.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is the JSON-RPC error shape.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// SendParams are the params of a message/send request.
type SendParams struct {
	Configuration *SendConfiguration `json:"configuration,omitempty"`
	Message       Message            `json:"message"`
}

// SendConfiguration carries client preferences for the submitted task.
type SendConfiguration struct {
	AcceptedOutputModes []string `json:"acceptedOutputModes,omitempty"`
}

// GetParams are the params of a tasks/get request.
type GetParams struct {
	TaskID string `json:"taskId"`
}

// Message is a role-tagged chat message composed of parts.
type Message struct {
	MessageID string `json:"messageId,omitempty"`
	ContextID string `json:"contextId,omitempty"`
	TaskID    string `json:"taskId,omitempty"`
	Role      string `json:"role"`
	Kind      string `json:"kind,omitempty"`
	Parts     []Part `json:"parts"`
}

// Part is a single content block. Only text parts are produced here; the
// kind discriminator leaves room for other content types on the wire.
type Part struct {
	Kind string `json:"kind"`
	Text string `json:"text,omitempty"`
}

// Text returns the concatenated text of all text parts.
func (m Message) Text() string {
	var out string
	for _, p := range m.Parts {
		if p.Kind == "text" {
			out += p.Text
		}
	}
	return out
}

// TaskState is the lifecycle state of a task.
type TaskState string

// Task lifecycle states. Transitions are monotonic:
// submitted → working → completed | failed. Canceled is reserved for a
// future tasks/cancel method.
const (
	TaskStateSubmitted TaskState = "submitted"
	TaskStateWorking   TaskState = "working"
	TaskStateCompleted TaskState = "completed"
	TaskStateFailed    TaskState = "failed"
	TaskStateCanceled  TaskState = "canceled"
)

// Terminal reports whether no further transitions can occur.
func (s TaskState) Terminal() bool {
	return s == TaskStateCompleted || s == TaskStateFailed || s == TaskStateCanceled
}

// TaskStatus is the current state of a task plus when it was entered.
type TaskStatus struct {
	State     TaskState `json:"state"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message,omitempty"` // failure detail
}

// Artifact is a task output composed of parts.
type Artifact struct {
	ArtifactID string `json:"artifactId,omitempty"`
	Parts      []Part `json:"parts"`
}

// Task is the unit of asynchronous work tracked by the server. Clients only
// ever see snapshots; the server owns all mutation.
type Task struct {
	ID        string     `json:"id"`
	ContextID string     `json:"contextId,omitempty"`
	Kind      string     `json:"kind"`
	Status    TaskStatus `json:"status"`
	Output    *Artifact  `json:"output,omitempty"`
	History   []Message  `json:"history,omitempty"`
}

// StatusEvent is pushed to tasks/subscribe WebSocket clients on every
// state transition.
type StatusEvent struct {
	TaskID string     `json:"taskId"`
	Status TaskStatus `json:"status"`
}

// AgentCard is the self-describing manifest served at
// /.well-known/agent.json.
type AgentCard struct {
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	URL                string   `json:"url"`
	Version            string   `json:"version"`
	Author             string   `json:"author,omitempty"`
	DefaultInputModes  []string `json:"defaultInputModes"`
	DefaultOutputModes []string `json:"defaultOutputModes"`
}
