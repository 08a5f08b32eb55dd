package a2a

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Polling defaults for WaitForCompletion.
const (
	DefaultPollInterval = 2 * time.Second
	DefaultPollTimeout  = 120 * time.Second
)

// TaskFailedError reports a task that reached a terminal state other than
// completed. Surfaced immediately rather than spinning out the poll budget.
type TaskFailedError struct {
	TaskID string
	Status TaskStatus
}

func (e *TaskFailedError) Error() string {
	if e.Status.Message != "" {
		return fmt.Sprintf("task %s %s: %s", e.TaskID, e.Status.State, e.Status.Message)
	}
	return fmt.Sprintf("task %s %s", e.TaskID, e.Status.State)
}

// PollTimeoutError reports a task that did not complete within the budget.
type PollTimeoutError struct {
	TaskID  string
	Elapsed time.Duration
}

func (e *PollTimeoutError) Error() string {
	return fmt.Sprintf("task %s did not complete within %s", e.TaskID, e.Elapsed)
}

// Client talks to a task server: submit, poll, extract. It is what the
// end-to-end tests drive and doubles as a small SDK for callers.
type Client struct {
	// BaseURL of the task server, e.g. http://127.0.0.1:3773.
	BaseURL string

	// HTTPClient defaults to a 30-second-timeout client.
	HTTPClient *http.Client

	// PollInterval and PollTimeout bound WaitForCompletion. Zero values
	// mean the defaults above.
	PollInterval time.Duration
	PollTimeout  time.Duration
}

// NewClient creates a client for the given server base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// SendText submits a message/send request with a single text part and
// returns the created task id.
func (c *Client) SendText(ctx context.Context, text string) (string, error) {
	params := SendParams{
		Configuration: &SendConfiguration{AcceptedOutputModes: []string{"text"}},
		Message: Message{
			MessageID: uuid.New().String(),
			ContextID: uuid.New().String(),
			TaskID:    uuid.New().String(),
			Role:      "user",
			Kind:      "message",
			Parts:     []Part{{Kind: "text", Text: text}},
		},
	}

	var task Task
	if err := c.call(ctx, MethodMessageSend, params, &task); err != nil {
		return "", err
	}
	return task.ID, nil
}

// GetTask fetches the current snapshot of a task.
func (c *Client) GetTask(ctx context.Context, taskID string) (*Task, error) {
	var task Task
	if err := c.call(ctx, MethodTasksGet, GetParams{TaskID: taskID}, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// WaitForCompletion polls tasks/get until the task completes. A failed or
// canceled task returns *TaskFailedError immediately; exceeding the poll
// budget returns *PollTimeoutError.
func (c *Client) WaitForCompletion(ctx context.Context, taskID string) (*Task, error) {
	interval := c.PollInterval
	if interval == 0 {
		interval = DefaultPollInterval
	}
	timeout := c.PollTimeout
	if timeout == 0 {
		timeout = DefaultPollTimeout
	}

	start := time.Now()
	deadline := start.Add(timeout)

	for {
		task, err := c.GetTask(ctx, taskID)
		if err != nil {
			return nil, err
		}

		switch task.Status.State {
		case TaskStateCompleted:
			return task, nil
		case TaskStateFailed, TaskStateCanceled:
			return nil, &TaskFailedError{TaskID: taskID, Status: task.Status}
		}

		if time.Now().After(deadline) {
			return nil, &PollTimeoutError{TaskID: taskID, Elapsed: time.Since(start)}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}
}

// ExtractText pulls the generated text out of a completed task: the output
// artifact's first text part wins, otherwise the history is scanned in
// reverse for the most recent assistant-authored text part.
func ExtractText(task *Task) string {
	if task == nil {
		return ""
	}
	if task.Output != nil {
		for _, p := range task.Output.Parts {
			if p.Kind == "text" && p.Text != "" {
				return p.Text
			}
		}
	}
	for i := len(task.History) - 1; i >= 0; i-- {
		msg := task.History[i]
		if msg.Role != "assistant" && msg.Role != "agent" {
			continue
		}
		for _, p := range msg.Parts {
			if p.Kind == "text" && p.Text != "" {
				return p.Text
			}
		}
	}
	return ""
}

// call performs one JSON-RPC round trip.
func (c *Client) call(ctx context.Context, method string, params, result any) error {
	rawParams, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}
	reqID, _ := json.Marshal(uuid.New().String())

	body, err := json.Marshal(Request{
		JSONRPC: JSONRPCVersion,
		ID:      reqID,
		Method:  method,
		Params:  rawParams,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned HTTP %d: %s", method, resp.StatusCode, respBody)
	}

	var envelope struct {
		JSONRPC string          `json:"jsonrpc"`
		Result  json.RawMessage `json:"result"`
		Error   *Error          `json:"error"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	if envelope.Error != nil {
		return fmt.Errorf("%s error %d: %s", method, envelope.Error.Code, envelope.Error.Message)
	}
	if result != nil && envelope.Result != nil {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("parse result: %w", err)
		}
	}
	return nil
}
