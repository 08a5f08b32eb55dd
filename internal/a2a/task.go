package a2a

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/soyeahso/quizsmith/internal/logging"
)

// TaskStore is the in-memory task table. Nothing is ever persisted; a
// restart forgets all tasks, matching the agent's memory-only contract.
type TaskStore struct {
	mu          sync.RWMutex
	tasks       map[string]*Task
	subscribers map[string][]chan StatusEvent
	log         *logging.Logger
}

// NewTaskStore creates an empty task store.
func NewTaskStore(log *logging.Logger) *TaskStore {
	return &TaskStore{
		tasks:       make(map[string]*Task),
		subscribers: make(map[string][]chan StatusEvent),
		log:         log.Sub("tasks"),
	}
}

// Create registers a new task in the submitted state with the inbound
// message as the first history entry. The client-supplied taskId is honored
// when present, otherwise one is generated.
func (s *TaskStore) Create(msg Message) Task {
	id := msg.TaskID
	if id == "" {
		id = uuid.New().String()
	}

	task := &Task{
		ID:        id,
		ContextID: msg.ContextID,
		Kind:      "task",
		Status: TaskStatus{
			State:     TaskStateSubmitted,
			Timestamp: time.Now().UTC(),
		},
		History: []Message{msg},
	}

	s.mu.Lock()
	s.tasks[id] = task
	s.mu.Unlock()

	s.log.Info().Str("taskId", id).Msg("task submitted")
	return snapshot(task)
}

// Get returns a snapshot of the task, or false if unknown.
func (s *TaskStore) Get(id string) (Task, bool) {
	s.mu.RLock()
	task, ok := s.tasks[id]
	if !ok {
		s.mu.RUnlock()
		return Task{}, false
	}
	snap := snapshot(task)
	s.mu.RUnlock()
	return snap, true
}

// SetWorking transitions a task to the working state.
func (s *TaskStore) SetWorking(id string) {
	s.transition(id, TaskStatus{State: TaskStateWorking, Timestamp: time.Now().UTC()}, nil, nil)
}

// Complete records the agent's reply as both an output artifact and a
// history entry, then transitions the task to completed.
func (s *TaskStore) Complete(id, text string) {
	reply := Message{
		MessageID: uuid.New().String(),
		TaskID:    id,
		Role:      "assistant",
		Kind:      "message",
		Parts:     []Part{{Kind: "text", Text: text}},
	}
	output := &Artifact{
		ArtifactID: uuid.New().String(),
		Parts:      []Part{{Kind: "text", Text: text}},
	}
	s.transition(id, TaskStatus{State: TaskStateCompleted, Timestamp: time.Now().UTC()}, output, &reply)
	s.log.Info().Str("taskId", id).Int("outputLen", len(text)).Msg("task completed")
}

// Fail transitions a task to failed with the error detail in the status.
func (s *TaskStore) Fail(id string, cause error) {
	detail := ""
	if cause != nil {
		detail = cause.Error()
	}
	s.transition(id, TaskStatus{
		State:     TaskStateFailed,
		Timestamp: time.Now().UTC(),
		Message:   detail,
	}, nil, nil)
	s.log.Warn().Str("taskId", id).Str("error", detail).Msg("task failed")
}

// Subscribe returns a channel receiving status events for the task and an
// unsubscribe function. The channel is closed once the task reaches a
// terminal state.
func (s *TaskStore) Subscribe(id string) (<-chan StatusEvent, func()) {
	ch := make(chan StatusEvent, 8)

	s.mu.Lock()
	s.subscribers[id] = append(s.subscribers[id], ch)
	// Replay the current state so late subscribers see where the task is.
	if task, ok := s.tasks[id]; ok {
		ch <- StatusEvent{TaskID: id, Status: task.Status}
		if task.Status.State.Terminal() {
			close(ch)
		}
	}
	s.mu.Unlock()

	unsubscribe := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		subs := s.subscribers[id]
		for i, c := range subs {
			if c == ch {
				s.subscribers[id] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
	}
	return ch, unsubscribe
}

// transition applies a status change plus optional output and history
// append, then notifies subscribers. Transitions out of a terminal state
// are ignored.
func (s *TaskStore) transition(id string, status TaskStatus, output *Artifact, reply *Message) {
	s.mu.Lock()
	task, ok := s.tasks[id]
	if !ok || task.Status.State.Terminal() {
		s.mu.Unlock()
		return
	}

	task.Status = status
	if output != nil {
		task.Output = output
	}
	if reply != nil {
		task.History = append(task.History, *reply)
	}

	event := StatusEvent{TaskID: id, Status: status}
	subs := s.subscribers[id]
	for _, ch := range subs {
		select {
		case ch <- event:
		default: // slow subscriber, drop rather than block the store
		}
		if status.State.Terminal() {
			close(ch)
		}
	}
	if status.State.Terminal() {
		delete(s.subscribers, id)
	}
	s.mu.Unlock()
}

// snapshot copies a task so callers never alias store-owned slices.
func snapshot(task *Task) Task {
	snap := *task
	snap.History = make([]Message, len(task.History))
	for i, m := range task.History {
		m.Parts = append([]Part(nil), m.Parts...)
		snap.History[i] = m
	}
	if task.Output != nil {
		out := *task.Output
		out.Parts = append([]Part(nil), task.Output.Parts...)
		snap.Output = &out
	}
	return snap
}
