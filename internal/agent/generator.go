// Package agent holds the quiz generator: a lazily-initialized wrapper
// around a model client that turns chat messages into MCQ quizzes.
package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/soyeahso/quizsmith/internal/llm"
	"github.com/soyeahso/quizsmith/internal/logging"
)

// ErrClientUnset is the runtime fault for a nil model client after an
// apparently successful initialization.
var ErrClientUnset = errors.New("agent: model client unset after initialization")

// ClientFactory constructs the model client on first use.
type ClientFactory func() (llm.Client, error)

// Generator proxies messages to a model client constructed on first use.
// The mutex serializes the initialized check-and-set so concurrent first
// calls construct the client exactly once; afterwards the lock is taken
// and released per call with no contention effect.
type Generator struct {
	factory ClientFactory
	log     *logging.Logger

	mu          sync.Mutex
	initialized bool
	client      llm.Client
}

// NewGenerator creates a Generator that builds its model client with factory
// on the first Handle call.
func NewGenerator(factory ClientFactory, log *logging.Logger) *Generator {
	return &Generator{
		factory: factory,
		log:     log.Sub("agent"),
	}
}

// Handle forwards the message list to the model and returns its response
// unmodified. The first call initializes the model client; concurrent first
// calls block until that single initialization completes.
func (g *Generator) Handle(ctx context.Context, messages []llm.Message) (*llm.CompletionResponse, error) {
	if err := g.ensureInitialized(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	client := g.client
	g.mu.Unlock()
	if client == nil {
		return nil, ErrClientUnset
	}

	req := llm.CompletionRequest{
		System:   SystemPrompt(),
		Messages: messages,
	}
	resp, err := client.Complete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("agent run: %w", err)
	}
	return resp, nil
}

// ensureInitialized constructs the model client exactly once. A factory
// failure leaves the generator uninitialized so the error surfaces on every
// call rather than being swallowed.
func (g *Generator) ensureInitialized() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.initialized {
		return nil
	}

	client, err := g.factory()
	if err != nil {
		return fmt.Errorf("agent init: %w", err)
	}

	g.client = client
	g.initialized = true
	if client != nil {
		g.log.Info().Str("provider", client.Name()).Msg("agent initialized")
	}
	return nil
}
