package a2a

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/soyeahso/quizsmith/internal/agent"
	"github.com/soyeahso/quizsmith/internal/config"
	"github.com/soyeahso/quizsmith/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const historyText = `
The French Revolution began in 1789 and marked a major turning point in European history.
It was driven by social inequality, economic hardship, and resentment toward absolute
monarchy. French society was divided into three estates, with the clergy and nobility
enjoying privileges while the Third Estate bore heavy taxation.

The revolution led to the fall of the monarchy, the execution of King Louis XVI, and the
establishment of a republic. Key ideas such as liberty, equality, and fraternity emerged
during this period.
`

// sampleQuiz builds a plausible 10-question model reply.
func sampleQuiz() string {
	var b strings.Builder
	b.WriteString("# 📝 Quiz: Knowledge Check\n\n---\n")
	for i := 1; i <= 10; i++ {
		fmt.Fprintf(&b, `
### Question %d
What was a driving cause of the French Revolution?
A) Agricultural surplus
B) Social inequality
C) Colonial expansion
D) Religious reform

**Correct Answer:** B
**Explanation:** Widespread inequality between the estates fueled unrest.

---
`, i)
	}
	return b.String()
}

// TestQuizGenerationEndToEnd drives the whole stack: generator with a mock
// model behind the task server, exercised through the polling client the way
// an external caller would.
func TestQuizGenerationEndToEnd(t *testing.T) {
	quiz := sampleQuiz()
	mock := &llm.MockClient{
		CompleteFunc: func(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			// The handler must forward the submitted text untouched. Runs on
			// a server goroutine, so assert rather than require.
			if assert.NotEmpty(t, req.Messages) {
				assert.Contains(t, req.Messages[0].Content, "French Revolution")
			}
			return &llm.CompletionResponse{Content: quiz}, nil
		},
	}
	generator := agent.NewGenerator(func() (llm.Client, error) { return mock, nil }, testLog())

	server := NewServer(config.Defaults(), generator.Handle, testLog())
	ts := httptest.NewServer(server.Routes())
	t.Cleanup(ts.Close)

	client := NewClient(ts.URL)
	client.PollInterval = 10 * time.Millisecond
	client.PollTimeout = 10 * time.Second

	prompt := "Generate exactly 10 MCQs from the following text:\n\n" + historyText
	taskID, err := client.SendText(context.Background(), prompt)
	require.NoError(t, err)

	task, err := client.WaitForCompletion(context.Background(), taskID)
	require.NoError(t, err)

	output := ExtractText(task)
	require.NotEmpty(t, output)
	assert.Greater(t, len(strings.TrimSpace(output)), 300)
	assert.GreaterOrEqual(t, strings.Count(strings.ToLower(output), "question"), 5)
}
