package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfrag/internal/core/domain"
)

func TestAskCmd_Flags(t *testing.T) {
	flag := askCmd.Flags().Lookup("top-k")
	require.NotNil(t, flag)
	assert.Equal(t, "k", flag.Shorthand)
	assert.Equal(t, "5", flag.DefValue)
	assert.NotNil(t, askCmd.Flags().Lookup("json"))
}

func TestAskCmd_RequiresTwoArgs(t *testing.T) {
	defer setupTestServices()()

	_, err := executeCommand(t, "", "ask", "only-namespace")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg(s)")
}

func TestAskCmd_PrintsAnswer(t *testing.T) {
	defer setupTestServices()()
	var got domain.AskRequest
	askService = &MockAskService{
		AskFunc: func(_ context.Context, req domain.AskRequest) (*domain.Answer, error) {
			got = req
			return &domain.Answer{Query: req.Query, Namespace: req.Namespace, Answer: "Revenue rose 12%."}, nil
		},
	}

	out, err := executeCommand(t, "", "ask", "-k", "3", "report-ns", "how did revenue change?")

	require.NoError(t, err)
	assert.Equal(t, domain.AskRequest{Namespace: "report-ns", Query: "how did revenue change?", TopK: 3}, got)
	assert.Equal(t, "Revenue rose 12%.\n", out)
}

func TestAskCmd_VerboseListsSources(t *testing.T) {
	defer setupTestServices()()
	askService = &MockAskService{
		AskFunc: func(_ context.Context, req domain.AskRequest) (*domain.Answer, error) {
			return &domain.Answer{
				Answer: "A",
				Matches: []domain.Match{
					{ID: "1", Score: 0.91, Metadata: domain.RecordMetadata{PageNumber: 2}},
				},
			}, nil
		},
	}

	out, err := executeCommand(t, "", "ask", "--verbose", "ns", "q")

	require.NoError(t, err)
	assert.Contains(t, out, "Sources:")
	assert.Contains(t, out, "[1] page 2 (0.910)")
}

func TestAskCmd_JSON(t *testing.T) {
	defer setupTestServices()()

	out, err := executeCommand(t, "", "ask", "--json", "ns", "what?")

	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "what?", got["query"])
	assert.Equal(t, "ns", got["namespace"])
	assert.Equal(t, "mock answer", got["answer"])
	assert.NotContains(t, got, "matches")
}

func TestAskCmd_Error(t *testing.T) {
	defer setupTestServices()()
	askService = &MockAskService{
		AskFunc: func(context.Context, domain.AskRequest) (*domain.Answer, error) {
			return nil, fmt.Errorf("%w: llm down", domain.ErrExternalService)
		},
	}

	_, err := executeCommand(t, "", "ask", "ns", "q")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExternalService)
	assert.Contains(t, err.Error(), "ask failed")
}
