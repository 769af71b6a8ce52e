package evaluateprojectscore

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"quest-workers/internal/answers"
	"quest-workers/internal/common/config"
	"quest-workers/internal/common/errors"
	"quest-workers/internal/common/logger"
	"quest-workers/internal/models"
	"quest-workers/internal/scoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type stubLoader struct {
	answers models.AnswerContext
	err     error
	calls   []string
}

func (s *stubLoader) Load(_ context.Context, projectID string) (models.AnswerContext, error) {
	s.calls = append(s.calls, projectID)
	return s.answers, s.err
}

func createTestHandler(t *testing.T, loader AnswerLoader) *Handler {
	return NewHandler(DefaultConfig(), nil, loader, nil, logger.NewTestLogger(t))
}

func createCompleteAnswers() models.AnswerContext {
	return models.AnswerContext{
		"problemStatement": "Children in grade 3 cannot read a simple paragraph.",
		"stakeholders":     []interface{}{"Teachers", "Parents"},
		"impact":           "Improved reading levels",
		"outcome":          "Grade-level reading",
		"activities":       []interface{}{"Teacher training"},
		"indicators":       []interface{}{"ORF score"},
		"assumptions":      []interface{}{"Schools stay open"},
	}
}

func requireCode(t *testing.T, err error, code errors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	var stdErr *errors.StandardError
	require.True(t, stderrors.As(err, &stdErr), "expected a StandardError, got %T", err)
	assert.Equal(t, code, stdErr.Code)
}

// ==========================
// Config Tests
// ==========================

func TestLoadConfig(t *testing.T) {
	assert.Equal(t, 10*time.Second, LoadConfig(config.WorkerConfig{}).Timeout)
	assert.Equal(t, 2500*time.Millisecond, LoadConfig(config.WorkerConfig{Timeout: 2500}).Timeout)
	assert.Equal(t, 2, LoadConfig(config.WorkerConfig{MaxRetries: 2}).MaxRetries)

	assert.NoError(t, DefaultConfig().Validate())
	assert.Error(t, (&Config{}).Validate())
	assert.Error(t, (&Config{Timeout: time.Second, MaxRetries: -1}).Validate())
}

// ==========================
// Execute Tests
// ==========================

func TestExecute_InlineAnswers(t *testing.T) {
	loader := &stubLoader{}
	h := createTestHandler(t, loader)

	output, err := h.Execute(context.Background(), &Input{
		ProjectID: " p-1 ",
		Answers:   createCompleteAnswers(),
	})

	require.NoError(t, err)
	assert.Equal(t, "p-1", output.ProjectID)
	assert.Equal(t, 100, output.OverallScore)
	assert.Equal(t, scoring.ReadinessExcellent, output.Readiness)
	assert.Empty(t, output.NextSteps)
	assert.Len(t, output.Breakdown, 5)
	assert.Empty(t, loader.calls, "inline answers must win over the store")
}

func TestExecute_EmptyInlineAnswers(t *testing.T) {
	loader := &stubLoader{answers: createCompleteAnswers()}
	h := createTestHandler(t, loader)

	output, err := h.Execute(context.Background(), &Input{
		ProjectID: "p-1",
		Answers:   models.AnswerContext{},
	})

	require.NoError(t, err)
	assert.Equal(t, 0, output.OverallScore)
	assert.Equal(t, scoring.ReadinessLow, output.Readiness)
	assert.Len(t, output.NextSteps, 7)
	assert.Empty(t, loader.calls)
}

func TestExecute_LoadsFromStore(t *testing.T) {
	loader := &stubLoader{answers: models.AnswerContext{
		"problemStatement": "Children in grade 3 cannot read a simple paragraph.",
	}}
	h := createTestHandler(t, loader)

	output, err := h.Execute(context.Background(), &Input{ProjectID: "p-42"})

	require.NoError(t, err)
	assert.Equal(t, []string{"p-42"}, loader.calls)

	// context 50, every other level 0
	assert.Equal(t, 50, output.Breakdown[models.LevelContext].Score)
	assert.Equal(t, 10, output.OverallScore)
	assert.Equal(t, scoring.ReadinessLow, output.Readiness)

	require.NotEmpty(t, output.NextSteps)
	assert.Equal(t, scoring.PendingRule{
		Level:   models.LevelContext,
		RuleID:  "stake_exist",
		Message: "At least one stakeholder is identified",
	}, output.NextSteps[0])
	assert.Len(t, output.NextSteps, 6)
}

func TestExecute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		loader   AnswerLoader
		input    *Input
		wantCode errors.ErrorCode
	}{
		{
			name:     "nil input",
			loader:   &stubLoader{},
			input:    nil,
			wantCode: errors.ErrCodeInvalidInput,
		},
		{
			name:     "neither answers nor project id",
			loader:   &stubLoader{},
			input:    &Input{ProjectID: "   "},
			wantCode: errors.ErrCodeInvalidInput,
		},
		{
			name:     "store not configured",
			loader:   nil,
			input:    &Input{ProjectID: "p-1"},
			wantCode: errors.ErrCodeAnswerStoreUnavailable,
		},
		{
			name:     "store failure",
			loader:   &stubLoader{err: stderrors.New("connection refused")},
			input:    &Input{ProjectID: "p-1"},
			wantCode: errors.ErrCodeAnswerStoreUnavailable,
		},
		{
			name:     "store rejects id",
			loader:   &stubLoader{err: answers.ErrProjectIDRequired},
			input:    &Input{ProjectID: "p-1"},
			wantCode: errors.ErrCodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := createTestHandler(t, tt.loader)
			output, err := h.Execute(context.Background(), tt.input)
			assert.Nil(t, output)
			requireCode(t, err, tt.wantCode)
		})
	}
}

func TestExecute_StoreFailureIsRetryable(t *testing.T) {
	h := createTestHandler(t, &stubLoader{err: stderrors.New("timeout")})

	_, err := h.Execute(context.Background(), &Input{ProjectID: "p-1"})

	stdErr := errors.AsStandardError(err)
	assert.True(t, stdErr.Retryable)
	assert.Equal(t, 3, errors.GetRetryCount(stdErr.Code))
}

func TestExecute_CustomRegistry(t *testing.T) {
	registry := scoring.MustRegistry(scoring.Level{
		ID: models.LevelContext,
		Rules: []scoring.Rule{
			{ID: "has_title", Check: scoring.DescriptiveText("title", 3), Message: "Add a title"},
		},
	})
	h := NewHandler(DefaultConfig(), scoring.NewEngine(registry), nil, nil, logger.NewNoOpLogger())

	output, err := h.Execute(context.Background(), &Input{Answers: models.AnswerContext{"title": "Reading"}})

	require.NoError(t, err)
	assert.Equal(t, 100, output.OverallScore)
	assert.Len(t, output.Breakdown, 1)
}
