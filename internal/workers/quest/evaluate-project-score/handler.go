// internal/workers/quest/evaluate-project-score/handler.go
package evaluateprojectscore

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"quest-workers/internal/answers"
	"quest-workers/internal/common/errors"
	"quest-workers/internal/common/logger"
	"quest-workers/internal/common/metrics"
	"quest-workers/internal/common/observability"
	"quest-workers/internal/models"
	"quest-workers/internal/scoring"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

const TaskType = "evaluate-project-score"

// AnswerLoader is satisfied by *answers.Store.
type AnswerLoader interface {
	Load(ctx context.Context, projectID string) (models.AnswerContext, error)
}

type Handler struct {
	config     *Config
	engine     *scoring.Engine
	answers    AnswerLoader
	obs        *observability.Observability
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

// NewHandler wires the scoring engine to an answer source. store may be
// nil, in which case only inline answers can be scored.
func NewHandler(config *Config, engine *scoring.Engine, store AnswerLoader, obs *observability.Observability, log logger.Logger) *Handler {
	if engine == nil {
		engine = scoring.NewEngine(scoring.DefaultRegistry())
	}
	if obs == nil {
		obs = &observability.Observability{}
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		engine:     engine,
		answers:    store,
		obs:        obs,
		errHandler: errors.NewErrorHandler(log).WithMaxRetries(config.MaxRetries),
		logger:     log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	correlationID := uuid.New().String()
	log := h.logger.WithFields(map[string]interface{}{
		"jobKey":        job.Key,
		"correlationId": correlationID,
	})
	log.Info("processing job", map[string]interface{}{
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	ctx, span := h.obs.StartSpan(ctx, TaskType,
		attribute.Int64("job.key", job.Key),
		attribute.String("correlation.id", correlationID),
	)

	input, err := ParseVariables(job.Variables)
	var output *Output
	if err == nil {
		output, err = h.execute(ctx, input, log)
	}
	observability.EndSpan(span, err)

	if err != nil {
		h.failJob(ctx, client, job, err, start)
		return
	}
	h.completeJob(ctx, client, job, output, start)
}

// ParseVariables decodes raw job variables. Empty variables decode as an
// empty object.
func ParseVariables(variables string) (*Input, error) {
	if strings.TrimSpace(variables) == "" {
		variables = "{}"
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err))
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input, log logger.Logger) (*Output, error) {
	if input == nil {
		return nil, errors.NewInvalidInputError("input cannot be nil")
	}

	projectID := strings.TrimSpace(input.ProjectID)
	answerCtx, err := h.resolveAnswers(ctx, projectID, input.Answers)
	if err != nil {
		return nil, err
	}

	result := h.engine.Evaluate(answerCtx)
	for level, ls := range result.Breakdown {
		metrics.LevelScore.WithLabelValues(string(level)).Observe(float64(ls.Score))
	}
	metrics.OverallScore.Observe(float64(result.OverallScore))

	readiness := scoring.Classify(result.OverallScore)
	nextSteps := h.engine.Pending(result)

	log.Info("project score calculated", map[string]interface{}{
		"projectId":    projectID,
		"overallScore": result.OverallScore,
		"readiness":    readiness,
		"pendingRules": len(nextSteps),
	})

	return &Output{
		ProjectID:    projectID,
		OverallScore: result.OverallScore,
		Breakdown:    result.Breakdown,
		Readiness:    readiness,
		NextSteps:    nextSteps,
	}, nil
}

// resolveAnswers prefers answers sent with the job over stored ones.
func (h *Handler) resolveAnswers(ctx context.Context, projectID string, inline models.AnswerContext) (models.AnswerContext, error) {
	if inline != nil {
		return inline, nil
	}
	if projectID == "" {
		return nil, errors.NewInvalidInputError("either answers or projectId is required")
	}
	if h.answers == nil {
		return nil, errors.NewAnswerStoreUnavailableError(projectID, fmt.Errorf("answer store not configured"))
	}

	loaded, err := h.answers.Load(ctx, projectID)
	if err != nil {
		if stderrors.Is(err, answers.ErrProjectIDRequired) {
			return nil, errors.NewInvalidInputError(err.Error())
		}
		return nil, errors.NewAnswerStoreUnavailableError(projectID, err)
	}
	return loaded, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output, start time.Time) {
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.obs.RecordJob(ctx, TaskType, "completed", time.Since(start))

	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err = cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error, start time.Time) {
	stdErr := errors.AsStandardError(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.obs.RecordJob(ctx, TaskType, "failed", time.Since(start))

	h.errHandler.HandleJobError(ctx, client, job, stdErr)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input, h.logger)
}
