// internal/workers/quest/match-templates/handler.go
package matchtemplates

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"quest-workers/internal/catalog"
	"quest-workers/internal/common/errors"
	"quest-workers/internal/common/logger"
	"quest-workers/internal/common/metrics"
	"quest-workers/internal/common/observability"
	"quest-workers/internal/common/validation"
	"quest-workers/internal/matching"
	"quest-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

const TaskType = "match-templates"

var schema = validation.MustCompile(inputSchema)

type Handler struct {
	config     *Config
	matcher    *matching.Matcher
	catalog    catalog.Source
	obs        *observability.Observability
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

// NewHandler builds the worker. source supplies candidates when a job sends
// none; with a nil source such jobs simply match nothing.
func NewHandler(config *Config, source catalog.Source, obs *observability.Observability, log logger.Logger) *Handler {
	if obs == nil {
		obs = &observability.Observability{}
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		matcher:    matching.NewMatcher(),
		catalog:    source,
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

// ParseVariables validates raw job variables and decodes them.
func ParseVariables(variables string) (*Input, error) {
	if strings.TrimSpace(variables) == "" {
		variables = "{}"
	}

	result := schema.ValidateJSON(variables)
	if !result.Valid {
		return nil, errors.NewInvalidInputError(
			fmt.Sprintf("validation errors: %s", strings.Join(result.GetErrorMessages(), "; ")))
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
	if input.Limit < 0 {
		return nil, errors.NewInvalidInputError("limit must not be negative")
	}

	if input.UserContext == nil {
		log.Warn("no user context, nothing to match", nil)
		return &Output{Matches: []models.MatchResult{}}, nil
	}

	templates, err := h.candidates(ctx, input)
	if err != nil {
		return nil, err
	}

	results := h.matcher.Match(input.UserContext, templates)
	metrics.MatchCandidates.Observe(float64(len(templates)))

	limit := input.Limit
	if limit == 0 {
		limit = h.config.DefaultLimit
	}
	output := &Output{
		Matches:        matching.Top(results, limit),
		CandidateCount: len(templates),
	}
	if len(results) > 0 && results[0].MatchScore > 0 {
		output.BestTemplateID = results[0].TemplateID
	}

	log.Info("templates matched", map[string]interface{}{
		"theme":          input.UserContext.Theme,
		"candidateCount": output.CandidateCount,
		"returned":       len(output.Matches),
		"bestTemplateId": output.BestTemplateID,
	})
	return output, nil
}

// candidates uses the job's templates when present, else the catalog.
func (h *Handler) candidates(ctx context.Context, input *Input) ([]models.Template, error) {
	if len(input.Templates) > 0 {
		return input.Templates, nil
	}
	if h.catalog == nil {
		return nil, nil
	}

	templates, err := h.catalog.Templates(ctx, input.UserContext.Theme)
	if err != nil {
		return nil, mapCatalogError(h.catalog, err)
	}
	return templates, nil
}

func mapCatalogError(source catalog.Source, err error) error {
	index := source.Name()
	if indexed, ok := source.(interface{ Index() string }); ok {
		index = indexed.Index()
	}

	switch {
	case stderrors.Is(err, catalog.ErrIndexNotFound):
		return errors.NewIndexNotFoundError(index)
	case stderrors.Is(err, catalog.ErrSearchQueryFailed):
		return errors.NewSearchQueryFailedError(index, err)
	default:
		return errors.NewCatalogUnavailableError(source.Name(), err)
	}
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
