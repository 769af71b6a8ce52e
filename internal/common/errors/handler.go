// internal/common/errors/handler.go
package errors

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// ErrorHandler turns worker errors into either a retried job failure or a
// thrown BPMN error.
type ErrorHandler struct {
	logger     Logger
	maxRetries int
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// WithMaxRetries caps the retries granted to any failure. Zero leaves the
// error code table in charge.
func (h *ErrorHandler) WithMaxRetries(n int) *ErrorHandler {
	h.maxRetries = n
	return h
}

// Decision is the outcome chosen for a failed job.
type Decision struct {
	Throw   bool
	Retries int32
	Error   *BPMNError
}

// Decide picks between failing with retries and throwing. Retries never
// exceed what the job has left.
func Decide(job entities.Job, err error) Decision {
	return DecideWithLimit(job, err, 0)
}

// DecideWithLimit is Decide with a configured retry ceiling. maxRetries <= 0
// means no ceiling.
func DecideWithLimit(job entities.Job, err error, maxRetries int) Decision {
	stdErr := AsStandardError(err)
	bpmnErr := ConvertToBPMNError(stdErr)

	if bpmnErr.Retries == 0 || job.Retries <= 0 {
		return Decision{Throw: true, Error: bpmnErr}
	}

	retries := int32(bpmnErr.Retries)
	if maxRetries > 0 && int32(maxRetries) < retries {
		retries = int32(maxRetries)
	}
	if job.Retries < retries {
		retries = job.Retries
	}
	// The engine expects the remaining count after this failure.
	return Decision{Retries: retries - 1, Error: bpmnErr}
}

func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	decision := DecideWithLimit(job, err, h.maxRetries)
	h.logError(job, decision)

	payload, _ := json.Marshal(decision.Error.ToErrorVariables())

	if decision.Throw {
		cmd := client.NewThrowErrorCommand().
			JobKey(job.Key).
			ErrorCode(decision.Error.Code).
			ErrorMessage(decision.Error.Message)
		var sendErr error
		if withVars, varErr := cmd.VariablesFromString(string(payload)); varErr == nil {
			_, sendErr = withVars.Send(ctx)
		} else {
			_, sendErr = cmd.Send(ctx)
		}
		h.logSendError("throw error", job, sendErr)
		return
	}

	cmd := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(decision.Retries).
		ErrorMessage(decision.Error.Error())
	var sendErr error
	if withVars, varErr := cmd.VariablesFromString(string(payload)); varErr == nil {
		_, sendErr = withVars.Send(ctx)
	} else {
		_, sendErr = cmd.Send(ctx)
	}
	h.logSendError("fail job", job, sendErr)
}

func (h *ErrorHandler) logSendError(command string, job entities.Job, err error) {
	if err == nil {
		return
	}
	h.logger.Error("failed to send "+command+" command", map[string]interface{}{
		"jobKey": job.Key,
		"error":  err.Error(),
	})
}

func (h *ErrorHandler) logError(job entities.Job, decision Decision) {
	h.logger.Error("Job failed", map[string]interface{}{
		"jobKey":           job.Key,
		"jobType":          job.Type,
		"errorCode":        decision.Error.Code,
		"details":          decision.Error.Details,
		"retryable":        decision.Error.Retryable,
		"thrown":           decision.Throw,
		"retriesLeft":      decision.Retries,
		"workflowInstance": job.ProcessInstanceKey,
	})
}
