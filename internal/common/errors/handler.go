// internal/common/errors/handler.go
package errors

import (
	"context"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// ErrorHandler reports job errors back to the broker.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleJobError reports err for job. Business and argument errors are thrown as BPMN errors so
// the process can route on them; infrastructure errors fail the job with zero retries, which
// raises an incident instead of re-running the change.
func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := Normalize(err)
	bpmnErr := ConvertToBPMNError(stdErr)

	h.logError(job, stdErr, bpmnErr)

	if stdErr.Retryable {
		h.failJob(ctx, client, job, bpmnErr)
		return
	}
	h.throwBPMNError(ctx, client, job, bpmnErr)
}

func (h *ErrorHandler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) {
	cmd := client.NewFailJobCommand().
		JobKey(job.GetKey()).
		Retries(int32(bpmnErr.Retries)).
		ErrorMessage(fmt.Sprintf("[%s] %s", bpmnErr.Code, bpmnErr.Message))

	varCmd, err := cmd.VariablesFromMap(bpmnErr.ToErrorVariables())
	if err != nil {
		h.logger.Error("failed to set error variables, failing job without them", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		if _, err := cmd.Send(ctx); err != nil {
			h.logSendFailure(job, err)
		}
		return
	}

	if _, err := varCmd.Send(ctx); err != nil {
		h.logSendFailure(job, err)
	}
}

func (h *ErrorHandler) throwBPMNError(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) {
	cmd := client.NewThrowErrorCommand().
		JobKey(job.GetKey()).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)

	varCmd, err := cmd.VariablesFromMap(bpmnErr.ToErrorVariables())
	if err != nil {
		h.logger.Error("failed to set error variables, throwing without them", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		if _, err := cmd.Send(ctx); err != nil {
			h.logSendFailure(job, err)
		}
		return
	}

	if _, err := varCmd.Send(ctx); err != nil {
		h.logSendFailure(job, err)
	}
}

func (h *ErrorHandler) logSendFailure(job entities.Job, err error) {
	h.logger.Error("failed to report job error to broker", map[string]interface{}{
		"jobKey": job.GetKey(),
		"error":  err.Error(),
	})
}

func (h *ErrorHandler) logError(job entities.Job, stdErr *StandardError, bpmnErr *BPMNError) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":           job.GetKey(),
		"jobType":          job.GetType(),
		"errorCode":        string(stdErr.Code),
		"bpmnErrorCode":    bpmnErr.Code,
		"message":          bpmnErr.Message,
		"details":          stdErr.Details,
		"retryable":        stdErr.Retryable,
		"errorCategory":    GetErrorCategory(stdErr.Code),
		"workflowInstance": job.GetProcessInstanceKey(),
	})
}
