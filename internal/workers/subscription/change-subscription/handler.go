package changesubscription

import (
	"context"
	"fmt"
	"time"

	"subscription-manager/internal/common/camunda"
	"subscription-manager/internal/common/config"
	apperrors "subscription-manager/internal/common/errors"
	"subscription-manager/internal/common/logger"
	"subscription-manager/internal/common/metrics"
	"subscription-manager/internal/common/observability"
	"subscription-manager/internal/common/validation"
	"subscription-manager/internal/subscription"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "subscription.change"

var inputValidator = validation.MustCompile(inputSchema)

type Handler struct {
	config       *Config
	logger       logger.Logger
	camunda      *camunda.Client
	changer      subscription.Changer
	obs          *observability.Observability
	errorHandler *apperrors.ErrorHandler
	jobWorker    worker.JobWorker
}

type HandlerOptions struct {
	AppConfig     *config.Config
	Camunda       *camunda.Client
	Changer       subscription.Changer
	Observability *observability.Observability
	CustomConfig  *Config
	Logger        logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	if opts.Changer == nil {
		return nil, fmt.Errorf("subscription changer is required")
	}

	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	log = log.WithFields(map[string]interface{}{"worker": TaskType})

	return &Handler{
		config:       workerConfig,
		logger:       log,
		camunda:      opts.Camunda,
		changer:      opts.Changer,
		obs:          opts.Observability,
		errorHandler: apperrors.NewErrorHandler(log),
	}, nil
}

// Handle runs one job. Outcomes complete the job; errors go through the ErrorHandler.
func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("processing subscription change job", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	output, err := h.process(ctx, job)
	if err != nil {
		stdErr := apperrors.Normalize(err)
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
		h.obs.RecordJobProcessed(ctx, TaskType, "failed")
		h.obs.RecordJobDuration(ctx, TaskType, time.Since(startTime), "failed")
		h.errorHandler.HandleJobError(ctx, client, job, stdErr)
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
	h.obs.RecordJobProcessed(ctx, TaskType, "completed")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(startTime), "completed")
}

func (h *Handler) process(ctx context.Context, job entities.Job) (*Output, error) {
	input, err := h.parseInput(job)
	if err != nil {
		return nil, err
	}
	return h.Execute(ctx, input)
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, apperrors.NewInputParsingFailedError(err)
	}

	result, err := inputValidator.ValidateInput(variables)
	if err != nil {
		return nil, apperrors.NewInputParsingFailedError(err)
	}
	if !result.Valid {
		return nil, apperrors.NewInputValidationFailedError(fmt.Sprintf("Validation errors: %v", result.GetErrorMessages()))
	}

	return &Input{
		CustomerID:        variables["customerId"].(string),
		SubscriptionLevel: variables["subscriptionLevel"].(string),
		Direction:         variables["direction"].(string),
	}, nil
}

// Execute applies the change described by input and renders its outcome.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	direction, err := subscription.ParseDirection(input.Direction)
	if err != nil {
		return nil, err
	}

	outcome, err := h.changer.ChangeSubscription(ctx, direction, input.CustomerID, input.SubscriptionLevel)
	if err != nil {
		return nil, err
	}

	return &Output{
		Outcome:     outcome.String(),
		OutcomeCode: outcome.Code(),
		Message:     subscription.Message(direction, outcome, input.CustomerID, input.SubscriptionLevel),
	}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	request, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return
	}

	if _, err := request.Send(ctx); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return
	}

	h.logger.Info("subscription change job completed", map[string]interface{}{
		"jobKey":      job.GetKey(),
		"outcome":     output.Outcome,
		"outcomeCode": output.OutcomeCode,
	})
}

func (h *Handler) Register() error {
	if !h.config.Enabled {
		h.logger.Info("worker is disabled, skipping registration", nil)
		return nil
	}
	if h.camunda == nil {
		return fmt.Errorf("camunda client is required to register %s", TaskType)
	}

	h.jobWorker = h.camunda.GetClient().NewJobWorker().
		JobType(TaskType).
		Handler(h.Handle).
		MaxJobsActive(h.config.MaxJobsActive).
		Timeout(h.config.Timeout).
		Name(fmt.Sprintf("%s-worker", TaskType)).
		Open()

	h.logger.Info("worker registered with Camunda", map[string]interface{}{
		"taskType":      TaskType,
		"maxJobsActive": h.config.MaxJobsActive,
		"timeout":       h.config.Timeout.String(),
	})
	return nil
}

func (h *Handler) Close() {
	if h.jobWorker != nil {
		h.logger.Info("shutting down worker gracefully", nil)
		h.jobWorker.Close()
		h.jobWorker = nil
	}
}

func createConfigFromAppConfig(appConfig *config.Config, customConfig *Config) *Config {
	if customConfig != nil {
		return customConfig
	}

	cfg := DefaultConfig()
	if appConfig != nil {
		if appConfig.Camunda.MaxJobsActive > 0 {
			cfg.MaxJobsActive = appConfig.Camunda.MaxJobsActive
		}
		if appConfig.Camunda.Timeout > 0 {
			cfg.Timeout = appConfig.Camunda.Timeout
		}
	}
	return cfg
}
