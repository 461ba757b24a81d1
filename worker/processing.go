package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
	"petrovich.ru/petrovich/pipeline"
	"petrovich.ru/petrovich/tasks"
	"petrovich.ru/petrovich/utils"
)

type Message struct {
	WorkType string `json:"work_type"`
	RedisKey string `json:"redis_key"`
	Sender   string `json:"sender"`
	Version  string `json:"version"`
}

type Task struct {
	ctx       context.Context
	delivery  *amqp.Delivery
	batchTask *tasks.BatchTask
	message   *Message
	redisKey  string
	logger    zerolog.Logger
}

func (worker *Worker) processMessage(ctx context.Context, delivery *amqp.Delivery) {
	rejectLogger := worker.logger.With().Str("message_id", delivery.MessageId).Logger()
	task, err := worker.createTask(ctx, delivery)
	if err != nil {
		rejectLogger.Err(err).
			Str("body", string(delivery.Body)).
			Msg("Failed to create task for delivery")
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	if err = worker.processTask(task); err != nil {
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	if err = worker.rmq.notify(task, *task.message); err != nil {
		task.logger.Err(err).Msg("Got error while sending notification")
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	if err = worker.rmq.acknowledgeDelivery(delivery); err != nil {
		task.logger.Err(err).Msg("Failed to acknowledge delivery")
	}
	task.logger.Info().Msg("Finished processing RMQ message")
}

func (worker *Worker) createTask(ctx context.Context, delivery *amqp.Delivery) (*Task, error) {
	var message Message
	if err := json.Unmarshal(delivery.Body, &message); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message, got error %w", err)
	}
	if message.RedisKey == "" {
		return nil, errors.New("message has no redis key")
	}
	batchTask, err := worker.redis.getBatchTask(ctx, message.RedisKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query batch task for message, got error %w", err)
	}
	return &Task{
		ctx:       ctx,
		delivery:  delivery,
		batchTask: batchTask,
		redisKey:  message.RedisKey,
		message:   &message,
		logger:    worker.logger.With().Str("tid", message.RedisKey).Logger(),
	}, nil
}

func (worker *Worker) processTask(task *Task) error {
	if !worker.shouldPerformTask(task) {
		return worker.skipTask(task)
	}
	if err := worker.redis.onTaskStarted(task); err != nil {
		task.logger.Err(err).Msg("Failed to update task info")
		return fmt.Errorf("failed to update batch task: %w", err)
	}
	if err := worker.runPipeline(task); err != nil {
		task.logger.Err(err).Msg("Got error while running pipeline")
		return worker.redis.onTaskFailedWithError(task, err)
	}
	task.logger.Info().Msg("Saved results, marking task as complete")
	if err := worker.redis.onTaskComplete(task); err != nil {
		task.logger.Err(err).Msg("Got error while trying to mark task as complete")
		return err
	}
	return nil
}

func (worker *Worker) shouldPerformTask(task *Task) bool {
	batchTask := task.batchTask
	return !batchTask.Status.Complete() &&
		!batchTask.UserCanceled &&
		batchTask.Attempts < worker.config.TaskMaxRetries
}

// skipTask records why a task is not run. The message is still answered.
func (worker *Worker) skipTask(task *Task) error {
	batchTask := task.batchTask
	switch {
	case batchTask.Status.Complete():
		task.logger.Info().Msg("Task is already done (might indicate issue acking message with RMQ). Sending notification again.")
		return nil
	case batchTask.UserCanceled:
		task.logger.Info().Msg("Batch was canceled, no need to perform this task.")
		return worker.redis.onTaskCancelled(task)
	default:
		task.logger.Info().Msg("Batch task has exceeded retries.")
		return worker.redis.onTaskExceededRetries(task, worker.config.TaskMaxRetries)
	}
}

func (worker *Worker) runPipeline(task *Task) (err error) {
	defer utils.RecoverWithError(&err)
	task.logger.Info().Msgf("Processing message from RMQ, attempt # %d", task.batchTask.Attempts+1)
	data, err := worker.s3.getInputData(task)
	if err != nil {
		return fmt.Errorf("failed to fetch batch input from s3: %w", err)
	}
	var request pipeline.Request
	if err = json.Unmarshal(data, &request); err != nil {
		return fmt.Errorf("failed to decode batch input: %w", err)
	}
	request.Tid = task.redisKey

	result, ok := <-worker.ppln(request)
	if !ok {
		return errors.New("pipeline channel was closed before returning anything")
	}
	task.logger.Info().Int("entries", len(request.Entries)).Msg("Finished pipeline, saving results to s3")
	if err = worker.s3.saveResultsFile(task, result); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}
	return nil
}
