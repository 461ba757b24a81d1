package worker

import (
	"context"
	"fmt"

	"petrovich.ru/petrovich/tasks"
)

type redisTransactions interface {
	getBatchTask(ctx context.Context, redisKey string) (*tasks.BatchTask, error)
	onTaskStarted(task *Task) error
	onTaskCancelled(task *Task) error
	onTaskExceededRetries(task *Task, maxRetries int) error
	onTaskFailedWithError(task *Task, err error) error
	onTaskComplete(task *Task) error
	close()
}

type redisClientWrapper struct {
	batches tasks.BatchTasks
}

func (wrapper *redisClientWrapper) close() {
	wrapper.batches.Close()
}

func (wrapper *redisClientWrapper) getBatchTask(ctx context.Context, redisKey string) (*tasks.BatchTask, error) {
	return wrapper.batches.Get(ctx, redisKey)
}

func (wrapper *redisClientWrapper) onTaskStarted(task *Task) error {
	return wrapper.batches.Update(task.ctx, task.redisKey, markStarted)
}

func (wrapper *redisClientWrapper) onTaskCancelled(task *Task) error {
	return wrapper.batches.Update(task.ctx, task.redisKey, markCancelled)
}

func (wrapper *redisClientWrapper) onTaskExceededRetries(task *Task, maxRetries int) error {
	return wrapper.batches.Update(task.ctx, task.redisKey, func(batchTask *tasks.BatchTask) {
		markExceededRetries(batchTask, maxRetries)
	})
}

func (wrapper *redisClientWrapper) onTaskFailedWithError(task *Task, err error) error {
	return wrapper.batches.Update(task.ctx, task.redisKey, func(batchTask *tasks.BatchTask) {
		markFailed(batchTask, err)
	})
}

func (wrapper *redisClientWrapper) onTaskComplete(task *Task) error {
	resultsKey := getResultsFileKey(task)
	return wrapper.batches.Update(task.ctx, task.redisKey, func(batchTask *tasks.BatchTask) {
		markComplete(batchTask, resultsKey)
	})
}

func markStarted(batchTask *tasks.BatchTask) {
	batchTask.Status = tasks.TaskStatusStarted
	batchTask.Attempts++
	batchTask.StartedAt = getFormattedNow()
	batchTask.CompletedAt = nil
}

func markCancelled(batchTask *tasks.BatchTask) {
	batchTask.Status = tasks.TaskStatusCanceled
	batchTask.CompletedAt = getFormattedNow()
}

func markExceededRetries(batchTask *tasks.BatchTask, maxRetries int) {
	batchTask.Status = tasks.TaskStatusCompletedFailure
	batchTask.CompletedAt = getFormattedNow()
	batchTask.ErrorMessages = append(batchTask.ErrorMessages, fmt.Sprintf(
		"Task has exceeded retries. (Attempts: %d, max retries: %d)",
		batchTask.Attempts,
		maxRetries,
	))
}

func markFailed(batchTask *tasks.BatchTask, err error) {
	batchTask.Status = tasks.TaskStatusFailed
	batchTask.CompletedAt = getFormattedNow()
	batchTask.ErrorMessages = append(batchTask.ErrorMessages, err.Error())
}

func markComplete(batchTask *tasks.BatchTask, resultsKey string) {
	if !batchTask.Status.Complete() {
		batchTask.Status = tasks.TaskStatusCompletedSuccess
	}
	batchTask.CompletedAt = getFormattedNow()
	batchTask.ResultsFileKey = resultsKey
}
