package tasks

import (
	"context"

	"petrovich.ru/petrovich/redis"
)

const BatchesDB redis.DB = 0

// BatchTask is the Redis document describing one batch of names to inflect.
// The entries live in S3 under InputFileKey as a pipeline request.
type BatchTask struct {
	ID             string     `json:"id"`
	InputFileKey   string     `json:"input_file_key"`
	ResultsFileKey string     `json:"results_file_key,omitempty"`
	Status         TaskStatus `json:"status"`
	Attempts       int        `json:"attempts"`
	StartedAt      *string    `json:"started_at"`
	CompletedAt    *string    `json:"completed_at"`
	ErrorMessages  []string   `json:"error_messages"`
	UserCanceled   bool       `json:"user_canceled"`
}

type documentStore interface {
	GetDocument(ctx context.Context, redisKey string, doc interface{}) ([]byte, error)
	UpdateDocument(ctx context.Context, redisKey string, doc interface{}, update func() error) error
	Close() error
}

type BatchTasks struct {
	client documentStore
}

func NewBatchTasks() (BatchTasks, error) {
	client, err := redis.NewClient(BatchesDB)
	if err != nil {
		return BatchTasks{}, err
	}
	return BatchTasks{client: &client}, nil
}

func (tasks BatchTasks) Get(ctx context.Context, redisKey string) (*BatchTask, error) {
	var task BatchTask
	if _, err := tasks.client.GetDocument(ctx, redisKey, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (tasks BatchTasks) Update(ctx context.Context, redisKey string, updateFunc func(task *BatchTask)) error {
	var task BatchTask
	return tasks.client.UpdateDocument(ctx, redisKey, &task, func() error {
		updateFunc(&task)
		return nil
	})
}

func (tasks BatchTasks) Close() {
	_ = tasks.client.Close()
}
