package worker

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
	"petrovich.ru/petrovich/pipeline"
	"petrovich.ru/petrovich/tasks"
)

type failingMethod struct {
	fail bool
}

type pipelineMock struct {
	ppln    pipeline.Pipeline
	config  pipelineMockConfig
	calls   pipelineCall
	request pipeline.Request
}

type pipelineMockConfig struct {
	fail   bool
	result string
}

type pipelineCall struct {
	pipeline bool
}

type redisMock struct {
	config redisMockConfig
	calls  redisMockCalls
	task   tasks.BatchTask
}

type redisMockConfig struct {
	getBatchTask          failingMethod
	batchTask             tasks.BatchTask
	onTaskCancelled       failingMethod
	onTaskStarted         failingMethod
	onTaskExceededRetries failingMethod
	onTaskFailedWithError failingMethod
	onTaskComplete        failingMethod
}

type redisMockCalls struct {
	getBatchTask          bool
	onTaskCancelled       bool
	onTaskStarted         bool
	onTaskExceededRetries bool
	onTaskFailedWithError bool
	onTaskComplete        bool
}

type rmqMock struct {
	config  rmqMockConfig
	calls   rmqMockCalls
	message Message
}

type rmqMockConfig struct {
	notify              failingMethod
	acknowledgeDelivery failingMethod
}

type rmqMockCalls struct {
	notify              bool
	acknowledgeDelivery bool
	rejectDelivery      bool
}

type s3Mock struct {
	config s3MockConfig
	calls  s3MockCalls
	saved  map[string]string
}

type s3MockConfig struct {
	getInputData    failingMethod
	input           []byte
	saveResultsFile failingMethod
}

type s3MockCalls struct {
	getInputData    bool
	saveResultsFile bool
}

func (mock *s3Mock) close() {}

func (mock *rmqMock) close() {}

func (mock *redisMock) close() {}

func getPipelineMock(config pipelineMockConfig) *pipelineMock {
	mock := pipelineMock{config: config}
	mock.ppln = func(request pipeline.Request) <-chan string {
		mock.calls.pipeline = true
		mock.request = request
		ch := make(chan string, 1)
		if !mock.config.fail {
			ch <- mock.config.result
		}
		close(ch)
		return ch
	}
	return &mock
}

func (mock *redisMock) getBatchTask(_ context.Context, redisKey string) (*tasks.BatchTask, error) {
	mock.calls.getBatchTask = true
	if mock.config.getBatchTask.fail {
		return nil, errors.New("failed to get batch task")
	}
	task := mock.config.batchTask
	return &task, nil
}

func (mock *redisMock) onTaskStarted(task *Task) error {
	mock.calls.onTaskStarted = true
	if mock.config.onTaskStarted.fail {
		return errors.New("failed to update batch task on start")
	}
	markStarted(&mock.task)
	return nil
}

func (mock *redisMock) onTaskCancelled(task *Task) error {
	mock.calls.onTaskCancelled = true
	if mock.config.onTaskCancelled.fail {
		return errors.New("failed to update batch task on cancel")
	}
	markCancelled(&mock.task)
	return nil
}

func (mock *redisMock) onTaskExceededRetries(task *Task, maxRetries int) error {
	mock.calls.onTaskExceededRetries = true
	if mock.config.onTaskExceededRetries.fail {
		return errors.New("failed to update batch task on exceeded retries")
	}
	markExceededRetries(&mock.task, maxRetries)
	return nil
}

func (mock *redisMock) onTaskFailedWithError(task *Task, err error) error {
	mock.calls.onTaskFailedWithError = true
	if mock.config.onTaskFailedWithError.fail {
		return errors.New("failed to update batch task on fail with error")
	}
	markFailed(&mock.task, err)
	return nil
}

func (mock *redisMock) onTaskComplete(task *Task) error {
	mock.calls.onTaskComplete = true
	if mock.config.onTaskComplete.fail {
		return errors.New("failed to update batch task on complete")
	}
	markComplete(&mock.task, getResultsFileKey(task))
	return nil
}

func (mock *rmqMock) rejectDelivery(delivery *amqp.Delivery, logger *zerolog.Logger) {
	mock.calls.rejectDelivery = true
}

func (mock *rmqMock) getDeliveriesCh() <-chan amqp.Delivery {
	return nil
}

func (mock *rmqMock) getReqChanErrorsCh() <-chan *amqp.Error {
	return nil
}

func (mock *rmqMock) getRespChanErrorsCh() <-chan *amqp.Error {
	return nil
}

func (mock *rmqMock) notify(task *Task, message Message) error {
	mock.calls.notify = true
	if mock.config.notify.fail {
		return errors.New("failed to send notification")
	}
	mock.message = message
	return nil
}

func (mock *rmqMock) acknowledgeDelivery(delivery *amqp.Delivery) error {
	mock.calls.acknowledgeDelivery = true
	if mock.config.acknowledgeDelivery.fail {
		return errors.New("failed to acknowledge delivery")
	}
	return nil
}

func (mock *s3Mock) getInputData(task *Task) ([]byte, error) {
	mock.calls.getInputData = true
	if mock.config.getInputData.fail {
		return nil, errors.New("mock: failed to load from s3")
	}
	if mock.config.input != nil {
		return mock.config.input, nil
	}
	return []byte(`{"entries":[]}`), nil
}

func (mock *s3Mock) saveResultsFile(task *Task, result string) error {
	mock.calls.saveResultsFile = true
	if mock.config.saveResultsFile.fail {
		return errors.New("failed to upload results")
	}
	if mock.saved == nil {
		mock.saved = make(map[string]string)
	}
	mock.saved[getResultsFileKey(task)] = result
	return nil
}
