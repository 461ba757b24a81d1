package worker

import (
	"time"

	"petrovich.ru/petrovich/s3client"
)

func getResultsFileKey(task *Task) string {
	if task.batchTask.ID != "" {
		return s3client.ResultsKey(task.batchTask.ID)
	}
	return s3client.ResultsKey(task.redisKey)
}

const RFC3339Micro = "2006-01-02T15:04:05.000000-07:00"

func getFormattedNow() *string {
	now := time.Now().UTC().Format(RFC3339Micro)
	return &now
}
