package worker

import (
	"encoding/json"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
	"petrovich.ru/petrovich/rmq"
)

type rmqTransactions interface {
	notify(task *Task, message Message) error
	acknowledgeDelivery(delivery *amqp.Delivery) error
	rejectDelivery(delivery *amqp.Delivery, logger *zerolog.Logger)
	getDeliveriesCh() <-chan amqp.Delivery
	getReqChanErrorsCh() <-chan *amqp.Error
	getRespChanErrorsCh() <-chan *amqp.Error
	close()
}

type rmqClientWrapper struct {
	rmqClient *rmq.Client
	sender    string
}

func (wrapper *rmqClientWrapper) close() {
	wrapper.rmqClient.Close()
}

func (wrapper *rmqClientWrapper) getDeliveriesCh() <-chan amqp.Delivery {
	return wrapper.rmqClient.Deliveries
}

func (wrapper *rmqClientWrapper) getReqChanErrorsCh() <-chan *amqp.Error {
	return wrapper.rmqClient.ReqChanErrors
}

func (wrapper *rmqClientWrapper) getRespChanErrorsCh() <-chan *amqp.Error {
	return wrapper.rmqClient.RespChanErrors
}

func (wrapper *rmqClientWrapper) notify(task *Task, message Message) error {
	b, err := notification(message, wrapper.sender)
	if err != nil {
		return err
	}
	return wrapper.rmqClient.SendNotification(amqp.Publishing{
		ContentType:   task.delivery.ContentType,
		CorrelationId: task.delivery.CorrelationId,
		Body:          b,
	})
}

// notification answers with the incoming message signed by this worker.
func notification(message Message, sender string) ([]byte, error) {
	message.Sender = sender
	return json.Marshal(message)
}

func (wrapper *rmqClientWrapper) acknowledgeDelivery(delivery *amqp.Delivery) error {
	return delivery.Ack(false)
}

// rejectDelivery requeues a delivery once and drops it on the second failure.
func (wrapper *rmqClientWrapper) rejectDelivery(delivery *amqp.Delivery, logger *zerolog.Logger) {
	requeue := !delivery.Redelivered
	if requeue {
		logger.Info().Msg("Requeuing delivery as it has not been redelivered yet")
	} else {
		logger.Info().Msg("Rejecting delivery as it already has been redelivered")
	}
	if err := delivery.Reject(requeue); err != nil {
		logger.Err(err).Bool("requeue", requeue).Msg("Failed to reject delivery")
	}
}
