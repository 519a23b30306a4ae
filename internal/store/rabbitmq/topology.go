package rabbitmq

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

// JobMessage is the body of every message on the jobs queue.
type JobMessage struct {
	JobID string `json:"job_id"`
}

func DeadLetterQueue(queue string) string { return queue + ".dlq" }

// DeclareTopology declares the main queue and its dead-letter queue.
// Publisher and worker must declare with identical arguments.
func DeclareTopology(ch *amqp.Channel, queue string) error {
	dlqQ := DeadLetterQueue(queue)

	// DLQ
	if _, err := ch.QueueDeclare(
		dlqQ,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false,
		nil,
	); err != nil {
		return err
	}

	// Main queue: dead-letter to DLQ on reject/nack(requeue=false)
	_, err := ch.QueueDeclare(
		queue,
		true,
		false,
		false,
		false,
		mainQueueArgs(queue),
	)
	return err
}

func mainQueueArgs(queue string) amqp.Table {
	return amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": DeadLetterQueue(queue),
	}
}
