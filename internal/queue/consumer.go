package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// HandlerFunc executes one task.
type HandlerFunc func(ctx context.Context, params map[string]string) error

// ErrUnknownTask is returned by Dispatch for a task name with no handler.
var ErrUnknownTask = errors.New("unknown task")

// Dispatcher routes tasks to handlers by name.
type Dispatcher struct {
	handlers map[string]HandlerFunc
}

// NewDispatcher returns an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]HandlerFunc)}
}

// Handle registers fn for task name, replacing any previous handler.
func (d *Dispatcher) Handle(name string, fn HandlerFunc) {
	d.handlers[name] = fn
}

// Dispatch decodes body and runs the matching handler.
func (d *Dispatcher) Dispatch(ctx context.Context, body []byte) (string, error) {
	var task Task
	if err := json.Unmarshal(body, &task); err != nil {
		return "", fmt.Errorf("unmarshal: %w", err)
	}
	fn, ok := d.handlers[task.Name]
	if !ok {
		return task.Name, fmt.Errorf("%q: %w", task.Name, ErrUnknownTask)
	}
	return task.Name, fn(ctx, task.Params)
}

// Consumer reads tasks from RabbitMQ and hands them to a Dispatcher.
type Consumer struct {
	url        string
	dispatcher *Dispatcher
	log        zerolog.Logger
}

// NewConsumer returns a consumer for the broker at url.
func NewConsumer(url string, d *Dispatcher, log zerolog.Logger) *Consumer {
	return &Consumer{url: url, dispatcher: d, log: log}
}

// Run connects to the broker and consumes until ctx is cancelled,
// reconnecting with exponential backoff when the connection drops.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn().Err(err).Dur("retry_in", backoff).Msg("task-consumer: failed to dial broker")
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn().Err(err).Msg("task-consumer: consume loop ended; reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(10, 0, false); err != nil {
		c.log.Warn().Err(err).Msg("task-consumer: set QoS failed")
	}

	if _, err := ch.QueueDeclare(TaskQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(TaskQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.handle(ctx, d)
		}
	}
}

// Acknowledger is the subset of amqp.Delivery used to settle a message.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	c.settle(ctx, d.Body, d.Redelivered, d)
}

// settle runs the task and acks it.  A failed first delivery is requeued
// once; a failed redelivery or an undecodable/unknown task is dropped.
func (c *Consumer) settle(ctx context.Context, body []byte, redelivered bool, ack Acknowledger) {
	name, err := c.dispatcher.Dispatch(ctx, body)
	switch {
	case err == nil:
		tasksProcessed.WithLabelValues(name, "ok").Inc()
		_ = ack.Ack(false)
	case name == "" || errors.Is(err, ErrUnknownTask):
		tasksProcessed.WithLabelValues(name, "dropped").Inc()
		c.log.Error().Err(err).Msg("task-consumer: rejecting malformed task")
		_ = ack.Nack(false, false)
	case !redelivered:
		tasksProcessed.WithLabelValues(name, "retry").Inc()
		c.log.Warn().Err(err).Str("task", name).Msg("task-consumer: task failed; requeueing")
		_ = ack.Nack(false, true)
	default:
		tasksProcessed.WithLabelValues(name, "failed").Inc()
		c.log.Error().Err(err).Str("task", name).Msg("task-consumer: task failed after retry; dropping")
		_ = ack.Nack(false, false)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
