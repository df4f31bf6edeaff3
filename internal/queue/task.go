// Package queue defines the asynchronous tasks exchanged over the message
// broker and the RabbitMQ publisher and consumer that carry them.
package queue

// Task names understood by the consumer.
const (
	TaskSendConfirmationEmail = "send_confirmation_email"
	TaskUpdateFeaturedSpeaker = "update_featured_speaker"
)

// TaskQueueName is the durable queue every task is published to.
const TaskQueueName = "conference.tasks"

// Task is a unit of background work.  Delivery is at-least-once, so handlers
// must tolerate running the same task twice.
type Task struct {
	Name   string            `json:"name"`
	Params map[string]string `json:"params"`
}

// ConfirmationEmailTask is sent after a conference is created.
func ConfirmationEmailTask(email, conferenceInfo string) Task {
	return Task{
		Name: TaskSendConfirmationEmail,
		Params: map[string]string{
			"email":          email,
			"conferenceInfo": conferenceInfo,
		},
	}
}

// FeaturedSpeakerTask asks the worker to recompute a conference's featured
// speaker after a session was added.
func FeaturedSpeakerTask(speaker, conferenceKey string) Task {
	return Task{
		Name: TaskUpdateFeaturedSpeaker,
		Params: map[string]string{
			"speaker":       speaker,
			"conferenceKey": conferenceKey,
		},
	}
}
