package kafka

import (
	"encoding/json"

	basekafka "ms-tripbooking/internal/kafka"
	"ms-tripbooking/internal/models"
)

// Publisher streams vendor onboarding events for downstream consumers
// (notifications, catalog warmers).
type Publisher struct {
	Producer *basekafka.Producer
	Topic    string
}

func NewPublisher(producer *basekafka.Producer, topic string) *Publisher {
	return &Publisher{Producer: producer, Topic: topic}
}

func (p *Publisher) PublishVendorApproved(app models.VendorApplication) error {
	msgBytes, err := json.Marshal(app)
	if err != nil {
		return err
	}
	return p.Producer.Publish(p.Topic, app.ApplicationID, msgBytes)
}
