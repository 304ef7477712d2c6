package kafka

import (
	"encoding/json"

	basekafka "ms-tripbooking/internal/kafka"
	"ms-tripbooking/internal/models"
)

// Topics carries the topic names this publisher writes to.
type Topics struct {
	BookingCreated   string
	BookingCancelled string
	PaymentEvents    string
}

// Publisher streams booking lifecycle events for downstream consumers
// (notifications, vendor dashboards).
type Publisher struct {
	Producer *basekafka.Producer
	Topics   Topics
}

func NewPublisher(producer *basekafka.Producer, topics Topics) *Publisher {
	return &Publisher{Producer: producer, Topics: topics}
}

func (p *Publisher) PublishBookingCreated(booking models.Booking) error {
	msgBytes, err := json.Marshal(booking)
	if err != nil {
		return err
	}
	return p.Producer.Publish(p.Topics.BookingCreated, booking.BookingID, msgBytes)
}

func (p *Publisher) PublishBookingCancelled(booking models.Booking) error {
	msgBytes, err := json.Marshal(booking)
	if err != nil {
		return err
	}
	return p.Producer.Publish(p.Topics.BookingCancelled, booking.BookingID, msgBytes)
}

func (p *Publisher) PublishPaymentEvent(booking models.Booking) error {
	msgBytes, err := json.Marshal(booking)
	if err != nil {
		return err
	}
	return p.Producer.Publish(p.Topics.PaymentEvents, booking.BookingID, msgBytes)
}
