package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/segmentio/kafka-go"

	"ms-tripbooking/internal/models"
)

type Consumer struct {
	reader *kafka.Reader
}

// NewConsumer creates a Kafka consumer for the given topic and group.
func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{reader: reader}
}

// Start consumes booking lifecycle events until the context is cancelled.
func (c *Consumer) Start(ctx context.Context, handler func(booking models.Booking)) {
	fmt.Println("Kafka consumer started...")

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("Error reading message: %v\n", err)
			continue
		}

		var booking models.Booking
		if err := json.Unmarshal(msg.Value, &booking); err != nil {
			log.Printf("Failed to unmarshal booking event: %v\n", err)
			continue
		}

		log.Printf("Received booking event: ID=%s status=%s", booking.BookingID, booking.BookingStatus)
		handler(booking)
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
