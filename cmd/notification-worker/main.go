// Notification worker: follows the booking lifecycle topics and records the
// notifications that would go out to travelers and vendors.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	"ms-tripbooking/internal/config"
	"ms-tripbooking/internal/kafka"
	"ms-tripbooking/internal/logger"
	"ms-tripbooking/internal/models"
)

func main() {
	log := logger.NewLogger()
	defer log.Close()

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	}
	cfg := config.Load()

	if !cfg.Kafka.Enabled || cfg.Kafka.MockMode {
		log.Warn("KAFKA", "Kafka disabled or mocked, nothing to consume")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notices := map[string]string{
		cfg.Kafka.Topics.BookingCreated:   "booking confirmation",
		cfg.Kafka.Topics.BookingCancelled: "cancellation notice",
		cfg.Kafka.Topics.PaymentEvents:    "payment update",
	}

	var wg sync.WaitGroup
	for topic, notice := range notices {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, topic, cfg.Kafka.GroupID)
		defer consumer.Close()

		notice := notice
		wg.Add(1)
		go func() {
			defer wg.Done()
			consumer.Start(ctx, func(booking models.Booking) {
				log.Info("KAFKA", fmt.Sprintf("queueing %s for booking %s (user %s)", notice, booking.BookingID, booking.UserID))
			})
		}()
	}
	log.Info("APP", fmt.Sprintf("Notification worker consuming %d topics as group %s", len(notices), cfg.Kafka.GroupID))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("APP", "Shutting down notification worker")
	cancel()
	wg.Wait()
}
