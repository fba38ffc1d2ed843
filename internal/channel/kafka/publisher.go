// Package kafka pushes rate updates to the channel manager over Kafka.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"

	"github.com/avstrong/ratecal/internal/booking"
	"github.com/avstrong/ratecal/internal/logger"
)

type Config struct {
	L       *logger.Logger
	Brokers string
	Topic   string
}

type Publisher struct {
	l        *logger.Logger
	producer sarama.SyncProducer
	topic    string
}

func New(conf Config) (*Publisher, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 5                          //nolint:gomnd
	saramaConfig.Producer.Retry.Backoff = 100 * time.Millisecond //nolint:gomnd
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner
	saramaConfig.Net.DialTimeout = 10 * time.Second //nolint:gomnd

	brokers := strings.Split(conf.Brokers, ",")

	producer, err := sarama.NewSyncProducer(brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	conf.L.LogInfo("Kafka producer connected to %v", brokers)

	return NewWithProducer(conf, producer), nil
}

func NewWithProducer(conf Config, producer sarama.SyncProducer) *Publisher {
	return &Publisher{
		l:        conf.L,
		producer: producer,
		topic:    conf.Topic,
	}
}

// PublishRates sends update keyed by hotel, so updates of one hotel keep their order.
func (p *Publisher) PublishRates(_ context.Context, update *booking.RateUpdate) error {
	payload, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("marshal rate update: %w", err)
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(update.HotelID),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("room-type"), Value: []byte(update.RoomType)},
			{Key: []byte("action"), Value: []byte(update.Action)},
		},
	})
	if err != nil {
		return fmt.Errorf("send rate update to %s: %w", p.topic, err)
	}

	p.l.LogDebugf("Rate update of hotel %s stored at %s/%d/%d", update.HotelID, p.topic, partition, offset)

	return nil
}

func (p *Publisher) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("close kafka producer: %w", err)
	}

	return nil
}
