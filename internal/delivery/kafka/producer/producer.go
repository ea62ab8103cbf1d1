package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"

	kafka "github.com/theroundhq/marketplace/internal/delivery/kafka"
	"github.com/theroundhq/marketplace/pkg/logger"
)

type Producer interface {
	PublishListingReconciled(ctx context.Context, event kafka.ListingReconciledEvent) error
	PublishListingSoldOut(ctx context.Context, event kafka.ListingSoldOutEvent) error
	Close() error
}

type implProducer struct {
	l    logger.Logger
	prod sarama.SyncProducer
}

func NewProducer(prod sarama.SyncProducer, l logger.Logger) Producer {
	return &implProducer{
		l:    l,
		prod: prod,
	}
}

func (p *implProducer) PublishListingReconciled(ctx context.Context, event kafka.ListingReconciledEvent) error {
	event.Timestamp = time.Now()
	// Partition by series id so consumers see one listing's decrements in order.
	return p.publish(ctx, kafka.TopicListingReconciled, event.TokenSeriesID, event)
}

func (p *implProducer) PublishListingSoldOut(ctx context.Context, event kafka.ListingSoldOutEvent) error {
	event.Timestamp = time.Now()
	return p.publish(ctx, kafka.TopicListingSoldOut, event.TokenSeriesID, event)
}

func (p *implProducer) publish(ctx context.Context, topic, key string, event any) error {
	val, err := json.Marshal(event)
	if err != nil {
		p.l.Errorf(ctx, "delivery.kafka.producer.publish: %v", err)
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(val),
		Headers: []sarama.RecordHeader{
			{
				Key:   []byte("timestamp"),
				Value: []byte(time.Now().Format(time.RFC3339)),
			},
		},
	}

	_, _, err = p.prod.SendMessage(msg)
	return err
}

func (p *implProducer) Close() error {
	return p.prod.Close()
}
