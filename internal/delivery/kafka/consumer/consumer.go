package consumer

import (
	"context"
	"sync"

	"github.com/IBM/sarama"

	"github.com/theroundhq/marketplace/internal/delivery/kafka"
	"github.com/theroundhq/marketplace/internal/service"
	"github.com/theroundhq/marketplace/pkg/logger"
)

// Consumer drains purchase confirmations pushed by providers. It is the
// third confirmation path next to the claim endpoint and the webhook; all
// three converge on the same reconciliation pipeline.
type Consumer struct {
	consGr     sarama.ConsumerGroup
	listingSvc service.ListingService
	l          logger.Logger
	wg         sync.WaitGroup
}

func NewConsumer(consGr sarama.ConsumerGroup, listingSvc service.ListingService, l logger.Logger) *Consumer {
	return &Consumer{
		consGr:     consGr,
		listingSvc: listingSvc,
		l:          l,
	}
}

func (c *Consumer) Start(ctx context.Context) error {
	topics := []string{kafka.TopicPurchaseConfirmed}

	c.wg.Go(func() {
		for {
			if err := c.consGr.Consume(ctx, topics, c); err != nil {
				c.l.Errorf(ctx, "delivery.kafka.consumer.Start: %v", err)
			}

			if ctx.Err() != nil {
				c.l.Infof(ctx, "delivery.kafka.consumer.Start: %v", ctx.Err())
				return
			}
		}
	})

	c.wg.Go(func() {
		for err := range c.consGr.Errors() {
			c.l.Errorf(ctx, "delivery.kafka.consumer.Start: %v", err)
		}
	})

	c.l.Infof(ctx, "Consumer is consuming topics: %v", topics)
	return nil
}

func (c *Consumer) Close() error {
	if err := c.consGr.Close(); err != nil {
		return err
	}

	c.wg.Wait()
	return nil
}

func (c *Consumer) Setup(sarama.ConsumerGroupSession) error {
	c.l.Debugf(context.Background(), "Consumer group session started")
	return nil
}

func (c *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	c.l.Debugf(context.Background(), "Consumer group session ended")
	return nil
}

func (c *Consumer) ConsumeClaim(ss sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}

			retry, err := c.processMessage(ss.Context(), message)
			if err != nil {
				c.l.Errorf(ss.Context(), "delivery.kafka.consumer.ConsumeClaim: topic %s offset %d: %v",
					message.Topic, message.Offset, err)
				if retry {
					// Leave the offset unmarked so a rebalance or
					// restart redelivers the confirmation.
					continue
				}
			}

			ss.MarkMessage(message, "")

		case <-ss.Context().Done():
			return nil
		}
	}
}

func (c *Consumer) processMessage(ctx context.Context, msg *sarama.ConsumerMessage) (retry bool, err error) {
	switch msg.Topic {
	case kafka.TopicPurchaseConfirmed:
		return c.HandlePurchaseConfirmed(ctx, msg)
	default:
		c.l.Warnf(ctx, "delivery.kafka.consumer: unknown topic %s", msg.Topic)
		return false, nil
	}
}
