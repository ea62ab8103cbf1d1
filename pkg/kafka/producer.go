package kafka

import (
	"fmt"
	"log"

	"github.com/IBM/sarama"
)

type ProducerConfig struct {
	Brokers  []string
	RetryMax int
}

// NewProducer builds an idempotent sync producer. Reconciliation events are
// consumed by downstream settlement jobs, so a broker-side retry must not
// duplicate them. Idempotence requires acks from the full ISR and a single
// in-flight request per connection.
func NewProducer(cfg ProducerConfig) (sarama.SyncProducer, error) {
	prod, err := sarama.NewSyncProducer(cfg.Brokers, newProducerConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	log.Printf("Kafka producer connected to brokers: %v\n", cfg.Brokers)

	return prod, nil
}

func newProducerConfig(cfg ProducerConfig) *sarama.Config {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Version = sarama.V2_8_0_0
	saramaCfg.Producer.Idempotent = true
	saramaCfg.Producer.RequiredAcks = sarama.WaitForAll
	saramaCfg.Producer.Retry.Max = cfg.RetryMax
	saramaCfg.Producer.Return.Successes = true
	saramaCfg.Net.MaxOpenRequests = 1
	return saramaCfg
}
