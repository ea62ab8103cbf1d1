// Pushes synthetic purchase confirmations onto the Kafka topic so the
// reconciliation path can be exercised without a chain watcher. Transaction
// hashes are random, so every confirmation resolves to "transaction not
// found" unless the hash of a real testnet purchase is supplied.
//
// Usage:
//
//	go run scripts/simulate-purchases.go -brokers localhost:9092 -count 50
//	go run scripts/simulate-purchases.go -tx 8t1Pum2qM... -count 3
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const topic = "nft.purchase.confirmed"

type purchaseConfirmed struct {
	TransactionHash string    `json:"transaction_hash"`
	Timestamp       time.Time `json:"timestamp"`
}

var (
	brokers = flag.String("brokers", "localhost:9092", "comma-separated Kafka brokers")
	count   = flag.Int("count", 10, "number of confirmations to push")
	workers = flag.Int("workers", 4, "concurrent publishers")
	txHash  = flag.String("tx", "", "fixed transaction hash; duplicates test the idempotency guard")
)

func main() {
	flag.Parse()

	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Return.Successes = true

	prod, err := sarama.NewSyncProducer(strings.Split(*brokers, ","), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create producer: %v\n", err)
		os.Exit(1)
	}
	defer prod.Close()

	jobs := make(chan string)
	g, _ := errgroup.WithContext(context.Background())

	for i := 0; i < *workers; i++ {
		g.Go(func() error {
			for hash := range jobs {
				payload, err := json.Marshal(purchaseConfirmed{
					TransactionHash: hash,
					Timestamp:       time.Now(),
				})
				if err != nil {
					return err
				}

				partition, offset, err := prod.SendMessage(&sarama.ProducerMessage{
					Topic: topic,
					Key:   sarama.StringEncoder(hash),
					Value: sarama.ByteEncoder(payload),
				})
				if err != nil {
					return fmt.Errorf("send %s: %w", hash, err)
				}
				fmt.Printf("pushed %s -> partition %d offset %d\n", hash, partition, offset)
			}
			return nil
		})
	}

	for i := 0; i < *count; i++ {
		hash := *txHash
		if hash == "" {
			hash = uuid.New().String()
		}
		jobs <- hash
	}
	close(jobs)

	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "simulation failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("pushed %d confirmations to %s\n", *count, topic)
}
