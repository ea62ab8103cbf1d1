package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/IBM/sarama"

	"github.com/theroundhq/marketplace/internal/delivery/kafka"
	"github.com/theroundhq/marketplace/internal/models"
	"github.com/theroundhq/marketplace/internal/service"
)

// HandlePurchaseConfirmed reconciles one pushed purchase confirmation.
// The returned retry flag tells the claim loop whether to hold the offset:
// a transaction the ledger has not finalized yet is worth redelivering, a
// malformed or duplicate one is not.
func (c *Consumer) HandlePurchaseConfirmed(ctx context.Context, msg *sarama.ConsumerMessage) (bool, error) {
	var event kafka.PurchaseConfirmedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return false, fmt.Errorf("failed to decode purchase confirmation: %w", err)
	}
	if event.TransactionHash == "" {
		return false, errors.New("purchase confirmation without transaction hash")
	}

	listing, err := c.listingSvc.ReconcilePurchase(ctx, event.TransactionHash, models.PurchaseSourceKafka)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyReconciled):
			c.l.Debugf(ctx, "delivery.kafka.consumer: tx %s already reconciled", event.TransactionHash)
			return false, nil
		case errors.Is(err, service.ErrTransactionNotFound):
			return true, err
		case errors.Is(err, service.ErrMalformedEvent),
			errors.Is(err, service.ErrListingNotFound),
			errors.Is(err, service.ErrListingSoldOut):
			return false, err
		}
		return true, err
	}

	c.l.Infof(ctx, "delivery.kafka.consumer: reconciled tx %s against series %s",
		event.TransactionHash, listing.TokenSeriesID)
	return false, nil
}
