package port

import (
	"context"

	"otcledger/internal/domain"
)

// Publisher delivers notifications to the external indexer.
type Publisher interface {
	Publish(ctx context.Context, e domain.Event) error
}
