package directory

import (
	"context"
	"time"

	"storefront-backend/internal/domain"
	"storefront-backend/pkg/logger"
)

// MockDirectory stands in for the customer service: it answers every term
// with three company names after a fixed latency.
type MockDirectory struct {
	latency time.Duration
}

func NewMockDirectory(latency time.Duration) domain.CustomerDirectory {
	return &MockDirectory{latency: latency}
}

func (d *MockDirectory) FindCustomers(ctx context.Context, term string) ([]string, error) {
	logger.WithContext(ctx).Debug().Str("term", term).Msg("Searching customers")

	timer := time.NewTimer(d.latency)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	return []string{
		term + " Company",
		term + " Solutions",
		term + " Corp",
	}, nil
}
