package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront-backend/internal/domain"
	"storefront-backend/pkg/cache"
	"storefront-backend/pkg/utils"
)

type searchUsecase struct {
	directory domain.CustomerDirectory
	cache     cache.CacheService
	timeout   time.Duration
	cacheTTL  time.Duration
	minLength int
}

// NewSearchUsecase wraps a customer directory with the term rules, a lookup
// timeout and a short-lived result cache.
func NewSearchUsecase(directory domain.CustomerDirectory, cache cache.CacheService, timeout, cacheTTL time.Duration, minLength int) domain.CustomerLookup {
	if minLength <= 0 {
		minLength = domain.DefaultMinTermLength
	}
	return &searchUsecase{
		directory: directory,
		cache:     cache,
		timeout:   timeout,
		cacheTTL:  cacheTTL,
		minLength: minLength,
	}
}

func (u *searchUsecase) Search(ctx context.Context, term string) ([]string, error) {
	term = strings.TrimSpace(term)
	if utils.TrimmedLen(term) < u.minLength {
		return []string{}, nil
	}

	key := "customers:" + term
	if val, found := u.cache.Get(key); found {
		return cloneStrings(val.([]string)), nil
	}

	if u.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.timeout)
		defer cancel()
	}

	results, err := u.directory.FindCustomers(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("customer lookup %q: %w", term, err)
	}
	if results == nil {
		results = []string{}
	}

	u.cache.Set(key, cloneStrings(results), u.cacheTTL)
	return results, nil
}
