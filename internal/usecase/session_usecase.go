package usecase

import (
	"context"
	"fmt"
	"time"

	"storefront-backend/config"
	"storefront-backend/internal/domain"
	"storefront-backend/pkg/cache"
	"storefront-backend/pkg/logger"
	"storefront-backend/pkg/metrics"
	"storefront-backend/pkg/utils"

	"github.com/google/uuid"
)

const sessionKeyPrefix = "session:"

// Session is one visitor's search box and cart. The two never share state.
type Session struct {
	ID        string          `json:"sessionId"`
	Search    *SearchPipeline `json:"-"`
	Cart      *CartStore      `json:"-"`
	CreatedAt time.Time       `json:"createdAt"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

// Close tears down the search pipeline. The cart holds no resources.
func (s *Session) Close() {
	s.Search.Close()
}

type SessionUsecase struct {
	store   cache.CacheService
	lookup  domain.CustomerLookup
	cfg     *config.Config
	metrics *metrics.Metrics
}

// NewSessionUsecase keeps sessions in store, which must not be shared with
// other users of the cache: its eviction hook is taken over to close
// sessions when they are ended or expire.
func NewSessionUsecase(store cache.CacheService, lookup domain.CustomerLookup, cfg *config.Config, m *metrics.Metrics) *SessionUsecase {
	if m == nil {
		m = metrics.New(nil)
	}
	u := &SessionUsecase{
		store:   store,
		lookup:  lookup,
		cfg:     cfg,
		metrics: m,
	}
	store.OnEvicted(func(key string, value interface{}) {
		if sess, ok := value.(*Session); ok {
			sess.Close()
			u.metrics.Sessions.Ended()
			logger.Debug().Str("session_id", sess.ID).Msg("Session closed")
		}
	})
	return u
}

// Create starts a session and returns it with a signed token for later calls.
func (u *SessionUsecase) Create(ctx context.Context) (*Session, string, error) {
	id := uuid.NewString()
	token, expiresAt, err := utils.GenerateSessionToken(id, u.cfg.SessionTTL)
	if err != nil {
		return nil, "", fmt.Errorf("issue session token: %w", err)
	}

	sessLog := logger.WithSessionID(*logger.WithContext(ctx), id)

	pipeline := NewSearchPipeline(u.lookup, u.cfg.SearchDebounce, u.cfg.SearchMinLength, u.metrics.Search).
		WithLogger(&sessLog)
	pipeline.Subscribe(func(state domain.SearchState) {
		sessLog.Debug().
			Str("term", state.Term).
			Bool("loading", state.Loading).
			Int("results", len(state.Results)).
			Msg("Search state changed")
	})

	cartMetrics := u.metrics.Cart
	cart := NewCartStore(
		LogCartChanges(&sessLog),
		func(op domain.CartOp, _ domain.CartState) { cartMetrics.IncMutation(string(op)) },
	)

	sess := &Session{
		ID:        id,
		Search:    pipeline,
		Cart:      cart,
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
	}
	u.store.Set(sessionKeyPrefix+id, sess, u.cfg.SessionTTL)
	u.metrics.Sessions.Started()

	sessLog.Info().Time("expires_at", expiresAt).Msg("Session created")
	return sess, token, nil
}

func (u *SessionUsecase) Get(ctx context.Context, id string) (*Session, error) {
	if val, found := u.store.Get(sessionKeyPrefix + id); found {
		if sess, ok := val.(*Session); ok {
			return sess, nil
		}
	}
	return nil, domain.ErrSessionNotFound
}

// End removes the session and closes it. Ending an unknown session is a no-op.
func (u *SessionUsecase) End(ctx context.Context, id string) {
	u.store.Delete(sessionKeyPrefix + id)
}

// Shutdown closes every live session. Used on process exit.
func (u *SessionUsecase) Shutdown() {
	for key, val := range u.store.Items() {
		if _, ok := val.(*Session); ok {
			u.store.Delete(key)
		}
	}
}
