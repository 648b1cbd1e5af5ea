package session

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/telestore/telestore/internal/clock"
	"github.com/telestore/telestore/internal/config"
	"github.com/telestore/telestore/internal/session/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Cfg   config.Config
	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  domain.Repository
}

// Store loads and persists visitor state keyed by an opaque ULID token.
type Store struct {
	cfg   config.Config
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  domain.Repository
}

func NewStore(p Params) *Store {
	return &Store{
		cfg:   p.Cfg,
		db:    p.DB,
		log:   p.Log.Named("session.store"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Store) ttl() time.Duration {
	return time.Duration(s.cfg.SessionTTL) * time.Second
}

// NewToken issues a fresh session token. ULIDs sort by creation time, which
// keeps the sessions index append-mostly.
func (s *Store) NewToken() string {
	return ulid.MustNew(ulid.Timestamp(s.clock.Now()), rand.Reader).String()
}

// Load returns the state stored under token, or (nil, ErrNotFound) when the
// token is unknown or expired.
func (s *Store) Load(ctx context.Context, token string) (*domain.State, error) {
	sess, err := s.repo.Find(ctx, s.db, token, s.clock.Now())
	if err != nil {
		return nil, err
	}
	var state domain.State
	if err := json.Unmarshal(sess.Data, &state); err != nil {
		// Corrupt row, treat as a missing session and let the caller reissue.
		s.log.Warn("dropping undecodable session", zap.String("token", token), zap.Error(err))
		_ = s.repo.Delete(ctx, s.db, token)
		return nil, domain.ErrNotFound
	}
	return &state, nil
}

// Save persists state under token, sliding the expiry forward.
func (s *Store) Save(ctx context.Context, token string, state *domain.State) (time.Time, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return time.Time{}, err
	}
	now := s.clock.Now()
	expiresAt := now.Add(s.ttl())
	err = s.repo.Save(ctx, s.db, &domain.Session{
		Token:     token,
		Data:      data,
		ExpiresAt: expiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return time.Time{}, err
	}
	return expiresAt, nil
}

func (s *Store) Destroy(ctx context.Context, token string) error {
	return s.repo.Delete(ctx, s.db, token)
}

// DeleteExpired removes sessions past their expiry. Run by the janitor.
func (s *Store) DeleteExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, s.db, s.clock.Now())
}
