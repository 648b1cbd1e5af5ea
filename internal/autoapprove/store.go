package autoapprove

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/telestore/telestore/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("autoapprove",
	fx.Provide(NewClient),
	fx.Provide(NewStore),
)

func NewClient(cfg config.Config, log *zap.Logger) *redis.Client {
	if cfg.RedisURL == "" {
		return nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Warn("invalid redis url, auto-approve disabled", zap.Error(err))
		return nil
	}
	return redis.NewClient(opts)
}

// Store writes auto-approve markers an external bot process reads to admit
// users into channels. This side of the interface is write-only.
type Store struct {
	client *redis.Client
	log    *zap.Logger
}

func NewStore(client *redis.Client, log *zap.Logger) *Store {
	return &Store{
		client: client,
		log:    log.Named("autoapprove"),
	}
}

func Key(channelID, tgID int64) string {
	return fmt.Sprintf("auto:%d:%d", channelID, tgID)
}

// Approve registers the (channel, user) pair. ttlSeconds semantics mirror
// purchases: nil = unlimited, 0 = no-op, positive = marker expires with the
// access. Failures are logged and swallowed; delivery must not block on this.
func (s *Store) Approve(ctx context.Context, channelID, tgID int64, ttlSeconds *int64) {
	if s == nil || s.client == nil {
		return
	}
	key := Key(channelID, tgID)

	var err error
	switch {
	case ttlSeconds == nil:
		err = s.client.Set(ctx, key, "1", 0).Err()
	case *ttlSeconds > 0:
		err = s.client.Set(ctx, key, "1", time.Duration(*ttlSeconds)*time.Second).Err()
	default:
		return
	}
	if err != nil {
		s.log.Warn("auto-approve write failed",
			zap.Int64("channel_id", channelID),
			zap.Int64("tg_id", tgID),
			zap.Error(err),
		)
	}
}
