package limiter

import (
	"context"
	"fmt"
	"strconv"
	"time"

	backend "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Redis counts requests per chat in fixed windows shared by every bot instance.
type Redis struct {
	client backend.UniversalClient
	prefix string
	limit  int64
	window time.Duration
}

func NewRedis(client backend.UniversalClient, prefix string, limit int, window time.Duration) *Redis {
	return &Redis{client: client, prefix: prefix, limit: int64(limit), window: window}
}

// Allow records a request for chatID and reports whether it is within the limit.
func (r *Redis) Allow(ctx context.Context, chatID int64) (bool, error) {
	key := r.prefix + "requests:" + strconv.FormatInt(chatID, 10)

	var incr *backend.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		// NX leaves a running window alone and repairs a key that lost its TTL
		pipe.ExpireNX(ctx, key, r.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("redis error counting request: %w", err)
	}

	count := incr.Val()

	if count > r.limit {
		log.Debug().Int64("chatId", chatID).Int64("count", count).Msg("request over limit")
		return false, nil
	}

	return true, nil
}
