package service

import (
	"context"
	"picturebot/internal/core/domain"
	"picturebot/internal/core/port"

	"github.com/rs/zerolog/log"
)

const throttled = "Too many requests from this chat, try again in a minute."

// Throttle refuses chats that exceed their request limit. When the limiter fails, requests pass.
type Throttle struct {
	limiter port.RateLimiter
	sender  port.TextSender
}

func NewThrottle(limiter port.RateLimiter, sender port.TextSender) *Throttle {
	return &Throttle{limiter: limiter, sender: sender}
}

func (t *Throttle) IsAuthorized(ctx context.Context, message *domain.Message) bool {
	ok, err := t.limiter.Allow(ctx, message.ChatID)
	if err != nil {
		log.Warn().Err(err).Int64("chatId", message.ChatID).Msg("rate limiter unavailable, allowing request")
		return true
	}

	if ok {
		return true
	}

	log.Info().Int64("chatId", message.ChatID).Msg("throttling chat")

	if _, err := t.sender.SendMessageReply(ctx, message, throttled); err != nil {
		log.Err(err).Msg("failed to send throttle notice")
	}

	return false
}
