package command

import (
	"context"
	"fmt"
	"picturebot/internal/core/domain"
	"picturebot/internal/core/port"
	"runtime"
	"runtime/debug"
	"runtime/metrics"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Status reports runtime statistics and the manipulations the bot can render.
type Status struct {
	textSender port.TextSender
	methods    []string
	command    string
}

func NewStatus(sender port.TextSender, methods []string, command string) *Status {
	return &Status{textSender: sender, methods: methods, command: command}
}

func (s *Status) GetCommand() string {
	return s.command
}

const kb = 1024
const statusTemplate = `allocated mem: %d KB
goroutines: %d
heap: %d KB
manipulations: %s
compiled with %s for %s-%s`

func (s *Status) Respond(ctx context.Context, _ time.Duration, message *domain.Message) error {
	l := log.With().
		Int("messageId", message.ID).
		Int64("chatId", message.ChatID).
		Str("command", s.GetCommand()).
		Logger()

	l.Info().Msg("handling request")

	data := []metrics.Sample{
		{Name: "/memory/classes/heap/objects:bytes"},
		{Name: "/memory/classes/total:bytes"},
	}
	metrics.Read(data)

	var goos, goarch string
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			switch setting.Key {
			case "GOOS":
				goos = setting.Value
			case "GOARCH":
				goarch = setting.Value
			}
		}
	}

	_, err := s.textSender.SendMessageReply(ctx, message,
		fmt.Sprintf(
			statusTemplate,
			value(data[1])/kb,
			runtime.NumGoroutine(),
			value(data[0])/kb,
			strings.Join(s.methods, ", "),
			runtime.Version(), goos, goarch,
		))

	return err
}

func value(sample metrics.Sample) uint64 {
	if sample.Value.Kind() != metrics.KindUint64 {
		return 0
	}
	return sample.Value.Uint64()
}
