package cmd

import (
	"context"
	"errors"
	"fmt"
	"picturebot/internal/adapters/handler"
	"picturebot/internal/adapters/http"
	"picturebot/internal/adapters/limiter"
	"picturebot/internal/adapters/sender"
	"picturebot/internal/core/domain/command"
	"picturebot/internal/core/port"
	"picturebot/internal/core/service"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	backend "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var botCommands = []models.BotCommand{
	{Command: "picture", Description: "render a style for the photo: /picture <style>"},
	{Command: "retina", Description: "higher density default image: /retina <style> [2x]"},
	{Command: "styles", Description: "list configured styles"},
	{Command: "status", Description: "runtime statistics"},
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot",
		Long: `Starts the Telegram bot. Send a photo with the caption /picture <style>,
or reply to a photo with /picture or /retina, to receive its variants.

Rendered files, metrics and a health check are served over HTTP on
http.listen. Point storage.base_url at <public address>/variants.`,
		Example: `  # Run with ./config.toml
  picturebot serve

  # Run with a custom config file
  picturebot serve --config /etc/picturebot/config.toml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	log.Info().Msg("starting picturebot...")

	token := viper.GetString("telegram.bot_token")
	if token == "" {
		return errors.New("telegram.bot_token is not configured")
	}

	handlerTimeout, err := time.ParseDuration(viper.GetString("handler.timeout"))
	if err != nil {
		return fmt.Errorf("invalid timeout for handler in config: %w", err)
	}

	stack, err := newPictureStack()
	if err != nil {
		return err
	}

	b, err := bot.New(token, bot.WithDefaultHandler(noOpHandler))
	if err != nil {
		return fmt.Errorf("failed initializing telegram bot: %w", err)
	}

	s := sender.NewTelegram(b)

	authorizer, err := service.NewAuthorizer(s)
	if err != nil {
		return err
	}
	guards := []port.Authorizer{authorizer}

	throttle, closeLimiter, err := newThrottle(s)
	if err != nil {
		return err
	}
	defer closeLimiter()
	if throttle != nil {
		guards = append(guards, throttle)
	}

	commandRegistry := &command.Registry{}
	commandRegistry.Register(command.NewPicture(stack.store, stack.magick, stack.assembler, stack.styles, s, s,
		"/picture"))
	commandRegistry.Register(command.NewRetina(stack.store, stack.magick, stack.assembler, stack.styles,
		stack.replay, s, s, "/retina"))
	commandRegistry.Register(command.NewStyles(stack.styles, s, "/styles"))
	commandRegistry.Register(command.NewStatus(s, stack.registry.Methods(), "/status"))

	commandHandler := handler.NewCommand(commandRegistry, handlerTimeout, guards...)

	b.RegisterHandler(bot.HandlerTypeMessageText, "/", bot.MatchTypePrefix, commandHandler.Handle)
	b.RegisterHandler(bot.HandlerTypePhotoCaption, "/", bot.MatchTypePrefix, commandHandler.Handle)

	if _, err := b.SetMyCommands(ctx, &bot.SetMyCommandsParams{Commands: botCommands}); err != nil {
		log.Warn().Err(err).Msg("failed to publish command list")
	}

	p := pool.New().WithContext(ctx).WithCancelOnError()

	if addr := viper.GetString("http.listen"); addr != "" {
		h := http.NewHandler(viper.GetString("storage.dir"), stack.metrics.Gatherer())
		p.Go(func(ctx context.Context) error {
			return http.Serve(ctx, addr, h)
		})
	}

	p.Go(func(ctx context.Context) error {
		log.Info().Strs("commands", commandRegistry.ListCommands()).Msg("bot listening")
		b.Start(ctx)
		return nil
	})

	return p.Wait()
}

// newThrottle connects the redis rate limiter when redis.addr is set.
func newThrottle(s port.TextSender) (*service.Throttle, func(), error) {
	addr := viper.GetString("redis.addr")
	if addr == "" {
		return nil, func() {}, nil
	}

	window, err := time.ParseDuration(viper.GetString("limiter.window"))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid limiter window in config: %w", err)
	}

	client := backend.NewClient(&backend.Options{
		Addr:     addr,
		Password: viper.GetString("redis.password"),
		DB:       viper.GetInt("redis.db"),
	})

	l := limiter.NewRedis(client, viper.GetString("redis.prefix"), viper.GetInt("limiter.requests"), window)
	log.Info().Str("addr", addr).Int("requests", viper.GetInt("limiter.requests")).Dur("window", window).
		Msg("rate limiting chats")

	return service.NewThrottle(l, s), func() {
		if err := client.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close redis client")
		}
	}, nil
}

func noOpHandler(_ context.Context, _ *bot.Bot, _ *models.Update) {}
