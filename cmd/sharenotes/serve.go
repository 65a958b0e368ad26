package main

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httpConsole "sharenotes/internal/client/adapters/http"
	"sharenotes/pkg/logger"
	"sharenotes/pkg/shutdown"
)

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the local JSON console over the note views",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			log := logger.Log(ctx)

			log.Info(ctx, LogConsoleStarted,
				zap.String("api_base_url", c.cfg.API.GetBaseURL()),
				zap.String("log_level", c.cfg.Logging.Level),
				zap.String("startup_time", time.Now().Format(time.RFC3339)))

			limiter, attempts, err := c.newLimiter(ctx)
			if err != nil {
				return err
			}

			life, stop := context.WithCancel(ctx)
			defer stop()

			log.Info(ctx, LogInitHTTPServer)
			app := fiber.New(fiber.Config{
				ReadTimeout:  c.cfg.HTTP.ReadTimeout,
				WriteTimeout: c.cfg.HTTP.WriteTimeout,
			})

			handler := httpConsole.NewHandler(life, httpConsole.Deps{
				Store:    c.store,
				Users:    c.api,
				Limiter:  limiter,
				Account:  c.account,
				Location: c.cfg.API.GetLocation(),
				Dismiss:  c.cfg.Access.Dismiss,

				ConsoleToken: c.cfg.HTTP.Token,
			})
			httpConsole.SetupRouter(app, handler, c.metrics)

			log.Info(ctx, LogStartingHTTP, zap.String("address", c.cfg.HTTP.GetAddress()))
			go func() {
				if err := app.Listen(c.cfg.HTTP.GetAddress()); err != nil {
					log.Error(ctx, ErrStartHTTPServer, zap.Error(err))
					stop()
				}
			}()

			shutdown.Wait(life, c.cfg.Shutdown.GetTimeout(),
				// Остановка HTTP сервера.
				func(ctx context.Context) error {
					log.Info(ctx, LogStoppingHTTP)
					return app.Shutdown()
				},
				// Закрытие кэша попыток доступа.
				func(ctx context.Context) error {
					log.Info(ctx, LogClosingCache)
					return attempts.Close()
				},
			)
			stop()

			log.Info(ctx, LogConsoleShutdownDone)
			return nil
		},
	}
}
