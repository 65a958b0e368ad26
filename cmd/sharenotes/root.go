package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"sharenotes/internal/client/adapters/auth"
	"sharenotes/internal/client/adapters/cache"
	"sharenotes/internal/client/adapters/rest"
	"sharenotes/internal/client/app/access"
	"sharenotes/internal/client/app/store"
	"sharenotes/internal/client/config"
	"sharenotes/internal/client/domain/entities"
	"sharenotes/internal/client/metrics"
	portcache "sharenotes/internal/client/ports/cache"
	"sharenotes/pkg/logger"
)

// ErrRequestFailed возвращается, когда хранилище записало ошибку запроса.
var ErrRequestFailed = errors.New("request failed")

// ErrInvalidNoteID возвращается для нечислового идентификатора заметки.
var ErrInvalidNoteID = errors.New("invalid note id")

// cli хранит флаги и зависимости, общие для всех команд.
type cli struct {
	in     *bufio.Reader
	stdin  io.Reader
	out    io.Writer
	errOut io.Writer

	configPath string
	output     string

	cfg     *config.Config
	log     *logger.Logger
	metrics *metrics.Metrics
	api     *rest.Client
	store   *store.Store
	account entities.Account
}

func newCLI(in io.Reader, out io.Writer) *cli {
	return &cli{
		in:     bufio.NewReader(in),
		stdin:  in,
		out:    out,
		errOut: os.Stderr,
	}
}

func (c *cli) root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sharenotes",
		Short: "Client for the notes REST API",
		Long: `sharenotes lists, shows, edits and deletes notes of the configured account
and opens password protected public notes.
Configuration is read from an optional YAML file and SHARENOTES_* variables.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}
	cmd.SetOut(c.out)
	cmd.SetErr(c.errOut)

	cmd.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "Path to the YAML configuration file")
	cmd.PersistentFlags().StringVarP(&c.output, "output", "o", formatTable, "Output format: table, json or yaml")

	cmd.AddCommand(
		c.listCmd(),
		c.getCmd(),
		c.createCmd(),
		c.updateCmd(),
		c.patchCmd(),
		c.deleteCmd(),
		c.publicCmd(),
		c.serveCmd(),
	)
	return cmd
}

// setup загружает конфигурацию и собирает зависимости команды.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	log := logger.Log(ctx)

	if err := checkFormat(c.output); err != nil {
		return err
	}

	cfg, err := config.Load(ctx, c.configPath)
	if err != nil {
		log.Error(ctx, ErrLoadConfig, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrLoadConfig, err)
	}

	var sinks []zapcore.WriteSyncer
	if cfg.Logging.File != "" {
		sinks = append(sinks, logger.RotatingSink(cfg.Logging.File,
			cfg.Logging.MaxSizeMB, cfg.Logging.MaxBackups, cfg.Logging.MaxAgeDays))
	}
	finalLogger, err := logger.NewLogger(cfg.Logging.GetEnvironment(), cfg.Logging.Level, sinks...)
	if err != nil {
		log.Error(ctx, ErrInitLoggerWithConfig, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrInitLoggerWithConfig, err)
	}
	logger.SetGlobalLogger(finalLogger)
	c.log = finalLogger

	account, err := auth.ResolveAccount(&cfg.API)
	switch {
	case errors.Is(err, auth.ErrNoAccount):
		finalLogger.Warn(ctx, LogAccountless)
	case err != nil:
		finalLogger.Error(ctx, ErrResolveAccount, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrResolveAccount, err)
	}

	c.cfg = cfg
	c.account = account
	c.metrics = metrics.New()
	c.api = rest.NewClient(&cfg.API, &cfg.Resilience, rest.WithCircuitObserver(c.metrics))
	c.store = store.New(c.api,
		store.WithObserver(c.metrics),
		store.WithRefreshTimeout(cfg.API.RefreshTimeout))
	return nil
}

// logger возвращает логгер из конфигурации или fallback, если команда не дошла до setup.
func (c *cli) logger(fallback *logger.Logger) *logger.Logger {
	if c.log != nil {
		return c.log
	}
	return fallback
}

// openCache открывает Redis, если он включен, иначе кэш в памяти процесса.
func (c *cli) openCache(ctx context.Context) (portcache.Cache, error) {
	logger.Log(ctx).Info(ctx, LogInitCache, zap.Bool("redis", c.cfg.Redis.Enabled))
	if !c.cfg.Redis.Enabled {
		return cache.NewMemoryCache(c.cfg.Redis.DefaultTTL), nil
	}
	redisCache, err := cache.NewRedisCache(ctx, &c.cfg.Redis)
	if err != nil {
		logger.Log(ctx).Error(ctx, ErrCreateRedisClient, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrCreateRedisClient, err)
	}
	return redisCache, nil
}

func (c *cli) newLimiter(ctx context.Context) (*access.Limiter, portcache.Cache, error) {
	attempts, err := c.openCache(ctx)
	if err != nil {
		return nil, nil, err
	}
	return access.NewLimiter(attempts, &c.cfg.Access, access.WithObserver(c.metrics)), attempts, nil
}

// stateError превращает ошибку, записанную хранилищем, в ошибку команды.
func (c *cli) stateError() error {
	st := c.store.Snapshot()
	if st.ErrorMessage == "" {
		return nil
	}
	if st.ErrorStatus != 0 {
		return fmt.Errorf("%w: %s (status %d)", ErrRequestFailed, st.ErrorMessage, st.ErrorStatus)
	}
	return fmt.Errorf("%w: %s", ErrRequestFailed, st.ErrorMessage)
}

// readSecret читает пароль: с терминала без эха, иначе строку из stdin.
func (c *cli) readSecret(prompt string) (string, error) {
	if f, ok := c.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if _, err := fmt.Fprint(c.errOut, prompt); err != nil {
			return "", fmt.Errorf("write prompt: %w", err)
		}
		secret, err := term.ReadPassword(int(f.Fd()))
		if _, writeErr := fmt.Fprintln(c.errOut); writeErr != nil {
			return "", fmt.Errorf("write prompt: %w", writeErr)
		}
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(secret), nil
	}
	return c.readLine()
}

func (c *cli) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func parseNoteID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNoteID, raw)
	}
	return id, nil
}
