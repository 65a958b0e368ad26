package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"sharenotes/pkg/logger"
)

// Константы для переменных окружения.
const (
	EnvLoggerMode  = "SHARENOTES_LOGGER_MODE"
	EnvLoggerLevel = "SHARENOTES_LOGGER_LEVEL"
)

// Константы для сообщений об ошибках.
const (
	ErrInitLogger           = "failed to initialize logger"
	ErrSyncLogger           = "failed to sync logger"
	ErrLoadConfig           = "failed to load configuration"
	ErrInitLoggerWithConfig = "failed to initialize logger with configuration settings"
	ErrResolveAccount       = "failed to resolve account"
	ErrCreateRedisClient    = "failed to create Redis client"
	ErrStartHTTPServer      = "failed to start HTTP server"
	ErrCommandFailed        = "command failed"
)

// Константы для игнорируемых ошибок.
const (
	ErrSyncStderr = "sync /dev/stderr: invalid argument"
	ErrSyncStdout = "sync /dev/stdout: invalid argument"
)

// Константы для сообщений сервиса.
const (
	LogConsoleStarted      = "console started"
	LogConsoleShutdownDone = "console shutdown complete"
	LogStoppingHTTP        = "stopping HTTP server"
	LogInitCache           = "initializing cache"
	LogInitHTTPServer      = "initializing HTTP server"
	LogStartingHTTP        = "starting HTTP server"
	LogClosingCache        = "closing cache"
	LogAccountless         = "no account configured, saving is disabled"
)

func main() {
	env := logger.Development
	if strings.ToLower(os.Getenv(EnvLoggerMode)) == "production" {
		env = logger.Production
	}

	log, err := logger.NewLogger(env, os.Getenv(EnvLoggerLevel))
	if err != nil {
		panic(ErrInitLogger + ": " + err.Error())
	}
	logger.SetGlobalLogger(log)

	ctx, _ := logger.WithRequestID(context.Background(), "")

	cli := newCLI(os.Stdin, os.Stdout)
	exitCode := 0
	if err := cli.root().ExecuteContext(ctx); err != nil {
		if _, writeErr := fmt.Fprintf(os.Stderr, "%s: %v\n", ErrCommandFailed, err); writeErr != nil {
			panic(writeErr)
		}
		exitCode = 1
	}

	syncLogger(cli.logger(log))

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

// syncLogger сбрасывает буферы логгера, игнорируя ошибки sync для консоли.
func syncLogger(log *logger.Logger) {
	if err := log.Sync(); err != nil {
		errMsg := err.Error()
		if strings.Contains(errMsg, ErrSyncStderr) || strings.Contains(errMsg, ErrSyncStdout) {
			return
		}
		if _, writeErr := fmt.Fprintf(os.Stderr, "%s: %v\n", ErrSyncLogger, err); writeErr != nil {
			panic(writeErr)
		}
	}
}
