package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/tartampluch/go-addressbook/internal/config"
)

// main delegates to runMain so that deferred calls (log file close) run before os.Exit.
func main() {
	os.Exit(runMain())
}

// runMain wires signals, parses the command line and maps the outcome to an exit code.
func runMain() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c := newCLI(os.Stdin, os.Stdout)
	defer c.close()

	if err := c.rootCommand().ExecuteContext(ctx); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging installs the default JSON logger. Logs go to the cache directory;
// in debug mode they are mirrored to stderr since stdout belongs to the assistant.
func setupLogging(debugMode bool) io.Closer {
	var writers []io.Writer
	var logFile *os.File

	if debugMode {
		writers = append(writers, os.Stderr)
	}

	if logPath, err := getLogFilePath(); err == nil {
		// O_TRUNC resets logs on restart to prevent indefinite growth.
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}

	out := io.Discard
	if len(writers) > 0 {
		out = io.MultiWriter(writers...)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(out, opts)))

	if logFile == nil {
		return nil
	}
	return logFile
}

// getLogFilePath determines the platform-specific cache directory for logs.
func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, config.LogFileName), nil
}
