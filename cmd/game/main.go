package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"os/user"
	"syscall"

	"golang.org/x/term"

	"github.com/tomz197/survival/internal/config"
	"github.com/tomz197/survival/internal/draw"
	"github.com/tomz197/survival/internal/input"
	"github.com/tomz197/survival/internal/loop/client"
	"github.com/tomz197/survival/internal/loop/server"
)

func main() {
	// The terminal belongs to the game; logs only go to LOG_FILE.
	var logOut io.Writer = io.Discard
	if path := config.GetEnv("LOG_FILE", ""); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	logger, err := config.NewLogger(logOut, "game")
	if err != nil {
		logger.Warn("falling back to info level", "err", err)
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to enable raw mode: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gameServer := server.NewServer(logger.WithPrefix("registry"))
	go gameServer.Run(ctx)

	name := "player"
	if u, err := user.Current(); err == nil {
		name = u.Username
	}

	draw.EnterAltScreen(os.Stdout)
	defer draw.ExitAltScreen(os.Stdout)

	c := client.NewClient(gameServer, bufio.NewReader(os.Stdin), os.Stdout, client.ClientOptions{
		Username: name,
		KeyHold:  config.GetEnvDuration("KEY_HOLD", input.DefaultKeyHold),
		Logger:   logger,
	})
	if err := c.Run(ctx); err != nil {
		logger.Error("game error", "err", err)
		draw.ExitAltScreen(os.Stdout)
		_ = term.Restore(fd, oldState)
		fmt.Fprintf(os.Stderr, "game error: %v\n", err)
		os.Exit(1)
	}
}
