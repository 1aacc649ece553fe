package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/blackjack/internal/server"
)

// ServeCmd runs the WebSocket table server.
type ServeCmd struct {
	Config   string `kong:"short='c',default='blackjack.hcl',help='Path to HCL configuration file'"`
	Addr     string `kong:"short='a',help='Server address to bind to (overrides config)'"`
	LogLevel string `kong:"short='l',help='Log level (overrides config)'"`
}

func (c *ServeCmd) Run() error {
	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return err
	}
	if c.Addr != "" {
		host, portStr, err := net.SplitHostPort(c.Addr)
		if err != nil {
			return fmt.Errorf("invalid addr %q: %w", c.Addr, err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid port %q: %w", portStr, err)
		}
		cfg.Server.Address = host
		cfg.Server.Port = port
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}

	logger := log.New(os.Stderr)
	switch cfg.Server.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	srv, err := server.NewServer(cfg, logger, quartz.NewReal())
	if err != nil {
		return err
	}

	logger.Info("starting blackjack server", "tables", len(cfg.Tables))

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return err
	case s := <-sig:
		logger.Info("shutting down", "signal", s)
		return srv.Stop()
	}
}
