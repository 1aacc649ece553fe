// Package server hosts blackjack tables over WebSocket. Each table
// serialises engine access through a single goroutine; the server layer
// only manages connections, configuration, and decision timeouts.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
)

// Server represents the WebSocket server
type Server struct {
	addr        string
	upgrader    websocket.Upgrader
	connections map[*Connection]bool
	tables      map[string]*Table
	logger      *log.Logger
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewServer creates a server hosting the configured tables. The clock is
// injectable so tests can drive act timeouts.
func NewServer(cfg *Config, logger *log.Logger, clock quartz.Clock) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		addr: cfg.GetServerAddress(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// For development, allow all origins
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[*Connection]bool),
		tables:      make(map[string]*Table),
		logger:      logger.WithPrefix("server"),
		ctx:         ctx,
		cancel:      cancel,
	}

	for _, tc := range cfg.Tables {
		table, err := NewTable(tc, *cfg.Server, logger, clock)
		if err != nil {
			cancel()
			return nil, err
		}
		s.tables[tc.Name] = table
	}
	return s, nil
}

// Table returns a table by name. An empty name returns the sole table
// when only one is configured.
func (s *Server) Table(name string) *Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if name == "" && len(s.tables) == 1 {
		for _, t := range s.tables {
			return t
		}
	}
	return s.tables[name]
}

// Start starts the table loops and serves WebSocket connections.
func (s *Server) Start() error {
	for _, table := range s.tables {
		table.Start()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	s.logger.Info("starting WebSocket server", "addr", s.addr)
	return http.ListenAndServe(s.addr, mux)
}

// Stop stops the server and all tables.
func (s *Server) Stop() error {
	s.cancel()

	s.mu.Lock()
	for conn := range s.connections {
		_ = conn.Close()
	}
	for _, table := range s.tables {
		table.Stop()
	}
	s.mu.Unlock()
	return nil
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("failed to upgrade connection", "error", err)
		return
	}

	conn := NewConnection(ws, s, s.logger)
	s.mu.Lock()
	s.connections[conn] = true
	s.mu.Unlock()

	s.logger.Debug("client connected", "remote", ws.RemoteAddr())
	conn.Start()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
