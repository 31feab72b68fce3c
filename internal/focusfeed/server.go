// Package focusfeed publishes the viewer's focus state to websocket clients
// so an external panel can follow the active message.
package focusfeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/jask/convolens/internal/viewsync"
)

// Message is one broadcast frame.
type Message struct {
	Type         string    `json:"type"`
	Timestamp    time.Time `json:"timestamp"`
	Conversation string    `json:"conversation,omitempty"`
	ActiveItemID string    `json:"active_item_id"`
	Syncing      bool      `json:"syncing"`
}

const typeFocus = "focus"

const writeTimeout = 5 * time.Second

// Server accepts websocket clients on /ws and sends them every focus change.
// A client that connects receives the latest state first.
type Server struct {
	addr     string
	log      *slog.Logger
	listener net.Listener
	server   *http.Server

	clients   map[*websocket.Conn]struct{}
	clientsMu sync.RWMutex

	latest   Message
	latestMu sync.Mutex

	broadcast chan Message
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// New returns a server for addr (host:port, port 0 picks a free one).
func New(addr string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:      addr,
		log:       log,
		clients:   make(map[*websocket.Conn]struct{}),
		broadcast: make(chan Message, 64),
		latest:    Message{Type: typeFocus},
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("focus feed listen %s: %w", s.addr, err)
	}
	s.listener = ln

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.wg.Add(2)
	go s.broadcastLoop()
	go func() {
		defer s.wg.Done()
		s.log.Info("focus feed listening", "addr", ln.Addr().String())
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("focus feed serve", "err", err)
		}
	}()
	return nil
}

// Stop closes every client and shuts the HTTP server down.
func (s *Server) Stop() error {
	s.cancel()
	s.clientsMu.Lock()
	for conn := range s.clients {
		_ = conn.Close(websocket.StatusGoingAway, "shutting down")
		delete(s.clients, conn)
	}
	s.clientsMu.Unlock()

	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("focus feed shutdown: %w", err)
		}
	}
	s.wg.Wait()
	return nil
}

// Addr returns the bound address once started.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

func (s *Server) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// Publish queues state for broadcast. It never blocks; when the queue is
// full the frame is dropped, and late joiners still get the latest state.
func (s *Server) Publish(conversation string, st viewsync.FocusState) {
	msg := Message{
		Type:         typeFocus,
		Timestamp:    time.Now().UTC(),
		Conversation: conversation,
		ActiveItemID: string(st.ActiveItemID),
		Syncing:      st.Syncing,
	}
	s.latestMu.Lock()
	s.latest = msg
	s.latestMu.Unlock()

	select {
	case s.broadcast <- msg:
	case <-s.ctx.Done():
	default:
		s.log.Warn("focus feed queue full, dropping frame")
	}
}

// Follow publishes every change of r. conversation is called on each change
// to label the frame. The returned func stops following.
func (s *Server) Follow(r viewsync.FocusReader, conversation func() string) func() {
	label := func() string {
		if conversation == nil {
			return ""
		}
		return conversation()
	}
	s.Publish(label(), r.Snapshot())
	return r.Subscribe(func(st viewsync.FocusState) { s.Publish(label(), st) })
}

func (s *Server) broadcastLoop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			return
		case msg := <-s.broadcast:
			data, err := json.Marshal(msg)
			if err != nil {
				s.log.Error("focus feed marshal", "err", err)
				continue
			}
			s.clientsMu.RLock()
			clients := make([]*websocket.Conn, 0, len(s.clients))
			for conn := range s.clients {
				clients = append(clients, conn)
			}
			s.clientsMu.RUnlock()
			for _, conn := range clients {
				if err := s.write(conn, data); err != nil {
					s.log.Debug("focus feed client write", "err", err)
					s.removeClient(conn)
				}
			}
		}
	}
}

func (s *Server) write(conn *websocket.Conn, data []byte) error {
	ctx, cancel := context.WithTimeout(s.ctx, writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, data)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"localhost:*", "127.0.0.1:*"},
	})
	if err != nil {
		s.log.Debug("focus feed upgrade", "err", err)
		return
	}

	s.latestMu.Lock()
	first := s.latest
	s.latestMu.Unlock()
	if first.Timestamp.IsZero() {
		first.Timestamp = time.Now().UTC()
	}
	data, _ := json.Marshal(first)
	if err := s.write(conn, data); err != nil {
		_ = conn.Close(websocket.StatusInternalError, "")
		return
	}

	s.clientsMu.Lock()
	s.clients[conn] = struct{}{}
	n := len(s.clients)
	s.clientsMu.Unlock()
	s.log.Debug("focus feed client connected", "clients", n)

	// Clients only listen; reading detects disconnects.
	go func() {
		defer s.removeClient(conn)
		for {
			if _, _, err := conn.Read(s.ctx); err != nil {
				return
			}
		}
	}()
}

func (s *Server) removeClient(conn *websocket.Conn) {
	s.clientsMu.Lock()
	_, ok := s.clients[conn]
	delete(s.clients, conn)
	s.clientsMu.Unlock()
	if ok {
		_ = conn.Close(websocket.StatusNormalClosure, "")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.latestMu.Lock()
	active := s.latest.ActiveItemID
	s.latestMu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":         "ok",
		"clients":        s.ClientCount(),
		"active_item_id": active,
	})
}
