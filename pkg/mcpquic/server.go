package mcpquic

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/quic-go/quic-go"

	"github.com/hazyhaar/floorspeech/pkg/kit"
)

// Handler serves MCP sessions on QUIC connections accepted by someone else.
// The chassis demuxes by ALPN and hands MCP connections over.
type Handler struct {
	mcpServer *server.MCPServer
	logger    *slog.Logger
	active    atomic.Int64
}

// NewHandler creates an MCP connection handler.
func NewHandler(mcpSrv *server.MCPServer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{mcpServer: mcpSrv, logger: logger}
}

// Active returns the number of sessions currently served.
func (h *Handler) Active() int64 { return h.active.Load() }

// ServeConn handles a single QUIC connection as an MCP session.
func (h *Handler) ServeConn(ctx context.Context, conn *quic.Conn) {
	remote := conn.RemoteAddr().String()

	stream, err := conn.AcceptStream(ctx)
	if err != nil {
		h.logger.Warn("mcp: accept stream failed", "remote", remote, "error", err)
		conn.CloseWithError(ConnErrorProtocolViolation, "stream accept failed")
		return
	}

	if err := ValidateMagicBytes(stream); err != nil {
		h.logger.Warn("mcp: bad preamble", "remote", remote, "error", err)
		stream.CancelWrite(StreamErrorProtocolConfusion)
		stream.CancelRead(StreamErrorProtocolConfusion)
		conn.CloseWithError(ConnErrorProtocolViolation, "invalid magic bytes")
		return
	}

	sess := newSession("quic_"+uuid.NewString()[:8], stream)
	if err := h.mcpServer.RegisterSession(ctx, sess); err != nil {
		h.logger.Error("mcp: session register failed", "session", sess.id, "error", err)
		stream.Close()
		return
	}
	defer h.mcpServer.UnregisterSession(ctx, sess.id)

	h.active.Add(1)
	defer h.active.Add(-1)
	h.logger.Info("mcp session started", "session", sess.id, "remote", remote)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	ctx = kit.WithTransport(ctx, kit.TransportMCPQUIC)
	ctx = h.mcpServer.WithContext(ctx, sess)

	go sess.writeNotifications(ctx)

	if err := h.serveStream(ctx, sess, stream); err != nil {
		if errors.Is(err, ErrMessageTooLarge) {
			stream.CancelRead(StreamErrorMessageTooLarge)
		}
		if ctx.Err() == nil {
			h.logger.Warn("mcp session aborted", "session", sess.id, "error", err)
		}
	}
	stream.Close()
	h.logger.Info("mcp session ended", "session", sess.id, "remote", remote)
}

// serveStream answers newline-delimited JSON-RPC messages until EOF.
func (h *Handler) serveStream(ctx context.Context, sess *session, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), MaxMessageSize)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		response := h.mcpServer.HandleMessage(ctx, json.RawMessage(line))
		if response == nil {
			continue
		}
		if err := sess.send(response); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return ErrMessageTooLarge
		}
		return err
	}
	return nil
}

// session implements server.ClientSession for a single QUIC stream.
type session struct {
	id            string
	notifications chan mcp.JSONRPCNotification
	initialized   atomic.Bool

	mu     sync.Mutex // serializes responses and notifications
	writer io.Writer
}

func newSession(id string, writer io.Writer) *session {
	return &session{
		id:            id,
		notifications: make(chan mcp.JSONRPCNotification, 100),
		writer:        writer,
	}
}

func (s *session) SessionID() string                                   { return s.id }
func (s *session) NotificationChannel() chan<- mcp.JSONRPCNotification { return s.notifications }
func (s *session) Initialize()                                         { s.initialized.Store(true) }
func (s *session) Initialized() bool                                   { return s.initialized.Load() }

// send writes one JSON message followed by a newline.
func (s *session) send(msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.writer.Write(data)
	return err
}

func (s *session) writeNotifications(ctx context.Context) {
	for {
		select {
		case notif := <-s.notifications:
			_ = s.send(notif)
		case <-ctx.Done():
			return
		}
	}
}
