package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/vfsd/internal/domain/session"
	"github.com/GriffinCanCode/AgentOS/vfsd/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/vfsd/internal/vfs"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 64
	execTimeout    = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in dev
	},
}

// Message is a client frame
type Message struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`
	Input     string `json:"input,omitempty"`
}

// Recorder receives connection and frame counts (implemented by monitoring.Metrics)
type Recorder interface {
	IncWSConnections()
	DecWSConnections()
	RecordWSMessage(direction, msgType string)
}

type nopRecorder struct{}

func (nopRecorder) IncWSConnections()              {}
func (nopRecorder) DecWSConnections()              {}
func (nopRecorder) RecordWSMessage(string, string) {}

// Handler manages WebSocket connections
type Handler struct {
	store    *vfs.Store
	sessions *session.Manager
	logger   *zap.Logger
	recorder Recorder
}

// NewHandler creates a new WebSocket handler. logger and recorder may be nil.
func NewHandler(store *vfs.Store, sessions *session.Manager, logger *zap.Logger, recorder Recorder) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Handler{
		store:    store,
		sessions: sessions,
		logger:   logger,
		recorder: recorder,
	}
}

// client is one connection's outbound queue. Store listeners enqueue from
// the mutating goroutine, so enqueue never blocks: a full queue drops frames.
type client struct {
	id     string
	mu     sync.Mutex
	closed bool
	out    chan []byte
}

func (c *client) enqueue(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.out <- frame:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.out)
	}
}

// HandleConnection handles WebSocket upgrade and messages
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	cl := &client{id: id.NewConnID().String(), out: make(chan []byte, sendBuffer)}
	logger := h.logger.With(zap.String("conn_id", cl.id))
	h.recorder.IncWSConnections()
	logger.Debug("websocket connected")

	done := make(chan struct{})
	go h.writePump(conn, cl, logger, done)

	unsubscribe := h.store.Subscribe(func(ev vfs.Event) {
		if !h.send(cl, map[string]interface{}{
			"type":      "fs_changed",
			"event":     ev,
			"timestamp": ev.Timestamp.Unix(),
		}) {
			logger.Debug("dropped fs_changed frame", zap.String("op", string(ev.Op)))
		}
	})

	h.send(cl, map[string]interface{}{
		"type":      "system",
		"message":   "Connected to vfsd",
		"conn_id":   cl.id,
		"timestamp": time.Now().Unix(),
	})

	h.readPump(c.Request.Context(), conn, cl, logger)

	unsubscribe()
	cl.close()
	<-done
	conn.Close()
	h.recorder.DecWSConnections()
	logger.Debug("websocket disconnected")
}

func (h *Handler) readPump(ctx context.Context, conn *websocket.Conn, cl *client, logger *zap.Logger) {
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("websocket read error", zap.Error(err))
			}
			return
		}

		var msg Message
		if err := sonic.Unmarshal(data, &msg); err != nil {
			h.recorder.RecordWSMessage("in", "invalid")
			h.sendError(cl, "invalid message: "+err.Error())
			continue
		}
		h.recorder.RecordWSMessage("in", msg.Type)

		switch msg.Type {
		case "exec":
			h.handleExec(ctx, cl, msg)
		case "create_session":
			h.handleCreateSession(cl)
		case "ping":
			h.send(cl, map[string]interface{}{"type": "pong"})
		default:
			h.sendError(cl, "unknown message type")
		}
	}
}

func (h *Handler) writePump(conn *websocket.Conn, cl *client, logger *zap.Logger, done chan<- struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		close(done)
	}()

	for {
		select {
		case frame, ok := <-cl.out:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				logger.Debug("websocket write failed", zap.Error(err))
				// Unblocks the read loop; it then closes cl.out.
				conn.Close()
				for range cl.out {
				}
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.Close()
				for range cl.out {
				}
				return
			}
		}
	}
}

func (h *Handler) handleExec(ctx context.Context, cl *client, msg Message) {
	ctx, cancel := context.WithTimeout(ctx, execTimeout)
	defer cancel()

	exec, err := h.sessions.Execute(ctx, msg.SessionID, msg.Input)
	if err != nil {
		h.sendError(cl, err.Error())
		return
	}
	h.send(cl, map[string]interface{}{
		"type":      "exec_result",
		"execution": exec,
		"timestamp": time.Now().Unix(),
	})
}

func (h *Handler) handleCreateSession(cl *client) {
	info, err := h.sessions.Create()
	if err != nil {
		h.sendError(cl, err.Error())
		return
	}
	h.send(cl, map[string]interface{}{
		"type":      "session_created",
		"session":   info,
		"timestamp": time.Now().Unix(),
	})
}

func (h *Handler) send(cl *client, data map[string]interface{}) bool {
	frame, err := sonic.Marshal(data)
	if err != nil {
		h.logger.Error("failed to encode websocket frame", zap.Error(err))
		return false
	}
	msgType, _ := data["type"].(string)
	if !cl.enqueue(frame) {
		return false
	}
	h.recorder.RecordWSMessage("out", msgType)
	return true
}

func (h *Handler) sendError(cl *client, msg string) bool {
	return h.send(cl, map[string]interface{}{
		"type":      "error",
		"message":   msg,
		"timestamp": time.Now().Unix(),
	})
}
