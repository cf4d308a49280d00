package ws

import (
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/vfsd/internal/domain/session"
	"github.com/GriffinCanCode/AgentOS/vfsd/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/vfsd/internal/shell"
	"github.com/GriffinCanCode/AgentOS/vfsd/internal/vfs"
)

type countingRecorder struct {
	mu          sync.Mutex
	connections int
	messages    map[string]int
}

func (r *countingRecorder) IncWSConnections() {
	r.mu.Lock()
	r.connections++
	r.mu.Unlock()
}

func (r *countingRecorder) DecWSConnections() {
	r.mu.Lock()
	r.connections--
	r.mu.Unlock()
}

func (r *countingRecorder) RecordWSMessage(direction, msgType string) {
	r.mu.Lock()
	r.messages[direction+":"+msgType]++
	r.mu.Unlock()
}

func (r *countingRecorder) count(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.messages[key]
}

type wsHarness struct {
	store    *vfs.Store
	sessions *session.Manager
	recorder *countingRecorder
	conn     *websocket.Conn
}

func newWSHarness(t *testing.T) *wsHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := vfs.NewStore(vfs.DefaultSeed("Durgas"))
	sessions := session.NewManager(shell.New(store, nil))
	recorder := &countingRecorder{messages: make(map[string]int)}

	router := gin.New()
	router.GET("/stream", NewHandler(store, sessions, nil, recorder).HandleConnection)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	h := &wsHarness{store: store, sessions: sessions, recorder: recorder, conn: conn}
	welcome := h.read(t)
	require.Equal(t, "system", welcome["type"])
	require.NotEmpty(t, welcome["conn_id"])
	return h
}

func (h *wsHarness) read(t *testing.T) map[string]interface{} {
	t.Helper()
	require.NoError(t, h.conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var frame map[string]interface{}
	require.NoError(t, h.conn.ReadJSON(&frame))
	return frame
}

// readType skips frames until one of the given type arrives
func (h *wsHarness) readType(t *testing.T, msgType string) map[string]interface{} {
	t.Helper()
	for i := 0; i < 20; i++ {
		if frame := h.read(t); frame["type"] == msgType {
			return frame
		}
	}
	t.Fatalf("no %s frame received", msgType)
	return nil
}

func (h *wsHarness) write(t *testing.T, msg interface{}) {
	t.Helper()
	require.NoError(t, h.conn.WriteJSON(msg))
}

func TestPingPong(t *testing.T) {
	h := newWSHarness(t)

	h.write(t, Message{Type: "ping"})
	assert.Equal(t, "pong", h.read(t)["type"])
	assert.Equal(t, 1, h.recorder.count("in:ping"))
}

func TestUnknownAndInvalidMessages(t *testing.T) {
	h := newWSHarness(t)

	h.write(t, Message{Type: "bogus"})
	frame := h.read(t)
	assert.Equal(t, "error", frame["type"])
	assert.Equal(t, "unknown message type", frame["message"])

	require.NoError(t, h.conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	frame = h.read(t)
	assert.Equal(t, "error", frame["type"])
	assert.Contains(t, frame["message"], "invalid message")
}

func TestStoreChangesArePushed(t *testing.T) {
	h := newWSHarness(t)

	res := h.store.CreateItem(vfs.KindFolder, "Projects", vfs.Home("Durgas"), "")
	require.True(t, res.Success)

	frame := h.readType(t, "fs_changed")
	event := frame["event"].(map[string]interface{})
	assert.Equal(t, "create", event["op"])
	assert.Equal(t, false, event["undo"])

	require.True(t, h.store.UndoLastOperation().Success)
	frame = h.readType(t, "fs_changed")
	assert.Equal(t, true, frame["event"].(map[string]interface{})["undo"])
}

func TestExecOverSocket(t *testing.T) {
	h := newWSHarness(t)

	h.write(t, Message{Type: "create_session"})
	created := h.readType(t, "session_created")
	sessionID := created["session"].(map[string]interface{})["id"].(string)

	h.write(t, Message{Type: "exec", SessionID: sessionID, Input: "mkdir Projects"})
	changed := h.readType(t, "fs_changed")
	assert.Equal(t, "create", changed["event"].(map[string]interface{})["op"])

	result := h.readType(t, "exec_result")
	exec := result["execution"].(map[string]interface{})
	assert.EqualValues(t, 0, exec["result"].(map[string]interface{})["exit_code"])
	assert.NotNil(t, h.store.GetItemByPath(vfs.Home("Durgas")).ChildByName("Projects"))

	h.write(t, Message{Type: "exec", SessionID: sessionID, Input: "pwd"})
	result = h.readType(t, "exec_result")
	exec = result["execution"].(map[string]interface{})
	assert.Equal(t, "/Users/Durgas", exec["result"].(map[string]interface{})["output"])

	h.write(t, Message{Type: "exec", SessionID: "missing", Input: "ls"})
	frame := h.readType(t, "error")
	assert.Contains(t, frame["message"], session.ErrInvalidID.Error())

	h.write(t, Message{Type: "exec", SessionID: id.NewSessionID().String(), Input: "ls"})
	frame = h.readType(t, "error")
	assert.Contains(t, frame["message"], session.ErrNotFound.Error())
}

func TestConnectionGauge(t *testing.T) {
	h := newWSHarness(t)

	h.recorder.mu.Lock()
	assert.Equal(t, 1, h.recorder.connections)
	h.recorder.mu.Unlock()

	require.NoError(t, h.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))

	assert.Eventually(t, func() bool {
		h.recorder.mu.Lock()
		defer h.recorder.mu.Unlock()
		return h.recorder.connections == 0
	}, 5*time.Second, 10*time.Millisecond)
}
