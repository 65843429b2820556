package host

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/dshills/deckmacro/internal/input/inject"
	"github.com/dshills/deckmacro/internal/input/replay"
	"github.com/dshills/deckmacro/internal/macro"
)

// ==================== Message Tests ====================

func TestDecodeMessage(t *testing.T) {
	msg, err := DecodeMessage([]byte(`{
		"event": "run",
		"action": "wheel",
		"context": "btn-7",
		"parameters": {"Key": "Shift___16", "MousWheelClicks": 3, "RightAlt": true}
	}`))
	require.NoError(t, err)

	assert.Equal(t, EventRun, msg.Event)
	assert.Equal(t, "wheel", msg.Action)
	assert.Equal(t, "btn-7", msg.Context)
	assert.Equal(t, macro.Params{
		"Key":             "Shift___16",
		"MousWheelClicks": "3",
		"RightAlt":        "true",
	}, msg.Params)
}

func TestDecodeMessageMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{"event":`},
		{"array", `["run"]`},
		{"no event", `{"action":"keyboard"}`},
		{"numeric event", `{"event":3}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeMessage([]byte(tt.data))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestDecodeMessageWithoutParameters(t *testing.T) {
	msg, err := DecodeMessage([]byte(`{"event":"titleRequested","parameters":[1,2]}`))
	require.NoError(t, err)
	assert.Empty(t, msg.Params)
}

func TestEncode(t *testing.T) {
	data, err := encodeSetTitle("btn-1", `Control+"C" active`)
	require.NoError(t, err)
	assert.Equal(t, EventSetTitle, gjson.GetBytes(data, "event").Str)
	assert.Equal(t, "btn-1", gjson.GetBytes(data, "context").Str)
	assert.Equal(t, `Control+"C" active`, gjson.GetBytes(data, "title").Str)

	data, err = encodeImageChanged()
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"imageChanged"}`, string(data))
}

// ==================== Client Tests ====================

// fakeHost is a websocket server standing in for the host application.
type fakeHost struct {
	srv   *httptest.Server
	conns chan *websocket.Conn
}

func newFakeHost(t *testing.T) *fakeHost {
	t.Helper()
	h := &fakeHost{conns: make(chan *websocket.Conn, 1)}
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	h.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		h.conns <- conn
	}))
	t.Cleanup(h.srv.Close)
	return h
}

func (h *fakeHost) url() string {
	return "ws" + strings.TrimPrefix(h.srv.URL, "http")
}

func (h *fakeHost) accept(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case conn := <-h.conns:
		t.Cleanup(func() { conn.Close() })
		return conn
	case <-time.After(2 * time.Second):
		t.Fatal("client did not connect")
		return nil
	}
}

func readEvent(t *testing.T, conn *websocket.Conn) gjson.Result {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	return gjson.ParseBytes(data)
}

type runCall struct {
	kind   macro.ActionKind
	params macro.Params
}

// fakeEngine records calls.
type fakeEngine struct {
	mu       sync.Mutex
	runs     []runCall
	notifier func()
}

func (e *fakeEngine) Run(kind macro.ActionKind, p macro.Params) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.runs = append(e.runs, runCall{kind, p})
	return nil
}

func (e *fakeEngine) Label(kind macro.ActionKind, p macro.Params) string {
	return p["Key"] + " " + string(kind)
}

func (e *fakeEngine) SetNotifier(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notifier = fn
}

func (e *fakeEngine) snapshot() ([]runCall, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]runCall(nil), e.runs...), e.notifier
}

func startClient(t *testing.T, url string, engine Engine) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	c := NewClient(url, engine)
	go func() { done <- c.Run(ctx) }()
	t.Cleanup(cancel)
	return cancel, done
}

func TestClientDispatchesRun(t *testing.T) {
	host := newFakeHost(t)
	engine := &fakeEngine{}
	startClient(t, host.url(), engine)
	conn := host.accept(t)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("garbage")))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"run","action":"dial"}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"event":"run","action":"keyboard","context":"c1","parameters":{"Key":"A"}}`)))

	require.Eventually(t, func() bool {
		runs, _ := engine.snapshot()
		return len(runs) == 1
	}, 2*time.Second, 10*time.Millisecond)

	runs, _ := engine.snapshot()
	assert.Equal(t, macro.ActionKeyboard, runs[0].kind)
	assert.Equal(t, macro.Params{"Key": "A"}, runs[0].params)
}

func TestClientAnswersTitleRequest(t *testing.T) {
	host := newFakeHost(t)
	startClient(t, host.url(), &fakeEngine{})
	conn := host.accept(t)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"event":"titleRequested","action":"wheel","context":"c2","parameters":{"Key":"Shift"}}`)))

	reply := readEvent(t, conn)
	assert.Equal(t, EventSetTitle, reply.Get("event").Str)
	assert.Equal(t, "c2", reply.Get("context").Str)
	assert.Equal(t, "Shift wheel", reply.Get("title").Str)
}

func TestClientForwardsImageChanged(t *testing.T) {
	host := newFakeHost(t)
	engine := &fakeEngine{}
	startClient(t, host.url(), engine)
	conn := host.accept(t)

	var notify func()
	require.Eventually(t, func() bool {
		_, notify = engine.snapshot()
		return notify != nil
	}, 2*time.Second, 10*time.Millisecond)

	notify()
	assert.Equal(t, EventImageChanged, readEvent(t, conn).Get("event").Str)
}

func TestClientStopsOnCancel(t *testing.T) {
	host := newFakeHost(t)
	engine := &fakeEngine{}
	cancel, done := startClient(t, host.url(), engine)
	host.accept(t)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	_, notify := engine.snapshot()
	assert.Nil(t, notify)
}

func TestClientReportsHostDisconnect(t *testing.T) {
	host := newFakeHost(t)
	_, done := startClient(t, host.url(), &fakeEngine{})
	conn := host.accept(t)

	require.NoError(t, conn.Close())
	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after disconnect")
	}
}

func TestClientDialError(t *testing.T) {
	c := NewClient("ws://127.0.0.1:1/none", &fakeEngine{})
	err := c.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dialing host")
}

func TestClientImageChangedWhileDisconnected(t *testing.T) {
	c := NewClient("ws://127.0.0.1:1/none", &fakeEngine{})
	c.ImageChanged()
	assert.ErrorIs(t, c.enqueue([]byte("x")), ErrNotConnected)
}

func TestClientWithEngine(t *testing.T) {
	host := newFakeHost(t)
	rec := inject.NewRecorder()
	engine := macro.New(replay.New(rec, replay.WithTickSpacing(0)))
	defer engine.Close()

	startClient(t, host.url(), engine)
	conn := host.accept(t)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"event":"run","action":"keyboard","context":"c3","parameters":{"Key":"F5___116","Repeat":"true","RepeatInterval":"10"}}`)))
	assert.Equal(t, EventImageChanged, readEvent(t, conn).Get("event").Str)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"event":"titleRequested","action":"keyboard","context":"c3","parameters":{"Key":"F5___116","Repeat":"true","RepeatInterval":"10"}}`)))
	assert.Equal(t, "F5 active", readEvent(t, conn).Get("title").Str)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"event":"run","action":"keyboard","context":"c4","parameters":{"Key":"Control+S"}}`)))
	require.Eventually(t, func() bool { return rec.Len() == 4 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"down:LControl", "down:S", "up:S", "up:LControl"}, rec.Strings())
}
