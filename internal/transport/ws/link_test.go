package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/runebridge/internal/bridge"
	"github.com/dshills/runebridge/internal/logging"
	"github.com/dshills/runebridge/internal/sched"
)

type inboundCall struct {
	name string
	args string
}

type recordingDispatcher struct {
	calls chan inboundCall
}

func newRecordingDispatcher() *recordingDispatcher {
	return &recordingDispatcher{calls: make(chan inboundCall, 16)}
}

func (d *recordingDispatcher) Dispatch(name string, rawArgs []byte) error {
	d.calls <- inboundCall{name: name, args: string(rawArgs)}
	return nil
}

func (d *recordingDispatcher) next(t *testing.T) inboundCall {
	t.Helper()
	select {
	case c := <-d.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("no inbound call dispatched")
		return inboundCall{}
	}
}

type fixture struct {
	link       *Link
	dispatcher *recordingDispatcher
	srv        *httptest.Server
	loop       *sched.Loop

	mu      sync.Mutex
	events  []string
	changed chan struct{}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	loop := sched.NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = loop.Run(ctx) }()

	f := &fixture{
		loop:       loop,
		dispatcher: newRecordingDispatcher(),
		changed:    make(chan struct{}, 16),
	}
	f.link = NewLink(Config{ReadLimit: 1 << 16, Logger: logging.NewNull()}, loop)
	f.link.Bind(f.dispatcher)
	f.link.OnAttach(func() { f.record("attach") })
	f.link.OnDetach(func() { f.record("detach") })

	mux := http.NewServeMux()
	mux.Handle("/engine", f.link)
	f.srv = httptest.NewServer(mux)

	t.Cleanup(func() {
		_ = f.link.Close()
		f.srv.Close()
		cancel()
		loop.Close()
	})
	return f
}

func (f *fixture) record(ev string) {
	f.mu.Lock()
	f.events = append(f.events, ev)
	f.mu.Unlock()
	f.changed <- struct{}{}
}

func (f *fixture) waitEvents(t *testing.T, n int) []string {
	t.Helper()
	for {
		f.mu.Lock()
		got := append([]string(nil), f.events...)
		f.mu.Unlock()
		if len(got) >= n {
			return got
		}
		select {
		case <-f.changed:
		case <-time.After(2 * time.Second):
			t.Fatalf("expected %d link events, got %v", n, got)
		}
	}
}

func (f *fixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/engine"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if resp != nil {
		resp.Body.Close()
	}
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env Envelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func TestEnvelope(t *testing.T) {
	env, err := NewEnvelope(bridge.CallMoveSelected, 0.25, -0.5)
	require.NoError(t, err)
	data, err := json.Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{"call":"move_selected","args":[0.25,-0.5]}`, string(data))

	env, err = NewEnvelope(bridge.CallSaveScene)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(env.Args))

	parsed, err := ParseEnvelope([]byte(`{"call":"set_status","args":[4]}`))
	require.NoError(t, err)
	assert.Equal(t, bridge.CallSetStatus, parsed.Call)
	assert.Equal(t, "[4]", string(parsed.Args))

	_, err = ParseEnvelope([]byte(`{"args":[]}`))
	assert.ErrorIs(t, err, ErrMalformedEnvelope)
	_, err = ParseEnvelope([]byte(`not json`))
	assert.ErrorIs(t, err, ErrMalformedEnvelope)
}

func TestLink_OutboundWithoutEngine(t *testing.T) {
	link := NewLink(Config{}, sched.NewLoop())

	assert.False(t, link.Attached())
	assert.ErrorIs(t, link.Save(), ErrNotAttached)
	assert.ErrorIs(t, link.RequestSelect("e1"), ErrNotAttached)
}

func TestLink_RejectsBeforeBind(t *testing.T) {
	link := NewLink(Config{}, sched.NewLoop())
	rec := httptest.NewRecorder()
	link.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/engine", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLink_RoundTrip(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t)
	assert.Equal(t, []string{"attach"}, f.waitEvents(t, 1))
	require.True(t, f.link.Attached())

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"call":"select_entity","args":[null]}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`garbage`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"call":"set_status","args":[2]}`)))

	assert.Equal(t, inboundCall{name: bridge.CallSelectEntity, args: "[null]"}, f.dispatcher.next(t))
	assert.Equal(t, inboundCall{name: bridge.CallSetStatus, args: "[2]"}, f.dispatcher.next(t), "malformed envelopes are skipped")

	require.NoError(t, f.link.SetProperty("e1", "c1", "speed", "4.5"))
	env := readEnvelope(t, conn)
	assert.Equal(t, bridge.CallSetComponentProperty, env.Call)
	assert.JSONEq(t, `["e1","c1","speed","4.5"]`, string(env.Args))

	require.NoError(t, f.link.OverrideAssetPath("/srv/assets"))
	env = readEnvelope(t, conn)
	assert.Equal(t, bridge.CallOverrideAssetPath, env.Call)
	assert.JSONEq(t, `["/srv/assets"]`, string(env.Args))

	require.NoError(t, f.link.Resize())
	assert.Equal(t, bridge.CallResize, readEnvelope(t, conn).Call)
}

func TestLink_DetachOnDisconnect(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t)
	f.waitEvents(t, 1)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))

	assert.Equal(t, []string{"attach", "detach"}, f.waitEvents(t, 2))
	assert.False(t, f.link.Attached())
	assert.ErrorIs(t, f.link.MoveSelected(0.1, 0.1), ErrNotAttached)
}

func TestLink_NewConnectionReplacesOld(t *testing.T) {
	f := newFixture(t)
	first := f.dial(t)
	f.waitEvents(t, 1)

	second := f.dial(t)
	assert.Equal(t, []string{"attach", "attach"}, f.waitEvents(t, 2))

	require.NoError(t, first.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := first.ReadMessage()
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, websocket.ClosePolicyViolation, closeErr.Code)

	require.NoError(t, f.link.Save())
	assert.Equal(t, bridge.CallSaveScene, readEnvelope(t, second).Call)

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.NotContains(t, f.events, "detach", "replaced sessions do not detach the new engine")
}
