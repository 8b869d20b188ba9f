// Package ws carries boundary calls between the bridge and the engine over a
// websocket.
//
// The engine dials the link's endpoint. Inbound envelopes are posted to the
// event loop and handed to the bridge there; outbound calls from the bridge
// are written straight to the connection. Only one engine is attached at a
// time: a new connection replaces the old one.
package ws

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dshills/runebridge/internal/bridge"
	"github.com/dshills/runebridge/internal/logging"
)

// Sentinel errors for the websocket link.
var (
	// ErrNotAttached is returned by outbound calls when no engine is
	// connected.
	ErrNotAttached = errors.New("engine not attached")

	// ErrMalformedEnvelope is returned for inbound messages that are not a
	// call envelope.
	ErrMalformedEnvelope = errors.New("malformed envelope")

	// ErrNoDispatcher is returned when the link serves before Bind.
	ErrNoDispatcher = errors.New("no dispatcher bound")
)

// Dispatcher receives inbound calls on the event loop.
type Dispatcher interface {
	Dispatch(name string, rawArgs []byte) error
}

// Poster runs functions on the event loop.
type Poster interface {
	Post(fn func()) bool
}

// Config configures a Link.
type Config struct {
	// ReadLimit caps one inbound message in bytes. Zero means no limit.
	ReadLimit int64

	// WriteTimeout bounds each outbound write.
	WriteTimeout time.Duration

	Logger *logging.Logger
}

// Link is the engine endpoint and the bridge.Engine that writes to it.
type Link struct {
	cfg      Config
	loop     Poster
	log      *logging.Logger
	upgrader websocket.Upgrader

	mu         sync.Mutex
	dispatcher Dispatcher
	session    *session
	onAttach   []func()
	onDetach   []func()
}

var _ bridge.Engine = (*Link)(nil)

// NewLink creates a link that posts inbound calls to loop.
func NewLink(cfg Config, loop Poster) *Link {
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	return &Link{
		cfg:  cfg,
		loop: loop,
		log:  cfg.Logger.WithComponent("ws"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Bind sets the inbound call target.
func (l *Link) Bind(d Dispatcher) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dispatcher = d
}

// OnAttach registers fn to run on the event loop when an engine connects.
func (l *Link) OnAttach(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onAttach = append(l.onAttach, fn)
}

// OnDetach registers fn to run on the event loop when the attached engine
// disconnects.
func (l *Link) OnDetach(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onDetach = append(l.onDetach, fn)
}

// Attached reports whether an engine is connected.
func (l *Link) Attached() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.session != nil
}

// ServeHTTP upgrades the request and serves the engine until it disconnects.
func (l *Link) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l.mu.Lock()
	dispatcher := l.dispatcher
	l.mu.Unlock()
	if dispatcher == nil {
		http.Error(w, ErrNoDispatcher.Error(), http.StatusServiceUnavailable)
		return
	}

	conn, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		l.log.Warn("upgrade failed for %s: %v", r.RemoteAddr, err)
		return
	}
	if l.cfg.ReadLimit > 0 {
		conn.SetReadLimit(l.cfg.ReadLimit)
	}

	s := &session{conn: conn, writeTimeout: l.cfg.WriteTimeout}
	l.attach(s, r.RemoteAddr)
	defer l.detach(s)

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && !s.isReplaced() {
				l.log.Warn("engine read failed: %v", err)
			}
			return
		}

		env, err := ParseEnvelope(payload)
		if err != nil {
			l.log.Warn("discarding message from engine: %v", err)
			continue
		}

		if !l.loop.Post(func() {
			// Dispatch reports its own failures to the user.
			_ = dispatcher.Dispatch(env.Call, env.Args)
		}) {
			return
		}
	}
}

func (l *Link) attach(s *session, remote string) {
	l.mu.Lock()
	prev := l.session
	l.session = s
	hooks := append([]func(){}, l.onAttach...)
	l.mu.Unlock()

	if prev != nil {
		l.log.Info("engine connection from %s replaces the previous one", remote)
		prev.replace()
	} else {
		l.log.Info("engine attached from %s", remote)
	}
	for _, fn := range hooks {
		l.loop.Post(fn)
	}
}

func (l *Link) detach(s *session) {
	s.close()

	l.mu.Lock()
	if l.session != s {
		l.mu.Unlock()
		return
	}
	l.session = nil
	hooks := append([]func(){}, l.onDetach...)
	l.mu.Unlock()

	l.log.Info("engine detached")
	for _, fn := range hooks {
		l.loop.Post(fn)
	}
}

// Close disconnects the attached engine, if any.
func (l *Link) Close() error {
	l.mu.Lock()
	s := l.session
	l.mu.Unlock()
	if s != nil {
		s.goingAway()
	}
	return nil
}

func (l *Link) send(call string, args ...any) error {
	env, err := NewEnvelope(call, args...)
	if err != nil {
		return err
	}

	l.mu.Lock()
	s := l.session
	l.mu.Unlock()
	if s == nil {
		return ErrNotAttached
	}
	return s.write(env)
}

// RequestSelect implements bridge.Engine.
func (l *Link) RequestSelect(entityID string) error {
	return l.send(bridge.CallRequestSelectEntity, entityID)
}

// SetProperty implements bridge.Engine.
func (l *Link) SetProperty(entityID, componentID, key, raw string) error {
	return l.send(bridge.CallSetComponentProperty, entityID, componentID, key, raw)
}

// MoveSelected implements bridge.Engine.
func (l *Link) MoveSelected(dx, dy float64) error {
	return l.send(bridge.CallMoveSelected, dx, dy)
}

// Save implements bridge.Engine.
func (l *Link) Save() error {
	return l.send(bridge.CallSaveScene)
}

// Resize implements bridge.Engine.
func (l *Link) Resize() error {
	return l.send(bridge.CallResize)
}

// OverrideAssetPath implements bridge.Engine.
func (l *Link) OverrideAssetPath(path string) error {
	return l.send(bridge.CallOverrideAssetPath, path)
}
