package ui

import (
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/runebridge/internal/attach"
	"github.com/dshills/runebridge/internal/bridge"
	"github.com/dshills/runebridge/internal/config"
	"github.com/dshills/runebridge/internal/input/mouse"
	"github.com/dshills/runebridge/internal/logging"
	"github.com/dshills/runebridge/internal/sched"
)

// SplashDelay is how long the boot splash stays up after loading finishes.
const SplashDelay = time.Second

// statusReady is the set_status code that ends loading.
const statusReady = 4

// Options configures a UI.
type Options struct {
	Layout config.Layout

	// Attach configures the poll that waits for the engine surface.
	Attach attach.Options

	// Post schedules fn on the event loop. When nil, redraws happen
	// synchronously.
	Post func(fn func()) bool

	// OnReload is run by Ctrl+R.
	OnReload func()

	// OnQuit is run by Ctrl+Q and Ctrl+C.
	OnQuit func()

	Logger *logging.Logger
}

// UI draws the bridge state and turns terminal input into bridge calls.
type UI struct {
	screen tcell.Screen
	bridge *bridge.Bridge
	clock  sched.Scheduler
	opts   Options
	log    *logging.Logger

	page     Keymap
	surface  *Surface
	deferred *attach.Queue[KeyHandler]

	layout      Layout
	popOut      bool
	splash      bool
	splashTimer sched.Timer

	hierarchyRows    []hierarchyRow
	inspectorRows    []inspectorRow
	notificationRows []Rect
	saveButton       Rect
	moveHandle       Rect
	editor           *editor

	buttons     tcell.ButtonMask
	drawPending bool
	frames      int
}

// New creates the UI on screen, which must already be initialized.
func New(screen tcell.Screen, b *bridge.Bridge, clock sched.Scheduler, opts Options) *UI {
	u := &UI{
		screen: screen,
		bridge: b,
		clock:  clock,
		opts:   opts,
		log:    opts.Logger.WithComponent("ui"),
		popOut: opts.Layout.PopOut,
		splash: true,
	}

	attachOpts := opts.Attach
	if attachOpts.Logger == nil {
		attachOpts.Logger = opts.Logger
	}
	u.deferred = attach.New[KeyHandler](clock, &u.page, u.locateSurface, attachOpts)

	u.page.Bind(Shortcut(tcell.KeyCtrlS, tcell.ModCtrl, b.Save))
	u.page.Bind(Shortcut(tcell.KeyCtrlR, tcell.ModCtrl, u.reload))
	u.page.Bind(Shortcut(tcell.KeyCtrlQ, tcell.ModCtrl, u.quit))
	u.page.Bind(Shortcut(tcell.KeyCtrlC, tcell.ModCtrl, u.quit))
	u.deferred.AddDeferred(Shortcut(tcell.KeyEnter, tcell.ModAlt, u.TogglePopOut))

	_, _ = b.OnChange().SubscribeFunc(u.onBridgeChange)

	u.relayout()
	return u
}

// Start begins waiting for the engine surface.
func (u *UI) Start() error {
	return u.deferred.Start()
}

// AddDeferred registers a key handler for the page now and for the surface
// once it exists.
func (u *UI) AddDeferred(h KeyHandler) {
	u.deferred.AddDeferred(h)
}

// Attachment returns the state of the surface poll.
func (u *UI) Attachment() attach.State {
	return u.deferred.State()
}

// Surface returns the engine surface, or nil before the first engine
// attaches.
func (u *UI) Surface() *Surface {
	return u.surface
}

// PopOut reports whether the side panels are hidden.
func (u *UI) PopOut() bool {
	return u.popOut
}

// SplashVisible reports whether the boot splash is shown.
func (u *UI) SplashVisible() bool {
	return u.splash
}

// Layout returns the current region placement.
func (u *UI) Layout() Layout {
	return u.layout
}

// Frames returns the number of frames drawn.
func (u *UI) Frames() int {
	return u.frames
}

// EngineAttached creates the surface, or revives it after a reconnect.
func (u *UI) EngineAttached() {
	if u.surface == nil {
		u.surface = &Surface{}
	}
	u.surface.live = true
	u.requestDraw()
}

// EngineDetached marks the surface as no longer rendered.
func (u *UI) EngineDetached() {
	if u.surface != nil {
		u.surface.live = false
		u.surface.focused = false
		u.surface.grabbing = false
	}
	u.bridge.Inspector().PointerUp()
	u.requestDraw()
}

func (u *UI) locateSurface() (attach.Target[KeyHandler], bool) {
	if u.surface == nil || !u.surface.live {
		return nil, false
	}
	return u.surface, true
}

// TogglePopOut shows or hides the side panels.
func (u *UI) TogglePopOut() {
	u.popOut = !u.popOut
	u.relayout()
	u.bridge.Resize()
	u.requestDraw()
}

// SetLayout applies new layout settings, for example after a config reload.
func (u *UI) SetLayout(cfg config.Layout) {
	u.opts.Layout = cfg
	u.relayout()
	u.requestDraw()
}

func (u *UI) relayout() {
	w, h := u.screen.Size()
	u.layout = computeLayout(w, h, u.opts.Layout, u.popOut)
}

func (u *UI) reload() {
	if u.opts.OnReload != nil {
		u.opts.OnReload()
	}
}

func (u *UI) quit() {
	if u.opts.OnQuit != nil {
		u.opts.OnQuit()
	}
}

func (u *UI) onBridgeChange(t bridge.Topic) {
	if t == bridge.TopicStatus && u.bridge.Status() == statusReady && u.splash && u.splashTimer == nil {
		u.splashTimer = u.clock.AfterFunc(SplashDelay, func() {
			u.splash = false
			u.requestDraw()
		})
	}
	if t == bridge.TopicSelection && u.editor != nil && u.editor.entityID != u.bridge.Inspector().EntityID() {
		u.editor = nil
	}
	u.requestDraw()
}

// Close stops the surface poll and the splash timer.
func (u *UI) Close() {
	u.deferred.Stop()
	if u.splashTimer != nil {
		u.splashTimer.Stop()
	}
}

// requestDraw coalesces redraws into one posted task.
func (u *UI) requestDraw() {
	if u.opts.Post == nil {
		u.Draw()
		return
	}
	if u.drawPending {
		return
	}
	u.drawPending = true
	if !u.opts.Post(func() {
		u.drawPending = false
		u.Draw()
	}) {
		u.drawPending = false
	}
}

// Pump reads terminal events and posts them to the loop until the screen is
// finalized.
func (u *UI) Pump(post func(fn func()) bool) {
	for {
		ev := u.screen.PollEvent()
		if ev == nil {
			return
		}
		if !post(func() { u.HandleEvent(ev) }) {
			return
		}
	}
}

// HandleEvent applies one terminal event.
func (u *UI) HandleEvent(ev tcell.Event) {
	switch e := ev.(type) {
	case *tcell.EventKey:
		u.handleKey(e)
	case *tcell.EventMouse:
		u.handleMouse(e)
	case *tcell.EventResize:
		u.screen.Sync()
		u.relayout()
		u.bridge.Resize()
		u.requestDraw()
	}
}

func (u *UI) handleKey(ev *tcell.EventKey) {
	if u.editor != nil {
		switch u.editor.apply(ev) {
		case editChanged:
			u.requestDraw()
			return
		case editCommit:
			ed := u.editor
			u.editor = nil
			// Rejections are reported through the notification queue.
			_ = u.bridge.CommitProperty(ed.componentID, ed.key, ed.text())
			u.requestDraw()
			return
		case editCancel:
			u.editor = nil
			u.requestDraw()
			return
		}
	}
	if u.surface != nil && u.surface.live && u.surface.focused && u.surface.keys.Handle(ev) {
		return
	}
	u.page.Handle(ev)
}

func (u *UI) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	buttons := ev.Buttons() & (tcell.ButtonPrimary | tcell.ButtonSecondary | tcell.ButtonMiddle)
	prev := u.buttons
	u.buttons = buttons

	me := mouse.Event{Position: mouse.Position{X: x, Y: y}, Button: convertButton(buttons)}
	switch {
	case buttons != 0 && prev == 0:
		me.Action = mouse.ActionPress
	case buttons == 0 && prev != 0:
		me.Action = mouse.ActionRelease
		me.Button = convertButton(prev)
	default:
		me.Action = mouse.ActionMove
	}

	switch me.Action {
	case mouse.ActionPress:
		u.press(me)
	case mouse.ActionMove:
		if buttons&tcell.ButtonPrimary != 0 {
			u.drag(me)
		}
	case mouse.ActionRelease:
		u.release()
	}
}

func (u *UI) press(me mouse.Event) {
	x, y := me.Position.X, me.Position.Y
	if u.surface != nil {
		u.surface.focused = false
	}

	switch {
	case me.Button == mouse.ButtonLeft && u.clickNotification(x, y):
	case u.layout.TopBar.Contains(x, y):
		if me.Button == mouse.ButtonLeft && u.saveButton.Contains(x, y) {
			u.bridge.Save()
		}
	case u.layout.Hierarchy.Contains(x, y):
		if me.Button == mouse.ButtonLeft {
			u.clickHierarchy(y)
		}
	case u.layout.Inspector.Contains(x, y):
		if me.Button == mouse.ButtonLeft {
			u.clickInspector(y)
		}
	case u.layout.Surface.Contains(x, y):
		u.pressSurface(me)
	}
	u.requestDraw()
}

func (u *UI) pressSurface(me mouse.Event) {
	if u.surface == nil || !u.surface.live {
		return
	}
	u.surface.focused = true
	u.editor = nil

	switch me.Button {
	case mouse.ButtonRight:
		u.surface.grabbing = true
	case mouse.ButtonLeft:
		if u.moveHandle.Contains(me.Position.X, me.Position.Y) {
			u.bridge.Inspector().PointerDown(u.normalize(me.Position))
		}
	}
}

func (u *UI) drag(me mouse.Event) {
	in := u.bridge.Inspector()
	if in.State() != bridge.StateDragging {
		return
	}
	if err := in.PointerMove(u.normalize(me.Position)); err != nil {
		u.log.Warn("move dropped: %v", err)
	}
}

func (u *UI) release() {
	u.bridge.Inspector().PointerUp()
	if u.surface != nil {
		u.surface.grabbing = false
	}
	u.requestDraw()
}

// normalize maps a cell to viewport fractions of the whole screen, the
// frame the engine reports bounds in.
func (u *UI) normalize(p mouse.Position) mouse.Point {
	return mouse.Normalize(p, u.layout.Width, u.layout.Height)
}

func convertButton(b tcell.ButtonMask) mouse.Button {
	switch {
	case b&tcell.ButtonPrimary != 0:
		return mouse.ButtonLeft
	case b&tcell.ButtonSecondary != 0:
		return mouse.ButtonRight
	case b&tcell.ButtonMiddle != 0:
		return mouse.ButtonMiddle
	default:
		return mouse.ButtonNone
	}
}
