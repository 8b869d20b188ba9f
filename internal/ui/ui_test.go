package ui

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/runebridge/internal/attach"
	"github.com/dshills/runebridge/internal/bridge"
	"github.com/dshills/runebridge/internal/config"
	"github.com/dshills/runebridge/internal/sched"
)

const playerJSON = `{"id":"e1","name":"Player","components":[` +
	`{"id":"c1","name":"transform","properties":{"label":{"String":"hero"},"_handle":{"String":"h"},"speed":{"Number":2.5}}}]}`

const hierarchyJSON = `[{"id":"e1","name":"Player","children":[{"id":"e2","name":"Sword"}]},{"id":"e3","name":"Camera"}]`

type moveCall struct{ dx, dy float64 }

type fakeEngine struct {
	selects []string
	props   [][4]string
	moves   []moveCall
	saves   int
	resizes int
}

func (f *fakeEngine) RequestSelect(id string) error {
	f.selects = append(f.selects, id)
	return nil
}

func (f *fakeEngine) SetProperty(entityID, componentID, key, raw string) error {
	f.props = append(f.props, [4]string{entityID, componentID, key, raw})
	return nil
}

func (f *fakeEngine) MoveSelected(dx, dy float64) error {
	f.moves = append(f.moves, moveCall{dx, dy})
	return nil
}

func (f *fakeEngine) Save() error {
	f.saves++
	return nil
}

func (f *fakeEngine) Resize() error {
	f.resizes++
	return nil
}

func (f *fakeEngine) OverrideAssetPath(string) error { return nil }

// taskQueue stands in for the event loop.
type taskQueue struct {
	tasks []func()
}

func (q *taskQueue) post(fn func()) bool {
	q.tasks = append(q.tasks, fn)
	return true
}

func (q *taskQueue) runOne() bool {
	if len(q.tasks) == 0 {
		return false
	}
	fn := q.tasks[0]
	q.tasks = q.tasks[1:]
	fn()
	return true
}

func (q *taskQueue) flush() {
	for q.runOne() {
	}
}

type fixture struct {
	ui     *UI
	bridge *bridge.Bridge
	engine *fakeEngine
	clock  *sched.Virtual
	screen tcell.SimulationScreen
	loop   *taskQueue

	reloads int
	quits   int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	screen := tcell.NewSimulationScreen("")
	require.NoError(t, screen.Init())
	screen.SetSize(120, 40)
	t.Cleanup(screen.Fini)

	f := &fixture{
		engine: &fakeEngine{},
		clock:  sched.NewVirtual(time.Unix(0, 0)),
		screen: screen,
		loop:   &taskQueue{},
	}
	b, err := bridge.New(bridge.Options{Engine: f.engine, Scheduler: f.clock})
	require.NoError(t, err)
	f.bridge = b

	f.ui = New(screen, b, f.clock, Options{
		Layout:   config.Default().Layout,
		Post:     f.loop.post,
		OnReload: func() { f.reloads++ },
		OnQuit:   func() { f.quits++ },
	})
	t.Cleanup(f.ui.Close)
	return f
}

func (f *fixture) dispatch(t *testing.T, name string, vals ...any) {
	t.Helper()
	raw, err := json.Marshal(vals)
	require.NoError(t, err)
	_ = f.bridge.Dispatch(name, raw)
	f.loop.flush()
}

func (f *fixture) key(k tcell.Key, r rune, mod tcell.ModMask) {
	f.ui.HandleEvent(tcell.NewEventKey(k, r, mod))
	f.loop.flush()
}

func (f *fixture) click(x, y int, button tcell.ButtonMask) {
	f.ui.HandleEvent(tcell.NewEventMouse(x, y, button, tcell.ModNone))
	f.ui.HandleEvent(tcell.NewEventMouse(x, y, tcell.ButtonNone, tcell.ModNone))
	f.loop.flush()
}

func (f *fixture) attachEngine() {
	f.ui.EngineAttached()
	f.loop.flush()
}

func (f *fixture) row(y int) string {
	w, _ := f.screen.Size()
	var sb strings.Builder
	for x := 0; x < w; x++ {
		r, _, _, _ := f.screen.GetContent(x, y) //nolint:staticcheck // GetContent is the correct API
		sb.WriteRune(r)
	}
	return sb.String()
}

func (f *fixture) screenText() string {
	_, h := f.screen.Size()
	rows := make([]string, h)
	for y := range rows {
		rows[y] = f.row(y)
	}
	return strings.Join(rows, "\n")
}

func TestComputeLayout(t *testing.T) {
	cfg := config.Layout{TopBarHeight: 1, HierarchyWidth: 24, InspectorWidth: 32}

	l := computeLayout(120, 40, cfg, false)
	assert.Equal(t, Rect{X: 0, Y: 0, W: 120, H: 1}, l.TopBar)
	assert.Equal(t, Rect{X: 0, Y: 1, W: 120, H: 39}, l.Surface)
	assert.Equal(t, Rect{X: 0, Y: 1, W: 24, H: 39}, l.Hierarchy)
	assert.Equal(t, Rect{X: 88, Y: 1, W: 32, H: 39}, l.Inspector)

	popped := computeLayout(120, 40, cfg, true)
	assert.True(t, popped.Hierarchy.Empty())
	assert.True(t, popped.Inspector.Empty())
	assert.Equal(t, l.Surface, popped.Surface)

	narrow := computeLayout(60, 10, cfg, false)
	assert.Equal(t, 20, narrow.Hierarchy.W, "panels take at most a third of the width")
	assert.Equal(t, 20, narrow.Inspector.W)
}

func TestKeymap_FirstHandlerWins(t *testing.T) {
	var k Keymap
	var calls []string
	k.Bind(Shortcut(tcell.KeyCtrlS, tcell.ModCtrl, func() { calls = append(calls, "save") }))
	k.Bind(Shortcut(tcell.KeyCtrlS, tcell.ModCtrl, func() { calls = append(calls, "shadowed") }))
	k.Bind(nil)

	assert.True(t, k.Handle(tcell.NewEventKey(tcell.KeyCtrlS, 0, tcell.ModCtrl)))
	assert.False(t, k.Handle(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone)))
	assert.Equal(t, []string{"save"}, calls)
	assert.Equal(t, 2, k.Len())
}

func TestUI_TopBar(t *testing.T) {
	f := newFixture(t)
	f.dispatch(t, bridge.CallSetSceneName, "Level 1")
	f.dispatch(t, bridge.CallAddLoadingTask, "Shaders")
	f.dispatch(t, bridge.CallAddLoadingTask, "Shaders")

	top := f.row(0)
	assert.Contains(t, top, "Level 1")
	assert.Contains(t, top, "Save")
	assert.Contains(t, top, "Shaders (2)")

	saveX := strings.Index(top, "Save")
	f.click(saveX, 0, tcell.ButtonPrimary)
	assert.Equal(t, 1, f.engine.saves)
}

func TestUI_SplashHidesOneSecondAfterReady(t *testing.T) {
	f := newFixture(t)
	assert.True(t, f.ui.SplashVisible())

	f.dispatch(t, bridge.CallSetStatus, 3)
	assert.Contains(t, f.screenText(), "Loading shards...")

	f.dispatch(t, bridge.CallSetStatus, 4)
	assert.Contains(t, f.screenText(), "Enjoy!")

	f.clock.Advance(999 * time.Millisecond)
	assert.True(t, f.ui.SplashVisible())

	f.clock.Advance(time.Millisecond)
	f.loop.flush()
	assert.False(t, f.ui.SplashVisible())
	assert.NotContains(t, f.screenText(), "Enjoy!")
}

func TestUI_DeferredPopOutShortcut(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ui.Start())
	assert.Nil(t, f.ui.Surface())

	f.key(tcell.KeyEnter, 0, tcell.ModAlt)
	assert.True(t, f.ui.PopOut(), "bound to the page before the surface exists")

	f.attachEngine()
	f.clock.Advance(attach.DefaultInterval)
	assert.Equal(t, attach.StateAttached, f.ui.Attachment())
	require.NotNil(t, f.ui.Surface())
	assert.Equal(t, 1, f.ui.Surface().Bindings())

	f.click(60, 20, tcell.ButtonSecondary)
	require.True(t, f.ui.Surface().Focused())

	f.key(tcell.KeyEnter, 0, tcell.ModAlt)
	assert.False(t, f.ui.PopOut(), "surface binding consumes the event once")
}

func TestUI_AttachExhaustsWithoutEngine(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ui.Start())

	f.clock.Advance(time.Duration(attach.DefaultMaxAttempts) * attach.DefaultInterval)
	assert.Equal(t, attach.StateExhausted, f.ui.Attachment())

	f.key(tcell.KeyEnter, 0, tcell.ModAlt)
	assert.True(t, f.ui.PopOut(), "page binding still works")
}

func TestUI_HierarchyClickRequestsSelect(t *testing.T) {
	f := newFixture(t)
	f.dispatch(t, bridge.CallSetHierarchy, hierarchyJSON)

	assert.Contains(t, f.row(2), "Player")
	assert.Contains(t, f.row(3), "  Sword")
	assert.Contains(t, f.row(4), "Camera")

	f.click(4, 3, tcell.ButtonPrimary)
	f.click(4, 30, tcell.ButtonPrimary)
	assert.Equal(t, []string{"e2"}, f.engine.selects)
}

func TestUI_HierarchyFallback(t *testing.T) {
	f := newFixture(t)
	f.dispatch(t, bridge.CallSetHierarchy, "{broken")
	assert.Contains(t, f.row(2), unknownText)
}

func TestUI_InspectorEditCommits(t *testing.T) {
	f := newFixture(t)
	f.dispatch(t, bridge.CallSelectEntity, playerJSON)

	assert.Contains(t, f.row(1), "Player")
	assert.Contains(t, f.row(2), "Transform")
	assert.Contains(t, f.row(3), "label: hero")
	assert.Contains(t, f.row(4), "speed: 2.5")
	assert.NotContains(t, f.screenText(), "_handle")

	f.click(92, 4, tcell.ButtonPrimary)
	assert.Nil(t, f.ui.editor, "numbers are read-only")

	f.click(92, 3, tcell.ButtonPrimary)
	require.NotNil(t, f.ui.editor)
	for i := 0; i < 4; i++ {
		f.key(tcell.KeyBackspace2, 0, tcell.ModNone)
	}
	for _, r := range "ace" {
		f.key(tcell.KeyRune, r, tcell.ModNone)
	}
	assert.Contains(t, f.row(3), "label: ace")

	f.key(tcell.KeyEnter, 0, tcell.ModNone)
	assert.Nil(t, f.ui.editor)
	assert.Equal(t, [][4]string{{"e1", "c1", "label", "ace"}}, f.engine.props)
	assert.Contains(t, f.row(3), "label: hero", "no local update before the engine echoes")
}

func TestUI_EditorCancel(t *testing.T) {
	f := newFixture(t)
	f.dispatch(t, bridge.CallSelectEntity, playerJSON)

	f.click(92, 3, tcell.ButtonPrimary)
	f.key(tcell.KeyRune, 'x', tcell.ModNone)
	f.key(tcell.KeyEscape, 0, tcell.ModNone)

	assert.Nil(t, f.ui.editor)
	assert.Empty(t, f.engine.props)
}

func TestUI_MalformedSelectionShowsUnknown(t *testing.T) {
	f := newFixture(t)
	f.dispatch(t, bridge.CallSelectEntity, `{"id":`)

	assert.Contains(t, f.row(1), unknownText)
	assert.Contains(t, f.screenText(), "Malformed engine payload")
}

func TestUI_OverlayHiddenForOneFrameThenDraggable(t *testing.T) {
	f := newFixture(t)
	f.attachEngine()
	f.dispatch(t, bridge.CallSetSelectedBoundsPos, 0.5, 0.5, 0.2, 0.2)

	raw, err := json.Marshal([]any{playerJSON})
	require.NoError(t, err)
	_ = f.bridge.Dispatch(bridge.CallSelectEntity, raw)

	require.True(t, f.loop.runOne())
	assert.Equal(t, Rect{}, f.ui.moveHandle, "first frame after a new selection hides the overlay")

	f.loop.flush()
	handle := f.ui.moveHandle
	require.Equal(t, Rect{X: 48, Y: 15, W: 1, H: 1}, handle)

	f.ui.HandleEvent(tcell.NewEventMouse(48, 15, tcell.ButtonPrimary, tcell.ModNone))
	assert.Equal(t, bridge.StateDragging, f.bridge.Inspector().State())

	f.ui.HandleEvent(tcell.NewEventMouse(60, 10, tcell.ButtonPrimary, tcell.ModNone))
	require.Len(t, f.engine.moves, 1)
	assert.InDelta(t, 0.1, f.engine.moves[0].dx, 1e-9)
	assert.InDelta(t, 0.125, f.engine.moves[0].dy, 1e-9)

	f.ui.HandleEvent(tcell.NewEventMouse(60, 10, tcell.ButtonNone, tcell.ModNone))
	f.loop.flush()
	assert.Equal(t, bridge.StateInspecting, f.bridge.Inspector().State())
}

func TestUI_RightButtonGrabbing(t *testing.T) {
	f := newFixture(t)
	f.attachEngine()

	f.ui.HandleEvent(tcell.NewEventMouse(60, 20, tcell.ButtonSecondary, tcell.ModNone))
	f.loop.flush()
	assert.True(t, f.ui.Surface().Grabbing())
	assert.Contains(t, f.screenText(), "[grab]")

	f.ui.HandleEvent(tcell.NewEventMouse(60, 20, tcell.ButtonNone, tcell.ModNone))
	f.loop.flush()
	assert.False(t, f.ui.Surface().Grabbing())
}

func TestUI_Shortcuts(t *testing.T) {
	f := newFixture(t)

	f.key(tcell.KeyCtrlS, 0, tcell.ModCtrl)
	f.key(tcell.KeyCtrlR, 0, tcell.ModCtrl)
	f.key(tcell.KeyCtrlQ, 0, tcell.ModCtrl)

	assert.Equal(t, 1, f.engine.saves)
	assert.Equal(t, 1, f.reloads)
	assert.Equal(t, 1, f.quits)
}

func TestUI_NotificationsLogAndCamera(t *testing.T) {
	f := newFixture(t)
	f.attachEngine()

	f.dispatch(t, bridge.CallAddNotification, 2, "Oops", "shard failed")
	f.dispatch(t, bridge.CallAddLog, "NET", "#00FF00", "connected")
	f.dispatch(t, bridge.CallCameraMoved, 1.25, -2, 1.5)

	text := f.screenText()
	assert.Contains(t, text, "Oops")
	assert.Contains(t, text, "shard failed")
	assert.Contains(t, f.row(1), "[NET] connected")
	assert.Contains(t, f.row(39), "(1.25,-2.00) x1.5")

	f.clock.Advance(10 * time.Second)
	f.loop.flush()
	assert.NotContains(t, f.screenText(), "Oops")
}

func TestUI_ClickDismissesNotification(t *testing.T) {
	f := newFixture(t)
	f.attachEngine()

	f.dispatch(t, bridge.CallAddNotification, 0, "Saved", "scene.json")
	f.dispatch(t, bridge.CallAddNotification, 2, "Oops", "shard failed")
	require.Contains(t, f.row(35), "Saved")
	require.Contains(t, f.row(37), "Oops")

	f.click(90, 37, tcell.ButtonPrimary)
	assert.Empty(t, f.engine.props)
	items := f.bridge.Notifications().Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Saved", items[0].Title)
	assert.NotContains(t, f.screenText(), "Oops")

	f.click(90, 37, tcell.ButtonPrimary)
	assert.Equal(t, 0, f.bridge.Notifications().Len())
}

func TestUI_ResizeNotifiesEngine(t *testing.T) {
	f := newFixture(t)
	f.screen.SetSize(100, 30)
	f.ui.HandleEvent(tcell.NewEventResize(100, 30))
	f.loop.flush()

	assert.Equal(t, 1, f.engine.resizes)
	assert.Equal(t, 100, f.ui.Layout().Width)
}

func TestUI_DetachShowsWaiting(t *testing.T) {
	f := newFixture(t)
	f.attachEngine()
	assert.NotContains(t, f.screenText(), "Waiting for engine")

	f.ui.EngineDetached()
	f.loop.flush()
	assert.Contains(t, f.screenText(), "Waiting for engine")
	assert.False(t, f.ui.Surface().Live())
}
