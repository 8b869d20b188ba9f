package bridge

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/dshills/runebridge/internal/event"
	"github.com/dshills/runebridge/internal/logging"
	"github.com/dshills/runebridge/internal/sched"
	"github.com/dshills/runebridge/internal/scene"
	"github.com/dshills/runebridge/internal/views"
)

// DefaultSceneName is shown until the engine names the scene.
const DefaultSceneName = "untitled"

// Selection is published on every select_entity push. Entity is nil when the
// selection was cleared or the payload was malformed; Err is set in the
// latter case so panels can render their fallback.
type Selection struct {
	Entity *scene.Entity
	Err    error
}

// HierarchyUpdate is published on every set_hierarchy push.
type HierarchyUpdate struct {
	Nodes scene.Hierarchy
	Err   error
}

// Topic names a part of the bridge state that changed.
type Topic string

// Change topics.
const (
	TopicSelection     Topic = "selection"
	TopicHierarchy     Topic = "hierarchy"
	TopicSceneName     Topic = "scene_name"
	TopicTasks         Topic = "tasks"
	TopicNotifications Topic = "notifications"
	TopicLog           Topic = "log"
	TopicCamera        Topic = "camera"
	TopicBounds        Topic = "bounds"
	TopicStatus        Topic = "status"
)

// Options configures a Bridge.
type Options struct {
	// Engine receives UI→engine calls. Required.
	Engine Engine

	// Scheduler runs view timers. Required.
	Scheduler sched.Scheduler

	// Logger receives bridge diagnostics. Optional.
	Logger *logging.Logger

	// Recorder observes every boundary call. Optional.
	Recorder Recorder

	// NotificationTTL overrides views.DefaultNotificationTTL.
	NotificationTTL time.Duration

	// LogTTL overrides views.DefaultLogTTL.
	LogTTL time.Duration
}

// Bridge owns the handler table, the inspector and the views.
type Bridge struct {
	log      *logging.Logger
	recorder Recorder

	port      *Port
	overlay   *Overlay
	inspector *Inspector
	table     *HandlerTable

	selection *event.Registry[Selection]
	hierarchy *event.Registry[HierarchyUpdate]
	sceneName *event.Registry[string]
	changed   *event.Registry[Topic]

	tasks         *views.Tasks
	notifications *views.Notifications
	logFeed       *views.LogFeed

	nodes     scene.Hierarchy
	nodesErr  error
	name      string
	status    int
	camera    string
	faulting  bool
	selectErr error
}

// New creates a bridge and installs its engine entry points into a fresh,
// unsealed handler table.
func New(opts Options) (*Bridge, error) {
	if opts.Engine == nil {
		return nil, errors.New("bridge: engine is required")
	}
	if opts.Scheduler == nil {
		return nil, errors.New("bridge: scheduler is required")
	}
	log := opts.Logger
	if log == nil {
		log = logging.NewNull()
	}

	b := &Bridge{
		log:           log.WithComponent("bridge"),
		recorder:      opts.Recorder,
		overlay:       &Overlay{},
		table:         NewHandlerTable(),
		tasks:         views.NewTasks(),
		notifications: views.NewNotifications(opts.Scheduler, opts.NotificationTTL),
		logFeed:       views.NewLogFeed(opts.Scheduler, opts.LogTTL),
		name:          DefaultSceneName,
		camera:        views.InitialCameraText,
	}
	b.port = NewPort(opts.Engine, opts.Recorder)
	b.inspector = NewInspector(b.port, b.overlay)

	fault := event.WithFaultHandler(b.reportFault)
	b.selection = event.NewRegistry[Selection]("selection", fault)
	b.hierarchy = event.NewRegistry[HierarchyUpdate]("hierarchy", fault)
	b.sceneName = event.NewRegistry[string]("scene_name", fault)
	b.changed = event.NewRegistry[Topic]("changed", fault)

	b.notifications.OnChange(func() { b.notify(TopicNotifications) })
	b.logFeed.OnChange(func() { b.notify(TopicLog) })

	if err := b.install(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Bridge) install() error {
	str, num, integer := ArgString, ArgNumber, ArgInt
	entries := []struct {
		name   string
		params []ArgKind
		fn     HandlerFunc
	}{
		{CallSelectEntity, []ArgKind{str}, b.handleSelectEntity},
		{CallSetHierarchy, []ArgKind{str}, b.handleSetHierarchy},
		{CallSetSceneName, []ArgKind{str}, b.handleSetSceneName},
		{CallAddLoadingTask, []ArgKind{str}, b.handleAddLoadingTask},
		{CallRemoveLoadingTask, []ArgKind{str}, b.handleRemoveLoadingTask},
		{CallAddNotification, []ArgKind{integer, str, str}, b.handleAddNotification},
		{CallCameraMoved, []ArgKind{num, num, num}, b.handleCameraMoved},
		{CallSetSelectedBoundsPos, []ArgKind{num, num, num, num}, b.handleSetSelectedBounds},
		{CallSetStatus, []ArgKind{integer}, b.handleSetStatus},
		{CallAddLog, []ArgKind{str, str, str}, b.handleAddLog},
		{CallAddWarning, []ArgKind{str}, b.handleAddWarning},
		{CallAddError, []ArgKind{str}, b.handleAddError},
	}
	for _, e := range entries {
		if err := b.table.Install(e.name, e.params, e.fn); err != nil {
			return err
		}
	}
	return nil
}

// Handlers returns the engine entry point table. Boot seals it before the
// engine starts.
func (b *Bridge) Handlers() *HandlerTable {
	return b.table
}

// Dispatch runs one engine call. rawArgs is the JSON array of arguments.
// Failures are logged and surfaced as error notifications; the returned
// error is for the caller's bookkeeping only.
func (b *Bridge) Dispatch(name string, rawArgs []byte) error {
	if b.recorder != nil {
		b.recorder.Record(Inbound, name, rawArgs)
	}

	err := b.table.DispatchJSON(name, rawArgs)
	if err == nil {
		return nil
	}

	b.log.WithField("call", name).Warn("engine call failed: %v", err)
	b.notifications.Error(errorTitle(err), err.Error())
	return err
}

func errorTitle(err error) string {
	switch {
	case errors.Is(err, scene.ErrMalformedPayload):
		return "Malformed engine payload"
	case errors.Is(err, ErrUnknownEntryPoint):
		return "Unknown engine call"
	case errors.Is(err, ErrBadArguments):
		return "Bad engine call"
	default:
		return "Engine call failed"
	}
}

// reportFault routes a subscriber fault to the log and the notification
// queue. A fault raised while reporting is only logged.
func (b *Bridge) reportFault(err error) {
	b.log.Error("subscriber fault: %v", err)
	if b.faulting {
		return
	}
	b.faulting = true
	defer func() { b.faulting = false }()
	b.notifications.Error("Panel error", err.Error())
}

func (b *Bridge) notify(t Topic) {
	b.changed.Publish(t)
}

func (b *Bridge) handleSelectEntity(args Args) error {
	payload := []byte(args.String(0))

	if isNull(payload) {
		b.selectErr = nil
		b.inspector.Select(nil)
		b.selection.Publish(Selection{})
		b.notify(TopicSelection)
		return nil
	}

	e, err := scene.DecodeEntity(payload)
	if err != nil {
		b.selectErr = err
		b.selection.Publish(Selection{Err: err})
		b.notify(TopicSelection)
		return err
	}

	b.selectErr = nil
	b.inspector.Select(e)
	b.log.Debug("selected %s (%s)", e.Name, e.ID)
	b.selection.Publish(Selection{Entity: e})
	b.notify(TopicSelection)
	return nil
}

func isNull(payload []byte) bool {
	return bytes.Equal(bytes.TrimSpace(payload), []byte("null"))
}

func (b *Bridge) handleSetHierarchy(args Args) error {
	nodes, err := scene.DecodeHierarchy([]byte(args.String(0)))
	if err != nil {
		b.nodesErr = err
		b.hierarchy.Publish(HierarchyUpdate{Err: err})
		b.notify(TopicHierarchy)
		return err
	}

	b.nodes = nodes
	b.nodesErr = nil
	b.hierarchy.Publish(HierarchyUpdate{Nodes: nodes})
	b.notify(TopicHierarchy)
	return nil
}

func (b *Bridge) handleSetSceneName(args Args) error {
	b.name = args.String(0)
	b.sceneName.Publish(b.name)
	b.notify(TopicSceneName)
	return nil
}

func (b *Bridge) handleAddLoadingTask(args Args) error {
	b.tasks.Add(args.String(0))
	b.notify(TopicTasks)
	return nil
}

func (b *Bridge) handleRemoveLoadingTask(args Args) error {
	if b.tasks.Remove(args.String(0)) {
		b.notify(TopicTasks)
	}
	return nil
}

func (b *Bridge) handleAddNotification(args Args) error {
	b.notifications.Push(views.Notification{
		Kind:  views.KindFromCode(args.Int(0)),
		Title: args.String(1),
		Text:  args.String(2),
	})
	return nil
}

func (b *Bridge) handleCameraMoved(args Args) error {
	b.camera = views.CameraText(args.Float(0), args.Float(1), args.Float(2))
	b.notify(TopicCamera)
	return nil
}

func (b *Bridge) handleSetSelectedBounds(args Args) error {
	b.overlay.SetBounds(Bounds{
		X:      args.Float(0),
		Y:      args.Float(1),
		Width:  args.Float(2),
		Height: args.Float(3),
	})
	b.notify(TopicBounds)
	return nil
}

func (b *Bridge) handleSetStatus(args Args) error {
	b.status = args.Int(0)
	b.log.Info("status reported: %d", b.status)
	b.notify(TopicStatus)
	return nil
}

func (b *Bridge) handleAddLog(args Args) error {
	b.logFeed.Add(args.String(0), args.String(1), args.String(2))
	return nil
}

func (b *Bridge) handleAddWarning(args Args) error {
	b.logFeed.Warning(args.String(0))
	return nil
}

func (b *Bridge) handleAddError(args Args) error {
	b.logFeed.Error(args.String(0))
	return nil
}

// OnSelection returns the selection stream.
func (b *Bridge) OnSelection() *event.Registry[Selection] { return b.selection }

// OnHierarchy returns the hierarchy stream.
func (b *Bridge) OnHierarchy() *event.Registry[HierarchyUpdate] { return b.hierarchy }

// OnSceneName returns the scene name stream.
func (b *Bridge) OnSceneName() *event.Registry[string] { return b.sceneName }

// OnChange returns the stream of state change topics. The UI redraws on it.
func (b *Bridge) OnChange() *event.Registry[Topic] { return b.changed }

// Inspector returns the selection state machine.
func (b *Bridge) Inspector() *Inspector { return b.inspector }

// Overlay returns the selection bounds overlay.
func (b *Bridge) Overlay() *Overlay { return b.overlay }

// Port returns the engine call port.
func (b *Bridge) Port() *Port { return b.port }

// Tasks returns the loading task set.
func (b *Bridge) Tasks() *views.Tasks { return b.tasks }

// Notifications returns the notification queue.
func (b *Bridge) Notifications() *views.Notifications { return b.notifications }

// LogFeed returns the engine log overlay.
func (b *Bridge) LogFeed() *views.LogFeed { return b.logFeed }

// Hierarchy returns the last valid hierarchy and the error of the last push,
// if it was malformed.
func (b *Bridge) Hierarchy() (scene.Hierarchy, error) { return b.nodes, b.nodesErr }

// SelectionError returns the error of the last selection push, if it was
// malformed.
func (b *Bridge) SelectionError() error { return b.selectErr }

// SceneName returns the current scene name.
func (b *Bridge) SceneName() string { return b.name }

// Status returns the last boot status code.
func (b *Bridge) Status() int { return b.status }

// StatusText returns the splash line for the last status code.
func (b *Bridge) StatusText() string { return views.StatusText(b.status) }

// CameraText returns the camera readout.
func (b *Bridge) CameraText() string { return b.camera }

// FrameBoundary is called by the UI after each rendered frame.
func (b *Bridge) FrameBoundary() {
	b.overlay.FrameBoundary()
}

// RequestSelect asks the engine to select id. Failures are logged.
func (b *Bridge) RequestSelect(id string) {
	b.forward(b.port.RequestSelect(id))
}

// Save asks the engine to save the scene. Failures are logged.
func (b *Bridge) Save() {
	b.forward(b.port.Save())
}

// Resize tells the engine the viewport changed. Failures are logged.
func (b *Bridge) Resize() {
	b.forward(b.port.Resize())
}

// CommitProperty forwards an edit of the inspected entity. Edits the
// inspector refuses are reported to the user.
func (b *Bridge) CommitProperty(componentID, key, raw string) error {
	err := b.inspector.CommitProperty(componentID, key, raw)
	if err != nil && !errors.As(err, new(*CallError)) {
		b.notifications.Error("Edit rejected", err.Error())
		return err
	}
	b.forward(err)
	return err
}

// forward logs a failed fire-and-forget engine call.
func (b *Bridge) forward(err error) {
	if err != nil {
		b.log.Warn("engine call dropped: %v", err)
	}
}

// Close cancels view timers.
func (b *Bridge) Close() {
	b.notifications.Close()
	b.logFeed.Close()
}

// String implements fmt.Stringer for debugging.
func (b *Bridge) String() string {
	return fmt.Sprintf("bridge{scene=%q state=%s}", b.name, b.inspector.State())
}
