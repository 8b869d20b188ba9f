package bridge

// Entry points the engine calls into the UI.
const (
	CallSelectEntity         = "select_entity"
	CallSetHierarchy         = "set_hierarchy"
	CallSetSceneName         = "set_scene_name"
	CallAddLoadingTask       = "add_loading_task"
	CallRemoveLoadingTask    = "remove_loading_task"
	CallAddNotification      = "add_notification"
	CallCameraMoved          = "camera_moved"
	CallSetSelectedBoundsPos = "set_selected_bounds_pos"
	CallSetStatus            = "set_status"
	CallAddLog               = "add_log"
	CallAddWarning           = "add_warning"
	CallAddError             = "add_error"
)

// Entry points the UI calls into the engine.
const (
	CallRequestSelectEntity  = "request_select_entity"
	CallSetComponentProperty = "set_component_property"
	CallMoveSelected         = "move_selected"
	CallSaveScene            = "save_scene"
	CallResize               = "resize"
	CallOverrideAssetPath    = "override_asset_path"
)

// Direction is the side a boundary call originates from.
type Direction int

const (
	// Inbound calls come from the engine.
	Inbound Direction = iota
	// Outbound calls go to the engine.
	Outbound
)

// String returns "in" or "out".
func (d Direction) String() string {
	if d == Outbound {
		return "out"
	}
	return "in"
}

// Recorder observes every boundary call. Args are the JSON-encoded
// arguments as they cross the boundary.
type Recorder interface {
	Record(dir Direction, name string, args []byte)
}
