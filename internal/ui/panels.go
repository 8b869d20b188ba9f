package ui

import (
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/runebridge/internal/bridge"
	"github.com/dshills/runebridge/internal/scene"
	"github.com/dshills/runebridge/internal/views"
)

// Fallback text for panels whose last payload was malformed.
const unknownText = "Unknown"

const moveHandleRune = '✥'

type hierarchyRow struct {
	y  int
	id string
}

type inspectorRow struct {
	y           int
	componentID string
	key         string
	editable    bool
}

// Draw renders one frame and then signals the frame boundary to the bridge.
func (u *UI) Draw() {
	s := u.screen
	l := u.layout
	s.Clear()

	fill(s, l.Surface, styleSurface)
	u.drawSurface(l.Surface)
	u.drawLogFeed()
	u.drawCamera()
	u.drawHierarchy(l.Hierarchy)
	u.drawInspector(l.Inspector)
	u.drawTopBar(l.TopBar)
	u.drawNotifications()
	if u.splash {
		u.drawSplash()
	}
	s.Show()
	u.frames++

	ov := u.bridge.Overlay()
	before := ov.Visible()
	u.bridge.FrameBoundary()
	if ov.Visible() != before {
		u.requestDraw()
	}
}

// viewArea is the part of the surface not covered by the side panels.
func (u *UI) viewArea() Rect {
	l := u.layout
	r := l.Surface
	if !l.Hierarchy.Empty() {
		r.X += l.Hierarchy.W
		r.W -= l.Hierarchy.W
	}
	if !l.Inspector.Empty() {
		r.W -= l.Inspector.W
	}
	return r
}

func (u *UI) drawTopBar(r Rect) {
	u.saveButton = Rect{}
	if r.Empty() {
		return
	}
	s := u.screen
	fill(s, r, styleBar)

	x := r.X + 1
	x += drawText(s, x, r.Y, r.W-x, styleBarTitle, u.bridge.SceneName())
	x += 2

	const label = " Save "
	u.saveButton = Rect{X: x, Y: r.Y, W: drawText(s, x, r.Y, r.W-x, styleButton, label), H: 1}

	if summary := u.bridge.Tasks().Summary(); summary != "" {
		w := len([]rune(summary))
		start := r.X + r.W - w - 1
		if start > u.saveButton.X+u.saveButton.W {
			drawText(s, start, r.Y, w, styleBar, summary)
		}
	}
}

func (u *UI) drawSurface(r Rect) {
	u.moveHandle = Rect{}
	if u.surface == nil || !u.surface.live {
		msg := "Waiting for engine..."
		drawText(u.screen, r.X+(r.W-len(msg))/2, r.Y+r.H/2, r.W, styleSurface, msg)
		return
	}

	ov := u.bridge.Overlay()
	if !ov.Visible() || u.bridge.Inspector().State() == bridge.StateIdle {
		return
	}
	box := ov.Bounds().Resolve(u.layout.Width, u.layout.Height, u.layout.TopBar.H)
	rect := Rect{X: box.X, Y: box.Y, W: box.Width, H: box.Height}
	if rect.W < 2 {
		rect.W = 2
	}
	if rect.H < 2 {
		rect.H = 2
	}
	drawBox(u.screen, rect, styleOverlay)
	u.screen.SetContent(rect.X, rect.Y, moveHandleRune, nil, styleOverlay.Bold(true))
	u.moveHandle = Rect{X: rect.X, Y: rect.Y, W: 1, H: 1}
}

func (u *UI) drawLogFeed() {
	area := u.viewArea()
	y := area.Y
	for _, e := range u.bridge.LogFeed().Entries() {
		if y >= area.Y+area.H {
			return
		}
		x := area.X + 1
		prefix := styleSurface.Foreground(tcellColor(e.Color)).Bold(true)
		x += drawText(u.screen, x, y, area.X+area.W-x, prefix, "["+e.Prefix+"]")
		x++
		drawText(u.screen, x, y, area.X+area.W-x, styleSurface.Foreground(tcell.ColorWhite), e.Message)
		y++
	}
}

func (u *UI) drawCamera() {
	area := u.viewArea()
	if area.Empty() {
		return
	}
	text := u.bridge.CameraText()
	if u.surface != nil && u.surface.grabbing {
		text += " [grab]"
	}
	drawText(u.screen, area.X+1, area.Y+area.H-1, area.W-1, styleSurface, text)
}

func (u *UI) drawHierarchy(r Rect) {
	u.hierarchyRows = u.hierarchyRows[:0]
	if r.Empty() {
		return
	}
	s := u.screen
	fill(s, r, stylePanel)
	drawText(s, r.X+1, r.Y, r.W-2, stylePanelHead, "Hierarchy")

	nodes, err := u.bridge.Hierarchy()
	if err != nil && len(nodes) == 0 {
		drawText(s, r.X+1, r.Y+1, r.W-2, stylePanel, unknownText)
		return
	}

	selected := u.bridge.Inspector().EntityID()
	y := r.Y + 1
	nodes.Walk(func(n *scene.Node, depth int) bool {
		if y >= r.Y+r.H {
			return false
		}
		style := stylePanel
		if n.ID == selected && selected != "" {
			style = styleSelected
		}
		indent := strings.Repeat("  ", depth)
		drawText(s, r.X+1, y, r.W-2, style, indent+n.Name)
		u.hierarchyRows = append(u.hierarchyRows, hierarchyRow{y: y, id: n.ID})
		y++
		return true
	})
}

func (u *UI) clickHierarchy(y int) {
	for _, row := range u.hierarchyRows {
		if row.y == y {
			u.bridge.RequestSelect(row.id)
			return
		}
	}
}

func (u *UI) drawInspector(r Rect) {
	u.inspectorRows = u.inspectorRows[:0]
	if r.Empty() {
		return
	}
	s := u.screen
	fill(s, r, stylePanel)

	e := u.bridge.Inspector().Entity()
	switch {
	case u.bridge.SelectionError() != nil:
		drawText(s, r.X+1, r.Y, r.W-2, stylePanelHead, unknownText)
		return
	case e == nil:
		drawText(s, r.X+1, r.Y, r.W-2, stylePanelHead, "Nothing selected")
		return
	}

	drawText(s, r.X+1, r.Y, r.W-2, stylePanelHead, e.Name)
	y := r.Y + 1
	for _, c := range e.Components {
		if y >= r.Y+r.H {
			return
		}
		drawText(s, r.X+1, y, r.W-2, stylePanelHead, c.Label())
		y++
		for _, p := range c.Properties.All() {
			if scene.IsPrivate(p.Key) {
				continue
			}
			if y >= r.Y+r.H {
				return
			}
			u.drawProperty(r, y, e.ID, c.ID, p)
			u.inspectorRows = append(u.inspectorRows, inspectorRow{
				y:           y,
				componentID: c.ID,
				key:         p.Key,
				editable:    p.Value.Editable(),
			})
			y++
		}
	}
}

func (u *UI) drawProperty(r Rect, y int, entityID, componentID string, p scene.Property) {
	s := u.screen
	x := r.X + 2
	x += drawText(s, x, y, r.X+r.W-x, stylePanel, p.Key+": ")
	maxW := r.X + r.W - 1 - x

	if ed := u.editor; ed != nil && ed.entityID == entityID && ed.componentID == componentID && ed.key == p.Key {
		n := drawText(s, x, y, maxW, styleEditing, ed.text())
		if n < maxW {
			s.SetContent(x+n, y, ' ', nil, styleEditing)
		}
		return
	}

	style := stylePanel
	if p.Value.Editable() {
		style = styleEditable
	}
	drawText(s, x, y, maxW, style, p.Value.Display())
}

func (u *UI) clickInspector(y int) {
	for _, row := range u.inspectorRows {
		if row.y != y || !row.editable {
			continue
		}
		in := u.bridge.Inspector()
		c, ok := in.Entity().Component(row.componentID)
		if !ok {
			return
		}
		v, _ := c.Properties.Get(row.key)
		initial, _ := v.Str()
		u.editor = newEditor(in.EntityID(), row.componentID, row.key, initial)
		return
	}
	u.editor = nil
}

func (u *UI) drawNotifications() {
	items := u.bridge.Notifications().Items()
	u.notificationRows = u.notificationRows[:0]
	if len(items) == 0 {
		return
	}
	w := u.layout.Width / 2
	if w > 36 {
		w = 36
	}
	x := u.layout.Width - w - 1
	y := u.layout.Height - 2*len(items) - 1
	for _, n := range items {
		style := styleInfo
		if n.Kind == views.NotificationError {
			style = styleError
		}
		row := Rect{X: x, Y: y, W: w, H: 2}
		u.notificationRows = append(u.notificationRows, row)
		fill(u.screen, row, style)
		drawText(u.screen, x+1, y, w-2, style.Bold(true), n.Title)
		drawText(u.screen, x+1, y+1, w-2, style, n.Text)
		y += 2
	}
}

// clickNotification dismisses the notification under (x, y), if any.
func (u *UI) clickNotification(x, y int) bool {
	for i, r := range u.notificationRows {
		if r.Contains(x, y) {
			return u.bridge.Notifications().Dismiss(i)
		}
	}
	return false
}

func (u *UI) drawSplash() {
	text := u.bridge.StatusText()
	if text == "" {
		text = "Loading..."
	}
	w := 32
	if w > u.layout.Width {
		w = u.layout.Width
	}
	r := Rect{X: (u.layout.Width - w) / 2, Y: u.layout.Height/2 - 2, W: w, H: 4}
	fill(u.screen, r, styleSplash)
	drawBox(u.screen, r, styleSplash)
	drawText(u.screen, r.X+2, r.Y+1, w-4, styleSplash.Bold(true), "runebridge")
	drawText(u.screen, r.X+2, r.Y+2, w-4, styleSplash, text)
}
