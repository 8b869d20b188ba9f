package ui

import "github.com/gdamore/tcell/v2"

// editor is the inline text field for one inspector property.
type editor struct {
	entityID    string
	componentID string
	key         string
	buf         []rune
}

type editOutcome int

const (
	editIgnored editOutcome = iota
	editChanged
	editCommit
	editCancel
)

func newEditor(entityID, componentID, key, initial string) *editor {
	return &editor{
		entityID:    entityID,
		componentID: componentID,
		key:         key,
		buf:         []rune(initial),
	}
}

func (e *editor) text() string {
	return string(e.buf)
}

func (e *editor) apply(ev *tcell.EventKey) editOutcome {
	switch ev.Key() {
	case tcell.KeyEnter:
		return editCommit
	case tcell.KeyEscape:
		return editCancel
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(e.buf) > 0 {
			e.buf = e.buf[:len(e.buf)-1]
		}
		return editChanged
	case tcell.KeyRune:
		e.buf = append(e.buf, ev.Rune())
		return editChanged
	default:
		return editIgnored
	}
}
