// Package action classifies component interaction events into
// renderer-agnostic intents.
//
// The protocol's click vocabulary is larger than what any single
// rendering environment can honor. Classification is the policy layer
// that decides, once, what each event means here: navigate, copy,
// indicate-but-refuse, or nothing. Surfaces consume the resulting
// intents without re-inspecting protocol strings, and the classifier is
// total: every event, including unrecognized ones, maps to exactly one
// intent. Unknown input is inert, never an error.
package action

import "github.com/chatglass/chatglass/pkg/component"

// Protocol click action names.
const (
	ClickActionOpenURL        = "open_url"
	ClickActionCopy           = "copy_to_clipboard"
	ClickActionOpenFile       = "open_file"
	ClickActionRunCommand     = "run_command"
	ClickActionSuggestCommand = "suggest_command"
	ClickActionChangePage     = "change_page"
)

// Protocol hover action names.
const (
	HoverActionShowText   = "show_text"
	HoverActionShowItem   = "show_item"
	HoverActionShowEntity = "show_entity"
)

// ClickKind is the classified meaning of a click event.
type ClickKind int

const (
	// ClickNone means no action is attached, or the action is
	// unrecognized. The run carries no click behavior at all.
	ClickNone ClickKind = iota
	// ClickOpenURL navigates to the carried URL. Navigation opens a new
	// independent context, and the rendered link inherits the
	// surrounding run's color and decoration rather than restyling
	// itself.
	ClickOpenURL
	// ClickCopy places the carried text on the system clipboard. A
	// failed copy is logged and swallowed; the run stays clickable.
	ClickCopy
	// ClickBlocked marks a valid protocol action this environment
	// cannot honor (open_file, run_command, suggest_command,
	// change_page). Surfaces must still indicate the inert action, for
	// example with a not-allowed cursor, so users see that one exists.
	ClickBlocked
)

// String returns the kind's name for logging and serialized runs.
func (k ClickKind) String() string {
	switch k {
	case ClickOpenURL:
		return "open_url"
	case ClickCopy:
		return "copy"
	case ClickBlocked:
		return "blocked"
	default:
		return "none"
	}
}

// Click is a classified click intent with its payload. Exactly one
// payload field is meaningful, selected by Kind.
type Click struct {
	Kind   ClickKind
	URL    string // ClickOpenURL: navigation target
	Target string // ClickOpenURL: opaque surface hint for how navigation presents; empty means a new independent context
	Text   string // ClickCopy: literal clipboard payload
	Action string // ClickBlocked: the protocol action that was refused
}

// ClassifyClick maps a click event to its intent. A nil event and an
// unrecognized action both classify as ClickNone.
func ClassifyClick(ev *component.ClickEvent) Click {
	if ev == nil {
		return Click{Kind: ClickNone}
	}
	switch ev.Action {
	case ClickActionOpenURL:
		return Click{Kind: ClickOpenURL, URL: ev.Value}
	case ClickActionCopy:
		return Click{Kind: ClickCopy, Text: ev.Value}
	case ClickActionOpenFile, ClickActionRunCommand, ClickActionSuggestCommand, ClickActionChangePage:
		return Click{Kind: ClickBlocked, Action: ev.Action}
	default:
		return Click{Kind: ClickNone}
	}
}

// HoverContent extracts the renderable tooltip content from a hover
// event. Only show_text carries content here; show_item, show_entity
// and unrecognized actions report false, as does show_text with a
// missing payload. The returned component is the event's own subtree,
// resolved by the caller with a fresh default style.
func HoverContent(ev *component.HoverEvent) (*component.Component, bool) {
	if ev == nil || ev.Action != HoverActionShowText || ev.Value == nil {
		return nil, false
	}
	return ev.Value, true
}
