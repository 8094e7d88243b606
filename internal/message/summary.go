package message

import (
	"fmt"
	"strings"
)

const maxSummaryName = 12

// Label is the action shown in timeline listings.
func (e Event) Label() string {
	if e.Action == ActionUpdated {
		return "EDITED"
	}
	return string(e.Action)
}

// Summary is a short description of what changed in the commit.
func (e Event) Summary() string {
	switch e.Action {
	case ActionCreated:
		if e.Created != nil && e.Created.Editor != "" {
			lines := "?"
			if e.Created.Lines >= 0 {
				lines = fmt.Sprint(e.Created.Lines)
			}
			return fmt.Sprintf("(%s, %s lines)", e.Created.Editor, lines)
		}
		return "(created)"

	case ActionUpdated:
		var changes []string
		if e.Edit != nil && e.Edit.Lines != nil && e.Edit.Lines.Change != 0 {
			changes = append(changes, fmt.Sprintf("%+d lines", e.Edit.Lines.Change))
		}
		if e.Edit != nil && e.Edit.Words != nil && e.Edit.Words.Change != 0 {
			changes = append(changes, fmt.Sprintf("%+d words", e.Edit.Words.Change))
		}
		if len(changes) == 0 {
			return "(no changes)"
		}
		return "(" + strings.Join(changes, ", ") + ")"

	case ActionRenamed:
		if e.OldTitle == "" && e.NewTitle == "" {
			return "(renamed)"
		}
		return fmt.Sprintf("(%s → %s)", shorten(e.OldTitle), shorten(e.NewTitle))

	case ActionDeleted:
		return "(deleted)"

	default:
		return "(modified)"
	}
}

func shorten(s string) string {
	r := []rune(s)
	if len(r) <= maxSummaryName {
		return s
	}
	return string(r[:maxSummaryName-3]) + "..."
}
