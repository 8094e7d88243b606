// Package message encodes and decodes the structured commit messages that
// tag every notebook commit with an action, a content type, a title and an
// optional embedded identifier.
//
// Format:
//
//	ACTION CONTENT_TYPE: title [| context]
//
//	[description]
//
//	[Metadata: tags [uuid:<identifier>]]
package message

import (
	"regexp"
	"strconv"
	"strings"
)

// Action is the verb of a commit message
type Action string

const (
	ActionCreated  Action = "CREATED"
	ActionUpdated  Action = "UPDATED"
	ActionRenamed  Action = "RENAMED"
	ActionDeleted  Action = "DELETED"
	ActionModified Action = "MODIFIED"
)

// ContentType is the kind of item a commit refers to
type ContentType string

const (
	TypeNote        ContentType = "NOTE"
	TypeFile        ContentType = "FILE"
	TypeNotebook    ContentType = "NOTEBOOK"
	TypeSubnotebook ContentType = "SUBNOTEBOOK"
	TypeUnknown     ContentType = ""
)

// IsContainer reports whether the content type names a notebook or sub-notebook.
func (c ContentType) IsContainer() bool {
	return c == TypeNotebook || c == TypeSubnotebook
}

// IsItem reports whether the content type names a note or file.
func (c ContentType) IsItem() bool {
	return c == TypeNote || c == TypeFile
}

const metadataPrefix = "Metadata:"

// Message holds the fields of a commit message to encode.
type Message struct {
	Action      Action
	ContentType ContentType
	Title       string
	Context     string
	Description string
	Tags        string
	ID          string
}

// Encode renders m in the commit message convention.
func Encode(m Message) string {
	var b strings.Builder
	b.WriteString(string(m.Action))
	b.WriteString(" ")
	b.WriteString(string(m.ContentType))
	b.WriteString(": ")
	b.WriteString(m.Title)
	if m.Context != "" {
		b.WriteString(" | ")
		b.WriteString(m.Context)
	}

	if m.Description != "" {
		b.WriteString("\n\n")
		b.WriteString(m.Description)
	}

	switch {
	case m.Tags != "" && m.ID != "":
		b.WriteString("\n\n" + metadataPrefix + " " + m.Tags + " uuid:" + m.ID)
	case m.Tags != "":
		b.WriteString("\n\n" + metadataPrefix + " " + m.Tags)
	case m.ID != "":
		b.WriteString("\n\n" + metadataPrefix + " uuid:" + m.ID)
	}

	return b.String()
}

// CreationStats are the details recorded by creation commits.
type CreationStats struct {
	Editor string
	Lines  int // -1 when not recorded
}

// Delta is a before/after count with its signed change.
type Delta struct {
	Before int
	After  int
	Change int
}

// EditStats are the details recorded by content edit commits.
type EditStats struct {
	Lines *Delta
	Words *Delta
}

// Event is a decoded commit message. Decoding is best effort: every field
// other than Action and Raw may be empty.
type Event struct {
	Action      Action
	ContentType ContentType
	Title       string
	OldTitle    string
	NewTitle    string
	Context     string
	Description string
	Tags        string
	ID          string
	Created     *CreationStats
	Edit        *EditStats
	Raw         string
}

var (
	headerPattern  = regexp.MustCompile(`(?i)^\s*(CREATED|UPDATED|RENAMED|DELETED)\s+(\w+):\s*(.*)$`)
	renamePattern  = regexp.MustCompile(`(?i)RENAMED[ \t]+\w+:[ \t]*([^→|\n]+?)[ \t]*(?:→|->)[ \t]*([^|\n]+)`)
	deletedPattern = regexp.MustCompile(`(?i)DELETED[ \t]+\w+:[ \t]*([^|\n]+)`)
	editorPattern  = regexp.MustCompile(`Editor:\s*([^\n,|]+)`)
	linesPattern   = regexp.MustCompile(`Lines:\s*(\d+)`)
	lineDelta      = regexp.MustCompile(`Lines:\s*(\d+)\s*(?:→|->)\s*(\d+)\s*\(([+-]?\d+)\)`)
	wordDelta      = regexp.MustCompile(`Words:\s*(\d+)\s*(?:→|->)\s*(\d+)\s*\(([+-]?\d+)\)`)
	uuidPattern    = regexp.MustCompile(`(?:^|\s)uuid:(\S+)`)
)

var verbs = []Action{ActionCreated, ActionUpdated, ActionRenamed, ActionDeleted}

// Decode extracts the structured fields of a commit message. It never
// fails: unrecognized messages decode to ActionModified.
func Decode(raw string) Event {
	ev := Event{Action: ActionModified, Raw: raw}

	text := strings.ReplaceAll(raw, "\r\n", "\n")
	lines := strings.Split(strings.TrimSpace(text), "\n")
	header := ""
	if len(lines) > 0 {
		header = strings.TrimSpace(lines[0])
	}

	if m := headerPattern.FindStringSubmatch(header); m != nil {
		ev.Action = Action(strings.ToUpper(m[1]))
		ev.ContentType = parseContentType(m[2])
		ev.Title, ev.Context = splitTitle(m[3])
	} else {
		upper := strings.ToUpper(text)
		for _, verb := range verbs {
			if strings.Contains(upper, string(verb)) {
				ev.Action = verb
				break
			}
		}
		ev.Title = header
	}

	ev.Description, ev.Tags, ev.ID = parseBody(lines[1:])

	switch ev.Action {
	case ActionRenamed:
		if m := renamePattern.FindStringSubmatch(text); m != nil {
			ev.OldTitle = strings.TrimSpace(m[1])
			ev.NewTitle = strings.TrimSpace(m[2])
			ev.Title = ev.NewTitle
		}
	case ActionDeleted:
		if m := deletedPattern.FindStringSubmatch(text); m != nil {
			ev.Title = strings.TrimSpace(m[1])
		}
	case ActionCreated:
		ev.Created = parseCreation(text)
	case ActionUpdated:
		ev.Edit = parseEdit(text)
	}

	return ev
}

// DeletedTitle extracts the display name from a deletion message.
func DeletedTitle(raw string) (string, bool) {
	m := deletedPattern.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	title := strings.TrimSpace(m[1])
	return title, title != ""
}

func parseContentType(s string) ContentType {
	switch ct := ContentType(strings.ToUpper(s)); ct {
	case TypeNote, TypeFile, TypeNotebook, TypeSubnotebook:
		return ct
	default:
		return TypeUnknown
	}
}

// splitTitle splits "title | context" on the first separator.
func splitTitle(s string) (string, string) {
	title, context, found := strings.Cut(s, "|")
	if !found {
		return strings.TrimSpace(s), ""
	}
	return strings.TrimSpace(title), strings.TrimSpace(context)
}

func parseBody(lines []string) (description, tags, id string) {
	var desc []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(trimmed, metadataPrefix); ok {
			tags, id = parseMetadata(rest)
			continue
		}
		desc = append(desc, line)
	}
	return strings.TrimSpace(strings.Join(desc, "\n")), tags, id
}

// parseMetadata returns the tags with the uuid token removed and the last
// embedded identifier.
func parseMetadata(s string) (string, string) {
	id := ""
	for _, m := range uuidPattern.FindAllStringSubmatch(s, -1) {
		id = m[1]
	}
	tags := strings.TrimSpace(uuidPattern.ReplaceAllString(s, ""))
	return tags, id
}

func parseCreation(text string) *CreationStats {
	stats := &CreationStats{Lines: -1}
	if m := editorPattern.FindStringSubmatch(text); m != nil {
		stats.Editor = strings.TrimSpace(m[1])
	}
	if m := linesPattern.FindStringSubmatch(text); m != nil {
		stats.Lines, _ = strconv.Atoi(m[1])
	}
	return stats
}

func parseEdit(text string) *EditStats {
	stats := &EditStats{}
	if m := lineDelta.FindStringSubmatch(text); m != nil {
		stats.Lines = parseDelta(m)
	}
	if m := wordDelta.FindStringSubmatch(text); m != nil {
		stats.Words = parseDelta(m)
	}
	return stats
}

func parseDelta(m []string) *Delta {
	before, _ := strconv.Atoi(m[1])
	after, _ := strconv.Atoi(m[2])
	change, _ := strconv.Atoi(m[3])
	return &Delta{Before: before, After: after, Change: change}
}
