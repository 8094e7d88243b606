package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Canonical file names inside a notebook directory
const (
	StructureFile = "structure.json"
	NotesFile     = "notes.json"
	FilesFile     = "files.json"
)

// DataFiles lists the three files every notebook directory holds, in commit order.
var DataFiles = []string{StructureFile, NotesFile, FilesFile}

// Item is a note or a typed file. Content is kept outside the structure,
// in one of the two content maps.
type Item struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Created       string `json:"created"`
	Updated       string `json:"updated"`
	CreatedWith   string `json:"created_with,omitempty"`
	FileExtension string `json:"file_extension,omitempty"`
}

// IsFile reports whether the item carries a type tag.
func (i Item) IsFile() bool {
	return i.FileExtension != ""
}

// Container is a notebook (ParentID nil) or a sub-notebook.
type Container struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	ParentID     *string     `json:"parent_id"`
	Notes        []Item      `json:"notes"`
	Subnotebooks []Container `json:"subnotebooks"`
	CustomPath   string      `json:"custom_path,omitempty"`
}

// UnmarshalJSON decodes a container. Entries of the notes list without a
// title are not items and are skipped, matching the live loader.
func (c *Container) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID           string            `json:"id"`
		Name         string            `json:"name"`
		ParentID     *string           `json:"parent_id"`
		Notes        []json.RawMessage `json:"notes"`
		Subnotebooks []Container       `json:"subnotebooks"`
		CustomPath   string            `json:"custom_path"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	c.ID = raw.ID
	c.Name = raw.Name
	c.ParentID = raw.ParentID
	c.CustomPath = raw.CustomPath
	c.Subnotebooks = raw.Subnotebooks
	c.Notes = make([]Item, 0, len(raw.Notes))
	for _, entry := range raw.Notes {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(entry, &probe); err != nil {
			return fmt.Errorf("invalid note entry in %s: %w", raw.ID, err)
		}
		if _, ok := probe["title"]; !ok {
			continue
		}
		var item Item
		if err := json.Unmarshal(entry, &item); err != nil {
			return fmt.Errorf("invalid note entry in %s: %w", raw.ID, err)
		}
		c.Notes = append(c.Notes, item)
	}
	if c.Subnotebooks == nil {
		c.Subnotebooks = []Container{}
	}
	return nil
}

// IsRoot reports whether the container has no parent.
func (c *Container) IsRoot() bool {
	return c.ParentID == nil || *c.ParentID == ""
}

// Normalize replaces nil slices with empty ones across the subtree so the
// serialized form always carries "notes": [] and "subnotebooks": [].
func (c *Container) Normalize() {
	if c.Notes == nil {
		c.Notes = []Item{}
	}
	if c.Subnotebooks == nil {
		c.Subnotebooks = []Container{}
	}
	for i := range c.Subnotebooks {
		c.Subnotebooks[i].Normalize()
	}
}

// Clone returns a deep copy of the container.
func (c Container) Clone() Container {
	out := c
	if c.ParentID != nil {
		parent := *c.ParentID
		out.ParentID = &parent
	}
	out.Notes = append([]Item{}, c.Notes...)
	out.Subnotebooks = make([]Container, len(c.Subnotebooks))
	for i, sub := range c.Subnotebooks {
		out.Subnotebooks[i] = sub.Clone()
	}
	return out
}

// Structure is a decoded structure.json: one or more root containers.
type Structure struct {
	Roots []Container
}

// ParseStructure decodes structure.json. Both the canonical single
// container root and the legacy {"notebooks": [...]} wrapper are accepted.
func ParseStructure(data []byte) (*Structure, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty structure")
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse structure: %w", err)
	}

	if wrapped, ok := probe["notebooks"]; ok {
		if _, hasID := probe["id"]; !hasID {
			var roots []Container
			if err := json.Unmarshal(wrapped, &roots); err != nil {
				return nil, fmt.Errorf("failed to parse structure: %w", err)
			}
			return &Structure{Roots: roots}, nil
		}
	}

	var root Container
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse structure: %w", err)
	}
	return &Structure{Roots: []Container{root}}, nil
}

// ContentMap maps item identifiers to raw text.
type ContentMap map[string]string

// ParseContentMap decodes notes.json or files.json.
func ParseContentMap(data []byte) (ContentMap, error) {
	m := ContentMap{}
	if len(bytes.TrimSpace(data)) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse content map: %w", err)
	}
	return m, nil
}

// MarshalFile encodes v the way the data files are stored on disk.
func MarshalFile(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses the ISO-8601 timestamps written into item records,
// with or without a zone offset.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp: %q", s)
}

// FormatTimestamp renders t in the layout used for new item records.
func FormatTimestamp(t time.Time) string {
	return t.Format("2006-01-02T15:04:05.000000")
}
