package message

import (
	"fmt"
	"strings"
)

var filePurposes = map[string]string{
	"py": "Python script", "js": "JavaScript code", "html": "Web page",
	"css": "Stylesheet", "md": "Documentation", "json": "Configuration",
	"yml": "YAML config", "yaml": "YAML config", "sh": "Shell script",
	"sql": "Database query", "xml": "XML data", "txt": "Text file",
	"php": "PHP script", "rb": "Ruby script", "java": "Java code",
	"c": "C code", "cpp": "C++ code", "go": "Go code", "rs": "Rust code",
	"pl": "Perl script", "lua": "Lua script", "swift": "Swift code",
	"kt": "Kotlin code", "ts": "TypeScript", "scss": "Sass styles",
	"vue": "Vue component", "jsx": "React component", "bib": "Bibliography",
	"tex": "LaTeX document", "sty": "LaTeX style", "cls": "LaTeX class",
	"toml": "TOML config", "ini": "INI config", "cfg": "Configuration",
}

// FilePurpose describes a file by its extension.
func FilePurpose(extension string) string {
	if purpose, ok := filePurposes[strings.ToLower(extension)]; ok {
		return purpose
	}
	return strings.ToUpper(extension) + " file"
}

// NoteType classifies a note by its length and the editor used.
func NoteType(content, editor string) string {
	words := len(strings.Fields(content))
	if editor == "internal" {
		if words < 50 {
			return "Quick note"
		}
		return "Text note"
	}
	if words > 200 {
		return "Detailed notes"
	}
	return "Formatted note"
}

// Metrics returns the word and line counts of content.
func Metrics(content string) (words, lines int) {
	words = len(strings.Fields(content))
	if content == "" {
		return words, 0
	}
	lines = strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		lines++
	}
	return words, lines
}

// NotebookCreated describes the creation of a root notebook.
func NotebookCreated(id, name string, notes, files int, customPath bool) Message {
	context := fmt.Sprintf("%d notes, %d files", notes, files)
	if customPath {
		context += ", custom location"
	}
	return Message{
		Action:      ActionCreated,
		ContentType: TypeNotebook,
		Title:       name,
		Context:     context,
		Tags:        "notebook created " + strings.ToLower(name),
		ID:          id,
	}
}

// SubnotebookCreated describes the creation of a sub-notebook.
func SubnotebookCreated(id, name, notebook string) Message {
	return Message{
		Action:      ActionCreated,
		ContentType: TypeSubnotebook,
		Title:       name,
		Context:     "in " + notebook,
		Tags:        fmt.Sprintf("subnotebook created %s %s", strings.ToLower(name), strings.ToLower(notebook)),
		ID:          id,
	}
}

// NoteCreated describes the creation of a plain note.
func NoteCreated(id, title, notebook, editor, content string) Message {
	words, lines := Metrics(content)
	return Message{
		Action:      ActionCreated,
		ContentType: TypeNote,
		Title:       title,
		Context:     fmt.Sprintf("in %s | Editor: %s, Type: %s", notebook, editor, NoteType(content, editor)),
		Description: fmt.Sprintf("Word count: %d | Lines: %d", words, lines),
		Tags:        fmt.Sprintf("note created %s %s %s lines:%d", strings.ToLower(title), strings.ToLower(notebook), editor, lines),
		ID:          id,
	}
}

// FileCreated describes the creation of a typed file.
func FileCreated(id, filename, notebook, extension, content string) Message {
	_, lines := Metrics(content)
	return Message{
		Action:      ActionCreated,
		ContentType: TypeFile,
		Title:       filename,
		Context:     fmt.Sprintf("in %s | Type: %s", notebook, FilePurpose(extension)),
		Description: fmt.Sprintf("Lines: %d", lines),
		Tags:        fmt.Sprintf("file created %s %s %s lines:%d", filename, extension, strings.ToLower(notebook), lines),
		ID:          id,
	}
}

// NoteEdited describes a content change of a note or file.
func NoteEdited(id, title, notebook, oldContent, newContent string, isFile bool) Message {
	oldWords, oldLines := Metrics(oldContent)
	newWords, newLines := Metrics(newContent)

	contentType := TypeNote
	if isFile {
		contentType = TypeFile
	}

	return Message{
		Action:      ActionUpdated,
		ContentType: contentType,
		Title:       title,
		Context:     "in " + notebook,
		Description: fmt.Sprintf("Lines: %d → %d (%+d) | Words: %d → %d (%+d)",
			oldLines, newLines, newLines-oldLines, oldWords, newWords, newWords-oldWords),
		Tags: fmt.Sprintf("note edited %s %s lines:%d words:%d",
			strings.ToLower(title), strings.ToLower(notebook), newLines, newWords),
		ID: id,
	}
}

// ItemRenamed describes a rename of a note, file or sub-notebook.
func ItemRenamed(id, oldTitle, newTitle, notebook string, contentType ContentType) Message {
	return Message{
		Action:      ActionRenamed,
		ContentType: contentType,
		Title:       oldTitle + " → " + newTitle,
		Context:     "in " + notebook,
		Tags:        fmt.Sprintf("renamed %s %s %s", strings.ToLower(oldTitle), strings.ToLower(newTitle), strings.ToLower(notebook)),
		ID:          id,
	}
}

// ItemDeleted describes the deletion of a note or file.
func ItemDeleted(id, title, notebook string, isFile bool) Message {
	contentType := TypeNote
	if isFile {
		contentType = TypeFile
	}
	return Message{
		Action:      ActionDeleted,
		ContentType: contentType,
		Title:       title,
		Context:     "from " + notebook,
		Tags:        fmt.Sprintf("deleted %s %s", strings.ToLower(title), strings.ToLower(notebook)),
		ID:          id,
	}
}

// SubnotebookDeleted describes the deletion of a sub-notebook.
func SubnotebookDeleted(id, name, notebook string) Message {
	return Message{
		Action:      ActionDeleted,
		ContentType: TypeSubnotebook,
		Title:       name,
		Context:     "from " + notebook,
		Tags:        fmt.Sprintf("subnotebook deleted %s %s", strings.ToLower(name), strings.ToLower(notebook)),
		ID:          id,
	}
}
