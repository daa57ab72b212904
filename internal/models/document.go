// Package models defines the domain types for Lesa.
package models

import "time"

// Document represents a Markdown file in the workspace.
type Document struct {
	Path      string    `json:"path"`
	Content   []byte    `json:"-"`
	Body      string    `json:"body"`
	Title     string    `json:"title,omitempty"`
	Headings  []Heading `json:"headings,omitempty"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DocumentMetadata is a lightweight representation returned by list operations.
type DocumentMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Heading is one entry of a document's heading outline, in source order.
type Heading struct {
	Level int    `json:"level"` // 1..6
	Text  string `json:"text"`
	ID    string `json:"id"`
}

// Settings holds the user-tunable editor and appearance options.
type Settings struct {
	Editor     EditorSettings     `json:"editor" yaml:"editor"`
	Appearance AppearanceSettings `json:"appearance" yaml:"appearance"`
	Shortcuts  map[string]string  `json:"shortcuts,omitempty" yaml:"shortcuts,omitempty"`
}

// EditorSettings controls the editing surface.
type EditorSettings struct {
	FontSize   int    `json:"fontSize" yaml:"font_size"`
	FontFamily string `json:"fontFamily" yaml:"font_family"`
	TabSize    int    `json:"tabSize" yaml:"tab_size"`
	SyncScroll bool   `json:"syncScroll" yaml:"sync_scroll"`
}

// AppearanceSettings controls preview and export presentation.
type AppearanceSettings struct {
	Theme             string `json:"theme" yaml:"theme"`
	PreviewFontSize   int    `json:"previewFontSize" yaml:"preview_font_size"`
	PreviewFontFamily string `json:"previewFontFamily" yaml:"preview_font_family"`
	AccentColor       string `json:"accentColor" yaml:"accent_color"`
	ExportFontSize    int    `json:"exportFontSize" yaml:"export_font_size"`
}

// DefaultSettings returns the settings used before the user changes anything.
func DefaultSettings() Settings {
	return Settings{
		Editor: EditorSettings{
			FontSize:   14,
			FontFamily: "monospace",
			TabSize:    4,
			SyncScroll: true,
		},
		Appearance: AppearanceSettings{
			Theme:             "system",
			PreviewFontSize:   16,
			PreviewFontFamily: "system-ui, sans-serif",
			AccentColor:       "#3B82F6",
			ExportFontSize:    11,
		},
	}
}
