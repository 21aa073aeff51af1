package config

const (
	// MaxTitleLength is the maximum length, in characters, of a diary title.
	MaxTitleLength = 200

	// MaxContentBytes bounds the serialized size of one entry's content.
	// Rich-text content carries markup, so this is generous.
	MaxContentBytes = 2 << 20

	// MaxRequestBodyBytes bounds bridge request bodies. Must exceed
	// MaxContentBytes plus envelope overhead.
	MaxRequestBodyBytes = 4 << 20

	// MaxDocumentBytes bounds a single document read from an imported archive.
	MaxDocumentBytes = 256 << 20

	// MinFontSize and MaxFontSize bound the editor font size setting.
	MinFontSize = 8
	MaxFontSize = 72

	// MinAutoSaveInterval and MaxAutoSaveInterval bound the auto-save
	// interval setting, in seconds.
	MinAutoSaveInterval = 5
	MaxAutoSaveInterval = 3600
)
