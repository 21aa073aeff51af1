package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Theme is the user's theme preference.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system" // follow the host's ambient theme
)

// EditorType selects the entry editor.
type EditorType string

const (
	EditorRichText  EditorType = "richtext"
	EditorPlainText EditorType = "plaintext"
)

// EffectiveTheme is what the host actually renders: never "system".
type EffectiveTheme string

const (
	EffectiveLight EffectiveTheme = "light"
	EffectiveDark  EffectiveTheme = "dark"
)

// Settings is the flat preferences document. Keys the back end does not
// recognize are kept in Extra and written back unchanged.
type Settings struct {
	Theme            Theme      `json:"theme" yaml:"theme"`
	FontSize         int        `json:"fontSize" yaml:"fontSize"`
	AutoSave         bool       `json:"autoSave" yaml:"autoSave"`
	DarkMode         bool       `json:"darkMode" yaml:"darkMode"`
	EditorType       EditorType `json:"editorType" yaml:"editorType"`
	AutoSaveInterval int        `json:"autoSaveInterval" yaml:"autoSaveInterval"` // seconds

	Extra map[string]json.RawMessage `json:"-" yaml:"-"`
}

// settingsFields is Settings without its JSON methods.
type settingsFields Settings

// fieldsByKey maps each recognized key, case-sensitively, to its field in s.
func (s *Settings) fieldsByKey() map[string]any {
	return map[string]any{
		"theme":            &s.Theme,
		"fontSize":         &s.FontSize,
		"autoSave":         &s.AutoSave,
		"darkMode":         &s.DarkMode,
		"editorType":       &s.EditorType,
		"autoSaveInterval": &s.AutoSaveInterval,
	}
}

// UnmarshalJSON decodes a settings object. Recognized keys absent from data
// keep their current values, so decoding over defaults fills the gaps.
// Keys match exactly: "Theme" is an unknown key kept in Extra, not the theme.
// Anything other than a JSON object is rejected.
func (s *Settings) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("settings must be an object: %w", err)
	}
	if raw == nil {
		return fmt.Errorf("settings must be an object, got null")
	}

	decoded := *s
	decoded.Extra = nil
	fields := decoded.fieldsByKey()
	for k, v := range raw {
		field, ok := fields[k]
		if !ok {
			if decoded.Extra == nil {
				decoded.Extra = make(map[string]json.RawMessage)
			}
			decoded.Extra[k] = v
			continue
		}
		if err := json.Unmarshal(v, field); err != nil {
			return fmt.Errorf("settings %s: %w", k, err)
		}
	}

	*s = decoded
	return nil
}

// MarshalJSON writes recognized keys first, then Extra in key order.
func (s Settings) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(settingsFields(s))
	if err != nil {
		return nil, err
	}
	if len(s.Extra) == 0 {
		return base, nil
	}

	keys := make([]string, 0, len(s.Extra))
	for k := range s.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.Write(base[:len(base)-1])
	for _, k := range keys {
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(s.Extra[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Effective resolves the theme against the host's ambient appearance.
func (s *Settings) Effective(ambientDark bool) EffectiveTheme {
	if s.Theme == ThemeDark || (s.Theme == ThemeSystem && ambientDark) {
		return EffectiveDark
	}
	return EffectiveLight
}
