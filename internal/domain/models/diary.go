package models

import (
	"time"
)

// UntitledTitle replaces an empty title on save.
const UntitledTitle = "无标题"

// DateLayout is the calendar date format the front end sends.
const DateLayout = "2006-01-02"

// DiaryEntry is one dated journal entry. It lives in exactly one of the
// active or trash collections.
type DiaryEntry struct {
	ID        string     `json:"id"`
	Date      string     `json:"date"`
	Title     string     `json:"title"`
	Content   string     `json:"content"` // HTML from the rich-text editor, or plain text
	UpdatedAt time.Time  `json:"updatedAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"` // set only while in the trash
}

// ParsedDate parses Date as a calendar date or an RFC 3339 timestamp.
func (e *DiaryEntry) ParsedDate() (time.Time, bool) {
	return ParseEntryDate(e.Date)
}

// ParseEntryDate accepts the date forms the editor has produced over time.
func ParseEntryDate(s string) (time.Time, bool) {
	if t, err := time.ParseInLocation(DateLayout, s, time.Local); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// DiaryCollection is the stored shape of both diaries.json and trash.json.
type DiaryCollection struct {
	Diaries []DiaryEntry `json:"diaries"`
}

// IndexOf returns the position of the entry with id, or -1.
func (c *DiaryCollection) IndexOf(id string) int {
	for i := range c.Diaries {
		if c.Diaries[i].ID == id {
			return i
		}
	}
	return -1
}

// Find returns a copy of the entry with id.
func (c *DiaryCollection) Find(id string) (*DiaryEntry, bool) {
	i := c.IndexOf(id)
	if i < 0 {
		return nil, false
	}
	entry := c.Diaries[i]
	return &entry, true
}

// Remove deletes the entry with id, preserving the order of the rest.
func (c *DiaryCollection) Remove(id string) (DiaryEntry, bool) {
	i := c.IndexOf(id)
	if i < 0 {
		return DiaryEntry{}, false
	}
	entry := c.Diaries[i]
	c.Diaries = append(c.Diaries[:i], c.Diaries[i+1:]...)
	return entry, true
}

// SaveDiaryRequest is the payload of save-diary. An empty ID asks for a new one.
type SaveDiaryRequest struct {
	ID      string `json:"id,omitempty"`
	Date    string `json:"date"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Statistics summarizes the collections for the dashboard.
type Statistics struct {
	Total   int `json:"total"`
	Monthly int `json:"monthly"`
	Trashed int `json:"trashed"`
}
