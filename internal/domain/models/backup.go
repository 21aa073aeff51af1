package models

import "time"

// Archive entry names. An importable archive holds all three at its root.
const (
	DiariesFileName  = "diaries.json"
	TrashFileName    = "trash.json"
	SettingsFileName = "settings.json"
)

// ArchiveEntries lists the required archive entries in write order.
var ArchiveEntries = []string{DiariesFileName, TrashFileName, SettingsFileName}

// BackupInfo describes one archive in the backups directory.
type BackupInfo struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
	Mirrored  bool      `json:"mirrored,omitempty"` // uploaded to the off-site mirror
}

// ArchivePathRequest is the payload of export-data and import-data.
type ArchivePathRequest struct {
	Path string `json:"path"`
}

// DataLocation reports where the documents live on disk.
type DataLocation struct {
	DataDir   string `json:"dataDir"`
	BackupDir string `json:"backupDir"`
}
