package dto

import "time"

type TableCount struct {
	Table string `json:"table"`
	Count int64  `json:"count"`
}

// BackupInfo is shown before an export.
type BackupInfo struct {
	TotalRecords int64        `json:"total_records"`
	Tables       []TableCount `json:"tables"`
}

type ExportResponse struct {
	Path    string `json:"path"`
	Records int64  `json:"records"`
}

type ImportResponse struct {
	Imported bool  `json:"imported"` // false when the picker was cancelled
	Records  int64 `json:"records"`
}

// ─── Cloud sync ──────────────────────────────────────────────────────────────

// SyncResult is the outcome of one sync attempt. Error is a short message
// meant for the settings screen.
type SyncResult struct {
	Success  bool       `json:"success"`
	Error    string     `json:"error,omitempty"`
	SyncedAt *time.Time `json:"synced_at,omitempty"`
}

type SyncStatus struct {
	Configured   bool       `json:"configured"`
	SignedIn     bool       `json:"signed_in"`
	Account      string     `json:"account,omitempty"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
}

// RemoteBackup describes the snapshot in the cloud without applying it.
type RemoteBackup struct {
	Exists     bool         `json:"exists"`
	ModifiedAt *time.Time   `json:"modified_at,omitempty"`
	CreatedAt  string       `json:"created_at,omitempty"`
	Version    int          `json:"version,omitempty"`
	Records    int64        `json:"records"`
	Tables     []TableCount `json:"tables,omitempty"`
}
