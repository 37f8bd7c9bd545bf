package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/dto"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/store"

	"github.com/rs/zerolog/log"
)

var (
	// ErrShareCancelled is returned by a Sharer when the user dismisses the
	// share sheet. The backup file is already saved, so it is not a failure.
	ErrShareCancelled = errors.New("share cancelled")
	// ErrPickerCancelled is returned by a FilePicker when no file was chosen.
	ErrPickerCancelled = errors.New("file picker cancelled")
)

// Sharer hands a saved backup file to the platform (share sheet, upload, ...).
type Sharer interface {
	Share(ctx context.Context, path string) error
}

// FilePicker lets the user choose a backup document to import.
type FilePicker interface {
	Pick(ctx context.Context) (io.ReadCloser, error)
}

// PickerFunc adapts a function to FilePicker.
type PickerFunc func(ctx context.Context) (io.ReadCloser, error)

func (f PickerFunc) Pick(ctx context.Context) (io.ReadCloser, error) { return f(ctx) }

// FilePath picks a fixed file, for the CLI.
func FilePath(path string) FilePicker {
	return PickerFunc(func(context.Context) (io.ReadCloser, error) { return os.Open(path) })
}

// ReaderPicker picks an already open document, for uploads.
func ReaderPicker(r io.Reader) FilePicker {
	return PickerFunc(func(context.Context) (io.ReadCloser, error) { return io.NopCloser(r), nil })
}

type BackupService interface {
	ExportData(ctx context.Context) (*dto.ExportResponse, error)
	ImportData(ctx context.Context, picker FilePicker) (*dto.ImportResponse, error)
	GetBackupInfo(ctx context.Context) (*dto.BackupInfo, error)
}

// BackupConfig: Dir receives export files; Sharer may be nil.
type BackupConfig struct {
	Dir      string
	Sharer   Sharer
	Now      func() time.Time
	Location *time.Location
}

type backupService struct {
	st  *store.Store
	cfg BackupConfig
}

func NewBackupService(st *store.Store, cfg BackupConfig) BackupService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &backupService{st: st, cfg: cfg}
}

// ExportData writes kiranamitra-backup-<timestamp>.json into the backup
// directory, then offers it to the sharer.
func (s *backupService) ExportData(ctx context.Context) (*dto.ExportResponse, error) {
	now := s.cfg.Now()
	snap, err := BuildSnapshot(ctx, s.st, now)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("kiranamitra-backup-%s.json", now.In(s.cfg.Location).Format("20060102-150405"))
	path := filepath.Join(s.cfg.Dir, name)
	if err := writeJSONFile(path, snap); err != nil {
		return nil, fmt.Errorf("save backup: %w", err)
	}
	records := snap.Records()
	log.Info().Str("path", path).Int64("records", records).Msg("backup exported")

	if s.cfg.Sharer != nil {
		if err := s.cfg.Sharer.Share(ctx, path); err != nil && !errors.Is(err, ErrShareCancelled) {
			return nil, fmt.Errorf("share backup: %w", err)
		}
	}
	return &dto.ExportResponse{Path: path, Records: records}, nil
}

// ImportData replaces the whole database with the picked document. A cancelled
// picker returns Imported=false and no error. Once the restore transaction has
// started it runs to the end even if ctx is cancelled.
func (s *backupService) ImportData(ctx context.Context, picker FilePicker) (*dto.ImportResponse, error) {
	rc, err := picker.Pick(ctx)
	if errors.Is(err, ErrPickerCancelled) {
		return &dto.ImportResponse{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open backup: %w", err)
	}
	defer rc.Close()

	snap, err := ParseSnapshot(rc)
	if err != nil {
		return nil, err
	}
	n, err := RestoreSnapshot(ctx, s.st, snap)
	if err != nil {
		return nil, err
	}
	log.Info().Int64("records", n).Str("backup_created_at", snap.CreatedAt).Msg("backup imported")
	return &dto.ImportResponse{Imported: true, Records: n}, nil
}

func (s *backupService) GetBackupInfo(ctx context.Context) (*dto.BackupInfo, error) {
	info := &dto.BackupInfo{Tables: make([]dto.TableCount, 0, len(BackupTables))}
	for _, name := range BackupTables {
		n, err := s.st.Count(ctx, name)
		if err != nil {
			return nil, err
		}
		info.TotalRecords += n
		info.Tables = append(info.Tables, dto.TableCount{Table: name, Count: n})
	}
	return info, nil
}

// writeJSONFile writes through a temp file so a crash never leaves a
// truncated backup under the final name.
func writeJSONFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".backup-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
