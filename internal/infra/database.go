package infra

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/schema"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/store"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the shop database at path, creating its directory, and
// migrates it to the current schema. debug turns on gorm's SQL log.
func NewDatabase(path string, debug bool) (*store.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("database dir: %w", err)
		}
	}
	opts := store.Options{}
	if debug {
		opts.LogLevel = logger.Warn
	}
	st, err := store.Open(path, schema.App, opts)
	if err != nil {
		return nil, err
	}

	v, err := st.SchemaVersion(context.Background())
	if err != nil {
		st.Close()
		return nil, err
	}
	log.Info().Str("path", path).Int("schema_version", v).Msg("database ready")
	return st, nil
}
