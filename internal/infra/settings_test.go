package infra

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/settings"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSettings_DatabaseByDefault(t *testing.T) {
	st, err := NewDatabase(filepath.Join(t.TempDir(), "data", "shop.db"), false)
	require.NoError(t, err)
	defer st.Close()

	kv, rdb, err := NewSettings(st, "")
	require.NoError(t, err)
	assert.Nil(t, rdb)
	assert.IsType(t, &settings.DBStore{}, kv)
}

func TestNewSettings_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	st, err := NewDatabase(filepath.Join(t.TempDir(), "shop.db"), false)
	require.NoError(t, err)
	defer st.Close()

	kv, rdb, err := NewSettings(st, "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	require.NotNil(t, rdb)
	defer rdb.Close()

	require.NoError(t, kv.Set(context.Background(), settings.KeyLanguage, "hi"))
	assert.Equal(t, "hi", mr.HGet("kiranamitra:settings", settings.KeyLanguage))
}

func TestNewSettings_RedisUnreachable(t *testing.T) {
	st, err := NewDatabase(filepath.Join(t.TempDir(), "shop.db"), false)
	require.NoError(t, err)
	defer st.Close()

	_, _, err = NewSettings(st, "redis://127.0.0.1:1/0")
	assert.Error(t, err)
}
