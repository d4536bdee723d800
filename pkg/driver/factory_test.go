package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yunpan-go/internal/model"
)

func TestFactoryRejectsUnknownType(t *testing.T) {
	factory := &Factory{}
	_, err := factory.New(&model.StorageSource{Type: "floppy"})
	assert.ErrorIs(t, err, ErrUnsupportedBackend)
}

func TestFactoryLocalDefaults(t *testing.T) {
	factory := &Factory{
		LocalDefaults: LocalConfig{BaseDir: t.TempDir(), MaxFileSize: 1024},
	}

	adapter, err := factory.New(&model.StorageSource{Type: model.StorageTypeLocal})
	require.NoError(t, err)
	local, ok := adapter.(*LocalAdapter)
	require.True(t, ok)
	assert.Equal(t, factory.LocalDefaults.BaseDir, local.baseDir)
	assert.Equal(t, int64(1024), local.maxFileSize)
}

func TestFactoryLocalConfigOverridesDefaults(t *testing.T) {
	factory := &Factory{
		LocalDefaults: LocalConfig{BaseDir: "./default", MaxFileSize: 1024},
	}

	adapter, err := factory.New(&model.StorageSource{
		Type:   model.StorageTypeLocal,
		Config: `{"baseDir":"/data/files","maxFileSize":2048}`,
	})
	require.NoError(t, err)
	local := adapter.(*LocalAdapter)
	assert.Equal(t, "/data/files", local.baseDir)
	assert.Equal(t, int64(2048), local.maxFileSize)
}

func TestFactoryRejectsMalformedConfig(t *testing.T) {
	factory := &Factory{}
	_, err := factory.New(&model.StorageSource{
		Type:   model.StorageTypeLocal,
		Config: "{not json",
	})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestFactoryObjectStoreVariants(t *testing.T) {
	factory := &Factory{}
	cfg := `{"endpoint":"127.0.0.1:9000","accessKey":"ak","secretKey":"sk","bucket":"files"}`

	for _, typ := range []model.StorageSourceType{model.StorageTypeR2, model.StorageTypeQiniu, model.StorageTypeMinIO} {
		adapter, err := factory.New(&model.StorageSource{Type: typ, Config: cfg})
		require.NoError(t, err, "type %s", typ)
		_, ok := adapter.(*ObjectStoreAdapter)
		assert.True(t, ok, "type %s", typ)
	}
}
