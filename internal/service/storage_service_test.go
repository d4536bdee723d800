package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yunpan-go/internal/model"
)

func TestSelectForUploadByPriority(t *testing.T) {
	env := newTestEnv(t)
	high := env.addSource(t, 1, 100)
	low := env.addSource(t, 5, 1000)

	source, err := env.storageSvc.SelectForUpload(50)
	require.NoError(t, err)
	assert.Equal(t, high.ID, source.ID)

	// 超出高优先级容量时跳到下一个
	source, err = env.storageSvc.SelectForUpload(500)
	require.NoError(t, err)
	assert.Equal(t, low.ID, source.ID)

	// 所有源都放不下
	_, err = env.storageSvc.SelectForUpload(5000)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestSelectForUploadSkipsInactive(t *testing.T) {
	env := newTestEnv(t)
	high := env.addSource(t, 1, 1000)
	low := env.addSource(t, 5, 1000)
	require.NoError(t, env.sourceRepo.UpdateActive(high.ID, false))

	source, err := env.storageSvc.SelectForUpload(10)
	require.NoError(t, err)
	assert.Equal(t, low.ID, source.ID)

	require.NoError(t, env.sourceRepo.UpdateActive(low.ID, false))
	_, err = env.storageSvc.SelectForUpload(10)
	assert.ErrorIs(t, err, ErrNoActiveSource)
}

func TestCheckQuota(t *testing.T) {
	env := newTestEnv(t)
	source := env.addSource(t, 1, 100)

	assert.NoError(t, env.storageSvc.CheckQuota(source, 100))
	assert.ErrorIs(t, env.storageSvc.CheckQuota(source, 101), ErrQuotaExceeded)
}

func TestDeleteSourceInUse(t *testing.T) {
	env := newTestEnv(t)
	source := env.addSource(t, 1, 100)
	env.uploadFile(t, "a.txt", 10, nil)

	err := env.storageSvc.DeleteSource(context.Background(), source.ID)
	assert.ErrorIs(t, err, ErrSourceInUse)

	// 清空文件后可以删除
	files, _, err := env.fileRepo.List(nil, 0, 10, "createdAt", "desc")
	require.NoError(t, err)
	for i := range files {
		require.NoError(t, env.fileSvc.DeleteFile(context.Background(), files[i].ID))
	}
	require.NoError(t, env.storageSvc.DeleteSource(context.Background(), source.ID))
}

func TestDeleteLocalSourceNeedsFallback(t *testing.T) {
	env := newTestEnv(t)
	local := &model.StorageSource{
		Name:       "local-main",
		Type:       model.StorageTypeLocal,
		Priority:   1,
		QuotaLimit: 100,
		IsActive:   true,
	}
	require.NoError(t, env.sourceRepo.Create(local))

	// 没有其它激活的源时拒绝删除 local
	err := env.storageSvc.DeleteSource(context.Background(), local.ID)
	assert.ErrorIs(t, err, ErrValidation)

	env.addSource(t, 2, 100)
	require.NoError(t, env.storageSvc.DeleteSource(context.Background(), local.ID))
}

func TestCreateSourceValidatesQuota(t *testing.T) {
	env := newTestEnv(t)

	err := env.storageSvc.CreateSource(context.Background(), &model.StorageSource{
		Name:       "bad",
		Type:       model.StorageTypeCustom,
		QuotaLimit: -1,
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestTestSourceFlipsActive(t *testing.T) {
	env := newTestEnv(t)
	source := env.addSource(t, 1, 100)

	healthy, err := env.storageSvc.TestSource(context.Background(), source.ID)
	require.NoError(t, err)
	assert.True(t, healthy)

	got, err := env.sourceRepo.FindByID(source.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
}
