package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yunpan-go/internal/model"
)

func TestShareSnapshotIsImmutable(t *testing.T) {
	env := newTestEnv(t)
	env.addSource(t, 1, 1000)
	folder := env.mustFolder(t, "docs", nil)
	file := env.uploadFile(t, "report.txt", 10, &folder.ID)

	share, err := env.shareSvc.CreateShare(context.Background(), CreateShareRequest{
		TargetType: model.SnapshotTypeFolder,
		TargetID:   folder.ID,
	}, 1)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(share.ShareToken), 10)

	// 创建分享后改动活动树：改名、移动、新增
	require.NoError(t, env.fileSvc.RenameFile(context.Background(), file.ID, "renamed.txt"))
	require.NoError(t, env.fileSvc.MoveFile(context.Background(), file.ID, nil))
	env.uploadFile(t, "later.txt", 10, &folder.ID)

	view, err := env.shareSvc.ResolveShare(context.Background(), share.ShareToken, "")
	require.NoError(t, err)
	require.Len(t, view.Tree.Folders, 1)

	snap := view.Tree.Folders[0]
	assert.Equal(t, "docs", snap.Name)
	require.Len(t, snap.Children.Files, 1)
	// 快照里仍然是创建时的名称，后来新增的文件不可见
	assert.Equal(t, "report.txt", snap.Children.Files[0].Name)
}

func TestShareUnknownOrDeactivatedToken(t *testing.T) {
	env := newTestEnv(t)
	env.addSource(t, 1, 1000)
	file := env.uploadFile(t, "a.txt", 10, nil)

	_, err := env.shareSvc.ResolveShare(context.Background(), "no-such-token", "")
	assert.ErrorIs(t, err, ErrNotFound)

	share, err := env.shareSvc.CreateShare(context.Background(), CreateShareRequest{
		TargetType: model.SnapshotTypeFile,
		TargetID:   file.ID,
	}, 1)
	require.NoError(t, err)

	require.NoError(t, env.shareSvc.DeactivateShare(context.Background(), share.ID, 1))
	_, err = env.shareSvc.ResolveShare(context.Background(), share.ShareToken, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestShareExpired(t *testing.T) {
	env := newTestEnv(t)
	env.addSource(t, 1, 1000)
	file := env.uploadFile(t, "a.txt", 10, nil)

	expires := time.Now().Add(time.Minute)
	share, err := env.shareSvc.CreateShare(context.Background(), CreateShareRequest{
		TargetType: model.SnapshotTypeFile,
		TargetID:   file.ID,
		ExpiresAt:  &expires,
	}, 1)
	require.NoError(t, err)

	// 将过期时间改到过去，模拟时间流逝
	past := time.Now().Add(-time.Minute)
	require.NoError(t, env.db.Model(&model.Share{}).Where("id = ?", share.ID).Update("expires_at", past).Error)

	_, err = env.shareSvc.ResolveShare(context.Background(), share.ShareToken, "")
	assert.ErrorIs(t, err, ErrShareExpired)

	_, err = env.shareSvc.AuthorizeFileDownload(context.Background(), share.ShareToken, "", file.ID)
	assert.ErrorIs(t, err, ErrShareExpired)
}

func TestSharePasswordGate(t *testing.T) {
	env := newTestEnv(t)
	env.addSource(t, 1, 1000)
	file := env.uploadFile(t, "secret.txt", 10, nil)

	share, err := env.shareSvc.CreateShare(context.Background(), CreateShareRequest{
		TargetType: model.SnapshotTypeFile,
		TargetID:   file.ID,
		Password:   "open-sesame",
	}, 1)
	require.NoError(t, err)

	_, err = env.shareSvc.ResolveShare(context.Background(), share.ShareToken, "")
	assert.ErrorIs(t, err, ErrInvalidSharePassword)

	_, err = env.shareSvc.ResolveShare(context.Background(), share.ShareToken, "wrong")
	assert.ErrorIs(t, err, ErrInvalidSharePassword)

	view, err := env.shareSvc.ResolveShare(context.Background(), share.ShareToken, "open-sesame")
	require.NoError(t, err)
	assert.True(t, view.RequirePwd)
}

func TestShareDownloadLimit(t *testing.T) {
	env := newTestEnv(t)
	env.addSource(t, 1, 1000)
	file := env.uploadFile(t, "a.txt", 10, nil)

	limit := 1
	share, err := env.shareSvc.CreateShare(context.Background(), CreateShareRequest{
		TargetType:    model.SnapshotTypeFile,
		TargetID:      file.ID,
		DownloadLimit: &limit,
	}, 1)
	require.NoError(t, err)

	got, err := env.shareSvc.AuthorizeFileDownload(context.Background(), share.ShareToken, "", file.ID)
	require.NoError(t, err)
	assert.Equal(t, file.ID, got.ID)

	_, err = env.shareSvc.AuthorizeFileDownload(context.Background(), share.ShareToken, "", file.ID)
	assert.ErrorIs(t, err, ErrShareLimitReached)
}

func TestShareRejectsFileOutsideSnapshot(t *testing.T) {
	env := newTestEnv(t)
	env.addSource(t, 1, 1000)
	folder := env.mustFolder(t, "docs", nil)
	inside := env.uploadFile(t, "in.txt", 10, &folder.ID)
	outside := env.uploadFile(t, "out.txt", 10, nil)

	share, err := env.shareSvc.CreateShare(context.Background(), CreateShareRequest{
		TargetType: model.SnapshotTypeFolder,
		TargetID:   folder.ID,
	}, 1)
	require.NoError(t, err)

	_, err = env.shareSvc.AuthorizeFileDownload(context.Background(), share.ShareToken, "", inside.ID)
	assert.NoError(t, err)

	_, err = env.shareSvc.AuthorizeFileDownload(context.Background(), share.ShareToken, "", outside.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestShareDeletedFileNotFound(t *testing.T) {
	env := newTestEnv(t)
	env.addSource(t, 1, 1000)
	file := env.uploadFile(t, "gone.txt", 10, nil)

	share, err := env.shareSvc.CreateShare(context.Background(), CreateShareRequest{
		TargetType: model.SnapshotTypeFile,
		TargetID:   file.ID,
	}, 1)
	require.NoError(t, err)

	require.NoError(t, env.fileSvc.DeleteFile(context.Background(), file.ID))

	// 快照仍列出该文件，但下载时返回不存在
	view, err := env.shareSvc.ResolveShare(context.Background(), share.ShareToken, "")
	require.NoError(t, err)
	require.Len(t, view.Tree.Files, 1)

	_, err = env.shareSvc.AuthorizeFileDownload(context.Background(), share.ShareToken, "", file.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestShareOwnershipChecks(t *testing.T) {
	env := newTestEnv(t)
	env.addSource(t, 1, 1000)
	file := env.uploadFile(t, "a.txt", 10, nil)

	share, err := env.shareSvc.CreateShare(context.Background(), CreateShareRequest{
		TargetType: model.SnapshotTypeFile,
		TargetID:   file.ID,
	}, 1)
	require.NoError(t, err)

	// 其他用户不能停用或删除
	assert.ErrorIs(t, env.shareSvc.DeactivateShare(context.Background(), share.ID, 2), ErrForbidden)
	assert.ErrorIs(t, env.shareSvc.DeleteShare(context.Background(), share.ID, 2), ErrForbidden)

	require.NoError(t, env.shareSvc.DeleteShare(context.Background(), share.ID, 1))
	_, err = env.shareSvc.ResolveShare(context.Background(), share.ShareToken, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestShareViewCountIncrements(t *testing.T) {
	env := newTestEnv(t)
	env.addSource(t, 1, 1000)
	file := env.uploadFile(t, "a.txt", 10, nil)

	share, err := env.shareSvc.CreateShare(context.Background(), CreateShareRequest{
		TargetType: model.SnapshotTypeFile,
		TargetID:   file.ID,
	}, 1)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = env.shareSvc.ResolveShare(context.Background(), share.ShareToken, "")
		require.NoError(t, err)
	}

	shares, err := env.shareSvc.ListShares(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, shares, 1)
	assert.Equal(t, 3, shares[0].ViewCount)
}

func TestCreateShareValidation(t *testing.T) {
	env := newTestEnv(t)
	env.addSource(t, 1, 1000)
	file := env.uploadFile(t, "a.txt", 10, nil)

	// 不存在的目标
	_, err := env.shareSvc.CreateShare(context.Background(), CreateShareRequest{
		TargetType: model.SnapshotTypeFolder,
		TargetID:   999,
	}, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	// 过期时间在过去
	past := time.Now().Add(-time.Hour)
	_, err = env.shareSvc.CreateShare(context.Background(), CreateShareRequest{
		TargetType: model.SnapshotTypeFile,
		TargetID:   file.ID,
		ExpiresAt:  &past,
	}, 1)
	assert.ErrorIs(t, err, ErrValidation)

	// 非法的下载限额
	zero := 0
	_, err = env.shareSvc.CreateShare(context.Background(), CreateShareRequest{
		TargetType:    model.SnapshotTypeFile,
		TargetID:      file.ID,
		DownloadLimit: &zero,
	}, 1)
	assert.ErrorIs(t, err, ErrValidation)
}
