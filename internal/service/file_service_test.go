package service

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadUpdatesQuota(t *testing.T) {
	env := newTestEnv(t)
	source := env.addSource(t, 1, 100)

	file := env.uploadFile(t, "hello.txt", 40, nil)
	assert.Equal(t, source.ID, file.StorageSourceID)
	assert.Equal(t, int64(40), file.Size)

	got, err := env.sourceRepo.FindByID(source.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(40), got.QuotaUsed)
	assert.Equal(t, 1, env.adapter.count())
}

func TestUploadQuotaExceededLeavesUsageUntouched(t *testing.T) {
	env := newTestEnv(t)
	source := env.addSource(t, 1, 100)
	env.uploadFile(t, "big.bin", 90, nil)

	_, err := env.fileSvc.Upload(context.Background(), bytes.NewReader(make([]byte, 20)), "over.bin", 20, "application/octet-stream", "", nil, 1)
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	got, err := env.sourceRepo.FindByID(source.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(90), got.QuotaUsed)
	assert.Equal(t, 1, env.adapter.count())
}

func TestDeleteFileReconcilesQuota(t *testing.T) {
	env := newTestEnv(t)
	source := env.addSource(t, 1, 100)
	file := env.uploadFile(t, "gone.txt", 30, nil)

	require.NoError(t, env.fileSvc.DeleteFile(context.Background(), file.ID))

	got, err := env.sourceRepo.FindByID(source.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.QuotaUsed)
	assert.Equal(t, 0, env.adapter.count())

	_, _, err = env.fileSvc.Download(context.Background(), file.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDownloadRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	env.addSource(t, 1, 100)

	content := []byte("file content here")
	file, err := env.fileSvc.Upload(context.Background(), bytes.NewReader(content), "doc.txt", int64(len(content)), "text/plain", "", nil, 1)
	require.NoError(t, err)

	rc, meta, err := env.fileSvc.Download(context.Background(), file.ID)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, data)
	assert.Equal(t, "doc.txt", meta.OriginalName)
}

func TestCreateFolderDuplicateName(t *testing.T) {
	env := newTestEnv(t)
	env.mustFolder(t, "docs", nil)

	_, err := env.fileSvc.CreateFolder(context.Background(), "docs", nil, 1)
	assert.ErrorIs(t, err, ErrDuplicateName)

	// 不同层级允许同名
	parent := env.mustFolder(t, "other", nil)
	_, err = env.fileSvc.CreateFolder(context.Background(), "docs", &parent.ID, 1)
	assert.NoError(t, err)
}

func TestCreateFolderInvalidParent(t *testing.T) {
	env := newTestEnv(t)
	missing := uint(999)
	_, err := env.fileSvc.CreateFolder(context.Background(), "orphan", &missing, 1)
	assert.ErrorIs(t, err, ErrInvalidFolder)
}

func TestMoveFolderIntoOwnSubtree(t *testing.T) {
	env := newTestEnv(t)
	a := env.mustFolder(t, "a", nil)
	b := env.mustFolder(t, "b", &a.ID)
	c := env.mustFolder(t, "c", &b.ID)

	// 移入直接子目录
	err := env.fileSvc.MoveFolder(context.Background(), a.ID, &b.ID)
	assert.ErrorIs(t, err, ErrCyclicMove)

	// 移入深层后代
	err = env.fileSvc.MoveFolder(context.Background(), a.ID, &c.ID)
	assert.ErrorIs(t, err, ErrCyclicMove)

	// 移入自身
	err = env.fileSvc.MoveFolder(context.Background(), a.ID, &a.ID)
	assert.ErrorIs(t, err, ErrCyclicMove)

	// 拒绝后路径未被触碰
	got, err := env.folderRepo.FindByID(c.ID)
	require.NoError(t, err)
	assert.Equal(t, "/a/b/c", got.Path)
}

func TestMoveFolderCascadesPaths(t *testing.T) {
	env := newTestEnv(t)
	a := env.mustFolder(t, "a", nil)
	b := env.mustFolder(t, "b", &a.ID)
	c := env.mustFolder(t, "c", &b.ID)
	dest := env.mustFolder(t, "dest", nil)

	require.NoError(t, env.fileSvc.MoveFolder(context.Background(), a.ID, &dest.ID))

	gotA, err := env.folderRepo.FindByID(a.ID)
	require.NoError(t, err)
	assert.Equal(t, "/dest/a", gotA.Path)

	gotC, err := env.folderRepo.FindByID(c.ID)
	require.NoError(t, err)
	assert.Equal(t, "/dest/a/b/c", gotC.Path)

	// 移回根目录
	require.NoError(t, env.fileSvc.MoveFolder(context.Background(), a.ID, nil))
	gotC, err = env.folderRepo.FindByID(c.ID)
	require.NoError(t, err)
	assert.Equal(t, "/a/b/c", gotC.Path)
}

func TestRenameFolderCascadesPaths(t *testing.T) {
	env := newTestEnv(t)
	a := env.mustFolder(t, "a", nil)
	b := env.mustFolder(t, "b", &a.ID)
	c := env.mustFolder(t, "c", &b.ID)

	require.NoError(t, env.fileSvc.RenameFolder(context.Background(), a.ID, "x"))

	gotA, err := env.folderRepo.FindByID(a.ID)
	require.NoError(t, err)
	assert.Equal(t, "x", gotA.Name)
	assert.Equal(t, "/x", gotA.Path)

	gotC, err := env.folderRepo.FindByID(c.ID)
	require.NoError(t, err)
	assert.Equal(t, "/x/b/c", gotC.Path)
}

func TestMoveFileBetweenFolders(t *testing.T) {
	env := newTestEnv(t)
	env.addSource(t, 1, 100)
	folder := env.mustFolder(t, "docs", nil)
	file := env.uploadFile(t, "a.txt", 10, nil)

	require.NoError(t, env.fileSvc.MoveFile(context.Background(), file.ID, &folder.ID))
	got, err := env.fileRepo.FindByID(file.ID)
	require.NoError(t, err)
	require.NotNil(t, got.FolderID)
	assert.Equal(t, folder.ID, *got.FolderID)

	// 移回根目录
	require.NoError(t, env.fileSvc.MoveFile(context.Background(), file.ID, nil))
	got, err = env.fileRepo.FindByID(file.ID)
	require.NoError(t, err)
	assert.Nil(t, got.FolderID)
}

func TestCopyFileChargesQuota(t *testing.T) {
	env := newTestEnv(t)
	source := env.addSource(t, 1, 100)
	file := env.uploadFile(t, "a.txt", 30, nil)

	copied, err := env.fileSvc.CopyFile(context.Background(), file.ID, nil, 1)
	require.NoError(t, err)
	assert.NotEqual(t, file.StoragePath, copied.StoragePath)
	assert.Equal(t, file.Size, copied.Size)

	got, err := env.sourceRepo.FindByID(source.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(60), got.QuotaUsed)
	assert.Equal(t, 2, env.adapter.count())
}

func TestCopyFileQuotaExceeded(t *testing.T) {
	env := newTestEnv(t)
	source := env.addSource(t, 1, 100)
	file := env.uploadFile(t, "a.bin", 60, nil)

	_, err := env.fileSvc.CopyFile(context.Background(), file.ID, nil, 1)
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	// 失败后没有新增物理对象和计数
	got, err := env.sourceRepo.FindByID(source.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(60), got.QuotaUsed)
	assert.Equal(t, 1, env.adapter.count())
}

func TestCopyFolderPartialSuccess(t *testing.T) {
	env := newTestEnv(t)
	env.addSource(t, 1, 1000)
	src := env.mustFolder(t, "src", nil)
	sub := env.mustFolder(t, "sub", &src.ID)
	env.uploadFile(t, "one.txt", 10, &src.ID)
	broken := env.uploadFile(t, "two.txt", 10, &src.ID)
	env.uploadFile(t, "three.txt", 10, &sub.ID)

	// 模拟后端字节丢失，复制该文件时会失败
	env.adapter.remove(broken.StoragePath)

	mirror, err := env.fileSvc.CopyFolder(context.Background(), src.ID, nil, 1)
	require.NoError(t, err)

	rootFiles, err := env.fileRepo.FindByFolder(&mirror.ID)
	require.NoError(t, err)
	assert.Len(t, rootFiles, 1)
	assert.Equal(t, "one.txt", rootFiles[0].OriginalName)

	subMirrors, err := env.folderRepo.FindChildren(&mirror.ID)
	require.NoError(t, err)
	require.Len(t, subMirrors, 1)
	subFiles, err := env.fileRepo.FindByFolder(&subMirrors[0].ID)
	require.NoError(t, err)
	assert.Len(t, subFiles, 1)
}

func TestDeleteFolderRecursive(t *testing.T) {
	env := newTestEnv(t)
	source := env.addSource(t, 1, 1000)
	root := env.mustFolder(t, "root", nil)
	sub := env.mustFolder(t, "sub", &root.ID)
	env.uploadFile(t, "a.txt", 10, &root.ID)
	env.uploadFile(t, "b.txt", 20, &sub.ID)

	require.NoError(t, env.fileSvc.DeleteFolder(context.Background(), root.ID))

	got, err := env.sourceRepo.FindByID(source.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.QuotaUsed)
	assert.Equal(t, 0, env.adapter.count())

	_, err = env.folderRepo.FindByID(sub.ID)
	assert.Error(t, err)
}

func TestListPaginatesFiles(t *testing.T) {
	env := newTestEnv(t)
	env.addSource(t, 1, 1000)
	env.mustFolder(t, "docs", nil)
	env.uploadFile(t, "a.txt", 10, nil)
	env.uploadFile(t, "b.txt", 20, nil)
	env.uploadFile(t, "c.txt", 30, nil)

	result, err := env.fileSvc.List(context.Background(), nil, 1, 2, "size", "desc")
	require.NoError(t, err)
	assert.Len(t, result.Folders, 1)
	assert.Equal(t, int64(3), result.TotalFiles)
	require.Len(t, result.Files, 2)
	assert.Equal(t, int64(30), result.Files[0].Size)

	result, err = env.fileSvc.List(context.Background(), nil, 2, 2, "size", "desc")
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Equal(t, int64(10), result.Files[0].Size)
}

func TestUploadSelectsSourceByPriority(t *testing.T) {
	env := newTestEnv(t)
	high := env.addSource(t, 1, 50)
	low := env.addSource(t, 2, 1000)

	// 高优先级能容纳时选高优先级
	file := env.uploadFile(t, "small.txt", 40, nil)
	assert.Equal(t, high.ID, file.StorageSourceID)

	// 高优先级放不下时落到低优先级
	file = env.uploadFile(t, "large.bin", 100, nil)
	assert.Equal(t, low.ID, file.StorageSourceID)
}
