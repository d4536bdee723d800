package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"yunpan-go/internal/model"
	"yunpan-go/internal/repository"
	"yunpan-go/pkg/driver"
	"yunpan-go/pkg/log"
)

func TestMain(m *testing.M) {
	log.Init("error", "json", "")
	os.Exit(m.Run())
}

// newTestDB 创建一个隔离的内存 SQLite 数据库并完成建表。
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Role{},
		&model.Permission{},
		&model.StorageSource{},
		&model.Folder{},
		&model.File{},
		&model.Share{},
		&model.ShareSnapshot{},
	))
	return db
}

// memAdapter 是一个内存存储适配器，测试里代替真实后端。
type memAdapter struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemAdapter() *memAdapter {
	return &memAdapter{objects: make(map[string][]byte)}
}

func (a *memAdapter) Upload(ctx context.Context, r io.Reader, size int64, key string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.objects[key] = data
	return key, nil
}

func (a *memAdapter) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	data, exists := a.objects[path]
	if !exists {
		return nil, driver.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (a *memAdapter) Delete(ctx context.Context, path string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.objects[path]; !exists {
		return false
	}
	delete(a.objects, path)
	return true
}

func (a *memAdapter) TestConnection(ctx context.Context) error {
	return nil
}

// remove 直接丢弃一个对象，模拟后端字节丢失。
func (a *memAdapter) remove(path string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.objects, path)
}

func (a *memAdapter) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.objects)
}

// stubFactory 把所有存储源都解析到同一个内存适配器。
type stubFactory struct {
	adapter driver.Adapter
}

func (f *stubFactory) New(source *model.StorageSource) (driver.Adapter, error) {
	return f.adapter, nil
}

// testEnv 汇集一套可用的服务栈和底层句柄。
type testEnv struct {
	db         *gorm.DB
	adapter    *memAdapter
	sourceRepo repository.StorageSourceRepository
	fileRepo   repository.FileRepository
	folderRepo repository.FolderRepository
	shareRepo  repository.ShareRepository
	storageSvc StorageService
	fileSvc    FileService
	shareSvc   ShareService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	adapter := newMemAdapter()
	sourceRepo := repository.NewStorageSourceRepository(db)
	fileRepo := repository.NewFileRepository(db)
	folderRepo := repository.NewFolderRepository(db)
	shareRepo := repository.NewShareRepository(db)
	storageSvc := NewStorageService(sourceRepo, fileRepo, &stubFactory{adapter: adapter})

	return &testEnv{
		db:         db,
		adapter:    adapter,
		sourceRepo: sourceRepo,
		fileRepo:   fileRepo,
		folderRepo: folderRepo,
		shareRepo:  shareRepo,
		storageSvc: storageSvc,
		fileSvc:    NewFileService(fileRepo, folderRepo, storageSvc, nil, ""),
		shareSvc:   NewShareService(shareRepo, fileRepo, folderRepo, 16),
	}
}

// addSource 插入一个激活的存储源。
func (e *testEnv) addSource(t *testing.T, priority int, quotaLimit int64) *model.StorageSource {
	t.Helper()
	source := &model.StorageSource{
		Name:       fmt.Sprintf("source-p%d", priority),
		Type:       model.StorageTypeCustom,
		Priority:   priority,
		QuotaLimit: quotaLimit,
		IsActive:   true,
	}
	require.NoError(t, e.sourceRepo.Create(source))
	return source
}

// uploadFile 上传一个指定大小的文件。
func (e *testEnv) uploadFile(t *testing.T, name string, size int, folderID *uint) *model.File {
	t.Helper()
	file, err := e.fileSvc.Upload(
		context.Background(),
		bytes.NewReader(bytes.Repeat([]byte("a"), size)),
		name,
		int64(size),
		"text/plain",
		"",
		folderID,
		1,
	)
	require.NoError(t, err)
	return file
}

func (e *testEnv) mustFolder(t *testing.T, name string, parentID *uint) *model.Folder {
	t.Helper()
	folder, err := e.fileSvc.CreateFolder(context.Background(), name, parentID, 1)
	require.NoError(t, err)
	return folder
}
