// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"yunpan-go/internal/model"
	"yunpan-go/internal/repository"
	"yunpan-go/pkg/archive"
	"yunpan-go/pkg/driver"
	"yunpan-go/pkg/es"
	"yunpan-go/pkg/kafka"
	"yunpan-go/pkg/log"
)

// maxTreeDepth 是目录树遍历的深度上限。创建和移动路径上的校验
// 保证树中无环，但导入的脏数据可能破坏这一点，遍历时仍做防御。
const maxTreeDepth = 256

// EventPublisher 发布文件生命周期事件，nil 表示不发布。
type EventPublisher func(event kafka.FileEvent) error

// ListResult 是目录列表操作的返回载荷：
// 子目录不分页全量返回，文件按请求分页。
type ListResult struct {
	Folders    []model.Folder `json:"folders"`
	Files      []model.File   `json:"files"`
	TotalFiles int64          `json:"totalFiles"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
}

// FileService 接口定义了文件与目录树的全部业务操作。
type FileService interface {
	Upload(ctx context.Context, r io.Reader, originalName string, size int64, mimeType, md5Hash string, folderID *uint, userID uint) (*model.File, error)
	Download(ctx context.Context, fileID uint) (io.ReadCloser, *model.File, error)
	// GetDirectURL 返回后端直链；后端不支持该能力时返回空串而非错误。
	GetDirectURL(ctx context.Context, fileID uint) (string, error)
	DeleteFile(ctx context.Context, fileID uint) error
	CopyFile(ctx context.Context, fileID uint, targetFolderID *uint, userID uint) (*model.File, error)
	MoveFile(ctx context.Context, fileID uint, targetFolderID *uint) error
	RenameFile(ctx context.Context, fileID uint, newName string) error

	CreateFolder(ctx context.Context, name string, parentID *uint, userID uint) (*model.Folder, error)
	RenameFolder(ctx context.Context, folderID uint, newName string) error
	MoveFolder(ctx context.Context, folderID uint, targetFolderID *uint) error
	CopyFolder(ctx context.Context, folderID uint, targetFolderID *uint, userID uint) (*model.Folder, error)
	DeleteFolder(ctx context.Context, folderID uint) error

	List(ctx context.Context, folderID *uint, page, pageSize int, sortBy, order string) (*ListResult, error)
	DownloadFolder(ctx context.Context, folderID uint, w io.Writer) error
	SearchFiles(ctx context.Context, keyword string, userID uint) ([]model.File, error)
}

// fileService 是 FileService 接口的实现。
type fileService struct {
	fileRepo   repository.FileRepository
	folderRepo repository.FolderRepository
	storageSvc StorageService
	publish    EventPublisher
	esIndex    string
}

// NewFileService 创建一个新的 FileService 实例。
// publish 为 nil 时不发布事件，esIndex 为空时禁用检索。
func NewFileService(fileRepo repository.FileRepository, folderRepo repository.FolderRepository, storageSvc StorageService, publish EventPublisher, esIndex string) FileService {
	return &fileService{
		fileRepo:   fileRepo,
		folderRepo: folderRepo,
		storageSvc: storageSvc,
		publish:    publish,
		esIndex:    esIndex,
	}
}

// resolveFolder 校验目录引用：nil 表示根目录，非 nil 时目录必须存在。
// 目录 ID 为 0 或负数在 handler 解析阶段已被拒绝，这里兜底再查一次。
func (s *fileService) resolveFolder(folderID *uint) (*model.Folder, error) {
	if folderID == nil {
		return nil, nil
	}
	if *folderID == 0 {
		return nil, ErrInvalidFolder
	}
	folder, err := s.folderRepo.FindByID(*folderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidFolder
		}
		return nil, err
	}
	return folder, nil
}

// newStorageKey 生成一个全新的存储键，保留原始扩展名便于后端按类型处理。
func newStorageKey(originalName string) string {
	ext := strings.ToLower(path.Ext(originalName))
	return uuid.New().String() + ext
}

// emit 发布文件生命周期事件，发布失败只记日志不阻断主流程。
func (s *fileService) emit(eventType string, file *model.File) {
	if s.publish == nil {
		return
	}
	err := s.publish(kafka.FileEvent{
		Type:       eventType,
		FileID:     file.ID,
		Name:       file.OriginalName,
		MimeType:   file.MimeType,
		Size:       file.Size,
		UploadedBy: file.UploadedBy,
	})
	if err != nil {
		log.Warnf("[FileService] 发布文件事件失败: type=%s, fileID=%d, err=%v", eventType, file.ID, err)
	}
}

// Upload 上传一个新文件：按优先级选存储源，写前检查配额，
// 物理写入成功后在一个事务里落元数据并递增配额计数。
func (s *fileService) Upload(ctx context.Context, r io.Reader, originalName string, size int64, mimeType, md5Hash string, folderID *uint, userID uint) (*model.File, error) {
	if originalName == "" || size < 0 {
		return nil, fmt.Errorf("%w: 文件名为空或大小非法", ErrValidation)
	}
	folder, err := s.resolveFolder(folderID)
	if err != nil {
		return nil, err
	}

	source, err := s.storageSvc.SelectForUpload(size)
	if err != nil {
		return nil, err
	}
	if err := s.storageSvc.CheckQuota(source, size); err != nil {
		return nil, err
	}

	adapter, err := s.storageSvc.AdapterFor(source)
	if err != nil {
		return nil, err
	}

	key := newStorageKey(originalName)
	storagePath, err := adapter.Upload(ctx, r, size, key)
	if err != nil {
		log.Errorf("[FileService] 物理上传失败: name=%s, source=%d, err=%v", originalName, source.ID, err)
		return nil, err
	}

	file := &model.File{
		Name:            key,
		OriginalName:    originalName,
		Size:            size,
		MimeType:        mimeType,
		MD5Hash:         md5Hash,
		StoragePath:     storagePath,
		StorageSourceID: source.ID,
		UploadedBy:      userID,
	}
	if folder != nil {
		file.FolderID = &folder.ID
	}
	if err := s.fileRepo.CreateWithQuota(file); err != nil {
		// 物理字节已写入而元数据落库失败：尽力回收，失败时留下孤儿字节
		log.Errorf("[FileService] 元数据落库失败，回收已写入的物理对象: key=%s, err=%v", key, err)
		adapter.Delete(ctx, storagePath)
		return nil, err
	}

	s.emit(kafka.EventFileUploaded, file)
	log.Infof("[FileService] 上传完成: fileID=%d, name=%s, source=%d, size=%d", file.ID, originalName, source.ID, size)
	return file, nil
}

// Download 返回文件内容流和元数据。
func (s *fileService) Download(ctx context.Context, fileID uint) (io.ReadCloser, *model.File, error) {
	file, err := s.getFile(fileID)
	if err != nil {
		return nil, nil, err
	}
	source, err := s.storageSvc.GetSource(file.StorageSourceID)
	if err != nil {
		return nil, nil, err
	}
	adapter, err := s.storageSvc.AdapterFor(source)
	if err != nil {
		return nil, nil, err
	}
	rc, err := adapter.Download(ctx, file.StoragePath)
	if err != nil {
		if errors.Is(err, driver.ErrObjectNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	return rc, file, nil
}

// GetDirectURL 返回后端直链，后端不具备该能力时返回空串。
func (s *fileService) GetDirectURL(ctx context.Context, fileID uint) (string, error) {
	file, err := s.getFile(fileID)
	if err != nil {
		return "", err
	}
	source, err := s.storageSvc.GetSource(file.StorageSourceID)
	if err != nil {
		return "", err
	}
	adapter, err := s.storageSvc.AdapterFor(source)
	if err != nil {
		return "", err
	}
	provider, ok := adapter.(driver.DirectURLProvider)
	if !ok {
		return "", nil
	}
	return provider.GetDirectURL(ctx, file.StoragePath)
}

func (s *fileService) getFile(fileID uint) (*model.File, error) {
	file, err := s.fileRepo.FindByID(fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return file, nil
}

// DeleteFile 删除文件：物理删除尽力而为，失败只记日志；
// 元数据删除和配额递减在一个事务里完成。
func (s *fileService) DeleteFile(ctx context.Context, fileID uint) error {
	file, err := s.getFile(fileID)
	if err != nil {
		return err
	}

	source, err := s.storageSvc.GetSource(file.StorageSourceID)
	if err == nil {
		if adapter, aerr := s.storageSvc.AdapterFor(source); aerr == nil {
			if !adapter.Delete(ctx, file.StoragePath) {
				log.Warnf("[FileService] 物理删除未成功，继续清理元数据: fileID=%d, path=%s", fileID, file.StoragePath)
			}
		} else {
			log.Warnf("[FileService] 构造适配器失败，跳过物理删除: fileID=%d, err=%v", fileID, aerr)
		}
	} else {
		log.Warnf("[FileService] 读取存储源失败，跳过物理删除: fileID=%d, err=%v", fileID, err)
	}

	if err := s.fileRepo.DeleteWithQuota(file); err != nil {
		return err
	}
	s.emit(kafka.EventFileDeleted, file)
	return nil
}

// CopyFile 复制文件：对新副本的大小做写前配额检查，不足时
// 在触碰任何物理字节前失败。副本留在同一个存储源上。
func (s *fileService) CopyFile(ctx context.Context, fileID uint, targetFolderID *uint, userID uint) (*model.File, error) {
	file, err := s.getFile(fileID)
	if err != nil {
		return nil, err
	}
	folder, err := s.resolveFolder(targetFolderID)
	if err != nil {
		return nil, err
	}

	source, err := s.storageSvc.GetSource(file.StorageSourceID)
	if err != nil {
		return nil, err
	}
	if err := s.storageSvc.CheckQuota(source, file.Size); err != nil {
		return nil, err
	}

	adapter, err := s.storageSvc.AdapterFor(source)
	if err != nil {
		return nil, err
	}

	src, err := adapter.Download(ctx, file.StoragePath)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	key := newStorageKey(file.OriginalName)
	storagePath, err := adapter.Upload(ctx, src, file.Size, key)
	if err != nil {
		return nil, err
	}

	copied := &model.File{
		Name:            key,
		OriginalName:    file.OriginalName,
		Size:            file.Size,
		MimeType:        file.MimeType,
		MD5Hash:         file.MD5Hash,
		StoragePath:     storagePath,
		StorageSourceID: file.StorageSourceID,
		UploadedBy:      userID,
	}
	if folder != nil {
		copied.FolderID = &folder.ID
	} else {
		copied.FolderID = nil
	}
	if err := s.fileRepo.CreateWithQuota(copied); err != nil {
		adapter.Delete(ctx, storagePath)
		return nil, err
	}

	s.emit(kafka.EventFileCopied, copied)
	return copied, nil
}

// MoveFile 把文件重新挂到目标目录下，文件仍留在原存储源上，配额不变。
func (s *fileService) MoveFile(ctx context.Context, fileID uint, targetFolderID *uint) error {
	if _, err := s.getFile(fileID); err != nil {
		return err
	}
	folder, err := s.resolveFolder(targetFolderID)
	if err != nil {
		return err
	}
	if folder != nil {
		return s.fileRepo.UpdateFolderID(fileID, &folder.ID)
	}
	return s.fileRepo.UpdateFolderID(fileID, nil)
}

// RenameFile 更新文件的展示名称，纯元数据操作。
func (s *fileService) RenameFile(ctx context.Context, fileID uint, newName string) error {
	if newName == "" {
		return fmt.Errorf("%w: 名称不能为空", ErrValidation)
	}
	if _, err := s.getFile(fileID); err != nil {
		return err
	}
	return s.fileRepo.UpdateOriginalName(fileID, newName)
}

// folderPath 计算目录的物化路径：父目录路径拼接自身名称。
func folderPath(parent *model.Folder, name string) string {
	if parent == nil {
		return "/" + name
	}
	return parent.Path + "/" + name
}

// CreateFolder 创建目录，同级重名时返回 ErrDuplicateName。
func (s *fileService) CreateFolder(ctx context.Context, name string, parentID *uint, userID uint) (*model.Folder, error) {
	if name == "" || strings.ContainsRune(name, '/') {
		return nil, fmt.Errorf("%w: 目录名称非法", ErrValidation)
	}
	parent, err := s.resolveFolder(parentID)
	if err != nil {
		return nil, err
	}

	if _, err := s.folderRepo.FindByNameAndParent(name, parentID); err == nil {
		return nil, ErrDuplicateName
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	folder := &model.Folder{
		Name:      name,
		Path:      folderPath(parent, name),
		CreatedBy: userID,
	}
	if parent != nil {
		folder.ParentID = &parent.ID
	}
	if err := s.folderRepo.Create(folder); err != nil {
		return nil, err
	}
	return folder, nil
}

func (s *fileService) getFolder(folderID uint) (*model.Folder, error) {
	if folderID == 0 {
		return nil, ErrInvalidFolder
	}
	folder, err := s.folderRepo.FindByID(folderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return folder, nil
}

// isDescendant 判断 candidate 是否是 root 自身或其后代。
// 沿 candidate 的祖先链向上走，带访问集和深度上限防御脏数据中的环。
func (s *fileService) isDescendant(rootID uint, candidate *model.Folder) (bool, error) {
	visited := make(map[uint]struct{})
	current := candidate
	for depth := 0; depth < maxTreeDepth; depth++ {
		if current.ID == rootID {
			return true, nil
		}
		if current.ParentID == nil {
			return false, nil
		}
		if _, seen := visited[current.ID]; seen {
			log.Warnf("[FileService] 目录祖先链中检测到环: folderID=%d", current.ID)
			return true, nil
		}
		visited[current.ID] = struct{}{}
		parent, err := s.folderRepo.FindByID(*current.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, nil
			}
			return false, err
		}
		current = parent
	}
	// 超出深度上限按包含处理，宁可拒绝移动也不制造环
	return true, nil
}

// recomputeSubtreePaths 以 folder 为根，用显式栈深度优先地重算
// 全部后代目录的物化路径。父目录先于子目录处理，后代的 ParentID
// 链不变，只有路径字符串需要刷新。
func (s *fileService) recomputeSubtreePaths(folder *model.Folder) error {
	type frame struct {
		folder *model.Folder
		depth  int
	}
	visited := map[uint]struct{}{folder.ID: {}}
	stack := []frame{{folder: folder, depth: 0}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if top.depth >= maxTreeDepth {
			log.Warnf("[FileService] 目录树超过深度上限，截断路径重算: folderID=%d", top.folder.ID)
			continue
		}

		children, err := s.folderRepo.FindChildren(&top.folder.ID)
		if err != nil {
			return err
		}
		for i := range children {
			child := children[i]
			if _, seen := visited[child.ID]; seen {
				log.Warnf("[FileService] 目录树中检测到环，跳过: folderID=%d", child.ID)
				continue
			}
			visited[child.ID] = struct{}{}
			child.Path = top.folder.Path + "/" + child.Name
			if err := s.folderRepo.UpdatePath(child.ID, child.Path); err != nil {
				return err
			}
			stack = append(stack, frame{folder: &child, depth: top.depth + 1})
		}
	}
	return nil
}

// RenameFolder 重命名目录并级联刷新全部后代目录的路径。
func (s *fileService) RenameFolder(ctx context.Context, folderID uint, newName string) error {
	if newName == "" || strings.ContainsRune(newName, '/') {
		return fmt.Errorf("%w: 目录名称非法", ErrValidation)
	}
	folder, err := s.getFolder(folderID)
	if err != nil {
		return err
	}

	if existing, err := s.folderRepo.FindByNameAndParent(newName, folder.ParentID); err == nil && existing.ID != folder.ID {
		return ErrDuplicateName
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	var parent *model.Folder
	if folder.ParentID != nil {
		if parent, err = s.folderRepo.FindByID(*folder.ParentID); err != nil {
			return err
		}
	}

	folder.Name = newName
	folder.Path = folderPath(parent, newName)
	if err := s.folderRepo.Update(folder); err != nil {
		return err
	}
	return s.recomputeSubtreePaths(folder)
}

// MoveFolder 移动目录。目标是目录自身或其后代时返回 ErrCyclicMove，
// 且不触碰任何路径。移动只改变目录自身的 ParentID，后代目录仅需
// 级联重算路径字符串。
func (s *fileService) MoveFolder(ctx context.Context, folderID uint, targetFolderID *uint) error {
	folder, err := s.getFolder(folderID)
	if err != nil {
		return err
	}
	target, err := s.resolveFolder(targetFolderID)
	if err != nil {
		return err
	}

	if target != nil {
		contained, err := s.isDescendant(folder.ID, target)
		if err != nil {
			return err
		}
		if contained {
			return ErrCyclicMove
		}
	}

	var newParentID *uint
	if target != nil {
		newParentID = &target.ID
	}
	if existing, err := s.folderRepo.FindByNameAndParent(folder.Name, newParentID); err == nil && existing.ID != folder.ID {
		return ErrDuplicateName
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	folder.ParentID = newParentID
	folder.Path = folderPath(target, folder.Name)
	if err := s.folderRepo.Update(folder); err != nil {
		return err
	}
	return s.recomputeSubtreePaths(folder)
}

// CopyFolder 递归复制目录子树到目标目录下：先建目录行，再复制
// 目录内文件，然后逐个进入子目录。单个文件的物理复制失败只记
// 日志并跳过，不中断剩余子树的复制（接受部分成功）。
func (s *fileService) CopyFolder(ctx context.Context, folderID uint, targetFolderID *uint, userID uint) (*model.Folder, error) {
	src, err := s.getFolder(folderID)
	if err != nil {
		return nil, err
	}
	target, err := s.resolveFolder(targetFolderID)
	if err != nil {
		return nil, err
	}
	if target != nil {
		contained, err := s.isDescendant(src.ID, target)
		if err != nil {
			return nil, err
		}
		if contained {
			return nil, ErrCyclicMove
		}
	}

	var targetID *uint
	if target != nil {
		targetID = &target.ID
	}
	if _, err := s.folderRepo.FindByNameAndParent(src.Name, targetID); err == nil {
		return nil, ErrDuplicateName
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	root, err := s.copyFolderTree(ctx, src, target, userID, 0)
	if err != nil {
		return nil, err
	}
	return root, nil
}

// copyFolderTree 深度优先复制一棵目录子树，返回新建的镜像根目录。
func (s *fileService) copyFolderTree(ctx context.Context, src *model.Folder, targetParent *model.Folder, userID uint, depth int) (*model.Folder, error) {
	if depth >= maxTreeDepth {
		log.Warnf("[FileService] 目录复制超过深度上限，截断: folderID=%d", src.ID)
		return nil, fmt.Errorf("%w: 目录层级过深", ErrValidation)
	}

	mirror := &model.Folder{
		Name:      src.Name,
		Path:      folderPath(targetParent, src.Name),
		CreatedBy: userID,
	}
	if targetParent != nil {
		mirror.ParentID = &targetParent.ID
	}
	if err := s.folderRepo.Create(mirror); err != nil {
		return nil, err
	}

	// 复制目录内文件，单个失败跳过
	files, err := s.fileRepo.FindByFolder(&src.ID)
	if err != nil {
		return nil, err
	}
	for i := range files {
		if _, err := s.CopyFile(ctx, files[i].ID, &mirror.ID, userID); err != nil {
			log.Warnf("[FileService] 目录复制中单个文件复制失败，跳过: fileID=%d, name=%s, err=%v",
				files[i].ID, files[i].OriginalName, err)
		}
	}

	// 递归进入子目录
	children, err := s.folderRepo.FindChildren(&src.ID)
	if err != nil {
		return nil, err
	}
	for i := range children {
		if _, err := s.copyFolderTree(ctx, &children[i], mirror, userID, depth+1); err != nil {
			log.Warnf("[FileService] 子目录复制失败，跳过: folderID=%d, err=%v", children[i].ID, err)
		}
	}
	return mirror, nil
}

// DeleteFolder 递归删除目录子树：先删文件再删目录，深度优先。
// 物理删除失败不阻断元数据清理。
func (s *fileService) DeleteFolder(ctx context.Context, folderID uint) error {
	folder, err := s.getFolder(folderID)
	if err != nil {
		return err
	}
	return s.deleteFolderTree(ctx, folder, 0)
}

func (s *fileService) deleteFolderTree(ctx context.Context, folder *model.Folder, depth int) error {
	if depth >= maxTreeDepth {
		return fmt.Errorf("%w: 目录层级过深", ErrValidation)
	}

	files, err := s.fileRepo.FindByFolder(&folder.ID)
	if err != nil {
		return err
	}
	for i := range files {
		if err := s.DeleteFile(ctx, files[i].ID); err != nil {
			return err
		}
	}

	children, err := s.folderRepo.FindChildren(&folder.ID)
	if err != nil {
		return err
	}
	for i := range children {
		if err := s.deleteFolderTree(ctx, &children[i], depth+1); err != nil {
			return err
		}
	}
	return s.folderRepo.Delete(folder.ID)
}

// List 返回目录内容：子目录全量，文件分页并按指定字段排序。
func (s *fileService) List(ctx context.Context, folderID *uint, page, pageSize int, sortBy, order string) (*ListResult, error) {
	if _, err := s.resolveFolder(folderID); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	folders, err := s.folderRepo.FindChildren(folderID)
	if err != nil {
		return nil, err
	}
	files, total, err := s.fileRepo.List(folderID, (page-1)*pageSize, pageSize, sortBy, order)
	if err != nil {
		return nil, err
	}

	return &ListResult{
		Folders:    folders,
		Files:      files,
		TotalFiles: total,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

// DownloadFolder 把目录子树打包成 zip 流写入 w。
// 单个文件的读取失败跳过，保证尽可能多的内容进入归档。
func (s *fileService) DownloadFolder(ctx context.Context, folderID uint, w io.Writer) error {
	folder, err := s.getFolder(folderID)
	if err != nil {
		return err
	}

	zw := archive.NewStreamWriter(w)
	if err := s.zipFolderTree(ctx, folder, folder.Name, zw, 0); err != nil {
		return err
	}
	return zw.Close()
}

func (s *fileService) zipFolderTree(ctx context.Context, folder *model.Folder, prefix string, zw *archive.StreamWriter, depth int) error {
	if depth >= maxTreeDepth {
		return fmt.Errorf("%w: 目录层级过深", ErrValidation)
	}

	files, err := s.fileRepo.FindByFolder(&folder.ID)
	if err != nil {
		return err
	}
	for i := range files {
		rc, _, err := s.Download(ctx, files[i].ID)
		if err != nil {
			log.Warnf("[FileService] 打包时读取文件失败，跳过: fileID=%d, err=%v", files[i].ID, err)
			continue
		}
		addErr := zw.Add(prefix+"/"+files[i].OriginalName, rc)
		_ = rc.Close()
		if addErr != nil {
			return addErr
		}
	}

	children, err := s.folderRepo.FindChildren(&folder.ID)
	if err != nil {
		return err
	}
	for i := range children {
		if err := s.zipFolderTree(ctx, &children[i], prefix+"/"+children[i].Name, zw, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// SearchFiles 按名称关键字检索当前用户上传的文件。
// 检索走 Elasticsearch，命中的 ID 回查数据库取最新元数据。
func (s *fileService) SearchFiles(ctx context.Context, keyword string, userID uint) ([]model.File, error) {
	if s.esIndex == "" {
		return nil, fmt.Errorf("%w: 检索功能未启用", ErrValidation)
	}
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, fmt.Errorf("%w: 检索关键字为空", ErrValidation)
	}
	ids, err := es.SearchFiles(ctx, s.esIndex, keyword, userID, 50)
	if err != nil {
		return nil, err
	}
	return s.fileRepo.FindByIDs(ids)
}
