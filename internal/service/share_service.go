package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"yunpan-go/internal/model"
	"yunpan-go/internal/repository"
	"yunpan-go/pkg/hash"
	"yunpan-go/pkg/log"
	"yunpan-go/pkg/token"
)

// minShareTokenLength 是分享令牌的长度下限,配置更短时按此值兜底。
const minShareTokenLength = 10

// CreateShareRequest 是创建分享的入参。
type CreateShareRequest struct {
	TargetType model.ShareSnapshotType `json:"targetType" binding:"required"`
	TargetID   uint                    `json:"targetId" binding:"required"`
	// Password 为空表示非加密分享。
	Password string `json:"password"`
	// ExpiresAt 为空表示永不过期。
	ExpiresAt *time.Time `json:"expiresAt"`
	// DownloadLimit 为空表示不限下载次数。
	DownloadLimit *int `json:"downloadLimit"`
}

// ShareView 是访问方看到的分享内容:元信息加上冻结的快照树。
type ShareView struct {
	ShareToken    string                  `json:"shareToken"`
	Type          model.ShareSnapshotType `json:"type"`
	RequirePwd    bool                    `json:"requirePwd"`
	ExpiresAt     *time.Time              `json:"expiresAt"`
	DownloadLimit *int                    `json:"downloadLimit"`
	DownloadCount int                     `json:"downloadCount"`
	ViewCount     int                     `json:"viewCount"`
	CreatedAt     time.Time               `json:"createdAt"`
	Tree          model.SnapshotTree      `json:"tree"`
}

// ShareService 接口定义了分享相关的业务操作。
type ShareService interface {
	CreateShare(ctx context.Context, req CreateShareRequest, userID uint) (*model.Share, error)
	// ResolveShare 解析一个分享链接:依次做活性、过期、口令校验,
	// 通过后返回快照内容并记一次浏览。
	ResolveShare(ctx context.Context, shareToken, password string) (*ShareView, error)
	// AuthorizeFileDownload 校验 fileID 属于分享快照且未超下载限额,
	// 通过后返回文件元数据并记一次下载。
	AuthorizeFileDownload(ctx context.Context, shareToken, password string, fileID uint) (*model.File, error)
	ListShares(ctx context.Context, userID uint) ([]model.Share, error)
	DeactivateShare(ctx context.Context, shareID, userID uint) error
	DeleteShare(ctx context.Context, shareID, userID uint) error
}

type shareService struct {
	shareRepo   repository.ShareRepository
	fileRepo    repository.FileRepository
	folderRepo  repository.FolderRepository
	tokenLength int
}

// NewShareService 创建一个新的 ShareService 实例。
func NewShareService(shareRepo repository.ShareRepository, fileRepo repository.FileRepository, folderRepo repository.FolderRepository, tokenLength int) ShareService {
	if tokenLength < minShareTokenLength {
		tokenLength = minShareTokenLength
	}
	return &shareService{
		shareRepo:   shareRepo,
		fileRepo:    fileRepo,
		folderRepo:  folderRepo,
		tokenLength: tokenLength,
	}
}

// buildSnapshotTree 在创建分享时递归展开目标,把当时的树结构
// 冻结成一棵快照树。之后活动树上的任何变化都不再影响它。
func (s *shareService) buildSnapshotTree(req CreateShareRequest) (*model.SnapshotTree, error) {
	switch req.TargetType {
	case model.SnapshotTypeFile:
		file, err := s.fileRepo.FindByID(req.TargetID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		return &model.SnapshotTree{
			Files: []model.SnapshotFile{{
				ID:       file.ID,
				Name:     file.OriginalName,
				Size:     file.Size,
				MimeType: file.MimeType,
			}},
			Folders: []model.SnapshotFolder{},
		}, nil

	case model.SnapshotTypeFolder:
		folder, err := s.folderRepo.FindByID(req.TargetID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		root, err := s.snapshotFolder(folder, 0)
		if err != nil {
			return nil, err
		}
		return &model.SnapshotTree{
			Files:   []model.SnapshotFile{},
			Folders: []model.SnapshotFolder{*root},
		}, nil

	default:
		return nil, fmt.Errorf("%w: 未知的分享目标类型 %s", ErrValidation, req.TargetType)
	}
}

func (s *shareService) snapshotFolder(folder *model.Folder, depth int) (*model.SnapshotFolder, error) {
	if depth >= maxTreeDepth {
		return nil, fmt.Errorf("%w: 目录层级过深", ErrValidation)
	}

	node := &model.SnapshotFolder{
		ID:   folder.ID,
		Name: folder.Name,
		Children: model.SnapshotTree{
			Files:   []model.SnapshotFile{},
			Folders: []model.SnapshotFolder{},
		},
	}

	files, err := s.fileRepo.FindByFolder(&folder.ID)
	if err != nil {
		return nil, err
	}
	for i := range files {
		node.Children.Files = append(node.Children.Files, model.SnapshotFile{
			ID:       files[i].ID,
			Name:     files[i].OriginalName,
			Size:     files[i].Size,
			MimeType: files[i].MimeType,
		})
	}

	children, err := s.folderRepo.FindChildren(&folder.ID)
	if err != nil {
		return nil, err
	}
	for i := range children {
		child, err := s.snapshotFolder(&children[i], depth+1)
		if err != nil {
			return nil, err
		}
		node.Children.Folders = append(node.Children.Folders, *child)
	}
	return node, nil
}

// CreateShare 创建分享:展开快照、生成令牌、口令散列后落库。
// 快照和分享行在一个事务中写入。
func (s *shareService) CreateShare(ctx context.Context, req CreateShareRequest, userID uint) (*model.Share, error) {
	tree, err := s.buildSnapshotTree(req)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(tree)
	if err != nil {
		return nil, err
	}

	var passwordHash *string
	if req.Password != "" {
		h, err := hash.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		passwordHash = &h
	}
	if req.ExpiresAt != nil && req.ExpiresAt.Before(time.Now()) {
		return nil, fmt.Errorf("%w: 过期时间早于当前时间", ErrValidation)
	}
	if req.DownloadLimit != nil && *req.DownloadLimit < 1 {
		return nil, fmt.Errorf("%w: 下载次数限制必须为正数", ErrValidation)
	}

	shareToken, err := s.uniqueToken()
	if err != nil {
		return nil, err
	}

	snapshot := &model.ShareSnapshot{
		Type:         req.TargetType,
		SnapshotData: string(data),
	}
	share := &model.Share{
		ShareToken:    shareToken,
		PasswordHash:  passwordHash,
		ExpiresAt:     req.ExpiresAt,
		DownloadLimit: req.DownloadLimit,
		IsActive:      true,
		CreatedBy:     userID,
	}
	if err := s.shareRepo.CreateWithSnapshot(share, snapshot); err != nil {
		return nil, err
	}
	share.Snapshot = snapshot

	log.Infof("[ShareService] 创建分享成功: shareID=%d, type=%s, targetID=%d, userID=%d",
		share.ID, req.TargetType, req.TargetID, userID)
	return share, nil
}

// uniqueToken 生成未被占用的分享令牌,连续碰撞视为异常。
func (s *shareService) uniqueToken() (string, error) {
	for attempt := 0; attempt < 3; attempt++ {
		t, err := token.GenerateShareToken(s.tokenLength)
		if err != nil {
			return "", err
		}
		_, err = s.shareRepo.FindByToken(t)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return t, nil
		}
		if err != nil {
			return "", err
		}
		log.Warnf("[ShareService] 分享令牌碰撞,重新生成: attempt=%d", attempt+1)
	}
	return "", fmt.Errorf("生成分享令牌失败: 连续碰撞")
}

// gate 执行分享访问的逐级校验:存在且启用、未过期、口令正确。
// 失效与不存在统一返回 ErrNotFound,不泄露分享是否存在过。
func (s *shareService) gate(shareToken, password string) (*model.Share, error) {
	share, err := s.shareRepo.FindByToken(shareToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !share.IsActive {
		return nil, ErrNotFound
	}
	if share.ExpiresAt != nil && share.ExpiresAt.Before(time.Now()) {
		return nil, ErrShareExpired
	}
	if share.PasswordHash != nil {
		if password == "" || !hash.CheckPasswordHash(password, *share.PasswordHash) {
			return nil, ErrInvalidSharePassword
		}
	}
	return share, nil
}

// ResolveShare 返回分享的快照内容,内容完全来自冻结的快照,
// 不回查活动树。
func (s *shareService) ResolveShare(ctx context.Context, shareToken, password string) (*ShareView, error) {
	share, err := s.gate(shareToken, password)
	if err != nil {
		return nil, err
	}
	if share.Snapshot == nil {
		log.Errorf("[ShareService] 分享缺少快照: shareID=%d", share.ID)
		return nil, ErrNotFound
	}

	var tree model.SnapshotTree
	if err := json.Unmarshal([]byte(share.Snapshot.SnapshotData), &tree); err != nil {
		log.Errorf("[ShareService] 快照数据损坏: shareID=%d, err=%v", share.ID, err)
		return nil, err
	}

	// 浏览计数尽力而为,失败不影响内容返回
	if err := s.shareRepo.IncrementViewCount(share.ID); err != nil {
		log.Warnf("[ShareService] 浏览计数更新失败: shareID=%d, err=%v", share.ID, err)
	}

	return &ShareView{
		ShareToken:    share.ShareToken,
		Type:          share.Snapshot.Type,
		RequirePwd:    share.PasswordHash != nil,
		ExpiresAt:     share.ExpiresAt,
		DownloadLimit: share.DownloadLimit,
		DownloadCount: share.DownloadCount,
		ViewCount:     share.ViewCount + 1,
		CreatedAt:     share.CreatedAt,
		Tree:          tree,
	}, nil
}

// snapshotContains 用显式栈遍历快照树,判断 fileID 是否在其中。
func snapshotContains(tree *model.SnapshotTree, fileID uint) bool {
	stack := []*model.SnapshotTree{tree}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for i := range current.Files {
			if current.Files[i].ID == fileID {
				return true
			}
		}
		for i := range current.Folders {
			stack = append(stack, &current.Folders[i].Children)
		}
	}
	return false
}

// AuthorizeFileDownload 校验下载请求:访问门禁、下载限额、
// 文件确实在快照内,全部通过后回查文件元数据并递增下载计数。
// 快照里的文件被删除后返回 ErrNotFound。
func (s *shareService) AuthorizeFileDownload(ctx context.Context, shareToken, password string, fileID uint) (*model.File, error) {
	share, err := s.gate(shareToken, password)
	if err != nil {
		return nil, err
	}
	if share.DownloadLimit != nil && share.DownloadCount >= *share.DownloadLimit {
		return nil, ErrShareLimitReached
	}
	if share.Snapshot == nil {
		return nil, ErrNotFound
	}

	var tree model.SnapshotTree
	if err := json.Unmarshal([]byte(share.Snapshot.SnapshotData), &tree); err != nil {
		return nil, err
	}
	if !snapshotContains(&tree, fileID) {
		return nil, ErrForbidden
	}

	file, err := s.fileRepo.FindByID(fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := s.shareRepo.IncrementDownloadCount(share.ID); err != nil {
		log.Warnf("[ShareService] 下载计数更新失败: shareID=%d, err=%v", share.ID, err)
	}
	return file, nil
}

// ListShares 返回用户创建的全部分享。
func (s *shareService) ListShares(ctx context.Context, userID uint) ([]model.Share, error) {
	return s.shareRepo.FindByCreator(userID)
}

// ownedShare 取分享并校验归属。
func (s *shareService) ownedShare(shareID, userID uint) (*model.Share, error) {
	share, err := s.shareRepo.FindByID(shareID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if share.CreatedBy != userID {
		return nil, ErrForbidden
	}
	return share, nil
}

// DeactivateShare 停用分享,保留记录与计数。
func (s *shareService) DeactivateShare(ctx context.Context, shareID, userID uint) error {
	if _, err := s.ownedShare(shareID, userID); err != nil {
		return err
	}
	return s.shareRepo.Deactivate(shareID)
}

// DeleteShare 删除分享及其快照。
func (s *shareService) DeleteShare(ctx context.Context, shareID, userID uint) error {
	if _, err := s.ownedShare(shareID, userID); err != nil {
		return err
	}
	return s.shareRepo.Delete(shareID)
}
