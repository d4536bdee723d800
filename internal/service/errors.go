// Package service 包含了应用的业务逻辑层。
package service

import "errors"

// 业务层的错误分类。handler 通过 errors.Is 将其映射到 HTTP 状态码：
// 校验类 400、未认证 401、无权限/被保护 403、不存在 404、
// 已失效 410、限流 429，其余按 500 处理。
var (
	// ErrValidation 表示输入不合法。
	ErrValidation = errors.New("请求参数不合法")
	// ErrNotFound 表示目标实体不存在。
	ErrNotFound = errors.New("资源不存在")
	// ErrForbidden 表示当前用户无权执行该操作。
	ErrForbidden = errors.New("没有权限执行该操作")
	// ErrQuotaExceeded 表示存储源配额不足，写入被拒绝。
	ErrQuotaExceeded = errors.New("存储源配额不足")
	// ErrCyclicMove 表示目录移动会使目录成为自身的后代。
	ErrCyclicMove = errors.New("不能将目录移动到其自身或其子目录中")
	// ErrDuplicateName 表示同级下已存在同名目录。
	ErrDuplicateName = errors.New("同级目录下已存在同名目录")
	// ErrInvalidFolder 表示目录 ID 非法或目标目录不存在。
	ErrInvalidFolder = errors.New("目录不存在或 ID 非法")
	// ErrShareExpired 表示分享已过期。
	ErrShareExpired = errors.New("分享已过期")
	// ErrShareLimitReached 表示分享的下载次数已用尽。
	ErrShareLimitReached = errors.New("分享的下载次数已达上限")
	// ErrInvalidSharePassword 表示分享密码错误或缺失。
	ErrInvalidSharePassword = errors.New("分享密码不正确")
	// ErrOwnerProtected 表示操作目标是系统所有者，被保护。
	ErrOwnerProtected = errors.New("系统所有者账号受保护，不能执行该操作")
	// ErrSourceInUse 表示存储源仍被文件引用，不能删除。
	ErrSourceInUse = errors.New("存储源仍有文件引用，不能删除")
	// ErrNoActiveSource 表示没有可用的激活存储源。
	ErrNoActiveSource = errors.New("没有可用的存储源")
	// ErrInvalidCredentials 统一的登录失败信息，不区分用户名或密码错误。
	ErrInvalidCredentials = errors.New("用户名或密码错误")
)
