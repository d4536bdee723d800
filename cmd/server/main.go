// Package main 是应用程序的入口点。
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"yunpan-go/internal/config"
	"yunpan-go/internal/handler"
	"yunpan-go/internal/middleware"
	"yunpan-go/internal/model"
	"yunpan-go/internal/pipeline"
	"yunpan-go/internal/repository"
	"yunpan-go/internal/service"
	"yunpan-go/pkg/database"
	"yunpan-go/pkg/driver"
	"yunpan-go/pkg/es"
	"yunpan-go/pkg/kafka"
	"yunpan-go/pkg/log"
	"yunpan-go/pkg/token"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库、Redis、Elasticsearch 和 Kafka
	database.InitMySQL(cfg.Database.MySQL.DSN)
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	if err := es.InitES(cfg.Elasticsearch); err != nil {
		log.Errorf("es 初始化失败 %s", err)
		return
	}
	kafka.InitProducer(cfg.Kafka)

	// 4. 自动迁移数据表
	err := database.DB.AutoMigrate(
		&model.User{},
		&model.Role{},
		&model.Permission{},
		&model.StorageSource{},
		&model.Folder{},
		&model.File{},
		&model.Share{},
		&model.ShareSnapshot{},
	)
	if err != nil {
		log.Fatalf("数据表迁移失败: %v", err)
	}

	// 5. 初始化 Repository
	userRepo := repository.NewUserRepository(database.DB)
	roleRepo := repository.NewRoleRepository(database.DB)
	sourceRepo := repository.NewStorageSourceRepository(database.DB)
	folderRepo := repository.NewFolderRepository(database.DB)
	fileRepo := repository.NewFileRepository(database.DB)
	shareRepo := repository.NewShareRepository(database.DB)

	// 6. 初始化 Service (依赖注入)
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours, cfg.JWT.RefreshTokenExpireDays)
	adapterFactory := &driver.Factory{
		LocalDefaults: driver.LocalConfig{
			BaseDir:     cfg.Storage.LocalBaseDir,
			MaxFileSize: cfg.Storage.LocalMaxFileSize,
		},
	}
	rbacService := service.NewRBACService(roleRepo, userRepo)
	userService := service.NewUserService(userRepo, rbacService, jwtManager)
	storageService := service.NewStorageService(sourceRepo, fileRepo, adapterFactory)
	fileService := service.NewFileService(fileRepo, folderRepo, storageService, kafka.ProduceFileEvent, cfg.Elasticsearch.IndexName)
	shareService := service.NewShareService(shareRepo, fileRepo, folderRepo, cfg.Share.TokenLength)

	// 7. 种子数据：权限全集、内置角色和系统所有者账号
	if err := rbacService.SeedDefaults(); err != nil {
		log.Fatalf("权限种子初始化失败: %v", err)
	}
	if cfg.Owner.Username != "" {
		if err := rbacService.EnsureOwner(cfg.Owner.Username, cfg.Owner.Email, cfg.Owner.Password); err != nil {
			log.Fatalf("系统所有者账号初始化失败: %v", err)
		}
	}

	// 8. 启动后台 Kafka 消费者维护检索索引
	processor := pipeline.NewProcessor(cfg.Elasticsearch)
	go kafka.StartConsumer(cfg.Kafka, processor)

	// 9. 周期性探测存储源健康状态
	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	defer cancelSweep()
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				storageService.HealthSweep(sweepCtx)
			}
		}
	}()

	// 10. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())

	userHandler := handler.NewUserHandler(userService, rbacService)
	fileHandler := handler.NewFileHandler(fileService)
	shareHandler := handler.NewShareHandler(shareService, fileService)
	adminHandler := handler.NewAdminHandler(storageService, rbacService)

	// 11. 注册路由
	apiV1 := r.Group("/api/v1")
	{
		// 无需认证的路由 (公开访问)
		users := apiV1.Group("/users")
		{
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)
			users.POST("/refreshToken", userHandler.RefreshToken)
		}

		// 匿名访问方的分享公开路由，带令牌级限流
		public := apiV1.Group("/s", middleware.ShareRateLimiter(cfg.Share.RateLimitPerMinute))
		{
			public.GET("/:token", shareHandler.Resolve)
			public.GET("/:token/files/:fileId/download", shareHandler.DownloadFile)
		}

		// 需要认证的路由 (仅限登录用户访问)
		authed := apiV1.Group("/", middleware.AuthMiddleware(jwtManager, userService))
		{
			authed.GET("/users/profile", userHandler.Profile)

			files := authed.Group("/files")
			{
				files.POST("/upload", middleware.RequirePermissions(rbacService, service.PermFileUpload), fileHandler.Upload)
				files.GET("/search", middleware.RequirePermissions(rbacService, service.PermFileDownload), fileHandler.Search)
				files.GET("/:id/download", middleware.RequirePermissions(rbacService, service.PermFileDownload), fileHandler.Download)
				files.DELETE("/:id", middleware.RequirePermissions(rbacService, service.PermFileDelete), fileHandler.Delete)
				files.POST("/:id/copy", middleware.RequirePermissions(rbacService, service.PermFileManage), fileHandler.Copy)
				files.PUT("/:id/move", middleware.RequirePermissions(rbacService, service.PermFileManage), fileHandler.Move)
				files.PUT("/:id/rename", middleware.RequirePermissions(rbacService, service.PermFileManage), fileHandler.Rename)
			}

			folders := authed.Group("/folders", middleware.RequirePermissions(rbacService, service.PermFolderManage))
			{
				folders.POST("", fileHandler.CreateFolder)
				folders.GET("/list", fileHandler.List)
				folders.PUT("/:id/rename", fileHandler.RenameFolder)
				folders.PUT("/:id/move", fileHandler.MoveFolder)
				folders.POST("/:id/copy", fileHandler.CopyFolder)
				folders.DELETE("/:id", fileHandler.DeleteFolder)
				folders.GET("/:id/download", fileHandler.DownloadFolder)
			}

			shares := authed.Group("/shares")
			{
				shares.POST("", middleware.RequirePermissions(rbacService, service.PermShareCreate), shareHandler.Create)
				shares.GET("", middleware.RequirePermissions(rbacService, service.PermShareManage), shareHandler.List)
				shares.PUT("/:id/deactivate", middleware.RequirePermissions(rbacService, service.PermShareManage), shareHandler.Deactivate)
				shares.DELETE("/:id", middleware.RequirePermissions(rbacService, service.PermShareManage), shareHandler.Delete)
			}

			admin := authed.Group("/admin")
			{
				storage := admin.Group("/storage-sources", middleware.RequirePermissions(rbacService, service.PermStorageManage))
				{
					storage.POST("", adminHandler.CreateStorageSource)
					storage.GET("", adminHandler.ListStorageSources)
					storage.PUT("/:id", adminHandler.UpdateStorageSource)
					storage.DELETE("/:id", adminHandler.DeleteStorageSource)
					storage.POST("/:id/test", adminHandler.TestStorageSource)
				}

				adminUsers := admin.Group("/users", middleware.RequirePermissions(rbacService, service.PermUserManage))
				{
					adminUsers.GET("", adminHandler.ListUsers)
					adminUsers.DELETE("", adminHandler.DeleteUsers)
					adminUsers.PUT("/:id/roles", adminHandler.AssignRoles)
				}

				roles := admin.Group("/roles", middleware.RequirePermissions(rbacService, service.PermRoleManage))
				{
					roles.GET("", adminHandler.ListRoles)
					roles.GET("/permissions", adminHandler.ListPermissions)
				}
			}
		}
	}

	// 12. 启动 HTTP 服务并处理优雅停机
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}
	go func() {
		log.Infof("服务启动，监听端口 %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("收到停机信号，开始优雅停机")

	cancelSweep()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("服务停机异常: %v", err)
	}
	log.Info("服务已退出")
}
