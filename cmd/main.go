package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	v1 "palette/api/v1"
	"palette/config"
	"palette/dao"
	myvalidator "palette/internal/validator"
	"palette/middleware"
	"palette/model"
	"palette/service"
)

func main() {
	// 初始化配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "../"
	}
	config.InitConfig(configPath)
	config.EnsureJWTSecret()

	if err := os.MkdirAll(config.GlobalConfig.Storage.UploadDir, 0o755); err != nil {
		log.Fatalf("Create upload dir failed: %v", err)
	}

	// 初始化数据库（本地 SQLite 文件，事务日志保证原子写入）
	db, err := gorm.Open(sqlite.Open(config.GlobalConfig.Storage.SQLitePath), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		panic(err)
	}

	// 自动迁移
	if err := db.AutoMigrate(&model.User{}); err != nil {
		panic(err)
	}

	// 初始化 DAO 和 Service
	userDAO := dao.NewUserDAO(db)
	userService := service.NewUserService(userDAO)
	userAPI := v1.NewUserAPI(userService)
	imageAPI := v1.NewImageAPI(config.GlobalConfig.Storage.UploadDir)
	limiter := middleware.NewLimiter()
	rl := config.GlobalConfig.RateLimit

	// 初始化路由
	r := gin.Default()
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 注册自定义校验器
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("username", myvalidator.IsUsername); err != nil {
			panic(err)
		}
		if err := v.RegisterValidation("userpassword", myvalidator.IsUserPassword); err != nil {
			panic(err)
		}
	}

	// 公共路由（全局限流为最外层关卡）
	public := r.Group("/api/v1")
	public.Use(middleware.RateLimit(limiter, "global", rl.GlobalPerMinute, time.Minute))
	{
		public.POST("/users/register",
			middleware.RateLimit(limiter, "register", rl.RegisterPerMinute, time.Minute), userAPI.Register)
		public.POST("/users/login",
			middleware.RateLimit(limiter, "login", rl.LoginPerMinute, time.Minute), userAPI.Login)
		public.POST("/upload",
			middleware.RateLimit(limiter, "upload", rl.UploadPerMinute, time.Minute), imageAPI.Upload)
	}

	// 私有路由
	private := r.Group("/api/v1")
	private.Use(middleware.RateLimit(limiter, "global", rl.GlobalPerMinute, time.Minute))
	private.Use(middleware.AuthMiddleware())
	{
		private.GET("/users/:id", userAPI.GetProfile)
		private.PUT("/users/:id",
			middleware.RateLimit(limiter, "profile_update", rl.ProfilePerHour, time.Hour), userAPI.UpdateProfile)
	}

	// 启动服务
	if err := r.Run(config.GlobalConfig.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
