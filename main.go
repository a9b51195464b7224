package main

import (
	"log"
	"strings"
	"time"

	"cms/auth"
	"cms/config"
	"cms/db"
	"cms/handlers"
	"cms/models"
	"cms/rbac"
	"cms/storage"
	"cms/uploads"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	gormsessions "github.com/gin-contrib/sessions/gorm"
	"github.com/gin-gonic/autotls"
	"github.com/gin-gonic/gin"
)

const (
	sessionStoreKey       = "this is a long key" // TODO: convert to env variable
	sessionCookieName     = "token"
	sessionExpirationTime = 30 * 86400 // 30 days
	sweepInterval         = 30 * time.Second
)

func main() {
	if err := config.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	db.Init()
	models.Init()

	store, err := storage.NewFromConfig()
	if err != nil {
		log.Fatalf("Object store init failed: %v", err)
	}
	engine := rbac.NewEngine()
	broker := uploads.NewBroker(store, config.AllowedContentTypes(), time.Duration(config.UPLOAD_GRANT_TTL)*time.Second)
	reconciler := uploads.NewReconciler(store, broker)
	handlers.Setup(engine, broker, reconciler, store)
	go broker.StartSweeper(sweepInterval)

	if !config.DEBUG_MODE {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	_ = router.SetTrustedProxies([]string{})
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"PUT", "POST", "DELETE"},
		AllowHeaders:     []string{"Origin"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           30 * 24 * time.Hour,
	}))

	cookieStore := gormsessions.NewStore(db.Instance, true, []byte(sessionStoreKey))
	cookieStore.Options(sessions.Options{MaxAge: sessionExpirationTime})
	router.Use(sessions.Sessions(sessionCookieName, cookieStore))
	if !config.DEBUG_MODE {
		router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/media/direct", "/media/file"})))
	}

	// Custom Auth Router
	authRouter := &auth.Router{Base: router, Engine: engine}
	// User handlers
	router.POST("/user/login", handlers.UserLogin)
	authRouter.GET("/user/status", handlers.UserGetStatus)
	authRouter.POST("/user/logout", handlers.UserLogout)
	// Permission matrix handlers
	authRouter.GET("/permission/list", handlers.PermissionList, "roles.manage")
	authRouter.GET("/role/list", handlers.RoleList, "roles.manage")
	authRouter.POST("/role/permissions", handlers.RolePermissionsSave, "roles.manage")
	// Media handlers
	authRouter.GET("/media/list", handlers.MediaList, "media.view")
	authRouter.POST("/media/grant", handlers.MediaGrant, "media.upload")
	authRouter.POST("/media/confirm", handlers.MediaConfirm, "media.upload")
	authRouter.POST("/media/delete", handlers.MediaDelete, "media.delete")
	// Direct object access for the disk backend (token-authorized, no session)
	router.PUT("/media/direct/:token/*key", handlers.MediaDirectUpload)
	router.GET("/media/file/*key", handlers.MediaFetch)

	if config.TLS_DOMAINS != "" {
		err = autotls.Run(router, strings.Split(config.TLS_DOMAINS, ",")...)
	} else {
		err = router.Run(config.BIND_ADDRESS)
	}
	log.Fatalf("Server stopped: %v", err)
}
