// Package main はWebサーバーのエントリーポイントです。
package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/mongo/mongodriver"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/auth-demo/internal/auth"
	"github.com/yourusername/auth-demo/internal/config"
	"github.com/yourusername/auth-demo/internal/store"
)

// fallbackSessionTTLSeconds はクッキーをブラウザセッション限りにする設定
// （MaxAge 0）のときに、サーバー側のセッションドキュメントへ与える寿命です。
const fallbackSessionTTLSeconds = 14 * 24 * 60 * 60

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	// MongoDBへ接続（疎通確認とユニークインデックス作成を含む）
	client, err := store.Connect(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Printf("Failed to disconnect from MongoDB: %v", err)
		}
	}()

	// Ginルーターの初期化
	router := gin.New()
	router.Use(gin.Logger())
	// 取りこぼしたpanicは汎用の500ページに落とす
	router.Use(gin.CustomRecovery(func(c *gin.Context, _ any) {
		c.HTML(http.StatusInternalServerError, "500.html", gin.H{})
	}))

	router.LoadHTMLGlob("web/templates/*.html")

	// セッションストアの設定（セッションドキュメントはMongoDBに永続化）
	serverTTL := cfg.SessionMaxAgeSeconds()
	if serverTTL == 0 {
		serverTTL = fallbackSessionTTLSeconds
	}
	sessionStore := mongodriver.NewStore(
		client.SessionCollection(),
		serverTTL,
		true,
		[]byte(cfg.SessionSecret),
	)
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   cfg.SessionMaxAgeSeconds(),
		HttpOnly: true,
		Secure:   cfg.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteStrictMode,
	})
	router.Use(sessions.Sessions(auth.SessionCookieName, sessionStore))

	// リクエストID → エラー受け皿 → 認証コンテキスト、の順で全ルート共通の土台を敷く
	router.Use(auth.RequestID())
	router.Use(auth.ErrorPage())
	router.Use(auth.Enrich(client.Users()))

	// ルーティングの設定
	setupRoutes(router, cfg, client.Users())

	// サーバーの起動
	addr := ":" + cfg.Port
	log.Printf("Starting web server on %s (mode: %s)", addr, cfg.GinMode)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "auth-demo",
		"version": "0.1.0",
	})
}

// setupRoutes は認証フローの全ルートを配線します。
func setupRoutes(router *gin.Engine, cfg *config.Config, users store.Store) {
	// まずは誰でも叩けるヘルスチェックを登録
	router.GET("/health", handleHealth)

	manager := auth.NewManager(cfg, users)

	router.GET("/", manager.Home)
	router.GET("/signup", manager.SignupForm)
	router.POST("/signup", manager.Signup)
	router.GET("/login", manager.LoginForm)
	router.POST("/login", manager.Login)
	router.GET("/profile", manager.Profile)
	router.GET("/admin", manager.Admin)
	router.POST("/logout", manager.Logout)
}
