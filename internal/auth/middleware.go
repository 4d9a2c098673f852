package auth

import (
	"log"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yourusername/auth-demo/internal/store"
)

const (
	ctxKeyRequestID = "auth.request_id"
	ctxKeyIsAuth    = "auth.is_auth"
	ctxKeyIsAdmin   = "auth.is_admin"
	ctxKeyUserID    = "auth.user_id"
	ctxKeyUserEmail = "auth.user_email"
)

// RequestID は各リクエストにIDを割り当てるミドルウェアを返します。
// 認証まわりの失敗ログをリクエスト単位で突き合わせるために使います。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set(ctxKeyRequestID, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// RequestIDFrom は割り当て済みのリクエストIDを返します。
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(ctxKeyRequestID)
}

// ErrorPage はハンドラーから c.Error で上げられたエラーを拾う受け皿です。
// ルート側で個別処理しないインフラ系エラーはすべてここに流れ、
// ログ出力のうえ汎用の500ページを描画します。
func ErrorPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		log.Printf("[%s] request failed: %v", RequestIDFrom(c), c.Errors.Last().Err)
		if !c.Writer.Written() {
			c.HTML(http.StatusInternalServerError, "500.html", gin.H{})
		}
	}
}

// Enrich はセッションのユーザーを解決し、認証・管理者フラグを
// このリクエスト限りのコンテキストとして公開するミドルウェアを返します。
// 管理者フラグはセッションにはキャッシュせず、毎回ストアの現在値から導出します。
// 権限の剥奪が次のリクエストから即座に効くようにするためです。
func Enrich(users store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, _, authenticated := SessionUser(session)
		if userID == "" || !authenticated {
			c.Next()
			return
		}

		user, err := users.FindByID(c.Request.Context(), userID)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		if user == nil {
			// セッションだけが残った削除済みユーザー。認証情報を落として未ログイン扱いにする。
			ClearAuthenticated(session)
			if err := session.Save(); err != nil {
				_ = c.Error(err)
				c.Abort()
				return
			}
			c.Next()
			return
		}

		c.Set(ctxKeyIsAuth, true)
		c.Set(ctxKeyIsAdmin, user.IsAdmin)
		c.Set(ctxKeyUserID, user.ID.Hex())
		c.Set(ctxKeyUserEmail, user.Email)
		c.Next()
	}
}

// IsAuthenticated は現在のリクエストが認証済みかを返します。
func IsAuthenticated(c *gin.Context) bool {
	return c.GetBool(ctxKeyIsAuth)
}

// IsAdmin は現在のリクエストのユーザーが管理者かを返します。
func IsAdmin(c *gin.Context) bool {
	return c.GetBool(ctxKeyIsAdmin)
}

// UserEmail は現在のリクエストのユーザーのメールアドレスを返します。未認証なら空文字列です。
func UserEmail(c *gin.Context) string {
	return c.GetString(ctxKeyUserEmail)
}
