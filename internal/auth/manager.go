package auth

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/auth-demo/internal/config"
	"github.com/yourusername/auth-demo/internal/store"
)

const (
	msgFieldsRequired    = "すべての項目を入力してください"
	msgPasswordTooShort  = "パスワードは6文字以上で入力してください"
	msgEmailMismatch     = "確認用メールアドレスが一致しません"
	msgEmailInvalid      = "メールアドレスの形式が正しくありません"
	msgEmailUnavailable  = "このメールアドレスでは登録できません"
	msgInvalidCredential = "メールアドレスまたはパスワードが正しくありません"
	msgTooManyAttempts   = "試行回数が上限に達しました。しばらくしてから再度お試しください"
)

// Manager は認証フローのルートハンドラーをまとめた構造体です。
type Manager struct {
	cfg     *config.Config
	users   store.Store
	limiter *loginLimiter
}

// NewManager は認証マネージャーを作成します。
func NewManager(cfg *config.Config, users store.Store) *Manager {
	return &Manager{
		cfg:     cfg,
		users:   users,
		limiter: newLoginLimiter(),
	}
}

// Home は GET / のハンドラーです。誰でも閲覧できます。
func (m *Manager) Home(c *gin.Context) {
	c.HTML(http.StatusOK, "welcome.html", viewData(c, nil))
}

// SignupForm は GET /signup のハンドラーです。
// 直前のPOSTが残したフラッシュを一度だけ読み取ってフォームに反映し、
// 読み取った時点で削除します。リロードすると空のフォームに戻ります。
func (m *Manager) SignupForm(c *gin.Context) {
	session := sessions.Default(c)
	flash, _ := m.takeFlash(c, session)
	if c.IsAborted() {
		return
	}

	c.HTML(http.StatusOK, "signup.html", viewData(c, gin.H{
		"email":        flash.Email,
		"confirmEmail": flash.ConfirmEmail,
		"password":     flash.Password,
		"message":      flash.Message,
	}))
}

// Signup は POST /signup のハンドラーです。
// 入力検証 → 既存メールの事前チェック → ハッシュ化 → 保存、の順で進み、
// 失敗時は入力値をフラッシュして GET /signup へ302で戻します。
func (m *Manager) Signup(c *gin.Context) {
	email := c.PostForm("email")
	confirmEmail := c.PostForm("confirm-email")
	password := c.PostForm("password")

	if msg, ok := validateSignup(email, confirmEmail, password); !ok {
		m.flashAndRedirect(c, "/signup", Flash{
			Email:        email,
			ConfirmEmail: confirmEmail,
			Password:     password,
			Message:      msg,
		})
		return
	}

	ctx := c.Request.Context()
	existing, err := m.users.FindByEmail(ctx, email)
	if err != nil {
		m.fail(c, err)
		return
	}
	if existing != nil {
		log.Printf("[%s] signup rejected: email already registered", RequestIDFrom(c))
		m.flashAndRedirect(c, "/signup", Flash{
			Email:        email,
			ConfirmEmail: confirmEmail,
			Message:      msgEmailUnavailable,
		})
		return
	}

	hash, err := HashPassword(password)
	if err != nil {
		m.fail(c, err)
		return
	}

	if _, err := m.users.Insert(ctx, email, hash); err != nil {
		// 事前チェックとの間に同じメールで登録が滑り込んだ場合。
		// ストア側のユニークインデックスが検出するので、通常の重複と同じ扱いに畳む。
		if errors.Is(err, store.ErrEmailTaken) {
			log.Printf("[%s] signup rejected: email taken on insert", RequestIDFrom(c))
			m.flashAndRedirect(c, "/signup", Flash{
				Email:        email,
				ConfirmEmail: confirmEmail,
				Message:      msgEmailUnavailable,
			})
			return
		}
		m.fail(c, err)
		return
	}

	log.Printf("[%s] user signed up", RequestIDFrom(c))
	c.Redirect(http.StatusFound, "/login")
}

// LoginForm は GET /login のハンドラーです。フラッシュの扱いは SignupForm と同じです。
func (m *Manager) LoginForm(c *gin.Context) {
	session := sessions.Default(c)
	flash, _ := m.takeFlash(c, session)
	if c.IsAborted() {
		return
	}

	c.HTML(http.StatusOK, "login.html", viewData(c, gin.H{
		"email":   flash.Email,
		"message": flash.Message,
	}))
}

// Login は POST /login のハンドラーです。
// 未知のメールとパスワード不一致はユーザーには同じ汎用メッセージに見せ、
// 詳細はリクエストID付きでサーバーログにだけ残します。
func (m *Manager) Login(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")
	ip := c.ClientIP()

	if retryAfter := m.limiter.checkLock(ip); retryAfter > 0 {
		log.Printf("[%s] login blocked: %s locked for %s", RequestIDFrom(c), ip, retryAfter)
		m.flashAndRedirect(c, "/login", Flash{Email: email, Message: msgTooManyAttempts})
		return
	}

	user, err := m.users.FindByEmail(c.Request.Context(), email)
	if err != nil {
		m.fail(c, err)
		return
	}
	if user == nil || !CheckPassword(password, user.PasswordHash) {
		remaining := m.limiter.recordFailure(ip)
		log.Printf("[%s] login failed for %q (remaining attempts: %d)", RequestIDFrom(c), email, remaining)
		m.flashAndRedirect(c, "/login", Flash{Email: email, Message: msgInvalidCredential})
		return
	}

	m.limiter.resetAttempts(ip)

	session := sessions.Default(c)
	SetAuthenticated(session, user.ID.Hex(), user.Email)
	// リダイレクト先は認証必須ページ。保存完了を確認する前にリダイレクトを
	// 返すと、ブラウザの次のリクエストが未認証のセッションを見る競合が起きる。
	if err := session.Save(); err != nil {
		m.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/profile")
}

// Profile は GET /profile のハンドラーです。認証済みユーザーなら誰でも閲覧できます。
func (m *Manager) Profile(c *gin.Context) {
	if !IsAuthenticated(c) {
		m.renderError(c, http.StatusUnauthorized)
		return
	}
	c.HTML(http.StatusOK, "profile.html", viewData(c, gin.H{
		"email": UserEmail(c),
	}))
}

// Admin は GET /admin のハンドラーです。未認証は401、管理者以外は403。
// 管理者判定は Enrich がリクエストごとにストアから引き直した現在値です。
func (m *Manager) Admin(c *gin.Context) {
	if !IsAuthenticated(c) {
		m.renderError(c, http.StatusUnauthorized)
		return
	}
	if !IsAdmin(c) {
		m.renderError(c, http.StatusForbidden)
		return
	}
	c.HTML(http.StatusOK, "admin.html", viewData(c, gin.H{
		"email": UserEmail(c),
	}))
}

// Logout は POST /logout のハンドラーです。
// セッションレコードは破棄せず、認証フィールドだけを落としてホームへ戻します。
func (m *Manager) Logout(c *gin.Context) {
	session := sessions.Default(c)
	ClearAuthenticated(session)
	if err := session.Save(); err != nil {
		m.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// flashAndRedirect はフラッシュを書き込み、保存の完了を確認してからリダイレクトします。
func (m *Manager) flashAndRedirect(c *gin.Context, location string, flash Flash) {
	session := sessions.Default(c)
	if err := PutFlash(session, flash); err != nil {
		m.fail(c, err)
		return
	}
	if err := session.Save(); err != nil {
		m.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, location)
}

// takeFlash はフラッシュを読み捨て、キーの削除をストアへ反映します。
// 保存に失敗した場合はリクエストを中断します（c.IsAborted で判定できます）。
func (m *Manager) takeFlash(c *gin.Context, session sessions.Session) (Flash, bool) {
	flash, existed := TakeFlash(session)
	if existed {
		if err := session.Save(); err != nil {
			m.fail(c, err)
			return Flash{}, false
		}
	}
	if flash == nil {
		return Flash{}, existed
	}
	return *flash, existed
}

// fail はインフラ系エラーを受け皿ミドルウェア（ErrorPage）へ引き渡します。
func (m *Manager) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// renderError は認可エラーのステータスと説明ページを描画します。
func (m *Manager) renderError(c *gin.Context, status int) {
	var name string
	switch status {
	case http.StatusUnauthorized:
		name = "401.html"
	case http.StatusForbidden:
		name = "403.html"
	default:
		name = "500.html"
	}
	c.HTML(status, name, viewData(c, nil))
}

// validateSignup は登録フォームの入力を検証し、不合格なら表示用メッセージを返します。
func validateSignup(email, confirmEmail, password string) (string, bool) {
	if email == "" || confirmEmail == "" || password == "" {
		return msgFieldsRequired, false
	}
	if len(strings.TrimSpace(password)) < 6 {
		return msgPasswordTooShort, false
	}
	if email != confirmEmail {
		return msgEmailMismatch, false
	}
	if !strings.Contains(email, "@") {
		return msgEmailInvalid, false
	}
	return "", true
}

// viewData はテンプレートへ渡すデータに認証コンテキストを合流させます。
func viewData(c *gin.Context, data gin.H) gin.H {
	if data == nil {
		data = gin.H{}
	}
	data["isAuth"] = IsAuthenticated(c)
	data["isAdmin"] = IsAdmin(c)
	return data
}
