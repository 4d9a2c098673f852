package auth

import (
	"encoding/json"

	"github.com/gin-contrib/sessions"
)

const (
	SessionCookieName = "ad_session"

	sessionKeyUserID    = "auth_user_id"
	sessionKeyUserEmail = "auth_user_email"
	sessionKeyAuthed    = "is_authenticated"
	sessionKeyFlash     = "flash_input"
)

// Flash はバリデーション失敗時にリダイレクト越しに一度だけ運ぶ入力エコーです。
// TakeFlash で読まれた時点で必ず破棄されるワンショット値であり、
// 無関係な後続リクエストに古い入力が漏れることはありません。
type Flash struct {
	Email        string `json:"email"`
	ConfirmEmail string `json:"confirmEmail"`
	Password     string `json:"password"`
	Message      string `json:"message"`
}

// SetAuthenticated はログイン状態をセッションに書き込みます。
// 反映には呼び出し側での Save が必要です。
func SetAuthenticated(session sessions.Session, userID, email string) {
	session.Set(sessionKeyUserID, userID)
	session.Set(sessionKeyUserEmail, email)
	session.Set(sessionKeyAuthed, true)
}

// ClearAuthenticated は認証関連のフィールドだけを落とします。
// セッションレコード自体と認証以外のキー（未読のフラッシュ等）は温存します。
func ClearAuthenticated(session sessions.Session) {
	session.Delete(sessionKeyUserID)
	session.Delete(sessionKeyUserEmail)
	session.Set(sessionKeyAuthed, false)
}

// SessionUser はセッションに記録されたユーザー情報を返します。
func SessionUser(session sessions.Session) (userID, email string, authenticated bool) {
	userID, _ = session.Get(sessionKeyUserID).(string)
	email, _ = session.Get(sessionKeyUserEmail).(string)
	authenticated, _ = session.Get(sessionKeyAuthed).(bool)
	return userID, email, authenticated
}

// PutFlash はフラッシュ値をセッションに書き込みます。反映には Save が必要です。
// セッションストアは gob でシリアライズするため、構造体は JSON 文字列にして1キーで持ちます。
func PutFlash(session sessions.Session, flash Flash) error {
	payload, err := json.Marshal(flash)
	if err != nil {
		return err
	}
	session.Set(sessionKeyFlash, string(payload))
	return nil
}

// TakeFlash はフラッシュ値を読み取り、結果にかかわらずその場で削除します。
// existed はキーが存在したかどうかで、削除を永続化するために Save が必要かの判断に使います。
// 壊れた値は (nil, true) になり、読み捨てられます。
func TakeFlash(session sessions.Session) (flash *Flash, existed bool) {
	raw := session.Get(sessionKeyFlash)
	if raw == nil {
		return nil, false
	}
	session.Delete(sessionKeyFlash)

	payload, ok := raw.(string)
	if !ok {
		return nil, true
	}
	var f Flash
	if err := json.Unmarshal([]byte(payload), &f); err != nil {
		return nil, true
	}
	return &f, true
}
