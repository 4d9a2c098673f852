package store

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory はテストやローカル確認用のインメモリ Store 実装です。
// Mongo実装と同じ契約（未ヒットは nil, nil / 重複は ErrEmailTaken）を守ります。
type Memory struct {
	mu    sync.Mutex
	users map[string]*User // key: ID の16進表現
}

var _ Store = (*Memory)(nil)

// NewMemory は空のインメモリストアを作成します。
func NewMemory() *Memory {
	return &Memory{users: make(map[string]*User)}
}

// FindByEmail はメールアドレスでユーザーを検索します。大文字小文字は区別します。
func (m *Memory) FindByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

// FindByID はIDでユーザーを検索します。
func (m *Memory) FindByID(_ context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	clone := *u
	return &clone, nil
}

// Insert は新しいユーザーを保存します。
func (m *Memory) Insert(_ context.Context, email, passwordHash string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			return nil, ErrEmailTaken
		}
	}

	user := &User{
		ID:           primitive.NewObjectID(),
		Email:        email,
		PasswordHash: passwordHash,
		IsAdmin:      false,
	}
	m.users[user.ID.Hex()] = user

	clone := *user
	return &clone, nil
}

// SetAdmin は管理者フラグを更新します。本アプリにはこのためのルートは無く、
// 運用操作（およびテスト）からのみ使います。
func (m *Memory) SetAdmin(id string, isAdmin bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return false
	}
	u.IsAdmin = isAdmin
	return true
}

// Delete はユーザーを削除します。セッションだけが残った状態を作るテストで使います。
func (m *Memory) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return false
	}
	delete(m.users, id)
	return true
}

// Count は保存済みユーザー数を返します。
func (m *Memory) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}
