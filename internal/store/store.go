// Package store はユーザー資格情報の永続化レイヤーを提供します。
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrEmailTaken は既に登録済みのメールアドレスで Insert した場合に返されます。
// 重複判定はストア側のユニークインデックスで行われるため、
// 事前チェックをすり抜けた同時登録もこのエラーに収束します。
var ErrEmailTaken = errors.New("email is already registered")

// User はユーザードキュメントを表します。
// 大文字小文字は区別して保存・照合します。
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	IsAdmin      bool               `bson:"is_admin"`
}

// Store はユーザーコレクションへの操作をまとめたインターフェースです。
// 見つからない場合は (nil, nil) を返し、扱いは呼び出し側に委ねます。
type Store interface {
	// FindByEmail はメールアドレスでユーザーを検索します。
	FindByEmail(ctx context.Context, email string) (*User, error)
	// FindByID は16進文字列のIDでユーザーを検索します。
	FindByID(ctx context.Context, id string) (*User, error)
	// Insert は新しいユーザーを保存し、ID付きのレコードを返します。
	// メールアドレスが重複している場合は ErrEmailTaken を返します。
	Insert(ctx context.Context, email, passwordHash string) (*User, error)
}
