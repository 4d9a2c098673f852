package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/yourusername/auth-demo/internal/config"
)

const (
	usersCollection    = "users"
	sessionsCollection = "sessions"

	connectTimeout = 10 * time.Second
)

// Client は MongoDB への接続とコレクション参照をまとめた構造体です。
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect は MongoDB に接続し、疎通確認とインデックス作成まで行います。
func Connect(ctx context.Context, cfg *config.Config) (*Client, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	c := &Client{
		client: client,
		db:     client.Database(cfg.MongoDB),
	}
	if err := c.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// ensureIndexes は email のユニークインデックスを作成します。
// check-then-insert の競合に対する正しさはアプリ側のチェックではなく
// このインデックスが保証します。
func (c *Client) ensureIndexes(ctx context.Context) error {
	_, err := c.db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}

// Users はユーザーコレクションのストアを返します。
func (c *Client) Users() *Users {
	return &Users{coll: c.db.Collection(usersCollection)}
}

// SessionCollection はセッションストアプラグインに渡すコレクションを返します。
func (c *Client) SessionCollection() *mongo.Collection {
	return c.db.Collection(sessionsCollection)
}

// Disconnect は接続を閉じます。
func (c *Client) Disconnect(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// Users は users コレクションに対する Store 実装です。
type Users struct {
	coll *mongo.Collection
}

var _ Store = (*Users)(nil)

// FindByEmail はメールアドレスでユーザーを検索します。見つからない場合は (nil, nil) を返します。
func (u *Users) FindByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := u.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// FindByID はIDでユーザーを検索します。不正なID文字列は単なる未ヒットとして扱います。
func (u *Users) FindByID(ctx context.Context, id string) (*User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var user User
	err = u.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// Insert は新しいユーザーを保存します。
func (u *Users) Insert(ctx context.Context, email, passwordHash string) (*User, error) {
	user := &User{
		Email:        email,
		PasswordHash: passwordHash,
		IsAdmin:      false,
	}

	res, err := u.coll.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	user.ID = oid
	return user, nil
}
