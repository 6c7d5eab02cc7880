package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/optbazar/optbazar/internal/platform/mongodb"
	"github.com/optbazar/optbazar/internal/shared"
)

// ErrDuplicateUsername is returned when the username is already taken.
var ErrDuplicateUsername = fmt.Errorf("auth: username already exists: %w", shared.ErrConflict)

// Repository defines persistence operations for auth module.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (*Admin, error)
	CreateAdmin(ctx context.Context, admin Admin) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByUsername fetches an admin by username.
func (r *PGRepository) FindByUsername(ctx context.Context, username string) (*Admin, error) {
	var a Admin
	err := r.pool.QueryRow(ctx, `SELECT id::text, username, password_hash, created_at FROM admins WHERE username = $1`, username).
		Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// CreateAdmin inserts a new admin record.
func (r *PGRepository) CreateAdmin(ctx context.Context, admin Admin) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO admins (id, username, password_hash, created_at) VALUES ($1, $2, $3, $4)`,
		admin.ID, admin.Username, admin.PasswordHash, admin.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("auth: insert admin: %w", err)
	}
	return nil
}

// MongoRepository implements Repository on the admins collection.
type MongoRepository struct {
	collection *mongo.Collection
}

// NewMongoRepository constructs a MongoDB repository.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: db.Collection(mongodb.AdminsCollection)}
}

type adminDocument struct {
	ID           string    `bson:"_id"`
	Username     string    `bson:"username"`
	PasswordHash string    `bson:"passwordHash"`
	CreatedAt    time.Time `bson:"createdAt"`
}

// FindByUsername fetches an admin by username.
func (r *MongoRepository) FindByUsername(ctx context.Context, username string) (*Admin, error) {
	var doc adminDocument
	err := r.collection.FindOne(ctx, bson.M{"username": username}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &Admin{ID: doc.ID, Username: doc.Username, PasswordHash: doc.PasswordHash, CreatedAt: doc.CreatedAt.UTC()}, nil
}

// CreateAdmin inserts a new admin document.
func (r *MongoRepository) CreateAdmin(ctx context.Context, admin Admin) error {
	_, err := r.collection.InsertOne(ctx, adminDocument{
		ID:           admin.ID,
		Username:     admin.Username,
		PasswordHash: admin.PasswordHash,
		CreatedAt:    admin.CreatedAt,
	})
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateUsername
	}
	if err != nil {
		return fmt.Errorf("auth: insert admin: %w", err)
	}
	return nil
}

var (
	_ Repository = (*PGRepository)(nil)
	_ Repository = (*MongoRepository)(nil)
)
