package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"userdir/internal/domain/user"
	"userdir/pkg/logger"
)

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID        int64  `gorm:"primaryKey"`
	Email     string `gorm:"not null"`
	FirstName string `gorm:"column:firstName"`
	LastName  string `gorm:"column:lastName"`
	Avatar    string
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

// SQLiteStore implements Store on an embedded SQLite database via GORM.
type SQLiteStore struct {
	db  *gorm.DB
	log *zap.Logger

	// The embedded engine is not expected to tolerate concurrent
	// writers; all access goes through one lock.
	mu sync.Mutex
}

// SQLiteConfig holds the options for opening the sqlite store.
type SQLiteConfig struct {
	Path             string  // file path, or ":memory:"
	SlowQuerySeconds float64 // slow query log threshold
	LogLevel         string
}

// NewSQLiteStore opens (creating if needed) the sqlite database at
// cfg.Path and migrates the users table.
func NewSQLiteStore(cfg SQLiteConfig, log *zap.Logger) (*SQLiteStore, error) {
	gormLogger := logger.NewGormLoggerWithConfig(log, cfg.SlowQuerySeconds, cfg.LogLevel)

	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}

	if err := db.AutoMigrate(&UserSchema{}); err != nil {
		return nil, fmt.Errorf("failed to migrate users table: %w", err)
	}

	log.Info("sqlite store opened", zap.String("path", cfg.Path))
	return &SQLiteStore{db: db, log: log}, nil
}

func toSchema(u user.User) UserSchema {
	return UserSchema{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Avatar:    u.Avatar,
	}
}

func fromSchema(m UserSchema) user.User {
	return user.User{
		ID:        m.ID,
		Email:     m.Email,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Avatar:    m.Avatar,
	}
}

// GetAll returns every cached user.
func (s *SQLiteStore) GetAll(ctx context.Context) ([]user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var models []UserSchema
	if err := s.db.WithContext(ctx).Find(&models).Error; err != nil {
		s.log.Error("failed to read users from store", zap.Error(err))
		return nil, fmt.Errorf("failed to read users: %w", err)
	}

	users := make([]user.User, len(models))
	for i, m := range models {
		users[i] = fromSchema(m)
	}
	return users, nil
}

// Insert upserts a single user by id.
func (s *SQLiteStore) Insert(ctx context.Context, u user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	model := toSchema(u)
	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&model).Error; err != nil {
		s.log.Error("failed to insert user into store", zap.Error(err), zap.Int64("id", u.ID))
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// InsertAll upserts a batch of users by id.
func (s *SQLiteStore) InsertAll(ctx context.Context, users []user.User) error {
	if len(users) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	models := make([]UserSchema, len(users))
	for i, u := range users {
		models[i] = toSchema(u)
	}
	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&models).Error; err != nil {
		s.log.Error("failed to insert users into store", zap.Error(err), zap.Int("count", len(users)))
		return fmt.Errorf("failed to insert users: %w", err)
	}
	s.log.Debug("users inserted into store", zap.Int("count", len(users)))
	return nil
}

// Update rewrites an existing user's record.
func (s *SQLiteStore) Update(ctx context.Context, u user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	model := toSchema(u)
	if err := s.db.WithContext(ctx).Save(&model).Error; err != nil {
		s.log.Error("failed to update user in store", zap.Error(err), zap.Int64("id", u.ID))
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// Delete removes the user with u's id.
func (s *SQLiteStore) Delete(ctx context.Context, u user.User) error {
	if u.ID <= 0 {
		return errors.New("invalid user id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.WithContext(ctx).Delete(&UserSchema{}, u.ID).Error; err != nil {
		s.log.Error("failed to delete user from store", zap.Error(err), zap.Int64("id", u.ID))
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// DeleteAll clears the cache.
func (s *SQLiteStore) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.WithContext(ctx).Where("1 = 1").Delete(&UserSchema{}).Error; err != nil {
		s.log.Error("failed to clear store", zap.Error(err))
		return fmt.Errorf("failed to clear store: %w", err)
	}
	return nil
}

// MaxID returns the highest user id in the cache, 0 when empty.
func (s *SQLiteStore) MaxID(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var maxID int64
	if err := s.db.WithContext(ctx).
		Model(&UserSchema{}).
		Select("COALESCE(MAX(id), 0)").
		Scan(&maxID).Error; err != nil {
		s.log.Error("failed to read max user id", zap.Error(err))
		return 0, fmt.Errorf("failed to read max user id: %w", err)
	}
	return maxID, nil
}

// CountWithEmail counts users holding email, excluding excludingID.
func (s *SQLiteStore) CountWithEmail(ctx context.Context, email string, excludingID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	if err := s.db.WithContext(ctx).
		Model(&UserSchema{}).
		Where("email = ? AND id != ?", email, excludingID).
		Count(&count).Error; err != nil {
		s.log.Error("failed to count users by email", zap.Error(err), zap.String("email", email))
		return 0, fmt.Errorf("failed to count users by email: %w", err)
	}
	return count, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}
