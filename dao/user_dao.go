package dao

import (
	"context"
	"errors"
	"strings"

	"palette/model"

	"gorm.io/gorm"
)

var (
	// ErrNotFound indicates no record matched the lookup key.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicate indicates a unique-index collision on email or username.
	ErrDuplicate = errors.New("duplicate email or username")
)

// UserDAO is the durable credential store, backed by a SQLite file whose
// transactional journal gives crash-atomic writes.
type UserDAO struct {
	db *gorm.DB
}

// NewUserDAO 创建一个新的 UserDAO 实例
func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{db: db}
}

// Create persists a new user record.
func (dao *UserDAO) Create(ctx context.Context, user *model.User) error {
	return wrapErr(dao.db.WithContext(ctx).Create(user).Error)
}

// FindByEmail looks a user up by email. Emails are stored lowercased, so the
// comparison is case-insensitive as long as callers normalize input.
func (dao *UserDAO) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := dao.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&user).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	return &user, nil
}

// FindByID 根据 ID 获取用户
func (dao *UserDAO) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := dao.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	return &user, nil
}

// FindByUsername resolves a username case-insensitively, so "Alice" and
// "alice" address the same record.
func (dao *UserDAO) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := dao.db.WithContext(ctx).Where("LOWER(username) = LOWER(?)", username).First(&user).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	return &user, nil
}

// Update writes the full record back in one transaction.
func (dao *UserDAO) Update(ctx context.Context, user *model.User) error {
	return wrapErr(dao.db.WithContext(ctx).Save(user).Error)
}

// Delete removes the record for the given email.
func (dao *UserDAO) Delete(ctx context.Context, email string) error {
	res := dao.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).Delete(&model.User{})
	if res.Error != nil {
		return wrapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns every stored user.
func (dao *UserDAO) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := dao.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, wrapErr(err)
	}
	return users, nil
}

func wrapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey),
		strings.Contains(err.Error(), "UNIQUE constraint failed"):
		return ErrDuplicate
	default:
		return err
	}
}
