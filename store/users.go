package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/cppla/luntan/apperror"
	"github.com/cppla/luntan/models"
)

// CreateUser inserts a user after checking username and email uniqueness.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	return s.Transaction(ctx, func(tx *Store) error {
		taken, err := tx.exists(ctx, &models.User{}, "username = ?", user.Username)
		if err != nil {
			return err
		}
		if taken {
			return apperror.Duplicate("username", user.Username)
		}
		taken, err = tx.exists(ctx, &models.User{}, "email = ?", user.Email)
		if err != nil {
			return err
		}
		if taken {
			return apperror.Duplicate("email", user.Email)
		}
		if err := tx.db.WithContext(ctx).Create(user).Error; err != nil {
			return insertUserError(err)
		}
		return nil
	})
}

// insertUserError maps a unique index collision that raced past the checks
// above. The driver error does not say which index fired.
func insertUserError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &apperror.AppError{Err: apperror.ErrDuplicateKey, Message: "username or email already exists"}
	}
	return fmt.Errorf("create user: %w", err)
}

func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, lookupErr(err, "user", id)
	}
	return &user, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, lookupErr(err, "user", username)
	}
	return &user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, lookupErr(err, "user", email)
	}
	return &user, nil
}

// GetUsersByIDs returns the users that exist among ids, keyed by id.
func (s *Store) GetUsersByIDs(ctx context.Context, ids []uint) (map[uint]models.User, error) {
	out := make(map[uint]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

// ListUsers returns users newest first.
func (s *Store) ListUsers(ctx context.Context, skip, limit int) ([]models.User, error) {
	var users []models.User
	err := paginate(s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC"), skip, limit).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// UpdateUser applies column updates to an existing user and returns the fresh row.
func (s *Store) UpdateUser(ctx context.Context, id uint, fields map[string]interface{}) (*models.User, error) {
	var user *models.User
	err := s.Transaction(ctx, func(tx *Store) error {
		u, err := tx.GetUser(ctx, id)
		if err != nil {
			return err
		}
		if len(fields) > 0 {
			if err := tx.db.WithContext(ctx).Model(u).Updates(fields).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return apperror.Duplicate("email", fmt.Sprint(fields["email"]))
				}
				return fmt.Errorf("update user %d: %w", id, err)
			}
		}
		user, err = tx.GetUser(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error
	return n, err
}

func (s *Store) exists(ctx context.Context, model interface{}, query string, args ...interface{}) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(model).Where(query, args...).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func paginate(q *gorm.DB, skip, limit int) *gorm.DB {
	if skip > 0 {
		q = q.Offset(skip)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	return q
}
