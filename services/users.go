package services

import (
	"context"
	"errors"
	"net/mail"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/cppla/luntan/apperror"
	"github.com/cppla/luntan/models"
	"github.com/cppla/luntan/store"
	"github.com/cppla/luntan/utils"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_\-\.]{3,32}$`)

const minPasswordLen = 6

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// ProfileInput holds optional profile changes; nil fields are left untouched.
type ProfileInput struct {
	Email    *string
	Bio      *string
	Gender   *string
	Location *string
	Website  *string
}

// UserService owns account lifecycle and user-facing queries.
type UserService struct {
	store    *store.Store
	enricher *Enricher
	logger   *zap.Logger
}

func NewUserService(st *store.Store, enricher *Enricher, logger *zap.Logger) *UserService {
	return &UserService{store: st, enricher: enricher, logger: logger}
}

// Register creates an active, non-superuser account.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (models.UserView, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !usernamePattern.MatchString(username) {
		return models.UserView{}, apperror.Validation("username must be 3-32 letters, digits, '_', '-' or '.'")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return models.UserView{}, apperror.Validation("invalid email address")
	}
	if len(in.Password) < minPasswordLen {
		return models.UserView{}, apperror.Validation("password must be at least 6 characters")
	}
	if len(in.Password) > utils.MaxPasswordBytes {
		return models.UserView{}, apperror.Validation("password must be at most 72 bytes")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return models.UserView{}, err
	}
	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.store.CreateUser(ctx, &user); err != nil {
		return models.UserView{}, err
	}
	s.logger.Info("user registered", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	return s.enricher.EnrichUser(ctx, &user, 0)
}

// Authenticate checks a username/password pair. Unknown users, wrong
// passwords and inactive accounts all yield ErrUnauthorized.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			LoginAttempts.WithLabelValues("unknown_user").Inc()
			return nil, apperror.Unauthorized("invalid username or password")
		}
		return nil, err
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		LoginAttempts.WithLabelValues("bad_password").Inc()
		return nil, apperror.Unauthorized("invalid username or password")
	}
	if !user.IsActive {
		LoginAttempts.WithLabelValues("inactive").Inc()
		return nil, apperror.Unauthorized("account is disabled")
	}
	LoginAttempts.WithLabelValues("success").Inc()
	return user, nil
}

// FindUser loads the raw user row, for identity checks.
func (s *UserService) FindUser(ctx context.Context, id uint) (*models.User, error) {
	return s.store.GetUser(ctx, id)
}

func (s *UserService) GetUser(ctx context.Context, id, viewerID uint) (models.UserView, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return models.UserView{}, err
	}
	return s.enricher.EnrichUser(ctx, user, viewerID)
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string, viewerID uint) (models.UserView, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return models.UserView{}, err
	}
	return s.enricher.EnrichUser(ctx, user, viewerID)
}

// UpdateProfile applies the provided profile fields.
func (s *UserService) UpdateProfile(ctx context.Context, id uint, in ProfileInput) (models.UserView, error) {
	fields := map[string]interface{}{}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if _, err := mail.ParseAddress(email); err != nil {
			return models.UserView{}, apperror.Validation("invalid email address")
		}
		if other, err := s.store.GetUserByEmail(ctx, email); err == nil && other.ID != id {
			return models.UserView{}, apperror.Duplicate("email", email)
		} else if err != nil && !errors.Is(err, apperror.ErrNotFound) {
			return models.UserView{}, err
		}
		fields["email"] = email
	}
	text := []struct {
		col string
		val *string
		max int
	}{
		{"bio", in.Bio, 512},
		{"gender", in.Gender, 16},
		{"location", in.Location, 128},
		{"website", in.Website, 255},
	}
	for _, t := range text {
		if t.val == nil {
			continue
		}
		v := utils.SanitizeText(*t.val)
		if len(v) > t.max {
			return models.UserView{}, apperror.Validation(t.col + " is too long")
		}
		fields[t.col] = v
	}

	user, err := s.store.UpdateUser(ctx, id, fields)
	if err != nil {
		return models.UserView{}, err
	}
	return s.enricher.EnrichUser(ctx, user, id)
}

// UpdateAvatar stores a new avatar reference for the user.
func (s *UserService) UpdateAvatar(ctx context.Context, id uint, avatarURL string) (models.UserView, error) {
	user, err := s.store.UpdateUser(ctx, id, map[string]interface{}{"avatar_url": avatarURL})
	if err != nil {
		return models.UserView{}, err
	}
	return s.enricher.EnrichUser(ctx, user, id)
}

// ListUsers is the admin listing, newest accounts first.
func (s *UserService) ListUsers(ctx context.Context, skip, limit int, viewerID uint) ([]models.UserView, error) {
	skip, limit = NormalizePage(skip, limit)
	users, err := s.store.ListUsers(ctx, skip, limit)
	if err != nil {
		return nil, err
	}
	return s.enricher.EnrichUsers(ctx, users, viewerID)
}

// Followers lists the users following id.
func (s *UserService) Followers(ctx context.Context, id, viewerID uint) ([]models.UserView, error) {
	if _, err := s.store.GetUser(ctx, id); err != nil {
		return nil, err
	}
	ids, err := s.store.ActorsOf(ctx, store.RelationFollow, id)
	if err != nil {
		return nil, err
	}
	return s.usersByIDs(ctx, ids, viewerID)
}

// Following lists the users id follows.
func (s *UserService) Following(ctx context.Context, id, viewerID uint) ([]models.UserView, error) {
	if _, err := s.store.GetUser(ctx, id); err != nil {
		return nil, err
	}
	ids, err := s.store.TargetsOf(ctx, store.RelationFollow, id)
	if err != nil {
		return nil, err
	}
	return s.usersByIDs(ctx, ids, viewerID)
}

func (s *UserService) usersByIDs(ctx context.Context, ids []uint, viewerID uint) ([]models.UserView, error) {
	byID, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	users := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			users = append(users, u)
		}
	}
	return s.enricher.EnrichUsers(ctx, users, viewerID)
}

// EnsureSuperuser creates the admin account, or promotes an existing one and
// resets its password and activation.
func (s *UserService) EnsureSuperuser(ctx context.Context, username, password, email string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, apperror.Validation("admin username and password are required")
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		user, err := s.store.UpdateUser(ctx, existing.ID, map[string]interface{}{
			"password_hash": hash,
			"is_superuser":  true,
			"is_active":     true,
		})
		if err != nil {
			return nil, err
		}
		s.logger.Info("superuser promoted", zap.String("username", username))
		return user, nil
	case errors.Is(err, apperror.ErrNotFound):
		user := models.User{
			Username:     username,
			Email:        strings.ToLower(email),
			PasswordHash: hash,
			IsActive:     true,
			IsSuperuser:  true,
		}
		if err := s.store.CreateUser(ctx, &user); err != nil {
			return nil, err
		}
		s.logger.Info("superuser created", zap.String("username", username))
		return &user, nil
	default:
		return nil, err
	}
}
