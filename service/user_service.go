package service

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"palette/config"
	"palette/dao"
	"palette/internal/auth"
	"palette/internal/metrics"
	"palette/internal/validator"
	"palette/model"
)

// UserStore abstracts the durable credential store. The interface lives on
// the consumer side so tests can substitute an in-memory fake.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, email string) error
	List(ctx context.Context) ([]model.User, error)
}

// UserService implements registration, login and profile operations over the
// credential store.
//
// mu serializes every read-modify-write sequence against the store, so the
// lockout bookkeeping of concurrent logins for one account can never lose an
// update. Password hashing for registration happens before the lock is
// taken; only login's verification runs inside it, because the attempt
// counter must be updated atomically with the password check.
type UserService struct {
	store UserStore
	mu    sync.Mutex
}

// NewUserService 创建一个新的 UserService 实例
func NewUserService(store UserStore) *UserService {
	return &UserService{store: store}
}

// ProfileUpdate carries the optional fields of a profile update; nil means
// "leave unchanged".
type ProfileUpdate struct {
	Username *string
	Email    *string
	Gender   *string
	Avatar   *string
}

// Register validates and sanitizes the input, hashes the password and
// persists a fresh user. Duplicate email or username (case-insensitive)
// yields ErrUserExists.
func (s *UserService) Register(ctx context.Context, email, password, username, gender, avatar string) (*model.User, string, error) {
	if err := validator.ValidateEmail(email); err != nil {
		return nil, "", &ValidationError{Field: "email", Reason: err}
	}
	if err := validator.ValidateUsername(username); err != nil {
		return nil, "", &ValidationError{Field: "username", Reason: err}
	}
	if err := validator.ValidatePassword(password); err != nil {
		return nil, "", &ValidationError{Field: "password", Reason: err}
	}
	if avatar != "" {
		if err := validator.ValidateAvatar(avatar); err != nil {
			return nil, "", &ValidationError{Field: "avatar", Reason: err}
		}
	}
	email = validator.NormalizeEmail(email)
	gender = validator.SanitizeText(gender, validator.MaxGenderLength)

	hashed, err := auth.HashPassword(password)
	if err != nil {
		slog.Error("hash password failed", "error", err)
		return nil, "", ErrInternal
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return nil, "", ErrUserExists
	} else if !errors.Is(err, dao.ErrNotFound) {
		slog.Error("email lookup failed", "error", err)
		return nil, "", ErrInternal
	}
	if _, err := s.store.FindByUsername(ctx, username); err == nil {
		return nil, "", ErrUserExists
	} else if !errors.Is(err, dao.ErrNotFound) {
		slog.Error("username lookup failed", "error", err)
		return nil, "", ErrInternal
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
		Gender:       gender,
		Avatar:       avatar,
	}
	if err := s.store.Create(ctx, user); err != nil {
		if errors.Is(err, dao.ErrDuplicate) {
			return nil, "", ErrUserExists
		}
		slog.Error("create user failed", "error", err)
		return nil, "", ErrInternal
	}

	token, err := auth.GenerateToken(user.ID, user.Email)
	if err != nil {
		slog.Error("issue token failed", "error", err)
		return nil, "", ErrInternal
	}
	return user, token, nil
}

// Login authenticates an email/password pair and issues a token.
//
// The lockout state machine lives here: a locked account rejects the attempt
// before any password verification and reports the remaining wait; an open
// account always performs exactly one bcrypt verification, against the
// stored hash or against auth.DummyHash when no record exists, so the two
// paths take the same time.
func (s *UserService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	if err := validator.ValidateEmail(email); err != nil {
		return nil, "", &ValidationError{Field: "email", Reason: err}
	}
	if password == "" {
		return nil, "", &ValidationError{Field: "password", Reason: validator.ErrPasswordLength}
	}
	email = validator.NormalizeEmail(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	user, lookupErr := s.store.FindByEmail(ctx, email)
	if lookupErr != nil && !errors.Is(lookupErr, dao.ErrNotFound) {
		slog.Error("email lookup failed", "error", lookupErr)
		return nil, "", ErrInternal
	}

	if user != nil {
		if remaining := user.LockedFor(now); remaining > 0 {
			metrics.IncLogin("locked")
			return nil, "", &LockedError{RetryAfterSeconds: ceilSeconds(remaining)}
		}
	}

	hash := auth.DummyHash
	if user != nil {
		hash = user.PasswordHash
	}
	ok := auth.CheckPasswordHash(password, hash)

	if user == nil || !ok {
		if user != nil {
			if err := s.recordFailure(ctx, user, now); err != nil {
				return nil, "", ErrInternal
			}
		}
		metrics.IncLogin("failed")
		return nil, "", ErrInvalidCredentials
	}

	// Success clears the lockout state regardless of where it was.
	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.LastLogin = &now
	if err := s.store.Update(ctx, user); err != nil {
		slog.Error("update user after login failed", "error", err)
		return nil, "", ErrInternal
	}

	token, err := auth.GenerateToken(user.ID, user.Email)
	if err != nil {
		slog.Error("issue token failed", "error", err)
		return nil, "", ErrInternal
	}
	metrics.IncLogin("success")
	return user, token, nil
}

// recordFailure advances the attempt counter and trips the lock once the
// configured failure budget is spent. Caller holds s.mu.
func (s *UserService) recordFailure(ctx context.Context, user *model.User, now time.Time) error {
	user.FailedLoginAttempts++
	if user.FailedLoginAttempts >= config.GlobalConfig.Auth.MaxLoginFailures {
		until := now.Add(time.Duration(config.GlobalConfig.Auth.LockoutSeconds) * time.Second)
		user.FailedLoginAttempts = 0
		user.LockedUntil = &until
		metrics.IncLockout()
		slog.Warn("account locked after repeated login failures", "user_id", user.ID, "until", until)
	}
	if err := s.store.Update(ctx, user); err != nil {
		slog.Error("record login failure failed", "error", err)
		return err
	}
	return nil
}

// GetUser fetches one record by id.
func (s *UserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return nil, ErrNotFound
		}
		slog.Error("user lookup failed", "error", err)
		return nil, ErrInternal
	}
	return user, nil
}

// UpdateProfile applies a partial update after validating each supplied
// field. Email and username changes re-check uniqueness against other
// records; on conflict the stored record is left untouched.
func (s *UserService) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return nil, ErrNotFound
		}
		slog.Error("user lookup failed", "error", err)
		return nil, ErrInternal
	}

	if upd.Email != nil {
		if err := validator.ValidateEmail(*upd.Email); err != nil {
			return nil, &ValidationError{Field: "email", Reason: err}
		}
		email := validator.NormalizeEmail(*upd.Email)
		if email != user.Email {
			if other, err := s.store.FindByEmail(ctx, email); err == nil && other.ID != user.ID {
				return nil, ErrUserExists
			} else if err != nil && !errors.Is(err, dao.ErrNotFound) {
				slog.Error("email lookup failed", "error", err)
				return nil, ErrInternal
			}
			user.Email = email
		}
	}
	if upd.Username != nil {
		if err := validator.ValidateUsername(*upd.Username); err != nil {
			return nil, &ValidationError{Field: "username", Reason: err}
		}
		if other, err := s.store.FindByUsername(ctx, *upd.Username); err == nil && other.ID != user.ID {
			return nil, ErrUserExists
		} else if err != nil && !errors.Is(err, dao.ErrNotFound) {
			slog.Error("username lookup failed", "error", err)
			return nil, ErrInternal
		}
		user.Username = *upd.Username
	}
	if upd.Gender != nil {
		user.Gender = validator.SanitizeText(*upd.Gender, validator.MaxGenderLength)
	}
	if upd.Avatar != nil {
		if *upd.Avatar != "" {
			if err := validator.ValidateAvatar(*upd.Avatar); err != nil {
				return nil, &ValidationError{Field: "avatar", Reason: err}
			}
		}
		user.Avatar = *upd.Avatar
	}

	user.UpdatedAt = time.Now()
	if err := s.store.Update(ctx, user); err != nil {
		if errors.Is(err, dao.ErrDuplicate) {
			return nil, ErrUserExists
		}
		slog.Error("update user failed", "error", err)
		return nil, ErrInternal
	}
	return user, nil
}

func ceilSeconds(d time.Duration) int64 {
	secs := int64(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}
