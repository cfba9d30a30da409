package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/parking-reservation/internal/apperror"
	"github.com/iliyamo/parking-reservation/internal/model"
	"github.com/iliyamo/parking-reservation/internal/utils"
)

// AuthOptions holds token and hashing settings.
type AuthOptions struct {
	JWTSecret      string
	AccessTTLMin   int
	RefreshTTLDays int
	BcryptCost     int
}

// Session is the result of a successful sign-in.
type Session struct {
	User    model.User
	Access  utils.AccessToken
	Refresh utils.RefreshToken
}

// RegisterInput describes a new account.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Phone    string
}

// AuthService registers users and issues access/refresh token pairs.
type AuthService struct {
	store Store
	opts  AuthOptions
}

func NewAuthService(store Store, opts AuthOptions) *AuthService {
	return &AuthService{store: store, opts: opts}
}

// Register creates a USER account and signs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (Session, error) {
	u, err := s.createUser(ctx, in, model.RoleUser)
	if err != nil {
		return Session{}, err
	}
	return s.issue(ctx, u)
}

// EnsureAdmin creates an ADMIN account when none exists for email. It is
// used at startup to seed the first administrator.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}
	if _, err := s.store.UserByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	_, err := s.createUser(ctx, RegisterInput{Email: email, Password: password, Name: "Administrator"}, model.RoleAdmin)
	if errors.Is(err, apperror.ErrConflict) {
		return nil
	}
	return err
}

func (s *AuthService) createUser(ctx context.Context, in RegisterInput, role string) (model.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return model.User{}, apperror.InvalidArgument("email", "email/password required")
	}
	if err := utils.CheckPassword(in.Password); err != nil {
		return model.User{}, apperror.InvalidArgument("password", err.Error())
	}
	hash, err := utils.HashPassword(in.Password, s.opts.BcryptCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}
	u := model.User{
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if phone := strings.TrimSpace(in.Phone); phone != "" {
		u.Phone = &phone
	}
	if err := s.store.InsertUser(ctx, &u); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return model.User{}, apperror.Conflict("email already exists")
		}
		return model.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// Login verifies credentials and returns a new token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return Session{}, apperror.InvalidArgument("email", "email/password required")
	}
	u, err := s.store.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, apperror.Unauthorized("invalid credentials")
		}
		return Session{}, fmt.Errorf("load user: %w", err)
	}
	if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, password) {
		return Session{}, apperror.Unauthorized("invalid credentials")
	}
	return s.issue(ctx, u)
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// pair is issued.
func (s *AuthService) Refresh(ctx context.Context, raw string) (Session, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Session{}, apperror.InvalidArgument("refresh_token", "refresh_token required")
	}
	hash := utils.HashRefreshRaw(raw)
	userID, err := s.store.ValidateRefresh(ctx, hash)
	if err != nil {
		return Session{}, apperror.Unauthorized("invalid refresh")
	}
	if err := s.store.RevokeRefresh(ctx, hash); err != nil {
		return Session{}, fmt.Errorf("revoke refresh: %w", err)
	}
	u, err := s.store.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, apperror.Unauthorized("invalid refresh")
		}
		return Session{}, fmt.Errorf("load user: %w", err)
	}
	return s.issue(ctx, u)
}

// Logout revokes a single refresh token, or every token of userID when raw
// is empty.
func (s *AuthService) Logout(ctx context.Context, userID uint64, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw != "" {
		hash := utils.HashRefreshRaw(raw)
		if _, err := s.store.ValidateRefresh(ctx, hash); err != nil {
			return apperror.Unauthorized("invalid refresh token")
		}
		return s.store.RevokeRefresh(ctx, hash)
	}
	if userID == 0 {
		return apperror.InvalidArgument("refresh_token", "provide Authorization header or refresh_token")
	}
	return s.store.RevokeAllRefresh(ctx, userID)
}

func (s *AuthService) issue(ctx context.Context, u model.User) (Session, error) {
	access, err := utils.NewAccessToken(s.opts.JWTSecret, u.ID, u.Role, s.opts.AccessTTLMin)
	if err != nil {
		return Session{}, fmt.Errorf("issue access: %w", err)
	}
	refresh, err := utils.NewRefreshToken(s.opts.RefreshTTLDays)
	if err != nil {
		return Session{}, fmt.Errorf("issue refresh: %w", err)
	}
	if err := s.store.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return Session{}, fmt.Errorf("save refresh: %w", err)
	}
	return Session{User: u, Access: access, Refresh: refresh}, nil
}

// Me returns the account of an authenticated user.
func (s *AuthService) Me(ctx context.Context, userID uint64) (model.User, error) {
	u, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return model.User{}, lookupErr(err, "user", userID)
	}
	return u, nil
}
