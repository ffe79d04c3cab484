package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/food_delivery/internal/events"
	"github.com/Skotchmaster/food_delivery/internal/models"
	"github.com/Skotchmaster/food_delivery/internal/repo"
	"github.com/Skotchmaster/food_delivery/pkg/hash"
	"github.com/Skotchmaster/food_delivery/pkg/logging"
	"github.com/Skotchmaster/food_delivery/pkg/tokens"
)

const (
	AccessTTL  = 15 * time.Minute
	RefreshTTL = 7 * 24 * time.Hour
)

type AuthService struct {
	Repo          *repo.GormRepo
	JWTSecret     []byte
	RefreshSecret []byte
	Events        events.Publisher
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
	Role         string
}

func (s *AuthService) Register(ctx context.Context, username, password, role string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password required", ErrValidation)
	}
	if role == "" {
		role = models.RoleUser
	}
	if role != models.RoleUser {
		return nil, fmt.Errorf("%w: role %q cannot be self-assigned", ErrForbidden, role)
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("register_error", "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{Username: username, PasswordHash: pwHash, Role: role}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			return nil, fmt.Errorf("%w: user already exist", ErrConflict)
		}
		return nil, err
	}

	publish(ctx, s.Events, events.TopicUser, strconv.FormatUint(uint64(user.ID), 10), map[string]any{
		"type":     "user_registered",
		"user_id":  user.ID,
		"username": user.Username,
	})
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password required", ErrValidation)
	}

	user, err := s.Repo.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invalid username or password", ErrUnauthorized)
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Info("login_failed", "reason", "bad password")
		return nil, fmt.Errorf("%w: invalid username or password", ErrUnauthorized)
	}

	res, err := s.issue(ctx, s.Repo, user, nil)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, events.TopicUser, strconv.FormatUint(uint64(user.ID), 10), map[string]any{
		"type":     "user_logged_in",
		"user_id":  user.ID,
		"username": user.Username,
	})
	return res, nil
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// access/refresh pair is issued. A token can be rotated only once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: refresh token required", ErrUnauthorized)
	}
	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	stored, err := s.Repo.FindRefreshByJTI(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: refresh token not found", ErrUnauthorized)
		}
		return nil, err
	}
	if stored.TokenHash != tokens.Sha256Hex(refreshToken) {
		return nil, fmt.Errorf("%w: refresh token mismatch", ErrUnauthorized)
	}

	user, err := s.Repo.UserByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user gone", ErrUnauthorized)
		}
		return nil, err
	}

	res, err := s.issue(ctx, s.Repo, user, &claims.ID)
	if err != nil {
		if errors.Is(err, repo.ErrRefreshExpiredOrRevoked) {
			return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
		return nil, err
	}
	return res, nil
}

func (s *AuthService) LogOut(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.Repo.RevokeRefresh(ctx, tokens.Sha256Hex(refreshToken))
}

// issue signs a new token pair for user. When rotateJTI is set the old refresh
// token is revoked in the same transaction that stores the new one.
func (s *AuthService) issue(ctx context.Context, r *repo.GormRepo, user *models.User, rotateJTI *string) (*LoginResult, error) {
	now := time.Now()
	accessExp := now.Add(AccessTTL)
	refreshExp := now.Add(RefreshTTL)
	uid := strconv.FormatUint(uint64(user.ID), 10)

	access, err := tokens.NewAccessToken(s.JWTSecret, uid, user.Username, user.Role, accessExp)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	jti := tokens.NewJTI()
	refresh, err := tokens.NewRefreshToken(s.RefreshSecret, uid, jti, refreshExp)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	next := &models.RefreshToken{
		UserID:    user.ID,
		JTI:       jti,
		TokenHash: tokens.Sha256Hex(refresh),
		ExpiresAt: refreshExp.Unix(),
	}
	if rotateJTI != nil {
		err = r.RotateRefreshToken(ctx, *rotateJTI, next)
	} else {
		err = r.SaveRefresh(ctx, next)
	}
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
		Role:         user.Role,
	}, nil
}
