package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/taskroom/taskroom/internal/authz"
	"github.com/taskroom/taskroom/internal/modules/model"
	"github.com/taskroom/taskroom/internal/modules/repo"
	"github.com/taskroom/taskroom/internal/pkg/tokens"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type SignInOutcome int

const (
	SignInOK SignInOutcome = iota
	SignInUserNotFound
	SignInIncorrectPassword
)

type SignInOutput struct {
	Outcome SignInOutcome
	User    *model.User
	Tokens  tokens.Pair
}

type AuthService interface {
	// SignIn resolves identifier as an email when it looks like one, as a username otherwise.
	SignIn(ctx context.Context, identifier, password string) (*SignInOutput, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	// Authenticate turns an access token into a principal without touching the store.
	Authenticate(accessToken string) (*authz.Principal, error)
}

type authService struct {
	users  repo.UserRepo
	issuer *tokens.Issuer
	log    *zap.Logger
}

func NewAuthService(users repo.UserRepo, issuer *tokens.Issuer, log *zap.Logger) AuthService {
	return &authService{users: users, issuer: issuer, log: log}
}

func (s *authService) SignIn(ctx context.Context, identifier, password string) (*SignInOutput, error) {
	identifier = strings.TrimSpace(identifier)

	var (
		u   *model.User
		err error
	)
	if emailPattern.MatchString(identifier) {
		u, err = s.users.GetByEmail(ctx, identifier)
	} else {
		u, err = s.users.GetByUsername(ctx, identifier)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &SignInOutput{Outcome: SignInUserNotFound}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !u.CheckPassword(password) {
		s.log.Sugar().Infow("sign-in rejected", "user_id", u.ID, "reason", "incorrect password")
		return &SignInOutput{Outcome: SignInIncorrectPassword}, nil
	}

	pair, err := s.issuer.IssuePair(u.ID, string(u.UserType))
	if err != nil {
		return nil, err
	}
	return &SignInOutput{Outcome: SignInOK, User: u, Tokens: pair}, nil
}

// Refresh mints an access token carrying the user's current role. A refresh
// token whose user has since been deleted is treated as invalid.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.issuer.Parse(refreshToken, tokens.Refresh)
	if err != nil {
		return "", err
	}
	u, err := s.users.Get(ctx, claims.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("%w: user %d no longer exists", tokens.ErrInvalidToken, claims.UserID)
	}
	if err != nil {
		return "", fmt.Errorf("lookup user: %w", err)
	}
	if string(u.UserType) != claims.Role {
		s.log.Sugar().Infow("refresh picked up role change", "user_id", u.ID, "from", claims.Role, "to", u.UserType)
	}
	return s.issuer.IssueAccess(u.ID, string(u.UserType))
}

func (s *authService) Authenticate(accessToken string) (*authz.Principal, error) {
	claims, err := s.issuer.Parse(accessToken, tokens.Access)
	if err != nil {
		return nil, err
	}
	role := model.Role(claims.Role)
	if !role.Valid() || claims.UserID == 0 {
		return nil, tokens.ErrInvalidToken
	}
	return &authz.Principal{UserID: claims.UserID, Role: role}, nil
}
