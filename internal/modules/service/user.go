package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/taskroom/taskroom/internal/modules/model"
	"github.com/taskroom/taskroom/internal/modules/repo"
	"github.com/taskroom/taskroom/internal/pkg/paging"
	"github.com/taskroom/taskroom/internal/pkg/utils/secrets"
	"go.uber.org/zap"
)

const usernameMaxLen = 15

// UserInput carries the writable user fields; nil means "not provided".
type UserInput struct {
	Username  *string
	Email     *string
	Password  *string
	FirstName *string
	LastName  *string
	UserType  *model.Role
}

type UserService interface {
	Create(ctx context.Context, in UserInput) (*model.User, error)
	Get(ctx context.Context, id uint) (*model.User, error)
	List(ctx context.Context, f repo.UserFilter, p paging.Params) (paging.Result[model.User], error)
	Update(ctx context.Context, id uint, in UserInput) (*model.User, error)
	Delete(ctx context.Context, id uint) error
}

type userService struct {
	r   repo.UserRepo
	log *zap.Logger
}

func NewUserService(r repo.UserRepo, log *zap.Logger) UserService {
	return &userService{r: r, log: log}
}

func (s *userService) Create(ctx context.Context, in UserInput) (*model.User, error) {
	if in.Username == nil || strings.TrimSpace(*in.Username) == "" {
		return nil, fieldErr("username", ErrRequired)
	}
	if in.Password == nil || *in.Password == "" {
		return nil, fieldErr("password", ErrRequired)
	}
	if err := checkPassword(*in.Password); err != nil {
		return nil, err
	}

	u := &model.User{UserType: model.RoleAdmin}
	if err := s.apply(ctx, u, in); err != nil {
		return nil, err
	}
	if err := u.SetPassword(*in.Password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if err := s.r.Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.Sugar().Infow("user created", "user_id", u.ID, "user_type", u.UserType)
	return u, nil
}

func (s *userService) Get(ctx context.Context, id uint) (*model.User, error) {
	u, err := s.r.Get(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func (s *userService) List(ctx context.Context, f repo.UserFilter, p paging.Params) (paging.Result[model.User], error) {
	p = p.Normalize()
	items, total, err := s.r.List(ctx, f, p)
	if err != nil {
		return paging.Result[model.User]{}, err
	}
	return paging.NewResult(items, total, p), nil
}

// Update applies in to the stored user. The password is re-hashed only when
// the incoming value differs from the stored hash, so echoing the hash back
// leaves it bit-identical.
func (s *userService) Update(ctx context.Context, id uint, in UserInput) (*model.User, error) {
	u, err := s.r.Get(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if err := s.apply(ctx, u, in); err != nil {
		return nil, err
	}
	if in.Password != nil && *in.Password != u.Password {
		if *in.Password == "" {
			return nil, fieldErr("password", ErrRequired)
		}
		if err := checkPassword(*in.Password); err != nil {
			return nil, err
		}
		if err := u.SetPassword(*in.Password); err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
	}

	if err := s.r.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// checkPassword rejects input bcrypt would refuse to hash.
func checkPassword(raw string) error {
	if len(raw) > secrets.MaxPasswordBytes {
		return fieldErr("password", ErrTooLong)
	}
	return nil
}

func (s *userService) Delete(ctx context.Context, id uint) error {
	if err := s.r.Delete(ctx, id); err != nil {
		return notFound(err)
	}
	s.log.Sugar().Infow("user deleted", "user_id", id)
	return nil
}

// apply copies every provided non-password field onto u after validating it.
func (s *userService) apply(ctx context.Context, u *model.User, in UserInput) error {
	if in.Username != nil {
		name := strings.TrimSpace(*in.Username)
		if name == "" {
			return fieldErr("username", ErrRequired)
		}
		if utf8.RuneCountInString(name) > usernameMaxLen {
			return fieldErr("username", ErrTooLong)
		}
		taken, err := s.r.UsernameTaken(ctx, name, u.ID)
		if err != nil {
			return err
		}
		if taken {
			return fieldErr("username", ErrDuplicate)
		}
		u.Username = name
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email != "" && !emailPattern.MatchString(email) {
			return fieldErr("email", ErrInvalidValue)
		}
		taken, err := s.r.EmailTaken(ctx, email, u.ID)
		if err != nil {
			return err
		}
		if taken {
			return fieldErr("email", ErrDuplicate)
		}
		u.Email = email
	}
	if in.FirstName != nil {
		u.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		u.LastName = *in.LastName
	}
	if in.UserType != nil {
		if !in.UserType.Valid() {
			return fieldErr("user_type", ErrInvalidValue)
		}
		u.UserType = *in.UserType
	}
	return nil
}
