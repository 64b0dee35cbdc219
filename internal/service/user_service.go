package service

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/fsdevblog/groph-referral/internal/domain"
	"github.com/fsdevblog/groph-referral/internal/repository/repoargs"
	"github.com/fsdevblog/groph-referral/internal/transport/api/tokens"
	"github.com/fsdevblog/groph-referral/pkg/uow"
	"github.com/shopspring/decimal"
)

const JWTTokenExpire = 1 * time.Hour

// emailRegexp допускает локальную часть из букв, цифр и ._%+-, домен хотя бы с одной точкой
// и верхним сегментом длиной от 2 до 6 букв.
var emailRegexp = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,6}$`)

type UserService struct {
	uow      uow.UOW
	userRepo UserRepository
	psswd    PasswordHasher

	jwtTokenSecret []byte
}

func NewUserService(u uow.UOW, jwtTokenSecret []byte, hasher PasswordHasher) (*UserService, error) {
	userRepo, userRepoErr := uow.GetRepositoryAs[UserRepository](u, uow.RepositoryName(repoargs.UserRepoName))
	if userRepoErr != nil {
		return nil, userRepoErr
	}
	return &UserService{
		uow:            u,
		userRepo:       userRepo,
		psswd:          hasher,
		jwtTokenSecret: jwtTokenSecret,
	}, nil
}

type RegisterUserArgs struct {
	FullName   string
	Email      string
	Password   string
	TotalSales decimal.NullDecimal
}

// Register создает юзера в базе данных с ролью domain.RoleUser. Пароль хранится только в виде bcrypt хэша.
// Возвращает ошибки:
//   - domain.ErrInvalidEmail если email не проходит по формату;
//   - domain.ErrDuplicateKey если email уже занят;
//   - domain.ErrUnknown во всех остальных случаях.
func (s *UserService) Register(ctx context.Context, args RegisterUserArgs) (*domain.User, error) {
	if !emailRegexp.MatchString(args.Email) {
		return nil, fmt.Errorf("registering user: %w", domain.ErrInvalidEmail)
	}

	password, hashErr := s.psswd.HashPassword(args.Password)
	if hashErr != nil {
		return nil, fmt.Errorf("registering user: %s", hashErr.Error())
	}

	var user *domain.User
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		userRepo, userRepoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
		if userRepoErr != nil {
			return userRepoErr //nolint:wrapcheck
		}

		exists, existsErr := userRepo.ExistsByEmail(c, args.Email)
		if existsErr != nil {
			return existsErr //nolint:wrapcheck
		}
		if exists {
			return domain.ErrDuplicateKey
		}

		var createErr error
		user, createErr = userRepo.CreateUser(c, repoargs.CreateUser{
			FullName:          args.FullName,
			Email:             args.Email,
			EncryptedPassword: password,
			Role:              domain.RoleUser,
			TotalSales:        args.TotalSales,
		})
		return createErr //nolint:wrapcheck
	})

	if txErr != nil {
		return nil, fmt.Errorf("registering user: %w", txErr)
	}
	return user, nil
}

type LoginUserArgs struct {
	Email    string
	Password string
}

// Login проверяет пару email/пароль и выдает jwt токен с идентификатором и ролью юзера.
// Возвращает 3 значения: юзер, токен и ошибку. При неверном пароле вернется domain.ErrPasswordMissMatch,
// при неизвестном email - domain.ErrRecordNotFound.
func (s *UserService) Login(ctx context.Context, args LoginUserArgs) (*domain.User, string, error) {
	user, userErr := s.userRepo.FindByEmail(ctx, args.Email)
	if userErr != nil {
		return nil, "", fmt.Errorf("login user: %w", userErr)
	}

	if !s.psswd.ComparePassword(args.Password, user.EncryptedPassword) {
		return nil, "", fmt.Errorf("login user: %w", domain.ErrPasswordMissMatch)
	}

	token, tokenErr := tokens.GenerateUserJWT(user.ID, user.Role, JWTTokenExpire, s.jwtTokenSecret)
	if tokenErr != nil {
		return nil, "", fmt.Errorf("login user: %s", tokenErr.Error())
	}
	return user, token, nil
}
