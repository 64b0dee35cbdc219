package api

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/fsdevblog/groph-referral/internal/domain"
	"github.com/fsdevblog/groph-referral/internal/service"
)

// UserServicer интерфейс исключительно для моков.
type UserServicer interface {
	Register(ctx context.Context, args service.RegisterUserArgs) (*domain.User, error)
	Login(ctx context.Context, args service.LoginUserArgs) (*domain.User, string, error)
}

type ReferralServicer interface {
	Refer(ctx context.Context, args service.ReferUserArgs) error
}

type CommissionServicer interface {
	ViewCommissions(ctx context.Context, userID string) ([]domain.Commission, error)
}
