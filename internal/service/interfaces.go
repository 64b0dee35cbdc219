package service

import (
	"context"

	"github.com/fsdevblog/groph-referral/internal/domain"
	"github.com/fsdevblog/groph-referral/internal/repository/repoargs"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

type PasswordHasher interface {
	HashPassword(password string) (string, error)
	ComparePassword(password string, hashedPassword string) bool
}

type UserRepository interface {
	CreateUser(ctx context.Context, user repoargs.CreateUser) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	DeleteByID(ctx context.Context, id string) error
}

type ReferralRepository interface {
	Create(ctx context.Context, referral repoargs.ReferralCreate) (*domain.Referral, error)
	GetByReferrerAndLevel(ctx context.Context, referrerID string, level int) ([]domain.Referral, error)
}

type CommissionRepository interface {
	BatchCreate(
		ctx context.Context,
		commissions []repoargs.CommissionCreate,
		fn repoargs.CommissionBatchQueryRow,
	)
	GetPending(ctx context.Context, limit uint) ([]domain.Commission, error)
	BatchMarkPaid(
		ctx context.Context,
		updates []repoargs.CommissionMarkPaid,
		fn repoargs.BatchExecQueryRow,
	)
}
