package payout

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/fsdevblog/groph-referral/internal/domain"
	"github.com/fsdevblog/groph-referral/internal/service"
	"github.com/fsdevblog/groph-referral/internal/transport/payout/client"
)

type Client interface {
	PayCommission(ctx context.Context, payout client.Request) (*client.Response, error)
}

type Servicer interface {
	PendingCommissions(ctx context.Context, limit uint) ([]domain.Commission, error)
	MarkPaid(ctx context.Context, updates []service.MarkPaidArgs) error
}
