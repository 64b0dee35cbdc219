package repoargs

import (
	"time"

	"github.com/fsdevblog/groph-referral/internal/domain"
	"github.com/shopspring/decimal"
)

type CommissionCreate struct {
	UserID         string
	Amount         decimal.Decimal
	CommissionDate time.Time
	Currency       string
}

type CommissionMarkPaid struct {
	ID             int64
	PaymentDate    time.Time
	TransactionRef string
}

// CommissionBatchQueryRow вызывается для каждой строки батч вставки комиссий.
type CommissionBatchQueryRow func(i int, c *domain.Commission, err error)
