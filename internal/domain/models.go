package domain

import (
	"github.com/shopspring/decimal"

	"time"
)

type User struct {
	ID                string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	FullName          string
	Email             string
	EncryptedPassword string
	Role              RoleType
	// TotalSales хранит накопленную сумму продаж юзера. Null означает что продаж еще не было.
	TotalSales decimal.NullDecimal
}

// Referral представляет ребро реферального графа: ReferrerID привел ReferredID на уровне Level.
type Referral struct {
	ID           int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ReferrerID   string
	ReferredID   string
	Level        int
	ReferralDate time.Time
}

type Commission struct {
	ID             int64
	UserID         string
	Amount         decimal.Decimal
	CommissionDate time.Time
	// CommissionType и Description расчет не заполняет, колонки зарезервированы под ручные корректировки.
	CommissionType *string
	Description    *string
	Status         CommissionStatusType
	Currency       string
	// PaymentDate и TransactionRef заполняются процессором выплат, расчет комиссий их не трогает.
	PaymentDate    *time.Time
	TransactionRef string
}
