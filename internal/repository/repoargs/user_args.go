package repoargs

import (
	"github.com/fsdevblog/groph-referral/internal/domain"
	"github.com/shopspring/decimal"
)

type CreateUser struct {
	FullName          string
	Email             string
	EncryptedPassword string
	Role              domain.RoleType
	TotalSales        decimal.NullDecimal
}
