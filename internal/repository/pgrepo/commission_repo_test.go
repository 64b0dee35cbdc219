package pgrepo

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/fsdevblog/groph-referral/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type CommissionRepoTestSuite struct {
	suite.Suite
}

func TestCommissionRepoSuite(t *testing.T) {
	suite.Run(t, new(CommissionRepoTestSuite))
}

// fakeRow отдает заранее заданные значения колонок в порядке commissionColumns.
type fakeRow struct {
	values []any
}

func (f fakeRow) Scan(dest ...any) error {
	if len(dest) != len(f.values) {
		return fmt.Errorf("expected %d columns, got %d", len(f.values), len(dest))
	}
	for i, d := range dest {
		if f.values[i] == nil {
			continue
		}
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(f.values[i]))
	}
	return nil
}

// TestScanCommission проверяет что маппинг строки соответствует commissionColumns,
// включая метаданные (commission_type, description), которые расчет не заполняет.
func (s *CommissionRepoTestSuite) TestScanCommission() {
	columnsCount := len(strings.Split(commissionColumns, ","))

	now := time.Now()
	paymentDate := now.Add(time.Hour)
	commissionType := "ADJUSTMENT"
	description := "manual correction"

	cases := []struct {
		name   string
		values []any
		want   domain.Commission
	}{
		{
			name: "computed row with empty metadata",
			values: []any{
				int64(7), "user-1", decimal.RequireFromString("100"), now,
				nil, nil, domain.CommissionStatusPending, "USD", nil, "",
			},
			want: domain.Commission{
				ID:             7,
				UserID:         "user-1",
				Amount:         decimal.RequireFromString("100"),
				CommissionDate: now,
				Status:         domain.CommissionStatusPending,
				Currency:       "USD",
			},
		}, {
			name: "paid row with metadata",
			values: []any{
				int64(8), "user-2", decimal.RequireFromString("90"), now,
				&commissionType, &description, domain.CommissionStatusPaid, "USD", &paymentDate, "tx-001",
			},
			want: domain.Commission{
				ID:             8,
				UserID:         "user-2",
				Amount:         decimal.RequireFromString("90"),
				CommissionDate: now,
				CommissionType: &commissionType,
				Description:    &description,
				Status:         domain.CommissionStatusPaid,
				Currency:       "USD",
				PaymentDate:    &paymentDate,
				TransactionRef: "tx-001",
			},
		},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			s.Require().Len(t.values, columnsCount)

			m, err := scanCommission(fakeRow{values: t.values})
			s.Require().NoError(err)
			s.Equal(t.want, *m)
		})
	}
}
