package pgrepo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/fsdevblog/groph-referral/internal/domain"
	"github.com/fsdevblog/groph-referral/internal/repository/repoargs"
	"github.com/fsdevblog/groph-referral/pkg/uow"
)

type CommissionRepository struct {
	conn uow.DBTX
}

func NewCommissionRepository(conn uow.DBTX) *CommissionRepository {
	return &CommissionRepository{conn: conn}
}

const commissionColumns = `id, user_id, commission_amount, commission_date, commission_type, description, status, currency, payment_date, transaction_reference`

// BatchCreate создает комиссии одним батч запросом. Для каждой строки результата вызывается fn
// с порядковым номером, созданной записью и ошибкой.
func (c *CommissionRepository) BatchCreate(
	ctx context.Context,
	commissions []repoargs.CommissionCreate,
	fn repoargs.CommissionBatchQueryRow,
) {
	batch := new(pgx.Batch)
	for _, commission := range commissions {
		batch.Queue(`
			INSERT INTO commissions (user_id, commission_amount, commission_date, currency)
			VALUES ($1, $2, $3, $4)
			RETURNING `+commissionColumns,
			commission.UserID, commission.Amount, commission.CommissionDate, commission.Currency,
		)
	}

	results := c.conn.SendBatch(ctx, batch)
	defer results.Close() //nolint:errcheck

	for i := range commissions {
		m, err := scanCommission(results.QueryRow())
		fn(i, m, convertErr(err, "batch creating commission"))
	}
}

// GetPending возвращает комиссии ожидающие выплаты, не более limit штук, в порядке создания.
func (c *CommissionRepository) GetPending(ctx context.Context, limit uint) ([]domain.Commission, error) {
	rows, err := c.conn.Query(ctx, `
		SELECT `+commissionColumns+`
		FROM commissions
		WHERE status = $1
		ORDER BY id
		LIMIT $2`,
		domain.CommissionStatusPending, int64(limit),
	)
	if err != nil {
		return nil, convertErr(err, "getting pending commissions")
	}
	defer rows.Close()

	var commissions []domain.Commission
	for rows.Next() {
		m, scanErr := scanCommission(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning pending commission")
		}
		commissions = append(commissions, *m)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "getting pending commissions")
	}
	return commissions, nil
}

// BatchMarkPaid помечает комиссии выплаченными одним батч запросом. Для каждого обновления вызывается fn.
func (c *CommissionRepository) BatchMarkPaid(
	ctx context.Context,
	updates []repoargs.CommissionMarkPaid,
	fn repoargs.BatchExecQueryRow,
) {
	batch := new(pgx.Batch)
	for _, update := range updates {
		batch.Queue(`
			UPDATE commissions
			SET status = $1, payment_date = $2, transaction_reference = $3
			WHERE id = $4 AND status = $5`,
			domain.CommissionStatusPaid, update.PaymentDate, update.TransactionRef,
			update.ID, domain.CommissionStatusPending,
		)
	}

	results := c.conn.SendBatch(ctx, batch)
	defer results.Close() //nolint:errcheck

	for i := range updates {
		tag, err := results.Exec()
		if err == nil && tag.RowsAffected() == 0 {
			err = pgx.ErrNoRows
		}
		fn(i, convertErr(err, "marking commission %d paid", updates[i].ID))
	}
}

func scanCommission(row rowScanner) (*domain.Commission, error) {
	var m domain.Commission
	err := row.Scan(
		&m.ID,
		&m.UserID,
		&m.Amount,
		&m.CommissionDate,
		&m.CommissionType,
		&m.Description,
		&m.Status,
		&m.Currency,
		&m.PaymentDate,
		&m.TransactionRef,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
