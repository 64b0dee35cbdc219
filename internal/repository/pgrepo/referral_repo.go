package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-referral/internal/domain"
	"github.com/fsdevblog/groph-referral/internal/repository/repoargs"
	"github.com/fsdevblog/groph-referral/pkg/uow"
)

type ReferralRepository struct {
	conn uow.DBTX
}

func NewReferralRepository(conn uow.DBTX) *ReferralRepository {
	return &ReferralRepository{conn: conn}
}

const referralColumns = `id, created_ts, updated_ts, referrer_id, referred_id, level, referral_date`

// Create создает реферальное ребро. Уникальность пары (referrer, referred) намеренно не проверяется,
// история хранится append-only.
func (r *ReferralRepository) Create(ctx context.Context, referral repoargs.ReferralCreate) (*domain.Referral, error) {
	row := r.conn.QueryRow(ctx, `
		INSERT INTO user_referrals (referrer_id, referred_id, level, referral_date)
		VALUES ($1, $2, $3, $4)
		RETURNING `+referralColumns,
		referral.ReferrerID, referral.ReferredID, referral.Level, referral.ReferralDate,
	)
	var m domain.Referral
	err := row.Scan(
		&m.ID,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.ReferrerID,
		&m.ReferredID,
		&m.Level,
		&m.ReferralDate,
	)
	if err != nil {
		return nil, convertErr(err, "creating referral")
	}
	return &m, nil
}

// GetByReferrerAndLevel возвращает все рефералы указанного уровня где юзер выступает реферером,
// в порядке создания записей.
func (r *ReferralRepository) GetByReferrerAndLevel(
	ctx context.Context,
	referrerID string,
	level int,
) ([]domain.Referral, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT `+referralColumns+`
		FROM user_referrals
		WHERE referrer_id = $1 AND level = $2
		ORDER BY id`,
		referrerID, level,
	)
	if err != nil {
		return nil, convertErr(err, "getting referrals for referrer %s level %d", referrerID, level)
	}
	defer rows.Close()

	var referrals []domain.Referral
	for rows.Next() {
		var m domain.Referral
		if scanErr := rows.Scan(
			&m.ID,
			&m.CreatedAt,
			&m.UpdatedAt,
			&m.ReferrerID,
			&m.ReferredID,
			&m.Level,
			&m.ReferralDate,
		); scanErr != nil {
			return nil, convertErr(scanErr, "scanning referral for referrer %s level %d", referrerID, level)
		}
		referrals = append(referrals, m)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "getting referrals for referrer %s level %d", referrerID, level)
	}
	return referrals, nil
}
