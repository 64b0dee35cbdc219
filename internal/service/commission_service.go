package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fsdevblog/groph-referral/internal/domain"
	"github.com/fsdevblog/groph-referral/internal/repository/repoargs"
	"github.com/fsdevblog/groph-referral/pkg/uow"
	"github.com/shopspring/decimal"
)

// DefaultCurrency валюта начисляемых комиссий. Мультивалютности в системе нет.
const DefaultCurrency = "USD"

// commissionRates ставки комиссий по уровням реферального графа.
var commissionRates = map[int]decimal.Decimal{
	1: decimal.New(10, -2), // 0.10
	2: decimal.New(5, -2),  // 0.05
	3: decimal.New(3, -2),  // 0.03
}

type CommissionService struct {
	uow            uow.UOW
	commissionRepo CommissionRepository
}

func NewCommissionService(u uow.UOW) (*CommissionService, error) {
	rName := uow.RepositoryName(repoargs.CommissionRepoName)
	commissionRepo, commissionRepoErr := uow.GetRepositoryAs[CommissionRepository](u, rName)
	if commissionRepoErr != nil {
		return nil, commissionRepoErr
	}
	return &CommissionService{
		uow:            u,
		commissionRepo: commissionRepo,
	}, nil
}

// ViewCommissions вычисляет и сохраняет комиссии юзера по его реферальным ребрам.
//
// Алгоритм работы:
//  1. Проверяет существование юзера (domain.ErrRecordNotFound если не найден).
//  2. Для каждого уровня 1..MaxReferralLevel берет все ребра где юзер реферер и умножает
//     сумму продаж приведенного юзера на ставку уровня.
//  3. Сохраняет получившиеся комиссии одним батчем с текущей датой начисления.
//
// Вызов НЕ читающий: каждый вызов создает свежую партию записей комиссий, дедупликации
// по историческим начислениям нет. Все шаги выполняются в одной транзакции.
// Результат упорядочен по уровням, внутри уровня - в порядке выдачи репозитория рефералов.
func (s *CommissionService) ViewCommissions(ctx context.Context, userID string) ([]domain.Commission, error) {
	var commissions []domain.Commission

	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		userRepo, userRepoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
		if userRepoErr != nil {
			return userRepoErr //nolint:wrapcheck
		}
		referralRepo, referralRepoErr :=
			uow.GetAs[ReferralRepository](tx, uow.RepositoryName(repoargs.ReferralRepoName))
		if referralRepoErr != nil {
			return referralRepoErr //nolint:wrapcheck
		}
		commissionRepo, commissionRepoErr :=
			uow.GetAs[CommissionRepository](tx, uow.RepositoryName(repoargs.CommissionRepoName))
		if commissionRepoErr != nil {
			return commissionRepoErr //nolint:wrapcheck
		}

		user, userErr := userRepo.FindByID(c, userID)
		if userErr != nil {
			return userErr //nolint:wrapcheck
		}

		createArgs, calcErr := s.calculateCommissions(c, tx, referralRepo, user)
		if calcErr != nil {
			return calcErr
		}
		if len(createArgs) == 0 {
			return nil
		}

		var batchErr error
		commissions = make([]domain.Commission, len(createArgs))
		commissionRepo.BatchCreate(c, createArgs, func(i int, commission *domain.Commission, err error) {
			if err != nil {
				batchErr = err
				return
			}
			commissions[i] = *commission
		})
		return batchErr
	})

	if txErr != nil {
		return nil, fmt.Errorf("viewing commissions: %w", txErr)
	}
	return commissions, nil
}

// calculateCommissions чистая часть расчета: обходит уровни по возрастанию и собирает
// аргументы создания комиссий, ничего не сохраняя.
func (s *CommissionService) calculateCommissions(
	ctx context.Context,
	tx uow.TX,
	referralRepo ReferralRepository,
	user *domain.User,
) ([]repoargs.CommissionCreate, error) {
	userRepo, userRepoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
	if userRepoErr != nil {
		return nil, userRepoErr //nolint:wrapcheck
	}

	now := time.Now()
	var createArgs []repoargs.CommissionCreate

	for level := 1; level <= MaxReferralLevel; level++ {
		referrals, referralsErr := referralRepo.GetByReferrerAndLevel(ctx, user.ID, level)
		if referralsErr != nil {
			return nil, referralsErr //nolint:wrapcheck
		}

		rate := commissionRates[level]
		for _, referral := range referrals {
			referred, referredErr := userRepo.FindByID(ctx, referral.ReferredID)
			if referredErr != nil {
				return nil, referredErr //nolint:wrapcheck
			}

			createArgs = append(createArgs, repoargs.CommissionCreate{
				UserID:         user.ID,
				Amount:         commissionAmount(referred.TotalSales, rate),
				CommissionDate: now,
				Currency:       DefaultCurrency,
			})
		}
	}
	return createArgs, nil
}

// commissionAmount умножает сумму продаж на ставку уровня. Отсутствующая сумма продаж (NULL)
// считается нулем, а не ошибкой.
func commissionAmount(totalSales decimal.NullDecimal, rate decimal.Decimal) decimal.Decimal {
	if !totalSales.Valid {
		return decimal.Zero
	}
	return totalSales.Decimal.Mul(rate)
}

// PendingCommissions возвращает комиссии ожидающие выплаты, не более limit штук.
func (s *CommissionService) PendingCommissions(ctx context.Context, limit uint) ([]domain.Commission, error) {
	commissions, err := s.commissionRepo.GetPending(ctx, limit)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return commissions, nil
}

type MarkPaidArgs struct {
	CommissionID   int64
	TransactionRef string
}

// MarkPaid помечает комиссии выплаченными, проставляя дату выплаты и референс транзакции шлюза.
// Все обновления выполняются в одной транзакции.
func (s *CommissionService) MarkPaid(ctx context.Context, updates []MarkPaidArgs) error {
	if len(updates) == 0 {
		return nil
	}

	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		commissionRepo, commissionRepoErr :=
			uow.GetAs[CommissionRepository](tx, uow.RepositoryName(repoargs.CommissionRepoName))
		if commissionRepoErr != nil {
			return commissionRepoErr //nolint:wrapcheck
		}

		now := time.Now()
		var repoArgs = make([]repoargs.CommissionMarkPaid, len(updates))
		for i, update := range updates {
			repoArgs[i] = repoargs.CommissionMarkPaid{
				ID:             update.CommissionID,
				PaymentDate:    now,
				TransactionRef: update.TransactionRef,
			}
		}

		// batchErr хранит последнюю ошибку батча, объединять их смысла нет.
		var batchErr error
		commissionRepo.BatchMarkPaid(c, repoArgs, func(_ int, err error) {
			if err != nil {
				batchErr = err
			}
		})
		return batchErr
	})

	if txErr != nil {
		return fmt.Errorf("marking commissions paid: %w", txErr)
	}
	return nil
}
