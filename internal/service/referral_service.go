package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fsdevblog/groph-referral/internal/domain"
	"github.com/fsdevblog/groph-referral/internal/repository/repoargs"
	"github.com/fsdevblog/groph-referral/pkg/uow"
)

// MaxReferralLevel максимальная глубина реферального графа. Проверяется на границе транспорта,
// сервис принимает любой положительный уровень.
const MaxReferralLevel = 3

type ReferralService struct {
	uow uow.UOW
}

func NewReferralService(u uow.UOW) (*ReferralService, error) {
	// репозитории достаются из транзакции в Refer, но наличие регистрации проверяем сразу.
	if _, err := uow.GetRepositoryAs[ReferralRepository](u, uow.RepositoryName(repoargs.ReferralRepoName)); err != nil {
		return nil, err
	}
	return &ReferralService{uow: u}, nil
}

type ReferUserArgs struct {
	ReferrerID    string
	ReferredEmail string
	Level         int
}

// Refer записывает реферальное ребро referrer -> referred с указанным уровнем.
// Реферер ищется по идентификатору, приведенный юзер - по email; если кто-то из них не найден,
// вернется domain.ErrRecordNotFound. Саморефералы запрещены (domain.ErrSelfReferral).
// Дубликаты пар допускаются, история ребер append-only.
func (s *ReferralService) Refer(ctx context.Context, args ReferUserArgs) error {
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

		referrer, referrerErr := userRepo.FindByID(c, args.ReferrerID)
		if referrerErr != nil {
			return referrerErr //nolint:wrapcheck
		}

		referred, referredErr := userRepo.FindByEmail(c, args.ReferredEmail)
		if referredErr != nil {
			return referredErr //nolint:wrapcheck
		}

		if referrer.ID == referred.ID {
			return domain.ErrSelfReferral
		}

		_, createErr := referralRepo.Create(c, repoargs.ReferralCreate{
			ReferrerID:   referrer.ID,
			ReferredID:   referred.ID,
			Level:        args.Level,
			ReferralDate: time.Now(),
		})
		return createErr //nolint:wrapcheck
	})

	if txErr != nil {
		return fmt.Errorf("referring user: %w", txErr)
	}
	return nil
}
