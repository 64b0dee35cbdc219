package service

import (
	"fmt"

	"github.com/fsdevblog/groph-referral/internal/service/psswd"
	"github.com/fsdevblog/groph-referral/pkg/uow"
)

type AppServices struct {
	UserService       *UserService
	ReferralService   *ReferralService
	CommissionService *CommissionService
}

func Factory(unitOfWork uow.UOW, jwtSecret []byte) (*AppServices, error) {
	hasher := psswd.PasswordHash("")

	userService, userServiceErr := NewUserService(unitOfWork, jwtSecret, hasher)
	if userServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", userServiceErr.Error())
	}

	referralService, referralServiceErr := NewReferralService(unitOfWork)
	if referralServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", referralServiceErr.Error())
	}

	commissionService, commissionServiceErr := NewCommissionService(unitOfWork)
	if commissionServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", commissionServiceErr.Error())
	}

	return &AppServices{
		UserService:       userService,
		ReferralService:   referralService,
		CommissionService: commissionService,
	}, nil
}
