package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/fsdevblog/groph-referral/internal/domain"
	"github.com/fsdevblog/groph-referral/internal/service"
	"github.com/gin-gonic/gin"
)

type ReferralsHandler struct {
	referralSvs ReferralServicer
}

func NewReferralsHandler(referralSvs ReferralServicer) *ReferralsHandler {
	return &ReferralsHandler{
		referralSvs: referralSvs,
	}
}

type ReferUserParams struct {
	ReferrerID    string `binding:"required" json:"referrerId"`
	ReferredEmail string `binding:"required" json:"referredEmail"`
	Level         int    `binding:"required" json:"level"`
}

// Create POST RouteGroup + ReferRoute. Записывает реферальное ребро.
// Уровень проверяется здесь, на границе транспорта: сервис принимает любой положительный уровень.
func (h *ReferralsHandler) Create(c *gin.Context) {
	var params ReferUserParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).
			SetType(gin.ErrorTypeBind)
		return
	}

	if params.Level < 1 || params.Level > service.MaxReferralLevel {
		_ = c.AbortWithError(http.StatusBadRequest,
			errors.New("invalid level. Level cannot be greater than 3")).
			SetType(gin.ErrorTypePublic)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	referErr := h.referralSvs.Refer(ctx, service.ReferUserArgs{
		ReferrerID:    params.ReferrerID,
		ReferredEmail: params.ReferredEmail,
		Level:         params.Level,
	})
	if referErr != nil {
		switch {
		case errors.Is(referErr, domain.ErrRecordNotFound):
			_ = c.AbortWithError(http.StatusNotFound, errors.New("user not found")).
				SetType(gin.ErrorTypePublic)
		case errors.Is(referErr, domain.ErrSelfReferral):
			_ = c.AbortWithError(http.StatusUnprocessableEntity, errors.New("self referral is not allowed")).
				SetType(gin.ErrorTypePublic)
		default:
			_ = c.AbortWithError(http.StatusInternalServerError, referErr).
				SetType(gin.ErrorTypePrivate)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "referral recorded successfully"})
}
