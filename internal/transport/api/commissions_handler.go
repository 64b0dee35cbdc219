package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fsdevblog/groph-referral/internal/domain"
	"github.com/gin-gonic/gin"
)

type CommissionsHandler struct {
	commissionSvs CommissionServicer
}

func NewCommissionsHandler(commissionSvs CommissionServicer) *CommissionsHandler {
	return &CommissionsHandler{
		commissionSvs: commissionSvs,
	}
}

type CommissionResponse struct {
	ID             int64                       `json:"id"`
	UserID         string                      `json:"userId"`
	Amount         float64                     `json:"amount"`
	CommissionDate time.Time                   `json:"commissionDate"`
	Status         domain.CommissionStatusType `json:"status"`
	Currency       string                      `json:"currency"`
}

// Index GET RouteGroup + CommissionsRoute. Вычисляет и возвращает комиссии юзера из query параметра userId.
// Вызов имеет побочный эффект: свежая партия комиссий сохраняется в базу.
func (h *CommissionsHandler) Index(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		_ = c.AbortWithError(http.StatusBadRequest, errors.New("userId query param is required")).
			SetType(gin.ErrorTypePublic)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	commissions, err := h.commissionSvs.ViewCommissions(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			_ = c.AbortWithError(http.StatusNotFound, errors.New("user not found")).
				SetType(gin.ErrorTypePublic)
			return
		}
		_ = c.AbortWithError(http.StatusInternalServerError, err).
			SetType(gin.ErrorTypePrivate)
		return
	}

	var response = make([]CommissionResponse, len(commissions))
	for i, commission := range commissions {
		response[i] = CommissionResponse{
			ID:             commission.ID,
			UserID:         commission.UserID,
			Amount:         commission.Amount.InexactFloat64(),
			CommissionDate: commission.CommissionDate,
			Status:         commission.Status,
			Currency:       commission.Currency,
		}
	}

	c.JSON(http.StatusOK, response)
}
