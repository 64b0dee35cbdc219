package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/fsdevblog/groph-referral/internal/domain"
	"github.com/fsdevblog/groph-referral/internal/logger"
	"github.com/fsdevblog/groph-referral/internal/transport/api/mocks"
	"github.com/fsdevblog/groph-referral/internal/transport/api/testutils"
	"github.com/fsdevblog/groph-referral/internal/transport/api/tokens"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type CommissionsHandlerTestSuite struct {
	suite.Suite
	router                *gin.Engine
	mockCommissionService *mocks.MockCommissionServicer
	jwtSecret             []byte
}

func TestCommissionsHandlerSuite(t *testing.T) {
	suite.Run(t, new(CommissionsHandlerTestSuite))
}

func (s *CommissionsHandlerTestSuite) SetupTest() {
	mockCtrl := gomock.NewController(s.T())
	defer mockCtrl.Finish()

	s.mockCommissionService = mocks.NewMockCommissionServicer(mockCtrl)
	s.jwtSecret = []byte("super secret key")

	s.router = New(RouterArgs{
		Logger:            logger.New(os.Stdout),
		CommissionService: s.mockCommissionService,
		JWTSecretKey:      s.jwtSecret,
	})
}

func (s *CommissionsHandlerTestSuite) TestIndex() {
	targetUserID := "7b4f4e5e-0000-0000-0000-000000000020"
	unknownUserID := "7b4f4e5e-0000-0000-0000-0000000000ff"

	adminToken, adminErr := tokens.GenerateUserJWT(
		"7b4f4e5e-0000-0000-0000-0000000000aa", domain.RoleAdmin, time.Hour, s.jwtSecret)
	s.Require().NoError(adminErr)
	userToken, userErr := tokens.GenerateUserJWT(
		"7b4f4e5e-0000-0000-0000-0000000000bb", domain.RoleUser, time.Hour, s.jwtSecret)
	s.Require().NoError(userErr)

	commissions := []domain.Commission{
		{
			ID:             1,
			UserID:         targetUserID,
			Amount:         decimal.RequireFromString("100"),
			CommissionDate: time.Now(),
			Status:         domain.CommissionStatusPending,
			Currency:       "USD",
		}, {
			ID:             2,
			UserID:         targetUserID,
			Amount:         decimal.RequireFromString("90"),
			CommissionDate: time.Now(),
			Status:         domain.CommissionStatusPending,
			Currency:       "USD",
		},
	}

	s.mockCommissionService.EXPECT().
		ViewCommissions(gomock.Any(), targetUserID).Return(commissions, nil)
	s.mockCommissionService.EXPECT().
		ViewCommissions(gomock.Any(), unknownUserID).
		Return(nil, fmt.Errorf("viewing commissions: %w", domain.ErrRecordNotFound))

	cases := []struct {
		name       string
		userID     string
		jwtToken   string
		wantStatus int
		wantBody   bool
	}{
		{
			name:       "all ok",
			userID:     targetUserID,
			jwtToken:   adminToken,
			wantStatus: http.StatusOK,
			wantBody:   true,
		}, {
			name:       "unknown user",
			userID:     unknownUserID,
			jwtToken:   adminToken,
			wantStatus: http.StatusNotFound,
		}, {
			name:       "missing userId param",
			userID:     "",
			jwtToken:   adminToken,
			wantStatus: http.StatusBadRequest,
		}, {
			name:       "forbidden for regular user",
			userID:     targetUserID,
			jwtToken:   userToken,
			wantStatus: http.StatusForbidden,
		}, {
			name:       "not authorized",
			userID:     targetUserID,
			wantStatus: http.StatusUnauthorized,
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			url := RouteGroup + CommissionsRoute
			if t.userID != "" {
				url += "?userId=" + t.userID
			}

			var reqOpts []func(*testutils.RequestOptions)
			if t.jwtToken != "" {
				authHeader := fmt.Sprintf("Bearer %s", t.jwtToken)
				reqOpts = append(reqOpts, testutils.WithHeader("Authorization", authHeader))
			}
			res, err := testutils.MakeRequest(testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodGet,
				URL:    url,
			}, reqOpts...)
			s.Require().NoError(err)
			defer func() {
				closeErr := res.Body.Close()
				s.Require().NoError(closeErr)
			}()

			s.Equal(t.wantStatus, res.StatusCode)

			if t.wantBody {
				var response []CommissionResponse
				s.Require().NoError(json.NewDecoder(res.Body).Decode(&response))
				s.Require().Len(response, 2)
				s.InDelta(100, response[0].Amount, 0.001)
				s.InDelta(90, response[1].Amount, 0.001)
				for _, item := range response {
					s.Equal(targetUserID, item.UserID)
					s.Equal(domain.CommissionStatusPending, item.Status)
					s.Equal("USD", item.Currency)
				}
			}
		})
	}
}

// TestIndex_ExpiredToken просроченный токен не проходит авторизацию.
func (s *CommissionsHandlerTestSuite) TestIndex_ExpiredToken() {
	expiredToken, tErr := tokens.GenerateUserJWT(
		"7b4f4e5e-0000-0000-0000-0000000000aa", domain.RoleAdmin, -time.Hour, s.jwtSecret)
	s.Require().NoError(tErr)

	res, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    RouteGroup + CommissionsRoute + "?userId=whatever",
	}, testutils.WithHeader("Authorization", fmt.Sprintf("Bearer %s", expiredToken)))
	s.Require().NoError(err)
	defer func() {
		closeErr := res.Body.Close()
		s.Require().NoError(closeErr)
	}()

	s.Equal(http.StatusUnauthorized, res.StatusCode)
}
