package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/fsdevblog/groph-referral/internal/domain"
	"github.com/fsdevblog/groph-referral/internal/logger"
	"github.com/fsdevblog/groph-referral/internal/service"
	"github.com/fsdevblog/groph-referral/internal/transport/api/mocks"
	"github.com/fsdevblog/groph-referral/internal/transport/api/testutils"
	"github.com/fsdevblog/groph-referral/internal/transport/api/tokens"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"
)

type ReferralsHandlerTestSuite struct {
	suite.Suite
	router              *gin.Engine
	mockReferralService *mocks.MockReferralServicer
	jwtSecret           []byte
}

func TestReferralsHandlerSuite(t *testing.T) {
	suite.Run(t, new(ReferralsHandlerTestSuite))
}

func (s *ReferralsHandlerTestSuite) SetupTest() {
	mockCtrl := gomock.NewController(s.T())
	defer mockCtrl.Finish()

	s.mockReferralService = mocks.NewMockReferralServicer(mockCtrl)
	s.jwtSecret = []byte("super secret key")

	s.router = New(RouterArgs{
		Logger:          logger.New(os.Stdout),
		ReferralService: s.mockReferralService,
		JWTSecretKey:    s.jwtSecret,
	})
}

func (s *ReferralsHandlerTestSuite) TestCreate() {
	referrerID := "7b4f4e5e-0000-0000-0000-000000000010"
	referredEmail := "referred@example.com"
	unknownID := "7b4f4e5e-0000-0000-0000-0000000000ff"
	selfEmail := "referrer@example.com"

	jwtToken, jwtErr := tokens.GenerateUserJWT(referrerID, domain.RoleUser, time.Hour, s.jwtSecret)
	s.Require().NoError(jwtErr)

	// Моки
	// Уровни 1..3 допустимы.
	for level := 1; level <= service.MaxReferralLevel; level++ {
		s.mockReferralService.EXPECT().
			Refer(gomock.Any(), service.ReferUserArgs{
				ReferrerID:    referrerID,
				ReferredEmail: referredEmail,
				Level:         level,
			}).Return(nil).Times(1)
	}
	s.mockReferralService.EXPECT().
		Refer(gomock.Any(), service.ReferUserArgs{
			ReferrerID:    unknownID,
			ReferredEmail: referredEmail,
			Level:         1,
		}).Return(fmt.Errorf("referring user: %w", domain.ErrRecordNotFound)).Times(1)
	s.mockReferralService.EXPECT().
		Refer(gomock.Any(), service.ReferUserArgs{
			ReferrerID:    referrerID,
			ReferredEmail: selfEmail,
			Level:         1,
		}).Return(fmt.Errorf("referring user: %w", domain.ErrSelfReferral)).Times(1)
	// Недопустимый уровень до сервиса дойти не должен.
	s.mockReferralService.EXPECT().
		Refer(gomock.Any(), service.ReferUserArgs{
			ReferrerID:    referrerID,
			ReferredEmail: referredEmail,
			Level:         4,
		}).Times(0)

	makeBody := func(referrerID, email string, level int) []byte {
		body, mErr := json.Marshal(gin.H{
			"referrerId":    referrerID,
			"referredEmail": email,
			"level":         level,
		})
		s.Require().NoError(mErr)
		return body
	}

	cases := []struct {
		name       string
		payload    []byte
		jwtToken   string
		wantStatus int
	}{
		{
			name:       "level 1",
			payload:    makeBody(referrerID, referredEmail, 1),
			jwtToken:   jwtToken,
			wantStatus: http.StatusOK,
		}, {
			name:       "level 2",
			payload:    makeBody(referrerID, referredEmail, 2),
			jwtToken:   jwtToken,
			wantStatus: http.StatusOK,
		}, {
			name:       "level 3",
			payload:    makeBody(referrerID, referredEmail, 3),
			jwtToken:   jwtToken,
			wantStatus: http.StatusOK,
		}, {
			name:       "level 4 rejected",
			payload:    makeBody(referrerID, referredEmail, 4),
			jwtToken:   jwtToken,
			wantStatus: http.StatusBadRequest,
		}, {
			name:       "level 0 rejected",
			payload:    makeBody(referrerID, referredEmail, 0),
			jwtToken:   jwtToken,
			wantStatus: http.StatusBadRequest,
		}, {
			name:       "unknown referrer",
			payload:    makeBody(unknownID, referredEmail, 1),
			jwtToken:   jwtToken,
			wantStatus: http.StatusNotFound,
		}, {
			name:       "self referral",
			payload:    makeBody(referrerID, selfEmail, 1),
			jwtToken:   jwtToken,
			wantStatus: http.StatusUnprocessableEntity,
		}, {
			name:       "not authorized",
			payload:    makeBody(referrerID, referredEmail, 1),
			wantStatus: http.StatusUnauthorized,
		}, {
			name:       "broken json",
			payload:    []byte("{"),
			jwtToken:   jwtToken,
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			args := testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPost,
				URL:    RouteGroup + ReferRoute,
				Body:   bytes.NewReader(t.payload),
			}
			reqOpts := []func(*testutils.RequestOptions){
				testutils.WithHeader("Content-Type", "application/json"),
			}
			if t.jwtToken != "" {
				authHeader := fmt.Sprintf("Bearer %s", t.jwtToken)
				reqOpts = append(reqOpts, testutils.WithHeader("Authorization", authHeader))
			}
			res, err := testutils.MakeRequest(args, reqOpts...)
			s.Require().NoError(err)
			defer func() {
				closeErr := res.Body.Close()
				s.Require().NoError(closeErr)
			}()

			s.Equal(t.wantStatus, res.StatusCode)
		})
	}
}
