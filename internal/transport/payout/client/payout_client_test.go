package client

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stretchr/testify/suite"
)

type ClientTestSuite struct {
	suite.Suite
	server *httptest.Server
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func (s *ClientTestSuite) TearDownTest() {
	if s.server != nil {
		s.server.Close()
	}
}

func (s *ClientTestSuite) TestPayCommission() { //nolint:gocognit
	type tcase struct {
		name           string
		commissionID   int64
		httpStatus     int
		retryAfter     string
		wantResponse   *Response
		wantErrType    error
		wantRetryAfter time.Duration
	}

	cases := []tcase{
		{
			name:         "accepted",
			commissionID: 1,
			httpStatus:   http.StatusOK,
			wantResponse: &Response{
				Status:         StatusAccepted,
				TransactionRef: "tx-001",
			},
		}, {
			name:         "rejected",
			commissionID: 2,
			httpStatus:   http.StatusOK,
			wantResponse: &Response{
				Status: StatusRejected,
			},
		}, {
			name:           "too many requests",
			commissionID:   3,
			httpStatus:     http.StatusTooManyRequests,
			retryAfter:     "5",
			wantErrType:    new(TooManyRequestError),
			wantRetryAfter: 5 * time.Second,
		}, {
			name:           "too many requests with junk header",
			commissionID:   4,
			httpStatus:     http.StatusTooManyRequests,
			retryAfter:     "nonsense",
			wantErrType:    new(TooManyRequestError),
			wantRetryAfter: 60 * time.Second,
		}, {
			name:         "internal error",
			commissionID: 5,
			httpStatus:   http.StatusInternalServerError,
			wantErrType:  new(StatusCodeError),
		},
	}

	// хендлер для тестового сервера. Определяет кейс по commissionId из тела запроса
	// и выдает соответствующий ответ.
	serverHandler := func() func(http.ResponseWriter, *http.Request) {
		return func(w http.ResponseWriter, r *http.Request) {
			s.Require().Equal(http.MethodPost, r.Method)       //nolint:testifylint
			s.Require().Equal(RoutePayouts, r.URL.Path)        //nolint:testifylint
			var request Request
			s.Require().NoError(json.NewDecoder(r.Body).Decode(&request)) //nolint:testifylint

			var rc *tcase
			for _, c := range cases {
				if c.commissionID == request.CommissionID {
					rc = &c
					break
				}
			}
			s.Require().NotNilf(rc, "тест для комиссии %d не найден", request.CommissionID) //nolint:testifylint

			if rc.retryAfter != "" {
				w.Header().Set("Retry-After", rc.retryAfter)
			}

			var body []byte
			if rc.httpStatus == http.StatusOK {
				w.Header().Set("Content-Type", "application/json")
				var bErr error
				body, bErr = json.Marshal(rc.wantResponse)
				s.NoError(bErr)
			}
			w.WriteHeader(rc.httpStatus)

			if body != nil {
				_, wErr := w.Write(body)
				s.NoError(wErr)
			}
		}
	}

	s.server = httptest.NewServer(http.HandlerFunc(serverHandler()))

	var statusCodeError *StatusCodeError
	var tooManyRequestError *TooManyRequestError

	for _, t := range cases {
		s.Run(t.name, func() {
			client := New(s.server.URL)
			response, err := client.PayCommission(s.T().Context(), Request{
				CommissionID: t.commissionID,
				UserID:       "7b4f4e5e-0000-0000-0000-000000000001",
				Amount:       decimal.NewFromInt(100),
				Currency:     "USD",
			})

			if t.wantErrType != nil {
				s.Require().Error(err)
				switch {
				case errors.As(t.wantErrType, &statusCodeError):
					s.Require().ErrorAs(err, &statusCodeError)
				case errors.As(t.wantErrType, &tooManyRequestError):
					s.Require().ErrorAs(err, &tooManyRequestError)
					s.Equal(t.wantRetryAfter, tooManyRequestError.RetryAfter)
				default:
					s.FailNow("unexpected err type")
				}
				return
			}

			s.Require().NoError(err)
			s.NotNil(response)
			s.Equal(t.wantResponse, response)
		})
	}
}
