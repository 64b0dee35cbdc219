package payout

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsdevblog/groph-referral/internal/domain"
	"github.com/fsdevblog/groph-referral/internal/service"
	"github.com/fsdevblog/groph-referral/internal/transport/payout/client"
	"github.com/fsdevblog/groph-referral/internal/transport/payout/mocks"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
)

type ProcessorTestSuite struct {
	suite.Suite
	processor      *Processor
	mockHTTPClient *mocks.MockClient
	mockService    *mocks.MockServicer
	ctrl           *gomock.Controller
}

func (s *ProcessorTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())

	s.mockHTTPClient = mocks.NewMockClient(s.ctrl)
	s.mockService = mocks.NewMockServicer(s.ctrl)

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	s.processor = New(s.mockService, "", logger)
	s.processor.client = s.mockHTTPClient
}

func (s *ProcessorTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestProcessorSuite(t *testing.T) {
	suite.Run(t, new(ProcessorTestSuite))
}

// TestProcess_NoCommissions Тест на случай, когда нет комиссий к выплате.
func (s *ProcessorTestSuite) TestProcess_NoCommissions() {
	s.mockService.EXPECT().
		PendingCommissions(gomock.Any(), s.processor.limitPerIteration).
		Return([]domain.Commission{}, nil)

	paid, err := s.processor.process(s.T().Context())

	s.ErrorIs(err, ErrNoCommissions)
	s.Zero(paid)
}

// TestProcess_GatewayErrors Тест на случай, когда шлюз отвечает ошибками: статусы не обновляются.
func (s *ProcessorTestSuite) TestProcess_GatewayErrors() {
	// Создаем тестовые данные
	pending := []domain.Commission{
		{ID: 1, UserID: "user-1", Amount: decimal.NewFromInt(100), Currency: "USD",
			Status: domain.CommissionStatusPending},
		{ID: 2, UserID: "user-2", Amount: decimal.NewFromInt(90), Currency: "USD",
			Status: domain.CommissionStatusPending},
	}

	s.mockService.EXPECT().
		PendingCommissions(gomock.Any(), s.processor.limitPerIteration).
		Return(pending, nil)

	// Настраиваем мок-хттп-клиент для имитации ошибок шлюза.
	internalError := client.NewStatusCodeError(http.StatusInternalServerError)
	badGatewayError := client.NewStatusCodeError(http.StatusBadGateway)

	s.mockHTTPClient.EXPECT().
		PayCommission(gomock.Any(), matchCommissionID(1)).
		Return(nil, internalError)
	s.mockHTTPClient.EXPECT().
		PayCommission(gomock.Any(), matchCommissionID(2)).
		Return(nil, badGatewayError)

	// Комиссии остаются в PENDING, обновления статусов быть не должно.
	s.mockService.EXPECT().MarkPaid(gomock.Any(), gomock.Any()).Times(0)

	ctx, cancel := context.WithTimeout(s.T().Context(), time.Second)
	defer cancel()
	paid, err := s.processor.process(ctx)

	s.NoError(err)
	s.Zero(paid)
}

// TestProcess_Success Тест на успешную выплату комиссий.
func (s *ProcessorTestSuite) TestProcess_Success() {
	pending := []domain.Commission{
		{ID: 1, UserID: "user-1", Amount: decimal.NewFromInt(100), Currency: "USD",
			Status: domain.CommissionStatusPending},
		{ID: 2, UserID: "user-2", Amount: decimal.NewFromInt(90), Currency: "USD",
			Status: domain.CommissionStatusPending},
	}

	s.mockService.EXPECT().
		PendingCommissions(gomock.Any(), s.processor.limitPerIteration).
		Return(pending, nil)

	// Настраиваем мок-хттп-клиент: первая комиссия принята, вторая отклонена.
	s.mockHTTPClient.EXPECT().
		PayCommission(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req client.Request) (*client.Response, error) {
			switch req.CommissionID {
			case 1:
				s.Equal("user-1", req.UserID)
				s.True(req.Amount.Equal(decimal.NewFromInt(100)))
				s.Equal("USD", req.Currency)
				return &client.Response{Status: client.StatusAccepted, TransactionRef: "tx-001"}, nil
			case 2:
				return &client.Response{Status: client.StatusRejected}, nil
			default:
				s.Failf("unexpected commission", "id=%d", req.CommissionID)
				return nil, nil
			}
		}).Times(2)

	// Ожидаем что выплаченной будет помечена только принятая шлюзом комиссия.
	s.mockService.EXPECT().
		MarkPaid(gomock.Any(), gomock.Any()).
		Do(func(_ context.Context, updates []service.MarkPaidArgs) {
			s.Require().Len(updates, 1)
			s.Equal(int64(1), updates[0].CommissionID)
			s.Equal("tx-001", updates[0].TransactionRef)
		}).
		Return(nil)

	ctx, cancel := context.WithTimeout(s.T().Context(), time.Second)
	defer cancel()
	paid, err := s.processor.process(ctx)
	s.NoError(err)
	s.Equal(1, paid)
}

// TestProcess_RetryAfter Тест повторной попытки после 429 от шлюза.
func (s *ProcessorTestSuite) TestProcess_RetryAfter() {
	pending := []domain.Commission{
		{ID: 1, UserID: "user-1", Amount: decimal.NewFromInt(100), Currency: "USD",
			Status: domain.CommissionStatusPending},
	}

	s.mockService.EXPECT().
		PendingCommissions(gomock.Any(), s.processor.limitPerIteration).
		Return(pending, nil)

	tooMany := client.NewTooManyRequestError(time.Millisecond)
	firstCall := s.mockHTTPClient.EXPECT().
		PayCommission(gomock.Any(), matchCommissionID(1)).
		Return(nil, tooMany)
	s.mockHTTPClient.EXPECT().
		PayCommission(gomock.Any(), matchCommissionID(1)).
		Return(&client.Response{Status: client.StatusAccepted, TransactionRef: "tx-001"}, nil).
		After(firstCall)

	s.mockService.EXPECT().
		MarkPaid(gomock.Any(), gomock.Any()).
		Do(func(_ context.Context, updates []service.MarkPaidArgs) {
			s.Require().Len(updates, 1)
			s.Equal("tx-001", updates[0].TransactionRef)
		}).
		Return(nil)

	ctx, cancel := context.WithTimeout(s.T().Context(), time.Second)
	defer cancel()
	paid, err := s.processor.process(ctx)
	s.NoError(err)
	s.Equal(1, paid)
}

// TestRun_BackoffOnFailures Тест паузы между итерациями когда шлюз валит все выплаты.
// Без паузы цикл немедленно перечитывал бы те же PENDING строки из базы.
func (s *ProcessorTestSuite) TestRun_BackoffOnFailures() {
	pending := []domain.Commission{
		{ID: 1, UserID: "user-1", Amount: decimal.NewFromInt(100), Currency: "USD",
			Status: domain.CommissionStatusPending},
	}

	var polls int32
	s.mockService.EXPECT().
		PendingCommissions(gomock.Any(), s.processor.limitPerIteration).
		DoAndReturn(func(context.Context, uint) ([]domain.Commission, error) {
			atomic.AddInt32(&polls, 1)
			return pending, nil
		}).AnyTimes()

	s.mockHTTPClient.EXPECT().
		PayCommission(gomock.Any(), gomock.Any()).
		Return(nil, client.NewStatusCodeError(http.StatusInternalServerError)).
		AnyTimes()

	s.mockService.EXPECT().MarkPaid(gomock.Any(), gomock.Any()).Times(0)

	ctx, cancel := context.WithTimeout(s.T().Context(), 200*time.Millisecond)
	defer cancel()
	s.processor.Run(ctx)

	// Пауза после безрезультатной итерации длиннее таймаута, успеть должен ровно один опрос.
	s.LessOrEqual(atomic.LoadInt32(&polls), int32(2))
}

// matchCommissionID матчер запроса к шлюзу по идентификатору комиссии.
func matchCommissionID(id int64) gomock.Matcher {
	return commissionIDMatcher(id)
}

type commissionIDMatcher int64

func (m commissionIDMatcher) Matches(x any) bool {
	req, ok := x.(client.Request)
	return ok && req.CommissionID == int64(m)
}

func (m commissionIDMatcher) String() string {
	return "request with commission id"
}
