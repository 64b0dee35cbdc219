// Package payout проводит выплаты начисленных комиссий через внешний платежный шлюз.
package payout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fsdevblog/groph-referral/internal/domain"
	"github.com/fsdevblog/groph-referral/internal/service"
	"github.com/fsdevblog/groph-referral/internal/transport/payout/client"
	"github.com/sirupsen/logrus"
)

const (
	defaultServiceTimeout         = 3 * time.Second
	defaultAPITimeout             = 10 * time.Second
	defaultLimitPerIteration uint = 100
	defaultPayoutWorkers     uint = 10
)

// Processor обрабатывает выплаты комиссий через внешний платежный шлюз.
type Processor struct {
	client            Client
	svs               Servicer
	l                 *logrus.Entry
	limitPerIteration uint
	payoutWorkers     uint
}

// New создает новый экземпляр процессора выплат.
func New(svs Servicer, gatewayBaseURL string, l *logrus.Logger) *Processor {
	loggerEntry := l.WithFields(logrus.Fields{
		"component": "payout",
		"module":    "processor",
	})

	return &Processor{
		svs:               svs,
		client:            client.New(gatewayBaseURL),
		l:                 loggerEntry,
		limitPerIteration: defaultLimitPerIteration,
		payoutWorkers:     defaultPayoutWorkers,
	}
}

// SetLimitPerIteration устанавливает кол-во комиссий, обрабатываемых в одной итерации обработчика.
func (p *Processor) SetLimitPerIteration(limit uint) *Processor {
	p.limitPerIteration = limit
	return p
}

// SetPayoutWorkers устанавливает кол-во воркеров работающих со шлюзом.
func (p *Processor) SetPayoutWorkers(workers uint) *Processor {
	p.payoutWorkers = workers
	return p
}

// Run запускает обработку выплат в бесконечном цикле до отмены контекста.
//
// Алгоритм работы:
//  1. В каждой итерации цикла запрашивает через сервисный слой список комиссий в статусе PENDING.
//     Объем списка лимитируется через SetLimitPerIteration.
//  2. Для каждой итерации создаются N воркеров (кол-во настраивается через SetPayoutWorkers),
//     которые отправляют запросы на API платежного шлюза.
//  3. Принятые шлюзом комиссии помечаются выплаченными через сервисный слой; отклоненные и
//     ошибочные остаются в PENDING и будут обработаны повторно.
func (p *Processor) Run(ctx context.Context) {
	p.l.WithFields(logrus.Fields{
		"limitPerIteration": p.limitPerIteration,
		"payoutWorkers":     p.payoutWorkers,
	}).Info("Starting")

	for {
		select {
		case <-ctx.Done():
			p.l.Info("Got stop signal, exiting...")
			return
		default:
			paid, err := p.process(ctx)
			if err != nil && !errors.Is(err, ErrNoCommissions) {
				p.l.WithError(err).Error("process error")
			}
			// Без выплаченных комиссий итерация не продвинула очередь: те же PENDING строки
			// вернутся и в следующем опросе. Пауза чтоб не заддосить БД и шлюз.
			if err != nil || paid == 0 {
				time.Sleep(time.Second)
			}
		}
	}
}

// process выполняет цикл выплат: получение списка, запросы к шлюзу и фиксация результата.
// Возвращает кол-во выплаченных комиссий и ошибку в случае проблем,
// или ErrNoCommissions если выплачивать нечего.
func (p *Processor) process(ctx context.Context) (int, error) {
	commissions, commissionsErr := p.produce(ctx)
	if commissionsErr != nil {
		return 0, fmt.Errorf("process: %w", commissionsErr)
	}

	results := p.runWorkers(ctx, commissions)
	if len(results) == 0 {
		return 0, nil
	}

	var markPaidArgs = make([]service.MarkPaidArgs, 0, len(results))
	for _, result := range results {
		if result.Error != nil || result.Status != client.StatusAccepted {
			continue
		}
		markPaidArgs = append(markPaidArgs, service.MarkPaidArgs{
			CommissionID:   result.Commission.ID,
			TransactionRef: result.TransactionRef,
		})
	}

	if len(markPaidArgs) == 0 {
		return 0, nil
	}

	reqCtx, cancel := context.WithTimeout(ctx, defaultServiceTimeout)
	defer cancel()

	if markErr := p.svs.MarkPaid(reqCtx, markPaidArgs); markErr != nil {
		return 0, fmt.Errorf("process: %s", markErr.Error())
	}

	return len(markPaidArgs), nil
}

// workerResult представляет результат работы воркера по выплате комиссии.
type workerResult struct {
	WorkerID       uint
	Commission     *domain.Commission
	Error          error
	Status         client.StatusType
	TransactionRef string
}

// runWorkers запускает параллельных воркеров для проведения выплат и ожидает конца их работы.
// Реализует паттерн fan-out/fan-in для параллельной обработки запросов.
func (p *Processor) runWorkers(ctx context.Context, commissions []domain.Commission) []workerResult {
	var taskCh = make(chan *domain.Commission, len(commissions))

	for _, commission := range commissions {
		taskCh <- &commission
	}
	close(taskCh)

	wg := new(sync.WaitGroup)
	wg.Add(int(p.payoutWorkers)) //nolint:gosec

	var resultCh = make(chan *workerResult, len(commissions))

	for i := range p.payoutWorkers {
		go p.worker(ctx, wg, i+1, taskCh, resultCh)
	}
	wg.Wait()

	close(resultCh)

	var results = make([]workerResult, 0, len(commissions))
	for result := range resultCh {
		l := p.l.WithFields(logrus.Fields{
			"worker":       result.WorkerID,
			"commissionID": result.Commission.ID,
		})
		if result.Error != nil {
			l.WithError(result.Error).Error("pay commission")
		} else {
			l.WithField("status", result.Status).Info("Success")
		}
		results = append(results, *result)
	}
	return results
}

// worker обрабатывает комиссии из канала, отправляет их в шлюз и возвращает результаты.
func (p *Processor) worker(
	ctx context.Context,
	wg *sync.WaitGroup,
	workerID uint,
	taskCh <-chan *domain.Commission,
	resultCh chan<- *workerResult,
) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-taskCh:
			if !ok {
				return
			}
			resultCh <- p.processWorkerTask(ctx, workerID, task)
		}
	}
}

// processWorkerTask делает запрос на API платежного шлюза, в случае получения ошибки 429 ждет
// N секунд указанные в заголовке ответа.
func (p *Processor) processWorkerTask(ctx context.Context, workerID uint, task *domain.Commission) *workerResult {
	for {
		reqCtx, cancel := context.WithTimeout(ctx, defaultAPITimeout)
		resp, err := p.client.PayCommission(reqCtx, client.Request{
			CommissionID: task.ID,
			UserID:       task.UserID,
			Amount:       task.Amount,
			Currency:     task.Currency,
		})
		cancel()

		if err != nil {
			result := workerResult{
				WorkerID:   workerID,
				Commission: task,
			}
			var tooManyReq *client.TooManyRequestError
			if errors.As(err, &tooManyReq) {
				// Проверяем отмену контекста перед спячкой.
				select {
				case <-ctx.Done():
					result.Error = ctx.Err()
					return &result
				case <-time.After(tooManyReq.RetryAfter):
					// После паузы делаем повторную попытку.
					continue
				}
			}
			result.Error = err
			return &result
		}

		return &workerResult{
			WorkerID:       workerID,
			Commission:     task,
			Status:         resp.Status,
			TransactionRef: resp.TransactionRef,
		}
	}
}

// produce получает список комиссий ожидающих выплаты.
// Возвращает ErrNoCommissions, если таких нет.
func (p *Processor) produce(ctx context.Context) ([]domain.Commission, error) {
	produceCtx, cancel := context.WithTimeout(ctx, defaultServiceTimeout)
	defer cancel()

	commissions, commissionsErr := p.svs.PendingCommissions(produceCtx, p.limitPerIteration)
	if commissionsErr != nil {
		return nil, fmt.Errorf("produce: %w", commissionsErr)
	}

	if len(commissions) == 0 {
		return nil, ErrNoCommissions
	}
	return commissions, nil
}
