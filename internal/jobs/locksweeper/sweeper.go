package locksweeper

import (
	"context"
	"time"
)

// SlotLockRepository интерфейс репозитория слот-локов
type SlotLockRepository interface {
	SweepExpired(ctx context.Context) (int, error)
}

// Metrics интерфейс метрик уборки локов
type Metrics interface {
	IncSlotLocksSwept(n int)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Sweeper периодически удаляет просроченные слот-локи
//
// Уборка гигиеническая: просроченный лок и без неё перехватывается
// атомарно при следующем захвате слота. Sweeper лишь не даёт таблице
// накапливать мёртвые строки
type Sweeper struct {
	lockRepo SlotLockRepository
	interval time.Duration
	metrics  Metrics
	logger   Logger
}

// New создает новый экземпляр sweeper
// metrics может быть nil
func New(lockRepo SlotLockRepository, interval time.Duration, metrics Metrics, logger Logger) *Sweeper {
	return &Sweeper{
		lockRepo: lockRepo,
		interval: interval,
		metrics:  metrics,
		logger:   logger,
	}
}

// Run запускает цикл уборки до отмены контекста
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info("locksweeper: started, interval=%s", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("locksweeper: stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	n, err := s.lockRepo.SweepExpired(ctx)
	if err != nil {
		s.logger.Error("locksweeper: sweep failed: %v", err)
		return
	}

	if n > 0 {
		s.logger.Info("locksweeper: swept %d expired locks", n)
		if s.metrics != nil {
			s.metrics.IncSlotLocksSwept(n)
		}
	}
}
