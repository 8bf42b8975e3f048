// Package alert_worker runs scheduled price alert evaluation passes.
package alert_worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/services/alerts"
	"github.com/gabiquintao/InvestmentPortfolioSystem/pkg/metrics"
)

const passTimeout = 2 * time.Minute

type Worker struct {
	evaluator *alerts.Evaluator
	schedule  string
	cron      *cron.Cron
	logger    *zap.Logger
}

func NewWorker(evaluator *alerts.Evaluator, schedule string, logger *zap.Logger) *Worker {
	return &Worker{
		evaluator: evaluator,
		schedule:  schedule,
		cron:      cron.New(),
		logger:    logger,
	}
}

func (w *Worker) Start() error {
	_, err := w.cron.AddFunc(w.schedule, w.runPass)
	if err != nil {
		return err
	}

	w.cron.Start()
	w.logger.Info("Alert evaluation worker started", zap.String("schedule", w.schedule))
	return nil
}

func (w *Worker) Stop() {
	w.cron.Stop()
	w.logger.Info("Alert evaluation worker stopped")
}

func (w *Worker) runPass() {
	ctx, cancel := context.WithTimeout(context.Background(), passTimeout)
	defer cancel()

	triggered, err := w.evaluator.EvaluateAll(ctx)
	if err != nil {
		w.logger.Error("Alert evaluation pass failed", zap.Error(err))
		return
	}

	metrics.AlertsTriggeredTotal.Add(float64(len(triggered)))
	if len(triggered) > 0 {
		w.logger.Info("Alert evaluation pass completed", zap.Int("triggered", len(triggered)))
	}
}
