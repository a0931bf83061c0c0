// Package finisher turns uploaded datasets from Processing into Active.
package finisher

import (
	"context"
	"sync"
	"time"

	kdb "github.com/helixlab/helix/pkg/db"
	"github.com/labstack/echo/v4"
)

type Finisher struct {
	datasets kdb.DatasetInterface
	delay    time.Duration
	logger   echo.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New returns a Finisher which activates datasets after delay.
func New(datasets kdb.DatasetInterface, delay time.Duration, logger echo.Logger) *Finisher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Finisher{
		datasets: datasets,
		delay:    delay,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Schedule activates the dataset later.
//
// Failures are logged, and not retried.
// After Stop, Schedule does nothing.
func (f *Finisher) Schedule(datasetId string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ctx.Err() != nil {
		return
	}

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()

		timer := time.NewTimer(f.delay)
		defer timer.Stop()
		select {
		case <-f.ctx.Done():
			f.logger.Debugf("dataset %s: activation is canceled", datasetId)
			return
		case <-timer.C:
		}

		if err := f.datasets.SetStatus(f.ctx, datasetId, kdb.DatasetActive); err != nil {
			f.logger.Errorf("dataset %s: failed to activate: %+v", datasetId, err)
			return
		}
		f.logger.Infof("dataset %s: activated", datasetId)
	}()
}

// Stop cancels pending activations and waits running ones.
func (f *Finisher) Stop() {
	f.mu.Lock()
	f.cancel()
	f.mu.Unlock()
	f.wg.Wait()
}
