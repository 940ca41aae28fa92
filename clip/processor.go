package clip

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/user/trimline-cli/db"
	"github.com/user/trimline-cli/logging"
	"github.com/user/trimline-cli/metrics"
)

const defaultPollInterval = 2 * time.Second

// Processor manages the background trim worker.
type Processor struct {
	DB           *sql.DB
	OutputDir    string
	FFmpeg       string
	PollInterval time.Duration
	Logger       zerolog.Logger

	wake chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

func (p *Processor) init() {
	p.once.Do(func() {
		p.wake = make(chan struct{}, 1)
		if p.PollInterval <= 0 {
			p.PollInterval = defaultPollInterval
		}
	})
}

// Notify wakes the worker without waiting for the next poll.
func (p *Processor) Notify() {
	p.init()
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Start launches a goroutine that continuously polls for pending trim jobs and
// processes them one at a time. Jobs left in processing by a previous run are
// re-queued first. The goroutine exits when ctx is cancelled; Wait blocks until it has.
func (p *Processor) Start(ctx context.Context) {
	p.init()
	if n, err := db.ResetStaleTrimJobs(p.DB); err != nil {
		p.Logger.Warn().Err(err).Msg("reset stale trim jobs")
	} else if n > 0 {
		p.Logger.Info().Int64("count", n).Msg("re-queued interrupted trim jobs")
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			job, err := db.ClaimNextPendingTrimJob(p.DB, time.Now().UTC())
			if err != nil {
				p.Logger.Warn().Err(err).Msg("claim trim job")
			}
			if err != nil || job == nil {
				p.refreshQueueGauge()
				select {
				case <-ctx.Done():
					return
				case <-p.wake:
				case <-time.After(p.PollInterval):
				}
				continue
			}

			p.process(ctx, job)
		}
	}()
}

// Wait blocks until the worker goroutine has exited.
func (p *Processor) Wait() {
	p.wg.Wait()
}

func (p *Processor) process(ctx context.Context, job *db.TrimJob) {
	logger := p.Logger.With().
		Str(logging.FieldJobID, job.ID).
		Str(logging.FieldAssetID, job.AssetID).
		Float64(logging.FieldStart, job.Start).
		Float64(logging.FieldEnd, job.End).
		Logger()

	fail := func(msg string) {
		logger.Error().Str("log", msg).Msg("trim job failed")
		metrics.RecordTrimJob(db.StatusError)
		if err := db.MarkTrimJobError(p.DB, job.ID, time.Now().UTC(), msg); err != nil {
			logger.Warn().Err(err).Msg("mark trim job error")
		}
	}

	asset, err := db.SelectAssetByID(p.DB, job.AssetID)
	if err != nil {
		fail(fmt.Sprintf("load asset: %v", err))
		return
	}

	if err := os.MkdirAll(p.OutputDir, 0755); err != nil {
		fail(fmt.Sprintf("mkdir: %v", err))
		return
	}

	outPath := OutputPath(p.OutputDir, asset.Path, job.ID, job.Start, job.End)
	logger.Info().Str(logging.FieldPath, outPath).Msg("trimming")

	if err := Cut(ctx, p.FFmpeg, asset.Path, outPath, job.Start, job.End); err != nil {
		if ctx.Err() != nil {
			// Left in processing; the next Start re-queues it.
			logger.Info().Msg("trim interrupted by shutdown")
			return
		}
		fail(err.Error())
		return
	}

	if _, err := os.Stat(outPath); err != nil {
		fail(fmt.Sprintf("stat output: %v", err))
		return
	}

	if err := db.MarkTrimJobComplete(p.DB, job.ID, time.Now().UTC(), outPath); err != nil {
		logger.Warn().Err(err).Msg("mark trim job complete")
		return
	}
	metrics.RecordTrimJob(db.StatusCompleted)
	logger.Info().Msg("trim job completed")
}

func (p *Processor) refreshQueueGauge() {
	if n, err := db.CountPendingTrimJobs(p.DB); err == nil {
		metrics.TrimJobsQueued.Set(float64(n))
	}
}
