package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/regionpulse/regionpulse/pkg/anomaly"
	"github.com/regionpulse/regionpulse/pkg/async"
	"github.com/regionpulse/regionpulse/pkg/audit"
	"github.com/regionpulse/regionpulse/pkg/intervention"
	"github.com/regionpulse/regionpulse/pkg/observability"
	"github.com/regionpulse/regionpulse/pkg/region"
	"github.com/regionpulse/regionpulse/pkg/spatial"
	"github.com/regionpulse/regionpulse/pkg/trend"
	"github.com/regionpulse/regionpulse/pkg/upstream"
)

// Config holds orchestrator tuning.
type Config struct {
	// Workers is the number of concurrent job executions.
	Workers int
	// JobTimeout bounds a single job's execution; an overrun fails the job
	// instead of hanging a worker.
	JobTimeout time.Duration
	// Retention is how long finished jobs stay queryable.
	Retention time.Duration
	// MaxJobs caps the job table size.
	MaxJobs int
	// DefaultRecordLimit applies when a submission does not set one.
	DefaultRecordLimit int
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Workers:            4,
		JobTimeout:         5 * time.Minute,
		Retention:          24 * time.Hour,
		MaxJobs:            1024,
		DefaultRecordLimit: 5000,
	}
}

// Orchestrator manages monitoring jobs: validated submission, background
// execution on a worker pool, status/results lookups against the job table.
// The public API only ever reads the job table; analytics never run inline
// on a status or results call.
type Orchestrator struct {
	cfg       Config
	data      upstream.DataSource
	adjacency *region.Adjacency
	store     *Store
	pool      *async.WorkerPool
	auditLog  audit.Logger
	logger    *observability.Logger
	metrics   *observability.Metrics
}

// NewOrchestrator builds an orchestrator and starts its worker pool.
// auditLog and metrics may be nil.
func NewOrchestrator(ctx context.Context, cfg Config, data upstream.DataSource,
	adjacency *region.Adjacency, auditLog audit.Logger,
	logger *observability.Logger, metrics *observability.Metrics) *Orchestrator {

	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConfig().Workers
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = DefaultConfig().JobTimeout
	}
	if cfg.DefaultRecordLimit <= 0 {
		cfg.DefaultRecordLimit = DefaultConfig().DefaultRecordLimit
	}
	if auditLog == nil {
		auditLog = audit.NopLogger{}
	}
	if logger == nil {
		logger = observability.NewLogger(observability.InfoLevel, nil)
	}

	return &Orchestrator{
		cfg:       cfg,
		data:      data,
		adjacency: adjacency,
		store:     NewStore(cfg.MaxJobs, cfg.Retention),
		pool:      async.NewWorkerPool(ctx, cfg.Workers, "monitoring analysis", cfg.JobTimeout),
		auditLog:  auditLog,
		logger:    logger,
		metrics:   metrics,
	}
}

// Shutdown drains in-flight jobs.
func (o *Orchestrator) Shutdown(timeout time.Duration) error {
	return o.pool.Shutdown(timeout)
}

// Submit validates the request, creates a queued job and hands it to the
// worker pool. It returns as soon as the job is queued; unknown intent or
// vigilance values are rejected before any job exists.
func (o *Orchestrator) Submit(ctx context.Context, req Request) (*StatusView, error) {
	intent, err := ParseIntent(req.Intent)
	if err != nil {
		o.rejected(ctx, req, err)
		return nil, fmt.Errorf("%w: %q", err, req.Intent)
	}
	vigilance, err := ParseVigilance(req.Vigilance)
	if err != nil {
		o.rejected(ctx, req, err)
		return nil, fmt.Errorf("%w: %q", err, req.Vigilance)
	}
	period, err := ParsePeriod(req.TimePeriod)
	if err != nil {
		o.rejected(ctx, req, err)
		return nil, fmt.Errorf("%w: %q", err, req.TimePeriod)
	}

	limit := req.RecordLimit
	if limit <= 0 {
		limit = o.cfg.DefaultRecordLimit
	}

	job := newJob(uuid.New().String(), intent, req.FocusArea, period, vigilance, limit)
	o.store.Add(job)

	if err := o.pool.Submit(func(taskCtx context.Context) {
		o.execute(taskCtx, job.ID)
	}); err != nil {
		job.fail("orchestrator is shutting down")
		return nil, err
	}

	o.logger.WithField("job_id", job.ID).WithField("intent", string(intent)).
		Info("monitoring job submitted")
	o.audit(ctx, audit.EventJobSubmitted, job, "job queued")
	if o.metrics != nil {
		o.metrics.JobsSubmitted.WithLabelValues(string(intent)).Inc()
		o.metrics.JobsRetained.Set(float64(o.store.Len()))
	}

	view := job.Snapshot()
	return &view, nil
}

// Status returns the current snapshot of a job.
func (o *Orchestrator) Status(jobID string) (*StatusView, error) {
	job, ok := o.store.Get(jobID)
	if !ok {
		return nil, ErrJobNotFound
	}
	view := job.Snapshot()
	return &view, nil
}

// ResultView is the results payload: the report for completed jobs, the
// failure reason for failed ones.
type ResultView struct {
	JobID         string  `json:"job_id"`
	Status        Status  `json:"status"`
	Report        *Report `json:"report,omitempty"`
	FailureReason string  `json:"failure_reason,omitempty"`
}

// Results returns the composed report once the job completed. Running jobs
// yield ErrJobNotReady, unknown ids ErrJobNotFound, failed jobs their
// captured reason.
func (o *Orchestrator) Results(jobID string) (*ResultView, error) {
	job, ok := o.store.Get(jobID)
	if !ok {
		return nil, ErrJobNotFound
	}
	report, reason, err := job.result()
	if err != nil {
		return nil, err
	}
	view := job.Snapshot()
	return &ResultView{
		JobID:         jobID,
		Status:        view.Status,
		Report:        report,
		FailureReason: reason,
	}, nil
}

// JobCount returns how many jobs the table currently retains.
func (o *Orchestrator) JobCount() int {
	return o.store.Len()
}

// execute is the job's execution step, run by a pool worker. It is the only
// code path that mutates a job after creation.
func (o *Orchestrator) execute(ctx context.Context, jobID string) {
	job, ok := o.store.Get(jobID)
	if !ok {
		return
	}
	if !job.start() {
		return
	}
	o.audit(ctx, audit.EventJobStarted, job, "analysis started")

	started := time.Now()
	report, err := o.runAnalysis(ctx, job)
	if err != nil {
		reason := err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			reason = fmt.Sprintf("analysis timed out after %v", o.cfg.JobTimeout)
		}
		job.fail(reason)
		o.logger.WithField("job_id", job.ID).WithError(err).Warn("monitoring job failed")
		o.audit(ctx, audit.EventJobFailed, job, reason)
		if o.metrics != nil {
			o.metrics.JobsFailed.WithLabelValues(string(job.Intent)).Inc()
			o.metrics.JobsRetained.Set(float64(o.store.Len()))
		}
		return
	}

	job.complete(report)
	o.logger.WithField("job_id", job.ID).
		WithField("duration", time.Since(started).String()).
		Info("monitoring job completed")
	o.audit(ctx, audit.EventJobCompleted, job, report.Summary)
	if o.metrics != nil {
		o.metrics.JobsCompleted.WithLabelValues(string(job.Intent)).Inc()
		o.metrics.JobDuration.WithLabelValues(string(job.Intent)).Observe(time.Since(started).Seconds())
		o.metrics.JobsRetained.Set(float64(o.store.Len()))
	}
}

// runAnalysis fetches the window's records and runs the four analytics.
// Spatial statistics, trend analytics and anomaly detection execute
// concurrently; intervention scoring follows because it consumes the
// spatial classification. Progress advances in four increments.
func (o *Orchestrator) runAnalysis(ctx context.Context, job *Job) (*Report, error) {
	profile := ProfileFor(job.Vigilance)

	to := time.Now().UTC()
	from := to.AddDate(0, 0, -job.TimePeriod.Days())
	window := Window{From: from, To: to}

	records, err := o.data.FetchRecords(ctx, upstream.FetchOptions{
		Limit: job.RecordLimit,
		State: job.FocusArea,
		From:  from,
		To:    to,
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no data available for the requested period and scope")
	}

	series := region.BuildSeries(records, region.GroupByState)
	totals := region.Totals(series)
	regions := make([]region.Region, len(series))
	for i, s := range series {
		regions[i] = s.Region
	}

	var (
		global      *spatial.GlobalResult
		spatialNote string
		local       *spatial.LocalResult
		velocities  []trend.RegionVelocity
		trends      []trend.RegionTrend
		decomp      *trend.Decomposition
		alerts      *anomaly.Result
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var serr error
		global, serr = spatial.MoransI(totals, spatial.NewWeightMatrix(regions, o.adjacency))
		if serr != nil && !errors.Is(serr, spatial.ErrInsufficientData) {
			return serr
		}
		if errors.Is(serr, spatial.ErrInsufficientData) {
			spatialNote = "insufficient regions for spatial statistics"
		} else {
			local, serr = spatial.GetisOrdGiStar(totals, spatial.NewWeightMatrix(regions, o.adjacency))
			if serr != nil && !errors.Is(serr, spatial.ErrInsufficientData) {
				return serr
			}
		}
		job.advance(25, "spatial statistics complete")
		return gctx.Err()
	})

	g.Go(func() error {
		velocities = trend.Velocities(series)
		trends = trend.RegionTrends(series)
		decomp = trend.Decompose(region.Aggregate(series), trend.DefaultPeriod)
		job.advance(25, "trend analytics complete")
		return gctx.Err()
	})

	g.Go(func() error {
		alerts = anomaly.NewDetector(profile.AnomalyThreshold).Detect(series)
		job.advance(25, "anomaly detection complete")
		return gctx.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	coverage, err := o.data.FetchCoverage(ctx)
	if err != nil {
		return nil, err
	}
	scored := intervention.Score(local, coverage, profile.CoverageThreshold)
	job.advance(25, "intervention scoring complete")

	return composeReport(job, window, len(records),
		global, spatialNote, local,
		velocities, trends, decomp, alerts, scored), nil
}

func (o *Orchestrator) rejected(ctx context.Context, req Request, err error) {
	ev := &audit.Event{
		EventType: audit.EventJobRejected,
		JobID:     "-",
		Intent:    req.Intent,
		Vigilance: req.Vigilance,
		Message:   err.Error(),
	}
	log := o.auditLog
	async.SafeGo(context.WithoutCancel(ctx), 5*time.Second, "audit write", func(c context.Context) error {
		return log.Log(c, ev)
	})
}

func (o *Orchestrator) audit(ctx context.Context, typ audit.EventType, job *Job, message string) {
	ev := &audit.Event{
		EventType: typ,
		JobID:     job.ID,
		Intent:    string(job.Intent),
		Vigilance: string(job.Vigilance),
		Message:   message,
	}
	log := o.auditLog
	async.SafeGo(context.WithoutCancel(ctx), 5*time.Second, "audit write", func(c context.Context) error {
		return log.Log(c, ev)
	})
}
