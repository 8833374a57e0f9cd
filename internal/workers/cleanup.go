package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/HammerMeetNail/braincast/internal/logging"
)

const cleanupTimeout = time.Minute

// SessionPurger removes sessions whose expiry has passed.
type SessionPurger interface {
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}

// Cleanup periodically purges expired sessions from Postgres. Redis expires
// its own copies.
type Cleanup struct {
	scheduler gocron.Scheduler
	purger    SessionPurger
	logger    *logging.Logger
}

func NewCleanup(purger SessionPurger, interval time.Duration, logger *logging.Logger) (*Cleanup, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("cleanup interval must be positive, got %s", interval)
	}
	if logger == nil {
		logger = logging.Default
	}

	scheduler, err := gocron.NewScheduler(
		gocron.WithLogger(schedulerLogger{logger}),
		gocron.WithStopTimeout(cleanupTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("creating scheduler: %w", err)
	}

	c := &Cleanup{scheduler: scheduler, purger: purger, logger: logger}
	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(c.run),
		gocron.WithName("purge-expired-sessions"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return nil, fmt.Errorf("scheduling session cleanup: %w", err)
	}
	return c, nil
}

func (c *Cleanup) Start() {
	c.scheduler.Start()
}

// Stop waits for a running purge to finish.
func (c *Cleanup) Stop() error {
	return c.scheduler.Shutdown()
}

func (c *Cleanup) run() {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	n, err := c.purger.DeleteExpiredSessions(ctx)
	if err != nil {
		c.logger.Error("Session cleanup failed", logging.Fields{"error": err.Error()})
		return
	}
	if n > 0 {
		c.logger.Info("Purged expired sessions", logging.Fields{"count": n})
	}
}

// schedulerLogger routes gocron's key/value logging into our JSON logger.
type schedulerLogger struct {
	logger *logging.Logger
}

func (l schedulerLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, pairs(args)) }
func (l schedulerLogger) Info(msg string, args ...any)  { l.logger.Info(msg, pairs(args)) }
func (l schedulerLogger) Warn(msg string, args ...any)  { l.logger.Warn(msg, pairs(args)) }
func (l schedulerLogger) Error(msg string, args ...any) { l.logger.Error(msg, pairs(args)) }

func pairs(args []any) logging.Fields {
	fields := make(logging.Fields, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		fields[fmt.Sprint(args[i])] = args[i+1]
	}
	if len(args)%2 == 1 {
		fields["extra"] = args[len(args)-1]
	}
	return fields
}
