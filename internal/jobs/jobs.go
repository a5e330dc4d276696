// Package jobs runs the periodic maintenance tasks.
package jobs

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/erazemk/pantrypal/internal/model"
	"github.com/erazemk/pantrypal/internal/pantry"
	"github.com/erazemk/pantrypal/internal/store"
)

// Schedules, in the scheduler's time zone.
const (
	RelabelSpec = "0 0 * * *"
	PurgeSpec   = "@hourly"
)

// fanout bounds concurrent change announcements during a relabel.
const fanout = 8

// jobTimeout bounds a single run of any job.
const jobTimeout = 5 * time.Minute

var parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Scheduler owns the cron runner and the jobs it executes.
type Scheduler struct {
	cron   *cron.Cron
	db     *sql.DB
	pantry *pantry.Service
	loc    *time.Location
	now    func() time.Time
}

// New creates a scheduler running in loc.
func New(db *sql.DB, svc *pantry.Service, loc *time.Location) *Scheduler {
	logger := cronLogger{}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithParser(parser),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		db:     db,
		pantry: svc,
		loc:    loc,
		now:    time.Now,
	}
}

// Start registers the jobs and starts the runner. A relabel missed while
// the process was down runs before Start returns.
func (s *Scheduler) Start() error {
	s.catchUp()

	if _, err := s.cron.AddFunc(RelabelSpec, s.run("relabel", s.Relabel)); err != nil {
		return fmt.Errorf("scheduling relabel: %w", err)
	}
	if _, err := s.cron.AddFunc(PurgeSpec, s.run("purge tokens", s.PurgeTokens)); err != nil {
		return fmt.Errorf("scheduling token purge: %w", err)
	}
	s.cron.Start()
	return nil
}

// Stop stops the runner and waits for running jobs to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) today() model.Date {
	return model.Today(s.now(), s.loc)
}

// catchUp runs the relabel job if it has not run yet today.
func (s *Scheduler) catchUp() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	last, err := store.GetSetting(ctx, s.db, store.SettingLastRelabel)
	if err != nil {
		slog.Error("reading last relabel", "error", err)
		return
	}
	if last == s.today().String() {
		return
	}
	slog.Info("running missed relabel", "last", last)
	s.run("relabel", s.Relabel)()
}

func (s *Scheduler) run(name string, job func(context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if err := job(ctx); err != nil {
			slog.Error("job failed", "job", name, "error", err)
		}
	}
}

// Relabel announces a change for every owner with items so that open lists
// recompute their days-until-expiry after the date rolls over.
func (s *Scheduler) Relabel(ctx context.Context) error {
	owners, err := store.ListOwnerIDs(ctx, s.db)
	if err != nil {
		return err
	}

	// gctx is cancelled once Wait returns; ctx stays usable afterwards.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanout)
	for _, owner := range owners {
		g.Go(func() error {
			if err := s.pantry.Touch(gctx, owner); err != nil {
				return fmt.Errorf("announcing change for %s: %w", owner, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("relabelled pantries", "owners", len(owners))
	return store.SetSetting(ctx, s.db, store.SettingLastRelabel, s.today().String())
}

// PurgeTokens removes revocations for tokens that have expired anyway.
func (s *Scheduler) PurgeTokens(ctx context.Context) error {
	n, err := store.PurgeRevokedTokens(ctx, s.db, s.now())
	if err != nil {
		return err
	}
	if n > 0 {
		slog.Info("purged revoked tokens", "count", n)
	}
	return nil
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
