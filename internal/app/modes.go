package app

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/haneulsoft/caseledger/internal/server"
	"github.com/haneulsoft/caseledger/internal/server/handler"
	"github.com/haneulsoft/caseledger/internal/server/ws"
	"github.com/haneulsoft/caseledger/internal/service"
)

// services bundles the constructed service layer shared by the modes.
type services struct {
	cases        *service.CaseService
	parties      *service.PartyService
	bonds        *service.BondService
	enforcements *service.EnforcementService
	tasks        *service.TaskService
	dashboard    *service.DashboardService
	attachments  *service.AttachmentService
}

// buildServices constructs the service layer from the wired dependencies.
func (a *App) buildServices(deps *Dependencies) *services {
	return &services{
		cases: service.NewCaseService(
			deps.CaseStore, deps.TimelineStore, deps.AuditStore,
			deps.SignalBus, deps.DashboardCache, a.logger,
		),
		parties: service.NewPartyService(deps.PartyStore, deps.AuditStore, a.logger),
		bonds: service.NewBondService(
			deps.BondStore, deps.CaseStore, deps.TimelineStore,
			deps.AuditStore, deps.SignalBus, a.logger,
		),
		enforcements: service.NewEnforcementService(
			deps.EnforcementStore, deps.CaseStore, deps.TimelineStore,
			deps.AuditStore, deps.SignalBus, deps.DashboardCache, a.logger,
		),
		tasks: service.NewTaskService(
			deps.TaskStore, deps.TimelineStore, deps.AuditStore,
			deps.DashboardCache, a.logger,
		),
		dashboard: service.NewDashboardService(
			deps.CaseStore, deps.TaskStore, deps.EnforcementStore,
			deps.DashboardCache, deps.LockManager, a.logger,
		),
		attachments: service.NewAttachmentService(
			deps.AttachmentStore, deps.CaseStore, deps.TimelineStore,
			deps.BlobWriter, deps.BlobReader, deps.BlobDeleter, a.logger,
		),
	}
}

// ServeMode runs only the HTTP + WebSocket API server.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting serve mode")

	g, ctx := errgroup.WithContext(ctx)
	svcs := a.buildServices(deps)
	a.startHTTPServer(ctx, g, deps, svcs)

	return g.Wait()
}

// WorkerMode runs only the background workers: the deadline tracker, the
// dashboard refresher, and the audit archiver.
func (a *App) WorkerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting worker mode")

	g, ctx := errgroup.WithContext(ctx)
	svcs := a.buildServices(deps)
	a.startWorkers(ctx, g, deps, svcs)

	return g.Wait()
}

// FullMode runs the API server and the background workers in one process.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	g, ctx := errgroup.WithContext(ctx)
	svcs := a.buildServices(deps)
	a.startHTTPServer(ctx, g, deps, svcs)
	a.startWorkers(ctx, g, deps, svcs)

	return g.Wait()
}

// startHTTPServer builds the handlers, websocket hub, and HTTP server and
// registers their goroutines with the errgroup.
func (a *App) startHTTPServer(ctx context.Context, g *errgroup.Group, deps *Dependencies, svcs *services) {
	wsHub := ws.NewHub(deps.SignalBus, a.logger, ws.Config{
		Mode:      a.cfg.Mode,
		StartedAt: time.Now().UTC(),
	})
	g.Go(func() error {
		return wsHub.Run(ctx)
	})

	handlers := server.Handlers{
		Health:       handler.NewHealthHandler(a.logger),
		Cases:        handler.NewCaseHandler(svcs.cases, a.logger),
		Parties:      handler.NewPartyHandler(svcs.parties, a.logger),
		Bonds:        handler.NewBondHandler(svcs.bonds, a.logger),
		Enforcements: handler.NewEnforcementHandler(svcs.enforcements, a.logger),
		Tasks:        handler.NewTaskHandler(svcs.tasks, a.logger),
		Dashboard:    handler.NewDashboardHandler(svcs.dashboard, svcs.bonds, a.logger),
		Attachments:  handler.NewAttachmentHandler(svcs.attachments, a.cfg.Server.MaxUploadBytes, a.logger),
	}

	srv := server.NewServer(server.Config{
		Port:            a.cfg.Server.Port,
		CORSOrigins:     a.cfg.Server.CORSOrigins,
		APIKey:          a.cfg.Server.APIKey,
		RateLimitPerMin: a.cfg.Server.RateLimitPerMin,
	}, handlers, wsHub, deps.RateLimiter, a.logger)

	g.Go(func() error {
		return srv.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

// startWorkers registers the background workers with the errgroup.
func (a *App) startWorkers(ctx context.Context, g *errgroup.Group, deps *Dependencies, svcs *services) {
	// Deadline tracker: scans open due dates and raises alerts.
	tracker := service.NewDeadlineTracker(
		deps.TaskStore, deps.SignalBus, deps.Notifier, deps.RateLimiter,
		a.cfg.Worker.DeadlineScanInterval.Duration, a.logger,
	)
	g.Go(func() error {
		return tracker.Run(ctx)
	})

	// Dashboard refresher: keeps the cached snapshot warm.
	refreshEvery := a.cfg.Worker.DashboardRefresh.Duration
	if refreshEvery <= 0 {
		refreshEvery = 5 * time.Minute
	}
	g.Go(func() error {
		ticker := time.NewTicker(refreshEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if _, err := svcs.dashboard.Refresh(ctx); err != nil {
					a.logger.WarnContext(ctx, "dashboard refresh failed",
						slog.String("error", err.Error()),
					)
				}
			}
		}
	})

	// Audit archiver: exports aged audit rows to S3 and purges them.
	retention := a.cfg.Worker.AuditRetentionDays
	archiveEvery := a.cfg.Worker.AuditArchiveInterval.Duration
	if retention > 0 && archiveEvery > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(archiveEvery)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-ticker.C:
					cutoff := time.Now().UTC().AddDate(0, 0, -retention)
					count, err := deps.Archiver.ArchiveAudit(ctx, cutoff)
					if err != nil {
						a.logger.WarnContext(ctx, "audit archive failed",
							slog.String("error", err.Error()),
						)
						continue
					}
					if count > 0 {
						a.logger.InfoContext(ctx, "audit entries archived",
							slog.Int64("count", count),
							slog.Time("cutoff", cutoff),
						)
					}
				}
			}
		})
	}
}
