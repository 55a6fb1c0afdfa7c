package lifecycle

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"syslogsrv/internal/global"
	"syslogsrv/internal/logctx"
)

type DaemonLike interface {
	Shutdown()
	ForceFlush()
}

// Handles all incoming signals from external sources until a termination signal
// or ctx cancellation. SIGHUP flushes queued messages immediately;
// SIGINT, SIGTERM and SIGQUIT start the daemon shutdown.
func SignalHandler(ctx context.Context, daemon DaemonLike) {
	ctx = logctx.AppendCtxTag(ctx, global.NSSignal)

	sigChan := make(chan os.Signal, 10)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	handleSignals(ctx, sigChan, daemon)
}

func handleSignals(ctx context.Context, sigChan <-chan os.Signal, daemon DaemonLike) {
	for {
		var sig os.Signal
		select {
		case <-ctx.Done():
			return
		case sig = <-sigChan:
		}

		logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "Received signal: %v\n", sig)

		if sig == syscall.SIGHUP {
			err := NotifyReload(ctx)
			if err != nil {
				logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "Systemd notify reload failed: %v\n", err)
			}

			daemon.ForceFlush()

			err = NotifyReady(ctx)
			if err != nil {
				logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "Systemd notify ready failed: %v\n", err)
			}
			continue
		}

		daemon.Shutdown()
		return
	}
}
