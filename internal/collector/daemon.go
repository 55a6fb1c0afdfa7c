// Collector daemon: wires ingestion, buffering and batched file output together
package collector

import (
	"context"
	"fmt"
	"syslogsrv/internal/collector/gatherer"
	"syslogsrv/internal/config"
	"syslogsrv/internal/externalio/beats"
	"syslogsrv/internal/externalio/journald"
	"syslogsrv/internal/externalio/server"
	"syslogsrv/internal/global"
	"syslogsrv/internal/ingest/tlstcp"
	"syslogsrv/internal/ingest/udp"
	"syslogsrv/internal/lifecycle"
	"syslogsrv/internal/logctx"
	"syslogsrv/internal/network"
	"syslogsrv/internal/queue"
	"syslogsrv/internal/tlsconf"
	"syslogsrv/internal/writer"
	"time"

	"golang.org/x/sync/errgroup"
)

// Create new collector daemon instance from a settings snapshot
func NewDaemon(settings config.Settings) (new *Daemon) {
	new = &Daemon{
		settings: settings,
		ctx:      context.Background(),
		done:     make(chan struct{}),
	}
	return
}

// Validates settings, binds both transports and starts all workers in the background.
// Nothing is left running when an error is returned.
func (daemon *Daemon) Start(globalCtx context.Context) (err error) {
	// Logging only, the daemon controls its own cancellation
	daemon.ctx = logctx.WithLogger(context.Background(), logctx.GetLogger(globalCtx))
	daemon.ctx = logctx.AppendCtxTag(daemon.ctx, global.NSCollector)
	namespace := []string{global.NSCollector}

	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog, "Starting...\n")

	err = daemon.settings.Validate()
	if err != nil {
		return
	}
	logctx.LogEvent(daemon.ctx, global.VerbosityProgress, global.InfoLog, "\n%s", daemon.settings.String())

	err = config.EnsureLogDirectory(daemon.ctx, daemon.settings)
	if err != nil {
		return
	}

	tlsConfig, err := tlsconf.NewServerConfig(tlsconf.Options{
		CertificatePath:     daemon.settings.CertificatePath,
		CertificatePassword: daemon.settings.CertificatePassword,
		KeyPath:             daemon.settings.KeyPath,
		ClientCAPath:        daemon.settings.ClientCAPath,
		CRLPaths:            daemon.settings.CRLPaths,
		AuthRequired:        daemon.settings.AuthRequired,
	})
	if err != nil {
		err = fmt.Errorf("failed loading TLS material: %w", err)
		return
	}
	if daemon.settings.AuthRequired && len(daemon.settings.CRLPaths) == 0 {
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
			"Client certificates are required but no CRLPaths are configured, revoked certificates will be accepted\n")
	}

	udpConn, err := network.ListenUDP(daemon.ctx, daemon.settings.UdpPort, network.DefaultOptions)
	if err != nil {
		return
	}
	tcpListener, err := network.ListenTCP(daemon.ctx, daemon.settings.TlsPort, network.DefaultOptions)
	if err != nil {
		udpConn.Close()
		return
	}

	daemon.Queue = queue.New(namespace, queue.ResolveBound(daemon.settings.QueueMaxBytes))
	if daemon.Queue.MaxBytes() > 0 {
		logctx.LogEvent(daemon.ctx, global.VerbosityProgress, global.InfoLog,
			"Queue bounded to %d bytes, newest messages are dropped beyond that\n", daemon.Queue.MaxBytes())
	}

	daemon.UDP = udp.New(namespace, udpConn, daemon.Queue, daemon.settings.DisplayTimestamps)
	daemon.TLS = tlstcp.New(namespace, tcpListener, tlsConfig, daemon.Queue,
		daemon.settings.DisplayTimestamps, daemon.settings.MaxLineSize)

	writerOpts := writer.Options{
		Directory:     daemon.settings.LogFileDirectory,
		Filename:      daemon.settings.LogFilename,
		Interval:      daemon.settings.WriterInterval(),
		PollInterval:  daemon.settings.PollInterval(),
		FailurePolicy: daemon.settings.WriterFailurePolicy,
	}
	// Mirrors that fail their connection test are kept and retried on each flush
	if daemon.settings.BeatsEndpoint != "" {
		var mirrorErr error
		daemon.beatsMirror, mirrorErr = beats.NewOutput(daemon.settings.BeatsEndpoint)
		if mirrorErr != nil {
			logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
				"Beats mirror unavailable, will retry on next flush: %v\n", mirrorErr)
		}
		if daemon.beatsMirror != nil {
			writerOpts.Mirrors = append(writerOpts.Mirrors, daemon.beatsMirror)
		}
	}
	if daemon.settings.JournaldURL != "" {
		var mirrorErr error
		daemon.journalMirror, mirrorErr = journald.NewOutput(daemon.settings.JournaldURL)
		if mirrorErr != nil {
			logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
				"Journald mirror unavailable, will retry on next flush: %v\n", mirrorErr)
		}
		if daemon.journalMirror != nil {
			writerOpts.Mirrors = append(writerOpts.Mirrors, daemon.journalMirror)
		}
	}
	daemon.Writer = writer.New(namespace, daemon.Queue, writerOpts)

	daemon.startWorkers()
	daemon.started = true

	err = lifecycle.NotifyReady(daemon.ctx)
	if err != nil {
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog, "Systemd notify ready failed: %v\n", err)
		err = nil
	}
	daemon.notifyStatus(fmt.Sprintf("Collecting on udp/%d and tcp/%d", daemon.UDPPort(), daemon.TLSPort()))

	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog,
		"Startup complete. Listening on udp/%d and tls/%d\n", daemon.UDPPort(), daemon.TLSPort())
	return
}

// Launches every worker under one errgroup.
// Only a fatal writer error cancels the group; ingress failures are contained.
func (daemon *Daemon) startWorkers() {
	var groupCtx context.Context
	daemon.group, groupCtx = errgroup.WithContext(daemon.ctx)

	var ingressCtx, writerCtx, metricsCtx context.Context
	ingressCtx, daemon.ingressCancel = context.WithCancel(groupCtx)
	writerCtx, daemon.writerCancel = context.WithCancel(groupCtx)
	metricsCtx, daemon.metricsCancel = context.WithCancel(groupCtx)

	// ReadFromUDP does not observe contexts
	context.AfterFunc(ingressCtx, func() {
		_ = daemon.UDP.Close()
	})

	daemon.ingressWG.Add(2)
	daemon.group.Go(func() (err error) {
		defer daemon.ingressWG.Done()
		udpErr := daemon.UDP.Run(ingressCtx)
		if udpErr != nil {
			daemon.notifyStatus("UDP ingestion stopped: " + udpErr.Error())
		}
		return
	})
	daemon.group.Go(func() (err error) {
		defer daemon.ingressWG.Done()
		err = daemon.TLS.Run(ingressCtx)
		return
	})

	daemon.group.Go(func() (err error) {
		err = daemon.Writer.Run(writerCtx)
		if err != nil {
			daemon.notifyStatus("Log writer failed: " + err.Error())
		}
		return
	})

	if daemon.settings.Metrics.Enabled {
		daemon.Gatherer = gatherer.New(daemon.settings.MetricInterval(), daemon.settings.MetricRetention(),
			daemon.Queue, daemon.UDP, daemon.TLS, daemon.Writer)
		daemon.Gatherer.Pressure = daemon.Queue.MemoryPressure

		daemon.group.Go(func() (err error) {
			daemon.Gatherer.Run(metricsCtx)
			return
		})

		if daemon.settings.Metrics.QueryServer {
			daemon.MetricServer = server.SetupListener(daemon.ctx,
				daemon.settings.Metrics.QueryPort,
				server.RegistryQueries(daemon.Gatherer.Registry))

			context.AfterFunc(metricsCtx, func() {
				err := server.Stop(daemon.MetricServer, global.HTTPWriteTimeout)
				if err != nil {
					logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
						"Metric query server did not stop gracefully: %v\n", err)
				}
			})
			daemon.group.Go(func() (err error) {
				// Query server failures never stop collection
				_ = server.Start(daemon.ctx, daemon.MetricServer)
				return
			})
		}
	}

	go func() {
		daemon.err = daemon.group.Wait()
		daemon.ingressCancel()
		daemon.writerCancel()
		daemon.metricsCancel()

		err := daemon.beatsMirror.Shutdown()
		if err != nil {
			logctx.LogEvent(daemon.ctx, global.VerbosityProgress, global.WarnLog, "Beats mirror close failed: %v\n", err)
		}
		_ = daemon.journalMirror.Shutdown()
		close(daemon.done)
	}()
}

// Blocks until every worker has stopped. Returns the fatal writer error, if any.
func (daemon *Daemon) Run() (err error) {
	if !daemon.started {
		err = fmt.Errorf("collector not started")
		return
	}
	<-daemon.done
	err = daemon.err
	return
}

// Stops ingress, flushes everything queued, then stops metrics. Safe to call more than once.
func (daemon *Daemon) Shutdown() {
	if !daemon.started {
		return
	}
	daemon.shutdownOnce.Do(daemon.shutdown)
}

func (daemon *Daemon) shutdown() {
	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog, "Collector shutdown started...\n")

	err := lifecycle.NotifyStopping(daemon.ctx)
	if err != nil {
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog, "Systemd notify stopping failed: %v\n", err)
	}

	deadline := time.NewTimer(global.ShutdownTimeout)
	defer deadline.Stop()

	// Stop ingress first so the final flush sees every accepted message
	daemon.ingressCancel()
	ingressDone := make(chan struct{})
	go func() {
		daemon.ingressWG.Wait()
		close(ingressDone)
	}()
	select {
	case <-ingressDone:
	case <-deadline.C:
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
			"Ingress did not stop within %s, flushing anyway\n", global.ShutdownTimeout.String())
	}

	daemon.writerCancel()
	daemon.metricsCancel()

	select {
	case <-daemon.done:
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog,
			"Collector shutdown completed successfully\n")
	case <-deadline.C:
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
			"Timeout: collector did not shutdown within %s\n", global.ShutdownTimeout.String())
	}
}

// Requests an immediate writer flush
func (daemon *Daemon) ForceFlush() {
	if daemon.Writer == nil {
		return
	}
	logctx.LogEvent(daemon.ctx, global.VerbosityProgress, global.InfoLog, "Flush requested\n")
	daemon.Writer.ForceFlush()
}

// Bound UDP port (differs from settings when configured as 0)
func (daemon *Daemon) UDPPort() (port int) {
	if daemon.UDP == nil {
		return
	}
	port = network.BoundPort(daemon.UDP.LocalAddr())
	return
}

// Bound TLS port (differs from settings when configured as 0)
func (daemon *Daemon) TLSPort() (port int) {
	if daemon.TLS == nil {
		return
	}
	port = network.BoundPort(daemon.TLS.Addr())
	return
}

func (daemon *Daemon) notifyStatus(status string) {
	err := lifecycle.NotifyStatus(daemon.ctx, status)
	if err != nil {
		logctx.LogEvent(daemon.ctx, global.VerbosityProgress, global.WarnLog, "Systemd notify status failed: %v\n", err)
	}
}
