package collector

import (
	"context"
	"net/http"
	"sync"
	"syslogsrv/internal/collector/gatherer"
	"syslogsrv/internal/config"
	"syslogsrv/internal/externalio/beats"
	"syslogsrv/internal/externalio/journald"
	"syslogsrv/internal/ingest/tlstcp"
	"syslogsrv/internal/ingest/udp"
	"syslogsrv/internal/queue"
	"syslogsrv/internal/writer"

	"golang.org/x/sync/errgroup"
)

// Owns every collector component for one run: settings snapshot, queue, ingestors, writer and metrics
type Daemon struct {
	settings config.Settings
	ctx      context.Context // logging base, never cancelled

	group         *errgroup.Group
	ingressCancel context.CancelFunc
	writerCancel  context.CancelFunc
	metricsCancel context.CancelFunc
	ingressWG     sync.WaitGroup

	Queue         *queue.MessageQueue
	UDP           *udp.Instance
	TLS           *tlstcp.Listener
	Writer        *writer.BatchWriter
	Gatherer      *gatherer.Gatherer
	MetricServer  *http.Server
	beatsMirror   *beats.OutModule
	journalMirror *journald.OutModule

	started      bool
	shutdownOnce sync.Once
	done         chan struct{}
	err          error
}
