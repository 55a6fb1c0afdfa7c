package collector

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"syslogsrv/internal/config"
	"syslogsrv/internal/global"
	"syslogsrv/internal/logctx"
	"syslogsrv/internal/metrics"
	"syslogsrv/internal/tlsconf"
	"testing"
	"time"
)

func testSettings(t *testing.T) (settings config.Settings) {
	t.Helper()
	dir := t.TempDir()

	certPEM, keyPEM, err := tlsconf.GenerateSelfSigned([]string{"localhost"}, time.Hour)
	if err != nil {
		t.Fatalf("generate cert: %v", err)
	}
	bundle := filepath.Join(dir, "server.pem")
	err = os.WriteFile(bundle, append(certPEM, keyPEM...), 0600)
	if err != nil {
		t.Fatalf("write cert: %v", err)
	}

	settings = config.Defaults()
	settings.UdpPort = 0
	settings.TlsPort = 0
	settings.CertificatePath = bundle
	settings.LogFileDirectory = filepath.Join(dir, "logs")
	settings.WriterPollInterval = "10ms"
	return
}

func freeTCPPort(t *testing.T) (port int) {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port = listener.Addr().(*net.TCPAddr).Port
	listener.Close()
	return
}

func TestStartFailures(t *testing.T) {
	busy, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer busy.Close()
	busyPort := busy.Addr().(*net.TCPAddr).Port

	tests := []struct {
		name    string
		mutate  func(*config.Settings)
		wantErr error
	}{
		{"invalid interval", func(s *config.Settings) { s.LogWriterIntervalSec = 0 }, config.ErrInvalidSettings},
		{"missing certificate", func(s *config.Settings) { s.CertificatePath = "/nonexistent/cert.pem" }, os.ErrNotExist},
		{"tls port in use", func(s *config.Settings) { s.TlsPort = busyPort }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := testSettings(t)
			tt.mutate(&settings)

			daemon := NewDaemon(settings)
			err := daemon.Start(context.Background())
			if err == nil {
				daemon.Shutdown()
				t.Fatalf("expected start error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}

			// Not started: both are no-ops or errors, never blocking
			daemon.Shutdown()
			if runErr := daemon.Run(); runErr == nil {
				t.Errorf("Run on unstarted daemon returned nil")
			}
		})
	}
}

func TestStartCreatesLogDirectory(t *testing.T) {
	settings := testSettings(t)
	daemon := NewDaemon(settings)

	err := daemon.Start(context.Background())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	defer daemon.Shutdown()

	info, err := os.Stat(settings.LogFileDirectory)
	if err != nil || !info.IsDir() {
		t.Fatalf("log directory not created: %v", err)
	}
	if daemon.UDPPort() == 0 || daemon.TLSPort() == 0 {
		t.Errorf("ports not bound: udp=%d tls=%d", daemon.UDPPort(), daemon.TLSPort())
	}
}

func TestMetricQueryServer(t *testing.T) {
	settings := testSettings(t)
	settings.Metrics.Interval = "20ms"
	settings.Metrics.QueryServer = true
	settings.Metrics.QueryPort = freeTCPPort(t)

	testCtx, cancelTestCtx := context.WithCancel(context.Background())
	t.Cleanup(cancelTestCtx)
	logger := logctx.NewLogger(global.NSTest, global.VerbosityStandard, testCtx.Done())
	ctx := logctx.WithLogger(context.Background(), logger)

	daemon := NewDaemon(settings)
	err := daemon.Start(ctx)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	url := "http://" + net.JoinHostPort(global.HTTPListenAddr, strconv.Itoa(settings.Metrics.QueryPort)) +
		global.DiscoveryPath + global.NSCollector + "/" + global.NSWriter
	deadline := time.Now().Add(10 * time.Second)
	var found []metrics.JMetric
	for len(found) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("writer metrics never discoverable at %s", url)
		}
		time.Sleep(20 * time.Millisecond)

		resp, err := http.Get(url)
		if err != nil {
			continue
		}
		_ = json.NewDecoder(resp.Body).Decode(&found)
		resp.Body.Close()
	}

	daemon.Shutdown()
	err = daemon.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	_, err = http.Get(url)
	if err == nil {
		t.Errorf("query server still answering after shutdown")
	}
}
