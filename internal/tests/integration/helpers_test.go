package integration

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"os"
	"path/filepath"
	"strings"
	"syslogsrv/internal/config"
	"syslogsrv/internal/global"
	"syslogsrv/internal/logctx"
	"syslogsrv/internal/tlsconf"
	"testing"
	"time"
)

// Settings with ephemeral ports, a generated PEM certificate and fast writer polling
func testSettings(t *testing.T) (settings config.Settings, roots *x509.CertPool) {
	t.Helper()
	dir := t.TempDir()

	certPEM, keyPEM, err := tlsconf.GenerateSelfSigned([]string{"localhost", "127.0.0.1"}, time.Hour)
	if err != nil {
		t.Fatalf("generate cert: %v", err)
	}
	certPath := filepath.Join(dir, "server.pem")
	keyPath := filepath.Join(dir, "server.key")
	if err = os.WriteFile(certPath, certPEM, 0600); err != nil {
		t.Fatalf("write cert: %v", err)
	}
	if err = os.WriteFile(keyPath, keyPEM, 0600); err != nil {
		t.Fatalf("write key: %v", err)
	}
	roots = x509.NewCertPool()
	roots.AppendCertsFromPEM(certPEM)

	settings = config.Defaults()
	settings.UdpPort = 0
	settings.TlsPort = 0
	settings.CertificatePath = certPath
	settings.KeyPath = keyPath
	settings.LogFileDirectory = filepath.Join(dir, "logs")
	settings.LogWriterIntervalSec = 1
	settings.WriterPollInterval = "10ms"
	settings.Metrics.Interval = "50ms"
	return
}

func testContext(t *testing.T) (ctx context.Context) {
	t.Helper()
	testCtx, cancelTestCtx := context.WithCancel(context.Background())
	t.Cleanup(cancelTestCtx)
	logger := logctx.NewLogger(global.NSTest, global.VerbosityData, testCtx.Done())
	ctx = logctx.WithLogger(testCtx, logger)
	return
}

func tlsClientConfig(roots *x509.CertPool) *tls.Config {
	return &tls.Config{RootCAs: roots, ServerName: "localhost"}
}

// Reads every line from all files in dir, headers excluded
func readLogLines(t *testing.T, dir string) (lines []string, headers int) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read log dir: %v", err)
	}
	for _, entry := range entries {
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			t.Fatalf("read %s: %v", entry.Name(), err)
		}
		for _, line := range strings.Split(strings.TrimSuffix(string(data), "\n"), "\n") {
			if strings.HasPrefix(line, "--- Creating log file at ") {
				headers++
				continue
			}
			lines = append(lines, line)
		}
	}
	return
}

// Searches the in-memory log buffer for a line containing text
func logContains(ctx context.Context, text string) (found bool) {
	logger := logctx.GetLogger(ctx)
	if logger == nil {
		return
	}
	for _, line := range logger.GetFormattedLogLines() {
		if strings.Contains(line, text) {
			found = true
			return
		}
	}
	return
}

func eventually(t *testing.T, description string, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for !condition() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", description)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
