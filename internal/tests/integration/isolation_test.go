package integration

import (
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"strings"
	"syslogsrv/internal/collector"
	"syslogsrv/internal/tlsconf"
	"testing"
	"time"
)

func waitForRun(t *testing.T, runErr <-chan error) {
	t.Helper()
	select {
	case err := <-runErr:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("Run did not return after shutdown")
	}
}

func TestStreamSurvivesUDPClose(t *testing.T) {
	ctx := testContext(t)
	settings, roots := testSettings(t)

	daemon := collector.NewDaemon(settings)
	err := daemon.Start(ctx)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	runErr := make(chan error, 1)
	go func() { runErr <- daemon.Run() }()

	conn, err := tls.Dial("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(daemon.TLSPort())), tlsClientConfig(roots))
	if err != nil {
		t.Fatalf("dial tls: %v", err)
	}
	_, err = fmt.Fprint(conn, "<14>before\n")
	if err != nil {
		t.Fatalf("tls write: %v", err)
	}

	udpConn, err := net.Dial("udp", net.JoinHostPort("127.0.0.1", strconv.Itoa(daemon.UDPPort())))
	if err != nil {
		t.Fatalf("dial udp: %v", err)
	}
	defer udpConn.Close()
	_, err = udpConn.Write([]byte("<13>udp before"))
	if err != nil {
		t.Fatalf("udp write: %v", err)
	}
	eventually(t, "first messages queued", func() bool {
		return daemon.UDP.Metrics.Datagrams.Load() == 1 && daemon.TLS.Metrics.Lines.Load() == 1
	})

	// Transport failure outside of shutdown
	err = daemon.UDP.Close()
	if err != nil {
		t.Fatalf("close udp: %v", err)
	}
	eventually(t, "UDP loop stopped", func() bool { return !daemon.UDP.Running() })

	_, err = fmt.Fprint(conn, "<14>after\n")
	if err != nil {
		t.Fatalf("tls write after UDP close: %v", err)
	}
	eventually(t, "stream line queued after UDP close", func() bool {
		return daemon.TLS.Metrics.Lines.Load() == 2
	})
	conn.Close()
	eventually(t, "stream closed", func() bool { return daemon.TLS.Metrics.CleanCloses.Load() == 1 })

	select {
	case err = <-runErr:
		t.Fatalf("collector stopped after UDP close: %v", err)
	default:
	}

	daemon.Shutdown()
	waitForRun(t, runErr)

	lines, _ := readLogLines(t, settings.LogFileDirectory)
	got := strings.Join(lines, "|")
	for _, want := range []string{"<14>before", "<14>after", "<13>udp before"} {
		if !strings.Contains(got, want) {
			t.Errorf("log missing %q: %q", want, lines)
		}
	}
	if len(lines) != 3 {
		t.Errorf("wrote %d lines, want 3: %q", len(lines), lines)
	}
}

func TestRejectedHandshakeDoesNotAffectOpenStream(t *testing.T) {
	ctx := testContext(t)
	settings, roots := testSettings(t)
	settings.AuthRequired = true

	clientPEM, clientKey, err := tlsconf.GenerateSelfSigned([]string{"sender.local"}, time.Hour)
	if err != nil {
		t.Fatalf("generate client cert: %v", err)
	}
	clientCert, err := tls.X509KeyPair(clientPEM, clientKey)
	if err != nil {
		t.Fatalf("client key pair: %v", err)
	}

	daemon := collector.NewDaemon(settings)
	err = daemon.Start(ctx)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	runErr := make(chan error, 1)
	go func() { runErr <- daemon.Run() }()
	address := net.JoinHostPort("127.0.0.1", strconv.Itoa(daemon.TLSPort()))

	authConfig := tlsClientConfig(roots)
	authConfig.Certificates = []tls.Certificate{clientCert}
	good, err := tls.Dial("tcp", address, authConfig)
	if err != nil {
		t.Fatalf("dial with client cert: %v", err)
	}
	_, err = fmt.Fprint(good, "<14>good1\n")
	if err != nil {
		t.Fatalf("write good1: %v", err)
	}
	eventually(t, "first line queued", func() bool { return daemon.TLS.Metrics.Lines.Load() == 1 })

	// Under TLS 1.3 the client learns of the rejection on its first read
	bad, err := tls.Dial("tcp", address, tlsClientConfig(roots))
	if err == nil {
		_, _ = fmt.Fprint(bad, "<14>intruder\n")
		_ = bad.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, err = bad.Read(make([]byte, 1))
		bad.Close()
	}
	if err == nil {
		t.Fatalf("connection without client certificate was accepted")
	}
	eventually(t, "handshake failure recorded", func() bool {
		return daemon.TLS.Metrics.HandshakeFailures.Load() == 1
	})

	_, err = fmt.Fprint(good, "<14>good2\n")
	if err != nil {
		t.Fatalf("write good2: %v", err)
	}
	good.Close()
	eventually(t, "authenticated stream closed", func() bool {
		return daemon.TLS.Metrics.CleanCloses.Load() == 1
	})

	daemon.Shutdown()
	waitForRun(t, runErr)

	lines, _ := readLogLines(t, settings.LogFileDirectory)
	if strings.Join(lines, "|") != "<14>good1|<14>good2" {
		t.Errorf("lines = %q, want [<14>good1 <14>good2]", lines)
	}
	if daemon.TLS.Metrics.StreamErrors.Load() != 0 {
		t.Errorf("stream errors = %d, want 0", daemon.TLS.Metrics.StreamErrors.Load())
	}
}
