package install

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"strings"
	"syslogsrv/internal/config"
	"testing"
)

func TestCreateTemplateConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "syslog.json")

	err := CreateTemplateConfig(path, false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(raw), `"UdpPort": 514`) {
		t.Errorf("template missing defaults:\n%s", raw)
	}

	// Test stdout is not a terminal: existing files are never overwritten
	err = os.WriteFile(path, []byte("custom\n"), 0600)
	if err != nil {
		t.Fatal(err)
	}
	err = CreateTemplateConfig(path, false)
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	raw, _ = os.ReadFile(path)
	if string(raw) != "custom\n" {
		t.Errorf("existing file overwritten: %q", raw)
	}

	err = CreateTemplateConfig("", false)
	if err == nil {
		t.Errorf("expected error for empty path")
	}
}

func TestCreateCertificate(t *testing.T) {
	tests := []struct {
		name     string
		separate bool
	}{
		{"bundle", false},
		{"separate key", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			certOut := filepath.Join(dir, "cert.pem")
			keyOut := ""
			if tt.separate {
				keyOut = filepath.Join(dir, "key.pem")
			}

			err := CreateCertificate(certOut, keyOut, []string{"localhost", "127.0.0.1"})
			if err != nil {
				t.Fatalf("create: %v", err)
			}

			certPEM, err := os.ReadFile(certOut)
			if err != nil {
				t.Fatalf("read cert: %v", err)
			}
			keyPEM := certPEM
			if tt.separate {
				keyPEM, err = os.ReadFile(keyOut)
				if err != nil {
					t.Fatalf("read key: %v", err)
				}
			}

			_, err = tls.X509KeyPair(certPEM, keyPEM)
			if err != nil {
				t.Fatalf("pair does not load: %v", err)
			}

			block, _ := pem.Decode(certPEM)
			cert, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if len(cert.IPAddresses) != 1 || len(cert.DNSNames) != 1 {
				t.Errorf("SANs = %v %v", cert.DNSNames, cert.IPAddresses)
			}
		})
	}

	err := CreateCertificate("", "", nil)
	if err == nil {
		t.Errorf("expected error for empty output path")
	}
}

func TestRenderServiceUnit(t *testing.T) {
	unit := renderServiceUnit("/opt/bin/syslogsrv", "/etc/x/syslog.json", "/var/log/x/")

	for _, want := range []string{
		"ExecStart=/opt/bin/syslogsrv serve --config /etc/x/syslog.json",
		"ReadWritePaths=/var/log/x\n",
		"ReloadSignal=SIGHUP",
	} {
		if !strings.Contains(unit, want) {
			t.Errorf("unit missing %q:\n%s", want, unit)
		}
	}
	if strings.Contains(unit, "$") {
		t.Errorf("unsubstituted variable left in unit:\n%s", unit)
	}
}

func TestRenderAAProfile(t *testing.T) {
	profile := renderAAProfile("/opt/bin/syslogsrv", "/etc/x/", "/var/log/x/")

	for _, want := range []string{
		"profile syslogsrv /opt/bin/syslogsrv ",
		"/opt/bin/syslogsrv mr,",
		"/etc/x/** r,",
		"/var/log/x/** rw,",
	} {
		if !strings.Contains(profile, want) {
			t.Errorf("profile missing %q", want)
		}
	}
	if strings.Contains(profile, "$") {
		t.Errorf("unsubstituted variable left in profile")
	}
}

func TestTemplateLoadsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "syslog.json")
	err := CreateTemplateConfig(path, false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	settings, err := config.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if settings.TlsPort != config.Defaults().TlsPort {
		t.Errorf("TlsPort = %d", settings.TlsPort)
	}
}
