package config

import (
	"fmt"
	"strings"
)

// Human readable summary printed at startup
func (settings Settings) String() string {
	var b strings.Builder

	row := func(name string, value any) {
		fmt.Fprintf(&b, "  %-22s: %v\n", name, value)
	}

	queueBound := "unbounded"
	switch {
	case settings.QueueMaxBytes == QueueBoundAuto:
		queueBound = "auto (system memory)"
	case settings.QueueMaxBytes > 0:
		queueBound = fmt.Sprintf("%d bytes", settings.QueueMaxBytes)
	}

	revocation := "disabled (no CRLPaths)"
	if len(settings.CRLPaths) > 0 {
		revocation = fmt.Sprintf("%d CRL file(s)", len(settings.CRLPaths))
	}

	b.WriteString("Settings\n")
	b.WriteString("  ---------------------------------------\n")
	row("UDP port", settings.UdpPort)
	row("TLS port", settings.TlsPort)
	row("Certificate", settings.CertificatePath)
	row("Client auth required", settings.AuthRequired)
	row("Revocation checking", revocation)
	row("Display timestamps", settings.DisplayTimestamps)
	row("Log file directory", settings.LogFileDirectory)
	row("Log filename", settings.LogFilename)
	row("Writer interval", fmt.Sprintf("%ds", settings.LogWriterIntervalSec))
	row("Writer failure policy", settings.WriterFailurePolicy)
	row("Queue bound", queueBound)
	if settings.BeatsEndpoint != "" {
		row("Beats mirror", settings.BeatsEndpoint)
	}
	if settings.JournaldURL != "" {
		row("Journald mirror", settings.JournaldURL)
	}
	b.WriteString("  ---------------------------------------\n")
	return b.String()
}
