package config

import (
	"fmt"
	"net/url"
	"strings"
	"syslogsrv/internal/writer"
	"time"
)

// Checks every value and resolves duration strings. Errors wrap ErrInvalidSettings.
func (settings *Settings) Validate() (err error) {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidSettings, fmt.Sprintf(format, args...))
	}

	if settings.UdpPort < 0 || settings.UdpPort > 65535 {
		err = invalid("UdpPort %d out of range 0-65535", settings.UdpPort)
		return
	}
	if settings.TlsPort < 0 || settings.TlsPort > 65535 {
		err = invalid("TlsPort %d out of range 0-65535", settings.TlsPort)
		return
	}
	if settings.LogWriterIntervalSec < 1 {
		err = invalid("LogWriterIntervalSec must be at least 1, got %d", settings.LogWriterIntervalSec)
		return
	}
	if strings.TrimSpace(settings.LogFileDirectory) == "" {
		err = invalid("LogFileDirectory must not be empty")
		return
	}
	if strings.TrimSpace(settings.LogFilename) == "" || strings.ContainsAny(settings.LogFilename, `/\`) {
		err = invalid("LogFilename '%s' must be a plain file name", settings.LogFilename)
		return
	}
	if settings.CertificatePath == "" {
		err = invalid("CertificatePath must not be empty")
		return
	}

	settings.WriterFailurePolicy = strings.ToLower(strings.TrimSpace(settings.WriterFailurePolicy))
	switch settings.WriterFailurePolicy {
	case "":
		settings.WriterFailurePolicy = writer.PolicyExit
	case writer.PolicyExit, writer.PolicyRetain:
	default:
		err = invalid("unknown WriterFailurePolicy '%s' (expected %s or %s)",
			settings.WriterFailurePolicy, writer.PolicyExit, writer.PolicyRetain)
		return
	}

	if settings.QueueMaxBytes < QueueBoundAuto {
		err = invalid("QueueMaxBytes must be -1 (auto), 0 (unbounded) or positive, got %d", settings.QueueMaxBytes)
		return
	}
	if settings.MaxLineSize < 1 {
		err = invalid("MaxLineSize must be positive, got %d", settings.MaxLineSize)
		return
	}

	if settings.JournaldURL != "" {
		parsed, parseErr := url.Parse(settings.JournaldURL)
		if parseErr != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			err = invalid("JournaldURL '%s' must be an http(s) URL", settings.JournaldURL)
			return
		}
	}

	settings.pollInterval, err = parsePositive("WriterPollInterval", settings.WriterPollInterval)
	if err != nil {
		return
	}

	if settings.Metrics.Enabled {
		settings.metricInterval, err = parsePositive("Metrics.Interval", settings.Metrics.Interval)
		if err != nil {
			return
		}
		settings.metricRetention, err = parsePositive("Metrics.Retention", settings.Metrics.Retention)
		if err != nil {
			return
		}
		if settings.Metrics.QueryServer && (settings.Metrics.QueryPort < 1 || settings.Metrics.QueryPort > 65535) {
			err = invalid("Metrics.QueryPort %d out of range 1-65535", settings.Metrics.QueryPort)
			return
		}
	}
	return
}

func parsePositive(name, raw string) (duration time.Duration, err error) {
	duration, err = time.ParseDuration(raw)
	if err != nil {
		err = fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidSettings, name, err)
		return
	}
	if duration <= 0 {
		err = fmt.Errorf("%w: %s must be positive, got %s", ErrInvalidSettings, name, raw)
		return
	}
	return
}

// Minimum time between two flushes
func (settings Settings) WriterInterval() time.Duration {
	return time.Duration(settings.LogWriterIntervalSec) * time.Second
}

// Writer polling granularity
func (settings Settings) PollInterval() time.Duration {
	return settings.pollInterval
}

func (settings Settings) MetricInterval() time.Duration {
	return settings.metricInterval
}

func (settings Settings) MetricRetention() time.Duration {
	return settings.metricRetention
}
