package config

import (
	"syslogsrv/internal/global"
	"syslogsrv/internal/writer"

	"github.com/spf13/viper"
)

// Settings with every field at its default value (already validated)
func Defaults() (settings Settings) {
	settings = Settings{
		UdpPort:              global.DefaultUDPPort,
		TlsPort:              global.DefaultTLSPort,
		CertificatePath:      global.DefaultCertificatePath,
		LogFileDirectory:     global.DefaultLogFileDirectory,
		LogFilename:          global.DefaultLogFilename,
		LogWriterIntervalSec: global.DefaultWriterIntervalSec,
		WriterPollInterval:   global.DefaultWriterPollInterval.String(),
		WriterFailurePolicy:  writer.PolicyExit,
		MaxLineSize:          global.DefaultMaxLineSize,
		Metrics: MetricSettings{
			Enabled:   true,
			Interval:  global.DefaultMetricInterval.String(),
			Retention: global.DefaultMetricRetention.String(),
			QueryPort: global.HTTPListenPort,
		},
		pollInterval:    global.DefaultWriterPollInterval,
		metricInterval:  global.DefaultMetricInterval,
		metricRetention: global.DefaultMetricRetention,
	}
	return
}

// Registers defaults so missing keys (and env-only keys) resolve
func setDefaults(v *viper.Viper) {
	def := Defaults()
	v.SetDefault("UdpPort", def.UdpPort)
	v.SetDefault("TlsPort", def.TlsPort)
	v.SetDefault("CertificatePath", def.CertificatePath)
	v.SetDefault("CertificatePassword", def.CertificatePassword)
	v.SetDefault("KeyPath", def.KeyPath)
	v.SetDefault("ClientCAPath", def.ClientCAPath)
	v.SetDefault("CRLPaths", []string{})
	v.SetDefault("AuthRequired", def.AuthRequired)
	v.SetDefault("DisplayTimestamps", def.DisplayTimestamps)
	v.SetDefault("LogFileDirectory", def.LogFileDirectory)
	v.SetDefault("LogFilename", def.LogFilename)
	v.SetDefault("LogWriterIntervalSec", def.LogWriterIntervalSec)
	v.SetDefault("WriterPollInterval", def.WriterPollInterval)
	v.SetDefault("WriterFailurePolicy", def.WriterFailurePolicy)
	v.SetDefault("QueueMaxBytes", def.QueueMaxBytes)
	v.SetDefault("MaxLineSize", def.MaxLineSize)
	v.SetDefault("BeatsEndpoint", def.BeatsEndpoint)
	v.SetDefault("JournaldURL", def.JournaldURL)
	v.SetDefault("Metrics.Enabled", def.Metrics.Enabled)
	v.SetDefault("Metrics.Interval", def.Metrics.Interval)
	v.SetDefault("Metrics.Retention", def.Metrics.Retention)
	v.SetDefault("Metrics.QueryServer", def.Metrics.QueryServer)
	v.SetDefault("Metrics.QueryPort", def.Metrics.QueryPort)
}
