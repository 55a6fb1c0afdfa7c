package config

import (
	"errors"
	"time"
)

// Returned (wrapped) by Validate for any rejected value
var ErrInvalidSettings = errors.New("invalid settings")

// Sentinel for QueueMaxBytes: derive bound from system memory
const QueueBoundAuto int64 = -1

// Runtime settings, persisted as JSON (syslog.json)
type Settings struct {
	UdpPort              int            `json:"UdpPort" mapstructure:"UdpPort"`
	TlsPort              int            `json:"TlsPort" mapstructure:"TlsPort"`
	CertificatePath      string         `json:"CertificatePath" mapstructure:"CertificatePath"`
	CertificatePassword  string         `json:"CertificatePassword" mapstructure:"CertificatePassword"`
	KeyPath              string         `json:"KeyPath,omitempty" mapstructure:"KeyPath"`
	ClientCAPath         string         `json:"ClientCAPath,omitempty" mapstructure:"ClientCAPath"`
	CRLPaths             []string       `json:"CRLPaths,omitempty" mapstructure:"CRLPaths"`
	AuthRequired         bool           `json:"AuthRequired" mapstructure:"AuthRequired"`
	DisplayTimestamps    bool           `json:"DisplayTimestamps" mapstructure:"DisplayTimestamps"`
	LogFileDirectory     string         `json:"LogFileDirectory" mapstructure:"LogFileDirectory"`
	LogFilename          string         `json:"LogFilename" mapstructure:"LogFilename"`
	LogWriterIntervalSec int            `json:"LogWriterIntervalSec" mapstructure:"LogWriterIntervalSec"`
	WriterPollInterval   string         `json:"WriterPollInterval" mapstructure:"WriterPollInterval"`
	WriterFailurePolicy  string         `json:"WriterFailurePolicy" mapstructure:"WriterFailurePolicy"`
	QueueMaxBytes        int64          `json:"QueueMaxBytes" mapstructure:"QueueMaxBytes"`
	MaxLineSize          int            `json:"MaxLineSize" mapstructure:"MaxLineSize"`
	BeatsEndpoint        string         `json:"BeatsEndpoint,omitempty" mapstructure:"BeatsEndpoint"`
	JournaldURL          string         `json:"JournaldURL,omitempty" mapstructure:"JournaldURL"`
	Metrics              MetricSettings `json:"Metrics" mapstructure:"Metrics"`

	// Parsed from the string durations by Validate
	pollInterval    time.Duration
	metricInterval  time.Duration
	metricRetention time.Duration
}

type MetricSettings struct {
	Enabled     bool   `json:"Enabled" mapstructure:"Enabled"`
	Interval    string `json:"Interval" mapstructure:"Interval"`
	Retention   string `json:"Retention" mapstructure:"Retention"`
	QueryServer bool   `json:"QueryServer" mapstructure:"QueryServer"`
	QueryPort   int    `json:"QueryPort" mapstructure:"QueryPort"`
}
