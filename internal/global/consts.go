package global

import "time"

const (
	// Descriptive Names for available verbosity levels
	VerbosityNone int = iota
	VerbosityStandard
	VerbosityProgress
	VerbosityData
	VerbosityFullData
	VerbosityDebug

	// Descriptive names for available severity levels
	ErrorLog string = "Error"
	WarnLog  string = "Warn"
	InfoLog  string = "Info"
)

const (
	ProgVersion string = "v1.2.0"

	// Context keys
	LoggerKey  CtxKey = "logger"  // Event queue (mostly for variable log verbosity handling)
	LogTagsKey CtxKey = "logtags" // List of tags in order of broad->specific appended/popped at various parts of the program

	DefaultBinaryPath     string = "/usr/local/bin/syslogsrv"
	DefaultConfigPath     string = "syslog.json"
	DefaultConfigDir      string = "/etc/syslogsrv"
	DefaultServiceConfig  string = DefaultConfigDir + "/" + DefaultConfigPath
	DefaultServiceLogDir  string = "/var/log/syslogsrv/"
	DefaultServiceCert    string = DefaultConfigDir + "/server.pem"
	DefaultServiceUnit    string = "/etc/systemd/system/syslogsrv.service"
	DefaultAAProfName     string = "usr.local.bin.syslogsrv"
	DefaultCompletionName string = "syslogsrv"
	EnvPrefix             string = "SYSLOGSRV"

	// Settings defaults
	DefaultUDPPort            int           = 514
	DefaultTLSPort            int           = 6514
	DefaultCertificatePath    string        = "mycert.pfx"
	DefaultLogFileDirectory   string        = "./logs/"
	DefaultLogFilename        string        = "log.txt"
	DefaultWriterIntervalSec  int           = 10
	DefaultWriterPollInterval time.Duration = 1 * time.Second
	DefaultMaxLineSize        int           = 64 * 1024
	DefaultMetricInterval     time.Duration = 15 * time.Second
	DefaultMetricRetention    time.Duration = 1 * time.Hour

	// Output formats
	MessageTimestampLayout string = "01/02/2006 15:04:05" // Prefix for received messages and file headers
	LogFileDateLayout      string = "20060102"            // Bucket prefix for output files
	LogFileHeaderFormat    string = "--- Creating log file at %s ---"

	// Connection handling
	TLSHandshakeTimeout time.Duration = 10 * time.Second
	AcceptRetryMin      time.Duration = 5 * time.Millisecond
	AcceptRetryMax      time.Duration = 1 * time.Second
	UDPMaxDatagramSize  int           = 65535

	// Mirrors
	MirrorConnectTimeout  time.Duration = 3 * time.Second
	JournaldUploadTimeout time.Duration = 10 * time.Second

	// Timeout values
	ShutdownTimeout time.Duration = 20 * time.Second

	// Metric HTTP server
	HTTPListenPort   int           = 20000 + DefaultUDPPort // Default listen port
	HTTPListenAddr   string        = "localhost"            // Metric queries only exposed to local machine
	HTTPReadTimeout  time.Duration = 30 * time.Second
	HTTPWriteTimeout time.Duration = 10 * time.Second
	HTTPIdleTimeout  time.Duration = 180 * time.Second
	DataPath         string        = "/data/"
	DiscoveryPath    string        = "/discover/"
	AggregationPath  string        = "/aggregate/"

	// Metric aggregation types
	MetricSum string = "sum"
	MetricMin string = "min"
	MetricMax string = "max"
	MetricAvg string = "avg"

	// Namespacing Name Components
	NSMetric    string = "Metrics"
	NSMetricSrv string = "Server"
	NSTest      string = "Test"
	NSCLI       string = "CLI"
	NSCollector string = "Collector"
	NSConfig    string = "Config"
	NSQueue     string = "Queue"
	NSUDP       string = "UDP"
	NSTLS       string = "TLS"
	NSConn      string = "Conn"
	NSWriter    string = "Writer"
	NSBeats     string = "Beats"
	NSSignal    string = "Signal"
)
