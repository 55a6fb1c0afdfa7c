package beats

import (
	"fmt"
	"os"
	"syslogsrv/internal/global"
	"time"

	lumberjack "github.com/elastic/go-lumber/client/v2"
)

// Creates new beats (lumberjack) output module. Returns nil nil if no endpoint.
// The first connection is attempted immediately; a failure is returned with a usable
// module that redials on the next write.
func NewOutput(endpoint string) (module *OutModule, err error) {
	if endpoint == "" {
		return
	}

	hostname, _ := os.Hostname()
	module = &OutModule{
		endpoint: endpoint,
		timeout:  global.MirrorConnectTimeout,
		hostname: hostname,
		dial:     dialLumberjack,
	}

	err = module.connect()
	return
}

func dialLumberjack(endpoint string, timeout time.Duration) (client sender, err error) {
	compression := lumberjack.CompressionLevel(0)
	ljTimeout := lumberjack.Timeout(timeout)

	client, err = lumberjack.SyncDial(endpoint, compression, ljTimeout)
	return
}

// Opens the connection if there is none. Caller must not hold the mutex.
func (mod *OutModule) connect() (err error) {
	mod.mutex.Lock()
	defer mod.mutex.Unlock()
	err = mod.connectLocked()
	return
}

func (mod *OutModule) connectLocked() (err error) {
	if mod.sink != nil {
		return
	}
	client, err := mod.dial(mod.endpoint, mod.timeout)
	if err != nil {
		err = fmt.Errorf("failed connection to beats server: %w", err)
		return
	}
	mod.sink = client
	return
}
