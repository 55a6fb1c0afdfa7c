package journald

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"syslogsrv/internal/global"
	"time"
)

// Creates new journald output module. Tests connection. Returns nil nil if no url.
// On a failed test the module is still returned, later uploads retry on their own.
func NewOutput(endpoint string) (module *OutModule, err error) {
	if endpoint == "" {
		return
	}

	baseURL, err := url.Parse(endpoint)
	if err != nil {
		err = fmt.Errorf("invalid journald URL: %w", err)
		return
	}
	messagePublishPath := &url.URL{Path: "upload"} // Only path accepted by the remote server

	transport := &http.Transport{
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: -1, // Not supported by journal remote server
	}

	module = &OutModule{
		url: baseURL.ResolveReference(messagePublishPath).String(),
		sink: &http.Client{
			Transport: transport,
			Timeout:   global.JournaldUploadTimeout,
		},
	}

	testCtx, cancel := context.WithTimeout(context.Background(), global.MirrorConnectTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(testCtx, http.MethodPost, module.url, bytes.NewReader(nil))
	if err != nil {
		err = fmt.Errorf("failed to create test HTTP connection to journald: %w", err)
		return
	}
	req.Header.Set("Content-Type", exportContentType)

	resp, err := module.sink.Do(req)
	if err != nil {
		err = fmt.Errorf("failed to test HTTP connection to journald: %w", err)
		return
	}
	resp.Body.Close()
	return
}
