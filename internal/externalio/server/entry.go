// HTTP server exposing collector metrics to programs on the local system
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"syslogsrv/internal/global"
	"syslogsrv/internal/logctx"
	"time"
)

// Sets up HTTP server configuration for metric querying on localhost:port
func SetupListener(ctx context.Context, port int, queries Queries) (server *http.Server) {
	ctx = logctx.AppendCtxTag(ctx, global.NSMetricSrv)
	requestMultiplexer := http.NewServeMux()

	base := "http://" + net.JoinHostPort(global.HTTPListenAddr, strconv.Itoa(port))
	index := JIndex{
		Service: "syslogsrv",
		Version: global.ProgVersion,
		Endpoints: map[string]string{
			"discover":  base + global.DiscoveryPath + "<namespace>?name=&description=&unit=&type=",
			"data":      base + global.DataPath + "<namespace>?name=&starttime=&endtime=",
			"aggregate": base + global.AggregationPath + "<namespace>?name=&aggregation=sum|min|max|avg&starttime=&endtime=",
		},
	}

	getOnly := func(handler func(http.ResponseWriter, *http.Request)) func(http.ResponseWriter, *http.Request) {
		return func(serverResponder http.ResponseWriter, clientRequest *http.Request) {
			if clientRequest.Method != http.MethodGet {
				serverResponder.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			handler(serverResponder, clientRequest)
		}
	}

	// Root endpoint index
	requestMultiplexer.HandleFunc("/", getOnly(func(serverResponder http.ResponseWriter, clientRequest *http.Request) {
		if clientRequest.URL.Path != "/" {
			serverResponder.WriteHeader(http.StatusNotFound)
			return
		}
		jResp(ctx, serverResponder, index)
	}))

	requestMultiplexer.HandleFunc(global.DiscoveryPath, getOnly(func(serverResponder http.ResponseWriter, clientRequest *http.Request) {
		handleDiscovery(ctx, queries.Discover, serverResponder, clientRequest)
	}))

	requestMultiplexer.HandleFunc(global.DataPath, getOnly(func(serverResponder http.ResponseWriter, clientRequest *http.Request) {
		handleData(ctx, queries.Search, serverResponder, clientRequest)
	}))

	requestMultiplexer.HandleFunc(global.AggregationPath, getOnly(func(serverResponder http.ResponseWriter, clientRequest *http.Request) {
		handleAggregation(ctx, queries.Aggregate, serverResponder, clientRequest)
	}))

	server = &http.Server{
		Addr:         net.JoinHostPort(global.HTTPListenAddr, strconv.Itoa(port)),
		Handler:      requestMultiplexer,
		ReadTimeout:  global.HTTPReadTimeout,
		WriteTimeout: global.HTTPWriteTimeout,
		IdleTimeout:  global.HTTPIdleTimeout,
		ErrorLog:     log.New(httpLogWriter{ctx: ctx}, "", 0),
	}
	return
}

// Serves requests until Stop. Returns nil after a graceful stop.
func Start(ctx context.Context, server *http.Server) (err error) {
	ctx = logctx.AppendCtxTag(ctx, global.NSMetricSrv)
	logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog,
		"Metric query server starting on http://%s/\n", server.Addr)

	err = server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
		return
	}
	logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "Metric query server failed: %v\n", err)
	return
}

// Gracefully stops the server, waiting at most timeout for in-flight requests
func Stop(server *http.Server, timeout time.Duration) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	err = server.Shutdown(ctx)
	return
}

// Encodes JSON and sends as response body
func jResp(ctx context.Context, serverResponder http.ResponseWriter, content any) {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(content); err != nil {
		serverResponder.WriteHeader(http.StatusInternalServerError)
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "Failed marshaling metric results: %v\n", err)
		return
	}
	serverResponder.Header().Set("Content-Type", "application/json")
	serverResponder.WriteHeader(http.StatusOK)
	serverResponder.Write(buf.Bytes())
}

// Logs HTTP server errors to the program logger
func (logWriter httpLogWriter) Write(p []byte) (n int, err error) {
	n = len(p)
	if n == 0 {
		return
	}
	logctx.LogEvent(logWriter.ctx, global.VerbosityStandard, global.ErrorLog,
		"%s\n", strings.TrimSpace(string(p)))
	return
}
