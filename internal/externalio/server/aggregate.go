package server

import (
	"context"
	"net/http"
	"syslogsrv/internal/global"
	"time"
)

// Handles metric aggregation over a time window
func handleAggregation(baseCtx context.Context, aggregate AggSearcher, serverResponder http.ResponseWriter, clientRequest *http.Request) {
	reqNamespace := namespaceFromPath(clientRequest.URL.Path, global.AggregationPath)

	reqName := clientRequest.FormValue("name")
	aggType := clientRequest.FormValue("aggregation")

	reqStartTime, reqEndTime, err := parseWindow(clientRequest, time.Now())
	if err != nil {
		serverResponder.WriteHeader(http.StatusBadRequest)
		return
	}

	result, err := aggregate(aggType, reqName, reqNamespace, reqStartTime, reqEndTime)
	if err != nil {
		jResp(baseCtx, serverResponder, Jerror{Msg: err.Error()})
		return
	}
	jResp(baseCtx, serverResponder, result.Convert())
}
