package api

import (
	"strconv"
	"strings"

	"github.com/simplert/srt/internal/ops"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/protoadapt"
)

// A failed StartRelay has no response body, so its progress events travel
// as ErrorInfo details on the status, one per event.

func stepDetail(e ops.ProgressEvent) *errdetails.ErrorInfo {
	return &errdetails.ErrorInfo{
		Reason: strings.ToUpper(e.Status),
		Domain: serviceName,
		Metadata: map[string]string{
			"step":    strconv.Itoa(e.Step),
			"total":   strconv.Itoa(e.Total),
			"label":   e.Label,
			"status":  e.Status,
			"message": e.Message,
			"error":   e.Error,
		},
	}
}

func withSteps(st *status.Status, steps []ops.ProgressEvent) *status.Status {
	if len(steps) == 0 {
		return st
	}
	details := make([]protoadapt.MessageV1, 0, len(steps))
	for _, e := range steps {
		details = append(details, stepDetail(e))
	}
	detailed, err := st.WithDetails(details...)
	if err != nil {
		return st
	}
	return detailed
}

func stepsFromError(err error) []ops.ProgressEvent {
	st, ok := status.FromError(err)
	if !ok {
		return nil
	}
	var steps []ops.ProgressEvent
	for _, d := range st.Details() {
		info, ok := d.(*errdetails.ErrorInfo)
		if !ok || info.GetDomain() != serviceName {
			continue
		}
		md := info.GetMetadata()
		step, _ := strconv.Atoi(md["step"])
		total, _ := strconv.Atoi(md["total"])
		steps = append(steps, ops.ProgressEvent{
			Step:    step,
			Total:   total,
			Label:   md["label"],
			Status:  md["status"],
			Message: md["message"],
			Error:   md["error"],
		})
	}
	return steps
}
