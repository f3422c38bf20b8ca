package utils

import (
	"context"
	"errors"
	"net"
	"strconv"

	openaisdk "github.com/openai/openai-go"
	"github.com/sashabaranov/go-openai"
)

// UpstreamStatus returns the HTTP status reported by the completion API, or
// 0 when the failure never produced a response.
func UpstreamStatus(err error) int {
	if err == nil {
		return 0
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	var sdkErr *openaisdk.Error
	if errors.As(err, &sdkErr) {
		return sdkErr.StatusCode
	}
	return 0
}

// UpstreamReason is a low-cardinality label for a failed completion call.
func UpstreamReason(err error) string {
	if err == nil {
		return "none"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	if status := UpstreamStatus(err); status != 0 {
		return strconv.Itoa(status)
	}
	return "transport"
}
