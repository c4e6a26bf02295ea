// Package metrics provides helpers for recording metrics in a consistent way.
package metrics

import (
	"errors"
	"time"

	"github.com/aws/smithy-go"
)

// ============================================
// Invocation Metrics Recorder
// ============================================

// InvocationMetricsRecorder times one lifecycle event.
// Usage:
//
//	recorder := metrics.NewInvocationMetricsRecorder("Update")
//	defer func() { recorder.Record(err) }()
type InvocationMetricsRecorder struct {
	requestType string
	startTime   time.Time
}

func NewInvocationMetricsRecorder(requestType string) *InvocationMetricsRecorder {
	return &InvocationMetricsRecorder{
		requestType: requestType,
		startTime:   time.Now(),
	}
}

// Record counts the invocation as success when err is nil and observes its duration.
func (r *InvocationMetricsRecorder) Record(err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	InvocationsTotal.WithLabelValues(r.requestType, result).Inc()
	InvocationDuration.WithLabelValues(r.requestType).Observe(time.Since(r.startTime).Seconds())
}

// ============================================
// AWS API Metrics Recorder
// ============================================

// AWSAPIMetricsRecorder helps record EC2 API call metrics consistently.
// Usage:
//
//	recorder := metrics.NewAWSAPIMetricsRecorder(metrics.OperationCreateTags)
//	_, err := r.client.CreateTags(ctx, input)
//	if err != nil {
//		recorder.RecordError(err)
//		return err
//	}
//	recorder.RecordSuccess()
type AWSAPIMetricsRecorder struct {
	operation string
	startTime time.Time
}

// NewAWSAPIMetricsRecorder starts timing an API call.
func NewAWSAPIMetricsRecorder(operation string) *AWSAPIMetricsRecorder {
	return &AWSAPIMetricsRecorder{
		operation: operation,
		startTime: time.Now(),
	}
}

func (a *AWSAPIMetricsRecorder) RecordSuccess() {
	AWSAPICallsTotal.WithLabelValues(a.operation, ResultSuccess).Inc()
	AWSAPICallDuration.WithLabelValues(a.operation).Observe(time.Since(a.startTime).Seconds())
}

// RecordError records a failed call labelled with the AWS error code.
func (a *AWSAPIMetricsRecorder) RecordError(err error) {
	errorCode := ExtractAWSErrorCode(err)

	AWSAPICallsTotal.WithLabelValues(a.operation, ResultError).Inc()
	AWSAPICallDuration.WithLabelValues(a.operation).Observe(time.Since(a.startTime).Seconds())
	AWSAPIErrors.WithLabelValues(a.operation, errorCode).Inc()

	if isThrottlingError(errorCode) {
		AWSAPIThrottles.WithLabelValues(a.operation).Inc()
	}
}

// ExtractAWSErrorCode returns the smithy API error code, or "Unknown".
func ExtractAWSErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return "Unknown"
}

func isThrottlingError(errorCode string) bool {
	switch errorCode {
	case "Throttling", "ThrottlingException", "RequestLimitExceeded", "TooManyRequestsException", "RequestThrottled":
		return true
	}
	return false
}

// ============================================
// Tag Change Helpers
// ============================================

func RecordSubnetTagged() {
	SubnetTagChanges.WithLabelValues(ActionAdd).Inc()
}

func RecordSubnetUntagged() {
	SubnetTagChanges.WithLabelValues(ActionRemove).Inc()
}
