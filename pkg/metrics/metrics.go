// Package metrics provides Prometheus metrics for observability of the subnet tagger.
//
// This package exposes metrics about:
// - Lifecycle invocations per request type and result
// - EC2 API call performance, errors and throttling
// - Subnet tag changes applied
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

var (
	// ============================================
	// Invocation Metrics
	// ============================================

	// InvocationsTotal tracks lifecycle events handled.
	// Labels: request_type (Create, Update, Delete, or the invalid value), result (success, error)
	InvocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subnet_tagger_invocations_total",
			Help: "Total number of lifecycle events handled per request type and result",
		},
		[]string{"request_type", "result"},
	)

	// InvocationDuration tracks how long a lifecycle event took to handle.
	InvocationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "subnet_tagger_invocation_duration_seconds",
			Help:    "Duration of lifecycle event handling in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"request_type"},
	)

	// ============================================
	// AWS API Metrics
	// ============================================

	// AWSAPICallsTotal tracks the total number of EC2 API calls.
	// Labels: operation (CreateTags, DeleteTags, DescribeSubnets), result (success, error)
	AWSAPICallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subnet_tagger_aws_api_calls_total",
			Help: "Total number of EC2 API calls by operation and result",
		},
		[]string{"operation", "result"},
	)

	AWSAPICallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "subnet_tagger_aws_api_call_duration_seconds",
			Help:    "Duration of EC2 API calls in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	// AWSAPIErrors tracks EC2 API errors.
	// Labels: operation, error_code (InvalidSubnetID.NotFound, UnauthorizedOperation, etc.)
	AWSAPIErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subnet_tagger_aws_api_errors_total",
			Help: "Total number of EC2 API errors by operation and error code",
		},
		[]string{"operation", "error_code"},
	)

	AWSAPIThrottles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subnet_tagger_aws_api_throttles_total",
			Help: "Total number of EC2 API throttling events (rate limit exceeded)",
		},
		[]string{"operation"},
	)

	// ============================================
	// Tag Metrics
	// ============================================

	// SubnetTagChanges counts subnets tagged or untagged.
	// Labels: action (add, remove)
	SubnetTagChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subnet_tagger_subnet_tag_changes_total",
			Help: "Total number of subnet tag additions and removals",
		},
		[]string{"action"},
	)
)

func init() {
	metrics.Registry.MustRegister(
		InvocationsTotal,
		InvocationDuration,
	)

	metrics.Registry.MustRegister(
		AWSAPICallsTotal,
		AWSAPICallDuration,
		AWSAPIErrors,
		AWSAPIThrottles,
	)

	metrics.Registry.MustRegister(SubnetTagChanges)
}

// EC2 operation names for standardized operation labels
const (
	OperationDescribeSubnets = "DescribeSubnets"
	OperationCreateTags      = "CreateTags"
	OperationDeleteTags      = "DeleteTags"
)

// Tag change actions
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
)

// Common results
const (
	ResultSuccess = "success"
	ResultError   = "error"
)
