// Package handler dispatches CloudFormation custom-resource lifecycle events
// to the subnet tag use case.
package handler

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"subnet-tagger/internal/domain/subnettag"
	"subnet-tagger/internal/ports"
	"subnet-tagger/pkg/metrics"
)

// Handler is the onEvent handler registered with the CDK Provider framework.
type Handler struct {
	useCase ports.SubnetTagUseCase
}

func New(useCase ports.SubnetTagUseCase) *Handler {
	return &Handler{useCase: useCase}
}

// Handle validates the request type first so an unknown verb fails without
// reading any property, then decodes the properties and runs the use case.
func (h *Handler) Handle(ctx context.Context, event cfn.Event) (resp subnettag.Response, err error) {
	recorder := metrics.NewInvocationMetricsRecorder(string(event.RequestType))
	defer func() { recorder.Record(err) }()

	logger := log.FromContext(ctx).WithValues(
		"requestType", event.RequestType,
		"requestID", event.RequestID,
		"logicalResourceID", event.LogicalResourceID,
	)
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		logger = logger.WithValues("awsRequestID", lc.AwsRequestID)
	}
	ctx = log.IntoContext(ctx, logger)

	requestType, err := subnettag.ParseRequestType(string(event.RequestType))
	if err != nil {
		logger.Error(err, "Rejecting lifecycle event")
		return subnettag.Response{}, err
	}

	props, err := subnettag.PropertiesFromMap(event.ResourceProperties)
	if err != nil {
		logger.Error(err, "Invalid resource properties")
		return subnettag.Response{}, fmt.Errorf("invalid resource properties: %w", err)
	}

	logger.Info("Handling lifecycle event",
		"clusterTag", props.ClusterTag,
		"subnets", props.Subnets,
		"stackName", props.StackName,
	)

	switch requestType {
	case subnettag.RequestCreate:
		resp, err = h.useCase.Create(ctx, props)
	case subnettag.RequestUpdate:
		resp, err = h.useCase.Update(ctx, props, oldProperties(ctx, event))
	case subnettag.RequestDelete:
		resp, err = h.useCase.Delete(ctx, props)
	}
	if err != nil {
		logger.Error(err, "Lifecycle event failed", "clusterTag", props.ClusterTag)
		return subnettag.Response{}, err
	}

	logger.Info("Lifecycle event handled", "clusterTag", props.ClusterTag)
	return resp, nil
}

// Plan returns the tag changes an Update with event's properties would make.
func (h *Handler) Plan(ctx context.Context, event cfn.Event) (*subnettag.Plan, error) {
	props, err := subnettag.PropertiesFromMap(event.ResourceProperties)
	if err != nil {
		return nil, fmt.Errorf("invalid resource properties: %w", err)
	}
	return h.useCase.Plan(ctx, props)
}

// oldProperties decodes OldResourceProperties. They only steer tag-key
// renames, so a malformed old payload is logged and ignored.
func oldProperties(ctx context.Context, event cfn.Event) *subnettag.Properties {
	if len(event.OldResourceProperties) == 0 {
		return nil
	}
	old, err := subnettag.PropertiesFromMap(event.OldResourceProperties)
	if err != nil {
		log.FromContext(ctx).V(1).Info("Ignoring old resource properties", "error", err.Error())
		return nil
	}
	return old
}
