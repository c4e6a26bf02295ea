package subnettag

import (
	"errors"
	"fmt"
)

// TagValue is written on every tagged subnet. Only the key's presence matters.
const TagValue = "1"

// RequestType is the CloudFormation lifecycle verb carried by an event.
type RequestType string

const (
	RequestCreate RequestType = "Create"
	RequestUpdate RequestType = "Update"
	RequestDelete RequestType = "Delete"
)

var (
	ErrInvalidRequestType = errors.New("Invalid request type")
	ErrMissingSubnets     = errors.New("subnets is required")
	ErrEmptySubnetID      = errors.New("Subnet cannot be empty or undefined.")
	ErrMissingClusterTag  = errors.New("clusterTag is required")
	ErrMalformedProperty  = errors.New("malformed resource property")
)

// ParseRequestType returns an error wrapping ErrInvalidRequestType for any
// value other than Create, Update or Delete.
func ParseRequestType(s string) (RequestType, error) {
	switch rt := RequestType(s); rt {
	case RequestCreate, RequestUpdate, RequestDelete:
		return rt, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidRequestType, s)
	}
}

// Properties are the ResourceProperties of the custom resource.
type Properties struct {
	Subnets    []string
	ClusterTag string

	// StackName is injected by the construct and only used for logging.
	StackName string
}

// PropertiesFromMap decodes the untyped property map CloudFormation hands
// to the function. Values arrive as JSON-decoded interfaces.
func PropertiesFromMap(m map[string]interface{}) (*Properties, error) {
	if m == nil {
		return nil, ErrMissingSubnets
	}

	raw, ok := m["subnets"]
	if !ok || raw == nil {
		return nil, ErrMissingSubnets
	}

	var subnets []string
	switch v := raw.(type) {
	case []string:
		subnets = append(subnets, v...)
	case []interface{}:
		subnets = make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: subnets[%d] is %T, want string", ErrMalformedProperty, i, item)
			}
			subnets = append(subnets, s)
		}
	default:
		return nil, fmt.Errorf("%w: subnets is %T, want list of strings", ErrMalformedProperty, raw)
	}

	p := &Properties{Subnets: subnets}

	switch v := m["clusterTag"].(type) {
	case nil:
	case string:
		p.ClusterTag = v
	default:
		return nil, fmt.Errorf("%w: clusterTag is %T, want string", ErrMalformedProperty, v)
	}

	if name, ok := m["stackName"].(string); ok {
		p.StackName = name
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Properties) Validate() error {
	if p.ClusterTag == "" {
		return ErrMissingClusterTag
	}
	for _, id := range p.Subnets {
		if id == "" {
			return ErrEmptySubnetID
		}
	}
	return nil
}

// UniqueSubnets returns the declared subnets with duplicates dropped,
// keeping first-occurrence order.
func (p *Properties) UniqueSubnets() []string {
	seen := make(map[string]struct{}, len(p.Subnets))
	out := make([]string, 0, len(p.Subnets))
	for _, id := range p.Subnets {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Response is returned to the Provider framework on success.
type Response struct {
	Message string `json:"Message"`
}

func NewResponse(clusterTag string) Response {
	return Response{Message: clusterTag}
}
