package subnettag

import (
	"context"
	"fmt"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"subnet-tagger/internal/domain/subnettag"
	"subnet-tagger/internal/ports"
	"subnet-tagger/pkg/metrics"
)

// SubnetTagUseCase drives the cluster tag on subnets through a SubnetTagRepository.
// Calls are issued one subnet at a time; the first failure aborts the rest.
type SubnetTagUseCase struct {
	repo ports.SubnetTagRepository
}

func NewSubnetTagUseCase(repo ports.SubnetTagRepository) *SubnetTagUseCase {
	return &SubnetTagUseCase{repo: repo}
}

// Create tags every declared subnet without reading prior state.
func (uc *SubnetTagUseCase) Create(ctx context.Context, p *subnettag.Properties) (subnettag.Response, error) {
	if err := p.Validate(); err != nil {
		return subnettag.Response{}, fmt.Errorf("validation failed: %w", err)
	}

	if err := uc.tagAll(ctx, p.ClusterTag, p.UniqueSubnets()); err != nil {
		return subnettag.Response{}, err
	}
	return subnettag.NewResponse(p.ClusterTag), nil
}

// Update touches only the symmetric difference between the subnets carrying
// the tag and the declared ones. When old names a different tag key, that key
// is first removed from the previously declared subnets.
func (uc *SubnetTagUseCase) Update(ctx context.Context, p, old *subnettag.Properties) (subnettag.Response, error) {
	if err := p.Validate(); err != nil {
		return subnettag.Response{}, fmt.Errorf("validation failed: %w", err)
	}

	logger := log.FromContext(ctx)

	if old != nil && old.ClusterTag != "" && old.ClusterTag != p.ClusterTag {
		logger.Info("Cluster tag changed, removing previous tag",
			"oldClusterTag", old.ClusterTag,
			"clusterTag", p.ClusterTag,
			"subnets", len(old.Subnets),
		)
		if err := uc.untagAll(ctx, old.ClusterTag, old.UniqueSubnets()); err != nil {
			return subnettag.Response{}, err
		}
	}

	plan, err := uc.Plan(ctx, p)
	if err != nil {
		return subnettag.Response{}, err
	}

	logger.Info(plan.String(), "toAdd", plan.ToAdd, "toRemove", plan.ToRemove)

	if err := uc.untagAll(ctx, p.ClusterTag, plan.ToRemove); err != nil {
		return subnettag.Response{}, err
	}
	if err := uc.tagAll(ctx, p.ClusterTag, plan.ToAdd); err != nil {
		return subnettag.Response{}, err
	}
	return subnettag.NewResponse(p.ClusterTag), nil
}

// Delete removes the tag from every declared subnet.
func (uc *SubnetTagUseCase) Delete(ctx context.Context, p *subnettag.Properties) (subnettag.Response, error) {
	if err := p.Validate(); err != nil {
		return subnettag.Response{}, fmt.Errorf("validation failed: %w", err)
	}

	if err := uc.untagAll(ctx, p.ClusterTag, p.UniqueSubnets()); err != nil {
		return subnettag.Response{}, err
	}
	return subnettag.NewResponse(p.ClusterTag), nil
}

// Plan reads the subnets currently carrying the tag and diffs them against p.
func (uc *SubnetTagUseCase) Plan(ctx context.Context, p *subnettag.Properties) (*subnettag.Plan, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	existing, err := uc.repo.ListTagged(ctx, p.ClusterTag)
	if err != nil {
		return nil, err
	}
	return subnettag.NewPlan(p.ClusterTag, p.Subnets, existing), nil
}

func (uc *SubnetTagUseCase) tagAll(ctx context.Context, key string, subnetIDs []string) error {
	logger := log.FromContext(ctx)
	for _, id := range subnetIDs {
		if err := uc.repo.Tag(ctx, id, key, subnettag.TagValue); err != nil {
			return err
		}
		metrics.RecordSubnetTagged()
		logger.V(1).Info("Tagged subnet", "subnetID", id, "clusterTag", key)
	}
	return nil
}

func (uc *SubnetTagUseCase) untagAll(ctx context.Context, key string, subnetIDs []string) error {
	logger := log.FromContext(ctx)
	for _, id := range subnetIDs {
		if err := uc.repo.Untag(ctx, id, key); err != nil {
			return err
		}
		metrics.RecordSubnetUntagged()
		logger.V(1).Info("Untagged subnet", "subnetID", id, "clusterTag", key)
	}
	return nil
}
