// Package ports define as interfaces de portas seguindo Clean Architecture.
//
// Este package contém as abstrações que desacoplam a lógica de negócio das
// implementações concretas, permitindo testabilidade e flexibilidade.
package ports

import (
	"context"

	"subnet-tagger/internal/domain/subnettag"
)

// SubnetTagRepository defines the subnet tagging operations against the cloud provider
type SubnetTagRepository interface {
	// ListTagged returns the ids of every subnet carrying key, whatever its value.
	ListTagged(ctx context.Context, key string) ([]string, error)
	Tag(ctx context.Context, subnetID, key, value string) error
	Untag(ctx context.Context, subnetID, key string) error
}

// SubnetTagUseCase defines the use case interface for the custom resource lifecycle
type SubnetTagUseCase interface {
	Create(ctx context.Context, p *subnettag.Properties) (subnettag.Response, error)
	Update(ctx context.Context, p, old *subnettag.Properties) (subnettag.Response, error)
	Delete(ctx context.Context, p *subnettag.Properties) (subnettag.Response, error)
	Plan(ctx context.Context, p *subnettag.Properties) (*subnettag.Plan, error)
}
