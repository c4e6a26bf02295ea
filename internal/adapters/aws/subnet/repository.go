package subnet

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsec2 "github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"subnet-tagger/pkg/metrics"
)

// EC2API is the subset of the EC2 client the repository calls.
type EC2API interface {
	awsec2.DescribeSubnetsAPIClient
	CreateTags(ctx context.Context, params *awsec2.CreateTagsInput, optFns ...func(*awsec2.Options)) (*awsec2.CreateTagsOutput, error)
	DeleteTags(ctx context.Context, params *awsec2.DeleteTagsInput, optFns ...func(*awsec2.Options)) (*awsec2.DeleteTagsOutput, error)
}

type Repository struct {
	client EC2API
}

func NewRepository(cfg aws.Config) *Repository {
	return &Repository{
		client: awsec2.NewFromConfig(cfg),
	}
}

func NewRepositoryWithClient(client EC2API) *Repository {
	return &Repository{client: client}
}

// ListTagged pages through DescribeSubnets using the tag-key filter, which
// matches the key regardless of its value.
func (r *Repository) ListTagged(ctx context.Context, key string) ([]string, error) {
	paginator := awsec2.NewDescribeSubnetsPaginator(r.client, &awsec2.DescribeSubnetsInput{
		Filters: []types.Filter{
			{
				Name:   aws.String("tag-key"),
				Values: []string{key},
			},
		},
	})

	var ids []string
	for paginator.HasMorePages() {
		recorder := metrics.NewAWSAPIMetricsRecorder(metrics.OperationDescribeSubnets)
		page, err := paginator.NextPage(ctx)
		if err != nil {
			recorder.RecordError(err)
			return nil, fmt.Errorf("failed to describe subnets tagged %s: %w", key, err)
		}
		recorder.RecordSuccess()

		for _, s := range page.Subnets {
			if id := aws.ToString(s.SubnetId); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}

func (r *Repository) Tag(ctx context.Context, subnetID, key, value string) error {
	recorder := metrics.NewAWSAPIMetricsRecorder(metrics.OperationCreateTags)
	_, err := r.client.CreateTags(ctx, &awsec2.CreateTagsInput{
		Resources: []string{subnetID},
		Tags: []types.Tag{
			{
				Key:   aws.String(key),
				Value: aws.String(value),
			},
		},
	})
	if err != nil {
		recorder.RecordError(err)
		return fmt.Errorf("failed to tag subnet %s: %w", subnetID, err)
	}
	recorder.RecordSuccess()
	return nil
}

// Untag omits the tag value so EC2 deletes the key whatever it is set to.
func (r *Repository) Untag(ctx context.Context, subnetID, key string) error {
	recorder := metrics.NewAWSAPIMetricsRecorder(metrics.OperationDeleteTags)
	_, err := r.client.DeleteTags(ctx, &awsec2.DeleteTagsInput{
		Resources: []string{subnetID},
		Tags:      []types.Tag{{Key: aws.String(key)}},
	})
	if err != nil {
		recorder.RecordError(err)
		return fmt.Errorf("failed to untag subnet %s: %w", subnetID, err)
	}
	recorder.RecordSuccess()
	return nil
}
