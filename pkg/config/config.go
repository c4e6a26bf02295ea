// Package config loads process configuration from the environment and
// builds the AWS SDK configuration used by the EC2 adapter.
package config

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// AWSConfig holds the AWS connection settings
type AWSConfig struct {
	Region          string
	Endpoint        string // LocalStack or a custom EC2 endpoint
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Profile         string
}

// Config is the process-wide configuration, read once at startup.
type Config struct {
	AWS AWSConfig

	// LogDevelopment switches the zap logger to human-readable console output.
	LogDevelopment bool
}

// FromEnv reads the configuration from environment variables.
// Region is left empty when unset so the SDK default chain can resolve it.
func FromEnv() *Config {
	return &Config{
		AWS: AWSConfig{
			Region:          os.Getenv("AWS_REGION"),
			Endpoint:        os.Getenv("AWS_ENDPOINT_URL"),
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
			Profile:         os.Getenv("AWS_PROFILE"),
		},
		LogDevelopment: getEnvBool("LOG_DEVELOPMENT", false),
	}
}

// IsLambda reports whether the process runs inside the Lambda runtime.
func IsLambda() bool {
	return os.Getenv("AWS_LAMBDA_RUNTIME_API") != ""
}

// LoadOptions returns the SDK load options derived from c.
func (c AWSConfig) LoadOptions() []func(*awsconfig.LoadOptions) error {
	var opts []func(*awsconfig.LoadOptions) error

	if c.Region != "" {
		opts = append(opts, awsconfig.WithRegion(c.Region))
	}

	// Static credentials win over a named profile; otherwise the default
	// chain (env vars, Lambda execution role, ...) applies.
	if c.AccessKeyID != "" && c.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				c.AccessKeyID,
				c.SecretAccessKey,
				c.SessionToken,
			),
		))
	} else if c.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(c.Profile))
	}

	return opts
}

// GetAWSConfig returns an AWS SDK configuration
func (c AWSConfig) GetAWSConfig(ctx context.Context) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, c.LoadOptions()...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	if c.Endpoint != "" {
		awsCfg.BaseEndpoint = aws.String(c.Endpoint)
	}

	return awsCfg, nil
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}
