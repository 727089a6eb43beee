package secrets

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// secretsManagerAPI is the subset of the Secrets Manager client used here.
type secretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSTransport reads secrets from AWS Secrets Manager.
type AWSTransport struct {
	api secretsManagerAPI
}

// NewAWSTransport loads the default AWS configuration chain, optionally pinned
// to a region and a shared-config profile, and returns a transport over it.
// Empty region or profile leave the SDK defaults in place.
func NewAWSTransport(ctx context.Context, region, profile string) (*AWSTransport, error) {
	var opts []func(*awscfg.LoadOptions) error
	if region != "" {
		opts = append(opts, awscfg.WithRegion(region))
	}
	if profile != "" {
		opts = append(opts, awscfg.WithSharedConfigProfile(profile))
	}

	cfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return newAWSTransport(secretsmanager.NewFromConfig(cfg)), nil
}

func newAWSTransport(api secretsManagerAPI) *AWSTransport {
	return &AWSTransport{api: api}
}

// GetSecretValue implements Transport.
func (t *AWSTransport) GetSecretValue(ctx context.Context, secretID string) (RawSecret, error) {
	out, err := t.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return RawSecret{}, fmt.Errorf("secretsmanager.GetSecretValue(%q): %w", secretID, err)
	}

	return RawSecret{
		Text:   out.SecretString,
		Binary: out.SecretBinary,
	}, nil
}
