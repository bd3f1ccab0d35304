package registry

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"

	lerrors "github.com/invenia/lambdalayers/internal/errors"
)

// LoadAWSConfig resolves credentials and region the way the AWS CLI does:
// environment, then the shared config and credentials files for profile.
// An explicit region wins over every other source. A configuration that
// still has no region is rejected with a NoRegion error.
func LoadAWSConfig(ctx context.Context, profile, region string) (aws.Config, error) {
	var opts []func(*config.LoadOptions) error
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		b := lerrors.NewErrorBuilder().
			Category(lerrors.ErrorCategoryConfiguration).
			Operation("load_aws_config").
			Message("failed to load AWS configuration").
			Cause(err).
			Suggestion("Check the profile exists in your AWS config and credentials files")
		if profile != "" {
			b.Metadata("profile", profile)
		}
		return aws.Config{}, b.Build()
	}

	if cfg.Region == "" {
		return aws.Config{}, lerrors.NoRegion(profile)
	}
	return cfg, nil
}
