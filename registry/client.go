package registry

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/aws/aws-sdk-go-v2/service/organizations"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// LambdaAPI is the subset of the Lambda client AWSClient calls.
type LambdaAPI interface {
	lambda.ListLayersAPIClient
	lambda.ListLayerVersionsAPIClient
	PublishLayerVersion(ctx context.Context, params *lambda.PublishLayerVersionInput, optFns ...func(*lambda.Options)) (*lambda.PublishLayerVersionOutput, error)
	AddLayerVersionPermission(ctx context.Context, params *lambda.AddLayerVersionPermissionInput, optFns ...func(*lambda.Options)) (*lambda.AddLayerVersionPermissionOutput, error)
}

type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

type OrganizationsAPI interface {
	DescribeOrganization(ctx context.Context, params *organizations.DescribeOrganizationInput, optFns ...func(*organizations.Options)) (*organizations.DescribeOrganizationOutput, error)
}

// AWSClient implements Client and Identity against AWS.
type AWSClient struct {
	lambda LambdaAPI
	sts    STSAPI
	orgs   OrganizationsAPI
}

// NewAWSClient creates service clients from a resolved AWS configuration.
func NewAWSClient(cfg aws.Config) *AWSClient {
	return NewAWSClientFromAPIs(
		lambda.NewFromConfig(cfg),
		sts.NewFromConfig(cfg),
		organizations.NewFromConfig(cfg),
	)
}

func NewAWSClientFromAPIs(l LambdaAPI, s STSAPI, o OrganizationsAPI) *AWSClient {
	return &AWSClient{lambda: l, sts: s, orgs: o}
}

func (c *AWSClient) ListLayers(ctx context.Context, runtime string) ([]LayerSummary, error) {
	input := &lambda.ListLayersInput{}
	if runtime != "" {
		input.CompatibleRuntime = lambdatypes.Runtime(runtime)
	}

	var layers []LayerSummary
	paginator := lambda.NewListLayersPaginator(c.lambda, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list layers: %w", err)
		}
		for _, item := range page.Layers {
			layers = append(layers, layerSummaryFromAPI(item))
		}
	}
	return layers, nil
}

func (c *AWSClient) ListLayerVersions(ctx context.Context, layer, runtime string) ([]LayerVersion, error) {
	input := &lambda.ListLayerVersionsInput{LayerName: aws.String(layer)}
	if runtime != "" {
		input.CompatibleRuntime = lambdatypes.Runtime(runtime)
	}

	var versions []LayerVersion
	paginator := lambda.NewListLayerVersionsPaginator(c.lambda, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list versions of layer %s: %w", layer, err)
		}
		for _, item := range page.LayerVersions {
			versions = append(versions, layerVersionFromAPI(item))
		}
	}
	return versions, nil
}

func (c *AWSClient) PublishLayerVersion(ctx context.Context, in PublishInput) (*PublishedLayerVersion, error) {
	out, err := c.lambda.PublishLayerVersion(ctx, &lambda.PublishLayerVersionInput{
		LayerName:          aws.String(in.LayerName),
		Description:        aws.String(in.Description),
		Content:            &lambdatypes.LayerVersionContentInput{ZipFile: in.ZipFile},
		CompatibleRuntimes: runtimesToAPI(in.CompatibleRuntimes),
	})
	if err != nil {
		return nil, fmt.Errorf("publish layer %s: %w", in.LayerName, err)
	}

	published := &PublishedLayerVersion{
		LayerArn:           aws.ToString(out.LayerArn),
		LayerVersionArn:    aws.ToString(out.LayerVersionArn),
		Description:        aws.ToString(out.Description),
		CreatedDate:        aws.ToString(out.CreatedDate),
		Version:            out.Version,
		CompatibleRuntimes: runtimesFromAPI(out.CompatibleRuntimes),
	}
	if out.Content != nil {
		published.Content = LayerContent{
			Location:   aws.ToString(out.Content.Location),
			CodeSha256: aws.ToString(out.Content.CodeSha256),
			CodeSize:   out.Content.CodeSize,
		}
	}
	return published, nil
}

func (c *AWSClient) AddLayerVersionPermission(ctx context.Context, in PermissionInput) error {
	input := &lambda.AddLayerVersionPermissionInput{
		LayerName:     aws.String(in.LayerName),
		VersionNumber: aws.Int64(in.VersionNumber),
		Action:        aws.String(in.Action),
		StatementId:   aws.String(in.StatementID),
		Principal:     aws.String(in.Principal),
	}
	if in.OrganizationID != "" {
		input.OrganizationId = aws.String(in.OrganizationID)
	}

	if _, err := c.lambda.AddLayerVersionPermission(ctx, input); err != nil {
		return fmt.Errorf("add permission to %s version %d: %w", in.LayerName, in.VersionNumber, err)
	}
	return nil
}

func (c *AWSClient) CallerAccount(ctx context.Context) (string, error) {
	out, err := c.sts.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("get caller identity: %w", err)
	}
	return aws.ToString(out.Account), nil
}

func (c *AWSClient) CallerOrganization(ctx context.Context) (string, error) {
	out, err := c.orgs.DescribeOrganization(ctx, &organizations.DescribeOrganizationInput{})
	if err != nil {
		return "", fmt.Errorf("describe organization: %w", err)
	}
	if out.Organization == nil {
		return "", nil
	}
	return aws.ToString(out.Organization.Id), nil
}

func layerSummaryFromAPI(item lambdatypes.LayersListItem) LayerSummary {
	summary := LayerSummary{
		LayerName: aws.ToString(item.LayerName),
		LayerArn:  aws.ToString(item.LayerArn),
	}
	if item.LatestMatchingVersion != nil {
		latest := layerVersionFromAPI(*item.LatestMatchingVersion)
		summary.LatestMatchingVersion = &latest
	}
	return summary
}

func layerVersionFromAPI(item lambdatypes.LayerVersionsListItem) LayerVersion {
	return LayerVersion{
		LayerVersionArn:    aws.ToString(item.LayerVersionArn),
		Version:            item.Version,
		Description:        aws.ToString(item.Description),
		CreatedDate:        aws.ToString(item.CreatedDate),
		CompatibleRuntimes: runtimesFromAPI(item.CompatibleRuntimes),
		LicenseInfo:        aws.ToString(item.LicenseInfo),
	}
}

func runtimesToAPI(runtimes []string) []lambdatypes.Runtime {
	if len(runtimes) == 0 {
		return nil
	}
	out := make([]lambdatypes.Runtime, len(runtimes))
	for i, r := range runtimes {
		out[i] = lambdatypes.Runtime(r)
	}
	return out
}

func runtimesFromAPI(runtimes []lambdatypes.Runtime) []string {
	if len(runtimes) == 0 {
		return nil
	}
	out := make([]string, len(runtimes))
	for i, r := range runtimes {
		out[i] = string(r)
	}
	return out
}

var (
	_ Client   = (*AWSClient)(nil)
	_ Identity = (*AWSClient)(nil)
)
