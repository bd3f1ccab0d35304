package registry

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/aws/aws-sdk-go-v2/service/organizations"
	orgtypes "github.com/aws/aws-sdk-go-v2/service/organizations/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLambda serves pages by index; the marker is the next page number.
type fakeLambda struct {
	layerPages   [][]lambdatypes.LayersListItem
	versionPages [][]lambdatypes.LayerVersionsListItem

	listLayersInputs   []lambda.ListLayersInput
	listVersionsInputs []lambda.ListLayerVersionsInput
	publishInput       *lambda.PublishLayerVersionInput
	permissionInput    *lambda.AddLayerVersionPermissionInput

	publishOutput *lambda.PublishLayerVersionOutput
	err           error
}

func pageIndex(marker *string) int {
	if marker == nil {
		return 0
	}
	i, _ := strconv.Atoi(*marker)
	return i
}

func nextMarker(i, pages int) *string {
	if i+1 < pages {
		return aws.String(strconv.Itoa(i + 1))
	}
	return nil
}

func (f *fakeLambda) ListLayers(ctx context.Context, in *lambda.ListLayersInput, _ ...func(*lambda.Options)) (*lambda.ListLayersOutput, error) {
	f.listLayersInputs = append(f.listLayersInputs, *in)
	if f.err != nil {
		return nil, f.err
	}
	out := &lambda.ListLayersOutput{}
	if i := pageIndex(in.Marker); i < len(f.layerPages) {
		out.Layers = f.layerPages[i]
		out.NextMarker = nextMarker(i, len(f.layerPages))
	}
	return out, nil
}

func (f *fakeLambda) ListLayerVersions(ctx context.Context, in *lambda.ListLayerVersionsInput, _ ...func(*lambda.Options)) (*lambda.ListLayerVersionsOutput, error) {
	f.listVersionsInputs = append(f.listVersionsInputs, *in)
	if f.err != nil {
		return nil, f.err
	}
	out := &lambda.ListLayerVersionsOutput{}
	if i := pageIndex(in.Marker); i < len(f.versionPages) {
		out.LayerVersions = f.versionPages[i]
		out.NextMarker = nextMarker(i, len(f.versionPages))
	}
	return out, nil
}

func (f *fakeLambda) PublishLayerVersion(ctx context.Context, in *lambda.PublishLayerVersionInput, _ ...func(*lambda.Options)) (*lambda.PublishLayerVersionOutput, error) {
	f.publishInput = in
	if f.err != nil {
		return nil, f.err
	}
	return f.publishOutput, nil
}

func (f *fakeLambda) AddLayerVersionPermission(ctx context.Context, in *lambda.AddLayerVersionPermissionInput, _ ...func(*lambda.Options)) (*lambda.AddLayerVersionPermissionOutput, error) {
	f.permissionInput = in
	if f.err != nil {
		return nil, f.err
	}
	return &lambda.AddLayerVersionPermissionOutput{}, nil
}

type fakeSTS struct {
	account string
	err     error
}

func (f *fakeSTS) GetCallerIdentity(ctx context.Context, _ *sts.GetCallerIdentityInput, _ ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &sts.GetCallerIdentityOutput{Account: aws.String(f.account)}, nil
}

type fakeOrganizations struct {
	id  string
	err error
}

func (f *fakeOrganizations) DescribeOrganization(ctx context.Context, _ *organizations.DescribeOrganizationInput, _ ...func(*organizations.Options)) (*organizations.DescribeOrganizationOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.id == "" {
		return &organizations.DescribeOrganizationOutput{}, nil
	}
	return &organizations.DescribeOrganizationOutput{
		Organization: &orgtypes.Organization{Id: aws.String(f.id)},
	}, nil
}

const layerArn = "arn:aws:lambda:us-east-1:468665244580:layer:cfnresponse"

func versionItem(n int64, runtimes ...lambdatypes.Runtime) lambdatypes.LayerVersionsListItem {
	return lambdatypes.LayerVersionsListItem{
		LayerVersionArn:    aws.String(layerArn + ":" + strconv.FormatInt(n, 10)),
		Version:            n,
		Description:        aws.String("v0.0." + strconv.FormatInt(n, 10)),
		CreatedDate:        aws.String("2019-02-08T21:44:43.782+0000"),
		CompatibleRuntimes: runtimes,
	}
}

func TestAWSClient_ListLayers(t *testing.T) {
	latest := versionItem(2, lambdatypes.RuntimePython36)
	fake := &fakeLambda{
		layerPages: [][]lambdatypes.LayersListItem{
			{{LayerName: aws.String("cfnresponse"), LayerArn: aws.String(layerArn), LatestMatchingVersion: &latest}},
			{{LayerName: aws.String("empty"), LayerArn: aws.String("arn:empty")}},
		},
	}
	client := NewAWSClientFromAPIs(fake, nil, nil)

	layers, err := client.ListLayers(context.Background(), "python3.6")
	require.NoError(t, err)

	want := []LayerSummary{
		{
			LayerName: "cfnresponse",
			LayerArn:  layerArn,
			LatestMatchingVersion: &LayerVersion{
				LayerVersionArn:    layerArn + ":2",
				Version:            2,
				Description:        "v0.0.2",
				CreatedDate:        "2019-02-08T21:44:43.782+0000",
				CompatibleRuntimes: []string{"python3.6"},
			},
		},
		{LayerName: "empty", LayerArn: "arn:empty"},
	}
	if diff := cmp.Diff(want, layers); diff != "" {
		t.Errorf("ListLayers() mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, fake.listLayersInputs, 2)
	for _, in := range fake.listLayersInputs {
		assert.Equal(t, lambdatypes.Runtime("python3.6"), in.CompatibleRuntime)
	}
}

func TestAWSClient_ListLayersWithoutRuntime(t *testing.T) {
	fake := &fakeLambda{}
	client := NewAWSClientFromAPIs(fake, nil, nil)

	layers, err := client.ListLayers(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, layers)

	require.Len(t, fake.listLayersInputs, 1)
	assert.Empty(t, fake.listLayersInputs[0].CompatibleRuntime)
}

func TestAWSClient_ListLayerVersions(t *testing.T) {
	fake := &fakeLambda{
		versionPages: [][]lambdatypes.LayerVersionsListItem{
			{versionItem(3, lambdatypes.RuntimePython37), versionItem(2)},
			{versionItem(1)},
		},
	}
	client := NewAWSClientFromAPIs(fake, nil, nil)

	versions, err := client.ListLayerVersions(context.Background(), "cfnresponse", "")
	require.NoError(t, err)
	require.Len(t, versions, 3)
	assert.Equal(t, []int64{3, 2, 1}, []int64{versions[0].Version, versions[1].Version, versions[2].Version})
	assert.Equal(t, []string{"python3.7"}, versions[0].CompatibleRuntimes)

	for _, in := range fake.listVersionsInputs {
		assert.Equal(t, "cfnresponse", aws.ToString(in.LayerName))
	}
}

func TestAWSClient_ListErrorsAreWrapped(t *testing.T) {
	cause := errors.New("ThrottlingException")
	client := NewAWSClientFromAPIs(&fakeLambda{err: cause}, nil, nil)

	_, err := client.ListLayers(context.Background(), "")
	assert.ErrorIs(t, err, cause)

	_, err = client.ListLayerVersions(context.Background(), "x", "")
	assert.ErrorIs(t, err, cause)
}

func TestAWSClient_PublishLayerVersion(t *testing.T) {
	fake := &fakeLambda{
		publishOutput: &lambda.PublishLayerVersionOutput{
			Content: &lambdatypes.LayerVersionContentOutput{
				Location:   aws.String("https://example.invalid/snapshot"),
				CodeSha256: aws.String("YWAl3bA2336oE9UeBBHzkK02QBKGxiPkT6JmNY8AA4A="),
				CodeSize:   1991,
			},
			LayerArn:           aws.String(layerArn),
			LayerVersionArn:    aws.String(layerArn + ":3"),
			Description:        aws.String("v0.0.3"),
			CreatedDate:        aws.String("2019-02-28T21:41:01.191+0000"),
			Version:            3,
			CompatibleRuntimes: []lambdatypes.Runtime{lambdatypes.RuntimePython36},
		},
	}
	client := NewAWSClientFromAPIs(fake, nil, nil)

	published, err := client.PublishLayerVersion(context.Background(), PublishInput{
		LayerName:          "cfnresponse",
		Description:        "v0.0.3",
		ZipFile:            []byte("PK"),
		CompatibleRuntimes: []string{"python3.6"},
	})
	require.NoError(t, err)

	want := &PublishedLayerVersion{
		Content: LayerContent{
			Location:   "https://example.invalid/snapshot",
			CodeSha256: "YWAl3bA2336oE9UeBBHzkK02QBKGxiPkT6JmNY8AA4A=",
			CodeSize:   1991,
		},
		LayerArn:           layerArn,
		LayerVersionArn:    layerArn + ":3",
		Description:        "v0.0.3",
		CreatedDate:        "2019-02-28T21:41:01.191+0000",
		Version:            3,
		CompatibleRuntimes: []string{"python3.6"},
	}
	if diff := cmp.Diff(want, published); diff != "" {
		t.Errorf("PublishLayerVersion() mismatch (-want +got):\n%s", diff)
	}

	in := fake.publishInput
	require.NotNil(t, in)
	assert.Equal(t, "cfnresponse", aws.ToString(in.LayerName))
	assert.Equal(t, "v0.0.3", aws.ToString(in.Description))
	assert.Equal(t, []byte("PK"), in.Content.ZipFile)
	assert.Equal(t, []lambdatypes.Runtime{lambdatypes.RuntimePython36}, in.CompatibleRuntimes)
}

func TestAWSClient_AddLayerVersionPermission(t *testing.T) {
	tests := []struct {
		name  string
		input PermissionInput
		org   *string
	}{
		{
			name:  "account",
			input: PermissionInput{LayerName: layerArn, VersionNumber: 3, Action: ActionGetLayerVersion, StatementID: PermissionStatementID, Principal: "123"},
		},
		{
			name:  "organization",
			input: PermissionInput{LayerName: layerArn, VersionNumber: 3, Action: ActionGetLayerVersion, StatementID: PermissionStatementID, Principal: "*", OrganizationID: "o-1"},
			org:   aws.String("o-1"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeLambda{}
			client := NewAWSClientFromAPIs(fake, nil, nil)

			require.NoError(t, client.AddLayerVersionPermission(context.Background(), tt.input))

			in := fake.permissionInput
			require.NotNil(t, in)
			assert.Equal(t, layerArn, aws.ToString(in.LayerName))
			assert.Equal(t, int64(3), aws.ToInt64(in.VersionNumber))
			assert.Equal(t, "lambda:GetLayerVersion", aws.ToString(in.Action))
			assert.Equal(t, "LayerVersionPermission", aws.ToString(in.StatementId))
			assert.Equal(t, tt.input.Principal, aws.ToString(in.Principal))
			assert.Equal(t, tt.org, in.OrganizationId)
		})
	}
}

func TestAWSClient_Identity(t *testing.T) {
	client := NewAWSClientFromAPIs(nil, &fakeSTS{account: "111122223333"}, &fakeOrganizations{id: "o-abc123"})

	account, err := client.CallerAccount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "111122223333", account)

	org, err := client.CallerOrganization(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "o-abc123", org)

	noOrg := NewAWSClientFromAPIs(nil, nil, &fakeOrganizations{})
	org, err = noOrg.CallerOrganization(context.Background())
	require.NoError(t, err)
	assert.Empty(t, org)

	cause := errors.New("AWSOrganizationsNotInUseException")
	failing := NewAWSClientFromAPIs(nil, &fakeSTS{err: cause}, &fakeOrganizations{err: cause})
	_, err = failing.CallerAccount(context.Background())
	assert.ErrorIs(t, err, cause)
	_, err = failing.CallerOrganization(context.Background())
	assert.ErrorIs(t, err, cause)
}
