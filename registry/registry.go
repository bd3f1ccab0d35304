// Package registry is the remote side of lambdalayers: listing, publishing
// and sharing Lambda layer versions.
//
// The Client interface covers the four Lambda calls the tool needs and
// Identity answers "who am I" for the --my-account and --my-organization
// permission targets. AWSClient implements both on top of aws-sdk-go-v2;
// tests substitute in-memory fakes.
//
// Example usage:
//
//	cfg, err := registry.LoadAWSConfig(ctx, "dev", "")
//	if err != nil {
//		return err
//	}
//	client := registry.NewAWSClient(cfg)
//
//	grant, err := registry.ResolvePermission(ctx, client, registry.MyOrganizationTarget{})
//	if err != nil {
//		return err
//	}
//
// Permission targets are a closed set of variants; ResolvePermission turns
// one into the concrete principal and organization passed to
// AddLayerVersionPermission.
package registry

import (
	"context"
)

const (
	// ActionGetLayerVersion is the only action layer permissions grant.
	ActionGetLayerVersion = "lambda:GetLayerVersion"
	// PermissionStatementID names the policy statement added on publish.
	PermissionStatementID = "LayerVersionPermission"
	// AnyPrincipal grants access to every account, optionally scoped by
	// organization.
	AnyPrincipal = "*"
)

// Client defines the Lambda layer operations used by the engine.
type Client interface {
	// ListLayers returns every visible layer, optionally only those whose
	// latest version supports runtime.
	ListLayers(ctx context.Context, runtime string) ([]LayerSummary, error)
	// ListLayerVersions returns the versions of layer (name or ARN).
	ListLayerVersions(ctx context.Context, layer, runtime string) ([]LayerVersion, error)
	PublishLayerVersion(ctx context.Context, in PublishInput) (*PublishedLayerVersion, error)
	AddLayerVersionPermission(ctx context.Context, in PermissionInput) error
}

// Identity resolves the caller's own account and organization.
type Identity interface {
	CallerAccount(ctx context.Context) (string, error)
	CallerOrganization(ctx context.Context) (string, error)
}
