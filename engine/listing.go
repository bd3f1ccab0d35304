package engine

import (
	"context"
	"fmt"

	lerrors "github.com/invenia/lambdalayers/internal/errors"
	"github.com/invenia/lambdalayers/registry"
)

// ListLayers returns every layer visible to the caller, optionally only
// those supporting runtime. An empty result is not an error; client errors
// are returned as-is.
func ListLayers(ctx context.Context, client registry.Client, runtime string) ([]registry.LayerSummary, error) {
	return client.ListLayers(ctx, runtime)
}

// ListVersions returns the versions of layer, optionally only those
// supporting runtime. An empty result is not an error.
func ListVersions(ctx context.Context, client registry.Client, layer, runtime string) ([]registry.LayerVersion, error) {
	if layer == "" {
		return nil, lerrors.NewValidationError("list_versions", "layer name must be set", nil)
	}

	return client.ListLayerVersions(ctx, layer, runtime)
}

// NoLayersMessage is logged when a layer listing comes back empty.
func NoLayersMessage(runtime string) string {
	if runtime != "" {
		return fmt.Sprintf("No layers found supporting '%s'", runtime)
	}
	return "No layers found"
}

// NoVersionsMessage is logged when a version listing comes back empty.
func NoVersionsMessage(layer, runtime string) string {
	if runtime != "" {
		return fmt.Sprintf("No versions found for layer '%s' supporting '%s'", layer, runtime)
	}
	return fmt.Sprintf("No versions found for layer '%s'", layer)
}
