package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"

	"github.com/invenia/lambdalayers/executors"
	"github.com/invenia/lambdalayers/exporters"
	"github.com/invenia/lambdalayers/registry"
)

// fakePackageBuilder zips one entry per source file, plus an extra
// version-specific entry for the versions listed in divergent.
type fakePackageBuilder struct {
	divergent map[string]bool
	failOn    string
	err       error

	requests []executors.BuildRequest
}

func (f *fakePackageBuilder) Build(ctx context.Context, req executors.BuildRequest) (string, error) {
	f.requests = append(f.requests, req)
	if req.PythonVersion == f.failOn {
		return "", f.err
	}

	if err := os.MkdirAll(req.BuildDir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(req.BuildDir, "package.zip")
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	names := make([]string, 0, len(req.Files)+1)
	for _, file := range req.Files {
		names = append(names, req.ZippedPrefix+"/"+filepath.Base(file))
	}
	if f.divergent[req.PythonVersion] {
		names = append(names, req.ZippedPrefix+"/only_"+req.PythonVersion+".py")
	}
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			return "", err
		}
		if _, err := w.Write([]byte(name)); err != nil {
			return "", err
		}
	}
	return path, zw.Close()
}

type fakeClient struct {
	layers   []registry.LayerSummary
	versions []registry.LayerVersion
	listErr  error

	published     *registry.PublishedLayerVersion
	publishErr    error
	permissionErr error

	publishInputs    []registry.PublishInput
	permissionInputs []registry.PermissionInput
}

func (f *fakeClient) ListLayers(ctx context.Context, runtime string) ([]registry.LayerSummary, error) {
	return f.layers, f.listErr
}

func (f *fakeClient) ListLayerVersions(ctx context.Context, layer, runtime string) ([]registry.LayerVersion, error) {
	return f.versions, f.listErr
}

func (f *fakeClient) PublishLayerVersion(ctx context.Context, in registry.PublishInput) (*registry.PublishedLayerVersion, error) {
	f.publishInputs = append(f.publishInputs, in)
	if f.publishErr != nil {
		return nil, f.publishErr
	}
	return f.published, nil
}

func (f *fakeClient) AddLayerVersionPermission(ctx context.Context, in registry.PermissionInput) error {
	f.permissionInputs = append(f.permissionInputs, in)
	return f.permissionErr
}

// layerDir lays out foo.py, bar/, requirements.txt and .hidden.
func layerDir(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "foo.py"), []byte("print('foo')\n"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "bar"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "requirements.txt"), []byte("requests\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".hidden"), nil, 0644))
	return root
}

func zipMemberNames(t *testing.T, path string) []string {
	t.Helper()

	members, err := exporters.ReadMembers(path)
	require.NoError(t, err)
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Name
	}
	return names
}
