package layers

import (
	"fmt"
	"os"
	"path/filepath"

	lerrors "github.com/invenia/lambdalayers/internal/errors"
	"github.com/invenia/lambdalayers/internal/types"
)

// dotfileGlob matches hidden entries, which are never packaged.
const dotfileGlob = ".*"

// ReadLocal returns the direct children of root that make up the layer,
// with requirements.txt split out. A missing manifest is not an error.
func ReadLocal(root string) (Source, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return Source{}, lerrors.NewFilesystemError("read_layer",
			fmt.Sprintf("failed to read layer directory %s", root), err)
	}

	src := Source{Root: root}
	for _, entry := range entries {
		name := entry.Name()

		hidden, err := filepath.Match(dotfileGlob, name)
		if err != nil {
			return Source{}, err
		}
		if hidden {
			continue
		}

		path := filepath.Join(root, name)
		if name == types.RequirementsFile {
			src.Requirements = path
			continue
		}

		src.Files = append(src.Files, path)
	}

	return src, nil
}
