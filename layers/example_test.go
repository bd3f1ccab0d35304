package layers_test

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/invenia/lambdalayers/layers"
)

func ExampleReadLocal() {
	root, err := os.MkdirTemp("", "layer-example")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(root)

	for _, name := range []string{"foo.py", "requirements.txt", ".hidden"} {
		if err := os.WriteFile(filepath.Join(root, name), nil, 0644); err != nil {
			panic(err)
		}
	}
	if err := os.Mkdir(filepath.Join(root, "bar"), 0755); err != nil {
		panic(err)
	}

	src, err := layers.ReadLocal(root)
	if err != nil {
		panic(err)
	}

	for _, f := range src.Files {
		fmt.Println(filepath.Base(f))
	}
	fmt.Println("requirements:", filepath.Base(src.Requirements))
	// Output:
	// bar
	// foo.py
	// requirements: requirements.txt
}

func ExamplePythonVersion() {
	version, _ := layers.PythonVersion("python3.9")
	fmt.Println(version)

	_, err := layers.PythonVersion("py3.9")
	fmt.Println(err != nil)
	// Output:
	// 3.9
	// true
}
