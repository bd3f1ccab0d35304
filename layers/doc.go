// Package layers reads the local source of a Python Lambda layer and
// validates the runtimes it is built for.
//
// A layer directory holds the modules and packages to ship, and optionally a
// requirements.txt naming third-party dependencies:
//
//	my-layer/
//	├── foo.py
//	├── bar/
//	│   └── __init__.py
//	├── requirements.txt
//	└── .build/
//
// # Reading a layer
//
// ReadLocal looks at the direct children of the directory only. Dotfiles
// (including the default .build directory) are skipped and requirements.txt
// is reported separately, so it is never packaged as a source file:
//
//	src, err := layers.ReadLocal("my-layer")
//	if err != nil {
//		log.Fatal(err)
//	}
//	// src.Files        -> [my-layer/bar my-layer/foo.py]
//	// src.Requirements -> my-layer/requirements.txt
//
// Subdirectories are single entries; the package builder copies them whole.
//
// # Runtimes
//
// Lambda runtime identifiers such as "python3.9" are validated against
// RuntimePattern. PythonVersion extracts the "3.9" part used for the
// per-runtime build directory and for resolving wheels:
//
//	version, err := layers.PythonVersion("python3.9") // "3.9"
//
// ParseRuntimes validates a whole list up front so one bad identifier aborts
// a build before any archive is produced.
//
// # Error Handling
//
// Invalid runtimes and empty runtime lists are reported as
// internal/errors.BuildError values wrapping ErrInvalidRuntime and
// ErrNoRuntimesRequested.
package layers
