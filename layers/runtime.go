package layers

import (
	lerrors "github.com/invenia/lambdalayers/internal/errors"
)

// PythonVersion extracts "<major>.<minor>" from a runtime identifier such as
// "python3.9".
func PythonVersion(runtime string) (string, error) {
	m := runtimeRegexp.FindStringSubmatch(runtime)
	if m == nil {
		return "", lerrors.InvalidRuntime(runtime, RuntimePattern)
	}
	return m[runtimeRegexp.SubexpIndex("version")], nil
}

// ParseRuntimes validates every identifier before returning, preserving the
// input order. An empty list is rejected.
func ParseRuntimes(runtimes []string) ([]Runtime, error) {
	if len(runtimes) == 0 {
		return nil, lerrors.NoRuntimesRequested()
	}

	parsed := make([]Runtime, 0, len(runtimes))
	for _, name := range runtimes {
		version, err := PythonVersion(name)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, Runtime{Name: name, Version: version})
	}
	return parsed, nil
}

// Names returns the runtime identifiers in order.
func Names(runtimes []Runtime) []string {
	names := make([]string, len(runtimes))
	for i, r := range runtimes {
		names[i] = r.Name
	}
	return names
}
