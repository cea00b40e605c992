package script

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.starlark.net/lib/json"
	"go.starlark.net/lib/math"
	startime "go.starlark.net/lib/time"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

// builtinModules are the capability modules resolvable by an import
// directive without any module file on disk.
var builtinModules = map[string]starlark.Value{
	"math": math.Module,
	"time": startime.Module,
	"json": json.Module,
}

// Import resolves a module reference and binds it into the scope under
// its own name. Builtin modules are tried first, then
// <modulesDir>/<name>.star. An unresolvable reference fails with an
// ImportError.
func (s *Scope) Import(name string) error {
	if module, ok := builtinModules[name]; ok {
		s.logger.Debug("import builtin module", "module", name)
		s.globals[name] = module
		return nil
	}

	if s.modulesDir != "" {
		path := filepath.Join(s.modulesDir, name+".star")
		if _, err := os.Stat(path); err == nil {
			module, err := s.loadModuleFile(name, path)
			if err != nil {
				return &ImportError{Module: name, Message: err.Error()}
			}
			s.logger.Debug("import module file", "module", name, "path", path)
			s.globals[name] = module
			return nil
		}
	}

	msg := "no builtin module with this name"
	if s.modulesDir != "" {
		msg = fmt.Sprintf("no builtin module and no file %s", filepath.Join(s.modulesDir, name+".star"))
	}
	return &ImportError{Module: name, Message: msg}
}

// loadModuleFile executes a .star file and wraps its exports as a module
// value. Names starting with an underscore stay private to the file.
func (s *Scope) loadModuleFile(name, path string) (starlark.Value, error) {
	content, err := os.ReadFile(path) //nolint:gosec // G304: path is derived from the configured modules directory
	if err != nil {
		return nil, fmt.Errorf("failed to read module file: %w", err)
	}

	thread := s.newThread(fmt.Sprintf("import:%s", name))
	globals, err := starlark.ExecFileOptions(fileOptions, thread, path, content, nil)
	if err != nil {
		return nil, fmt.Errorf("execution error: %v", err)
	}

	exports := make(starlark.StringDict)
	for exportName, value := range globals {
		if !strings.HasPrefix(exportName, "_") {
			exports[exportName] = value
		}
	}

	return &starlarkstruct.Module{Name: name, Members: exports}, nil
}
