package worker

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
)

// EnvCompiler overrides the compiler path when no explicit path is given.
const EnvCompiler = "SHADERCTL_COMPILER"

// compilerRelPath is the compiler location below the editor install directory.
const compilerRelPath = "/Data/Tools/UnityShaderCompiler.exe"

var ErrCompilerNotFound = errors.New("worker: compiler not found")

// Locate resolves the compiler path: explicit, then EnvCompiler, then the
// editor install recorded in the Windows registry.
func Locate(explicit string) (string, error) {
	if p := strings.TrimSpace(explicit); p != "" {
		return checkCompiler(p, "explicit path")
	}
	if p := strings.TrimSpace(os.Getenv(EnvCompiler)); p != "" {
		return checkCompiler(p, EnvCompiler)
	}
	install, err := installLocation()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCompilerNotFound, err)
	}
	return checkCompiler(path.Dir(slashes(install))+compilerRelPath, "registry")
}

func checkCompiler(p, source string) (string, error) {
	info, err := os.Stat(p)
	if err != nil {
		return "", fmt.Errorf("%w: %s %q: %w", ErrCompilerNotFound, source, p, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s %q is a directory", ErrCompilerNotFound, source, p)
	}
	return p, nil
}

// DefaultBasePath is the editor Data directory, two levels above the compiler.
func DefaultBasePath(compilerPath string) string {
	return path.Dir(path.Dir(slashes(compilerPath)))
}

// DefaultIncludePath is the standard CG include directory below basePath.
func DefaultIncludePath(basePath string) string {
	return slashes(basePath) + "/CGIncludes"
}
