package config

import (
	"fmt"
	"os"
)

// Template returns a commented example configuration.
func Template() string {
	return shaderctlTemplate
}

// WriteTemplate writes Template to path, refusing to replace an existing file
// unless overwrite is set.
func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(shaderctlTemplate), 0o600)
}

const shaderctlTemplate = `[compiler]
# Empty path falls back to SHADERCTL_COMPILER, then the editor install registry.
path = "C:/Program Files/Unity/Editor/Data/Tools/UnityShaderCompiler.exe"
# base_path = "C:/Program Files/Unity/Editor/Data"
# include_path = "C:/Program Files/Unity/Editor/Data/CGIncludes"
log_file = ""
channel = "UnityShaderCompiler-%ID%"
exit_timeout = "2s"

[session]
id = "shaderctl"
connect_timeout = "10s"
command_timeout = "60s"
shutdown_timeout = "2s"
# standard | basic
bindings = "standard"

[server]
addr = ":9300"
cors_origins = ["http://localhost:3000"]

[log]
level = "info"
`
