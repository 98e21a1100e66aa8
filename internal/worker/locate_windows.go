//go:build windows

package worker

import (
	"fmt"

	"golang.org/x/sys/windows/registry"
)

const installKey = `Software\Unity Technologies\Unity Editor 3.x\Location`

func installLocation() (string, error) {
	k, err := registry.OpenKey(registry.CURRENT_USER, installKey, registry.QUERY_VALUE)
	if err != nil {
		return "", fmt.Errorf("open HKCU\\%s: %w", installKey, err)
	}
	defer k.Close()
	v, _, err := k.GetStringValue("")
	if err != nil {
		return "", fmt.Errorf("read HKCU\\%s: %w", installKey, err)
	}
	return v, nil
}
