//go:build !windows

package worker

import "errors"

func installLocation() (string, error) {
	return "", errors.New("no install registry on this platform")
}
