//go:build !windows

package worker

import (
	"context"
	"net"
	"os"
	"path/filepath"
)

func listen(name string) (net.Listener, string, error) {
	addr := filepath.Join(os.TempDir(), name+".sock")
	_ = os.Remove(addr)
	ln, err := net.Listen("unix", addr)
	if err != nil {
		return nil, "", err
	}
	return ln, addr, nil
}

func dial(ctx context.Context, addr string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, "unix", addr)
}
