//go:build windows

package worker

import (
	"context"
	"net"

	"github.com/Microsoft/go-winio"
)

const pipePrefix = `\\.\pipe\`

func listen(name string) (net.Listener, string, error) {
	addr := pipePrefix + name
	ln, err := winio.ListenPipe(addr, nil)
	if err != nil {
		return nil, "", err
	}
	return ln, addr, nil
}

func dial(ctx context.Context, addr string) (net.Conn, error) {
	return winio.DialPipeContext(ctx, addr)
}
