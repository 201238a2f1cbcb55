package webc

import (
	"context"
	"net"
	"time"
)

// netDialer applies a connect timeout independent of the overall request
// timeout.
type netDialer struct {
	timeout time.Duration
}

func (d *netDialer) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := net.Dialer{Timeout: d.timeout}
	return dialer.DialContext(ctx, network, addr)
}
