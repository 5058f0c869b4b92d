package common

import (
	"fmt"
	"net"
	"net/http"
	"time"
)

func GetResponseTime(init time.Time) string {
	timeDiff := time.Since(init).Milliseconds()
	return fmt.Sprintf("%dms", timeDiff)
}

// ClientIP is the host part of RemoteAddr. Forwarded headers are ignored
// here; the router rewrites RemoteAddr from them only when trust_proxy is on.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
