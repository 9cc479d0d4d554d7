package coordinator

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// DefaultPort is used when the configured value has no recognisable port
const DefaultPort = 8080

// ParsePort accepts a bare port ("9090"), a host:port pair ("0.0.0.0:9090")
// or a full URL ("http://localhost:9090/x"), falling back to DefaultPort.
func ParsePort(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultPort
	}

	if p, ok := validPort(raw); ok {
		return p
	}

	if strings.Contains(raw, "://") {
		if u, err := url.Parse(raw); err == nil {
			if p, ok := validPort(u.Port()); ok {
				return p
			}
		}
		return DefaultPort
	}

	if _, port, err := net.SplitHostPort(raw); err == nil {
		if p, ok := validPort(port); ok {
			return p
		}
	}

	return DefaultPort
}

// CallbackURL is the address the coordinator should deliver webhooks to
func CallbackURL(port int) string {
	return fmt.Sprintf("http://localhost:%d/webhook", port)
}

func validPort(s string) (int, bool) {
	p, err := strconv.Atoi(s)
	if err != nil || p <= 0 || p > 65535 {
		return 0, false
	}
	return p, true
}
