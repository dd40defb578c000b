package ingest

import (
	"net"
	"strings"
)

// ClientAddress picks the address a request is attributed to. The first
// entry of forwardedFor wins when it parses as an IP and the peer is
// trusted (a nil trusted func trusts every peer). Otherwise the peer
// address from remoteAddr is used, without its port.
func ClientAddress(remoteAddr, forwardedFor string, trusted func(ip string) bool) string {
	peer := stripPort(remoteAddr)

	if forwardedFor != "" && (trusted == nil || trusted(peer)) {
		first := strings.TrimSpace(strings.SplitN(forwardedFor, ",", 2)[0])
		if ip := net.ParseIP(first); ip != nil {
			return ip.String()
		}
	}
	return peer
}

func stripPort(remoteAddr string) string {
	remoteAddr = strings.TrimSpace(remoteAddr)
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = strings.Trim(remoteAddr, "[]")
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.String()
	}
	return host
}
