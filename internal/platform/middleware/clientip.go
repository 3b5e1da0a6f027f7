// Copyright (c) 2026 Fitmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/taibuivan/fitmate/internal/platform/constants"
	"github.com/taibuivan/fitmate/internal/platform/ctxutil"
)

// # Client Address

// ClientIP resolves the client address once per request and stores it in the
// context, where [RealIP] reads it.
//
// Forwarding headers are honoured only when the direct peer is inside trusted.
// With an empty list the peer address is always used.
func ClientIP(trusted []netip.Prefix) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ip := ResolveClientIP(request, trusted)
			next.ServeHTTP(writer, request.WithContext(ctxutil.WithClientIP(request.Context(), ip)))
		})
	}
}

// RealIP returns the address resolved by [ClientIP], or the direct peer when
// the resolver did not run. Client-supplied headers are never read here.
func RealIP(request *http.Request) string {
	if ip, ok := ctxutil.GetClientIP(request.Context()); ok {
		return ip
	}
	return peerHost(request.RemoteAddr)
}

/*
ResolveClientIP picks the client address for request.

The direct peer is returned unless it is a trusted proxy. Otherwise
X-Forwarded-For is walked right to left and the first hop outside trusted
wins, so entries a client prepends are never reached. X-Real-IP is only used
when a trusted peer sent no X-Forwarded-For.
*/
func ResolveClientIP(request *http.Request, trusted []netip.Prefix) string {
	peer := peerHost(request.RemoteAddr)
	peerAddr, err := netip.ParseAddr(peer)
	if err != nil || !isTrusted(peerAddr, trusted) {
		return peer
	}

	// ── 1. Forwarded chain, nearest hop last ─────────────────────────────
	hops := forwardedHops(request.Header.Values(constants.HeaderXForwardedFor))
	client := peerAddr
	for i := len(hops) - 1; i >= 0; i-- {
		hop, err := netip.ParseAddr(hops[i])
		if err != nil {
			break
		}
		client = hop.Unmap()
		if !isTrusted(client, trusted) {
			return client.String()
		}
	}
	if len(hops) > 0 {
		return client.String()
	}

	// ── 2. Single-hop header from the proxy ──────────────────────────────
	if realIP, err := netip.ParseAddr(strings.TrimSpace(request.Header.Get(constants.HeaderXRealIP))); err == nil {
		return realIP.Unmap().String()
	}
	return peer
}

func forwardedHops(values []string) []string {
	hops := make([]string, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if hop := strings.TrimSpace(part); hop != "" {
				hops = append(hops, hop)
			}
		}
	}
	return hops
}

func isTrusted(addr netip.Addr, trusted []netip.Prefix) bool {
	addr = addr.Unmap()
	for _, prefix := range trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

func peerHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	if addr, err := netip.ParseAddr(host); err == nil {
		return addr.Unmap().String()
	}
	return host
}
