// Package validator holds host and domain checks used by the config layer
// and by the stream scope filter.
package validator

import (
	"net"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/publicsuffix"
)

var domainRegex = regexp.MustCompile(`^([a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?\.)*[a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?$`)

// Domain validators

// IsDomain reports whether domain is a syntactically valid host name.
// IP literals are rejected.
func IsDomain(domain string) bool {
	if len(domain) == 0 || len(domain) > 253 {
		return false
	}
	if !domainRegex.MatchString(domain) {
		return false
	}
	return net.ParseIP(domain) == nil
}

// IsSubdomain reports whether subdomain is a strict subdomain of baseDomain.
func IsSubdomain(subdomain, baseDomain string) bool {
	subdomain = strings.ToLower(strings.TrimSpace(subdomain))
	baseDomain = strings.ToLower(strings.TrimSpace(baseDomain))

	if subdomain == baseDomain {
		return false
	}

	return strings.HasSuffix(subdomain, "."+baseDomain)
}

// NormalizeDomain lowercases, trims and drops a trailing dot and a leading www.
func NormalizeDomain(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	domain = strings.TrimSuffix(domain, ".")
	domain = strings.TrimPrefix(domain, "www.")
	return domain
}

// RegistrableDomain returns the eTLD+1 of host ("a.b.example.co.uk" gives
// "example.co.uk"). IP literals, single labels and names the public suffix
// list cannot split come back normalized but otherwise unchanged.
func RegistrableDomain(host string) string {
	host = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(host)), ".")
	if host == "" || IsIP(host) || !strings.Contains(host, ".") {
		return host
	}
	etld1, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return etld1
}

// IsScopeEntry reports whether entry is usable in a scope list: a domain,
// an IP literal, or "*." followed by a domain.
func IsScopeEntry(entry string) bool {
	entry = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(entry)), ".")
	if rest, ok := strings.CutPrefix(entry, "*."); ok {
		return IsDomain(rest)
	}
	return IsDomain(entry) || IsIP(entry)
}

// InScope reports whether host is covered by scope. An empty scope covers
// everything. Plain entries match the host itself and its subdomains;
// "*.example.com" entries match any host sharing example.com's registrable
// domain.
func InScope(host string, scope []string) bool {
	if len(scope) == 0 {
		return true
	}
	host = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(host)), ".")
	if host == "" {
		return false
	}

	for _, entry := range scope {
		entry = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(entry)), ".")
		if rest, ok := strings.CutPrefix(entry, "*."); ok {
			if RegistrableDomain(host) == RegistrableDomain(rest) {
				return true
			}
			continue
		}
		if host == entry || IsSubdomain(host, entry) {
			return true
		}
	}
	return false
}

// Network validators

// IsIP reports whether ip is an IPv4 or IPv6 literal.
func IsIP(ip string) bool {
	return net.ParseIP(strings.Trim(ip, "[]")) != nil
}

// IsPort reports whether portStr is a decimal port in [0, 65535].
func IsPort(portStr string) bool {
	if portStr == "" {
		return false
	}
	for _, r := range portStr {
		if r < '0' || r > '9' {
			return false
		}
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return false
	}
	return port >= 0 && port <= 65535
}
