package urlfilter

import (
	"cmp"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"urldiff/internal/platform/validator"
)

// URLLike is anything the metric can compare: a ParsedURL or a RawURL.
// Public entry points coerce once through ParsedURL(); everything below
// them works on ParsedURL directly.
type URLLike interface {
	ParsedURL() ParsedURL
}

// RawURL is an unparsed URL string.
type RawURL string

// ParsedURL parses the string.
func (r RawURL) ParsedURL() ParsedURL {
	return Parse(string(r))
}

// QueryMap maps a query key to its non-blank values in input order.
type QueryMap map[string][]string

// ParsedURL is an immutable decomposition of a URL string. The zero value is
// the empty URL.
type ParsedURL struct {
	raw      string
	scheme   string
	username string
	password string
	hostname string
	port     int
	hasPort  bool
	path     string
	query    string
	fragment string

	segments []string
	params   QueryMap
}

// Parse decomposes raw into a ParsedURL. It never fails: when net/url rejects
// the input, a permissive splitter assigns the text to the best-matching
// fields instead.
func Parse(raw string) ParsedURL {
	raw = strings.TrimSpace(raw)

	var p ParsedURL
	if u, err := url.Parse(raw); err == nil {
		p = fromURL(u)
	} else {
		p = splitPermissive(raw)
	}

	p.raw = raw
	p.segments = splitSegments(p.path)
	p.params = ParseQuery(p.query)
	return p
}

// ParsedURL returns p itself.
func (p ParsedURL) ParsedURL() ParsedURL { return p }

func (p ParsedURL) Raw() string      { return p.raw }
func (p ParsedURL) Scheme() string   { return p.scheme }
func (p ParsedURL) Username() string { return p.username }
func (p ParsedURL) Password() string { return p.password }
func (p ParsedURL) Hostname() string { return p.hostname }
func (p ParsedURL) Path() string     { return p.path }
func (p ParsedURL) Query() string    { return p.query }
func (p ParsedURL) Fragment() string { return p.fragment }

// Port returns the port and whether one was present.
func (p ParsedURL) Port() (int, bool) { return p.port, p.hasPort }

// String returns the original input.
func (p ParsedURL) String() string { return p.raw }

// Segments returns the non-empty path segments in order.
func (p ParsedURL) Segments() []string { return slices.Clone(p.segments) }

// Params returns a copy of the decoded query.
func (p ParsedURL) Params() QueryMap {
	out := make(QueryMap, len(p.params))
	for k, v := range p.params {
		out[k] = slices.Clone(v)
	}
	return out
}

// Extension returns the text after the last dot of the final path segment
// and whether it counts as a file extension: non-empty, letters and digits
// only, and not purely numeric (so "v1.2" has none).
func (p ParsedURL) Extension() (string, bool) {
	if len(p.segments) == 0 {
		return "", false
	}
	last := p.segments[len(p.segments)-1]
	i := strings.LastIndexByte(last, '.')
	if i < 0 {
		return "", false
	}
	ext := last[i+1:]
	return ext, isExtension(ext)
}

// Equal reports whether p and other decompose to the same fields.
func (p ParsedURL) Equal(other ParsedURL) bool {
	return Compare(p, other) == 0
}

// Compare orders URLs by (scheme, username, password, hostname, port, path,
// query, fragment). A missing port sorts before any explicit port.
func Compare(a, b ParsedURL) int {
	return cmp.Or(
		strings.Compare(a.scheme, b.scheme),
		strings.Compare(a.username, b.username),
		strings.Compare(a.password, b.password),
		strings.Compare(a.hostname, b.hostname),
		comparePort(a, b),
		strings.Compare(a.path, b.path),
		strings.Compare(a.query, b.query),
		strings.Compare(a.fragment, b.fragment),
	)
}

func comparePort(a, b ParsedURL) int {
	switch {
	case a.hasPort == b.hasPort:
		return cmp.Compare(a.port, b.port)
	case !a.hasPort:
		return -1
	default:
		return 1
	}
}

// portField renders the port for field-wise comparison; "" when absent.
func (p ParsedURL) portField() string {
	if !p.hasPort {
		return ""
	}
	return strconv.Itoa(p.port)
}

func fromURL(u *url.URL) ParsedURL {
	p := ParsedURL{
		scheme:   u.Scheme,
		hostname: strings.ToLower(u.Hostname()),
		path:     u.EscapedPath(),
		query:    u.RawQuery,
		fragment: u.EscapedFragment(),
	}
	if u.Opaque != "" {
		p.path = u.Opaque
	}
	if u.User != nil {
		p.username = u.User.Username()
		p.password, _ = u.User.Password()
	}
	p.port, p.hasPort = parsePort(u.Port())
	return p
}

// splitPermissive splits text net/url refused. Fields are peeled off in
// order: fragment, query, scheme, authority, path.
func splitPermissive(raw string) ParsedURL {
	var p ParsedURL
	rest := raw

	if i := strings.IndexByte(rest, '#'); i >= 0 {
		p.fragment = rest[i+1:]
		rest = rest[:i]
	}
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		p.query = rest[i+1:]
		rest = rest[:i]
	}
	if i := strings.IndexByte(rest, ':'); i > 0 && isScheme(rest[:i]) {
		p.scheme = strings.ToLower(rest[:i])
		rest = rest[i+1:]
	}
	if strings.HasPrefix(rest, "//") {
		rest = rest[2:]
		authority := rest
		rest = ""
		if i := strings.IndexByte(authority, '/'); i >= 0 {
			authority, rest = authority[:i], authority[i:]
		}
		p.setAuthority(authority)
	}

	p.path = rest
	return p
}

func (p *ParsedURL) setAuthority(authority string) {
	host := authority
	if i := strings.LastIndexByte(authority, '@'); i >= 0 {
		userinfo := authority[:i]
		host = authority[i+1:]
		p.username, p.password, _ = strings.Cut(userinfo, ":")
	}

	var portStr string
	if strings.HasPrefix(host, "[") {
		end := strings.IndexByte(host, ']')
		if end < 0 {
			p.hostname = strings.ToLower(host[1:])
			return
		}
		p.hostname = strings.ToLower(host[1:end])
		portStr, _ = strings.CutPrefix(host[end+1:], ":")
	} else if i := strings.LastIndexByte(host, ':'); i >= 0 {
		p.hostname = strings.ToLower(host[:i])
		portStr = host[i+1:]
	} else {
		p.hostname = strings.ToLower(host)
	}
	p.port, p.hasPort = parsePort(portStr)
}

func parsePort(s string) (int, bool) {
	if !validator.IsPort(s) {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func isScheme(s string) bool {
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return s != ""
}

func splitSegments(path string) []string {
	var segments []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments
}

// ParseQuery decodes a raw query string. Pairs are split on '&' and at the
// first '='; pairs without '=' or with an empty value are skipped. Escapes
// that fail to decode are kept verbatim.
func ParseQuery(raw string) QueryMap {
	m := make(QueryMap)
	if raw == "" {
		return m
	}
	for _, pair := range strings.Split(raw, "&") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || value == "" {
			continue
		}
		k := unescape(key)
		m[k] = append(m[k], unescape(value))
	}
	return m
}

func unescape(s string) string {
	if out, err := url.QueryUnescape(s); err == nil {
		return out
	}
	return s
}

func isExtension(ext string) bool {
	if ext == "" {
		return false
	}
	numeric := true
	for _, r := range ext {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
		if !unicode.IsDigit(r) {
			numeric = false
		}
	}
	return !numeric
}
