package urlfilter

import (
	"sort"
	"strings"
)

// trackingParams are analytics, session and cache-buster keys that rarely
// identify a different resource.
var trackingParams = map[string]bool{
	// Google Analytics
	"utm_source": true, "utm_medium": true, "utm_campaign": true,
	"utm_term": true, "utm_content": true, "utm_id": true,
	"gclid": true, "gclsrc": true, "dclid": true, "_ga": true, "_gid": true,

	// Facebook / Microsoft / Mailchimp
	"fbclid": true, "fb_action_ids": true, "fb_action_types": true,
	"fb_source": true, "fb_ref": true, "msclkid": true,
	"mc_cid": true, "mc_eid": true,

	// Session/tracking
	"sessionid": true, "session_id": true, "sid": true,
	"phpsessid": true, "jsessionid": true, "aspsessionid": true,
	"csrf_token": true, "csrf": true, "_csrf": true,

	// Cache busters
	"_": true, "nocache": true, "cachebuster": true,

	// Referrers
	"ref": true, "referer": true, "referrer": true,
}

// TrackingParams returns the built-in tracking parameter keys, sorted.
func TrackingParams() []string {
	keys := make([]string, 0, len(trackingParams))
	for k := range trackingParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsTrackingParam reports whether key is a known tracking parameter. Any
// utm_ prefixed key counts.
func IsTrackingParam(key string) bool {
	key = strings.ToLower(key)
	return trackingParams[key] || strings.HasPrefix(key, "utm_")
}

// paramFilter drops ignored keys from a QueryMap before comparison.
type paramFilter struct {
	keys     map[string]struct{}
	tracking bool
}

func newParamFilter(keys []string, tracking bool) paramFilter {
	f := paramFilter{tracking: tracking}
	for _, k := range keys {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if f.keys == nil {
			f.keys = make(map[string]struct{}, len(keys))
		}
		f.keys[k] = struct{}{}
	}
	return f
}

func (f paramFilter) empty() bool {
	return !f.tracking && len(f.keys) == 0
}

func (f paramFilter) drops(key string) bool {
	if f.tracking && IsTrackingParam(key) {
		return true
	}
	_, ok := f.keys[strings.ToLower(key)]
	return ok
}

// apply returns q without ignored keys. q itself is returned when nothing
// would be removed.
func (f paramFilter) apply(q QueryMap) QueryMap {
	if f.empty() || len(q) == 0 {
		return q
	}
	drop := 0
	for k := range q {
		if f.drops(k) {
			drop++
		}
	}
	if drop == 0 {
		return q
	}
	out := make(QueryMap, len(q)-drop)
	for k, v := range q {
		if !f.drops(k) {
			out[k] = v
		}
	}
	return out
}
