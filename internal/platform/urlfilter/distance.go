package urlfilter

import (
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Metric computes the additive dissimilarity between two URLs:
//
//	scalar + path + extension + QueryWeight*query
//
// It is symmetric and Distance(u, u) == 0. A Metric is immutable and safe
// for concurrent use.
type Metric struct {
	opts   MetricOptions
	params paramFilter
	dmp    *diffmatchpatch.DiffMatchPatch
}

// NewMetric creates a metric. Invalid options fall back to the defaults for
// the offending field.
func NewMetric(opts MetricOptions) *Metric {
	if opts.PathRatioScale <= 0 {
		opts.PathRatioScale = DefaultPathRatioScale
	}
	if opts.QueryMode != QueryValues {
		opts.QueryMode = QueryKeysOnly
	}
	if opts.PathStrategy != PathEditRatio {
		opts.PathStrategy = PathPositional
	}

	dmp := diffmatchpatch.New()
	// No timeout: the diff must be minimal for the edit count to be exact.
	dmp.DiffTimeout = 0

	return &Metric{
		opts:   opts,
		params: newParamFilter(opts.IgnoredParams, opts.IgnoreTracking),
		dmp:    dmp,
	}
}

var defaultMetric = NewMetric(DefaultMetricOptions())

// Distance compares a and b with the default metric.
func Distance(a, b URLLike) float64 {
	return defaultMetric.Distance(a, b)
}

// IsSubset checks containment with the default metric.
func IsSubset(a, b URLLike) bool {
	return defaultMetric.IsSubset(a, b)
}

// Options returns the options the metric was built with.
func (m *Metric) Options() MetricOptions {
	return m.opts
}

// Distance returns the exact aggregate distance between a and b.
func (m *Metric) Distance(a, b URLLike) float64 {
	return m.distance(a.ParsedURL(), b.ParsedURL(), math.Inf(1))
}

// DistanceWithin returns the aggregate distance, stopping as soon as the
// running sum reaches limit. In that case limit itself is returned, so the
// result is min(Distance(a, b), limit). Pass math.Inf(1) for the exact value.
func (m *Metric) DistanceWithin(a, b URLLike, limit float64) float64 {
	return m.distance(a.ParsedURL(), b.ParsedURL(), limit)
}

func (m *Metric) distance(a, b ParsedURL, limit float64) float64 {
	limit = math.Max(limit, 0)

	sum := float64(m.ScalarDistance(a, b))
	if sum >= limit {
		return limit
	}
	sum += float64(m.ExtensionDistance(a, b))
	if sum >= limit {
		return limit
	}
	sum += m.PathDistance(a, b)
	if sum >= limit {
		return limit
	}
	sum += QueryWeight * float64(m.QueryDistance(m.params.apply(a.params), m.params.apply(b.params)))
	if sum >= limit {
		return limit
	}
	return sum
}

// ScalarDistance counts how many of scheme, username, password, hostname,
// port and fragment differ.
func (m *Metric) ScalarDistance(a, b ParsedURL) int {
	return IterDistance(scalarFields(a), scalarFields(b))
}

func scalarFields(p ParsedURL) []string {
	return []string{p.scheme, p.username, p.password, p.hostname, p.portField(), p.fragment}
}

// PathDistance compares paths with the configured strategy.
func (m *Metric) PathDistance(a, b ParsedURL) float64 {
	if m.opts.PathStrategy == PathEditRatio {
		return m.pathEditRatio(a.path, b.path)
	}
	return float64(IterDistance(a.segments, b.segments))
}

// pathEditRatio returns scale * (1 - similarity), with similarity being one
// minus the rune edit distance over the longer path's rune count.
func (m *Metric) pathEditRatio(a, b string) float64 {
	if a == b {
		return 0
	}
	// Fixed argument order keeps the diff alignment, and so the result,
	// independent of which URL came first.
	if a > b {
		a, b = b, a
	}
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	diffs := m.dmp.DiffMain(a, b, false)
	edits := m.dmp.DiffLevenshtein(diffs)
	return m.opts.PathRatioScale * float64(edits) / float64(longest)
}

// ExtensionDistance is 1 when at least one side has a recognizable file
// extension and the two extensions are not identical, else 0. Case counts:
// .HTML and .html differ.
func (m *Metric) ExtensionDistance(a, b ParsedURL) int {
	extA, okA := a.Extension()
	extB, okB := b.Extension()
	if !okA && !okB {
		return 0
	}
	if okA && okB && extA == extB {
		return 0
	}
	return 1
}

// QueryDistance walks the keys of the smaller map: each key missing from the
// larger map costs 1, and in QueryValues mode each shared key whose value
// lists differ costs 1. The size difference of the two maps is added on top.
func (m *Metric) QueryDistance(a, b QueryMap) int {
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}

	d := len(large) - len(small)
	for key, values := range small {
		other, ok := large[key]
		if !ok {
			d++
			continue
		}
		if m.opts.QueryMode == QueryValues && !sameValues(values, other) {
			d++
		}
	}
	return d
}

// sameValues compares value lists as multisets.
func sameValues(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	if slices.Equal(a, b) {
		return true
	}
	sa, sb := slices.Clone(a), slices.Clone(b)
	slices.Sort(sa)
	slices.Sort(sb)
	return slices.Equal(sa, sb)
}

// IsSubset reports whether b is contained in a: same scheme, host,
// credentials and port, b's path starts with a's path, and every query key
// of a also appears in b. It is one-directional and unrelated to Distance.
func (m *Metric) IsSubset(a, b URLLike) bool {
	pa, pb := a.ParsedURL(), b.ParsedURL()

	if pa.scheme != pb.scheme ||
		pa.hostname != pb.hostname ||
		pa.username != pb.username ||
		pa.password != pb.password ||
		comparePort(pa, pb) != 0 {
		return false
	}

	if !strings.HasPrefix(pb.path, pa.path) {
		return false
	}

	qb := m.params.apply(pb.params)
	for key := range m.params.apply(pa.params) {
		if _, ok := qb[key]; !ok {
			return false
		}
	}
	return true
}

// IterDistance is the positional Hamming distance over the common prefix of
// x and y plus the difference in their lengths.
func IterDistance[T comparable](x, y []T) int {
	n := min(len(x), len(y))
	d := 0
	for i := 0; i < n; i++ {
		if x[i] != y[i] {
			d++
		}
	}
	if len(x) > len(y) {
		return d + len(x) - len(y)
	}
	return d + len(y) - len(x)
}
