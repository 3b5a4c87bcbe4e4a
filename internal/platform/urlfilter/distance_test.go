package urlfilter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

var sampleURLs = []string{
	"http://x.com/a?q=1",
	"http://x.com/a?q=2&r=3",
	"https://user:pw@x.com:8443/a/b/c.php?k=v#top",
	"http://x.com/a#frag",
	"http://x.com/a?b=2&a=1",
	"ftp://files.example.org/pub/v1.2",
	"http://x.com:badport/a",
	"%zz",
	"",
	"/relative/path.html?x=1",
}

func TestDistance_Reflexive(t *testing.T) {
	for _, m := range allMetrics() {
		for _, raw := range sampleURLs {
			assert.Zero(t, m.Distance(RawURL(raw), RawURL(raw)), "metric %v url %q", m.Options(), raw)
		}
	}
}

func TestDistance_Symmetric(t *testing.T) {
	for _, m := range allMetrics() {
		for _, a := range sampleURLs {
			for _, b := range sampleURLs {
				assert.Equal(t, m.Distance(RawURL(a), RawURL(b)), m.Distance(RawURL(b), RawURL(a)),
					"metric %v pair %q %q", m.Options(), a, b)
			}
		}
	}
}

func TestDistance_SymmetricEdgeCases(t *testing.T) {
	tests := []struct {
		name string
		a, b string
	}{
		{"fragment only on one side", "http://x.com/a#f1", "http://x.com/a"},
		{"different fragments", "http://x.com/a#f1", "http://x.com/a#f2"},
		{"query order", "http://x.com/a?a=1&b=2", "http://x.com/a?b=2&a=1"},
		{"more keys on one side", "http://x.com/a?a=1", "http://x.com/a?a=1&b=2&c=3"},
		{"disjoint keys same size", "http://x.com/a?a=1&b=1", "http://x.com/a?c=1&d=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, Distance(RawURL(tt.a), RawURL(tt.b)), Distance(RawURL(tt.b), RawURL(tt.a)))
		})
	}
}

func TestDistance_Aggregate(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "http://x.com/a", "http://x.com/a", 0},
		{"scheme", "http://x.com/a", "https://x.com/a", 1},
		{"fragment", "http://x.com/a#f1", "http://x.com/a", 1},
		{"host and port", "http://x.com/a", "http://y.com:81/a", 2},
		{"query order ignored", "http://x.com/a?a=1&b=2", "http://x.com/a?b=2&a=1", 0},
		{"values ignored by default", "http://x.com/a?q=1", "http://x.com/a?q=2", 0},
		{"one extra key is weighted", "http://x.com/a?q=1", "http://x.com/a?q=2&r=3", 2},
		{"extension differs", "http://x.com/a.php", "http://x.com/a.asp", 2},
		{"extension one side", "http://x.com/a/b.php", "http://x.com/a/b", 2},
		{"numeric suffix is not an extension", "http://x.com/v1.2", "http://x.com/v1.3", 1},
		{"everything", "http://a.com/x", "ftp://b.org/y/z?q=1", 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Distance(RawURL(tt.a), RawURL(tt.b)))
		})
	}
}

func TestDistanceWithin_Saturates(t *testing.T) {
	m := NewMetric(DefaultMetricOptions())
	a, b := RawURL("http://a.com/x"), RawURL("ftp://b.org/y/z?q=1")

	assert.Equal(t, 6.0, m.Distance(a, b))
	assert.Equal(t, 6.0, m.DistanceWithin(a, b, math.Inf(1)))
	assert.Equal(t, 6.0, m.DistanceWithin(a, b, 100))
	assert.Equal(t, 3.0, m.DistanceWithin(a, b, 3))
	assert.Equal(t, 1.0, m.DistanceWithin(a, b, 1))
	assert.Equal(t, 0.0, m.DistanceWithin(a, b, 0))
	assert.Equal(t, 0.0, m.DistanceWithin(a, b, -5))

	// Below the limit the exact value comes back.
	assert.Equal(t, 1.0, m.DistanceWithin(RawURL("http://x.com/a"), RawURL("https://x.com/a"), 2))
}

func TestPathDistance_Positional(t *testing.T) {
	m := NewMetric(DefaultMetricOptions())

	tests := []struct {
		a, b string
		want float64
	}{
		{"/", "/", 0},
		{"/a/b/c", "/a/b/c", 0},
		{"/a/b/c", "/a/x", 2},
		{"/a", "/a/b", 1},
		{"/a/b", "/b/a", 2},
		{"", "/a/b/c", 3},
	}

	for _, tt := range tests {
		t.Run(tt.a+" vs "+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, m.PathDistance(Parse(tt.a), Parse(tt.b)))
		})
	}
}

func TestPathDistance_MonotonicOnAppend(t *testing.T) {
	a := Parse("http://x.com/api/v1/users")
	m := NewMetric(DefaultMetricOptions())

	b := "http://x.com/api/v2/users"
	prev := m.PathDistance(a, Parse(b))
	for _, seg := range []string{"1", "edit", "api", "users"} {
		b += "/" + seg
		next := m.PathDistance(a, Parse(b))
		assert.Greater(t, next, prev, "appending %q to %s", seg, b)
		prev = next
	}
}

func TestPathDistance_EditRatio(t *testing.T) {
	opts := DefaultMetricOptions()
	opts.PathStrategy = PathEditRatio
	m := NewMetric(opts)

	assert.Zero(t, m.PathDistance(Parse("/users/1"), Parse("/users/1")))
	assert.Zero(t, m.PathDistance(Parse(""), Parse("")))
	assert.InDelta(t, 4.0/9.0, m.PathDistance(Parse("/users/1"), Parse("/users/12")), 1e-9)
	assert.InDelta(t, 4.0/9.0, m.PathDistance(Parse("/users/12"), Parse("/users/1")), 1e-9)
	assert.InDelta(t, 4.0, m.PathDistance(Parse(""), Parse("/x")), 1e-9)

	// Insertions anywhere cost the same.
	front := m.PathDistance(Parse("/a/b/c"), Parse("/z/a/b/c"))
	back := m.PathDistance(Parse("/a/b/c"), Parse("/a/b/c/z"))
	assert.InDelta(t, front, back, 1e-9)
}

func TestPathDistance_EditRatioScale(t *testing.T) {
	opts := DefaultMetricOptions()
	opts.PathStrategy = PathEditRatio
	opts.PathRatioScale = 10
	m := NewMetric(opts)

	assert.InDelta(t, 10.0*2.0/3.0, m.PathDistance(Parse("/ab"), Parse("/cd")), 1e-9)
}

func TestExtensionDistance(t *testing.T) {
	m := NewMetric(DefaultMetricOptions())

	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"neither", "/a", "/b", 0},
		{"same", "/a.php", "/b.php", 0},
		{"case differs", "/a.html", "/a.HTML", 1},
		{"different", "/a.php", "/a.asp", 1},
		{"one side", "/a.php", "/a", 1},
		{"numeric suffixes", "/v1.2", "/v1.3", 0},
		{"numeric against real", "/v1.2", "/v1.js", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.ExtensionDistance(Parse(tt.a), Parse(tt.b)))
			assert.Equal(t, tt.want, m.ExtensionDistance(Parse(tt.b), Parse(tt.a)))
		})
	}
}

func TestQueryDistance_KeysOnly(t *testing.T) {
	m := NewMetric(DefaultMetricOptions())

	assert.Equal(t, 0, m.QueryDistance(ParseQuery("a=1&b=2"), ParseQuery("b=2&a=1")))
	assert.Equal(t, 2, m.QueryDistance(ParseQuery("a=1"), ParseQuery("a=1&b=2&c=3")))
	assert.Equal(t, 2, m.QueryDistance(ParseQuery("a=1&b=2&c=3"), ParseQuery("a=1")))
	assert.Equal(t, 0, m.QueryDistance(ParseQuery("a=1"), ParseQuery("a=999")))
	assert.Equal(t, 2, m.QueryDistance(ParseQuery("a=1&b=1"), ParseQuery("c=1&d=1")))
	assert.Equal(t, 0, m.QueryDistance(nil, QueryMap{}))
}

func TestQueryDistance_Values(t *testing.T) {
	opts := DefaultMetricOptions()
	opts.QueryMode = QueryValues
	m := NewMetric(opts)

	assert.Equal(t, 1, m.QueryDistance(ParseQuery("a=1"), ParseQuery("a=2")))
	assert.Equal(t, 0, m.QueryDistance(ParseQuery("a=1&a=2"), ParseQuery("a=2&a=1")))
	assert.Equal(t, 1, m.QueryDistance(ParseQuery("a=1&a=1"), ParseQuery("a=1")))
	assert.Equal(t, 3, m.QueryDistance(ParseQuery("a=1&b=1"), ParseQuery("a=2&b=1&c=1&d=1")))
	assert.Equal(t, 3, m.QueryDistance(ParseQuery("a=2&b=1&c=1&d=1"), ParseQuery("a=1&b=1")))
}

func TestDistance_IgnoredParams(t *testing.T) {
	plain := NewMetric(DefaultMetricOptions())

	opts := DefaultMetricOptions()
	opts.IgnoreTracking = true
	opts.IgnoredParams = []string{"SESSION"}
	m := NewMetric(opts)

	a := RawURL("http://x.com/p?id=1&utm_source=x&utm_whatever=y&session=abc")
	b := RawURL("http://x.com/p?id=1")

	assert.Equal(t, 6.0, plain.Distance(a, b))
	assert.Zero(t, m.Distance(a, b))
	assert.True(t, m.IsSubset(a, b))
	assert.False(t, plain.IsSubset(a, b))
}

func TestIsSubset(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"self", "http://x.com/a?k=1", "http://x.com/a?k=1", true},
		{"longer path and extra keys", "http://x.com/api", "http://x.com/api/v1?x=1", true},
		{"shorter path", "http://x.com/api/v1", "http://x.com/api", false},
		{"missing key", "http://x.com/api?x=1", "http://x.com/api/v1", false},
		{"scheme differs", "http://x.com/api", "https://x.com/api", false},
		{"host differs", "http://x.com/api", "http://y.com/api", false},
		{"port differs", "http://x.com/api", "http://x.com:8080/api", false},
		{"credentials differ", "http://u:p@x.com/", "http://u:q@x.com/", false},
		{"fragment ignored", "http://x.com/a#one", "http://x.com/a#two", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSubset(RawURL(tt.a), RawURL(tt.b)))
		})
	}

	for _, raw := range sampleURLs {
		assert.True(t, IsSubset(RawURL(raw), RawURL(raw)), raw)
	}
}

func TestIterDistance(t *testing.T) {
	assert.Equal(t, 0, IterDistance([]string{}, []string{}))
	assert.Equal(t, 0, IterDistance([]int{1, 2}, []int{1, 2}))
	assert.Equal(t, 1, IterDistance([]int{1, 2}, []int{1, 3}))
	assert.Equal(t, 3, IterDistance([]int{1}, []int{2, 3, 4}))
	assert.Equal(t, 3, IterDistance([]int{2, 3, 4}, []int{1}))
}

func TestNewMetric_FallsBack(t *testing.T) {
	m := NewMetric(MetricOptions{QueryMode: QueryMode(9), PathStrategy: PathStrategy(9)})

	assert.Equal(t, QueryKeysOnly, m.Options().QueryMode)
	assert.Equal(t, PathPositional, m.Options().PathStrategy)
	assert.Equal(t, DefaultPathRatioScale, m.Options().PathRatioScale)
}

func allMetrics() []*Metric {
	var out []*Metric
	for _, qm := range []QueryMode{QueryKeysOnly, QueryValues} {
		for _, ps := range []PathStrategy{PathPositional, PathEditRatio} {
			opts := DefaultMetricOptions()
			opts.QueryMode = qm
			opts.PathStrategy = ps
			out = append(out, NewMetric(opts))
		}
	}
	return out
}
