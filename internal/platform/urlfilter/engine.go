package urlfilter

import (
	"math"
	"slices"

	"urldiff/internal/platform/logx"
)

// NoNeighbor is the Distance reported for a URL accepted into an empty set.
var NoNeighbor = math.Inf(1)

// Decision is the engine's verdict on one URL.
type Decision struct {
	Raw      string    // Input as given
	URL      ParsedURL // Parsed form
	Accepted bool      // False when suppressed as a near-duplicate
	Distance float64   // Distance to the nearest probed neighbour, NoNeighbor if none
	Neighbor string    // Raw form of the nearest probed neighbour, "" if none
	Checked  int       // Number of accepted entries probed
	Index    int       // Sorted position after insertion, -1 when suppressed
}

// HasNeighbor reports whether at least one accepted entry was probed.
func (d Decision) HasNeighbor() bool {
	return !math.IsInf(d.Distance, 1)
}

// Engine suppresses near-duplicate URLs. It owns a sorted, append-only set
// of accepted URLs and compares each candidate only against a bounded window
// of entries around its sorted insertion point, so a near-duplicate sitting
// far away in sort order can be accepted again.
//
// An Engine is not safe for concurrent use.
type Engine struct {
	opts     Options
	metric   *Metric
	accepted []ParsedURL
	stats    EngineStats
	logger   logx.Logger
}

// NewEngine creates an engine with an empty accepted set.
func NewEngine(opts Options, logger logx.Logger) *Engine {
	if logger == nil {
		logger = logx.NewNop()
	}

	if err := opts.Validate(); err != nil {
		logger.Warn("invalid engine options, using defaults", "error", err.Error())
		opts = DefaultOptions()
	}

	e := &Engine{
		opts:   opts,
		metric: NewMetric(opts.Metric),
		logger: logger.With("component", "dedup_engine"),
	}

	e.logger.Debug("initialized dedup engine",
		"threshold", opts.Threshold,
		"window", opts.Window,
		"query_mode", opts.Metric.QueryMode.String(),
		"path_strategy", opts.Metric.PathStrategy.String(),
		"ignored_params", len(opts.Metric.IgnoredParams),
		"ignore_tracking", opts.Metric.IgnoreTracking,
	)

	return e
}

// Process parses raw and runs it through InsertIfNovel.
func (e *Engine) Process(raw string) Decision {
	return e.InsertIfNovel(RawURL(raw))
}

// InsertIfNovel accepts u unless a probed neighbour lies closer than the
// threshold. Accepted URLs are inserted at their sorted position.
func (e *Engine) InsertIfNovel(u URLLike) Decision {
	p := u.ParsedURL()
	e.stats.Processed++

	d := Decision{
		Raw:      p.Raw(),
		URL:      p,
		Distance: NoNeighbor,
		Index:    -1,
	}

	pos, _ := slices.BinarySearchFunc(e.accepted, p, Compare)

	if len(e.accepted) > 0 {
		idx, dist, checked := e.nearest(p, pos)
		d.Checked = checked
		e.stats.Comparisons += checked
		if idx >= 0 {
			d.Distance = dist
			d.Neighbor = e.accepted[idx].Raw()
		}
	}

	if d.Distance < e.opts.Threshold {
		e.stats.Suppressed++
		e.logger.Debug("suppressed near-duplicate",
			"url", d.Raw,
			"neighbor", d.Neighbor,
			"distance", d.Distance,
			"checked", d.Checked,
		)
		return d
	}

	e.accepted = slices.Insert(e.accepted, pos, p)
	e.stats.Accepted++
	d.Accepted = true
	d.Index = pos
	return d
}

// nearest returns the index of and exact distance to the closest entry inside
// the probe window around pos, plus the number of entries probed. The window
// covers every entry while the set holds at most 2k of them, otherwise
// positions [pos-k, pos+k) wrapped around the set size.
func (e *Engine) nearest(p ParsedURL, pos int) (int, float64, int) {
	n := len(e.accepted)
	k := e.opts.Window

	best := math.Inf(1)
	bestIdx := -1
	checked := 0

	probe := func(i int) bool {
		checked++
		// Saturation at best never beats best, so any improvement is exact.
		dist := e.metric.distance(p, e.accepted[i], best)
		if dist < best {
			best = dist
			bestIdx = i
		}
		return best == 0
	}

	if n <= 2*k {
		for i := range n {
			if probe(i) {
				break
			}
		}
		return bestIdx, best, checked
	}

	for off := -k; off < k; off++ {
		i := ((pos+off)%n + n) % n
		if probe(i) {
			break
		}
	}
	return bestIdx, best, checked
}

// Len returns the number of accepted URLs.
func (e *Engine) Len() int {
	return len(e.accepted)
}

// Accepted returns a sorted copy of the accepted set.
func (e *Engine) Accepted() []ParsedURL {
	return slices.Clone(e.accepted)
}

// Stats returns decision counters.
func (e *Engine) Stats() EngineStats {
	return e.stats
}

// Options returns the effective options.
func (e *Engine) Options() Options {
	return e.opts
}
