package review

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ModelRun pairs a label ("provider:model") with the pipeline that reviews
// through that model.
type ModelRun struct {
	Label    string
	Pipeline *Pipeline
}

// CompareResult holds results from multi-model comparison.
type CompareResult struct {
	Reports   map[string]*Report      // per-model report, keyed by label
	Consensus []BugFinding            // bugs reported by >=2 models
	Unique    map[string][]BugFinding // bugs only one model reported
	Merged    *Report                 // consensus plus unique bugs as one report
}

// maxCompareWorkers bounds how many models are queried at once.
const maxCompareWorkers = 4

// Compare reviews path independently with every run and merges the bugs.
// Each pipeline already degrades to an empty report on failure, so Compare
// only fails when ctx is cancelled.
func Compare(ctx context.Context, path string, runs []ModelRun) (*CompareResult, error) {
	reports := make([]*Report, len(runs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxCompareWorkers)
	for i, run := range runs {
		g.Go(func() error {
			reports[i] = run.Pipeline.Run(gctx, path)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("compare: %w", err)
	}

	labels := make([]string, len(runs))
	for i, run := range runs {
		labels[i] = run.Label
	}
	return mergeResults(labels, reports), nil
}

func mergeResults(labels []string, reports []*Report) *CompareResult {
	cr := &CompareResult{
		Reports:   make(map[string]*Report, len(reports)),
		Consensus: []BugFinding{},
		Unique:    make(map[string][]BugFinding),
	}
	for i, r := range reports {
		cr.Reports[labels[i]] = r
	}
	if len(reports) == 0 {
		cr.Merged = BuildReport(nil, nil, Metadata{})
		return cr
	}

	// A bug is consensus when a fuzzy match exists in at least one other
	// model's report. Matched bugs are grouped transitively and each group
	// is reported once.
	type matchKey struct {
		report int
		bug    int
	}
	parent := make(map[matchKey]matchKey)
	var find func(k matchKey) matchKey
	find = func(k matchKey) matchKey {
		p, ok := parent[k]
		if !ok || p == k {
			return k
		}
		root := find(p)
		parent[k] = root
		return root
	}
	union := func(a, b matchKey) {
		ra, rb := find(a), find(b)
		parent[ra] = ra
		parent[rb] = ra
	}
	for i := 0; i < len(reports); i++ {
		for bi, a := range reports[i].Bugs {
			for j := i + 1; j < len(reports); j++ {
				for bj, b := range reports[j].Bugs {
					if fuzzyMatch(a, b) {
						union(matchKey{i, bi}, matchKey{j, bj})
					}
				}
			}
		}
	}

	seen := make(map[matchKey]bool)
	var all []BugFinding
	var opts []OptimizationFinding
	for i, r := range reports {
		for bi, b := range r.Bugs {
			k := matchKey{i, bi}
			if _, ok := parent[k]; !ok {
				cr.Unique[labels[i]] = append(cr.Unique[labels[i]], b)
				all = append(all, b)
				continue
			}
			root := find(k)
			if seen[root] {
				continue
			}
			seen[root] = true
			cr.Consensus = append(cr.Consensus, b)
			all = append(all, b)
		}
		opts = append(opts, r.Optimizations...)
	}

	md := reports[0].Metadata
	md.RunID = ""
	cr.Merged = BuildReport(all, opts, md)
	return cr
}

// fuzzyMatch determines if two bugs are similar enough to be considered the same.
func fuzzyMatch(a, b BugFinding) bool {
	if !linesNear(a.Line, b.Line) {
		return false
	}
	if strings.EqualFold(strings.TrimSpace(a.Type), strings.TrimSpace(b.Type)) && a.Type != "" {
		return true
	}
	return textSimilar(a.Description, b.Description)
}

// linesNear treats lines within two of each other as the same location.
// Unknown lines (0) only match each other.
func linesNear(a, b int) bool {
	if a == 0 || b == 0 {
		return a == b
	}
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= 2
}

func textSimilar(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}

	if a == b {
		return true
	}

	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}

	// Word overlap: >50% of words in common
	wordsA := strings.Fields(a)
	wordsB := strings.Fields(b)

	setB := make(map[string]bool)
	for _, w := range wordsB {
		setB[w] = true
	}

	overlap := 0
	for _, w := range wordsA {
		if setB[w] {
			overlap++
		}
	}

	return float64(overlap)/float64(min(len(wordsA), len(wordsB))) > 0.5
}

// ParseModelSpec splits "provider:model".
func ParseModelSpec(spec string) (string, string, error) {
	parts := strings.SplitN(spec, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid model spec %q: expected provider:model", spec)
	}
	return parts[0], parts[1], nil
}
