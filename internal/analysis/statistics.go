package analysis

import (
	"sort"

	"prism/internal/extractor"
	"prism/internal/graph"
	"prism/internal/index"
)

// Statistics summarizes an analyzed codebase.
type Statistics struct {
	TotalClasses       int `json:"total_classes"`
	TotalFunctions     int `json:"total_functions"`
	TotalMethods       int `json:"total_methods"`
	TotalCalls         int `json:"total_calls"`
	GlobalCalls        int `json:"global_calls"`
	UnresolvedCallees  int `json:"unresolved_callees"`
	FilesWithErrors    int `json:"files_with_errors"`
	DirectoriesSkipped int `json:"directories_skipped"`
}

// Hotspot is a function ranked by how often it is called.
type Hotspot struct {
	Identifier string `json:"identifier"`
	File       string `json:"file,omitempty"`
	Callers    int    `json:"callers"`
	Callees    int    `json:"callees"`
}

// Summarize computes the statistics of cb.
func Summarize(cb *index.Codebase) Statistics {
	stats := Statistics{
		TotalClasses:       len(cb.Classes),
		TotalCalls:         len(cb.Calls),
		FilesWithErrors:    len(cb.Errors),
		DirectoriesSkipped: len(cb.Skipped),
	}
	for _, fn := range cb.Functions {
		if fn.Class != "" {
			stats.TotalMethods++
		} else {
			stats.TotalFunctions++
		}
	}
	for _, e := range cb.Calls {
		if e.Caller == extractor.GlobalCaller {
			stats.GlobalCalls++
		}
	}
	stats.UnresolvedCallees = graph.Build(cb.Functions, cb.Calls).UnresolvedCallees()
	return stats
}

// Hotspots returns up to limit known functions ordered by incoming call
// count, most called first. Functions nobody calls are omitted.
func Hotspots(functions []extractor.FunctionRecord, calls []extractor.CallEdge, limit int) []Hotspot {
	g := graph.Build(functions, calls)
	spots := []Hotspot{}
	seen := make(map[string]bool)
	for _, fn := range functions {
		if seen[fn.Identifier] {
			continue
		}
		seen[fn.Identifier] = true
		out, in := g.Degree(fn.Identifier)
		if in == 0 {
			continue
		}
		spots = append(spots, Hotspot{Identifier: fn.Identifier, File: fn.File, Callers: in, Callees: out})
	}
	sort.SliceStable(spots, func(i, j int) bool {
		return spots[i].Callers > spots[j].Callers
	})
	if limit > 0 && len(spots) > limit {
		spots = spots[:limit]
	}
	return spots
}
