package pipeline

import (
	"strings"

	"hrpulse/internal/hrdata"
)

// MaxAncestorHops bounds the upward walk so a malformed tree cannot
// spin the resolver.
const MaxAncestorHops = 10

// LevelPredicate names one hierarchy level and recognizes the node
// that represents it.
type LevelPredicate struct {
	Name  string
	Match func(hrdata.HierarchyNode) bool
}

// WalkAncestors climbs from the given node toward the root, assigning
// each visited node (the starting node included) to the first level
// predicate it matches. First match wins per level; later ancestors
// cannot overwrite it. Levels never reached come back as "Unknown".
// The walk stops at the root, at a missing parent, after MaxAncestorHops,
// or when a node repeats (self-loop or cycle).
func WalkAncestors(startID string, nodes map[string]hrdata.HierarchyNode, levels []LevelPredicate) map[string]string {
	out := make(map[string]string, len(levels))
	for _, lv := range levels {
		out[lv.Name] = Unknown
	}
	seen := make(map[string]bool)
	id := startID
	for hop := 0; hop <= MaxAncestorHops; hop++ {
		node, ok := nodes[id]
		if !ok || seen[id] {
			break
		}
		seen[id] = true
		for _, lv := range levels {
			if out[lv.Name] == Unknown && lv.Match(node) {
				out[lv.Name] = node.Name
			}
		}
		if node.ParentID == "" || node.ParentID == id {
			break
		}
		id = node.ParentID
	}
	return out
}

// Level names used by the department and job walks.
const (
	LevelDivision     = "division"
	LevelOffice       = "office"
	LevelJobFamily    = "job_family"
	LevelJobSubfamily = "job_subfamily"
)

// DepartmentLevels matches the division and office tiers of the
// department tree by name convention.
func DepartmentLevels() []LevelPredicate {
	return []LevelPredicate{
		{Name: LevelDivision, Match: func(n hrdata.HierarchyNode) bool {
			return strings.Contains(n.Name, "Division")
		}},
		{Name: LevelOffice, Match: func(n hrdata.HierarchyNode) bool {
			return strings.Contains(n.Name, "Office")
		}},
	}
}

// JobLevels matches the two top tiers of the job tree by their explicit
// level attribute.
func JobLevels() []LevelPredicate {
	return []LevelPredicate{
		{Name: LevelJobFamily, Match: func(n hrdata.HierarchyNode) bool {
			return n.Level == 1
		}},
		{Name: LevelJobSubfamily, Match: func(n hrdata.HierarchyNode) bool {
			return n.Level == 2
		}},
	}
}

// nodeIndex builds the id lookup the walker needs.
func nodeIndex(nodes []hrdata.HierarchyNode) map[string]hrdata.HierarchyNode {
	idx := make(map[string]hrdata.HierarchyNode, len(nodes))
	for _, n := range nodes {
		idx[n.ID] = n
	}
	return idx
}
