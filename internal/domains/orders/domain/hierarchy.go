package domain

import (
	"sort"
	"sync"
)

// EmployeeLink is one row of the flat reporting structure. ReportsTo is zero at the top.
type EmployeeLink struct {
	ID        int64
	ReportsTo int64
}

// EmployeeHierarchy answers reporting-line questions from parent ids alone.
// The parent to children index is only built the first time it is needed.
type EmployeeHierarchy struct {
	parent map[int64]int64

	once     sync.Once
	children map[int64][]int64
}

// NewEmployeeHierarchy indexes the given links by employee id. Cycles are not detected.
func NewEmployeeHierarchy(links []EmployeeLink) *EmployeeHierarchy {
	h := &EmployeeHierarchy{parent: make(map[int64]int64, len(links))}
	for _, l := range links {
		h.parent[l.ID] = l.ReportsTo
	}
	return h
}

// Manager returns the id the employee reports to, false for unknown or top-level employees.
func (h *EmployeeHierarchy) Manager(id int64) (int64, bool) {
	p, ok := h.parent[id]
	if !ok || p == 0 {
		return 0, false
	}
	return p, true
}

// DirectReports lists the ids reporting to id in ascending order.
func (h *EmployeeHierarchy) DirectReports(id int64) []int64 {
	h.once.Do(h.buildIndex)
	reports := h.children[id]
	out := make([]int64, len(reports))
	copy(out, reports)
	return out
}

// Roots lists employees without a manager in ascending order.
func (h *EmployeeHierarchy) Roots() []int64 {
	var roots []int64
	for id, p := range h.parent {
		if p == 0 {
			roots = append(roots, id)
		}
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })
	return roots
}

// Len is the number of employees known to the hierarchy.
func (h *EmployeeHierarchy) Len() int { return len(h.parent) }

func (h *EmployeeHierarchy) buildIndex() {
	h.children = make(map[int64][]int64)
	for id, p := range h.parent {
		if p != 0 {
			h.children[p] = append(h.children[p], id)
		}
	}
	for _, ids := range h.children {
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}
}
