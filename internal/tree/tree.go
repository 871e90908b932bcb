// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package tree builds category forests from the flat parent-pointer list
// returned by the category store.
package tree

import (
	"casetracker/internal/apperr"
	"casetracker/internal/models"
)

// Root is a top-level category in the two-level listing, carrying its
// direct children.
type Root struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Subcategories []Child `json:"subcategories"`
}

// Child is a direct child of a Root. It has no subcategories field, so the
// listing cannot expose a third level.
type Child struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Nested returns the two-level listing: roots in their listing order, each
// with its direct children in listing order. A child may appear before its
// parent in flat. Categories below the second level are left out. A
// category whose parent is not in flat at all is a consistency fault.
func Nested(flat []models.Category) ([]Root, error) {
	known := make(map[int64]bool, len(flat))
	index := make(map[int64]int)
	roots := make([]Root, 0)
	for _, c := range flat {
		known[c.ID] = true
		if c.ParentID == nil {
			index[c.ID] = len(roots)
			roots = append(roots, Root{ID: c.ID, Name: c.Name, Subcategories: []Child{}})
		}
	}

	for _, c := range flat {
		if c.ParentID == nil {
			continue
		}
		pos, ok := index[*c.ParentID]
		if !ok {
			if !known[*c.ParentID] {
				return nil, apperr.Consistencyf("category %d references missing parent %d", c.ID, *c.ParentID)
			}
			// Parent is itself a subcategory.
			continue
		}
		roots[pos].Subcategories = append(roots[pos].Subcategories, Child{ID: c.ID, Name: c.Name})
	}
	return roots, nil
}

// Node is a category in the full-depth forest. Each node owns its
// Children; no node appears twice.
type Node struct {
	ID       int64
	Name     string
	Children []*Node
}

// Build returns the full-depth forest. Roots and every child list keep the
// order of flat. It fails with a consistency fault when a parent is missing
// or when the parent links contain a cycle, before any caller can recurse
// into the result.
func Build(flat []models.Category) ([]*Node, error) {
	nodes := make(map[int64]*Node, len(flat))
	for _, c := range flat {
		if _, dup := nodes[c.ID]; dup {
			return nil, apperr.Consistencyf("category %d listed twice", c.ID)
		}
		nodes[c.ID] = &Node{ID: c.ID, Name: c.Name}
	}

	var roots []*Node
	for _, c := range flat {
		n := nodes[c.ID]
		if c.ParentID == nil {
			roots = append(roots, n)
			continue
		}
		parent, ok := nodes[*c.ParentID]
		if !ok {
			return nil, apperr.Consistencyf("category %d references missing parent %d", c.ID, *c.ParentID)
		}
		parent.Children = append(parent.Children, n)
	}

	// Every node has at most one parent, so a node not reachable from a root
	// sits on (or hangs off) a parent cycle.
	reached := 0
	stack := append([]*Node(nil), roots...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		reached++
		stack = append(stack, n.Children...)
	}
	if reached != len(nodes) {
		for _, c := range flat {
			if !reachable(nodes[c.ID], roots) {
				return nil, apperr.Consistencyf("category %d is part of a parent cycle", c.ID)
			}
		}
	}
	return roots, nil
}

func reachable(target *Node, from []*Node) bool {
	for _, n := range from {
		if n == target || reachable(target, n.Children) {
			return true
		}
	}
	return false
}

// Walk calls fn for every node in depth-first pre-order.
func Walk(nodes []*Node, fn func(n *Node, depth int)) {
	walk(nodes, 0, fn)
}

func walk(nodes []*Node, depth int, fn func(n *Node, depth int)) {
	for _, n := range nodes {
		fn(n, depth)
		walk(n.Children, depth+1, fn)
	}
}
