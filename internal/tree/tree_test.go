package tree

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"casetracker/internal/apperr"
	"casetracker/internal/models"
)

func ptr(v int64) *int64 { return &v }

func cat(id int64, name string, parent *int64) models.Category {
	level := 1
	if parent != nil {
		level = 2
	}
	return models.Category{ID: id, Name: name, ParentID: parent, Level: level}
}

func TestNested(t *testing.T) {
	flat := []models.Category{
		cat(1, "category1", nil),
		cat(2, "category2", nil),
		cat(6, "subcategory51", ptr(5)), // listed before its parent
		cat(5, "category5", nil),
		cat(7, "subcategory52", ptr(5)),
		cat(8, "deep", ptr(7)),
	}

	got, err := Nested(flat)
	if err != nil {
		t.Fatalf("Nested: %v", err)
	}

	want := []Root{
		{ID: 1, Name: "category1", Subcategories: []Child{}},
		{ID: 2, Name: "category2", Subcategories: []Child{}},
		{ID: 5, Name: "category5", Subcategories: []Child{
			{ID: 6, Name: "subcategory51"},
			{ID: 7, Name: "subcategory52"},
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Nested mismatch (-want +got):\n%s", diff)
	}
}

func TestNestedNeverExposesThirdLevel(t *testing.T) {
	flat := []models.Category{
		cat(1, "root", nil),
		cat(2, "child", ptr(1)),
		cat(3, "grandchild", ptr(2)),
	}
	roots, err := Nested(flat)
	if err != nil {
		t.Fatalf("Nested: %v", err)
	}

	raw, err := json.Marshal(roots)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded []map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, root := range decoded {
		subs, ok := root["subcategories"].([]any)
		if !ok {
			t.Fatalf("root %v has no subcategories list", root["id"])
		}
		for _, s := range subs {
			if _, has := s.(map[string]any)["subcategories"]; has {
				t.Errorf("child %v exposes a subcategories key", s)
			}
		}
	}
}

func TestNestedMissingParent(t *testing.T) {
	_, err := Nested([]models.Category{cat(1, "root", nil), cat(2, "orphan", ptr(99))})
	if !errors.Is(err, apperr.ErrConsistency) {
		t.Fatalf("expected consistency fault, got %v", err)
	}
}

func TestNestedEmpty(t *testing.T) {
	roots, err := Nested(nil)
	if err != nil {
		t.Fatalf("Nested: %v", err)
	}
	if roots == nil || len(roots) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", roots)
	}
}

// shape renders a forest as nested names for comparison.
type shape struct {
	Name     string
	Children []shape
}

func toShape(nodes []*Node) []shape {
	var out []shape
	for _, n := range nodes {
		out = append(out, shape{Name: n.Name, Children: toShape(n.Children)})
	}
	return out
}

func TestBuildMultiLevel(t *testing.T) {
	flat := []models.Category{
		cat(4, "grandchild", ptr(3)),
		cat(1, "root", nil),
		cat(3, "child-b", ptr(1)),
		cat(2, "child-a", ptr(1)),
		cat(5, "other-root", nil),
		cat(6, "great-grandchild", ptr(4)),
	}

	roots, err := Build(flat)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := []shape{
		{Name: "root", Children: []shape{
			{Name: "child-b", Children: []shape{
				{Name: "grandchild", Children: []shape{{Name: "great-grandchild"}}},
			}},
			{Name: "child-a"},
		}},
		{Name: "other-root"},
	}
	if diff := cmp.Diff(want, toShape(roots)); diff != "" {
		t.Errorf("Build mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildFaults(t *testing.T) {
	tests := []struct {
		name string
		flat []models.Category
	}{
		{"missing parent", []models.Category{cat(1, "root", nil), cat(2, "orphan", ptr(42))}},
		{"self parent", []models.Category{cat(1, "root", nil), cat(2, "loop", ptr(2))}},
		{"two-node cycle", []models.Category{cat(1, "root", nil), cat(2, "a", ptr(3)), cat(3, "b", ptr(2))}},
		{"cycle with hanging child", []models.Category{
			cat(1, "a", ptr(2)), cat(2, "b", ptr(1)), cat(3, "c", ptr(1)),
		}},
		{"duplicate id", []models.Category{cat(1, "root", nil), cat(1, "again", nil)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roots, err := Build(tt.flat)
			if !errors.Is(err, apperr.ErrConsistency) {
				t.Fatalf("expected consistency fault, got %v", err)
			}
			if roots != nil {
				t.Errorf("expected no forest on fault, got %d roots", len(roots))
			}
		})
	}
}

func TestWalk(t *testing.T) {
	roots, err := Build([]models.Category{
		cat(1, "root", nil),
		cat(2, "child", ptr(1)),
		cat(3, "grandchild", ptr(2)),
		cat(4, "second", nil),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var visited []string
	var depths []int
	Walk(roots, func(n *Node, depth int) {
		visited = append(visited, n.Name)
		depths = append(depths, depth)
	})

	if diff := cmp.Diff([]string{"root", "child", "grandchild", "second"}, visited); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 1, 2, 0}, depths); diff != "" {
		t.Errorf("depth mismatch (-want +got):\n%s", diff)
	}
}
