// Package categories flattens supplier category trees into breadcrumb paths.
package categories

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/types"
)

// PathSeparator joins breadcrumb segments
const PathSeparator = " > "

// DefaultMaxDepth bounds traversal of supplier trees
const DefaultMaxDepth = 64

// Node is one category of a supplier tree
type Node struct {
	ID       string
	Name     string
	Children []Node
}

// Entry is a flattened category
type Entry struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Fields names the record fields of a category feed
type Fields struct {
	ID       []string
	Name     []string
	Children []string
	Parent   []string
}

// DefaultFields covers the common supplier layouts
func DefaultFields() Fields {
	return Fields{
		ID:       []string{"id", "@_id", "category_id", "categoryId"},
		Name:     []string{"name", "@_name", "title", "category_name"},
		Children: []string{"children.category", "subcategories.category", "children", "subcategories", "category"},
		Parent:   []string{"parent_id", "parentId", "@_parent", "parent"},
	}
}

// FromNested builds nodes from records holding their children inline
func FromNested(coll *types.Collection, fields Fields) []Node {
	var roots []Node
	coll.Each(func(_ string, rec types.Record) bool {
		roots = append(roots, nodeFromRecord(rec, fields))
		return true
	})
	return roots
}

func nodeFromRecord(rec types.Record, fields Fields) Node {
	// Explicit stack: supplier trees have no documented depth bound
	type frame struct {
		rec  types.Record
		node *Node
	}

	root := Node{}
	stack := []frame{{rec: rec, node: &root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		f.node.ID = f.rec.String(fields.ID...)
		f.node.Name = f.rec.String(fields.Name...)

		children := f.rec.List(fields.Children...)
		if len(children) == 0 {
			continue
		}
		f.node.Children = make([]Node, len(children))
		for i := range children {
			stack = append(stack, frame{rec: children[i], node: &f.node.Children[i]})
		}
	}
	return root
}

// FromFlat builds nodes from records that reference their parent by id.
// Records whose parent is unknown become roots.
func FromFlat(coll *types.Collection, fields Fields) []Node {
	type item struct {
		id, name, parent string
	}

	var items []item
	known := make(map[string]bool)
	coll.Each(func(key string, rec types.Record) bool {
		id := rec.String(fields.ID...)
		if id == "" {
			id = key
		}
		items = append(items, item{id: id, name: rec.String(fields.Name...), parent: rec.String(fields.Parent...)})
		known[id] = true
		return true
	})

	childrenOf := make(map[string][]string)
	names := make(map[string]string, len(items))
	var rootIDs []string
	for _, it := range items {
		names[it.id] = it.name
		if it.parent == "" || it.parent == "0" || it.parent == it.id || !known[it.parent] {
			rootIDs = append(rootIDs, it.id)
			continue
		}
		childrenOf[it.parent] = append(childrenOf[it.parent], it.id)
	}

	// Nodes unreachable from a root sit on a parent cycle and are dropped
	type frame struct {
		id   string
		node *Node
	}
	roots := make([]Node, len(rootIDs))
	var stack []frame
	for i, id := range rootIDs {
		stack = append(stack, frame{id: id, node: &roots[i]})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		f.node.ID = f.id
		f.node.Name = names[f.id]
		kids := childrenOf[f.id]
		if len(kids) == 0 {
			continue
		}
		f.node.Children = make([]Node, len(kids))
		for i, kid := range kids {
			stack = append(stack, frame{id: kid, node: &f.node.Children[i]})
		}
	}
	return roots
}

// Flatten maps every category id to its name and breadcrumb path using a
// pre-order walk. Later roots win on id collisions. Trees deeper than
// maxDepth fail with ErrCategoryTreeTooDeep.
func Flatten(roots []Node, maxDepth int, logger zerolog.Logger) (map[string]Entry, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	type frame struct {
		node  *Node
		path  string
		depth int
		root  int
	}

	out := make(map[string]Entry)
	owner := make(map[string]int)

	for r := range roots {
		stack := []frame{{node: &roots[r], depth: 1, root: r}}
		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if f.depth > maxDepth {
				return nil, fmt.Errorf("%w: category %q exceeds depth %d", types.ErrCategoryTreeTooDeep, f.node.ID, maxDepth)
			}

			path := f.node.Name
			if f.path != "" {
				path = f.path + PathSeparator + f.node.Name
			}

			if f.node.ID != "" {
				if prev, ok := owner[f.node.ID]; ok && prev != f.root {
					logger.Warn().
						Str("category_id", f.node.ID).
						Str("previous_path", out[f.node.ID].Path).
						Str("path", path).
						Msg("Category id collision across roots, keeping the later one")
				}
				out[f.node.ID] = Entry{Name: f.node.Name, Path: path}
				owner[f.node.ID] = f.root
			}

			// Push children in reverse so they pop in document order
			for i := len(f.node.Children) - 1; i >= 0; i-- {
				stack = append(stack, frame{node: &f.node.Children[i], path: path, depth: f.depth + 1, root: f.root})
			}
		}
	}

	return out, nil
}

// FlatNames maps every id to its own name only, the fallback when the tree
// cannot be flattened
func FlatNames(roots []Node) map[string]Entry {
	out := make(map[string]Entry)
	stack := make([]*Node, 0, len(roots))
	for i := range roots {
		stack = append(stack, &roots[i])
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.ID != "" {
			out[n.ID] = Entry{Name: n.Name, Path: n.Name}
		}
		for i := range n.Children {
			stack = append(stack, &n.Children[i])
		}
	}
	return out
}
