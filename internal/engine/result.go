package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Tree is an ordered result tree. Interior nodes keep their children in
// insertion order; leaves hold a summarized value (*float64, a list, or nil).
type Tree struct {
	keys     []string
	children map[string]*Tree
	value    any
	leaf     bool
}

// NewTree returns an empty interior node
func NewTree() *Tree {
	return &Tree{children: make(map[string]*Tree)}
}

// Leaf wraps a value in a leaf node
func Leaf(v any) *Tree {
	return &Tree{value: v, leaf: true}
}

func node(v any) *Tree {
	if sub, ok := v.(*Tree); ok && sub != nil {
		return sub
	}
	return Leaf(v)
}

// Set stores v under key, replacing any previous child
func (t *Tree) Set(key string, v any) {
	if _, ok := t.children[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.children[key] = node(v)
}

// Insert stores v at path, creating intermediate nodes as needed. A *Tree
// value is grafted as a subtree. Writing to a path that already holds a
// value, or through a leaf, returns ErrDuplicatePath.
func (t *Tree) Insert(path []string, v any) error {
	if len(path) == 0 {
		return fmt.Errorf("insert: empty path: %w", ErrDuplicatePath)
	}
	if t.leaf {
		return fmt.Errorf("insert %s: %w", strings.Join(path, "/"), ErrDuplicatePath)
	}

	cur := t
	for i, key := range path[:len(path)-1] {
		next, ok := cur.children[key]
		if !ok {
			next = NewTree()
			cur.Set(key, next)
		} else if next.leaf {
			return fmt.Errorf("insert %s: %w", strings.Join(path[:i+1], "/"), ErrDuplicatePath)
		}
		cur = next
	}

	last := path[len(path)-1]
	if _, ok := cur.children[last]; ok {
		return fmt.Errorf("insert %s: %w", strings.Join(path, "/"), ErrDuplicatePath)
	}
	cur.Set(last, v)
	return nil
}

// Lookup returns the node at path without creating anything
func (t *Tree) Lookup(path ...string) (*Tree, bool) {
	cur := t
	for _, key := range path {
		if cur == nil || cur.leaf {
			return nil, false
		}
		next, ok := cur.children[key]
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, cur != nil
}

// Keys returns the child keys in insertion order
func (t *Tree) Keys() []string {
	return append([]string(nil), t.keys...)
}

// Len is the number of children
func (t *Tree) Len() int {
	return len(t.keys)
}

// IsLeaf reports whether t holds a value
func (t *Tree) IsLeaf() bool {
	return t.leaf
}

// Value returns the leaf value, nil for interior nodes
func (t *Tree) Value() any {
	return t.value
}

// Float returns the number stored at path. None and non-numeric leaves
// report false.
func (t *Tree) Float(path ...string) (float64, bool) {
	n, ok := t.Lookup(path...)
	if !ok || !n.leaf {
		return 0, false
	}
	switch v := n.value.(type) {
	case *float64:
		if v == nil {
			return 0, false
		}
		return *v, true
	case float64:
		return v, true
	}
	return 0, false
}

// Flatten returns a one-level tree whose keys are the joined leaf paths
func (t *Tree) Flatten(sep string) *Tree {
	flat := NewTree()
	var walk func(prefix string, n *Tree)
	walk = func(prefix string, n *Tree) {
		for _, key := range n.keys {
			child := n.children[key]
			name := key
			if prefix != "" {
				name = prefix + sep + key
			}
			if child.leaf {
				flat.Set(name, child.value)
				continue
			}
			walk(name, child)
		}
	}
	if t.leaf {
		flat.Set("", t.value)
		return flat
	}
	walk("", t)
	return flat
}

// MarshalJSON encodes interior nodes as objects in insertion order
func (t *Tree) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("null"), nil
	}
	if t.leaf {
		return json.Marshal(t.value)
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range t.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := t.children[key].MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", key, err)
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
