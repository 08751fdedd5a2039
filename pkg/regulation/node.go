package regulation

import (
	"encoding/json"
	"strings"
)

// Node is one element of a regulation document tree: a part, subpart,
// section, paragraph, appendix, etc. The same shape is used for both the
// full document tree and the parallel structure skeleton.
//
// A node's label is the ordered sequence of path segments identifying its
// position (e.g. ["107", "1"] for section 107.1). Labels are unique within
// a single tree.
type Node struct {
	Label    []string `json:"label,omitempty"`
	NodeType string   `json:"node_type,omitempty"`
	Title    string   `json:"title,omitempty"`
	Text     string   `json:"text,omitempty"`
	Children []*Node  `json:"children,omitempty"`
}

// ParseNode decodes a JSON document tree payload.
func ParseNode(data []byte) (*Node, error) {
	var n Node
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// LabelString joins a label's segments into the flat form used for indexing
// and uniqueness checks (e.g. "107-1").
func LabelString(label []string) string {
	return strings.Join(label, "-")
}

// Pruned returns a shallow copy of the node with its children removed.
// This is the form embedded as another row's parent so that parent copies
// stay bounded regardless of subtree size.
func (n *Node) Pruned() *Node {
	if n == nil {
		return nil
	}
	c := *n
	c.Children = nil
	return &c
}

// Find walks the tree depth-first and returns the node with the given
// label, or nil if no node matches.
func (n *Node) Find(label []string) *Node {
	if n == nil {
		return nil
	}
	if labelEqual(n.Label, label) {
		return n
	}
	for _, child := range n.Children {
		if found := child.Find(label); found != nil {
			return found
		}
	}
	return nil
}

// Content returns the node's searchable text: the text field when present,
// falling back to the title. Empty when the node carries neither.
func (n *Node) Content() string {
	if n.Text != "" {
		return n.Text
	}
	return n.Title
}

// indexable reports whether the node carries the fields required to emit a
// flat index row: a label, a node type, and some content.
func (n *Node) indexable() bool {
	return len(n.Label) > 0 && n.NodeType != "" && n.Content() != ""
}

func labelEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
