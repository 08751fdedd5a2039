package regulation

// FlatNode is one row produced by flattening a document tree: a single
// searchable unit of content tagged with its position and its immediate
// parent for structural context.
type FlatNode struct {
	// Label is the node's path in the tree.
	Label []string

	// NodeType discriminates section/paragraph/appendix/etc.
	NodeType string

	// Content is the node's text, or its title when it has no text.
	Content string

	// Parent is a children-pruned copy of the immediately enclosing node,
	// or nil for the root. It is a value copy, never a reference into the
	// live tree.
	Parent *Node
}

// Flatten walks the document tree in pre-order and returns one FlatNode per
// indexable node, in document order. A node missing its label or node type,
// or carrying neither text nor title, is skipped; its children are still
// visited with the skipped node as their parent context. Flatten is a pure
// function of the tree: identical input yields identical ordered output.
func Flatten(root *Node) []FlatNode {
	var rows []FlatNode
	flattenInto(root, nil, &rows)
	return rows
}

func flattenInto(n *Node, parent *Node, rows *[]FlatNode) {
	if n == nil {
		return
	}
	if n.indexable() {
		*rows = append(*rows, FlatNode{
			Label:    n.Label,
			NodeType: n.NodeType,
			Content:  n.Content(),
			Parent:   parent,
		})
	}
	// The parent context handed to children is the enclosing node itself,
	// whether or not it indexed successfully.
	pruned := n.Pruned()
	for _, child := range n.Children {
		flattenInto(child, pruned, rows)
	}
}
