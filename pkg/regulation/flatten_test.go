package regulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func part107() *Node {
	return &Node{
		Label:    []string{"107"},
		NodeType: "part",
		Title:    "Part 107",
		Children: []*Node{
			{
				Label:    []string{"107", "1"},
				NodeType: "section",
				Text:     "Applicability of this part.",
			},
		},
	}
}

func TestFlatten(t *testing.T) {
	t.Run("part with one section", func(t *testing.T) {
		rows := Flatten(part107())
		require.Len(t, rows, 2)

		assert.Equal(t, []string{"107"}, rows[0].Label)
		assert.Equal(t, "part", rows[0].NodeType)
		assert.Equal(t, "Part 107", rows[0].Content)
		assert.Nil(t, rows[0].Parent)

		assert.Equal(t, []string{"107", "1"}, rows[1].Label)
		assert.Equal(t, "section", rows[1].NodeType)
		assert.Equal(t, "Applicability of this part.", rows[1].Content)
		require.NotNil(t, rows[1].Parent)
		assert.Equal(t, []string{"107"}, rows[1].Parent.Label)
		assert.Equal(t, "part", rows[1].Parent.NodeType)
		assert.Equal(t, "Part 107", rows[1].Parent.Title)
		assert.Nil(t, rows[1].Parent.Children, "parent copies must be children-pruned")
	})

	t.Run("text preferred over title", func(t *testing.T) {
		rows := Flatten(&Node{
			Label:    []string{"1"},
			NodeType: "section",
			Title:    "Heading",
			Text:     "Body text.",
		})
		require.Len(t, rows, 1)
		assert.Equal(t, "Body text.", rows[0].Content)
	})

	t.Run("pre-order document order", func(t *testing.T) {
		root := &Node{
			Label:    []string{"10"},
			NodeType: "part",
			Title:    "Part 10",
			Children: []*Node{
				{
					Label:    []string{"10", "1"},
					NodeType: "section",
					Text:     "First.",
					Children: []*Node{
						{Label: []string{"10", "1", "a"}, NodeType: "paragraph", Text: "First (a)."},
					},
				},
				{Label: []string{"10", "2"}, NodeType: "section", Text: "Second."},
			},
		}
		rows := Flatten(root)
		require.Len(t, rows, 4)
		var labels []string
		for _, r := range rows {
			labels = append(labels, LabelString(r.Label))
		}
		assert.Equal(t, []string{"10", "10-1", "10-1-a", "10-2"}, labels)
	})

	t.Run("deterministic", func(t *testing.T) {
		first := Flatten(part107())
		second := Flatten(part107())
		assert.Equal(t, first, second)
	})

	t.Run("node missing node_type is skipped but children index", func(t *testing.T) {
		root := &Node{
			Label:    []string{"20"},
			NodeType: "part",
			Title:    "Part 20",
			Children: []*Node{
				{
					// No node_type: not indexable.
					Label: []string{"20", "A"},
					Title: "Subpart A",
					Children: []*Node{
						{Label: []string{"20", "1"}, NodeType: "section", Text: "Scope."},
					},
				},
			},
		}
		rows := Flatten(root)
		require.Len(t, rows, 2)
		assert.Equal(t, []string{"20"}, rows[0].Label)
		assert.Equal(t, []string{"20", "1"}, rows[1].Label)

		// The child's parent is the skipped node itself, not the nearest
		// indexable ancestor.
		require.NotNil(t, rows[1].Parent)
		assert.Equal(t, []string{"20", "A"}, rows[1].Parent.Label)
		assert.Empty(t, rows[1].Parent.NodeType)
	})

	t.Run("node without text or title is skipped", func(t *testing.T) {
		rows := Flatten(&Node{
			Label:    []string{"30"},
			NodeType: "part",
			Children: []*Node{
				{Label: []string{"30", "1"}, NodeType: "section", Text: "Kept."},
			},
		})
		require.Len(t, rows, 1)
		assert.Equal(t, []string{"30", "1"}, rows[0].Label)
	})

	t.Run("duplicate labels are both emitted in pre-order", func(t *testing.T) {
		// De-duplication happens at insert time (first row wins); the
		// flattener itself reports everything it sees.
		root := &Node{
			Label:    []string{"40"},
			NodeType: "part",
			Title:    "Part 40",
			Children: []*Node{
				{Label: []string{"40", "1"}, NodeType: "section", Text: "First occurrence."},
				{Label: []string{"40", "1"}, NodeType: "section", Text: "Second occurrence."},
			},
		}
		rows := Flatten(root)
		require.Len(t, rows, 3)
		assert.Equal(t, "First occurrence.", rows[1].Content)
		assert.Equal(t, "Second occurrence.", rows[2].Content)
	})

	t.Run("nil tree", func(t *testing.T) {
		assert.Empty(t, Flatten(nil))
	})
}

func TestNodeFind(t *testing.T) {
	root := part107()

	found := root.Find([]string{"107", "1"})
	require.NotNil(t, found)
	assert.Equal(t, "section", found.NodeType)

	assert.Nil(t, root.Find([]string{"107", "2"}))
	assert.Same(t, root, root.Find([]string{"107"}))
}

func TestParseNode(t *testing.T) {
	payload := `{
		"label": ["107"],
		"node_type": "part",
		"title": "Part 107",
		"children": [
			{"label": ["107", "1"], "node_type": "section", "text": "Applicability of this part."}
		]
	}`
	n, err := ParseNode([]byte(payload))
	require.NoError(t, err)
	assert.Equal(t, part107(), n)

	_, err = ParseNode([]byte("{not json"))
	require.Error(t, err)
}

func TestLabelString(t *testing.T) {
	assert.Equal(t, "107-1-a", LabelString([]string{"107", "1", "a"}))
	assert.Equal(t, "", LabelString(nil))
}
