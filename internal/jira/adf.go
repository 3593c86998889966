package jira

// Atlassian Document Format, reduced to the node shapes the pipeline
// reads and writes.

// Node is a single ADF node. Text carries the payload of "text" nodes;
// everything else nests through Content.
type Node struct {
	Type    string         `json:"type"`
	Text    string         `json:"text,omitempty"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []Node         `json:"content,omitempty"`
}

// Document is a top-level ADF document.
type Document struct {
	Type    string `json:"type"`
	Version int    `json:"version"`
	Content []Node `json:"content"`
}

// Section is one heading-plus-body pair of a comment.
type Section struct {
	Heading string
	Body    string
}

// BuildDocument renders sections as a level-3 heading followed by a
// paragraph. A section with an empty body emits only the heading.
func BuildDocument(sections []Section) Document {
	var content []Node
	for _, s := range sections {
		content = append(content, Node{
			Type:    "heading",
			Attrs:   map[string]any{"level": 3},
			Content: []Node{{Type: "text", Text: s.Heading}},
		})
		if s.Body != "" {
			content = append(content, Node{
				Type:    "paragraph",
				Content: []Node{{Type: "text", Text: s.Body}},
			})
		}
	}
	return Document{Type: "doc", Version: 1, Content: content}
}
