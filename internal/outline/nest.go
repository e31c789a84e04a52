package outline

// Node is a heading with the headings nested under it.
type Node struct {
	Level    Level  `json:"level"`
	Text     string `json:"text"`
	Page     int    `json:"page"`
	Children []Node `json:"children,omitempty"`
}

// Nest turns the flat, ordered outline into a tree. A heading becomes the
// child of the closest preceding heading with a smaller level; skipped
// levels are kept as they are.
func Nest(headings []Heading) []Node {
	type frame struct {
		level Level
		node  *Node
	}
	root := &Node{}
	stack := []frame{{level: 0, node: root}}
	// Only the last child of each open level is ever written through the
	// stack, so growing a Children slice never strands a pointer in use.
	for _, h := range headings {
		for len(stack) > 1 && stack[len(stack)-1].level >= h.Level {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1].node
		parent.Children = append(parent.Children, Node{Level: h.Level, Text: h.Text, Page: h.Page})
		child := &parent.Children[len(parent.Children)-1]
		stack = append(stack, frame{level: h.Level, node: child})
	}
	return root.Children
}
