// Package render is the drawing collaborator of the chart components: a
// retained scene graph of named SVG nodes, numeric and time scales, axes,
// line and geographic path generators.
package render

import (
	"fmt"
	"strings"
	"time"
)

// Event is delivered to node handlers.
type Event struct {
	Type   string
	Target *Node
}

// Handler reacts to an event dispatched on a node.
type Handler func(Event)

// Node is one element of the scene graph. A node's name is its identity
// among its siblings; EnsureChild and Join rely on it to reuse nodes across
// redraws.
type Node struct {
	tag  string
	name string

	attrs     map[string]string
	attrOrder []string
	classes   []string
	text      string

	parent   *Node
	children []*Node

	handlers map[string]Handler
	tweens   map[string]tween
}

// NewNode creates a detached node.
func NewNode(tag, name string) *Node {
	return &Node{tag: tag, name: name, attrs: make(map[string]string)}
}

func (n *Node) Tag() string   { return n.tag }
func (n *Node) Name() string  { return n.name }
func (n *Node) Parent() *Node { return n.parent }
func (n *Node) Text() string  { return n.text }

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// SetText replaces the node's text content.
func (n *Node) SetText(s string) *Node {
	n.text = s
	return n
}

// SetAttr sets a string attribute. Setting "" removes it.
func (n *Node) SetAttr(key, value string) *Node {
	if value == "" {
		n.RemoveAttr(key)
		return n
	}
	if _, ok := n.attrs[key]; !ok {
		n.attrOrder = append(n.attrOrder, key)
	}
	n.attrs[key] = value
	return n
}

// SetNum sets a numeric attribute.
func (n *Node) SetNum(key string, v float64) *Node {
	return n.SetAttr(key, FormatNumber(v))
}

// RemoveAttr deletes an attribute.
func (n *Node) RemoveAttr(key string) {
	if _, ok := n.attrs[key]; !ok {
		return
	}
	delete(n.attrs, key)
	for i, k := range n.attrOrder {
		if k == key {
			n.attrOrder = append(n.attrOrder[:i], n.attrOrder[i+1:]...)
			break
		}
	}
}

// Attr returns an attribute value.
func (n *Node) Attr(key string) (string, bool) {
	v, ok := n.attrs[key]
	return v, ok
}

// SetClass replaces the class list with the space separated classes.
func (n *Node) SetClass(classes string) *Node {
	n.classes = n.classes[:0]
	for _, c := range strings.Fields(classes) {
		if !n.HasClass(c) {
			n.classes = append(n.classes, c)
		}
	}
	return n
}

// Classed adds or removes a single class.
func (n *Node) Classed(class string, on bool) *Node {
	has := n.HasClass(class)
	switch {
	case on && !has:
		n.classes = append(n.classes, class)
	case !on && has:
		for i, c := range n.classes {
			if c == class {
				n.classes = append(n.classes[:i], n.classes[i+1:]...)
				break
			}
		}
	}
	return n
}

// HasClass reports whether the node carries class.
func (n *Node) HasClass(class string) bool {
	for _, c := range n.classes {
		if c == class {
			return true
		}
	}
	return false
}

// Classes returns the class list.
func (n *Node) Classes() []string {
	out := make([]string, len(n.classes))
	copy(out, n.classes)
	return out
}

// Child returns the direct child named name.
func (n *Node) Child(name string) *Node {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// Find returns the first descendant named name, depth first.
func (n *Node) Find(name string) *Node {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
		if f := c.Find(name); f != nil {
			return f
		}
	}
	return nil
}

// SelectAll returns every descendant carrying class, in document order.
func (n *Node) SelectAll(class string) []*Node {
	var out []*Node
	n.walk(func(d *Node) {
		if d.HasClass(class) {
			out = append(out, d)
		}
	})
	return out
}

func (n *Node) walk(fn func(*Node)) {
	for _, c := range n.children {
		fn(c)
		c.walk(fn)
	}
}

// Append attaches a new child.
func (n *Node) Append(tag, name string) *Node {
	c := NewNode(tag, name)
	c.parent = n
	n.children = append(n.children, c)
	return c
}

// EnsureChild returns the child named name, creating it with tag when it is
// missing. It never creates a second child with the same name.
func (n *Node) EnsureChild(tag, name string) *Node {
	if c := n.Child(name); c != nil {
		return c
	}
	return n.Append(tag, name)
}

// Join makes the children carrying class exactly count nodes long. Existing
// nodes are reused in order, missing ones are appended and surplus ones are
// detached. New nodes are named "<class>#<i>".
func (n *Node) Join(tag, class string, count int) []*Node {
	if count < 0 {
		count = 0
	}
	var existing []*Node
	for _, c := range n.children {
		if c.HasClass(class) {
			existing = append(existing, c)
		}
	}
	for _, c := range existing[min(count, len(existing)):] {
		n.detach(c)
	}
	out := make([]*Node, count)
	copy(out, existing)
	for i := len(existing); i < count; i++ {
		c := n.Append(tag, fmt.Sprintf("%s#%d", class, i))
		c.Classed(class, true)
		out[i] = c
	}
	return out
}

// RemoveIfPresent detaches the child named name. It reports whether a node
// was removed.
func (n *Node) RemoveIfPresent(name string) bool {
	c := n.Child(name)
	if c == nil {
		return false
	}
	n.detach(c)
	return true
}

// RemoveAll detaches every descendant carrying class and returns how many
// were removed.
func (n *Node) RemoveAll(class string) int {
	nodes := n.SelectAll(class)
	for _, c := range nodes {
		if c.parent != nil {
			c.parent.detach(c)
		}
	}
	return len(nodes)
}

// Remove detaches n from its parent.
func (n *Node) Remove() {
	if n.parent != nil {
		n.parent.detach(n)
	}
}

func (n *Node) detach(c *Node) {
	for i, x := range n.children {
		if x == c {
			n.children = append(n.children[:i], n.children[i+1:]...)
			c.parent = nil
			return
		}
	}
}

// On registers h for event type typ, replacing any previous handler.
func (n *Node) On(typ string, h Handler) *Node {
	if n.handlers == nil {
		n.handlers = make(map[string]Handler)
	}
	n.handlers[typ] = h
	return n
}

// Dispatch calls the handler registered for typ and reports whether one
// ran.
func (n *Node) Dispatch(typ string) bool {
	h, ok := n.handlers[typ]
	if !ok {
		return false
	}
	h(Event{Type: typ, Target: n})
	return true
}

// Transition starts a timed attribute change on n.
func (n *Node) Transition(d time.Duration) *Transition {
	return &Transition{node: n, duration: d}
}

// Surface is the host page: a set of anchors that charts insert into.
type Surface struct {
	anchors map[string]*Node
	order   []string
}

// NewSurface creates a surface with the given anchor selectors
// (e.g. "#line-chart-container").
func NewSurface(selectors ...string) *Surface {
	s := &Surface{anchors: make(map[string]*Node)}
	for _, sel := range selectors {
		s.AddAnchor(sel)
	}
	return s
}

// AddAnchor registers an anchor, returning the existing one if present.
func (s *Surface) AddAnchor(selector string) *Node {
	if a, ok := s.anchors[selector]; ok {
		return a
	}
	a := NewNode("div", selector)
	a.SetAttr("id", strings.TrimPrefix(selector, "#"))
	s.anchors[selector] = a
	s.order = append(s.order, selector)
	return a
}

// Anchor looks up an anchor by selector.
func (s *Surface) Anchor(selector string) (*Node, bool) {
	a, ok := s.anchors[selector]
	return a, ok
}

// Anchors returns the anchor selectors in registration order.
func (s *Surface) Anchors() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
