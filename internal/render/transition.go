package render

import (
	"strconv"
	"time"
)

// DefaultDuration is the length of every chart transition.
const DefaultDuration = time.Second

type tween struct {
	from, to float64
	duration time.Duration
}

// Transition records attribute changes that animate over a duration. The
// node holds the end value immediately; AttrAt reports intermediate values.
// A later transition on the same attribute replaces the earlier tween and
// leaves tweens of other attributes alone.
type Transition struct {
	node     *Node
	duration time.Duration
}

// Num animates a numeric attribute from its current value to v.
func (t *Transition) Num(key string, v float64) *Transition {
	from := v
	if cur, ok := t.node.attrs[key]; ok {
		if f, err := strconv.ParseFloat(cur, 64); err == nil {
			from = f
		}
	}
	t.node.SetNum(key, v)
	if t.node.tweens == nil {
		t.node.tweens = make(map[string]tween)
	}
	t.node.tweens[key] = tween{from: from, to: v, duration: t.duration}
	return t
}

// Attr sets a non-interpolated attribute at the end of the transition.
func (t *Transition) Attr(key, v string) *Transition {
	t.node.SetAttr(key, v)
	delete(t.node.tweens, key)
	return t
}

// Text sets the node text at the end of the transition.
func (t *Transition) Text(s string) *Transition {
	t.node.SetText(s)
	return t
}

// Node returns the node being transitioned.
func (t *Transition) Node() *Node {
	return t.node
}

// AttrAt returns the value of a numeric attribute elapsed into its
// transition. Attributes without a tween report their current value.
func (n *Node) AttrAt(key string, elapsed time.Duration) (float64, bool) {
	tw, ok := n.tweens[key]
	if !ok {
		v, ok := n.attrs[key]
		if !ok {
			return 0, false
		}
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	if tw.duration <= 0 || elapsed >= tw.duration {
		return tw.to, true
	}
	if elapsed <= 0 {
		return tw.from, true
	}
	k := EaseCubicInOut(float64(elapsed) / float64(tw.duration))
	return tw.from + (tw.to-tw.from)*k, true
}

// EaseCubicInOut is the symmetric cubic easing curve.
func EaseCubicInOut(t float64) float64 {
	t *= 2
	if t <= 1 {
		return t * t * t / 2
	}
	t -= 2
	return (t*t*t + 2) / 2
}
