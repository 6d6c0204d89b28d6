package render

import (
	"bufio"
	"encoding/xml"
	"io"
	"math"
	"strconv"
	"strings"
)

const svgNamespace = "http://www.w3.org/2000/svg"

// FormatNumber renders a coordinate with at most three decimals.
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "NaN"
	}
	r := math.Round(v*1000) / 1000
	if r == 0 { // drop the sign of -0
		r = 0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// WriteSVG serializes n and its descendants as markup. An "svg" root gets
// the SVG namespace.
func WriteSVG(w io.Writer, n *Node) error {
	bw := bufio.NewWriter(w)
	writeNode(bw, n, true)
	return bw.Flush()
}

// Markup returns the serialized node.
func Markup(n *Node) string {
	var sb strings.Builder
	_ = WriteSVG(&sb, n)
	return sb.String()
}

func writeNode(w *bufio.Writer, n *Node, root bool) {
	w.WriteByte('<')
	w.WriteString(n.tag)
	if root && n.tag == "svg" {
		if _, ok := n.attrs["xmlns"]; !ok {
			writeAttr(w, "xmlns", svgNamespace)
		}
	}
	for _, k := range n.attrOrder {
		writeAttr(w, k, n.attrs[k])
	}
	if len(n.classes) > 0 {
		writeAttr(w, "class", strings.Join(n.classes, " "))
	}
	if n.text == "" && len(n.children) == 0 {
		w.WriteString("/>")
		return
	}
	w.WriteByte('>')
	if n.text != "" {
		_ = xml.EscapeText(w, []byte(n.text))
	}
	for _, c := range n.children {
		writeNode(w, c, false)
	}
	w.WriteString("</")
	w.WriteString(n.tag)
	w.WriteByte('>')
}

func writeAttr(w *bufio.Writer, k, v string) {
	w.WriteByte(' ')
	w.WriteString(k)
	w.WriteString(`="`)
	_ = xml.EscapeText(w, []byte(v))
	w.WriteByte('"')
}
