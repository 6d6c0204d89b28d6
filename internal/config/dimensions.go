package config

// Breakpoints for the default chart width, keyed by the largest window width
// they apply to. Anything wider than the first entry gets DefaultSVGWidth.
var widthBreakpoints = []struct {
	maxWindow int
	width     float64
}{
	{425, 300},
	{640, 620},
	{768, 750},
}

// DefaultSVGWidth is the chart width used on wide windows.
const DefaultSVGWidth = 1000

// SVGDimensions returns the default chart width and height for a window
// width. The height keeps a 16:9 aspect ratio.
func SVGDimensions(windowWidth int) (width, height float64) {
	width = DefaultSVGWidth
	for _, bp := range widthBreakpoints {
		if windowWidth <= bp.maxWindow {
			width = bp.width
			break
		}
	}
	return width, Height16By9(width)
}

// Height16By9 returns the height for a 16:9 aspect ratio.
func Height16By9(width float64) float64 {
	return width / 16 * 9
}
