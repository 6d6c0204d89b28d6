package charts

var tableau10 = []string{
	"#4e79a7", "#f28e2c", "#e15759", "#76b7b2", "#59a14f",
	"#edc949", "#af7aa1", "#ff9da7", "#9c755f", "#bab0ab",
}

// Tableau10 returns the ten-color categorical palette.
func Tableau10() []string {
	return append([]string(nil), tableau10...)
}

// colorAt cycles through palette. An empty palette yields currentColor.
func colorAt(palette []string, i int) string {
	if len(palette) == 0 {
		return "currentColor"
	}
	return palette[i%len(palette)]
}
