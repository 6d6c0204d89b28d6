package reports

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"covidviz/internal/dashboard"
	"covidviz/internal/render"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

//go:embed templates/page.html.tmpl templates/styles.css
var templateFS embed.FS

// Card describes one chart section of the page. Description is markdown.
type Card struct {
	ID          string
	Title       string
	Anchor      string
	Description string
}

const lineDescription = "Cumulative **deaths per million** (solid, left axis) against smoothed " +
	"**daily vaccinations per million** (dashed, right axis). Hover a legend entry to focus on one country."

const mapDescription = "Bubble area follows the **total number of cases** reported on the selected day. " +
	"Source: [Our World in Data](https://github.com/owid/covid-19-data)."

// DefaultCards are the two chart sections of the dashboard.
var DefaultCards = []Card{
	{
		ID:          "deaths-vs-vaccinations",
		Title:       "Deaths and vaccinations",
		Anchor:      dashboard.LineAnchor,
		Description: lineDescription,
	},
	{
		ID:          "cases-map",
		Title:       "Cases around the world",
		Anchor:      dashboard.MapAnchor,
		Description: mapDescription,
	},
}

// PageBuilder renders the static dashboard page.
type PageBuilder struct {
	goldmark goldmark.Markdown
	tmpl     *template.Template
	css      string
	cards    []Card
	version  string
}

// PageData is the template input.
type PageData struct {
	Title       string
	State       string
	Error       string
	Cards       []CardData
	CSS         template.CSS
	GeneratedAt string
	Version     string
}

// CardData is a card with its rendered description and the markup of
// everything under its anchor.
type CardData struct {
	ID          string
	Title       string
	Description template.HTML
	AnchorID    string
	Chart       template.HTML
}

// NewPageBuilder parses the embedded template. A nil cards slice uses
// DefaultCards.
func NewPageBuilder(version string, cards []Card) (*PageBuilder, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
		),
	)

	tmpl, err := template.ParseFS(templateFS, "templates/page.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}
	css, err := templateFS.ReadFile("templates/styles.css")
	if err != nil {
		return nil, fmt.Errorf("failed to load CSS: %w", err)
	}
	if cards == nil {
		cards = DefaultCards
	}
	return &PageBuilder{goldmark: md, tmpl: tmpl, css: string(css), cards: cards, version: version}, nil
}

// ConvertMarkdownToHTML converts markdown to HTML using goldmark
func (b *PageBuilder) ConvertMarkdownToHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := b.goldmark.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	return buf.String(), nil
}

// Data collects the template input from the host's current state.
func (b *PageBuilder) Data(h *dashboard.Host, generatedAt time.Time) (PageData, error) {
	data := PageData{
		Title:       "COVID-19 Dashboard",
		State:       h.State().String(),
		CSS:         template.CSS(b.css),
		GeneratedAt: generatedAt.UTC().Format("2006-01-02 15:04 UTC"),
		Version:     b.version,
	}
	if err := h.Err(); err != nil {
		data.Error = err.Error()
	}
	for _, card := range b.cards {
		desc, err := b.ConvertMarkdownToHTML(card.Description)
		if err != nil {
			return PageData{}, err
		}
		cd := CardData{
			ID:          card.ID,
			Title:       card.Title,
			Description: template.HTML(desc),
			AnchorID:    strings.TrimPrefix(card.Anchor, "#"),
		}
		if anchor, ok := h.Surface().Anchor(card.Anchor); ok {
			var sb strings.Builder
			for _, c := range anchor.Children() {
				sb.WriteString(render.Markup(c))
			}
			cd.Chart = template.HTML(sb.String())
		}
		data.Cards = append(data.Cards, cd)
	}
	return data, nil
}

// Build renders the complete page.
func (b *PageBuilder) Build(h *dashboard.Host, generatedAt time.Time) ([]byte, error) {
	data, err := b.Data(h, generatedAt)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := b.tmpl.ExecuteTemplate(&buf, "page.html.tmpl", data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

// SVG returns the markup of the first svg under an anchor.
func SVG(h *dashboard.Host, anchor string) (string, bool) {
	node, ok := h.Surface().Anchor(anchor)
	if !ok {
		return "", false
	}
	for _, c := range node.Children() {
		if c.Tag() == "svg" {
			return strings.TrimSpace(render.Markup(c)), true
		}
	}
	return "", false
}
