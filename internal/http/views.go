package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"stationreports/internal/domain"
	"stationreports/internal/report"

	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFiles embed.FS

var pageTemplates = mustParsePages(
	"sales_profit.html",
	"sales.html",
	"fuel.html",
	"attendance.html",
	"staff.html",
	"financial.html",
	"credit.html",
	"error.html",
)

var templateFuncs = template.FuncMap{
	"money":       formatMoney,
	"num":         func(d decimal.Decimal) string { return groupThousands(d.StringFixed(2)) },
	"pct":         func(d decimal.Decimal) string { return d.StringFixed(1) + "%" },
	"date":        func(t time.Time) string { return t.Format(report.DateLayout) },
	"datetime":    func(t time.Time) string { return t.Format("2006-01-02 15:04") },
	"optdate":     formatOptionalDate,
	"periodLabel": report.PeriodLabel,
	"selected":    isSelected,
	"negative":    func(d decimal.Decimal) bool { return d.IsNegative() },
	"deref":       derefString,
}

// pageData is the model every page template renders.
type pageData struct {
	Title       string
	Path        string
	Viewer      string
	Currency    string
	Filter      report.Filter
	ReportTypes []string
	Entities    map[string]bool
	Periodic    bool
	Options     domain.FilterOptions
	Report      any
	Empty       bool
	Chart       chartData
	Error       string
	Status      int
}

// chartData is embedded as JSON for the client-side chart library.
type chartData struct {
	Type     string         `json:"type"`
	Labels   []string       `json:"labels"`
	Datasets []chartDataset `json:"datasets"`
}

type chartDataset struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
}

func newChart(kind string, labels []string, datasets ...chartDataset) chartData {
	if labels == nil {
		labels = []string{}
	}
	if datasets == nil {
		datasets = []chartDataset{}
	}
	return chartData{Type: kind, Labels: labels, Datasets: datasets}
}

func series[T any](label string, rows []T, fn func(T) decimal.Decimal) chartDataset {
	data := make([]float64, 0, len(rows))
	for _, row := range rows {
		data = append(data, fn(row).Round(2).InexactFloat64())
	}
	return chartDataset{Label: label, Data: data}
}

func labels[T any](rows []T, fn func(T) string) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, fn(row))
	}
	return out
}

func mustParsePages(pages ...string) map[string]*template.Template {
	parsed := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		tmpl := template.Must(template.New(page).Funcs(templateFuncs).ParseFS(
			templateFiles,
			"templates/layout.html",
			"templates/partials.html",
			"templates/"+page,
		))
		parsed[page] = tmpl
	}
	return parsed
}

func renderPage(w io.Writer, page string, data pageData) error {
	tmpl, ok := pageTemplates[page]
	if !ok {
		return fmt.Errorf("unknown page template %s", page)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// formatMoney rounds to two places only here, at display time.
func formatMoney(symbol string, d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	return sign + symbol + groupThousands(d.StringFixed(2))
}

func groupThousands(fixed string) string {
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	whole, frac, hasFrac := strings.Cut(fixed, ".")
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return sign + b.String()
}

func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}

func isSelected(current *int64, id int64) bool {
	return current != nil && *current == id
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
