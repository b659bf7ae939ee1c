package views

import (
	"errors"
	"html/template"
	"io"
	"io/fs"
)

var pageTmpl *template.Template

var errNotLoaded = errors.New("templates not loaded: call views.LoadTemplates during startup")

// loadTemplatesFromFS parses the page and partial templates under dir.
// Tests use it to simulate broken template sets.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	tmpl, err := template.New("").Funcs(funcs).ParseFS(sub, "*.html", "partials/*.html")
	if err != nil {
		return err
	}
	pageTmpl = tmpl
	return nil
}

// LoadTemplates loads the embedded templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

var funcs = template.FuncMap{
	"levelClass": func(level string) string {
		if level == "" {
			return "level-unknown"
		}
		return "level-" + level
	},
}

func execute(w io.Writer, name string, data any) error {
	if pageTmpl == nil {
		return errNotLoaded
	}
	return pageTmpl.ExecuteTemplate(w, name, data)
}

// Layout carries what every full page needs.
type Layout struct {
	Title  string
	Active string
}

// MetricCard is one latest-value tile on the overview.
type MetricCard struct {
	Label string
	Value string
	Level string
}

type OverviewData struct {
	Layout
	HasReading  bool
	Date        string
	Temperature string
	Cards       []MetricCard
	Count       int
}

func RenderOverview(w io.Writer, data *OverviewData) error {
	return execute(w, "overview", data)
}

// ToggleLink flips one part of the graph state while keeping the rest.
type ToggleLink struct {
	Label  string
	Href   string
	Active bool
	Color  string
}

// StatsCard shows min, max and mean of one selected parameter.
type StatsCard struct {
	Label   string
	Unit    string
	HasData bool
	Min     string
	Max     string
	Mean    string
	Count   int
}

type GraphsData struct {
	Layout
	Toggles        []ToggleLink
	TrendToggle    ToggleLink
	MainChartURL   string
	NothingChosen  bool
	TemperatureURL string
	NutrientsURL   string
	Stats          []StatsCard
}

func RenderGraphs(w io.Writer, data *GraphsData) error {
	return execute(w, "graphs", data)
}

// RenderStatsPartial renders only the statistics cards.
func RenderStatsPartial(w io.Writer, data *GraphsData) error {
	return execute(w, "partials/stats", data)
}

// ValueRow is one parameter of the reading viewer.
type ValueRow struct {
	Label        string
	Value        string
	Interpolated bool
	Level        string
}

// PaginationItem is one entry in the reading indicator: a reading or an ellipsis.
type PaginationItem struct {
	Index    int
	Number   int
	Current  bool
	Ellipsis bool
}

type ReadingData struct {
	Index       int
	Number      int
	Total       int
	Date        string
	Temperature string
	PrevDayTemp string
	Values      []ValueRow
	Notes       string
	HasPrev     bool
	HasNext     bool
	PrevIndex   int
	NextIndex   int
	PageItems   []PaginationItem
}

type ReadingsPageData struct {
	Layout
	Reading ReadingData
	Empty   bool
}

func RenderReadings(w io.Writer, data *ReadingsPageData) error {
	return execute(w, "readings", data)
}

// RenderReadingPartial executes only the reading viewer fragment.
// Use for HTMX prev/next navigation.
func RenderReadingPartial(w io.Writer, data *ReadingData) error {
	return execute(w, "partials/reading", data)
}
