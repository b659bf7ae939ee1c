package controller

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"

	"github.com/tristmeister/ems-jade2/internal/modules/waterquality/analysis"
	"github.com/tristmeister/ems-jade2/internal/modules/waterquality/charts"
	"github.com/tristmeister/ems-jade2/internal/modules/waterquality/repository"
	"github.com/tristmeister/ems-jade2/internal/modules/waterquality/types"
	"github.com/tristmeister/ems-jade2/internal/modules/waterquality/views"
	"github.com/tristmeister/ems-jade2/internal/utils"
)

const emptyChartSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="900" height="360" viewBox="0 0 900 360">` +
	`<text x="450" y="180" text-anchor="middle" font-family="sans-serif" fill="#6b7280">Keine Daten</text></svg>`

func (c *waterQualityControllerImpl) handleOverview(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	readings, ok := c.loadReadings(w, r, "overview")
	if !ok {
		return
	}

	data := views.OverviewData{
		Layout: views.Layout{Title: "Übersicht", Active: "overview"},
		Count:  len(readings),
	}
	if snap, ok := analysis.Latest(readings, c.catalog); ok {
		data.HasReading = true
		data.Date = snap.Date.Format(types.DateLayout)
		data.Temperature = formatTemperature(snap.Temperature)
		for _, e := range snap.Entries {
			data.Cards = append(data.Cards, views.MetricCard{
				Label: e.Info.Label,
				Value: e.Info.FormatWithUnit(e.Value),
				Level: string(e.Level),
			})
		}
	}
	writeHTML(w, "overview", func(out io.Writer) error { return views.RenderOverview(out, &data) })
}

func (c *waterQualityControllerImpl) handleGraphs(w http.ResponseWriter, r *http.Request) {
	readings, ok := c.loadReadings(w, r, "graphs")
	if !ok {
		return
	}
	data := c.graphsData(readings, parseGraphState(r))
	writeHTML(w, "graphs", func(out io.Writer) error { return views.RenderGraphs(out, &data) })
}

func (c *waterQualityControllerImpl) handleStatsPartial(w http.ResponseWriter, r *http.Request) {
	readings, ok := c.loadReadings(w, r, "stats")
	if !ok {
		return
	}
	data := c.graphsData(readings, parseGraphState(r))
	writeHTML(w, "stats", func(out io.Writer) error { return views.RenderStatsPartial(out, &data) })
}

func (c *waterQualityControllerImpl) graphsData(readings []types.Reading, state graphState) views.GraphsData {
	data := views.GraphsData{
		Layout:         views.Layout{Title: "Diagramme", Active: "graphs"},
		MainChartURL:   state.url("/graphs/main.svg"),
		NothingChosen:  len(state.Selected) == 0,
		TemperatureURL: "/graphs/temperature.svg",
		NutrientsURL:   "/graphs/nutrients.svg",
	}
	for _, info := range c.catalog.All() {
		link := views.ToggleLink{Label: info.Label, Href: state.toggle(info.Parameter).url("/graphs")}
		if i := slices.Index(state.Selected, info.Parameter); i >= 0 {
			link.Active = true
			link.Color = charts.SeriesHex(i)
		}
		data.Toggles = append(data.Toggles, link)
	}
	data.TrendToggle = views.ToggleLink{
		Label:  "Trends anzeigen",
		Href:   state.toggleTrends().url("/graphs"),
		Active: state.ShowTrends,
	}
	if state.ShowTrends {
		data.TrendToggle.Label = "Trends ausblenden"
	}

	for _, s := range analysis.SummarizeAll(readings, state.Selected) {
		info := c.catalog.Info(s.Parameter)
		card := views.StatsCard{Label: info.Label, Unit: info.Unit, HasData: s.HasData()}
		switch {
		case s.HasData():
			card.Min = types.Some(s.Stats.Min).Format()
			card.Max = types.Some(s.Stats.Max).Format()
			card.Mean = types.Some(s.Stats.Mean).Format()
			card.Count = s.Stats.Count
		case errors.Is(s.Err, analysis.ErrInsufficientData):
		default:
			slog.Error("graphs: summarize failed", "param", s.Parameter.Key(), "error", s.Err)
		}
		data.Stats = append(data.Stats, card)
	}
	return data
}

func (c *waterQualityControllerImpl) handleMainChart(w http.ResponseWriter, r *http.Request) {
	readings, ok := c.loadReadings(w, r, "main chart")
	if !ok {
		return
	}
	state := parseGraphState(r)
	withTrends, err := analysis.Trends(readings, state.Selected, analysis.TrendWindow)
	if err != nil {
		slog.Error("main chart: trends failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to compute trends")
		return
	}
	writeSVG(w, "main chart", func(out io.Writer) error {
		return charts.RenderMain(out, withTrends, c.catalog, charts.MainOptions{
			Selected:   state.Selected,
			ShowTrends: state.ShowTrends,
		})
	})
}

func (c *waterQualityControllerImpl) handleTemperatureChart(w http.ResponseWriter, r *http.Request) {
	readings, ok := c.loadReadings(w, r, "temperature chart")
	if !ok {
		return
	}
	writeSVG(w, "temperature chart", func(out io.Writer) error {
		return charts.RenderTemperature(out, readings)
	})
}

func (c *waterQualityControllerImpl) handleNutrientsChart(w http.ResponseWriter, r *http.Request) {
	readings, ok := c.loadReadings(w, r, "nutrients chart")
	if !ok {
		return
	}
	writeSVG(w, "nutrients chart", func(out io.Writer) error {
		return charts.RenderNutrients(out, readings, c.catalog)
	})
}

func (c *waterQualityControllerImpl) handleReadings(w http.ResponseWriter, r *http.Request) {
	reading, total, ok := c.loadReadingView(w, r, "readings")
	if !ok {
		return
	}
	data := views.ReadingsPageData{
		Layout:  views.Layout{Title: "Einzelne Messwerte", Active: "readings"},
		Reading: reading,
		Empty:   total == 0,
	}
	writeHTML(w, "readings", func(out io.Writer) error { return views.RenderReadings(out, &data) })
}

func (c *waterQualityControllerImpl) handleReadingPartial(w http.ResponseWriter, r *http.Request) {
	data, total, ok := c.loadReadingView(w, r, "reading partial")
	if !ok {
		return
	}
	if total == 0 {
		utils.WriteError(w, http.StatusNotFound, "no readings")
		return
	}
	writeHTML(w, "reading partial", func(out io.Writer) error { return views.RenderReadingPartial(out, &data) })
}

// loadReadingView builds the viewer for ?index, clamped to the stored
// readings. Only the focused reading and its direct neighbours are fetched;
// interpolating that window gives the same result as interpolating the full
// sequence. total is 0 when nothing is stored.
func (c *waterQualityControllerImpl) loadReadingView(w http.ResponseWriter, r *http.Request, page string) (views.ReadingData, int, bool) {
	ctx := r.Context()
	total, err := c.repository.GetReadingsCount(ctx)
	if err != nil {
		slog.Error(page+": count readings failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load readings")
		return views.ReadingData{}, 0, false
	}
	if total == 0 {
		return views.ReadingData{}, 0, true
	}

	idx := clampIndex(parseIndex(r), total)
	lo, hi := max(0, idx-1), min(total-1, idx+1)
	window := make([]types.Reading, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		rd, err := c.repository.GetReadingAt(ctx, i)
		if errors.Is(err, repository.ErrNotFound) {
			// Store shrank between count and fetch.
			utils.WriteError(w, http.StatusNotFound, "reading not found")
			return views.ReadingData{}, 0, false
		}
		if err != nil {
			slog.Error(page+": get reading failed", "index", i, "error", err)
			utils.WriteError(w, http.StatusInternalServerError, "failed to load readings")
			return views.ReadingData{}, 0, false
		}
		window = append(window, rd)
	}
	return c.readingData(analysis.Interpolate(window)[idx-lo], idx, total), total, true
}

// readingData builds the viewer model for rd at position idx of total.
func (c *waterQualityControllerImpl) readingData(rd analysis.InterpolatedReading, idx, total int) views.ReadingData {
	data := views.ReadingData{
		Index:       idx,
		Number:      idx + 1,
		Total:       total,
		Date:        rd.DateString(),
		Temperature: formatTemperature(rd.Temperature),
		PrevDayTemp: formatTemperature(rd.PrevDayTemp),
		Notes:       rd.Notes,
		HasPrev:     idx > 0,
		HasNext:     idx < total-1,
		PrevIndex:   clampIndex(idx-1, total),
		NextIndex:   clampIndex(idx+1, total),
		PageItems:   buildPageItems(total, idx),
	}
	for _, info := range c.catalog.All() {
		v := rd.Get(info.Parameter)
		data.Values = append(data.Values, views.ValueRow{
			Label:        info.Label,
			Value:        info.FormatWithUnit(v),
			Interpolated: rd.IsInterpolated(info.Parameter),
			Level:        string(info.Level(v)),
		})
	}
	return data
}

func (c *waterQualityControllerImpl) loadReadings(w http.ResponseWriter, r *http.Request, page string) ([]types.Reading, bool) {
	readings, err := c.repository.GetReadings(r.Context())
	if err != nil {
		slog.Error(page+": get readings failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load readings")
		return nil, false
	}
	return readings, true
}

func formatTemperature(t float64) string {
	return fmt.Sprintf("%s °C", types.Some(t).Format())
}

func writeHTML(w http.ResponseWriter, page string, render func(io.Writer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		slog.Error(page+" template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	utils.WriteBody(w, utils.ContentTypeHTML, buf.Bytes())
}

func writeSVG(w http.ResponseWriter, name string, render func(io.Writer) error) {
	var buf bytes.Buffer
	err := render(&buf)
	switch {
	case errors.Is(err, charts.ErrNoData):
		buf.Reset()
		buf.WriteString(emptyChartSVG)
	case err != nil:
		slog.Error(name+" render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render chart")
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	utils.WriteBody(w, utils.ContentTypeSVG, buf.Bytes())
}
