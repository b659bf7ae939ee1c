package controller

import (
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/tristmeister/ems-jade2/internal/modules/waterquality/types"
	"github.com/tristmeister/ems-jade2/internal/modules/waterquality/views"
)

const pageItemWindow = 2

var defaultSelection = []types.Parameter{types.Nitrat, types.Phosphat, types.PH}

// graphState is the chart selection carried in the query string:
// ?params=nitrat,ph&trends=1.
type graphState struct {
	Selected   []types.Parameter
	ShowTrends bool
}

// parseGraphState reads the selection from the request. An absent params
// means the default selection; an empty one means nothing is selected.
func parseGraphState(r *http.Request) graphState {
	q := r.URL.Query()
	state := graphState{ShowTrends: q.Get("trends") == "1"}
	if !q.Has("params") {
		state.Selected = slices.Clone(defaultSelection)
		return state
	}
	state.Selected = []types.Parameter{}
	for _, key := range strings.Split(q.Get("params"), ",") {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		p, err := types.ParseParameter(key)
		if err != nil {
			slog.Warn("graphs: ignoring unknown parameter", "param", key)
			continue
		}
		if !slices.Contains(state.Selected, p) {
			state.Selected = append(state.Selected, p)
		}
	}
	return state
}

func (s graphState) query() url.Values {
	keys := make([]string, 0, len(s.Selected))
	for _, p := range s.Selected {
		keys = append(keys, p.Key())
	}
	q := url.Values{"params": {strings.Join(keys, ",")}}
	if s.ShowTrends {
		q.Set("trends", "1")
	}
	return q
}

func (s graphState) url(path string) string {
	return path + "?" + s.query().Encode()
}

// toggle adds p to the selection or removes it.
func (s graphState) toggle(p types.Parameter) graphState {
	if i := slices.Index(s.Selected, p); i >= 0 {
		s.Selected = slices.Delete(slices.Clone(s.Selected), i, i+1)
		return s
	}
	s.Selected = append(slices.Clone(s.Selected), p)
	return s
}

func (s graphState) toggleTrends() graphState {
	s.ShowTrends = !s.ShowTrends
	return s
}

// parseIndex returns the 0-based reading index (default 0).
func parseIndex(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("index"))
	if err != nil {
		return 0
	}
	return n
}

// clampIndex keeps i inside [0, n-1]; it returns 0 for an empty sequence.
func clampIndex(i, n int) int {
	if n <= 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// buildPageItems returns the reading indicator: first, last and a window
// around current, with ellipsis for the gaps.
func buildPageItems(total, current int) []views.PaginationItem {
	if total <= 0 {
		return nil
	}
	var items []views.PaginationItem
	prev := -1
	for i := 0; i < total; i++ {
		if i != 0 && i != total-1 && (i < current-pageItemWindow || i > current+pageItemWindow) {
			continue
		}
		if prev >= 0 && i > prev+1 {
			items = append(items, views.PaginationItem{Ellipsis: true})
		}
		items = append(items, views.PaginationItem{Index: i, Number: i + 1, Current: i == current})
		prev = i
	}
	return items
}
