package controller

import (
	"net/http"

	"github.com/tristmeister/ems-jade2/internal/modules/waterquality/repository"
	"github.com/tristmeister/ems-jade2/internal/modules/waterquality/types"
)

// Catalog is the parameter metadata the handlers read.
type Catalog interface {
	Info(p types.Parameter) types.ParameterInfo
	All() []types.ParameterInfo
}

type WaterQualityController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type waterQualityControllerImpl struct {
	repository repository.ReadingRepository
	catalog    Catalog
}

func NewWaterQualityController(repository repository.ReadingRepository, catalog Catalog) WaterQualityController {
	return &waterQualityControllerImpl{repository: repository, catalog: catalog}
}

func (c *waterQualityControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /", c.handleOverview)
	mux.HandleFunc("GET /graphs", c.handleGraphs)
	mux.HandleFunc("GET /graphs/main.svg", c.handleMainChart)
	mux.HandleFunc("GET /graphs/temperature.svg", c.handleTemperatureChart)
	mux.HandleFunc("GET /graphs/nutrients.svg", c.handleNutrientsChart)
	mux.HandleFunc("GET /partials/stats", c.handleStatsPartial)
	mux.HandleFunc("GET /readings", c.handleReadings)
	mux.HandleFunc("GET /partials/reading", c.handleReadingPartial)
}
