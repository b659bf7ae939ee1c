package waterquality

import (
	"net/http"

	"github.com/tristmeister/ems-jade2/internal/modules/waterquality/controller"
	"github.com/tristmeister/ems-jade2/internal/modules/waterquality/repository"
)

func RegisterFeature(mux *http.ServeMux, repo repository.ReadingRepository, cat controller.Catalog) {
	waterQualityController := controller.NewWaterQualityController(repo, cat)
	waterQualityController.RegisterRoutes(mux)
}
