package history

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/careledger/careledger/internal/domain/core"
	"github.com/careledger/careledger/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/patients/:id/history", h.PatientHistory)
}

func (h *Handler) PatientHistory(c echo.Context) error {
	caller := auth.PrincipalFromContext(c.Request().Context())
	view, err := h.svc.PatientHistory(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(core.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, view)
}
