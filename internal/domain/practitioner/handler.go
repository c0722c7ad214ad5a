package practitioner

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

// Registration and removal are facility operations and live on the facility
// routes; only self-service profile updates and reads are exposed here.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.PUT("/practitioners/me", h.UpdateProfile)
	api.GET("/practitioners/:id", h.Get)
}

type profileRequest struct {
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	var req profileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	caller := auth.PrincipalFromContext(c.Request().Context())
	p, err := h.svc.UpdateProfile(c.Request().Context(), caller, req.Name, req.Specialization)
	if err != nil {
		return echo.NewHTTPError(core.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Get(c echo.Context) error {
	p, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(core.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, p)
}
