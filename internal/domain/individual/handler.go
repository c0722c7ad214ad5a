package individual

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/careledger/careledger/internal/domain/core"
	"github.com/careledger/careledger/internal/platform/auth"
	"github.com/careledger/careledger/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/individuals", h.Register)
	api.POST("/individuals/deactivate", h.Deactivate)
	api.GET("/individuals", h.List)
	api.GET("/individuals/:id", h.Get)
}

type registerRequest struct {
	Name        string `json:"name"`
	DateOfBirth string `json:"date_of_birth"`
	BloodGroup  string `json:"blood_group"`
}

func (h *Handler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	caller := auth.PrincipalFromContext(c.Request().Context())
	ind, err := h.svc.Register(c.Request().Context(), caller, req.Name, req.DateOfBirth, req.BloodGroup)
	if err != nil {
		return echo.NewHTTPError(core.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, ind)
}

func (h *Handler) Deactivate(c echo.Context) error {
	caller := auth.PrincipalFromContext(c.Request().Context())
	if err := h.svc.Deactivate(c.Request().Context(), caller); err != nil {
		return echo.NewHTTPError(core.HTTPStatus(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Get(c echo.Context) error {
	ind, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(core.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, ind)
}

func (h *Handler) List(c echo.Context) error {
	p := pagination.FromContext(c)
	result, total, err := h.svc.List(c.Request().Context(), p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(result, total, p.Limit, p.Offset))
}
