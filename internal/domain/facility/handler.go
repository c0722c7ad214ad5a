package facility

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
	api.POST("/facilities", h.Register)
	api.POST("/facilities/practitioners", h.AddPractitioner)
	api.DELETE("/facilities/practitioners/:principal", h.RemovePractitioner)
	api.POST("/facilities/:id/deactivate", h.Deactivate)
	api.GET("/facilities", h.List)
	api.GET("/facilities/:id", h.Get)
	api.GET("/facilities/:id/practitioners", h.ListPractitioners)
	api.GET("/facilities/:id/patients", h.ListObservedPatients)
}

type registerRequest struct {
	Name               string `json:"name"`
	RegistrationNumber string `json:"registration_number"`
}

func (h *Handler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	caller := auth.PrincipalFromContext(c.Request().Context())
	f, err := h.svc.Register(c.Request().Context(), caller, req.Name, req.RegistrationNumber)
	if err != nil {
		return echo.NewHTTPError(core.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, f)
}

type addPractitionerRequest struct {
	Principal     string `json:"principal"`
	LicenseNumber string `json:"license_number"`
}

func (h *Handler) AddPractitioner(c echo.Context) error {
	var req addPractitionerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	caller := auth.PrincipalFromContext(c.Request().Context())
	if err := h.svc.AddPractitioner(c.Request().Context(), caller, req.Principal, req.LicenseNumber); err != nil {
		return echo.NewHTTPError(core.HTTPStatus(err), err.Error())
	}
	return c.NoContent(http.StatusCreated)
}

func (h *Handler) RemovePractitioner(c echo.Context) error {
	caller := auth.PrincipalFromContext(c.Request().Context())
	if err := h.svc.RemovePractitioner(c.Request().Context(), caller, c.Param("principal")); err != nil {
		return echo.NewHTTPError(core.HTTPStatus(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Deactivate(c echo.Context) error {
	caller := auth.PrincipalFromContext(c.Request().Context())
	if err := h.svc.Deactivate(c.Request().Context(), caller, c.Param("id")); err != nil {
		return echo.NewHTTPError(core.HTTPStatus(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Get(c echo.Context) error {
	f, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(core.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, f)
}

func (h *Handler) List(c echo.Context) error {
	p := pagination.FromContext(c)
	result, total, err := h.svc.List(c.Request().Context(), p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(result, total, p.Limit, p.Offset))
}

func (h *Handler) ListPractitioners(c echo.Context) error {
	p := pagination.FromContext(c)
	result, total, err := h.svc.ListPractitioners(c.Request().Context(), c.Param("id"), p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(result, total, p.Limit, p.Offset))
}

func (h *Handler) ListObservedPatients(c echo.Context) error {
	p := pagination.FromContext(c)
	result, total, err := h.svc.ListObservedPatients(c.Request().Context(), c.Param("id"), p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(result, total, p.Limit, p.Offset))
}
