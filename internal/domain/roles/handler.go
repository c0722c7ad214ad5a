package roles

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
	api.POST("/roles", h.Grant)
	api.DELETE("/roles", h.Revoke)
	api.GET("/roles/:principal", h.List)
}

type roleRequest struct {
	Principal string `json:"principal"`
	Role      Role   `json:"role"`
}

func (h *Handler) Grant(c echo.Context) error {
	var req roleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	caller := auth.PrincipalFromContext(c.Request().Context())
	if err := h.svc.Grant(c.Request().Context(), caller, req.Principal, req.Role); err != nil {
		return echo.NewHTTPError(core.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, map[string]string{
		"principal": req.Principal,
		"role":      string(req.Role),
	})
}

func (h *Handler) Revoke(c echo.Context) error {
	var req roleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	caller := auth.PrincipalFromContext(c.Request().Context())
	if err := h.svc.Revoke(c.Request().Context(), caller, req.Principal, req.Role); err != nil {
		return echo.NewHTTPError(core.HTTPStatus(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) List(c echo.Context) error {
	result, err := h.svc.ListForPrincipal(c.Request().Context(), c.Param("principal"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"principal": c.Param("principal"),
		"roles":     result,
	})
}
