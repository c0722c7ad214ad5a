package consent

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
	api.POST("/consents", h.Grant)
	api.DELETE("/consents/:grantee", h.Revoke)
	api.GET("/consents", h.ListMine)
	api.GET("/consents/:grantee/check", h.Check)
}

type grantRequest struct {
	GranteeID string `json:"grantee_id"`
}

func (h *Handler) Grant(c echo.Context) error {
	var req grantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	caller := auth.PrincipalFromContext(c.Request().Context())
	if err := h.svc.GrantAccess(c.Request().Context(), caller, req.GranteeID); err != nil {
		return echo.NewHTTPError(core.HTTPStatus(err), err.Error())
	}
	return c.NoContent(http.StatusCreated)
}

func (h *Handler) Revoke(c echo.Context) error {
	caller := auth.PrincipalFromContext(c.Request().Context())
	if err := h.svc.RevokeAccess(c.Request().Context(), caller, c.Param("grantee")); err != nil {
		return echo.NewHTTPError(core.HTTPStatus(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListMine(c echo.Context) error {
	caller := auth.PrincipalFromContext(c.Request().Context())
	grants, err := h.svc.ListForPatient(c.Request().Context(), caller)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"grants": grants})
}

// Check reports whether the named grantee may read the caller's history.
func (h *Handler) Check(c echo.Context) error {
	caller := auth.PrincipalFromContext(c.Request().Context())
	ok, err := h.svc.HasAccess(c.Request().Context(), c.Param("grantee"), caller)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]bool{"has_access": ok})
}
