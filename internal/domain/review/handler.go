package review

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
	api.POST("/reviews", h.Request)
	api.POST("/reviews/cancel", h.Cancel)
	api.POST("/reviews/grant", h.Grant)
	api.POST("/reviews/reject", h.Reject)
	api.PUT("/reviews/reason", h.UpdateReason)
	api.GET("/reviews/totals", h.Totals)
	api.GET("/reviews/patients/:id", h.ListForPatient)
	api.GET("/reviews/insurers/:id", h.ListForInsurer)
	api.GET("/reviews/:patient/:insurer", h.Get)
}

type requestBody struct {
	InsurerID string `json:"insurer_id"`
	PatientID string `json:"patient_id"`
	Reason    string `json:"reason"`
}

func (h *Handler) Request(c echo.Context) error {
	var req requestBody
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	caller := auth.PrincipalFromContext(c.Request().Context())
	app, err := h.svc.Request(c.Request().Context(), caller, req.InsurerID)
	if err != nil {
		return echo.NewHTTPError(core.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, app)
}

func (h *Handler) Cancel(c echo.Context) error {
	var req requestBody
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	caller := auth.PrincipalFromContext(c.Request().Context())
	if err := h.svc.Cancel(c.Request().Context(), caller, req.InsurerID, req.Reason); err != nil {
		return echo.NewHTTPError(core.HTTPStatus(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Grant(c echo.Context) error {
	var req requestBody
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	caller := auth.PrincipalFromContext(c.Request().Context())
	if err := h.svc.Grant(c.Request().Context(), caller, req.PatientID); err != nil {
		return echo.NewHTTPError(core.HTTPStatus(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Reject(c echo.Context) error {
	var req requestBody
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	caller := auth.PrincipalFromContext(c.Request().Context())
	if err := h.svc.Reject(c.Request().Context(), caller, req.PatientID, req.Reason); err != nil {
		return echo.NewHTTPError(core.HTTPStatus(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) UpdateReason(c echo.Context) error {
	var req requestBody
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	caller := auth.PrincipalFromContext(c.Request().Context())
	app, err := h.svc.UpdateReason(c.Request().Context(), caller, req.PatientID, req.InsurerID, req.Reason)
	if err != nil {
		return echo.NewHTTPError(core.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, app)
}

func (h *Handler) Get(c echo.Context) error {
	app, err := h.svc.Get(c.Request().Context(), c.Param("patient"), c.Param("insurer"))
	if err != nil {
		return echo.NewHTTPError(core.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, app)
}

func (h *Handler) ListForPatient(c echo.Context) error {
	apps, err := h.svc.ListForPatient(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"applications": apps})
}

func (h *Handler) ListForInsurer(c echo.Context) error {
	apps, err := h.svc.ListForInsurer(c.Request().Context(), c.Param("id"), Status(c.QueryParam("status")))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"applications": apps})
}

func (h *Handler) Totals(c echo.Context) error {
	t, err := h.svc.TotalsSnapshot(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, t)
}
