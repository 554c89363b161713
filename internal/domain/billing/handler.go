package billing

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pm/patientmgmt/internal/platform/middleware"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/billing/accounts", h.CreateAccount)
}

func (h *Handler) CreateAccount(c echo.Context) error {
	var req AccountRequest
	if err := c.Bind(&req); err != nil {
		return middleware.BindError(err)
	}
	resp := h.svc.CreateBillingAccount(c.Request().Context(), req)
	return c.JSON(http.StatusOK, resp)
}
