package orders

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
	"github.com/clinicdesk/clinicdesk/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	desk := api.Group("", auth.RequireRole("receptionist", "manager"))
	desk.POST("/orders", h.CreateOrder)
	desk.GET("/orders/:id", h.GetOrder)
	desk.GET("/orders", h.ListOrders)
	desk.GET("/doctors/:id/bookings", h.ListMonthlyBookings)

	mgr := api.Group("", auth.RequireRole("manager"))
	mgr.POST("/override-codes", h.IssueOverrideCode)
}

func (h *Handler) CreateOrder(c echo.Context) error {
	var d Draft
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	caller := Caller{
		UserID: auth.UserIDFromContext(c.Request().Context()),
		Roles:  auth.RolesFromContext(c.Request().Context()),
	}
	res, err := h.svc.Create(c.Request().Context(), &d, caller)
	if err != nil {
		if errors.Is(err, ErrShiftUnavailable) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if res.RequiresOverride {
		// Expected branch: the caller retries the same draft with a code.
		return c.JSON(http.StatusConflict, res)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *Handler) GetOrder(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	o, items, err := h.svc.GetOrder(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"order": o, "items": items})
}

func (h *Handler) ListOrders(c echo.Context) error {
	pg := pagination.FromContext(c)
	patientID, err := uuid.Parse(c.QueryParam("patient_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "patient_id is required")
	}
	items, total, err := h.svc.ListOrdersByPatient(c.Request().Context(), patientID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListMonthlyBookings(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	year, err := strconv.Atoi(c.QueryParam("year"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "year is required")
	}
	month, err := strconv.Atoi(c.QueryParam("month"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "month is required")
	}
	bookings, err := h.svc.MonthlyBookings(c.Request().Context(), doctorID, year, time.Month(month))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"doctor_id": doctorID,
		"year":      year,
		"month":     month,
		"bookings":  bookings,
	})
}

type issueCodeRequest struct {
	MaxAmount    float64 `json:"max_amount"`
	ValidMinutes int     `json:"valid_minutes"`
}

func (h *Handler) IssueOverrideCode(c echo.Context) error {
	var req issueCodeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	issuedBy := auth.UserIDFromContext(c.Request().Context())
	code, err := h.svc.IssueOverrideCode(c.Request().Context(), issuedBy,
		req.MaxAmount, time.Duration(req.ValidMinutes)*time.Minute)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, code)
}
