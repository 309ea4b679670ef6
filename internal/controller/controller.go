package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bottle-order-tracking/internal/dto"
	"bottle-order-tracking/internal/middleware"
	"bottle-order-tracking/internal/model"
	"bottle-order-tracking/internal/repository"
	"bottle-order-tracking/internal/service"
)

type OrderController struct {
	Service *service.OrderStatusService
}

func NewOrderController(s *service.OrderStatusService) *OrderController {
	return &OrderController{Service: s}
}

// POST /status/init — no token required
func (ctl *OrderController) InitOrder(c *gin.Context) {
	var req dto.InitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := ctl.Service.InitOrder(c.Request.Context(), req.OrderID, req.UserID, req.Details)
	if err != nil {
		if errors.Is(err, service.ErrOrderAlreadyExists) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"order": order})
}

// GET /orders/:orderId
func (ctl *OrderController) GetOrder(c *gin.Context) {
	orderID := c.Param("orderId")
	principal := middleware.PrincipalFrom(c)

	order, err := ctl.Service.GetByOrderID(c.Request.Context(), orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}

	if !principal.Role.IsStaff() && order.UserID != principal.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "you cannot view another user's order"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// GET /orders/get-all?limit&offset — caller's own orders
func (ctl *OrderController) GetMyOrders(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	limit, offset := pagination(c)

	orders, err := ctl.Service.GetByUserID(c.Request.Context(), principal.ID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GET /orders/get-all-orders?limit&offset&status — staff view of every order
func (ctl *OrderController) GetAllOrders(c *gin.Context) {
	limit, offset := pagination(c)

	var (
		orders []*model.Order
		err    error
	)
	if status := c.Query("status"); status != "" {
		orders, err = ctl.Service.GetByStatus(c.Request.Context(), status, limit, offset)
	} else {
		orders, err = ctl.Service.GetAll(c.Request.Context(), limit, offset)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GET /orders/:orderId/tracking
func (ctl *OrderController) GetTracking(c *gin.Context) {
	orderID := c.Param("orderId")
	principal := middleware.PrincipalFrom(c)

	history, err := ctl.Service.GetTracking(c.Request.Context(), orderID, principal)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

// GET /orders/:orderId/timeline?view=customer|staff
func (ctl *OrderController) GetTimeline(c *gin.Context) {
	orderID := c.Param("orderId")
	principal := middleware.PrincipalFrom(c)
	view := service.ParseTimelineView(c.Query("view"), principal)

	timeline, err := ctl.Service.Timeline(c.Request.Context(), orderID, view, principal)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"timeline": timeline})
}

// GET /orders/:orderId/latest
func (ctl *OrderController) GetLatestStatus(c *gin.Context) {
	orderID := c.Param("orderId")
	principal := middleware.PrincipalFrom(c)

	order, err := ctl.Service.GetByOrderID(c.Request.Context(), orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	if !principal.Role.IsStaff() && order.UserID != principal.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "you cannot view another user's order"})
		return
	}

	var last *model.StatusRecord
	for i := range order.History {
		h := order.History[i]
		if last == nil || h.ChangedAt.After(last.ChangedAt) {
			last = &order.History[i]
		}
	}
	if last == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no status history found"})
		return
	}

	c.JSON(http.StatusOK, last)
}

// PATCH /orders/:orderId/status
func (ctl *OrderController) UpdateStatus(c *gin.Context) {
	orderID := c.Param("orderId")

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	principal := middleware.PrincipalFrom(c)
	if err := ctl.Service.UpdateStatus(c.Request.Context(), orderID, req.Status, req.Reason, principal); err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "status updated"})
}

// PATCH /orders/:orderId/payment-status
func (ctl *OrderController) UpdatePaymentStatus(c *gin.Context) {
	orderID := c.Param("orderId")

	var req dto.UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	principal := middleware.PrincipalFrom(c)
	if err := ctl.Service.UpdatePaymentStatus(c.Request.Context(), orderID, req.PaymentStatus, principal); err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "payment status updated"})
}

// POST /franchise/apply — no token required
func (ctl *OrderController) FranchiseApply(c *gin.Context) {
	var req dto.FranchiseApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lead := &model.FranchiseLead{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		City:       req.City,
		Investment: req.Investment,
		Message:    req.Message,
	}
	if err := ctl.Service.SubmitLead(c.Request.Context(), lead); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "application received"})
}

// GET /admin/franchise/leads — admin only
func (ctl *OrderController) GetFranchiseLeads(c *gin.Context) {
	limit, offset := pagination(c)

	leads, err := ctl.Service.GetLeads(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"leads": leads})
}

func pagination(c *gin.Context) (limit, offset int64) {
	limit, _ = strconv.ParseInt(c.Query("limit"), 10, 64)
	offset, _ = strconv.ParseInt(c.Query("offset"), 10, 64)
	return limit, offset
}

func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrFinalState),
		errors.Is(err, service.ErrReasonRequired),
		errors.Is(err, service.ErrInvalidPayment):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
