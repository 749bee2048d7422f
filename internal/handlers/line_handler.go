package handlers

import (
	"net/http"
	"time"

	"github.com/sunjava/telcodesk/internal/models"
	"github.com/sunjava/telcodesk/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *HTTPHandler) ListLines(c *gin.Context) {
	accountID, ok := h.objectIDParam(c, "account_id")
	if !ok {
		return
	}

	status := models.LineStatus(c.Query("status"))
	lines, err := h.lineOps.LinesWithStatus(c.Request.Context(), accountID, status)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"lines": lines,
		"count": len(lines),
	})
}

// BulkLineOperation handles suspend, restore, reactivate and cancel. Partial
// failure is still a 200; each line's outcome is in the results.
func (h *HTTPHandler) BulkLineOperation(op models.LineOperation) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, ok := h.objectIDParam(c, "account_id")
		if !ok {
			return
		}

		var req struct {
			LineIdentifiers []string `json:"line_identifiers"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		result, err := h.lineOps.BulkApply(c.Request.Context(), accountID, op, req.LineIdentifiers)
		if err != nil {
			h.respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func (h *HTTPHandler) CreateLine(c *gin.Context) {
	accountID, ok := h.objectIDParam(c, "account_id")
	if !ok {
		return
	}

	var req struct {
		LineName        string  `json:"line_name"`
		EmployeeName    string  `json:"employee_name"`
		AreaCode        string  `json:"area_code"`
		DeviceModel     string  `json:"device_model"`
		DeviceColor     string  `json:"device_color"`
		DeviceStorage   string  `json:"device_storage"`
		DevicePrice     float64 `json:"device_price"`
		PlanName        string  `json:"plan_name"`
		PlanPrice       float64 `json:"plan_price"`
		PlanDataLimit   string  `json:"plan_data_limit"`
		ProtectionName  string  `json:"protection_name"`
		ProtectionPrice float64 `json:"protection_price"`
		TradeInValue    float64 `json:"trade_in_value"`
		TotalMonthly    float64 `json:"total_monthly"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	line, err := h.lineOps.CreateLine(c.Request.Context(), accountID, service.CreateLineInput{
		LineName:        req.LineName,
		EmployeeName:    req.EmployeeName,
		AreaCode:        req.AreaCode,
		DeviceModel:     req.DeviceModel,
		DeviceColor:     req.DeviceColor,
		DeviceStorage:   req.DeviceStorage,
		DevicePrice:     req.DevicePrice,
		PlanName:        req.PlanName,
		PlanPrice:       req.PlanPrice,
		PlanDataLimit:   req.PlanDataLimit,
		ProtectionName:  req.ProtectionName,
		ProtectionPrice: req.ProtectionPrice,
		TradeInValue:    req.TradeInValue,
		TotalMonthly:    req.TotalMonthly,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, line)
}

func (h *HTTPHandler) MirrorLine(c *gin.Context) {
	lineID, ok := h.objectIDParam(c, "line_id")
	if !ok {
		return
	}

	var req struct {
		NewEmployeeName string `json:"new_employee_name" binding:"required"`
		NewLineName     string `json:"new_line_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	line, err := h.lineOps.MirrorLine(c.Request.Context(), lineID, req.NewEmployeeName, req.NewLineName)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, line)
}

func (h *HTTPHandler) GetLine(c *gin.Context) {
	lineID, ok := h.objectIDParam(c, "line_id")
	if !ok {
		return
	}

	line, err := h.lineOps.GetLine(c.Request.Context(), lineID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	subscriptions, err := h.subscriptions.ListForLine(c.Request.Context(), lineID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"line":     line,
		"services": subscriptions,
	})
}

func (h *HTTPHandler) UpdateLineDetails(c *gin.Context) {
	lineID, ok := h.objectIDParam(c, "line_id")
	if !ok {
		return
	}

	var req struct {
		LineName        *string  `json:"line_name"`
		EmployeeName    *string  `json:"employee_name"`
		DeviceModel     *string  `json:"device_model"`
		DeviceColor     *string  `json:"device_color"`
		DeviceStorage   *string  `json:"device_storage"`
		DevicePrice     *float64 `json:"device_price"`
		PlanName        *string  `json:"plan_name"`
		PlanPrice       *float64 `json:"plan_price"`
		PlanDataLimit   *string  `json:"plan_data_limit"`
		ProtectionName  *string  `json:"protection_name"`
		ProtectionPrice *float64 `json:"protection_price"`
		TradeInValue    *float64 `json:"trade_in_value"`
		TotalMonthly    *float64 `json:"total_monthly"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	line, err := h.lineOps.UpdateLineDetails(c.Request.Context(), lineID, service.UpdateLineInput{
		LineName:        req.LineName,
		EmployeeName:    req.EmployeeName,
		DeviceModel:     req.DeviceModel,
		DeviceColor:     req.DeviceColor,
		DeviceStorage:   req.DeviceStorage,
		DevicePrice:     req.DevicePrice,
		PlanName:        req.PlanName,
		PlanPrice:       req.PlanPrice,
		PlanDataLimit:   req.PlanDataLimit,
		ProtectionName:  req.ProtectionName,
		ProtectionPrice: req.ProtectionPrice,
		TradeInValue:    req.TradeInValue,
		TotalMonthly:    req.TotalMonthly,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, line)
}

func (h *HTTPHandler) UpdatePaymentDate(c *gin.Context) {
	lineID, ok := h.objectIDParam(c, "line_id")
	if !ok {
		return
	}

	var req struct {
		PaymentDueDate string `json:"payment_due_date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	due, err := time.Parse("2006-01-02", req.PaymentDueDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payment_due_date must be YYYY-MM-DD"})
		return
	}

	line, err := h.lineOps.UpdatePaymentDate(c.Request.Context(), lineID, due)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, line)
}
