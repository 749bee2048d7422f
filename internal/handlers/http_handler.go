package handlers

import (
	"net/http"
	"time"

	"github.com/sunjava/telcodesk/internal/models"
	"github.com/sunjava/telcodesk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type HTTPHandler struct {
	accounts      *service.AccountService
	lineOps       *service.LineOpsService
	catalog       *service.CatalogService
	subscriptions *service.SubscriptionService
	assistant     *service.Assistant
	logger        *logrus.Logger
}

func NewHTTPHandler(accounts *service.AccountService, lineOps *service.LineOpsService, catalog *service.CatalogService, subscriptions *service.SubscriptionService, assistant *service.Assistant, logger *logrus.Logger) *HTTPHandler {
	return &HTTPHandler{
		accounts:      accounts,
		lineOps:       lineOps,
		catalog:       catalog,
		subscriptions: subscriptions,
		assistant:     assistant,
		logger:        logger,
	}
}

func (h *HTTPHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

func (h *HTTPHandler) Dashboard(c *gin.Context) {
	stats, err := h.accounts.Dashboard(c.Request.Context())
	if err != nil {
		h.logger.Errorf("Failed to load dashboard: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *HTTPHandler) ListAccounts(c *gin.Context) {
	rows, err := h.accounts.ListAccounts(c.Request.Context())
	if err != nil {
		h.logger.Errorf("Failed to list accounts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accounts": rows,
		"count":    len(rows),
	})
}

// GetAccount accepts either the object ID or the business account number in
// the path.
func (h *HTTPHandler) GetAccount(c *gin.Context) {
	param := c.Param("account_id")
	accountID, err := primitive.ObjectIDFromHex(param)
	if err != nil {
		account, err := h.accounts.GetAccountByNumber(c.Request.Context(), param)
		if err != nil {
			h.respondError(c, err)
			return
		}
		accountID = account.ID
	}

	summary, err := h.accounts.GetSummary(c.Request.Context(), accountID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *HTTPHandler) UpdateAccountStatus(c *gin.Context) {
	accountID, ok := h.objectIDParam(c, "account_id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.accounts.SetAccountStatus(c.Request.Context(), accountID, models.AccountStatus(req.Status))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *HTTPHandler) ListServices(c *gin.Context) {
	services, err := h.catalog.List(c.Request.Context())
	if err != nil {
		h.logger.Errorf("Failed to list services: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"services": services,
		"count":    len(services),
	})
}

func (h *HTTPHandler) AddService(c *gin.Context) {
	accountID, ok := h.objectIDParam(c, "account_id")
	if !ok {
		return
	}

	var req struct {
		ServiceType     string   `json:"service_type" binding:"required"`
		LineIdentifiers []string `json:"line_identifiers"`
		PaymentMethod   string   `json:"payment_method"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.subscriptions.AddServiceToLines(c.Request.Context(), accountID, req.ServiceType, req.LineIdentifiers, req.PaymentMethod)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *HTTPHandler) objectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return primitive.NilObjectID, false
	}
	return id, true
}

func (h *HTTPHandler) respondError(c *gin.Context, err error) {
	switch err {
	case service.ErrAccountNotFound, service.ErrLineNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case service.ErrInvalidStatus, service.ErrServiceNotFound:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Errorf("Request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
