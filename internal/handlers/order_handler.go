package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/orbs-network/twap-go/internal/models"
	"github.com/orbs-network/twap-go/internal/services"
)

// OrderHandler serves the read-only order API. All state comes from the
// chain on each request; nothing is cached in process.
type OrderHandler struct {
	twap   *services.TWAPService
	logger *logrus.Logger
}

// NewOrderHandler creates the handler over the lifecycle service.
func NewOrderHandler(twap *services.TWAPService, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{twap: twap, logger: logger}
}

// orderResponse is the wire shape of one order. Amounts are decimal strings
// since uint256 overflows JSON numbers.
type orderResponse struct {
	ID            uint64  `json:"id"`
	Status        string  `json:"status"`
	Progress      float64 `json:"progress"`
	Maker         string  `json:"maker"`
	Exchange      string  `json:"exchange"`
	SrcToken      string  `json:"srcToken"`
	SrcTokenSym   string  `json:"srcTokenSymbol,omitempty"`
	DstToken      string  `json:"dstToken"`
	DstTokenSym   string  `json:"dstTokenSymbol,omitempty"`
	SrcAmount     string  `json:"srcAmount"`
	SrcBidAmount  string  `json:"srcBidAmount"`
	DstMinAmount  string  `json:"dstMinAmount"`
	FilledSrc     string  `json:"filledSrcAmount"`
	FilledDst     string  `json:"filledDstAmount"`
	IsMarketOrder bool    `json:"isMarketOrder"`
	CreatedAt     int64   `json:"createdAt"`
	Deadline      int64   `json:"deadline"`
}

func toOrderResponse(o *models.Order, progress float64, now time.Time) orderResponse {
	resp := orderResponse{
		ID:            o.ID,
		Status:        string(o.StatusAt(now)),
		Progress:      progress,
		Maker:         o.Maker.Hex(),
		Exchange:      o.Ask.Exchange.Hex(),
		SrcToken:      o.Ask.SrcToken.Hex(),
		DstToken:      o.Ask.DstToken.Hex(),
		SrcAmount:     o.Ask.SrcAmount.String(),
		SrcBidAmount:  o.Ask.SrcBidAmount.String(),
		DstMinAmount:  o.Ask.DstMinAmount.String(),
		FilledSrc:     o.Filled.SrcAmount.String(),
		FilledDst:     o.Filled.DstAmount.String(),
		IsMarketOrder: o.IsMarketOrder(),
		CreatedAt:     o.Time,
		Deadline:      o.Ask.Deadline,
	}
	if o.SrcToken != nil {
		resp.SrcTokenSym = o.SrcToken.Symbol
	}
	if o.DstToken != nil {
		resp.DstTokenSym = o.DstToken.Symbol
	}
	return resp
}

// ListOrders returns the maker's orders on the configured exchange, with
// resolved token metadata and derived status.
// GET /api/v1/orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.twap.GetAllOrdersWithTokens(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("failed to list orders")
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to read orders"})
		return
	}

	now := time.Now()
	calc := h.twap.Calculator()
	resp := make([]orderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, toOrderResponse(&orders[i], calc.OrderProgress(&orders[i]), now))
	}
	c.JSON(http.StatusOK, gin.H{"orders": resp, "count": len(resp)})
}

// GetOrder returns one order by id.
// GET /api/v1/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	order, err := h.twap.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.logger.WithError(err).WithField("id", id).Error("failed to read order")
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to read order"})
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order, h.twap.Calculator().OrderProgress(order), time.Now()))
}
