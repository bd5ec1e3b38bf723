package api

import (
	"net/http"

	"ParlayEngine/internal/interfaces"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// MarketHandler 市场信息代理查询接口（带缓存，供前端选腿时展示）
type MarketHandler struct {
	markets interfaces.MarketFetcher
	logger  *logrus.Logger
}

// NewMarketHandler 创建 MarketHandler
func NewMarketHandler(markets interfaces.MarketFetcher, logger *logrus.Logger) *MarketHandler {
	return &MarketHandler{
		markets: markets,
		logger:  logger,
	}
}

// GetMarket 市场详情 GET /api/markets/:market_id
func (h *MarketHandler) GetMarket(c *gin.Context) {
	marketID := c.Param("market_id")
	if marketID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "market_id is required"})
		return
	}
	info, err := h.markets.GetMarket(c.Request.Context(), marketID)
	if err != nil {
		h.logger.WithError(err).Error("GetMarket failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, info)
}
