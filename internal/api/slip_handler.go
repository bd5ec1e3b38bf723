package api

import (
	"net/http"
	"strings"

	"ParlayEngine/internal/interfaces"
	"ParlayEngine/internal/model"
	"ParlayEngine/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SlipHandler 选腿单接口。会话由请求头 X-Session-ID 标识，
// 选腿时实时查市场快照价格，腿一经选入价格不再变动
type SlipHandler struct {
	slipService *service.SlipService
	markets     interfaces.MarketFetcher
	logger      *logrus.Logger
}

// NewSlipHandler 创建 SlipHandler
func NewSlipHandler(slipService *service.SlipService, markets interfaces.MarketFetcher, logger *logrus.Logger) *SlipHandler {
	return &SlipHandler{
		slipService: slipService,
		markets:     markets,
		logger:      logger,
	}
}

func sessionID(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader("X-Session-ID"))
}

// AddLegRequest 选腿请求 body
type AddLegRequest struct {
	MarketID string `json:"market_id"` // 必填
	Side     string `json:"side"`      // YES / NO
}

// AddLeg 选入一条腿 POST /api/slip/legs
// 同市场换边时旧腿自动被替换；重复选入同一条腿为幂等
func (h *SlipHandler) AddLeg(c *gin.Context) {
	sid := sessionID(c)
	if sid == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-Session-ID is required"})
		return
	}
	var req AddLegRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	side := strings.ToUpper(strings.TrimSpace(req.Side))
	if req.MarketID == "" || (side != model.SideYes && side != model.SideNo) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "market_id and side (YES/NO) are required"})
		return
	}

	info, err := h.markets.GetMarket(c.Request.Context(), req.MarketID)
	if err != nil {
		h.logger.WithError(err).Error("AddLeg 查询市场失败")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if info.Closed || !info.Active {
		c.JSON(http.StatusBadRequest, gin.H{"error": "市场已关闭，无法选入"})
		return
	}

	leg := model.Leg{
		LegID:     model.LegKey(info.MarketID, side),
		MarketID:  info.MarketID,
		Question:  info.Question,
		Side:      side,
		Category:  info.Category,
		EndDate:   info.EndDate,
		Liquidity: info.Liquidity,
	}
	if side == model.SideYes {
		leg.TokenID = info.TokenIDs[0]
		leg.Price = info.YesPrice
	} else {
		leg.TokenID = info.TokenIDs[1]
		leg.Price = info.NoPrice
	}

	c.JSON(http.StatusOK, h.slipService.AddLeg(sid, leg))
}

// RemoveLeg 移除一条腿 DELETE /api/slip/legs/:leg_id（不存在为 no-op）
func (h *SlipHandler) RemoveLeg(c *gin.Context) {
	sid := sessionID(c)
	if sid == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-Session-ID is required"})
		return
	}
	legID := c.Param("leg_id")
	if legID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "leg_id is required"})
		return
	}
	c.JSON(http.StatusOK, h.slipService.RemoveLeg(sid, legID))
}

// SetStakeRequest 设置金额请求 body
type SetStakeRequest struct {
	Stake float64 `json:"stake"`
}

// SetStake 设置下注金额 POST /api/slip/stake（负数按 0 处理）
func (h *SlipHandler) SetStake(c *gin.Context) {
	sid := sessionID(c)
	if sid == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-Session-ID is required"})
		return
	}
	var req SetStakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.slipService.SetStake(sid, req.Stake))
}

// ClearSlip 清空选腿单 DELETE /api/slip
func (h *SlipHandler) ClearSlip(c *gin.Context) {
	sid := sessionID(c)
	if sid == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-Session-ID is required"})
		return
	}
	c.JSON(http.StatusOK, h.slipService.ClearAll(sid))
}

// GetSlip 当前选腿单与实时报价 GET /api/slip
func (h *SlipHandler) GetSlip(c *gin.Context) {
	sid := sessionID(c)
	if sid == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-Session-ID is required"})
		return
	}
	c.JSON(http.StatusOK, h.slipService.Get(sid))
}
