package api

import (
	"net/http"
	"strconv"

	"ParlayEngine/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ParlayHandler 串关下单与查询接口
type ParlayHandler struct {
	parlayService *service.ParlayService
	slipService   *service.SlipService
	logger        *logrus.Logger
}

// NewParlayHandler 创建 ParlayHandler
func NewParlayHandler(parlayService *service.ParlayService, slipService *service.SlipService, logger *logrus.Logger) *ParlayHandler {
	return &ParlayHandler{
		parlayService: parlayService,
		slipService:   slipService,
		logger:        logger,
	}
}

// PlaceParlay 提交串关 POST /api/parlays/place
// body 为 service.PlaceParlayRequest；全部腿成交时清空会话选腿单
func (h *ParlayHandler) PlaceParlay(c *gin.Context) {
	var req service.PlaceParlayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	result, err := h.parlayService.PlaceParlay(c.Request.Context(), &req)
	if err != nil {
		h.logger.WithError(err).Error("PlaceParlay failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if result.Success {
		if sid := c.GetHeader("X-Session-ID"); sid != "" {
			h.slipService.Discard(sid)
		}
	}
	c.JSON(http.StatusOK, result)
}

// ListParlays 串关列表 GET /api/parlays?wallet=0x...&page=1&page_size=20
func (h *ParlayHandler) ListParlays(c *gin.Context) {
	wallet := c.Query("wallet")
	if wallet == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "wallet is required"})
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.parlayService.ListByUser(c.Request.Context(), wallet, page, pageSize)
	if err != nil {
		h.logger.WithError(err).Error("ListParlays failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetParlayDetail 串关详情 GET /api/parlays/:parlay_uuid
func (h *ParlayHandler) GetParlayDetail(c *gin.Context) {
	parlayUUID := c.Param("parlay_uuid")
	if parlayUUID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "parlay_uuid is required"})
		return
	}
	result, err := h.parlayService.GetDetail(c.Request.Context(), parlayUUID)
	if err != nil {
		h.logger.WithError(err).Error("GetParlayDetail failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
