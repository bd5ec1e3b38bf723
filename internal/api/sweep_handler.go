package api

import (
	"net/http"

	"ParlayEngine/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SweepHandler 手动触发结算巡检（定时任务之外的补偿入口）
type SweepHandler struct {
	settleService *service.SettleSyncService
	logger        *logrus.Logger
}

// NewSweepHandler 创建 SweepHandler
func NewSweepHandler(settleService *service.SettleSyncService, logger *logrus.Logger) *SweepHandler {
	return &SweepHandler{
		settleService: settleService,
		logger:        logger,
	}
}

// RunSweep 手动触发一轮结算巡检 POST /sweep/run
func (h *SweepHandler) RunSweep(c *gin.Context) {
	if err := h.settleService.Run(c.Request.Context()); err != nil {
		h.logger.Errorf("手动结算巡检失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "结算巡检完成"})
}
