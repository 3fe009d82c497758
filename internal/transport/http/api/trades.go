package apihttp

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"tradetrack/internal/csvimport"
	"tradetrack/internal/journal"
	"tradetrack/internal/logger"
)

type createTradeRequest struct {
	Symbol     string              `json:"symbol" binding:"required"`
	Side       journal.TradeSide   `json:"side" binding:"required"`
	Quantity   float64             `json:"quantity" binding:"required,gt=0"`
	EntryPrice float64             `json:"entry_price" binding:"required,gt=0"`
	ExitPrice  *float64            `json:"exit_price"`
	EntryTime  *time.Time          `json:"entry_time"`
	ExitTime   *time.Time          `json:"exit_time"`
	Status     journal.TradeStatus `json:"status"`
	PnL        *float64            `json:"pnl"`
	Setup      string              `json:"setup"`
	Notes      string              `json:"notes"`
}

func (r *Router) handleCreateTrade(c *gin.Context) {
	var req createTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Side.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("side must be BUY or SELL, got %q", req.Side)})
		return
	}
	if req.Status == "" {
		req.Status = journal.StatusOpen
	}
	if !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("status must be OPEN or CLOSED, got %q", req.Status)})
		return
	}
	entryTime := req.EntryTime
	if entryTime == nil {
		now := time.Now().UTC()
		entryTime = &now
	}

	rec, err := r.trades.Insert(c.Request.Context(), journal.TradeRecord{
		UserID:     currentUser(c),
		Symbol:     req.Symbol,
		Side:       req.Side,
		Quantity:   req.Quantity,
		EntryPrice: req.EntryPrice,
		ExitPrice:  req.ExitPrice,
		EntryTime:  entryTime,
		ExitTime:   req.ExitTime,
		Status:     req.Status,
		PnL:        req.PnL,
		Setup:      req.Setup,
		Notes:      req.Notes,
	})
	if err != nil {
		writeError(c, err, false)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (r *Router) handleListTrades(c *gin.Context) {
	filter, ok := bindFilter(c)
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}
	trades, err := r.trades.Find(c.Request.Context(), currentUser(c), filter, limit)
	if err != nil {
		writeError(c, err, false)
		return
	}
	if trades == nil {
		trades = []journal.TradeRecord{}
	}
	c.JSON(http.StatusOK, trades)
}

func (r *Router) handleGetTrade(c *gin.Context) {
	rec, err := r.trades.Get(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		writeError(c, err, false)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (r *Router) handleUpdateTrade(c *gin.Context) {
	var upd journal.TradeUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if upd.Side != nil && !upd.Side.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("side must be BUY or SELL, got %q", *upd.Side)})
		return
	}
	if upd.Status != nil && !upd.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("status must be OPEN or CLOSED, got %q", *upd.Status)})
		return
	}
	rec, err := r.trades.UpdatePartial(c.Request.Context(), currentUser(c), c.Param("id"), upd)
	if err != nil {
		writeError(c, err, false)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (r *Router) handleDeleteTrade(c *gin.Context) {
	if err := r.trades.Delete(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		writeError(c, err, false)
		return
	}
	c.Status(http.StatusNoContent)
}

func (r *Router) handleImportTrades(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'file' is required"})
		return
	}
	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer src.Close()

	records, res, err := csvimport.Parse(src)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("failed to process file: %v", err)})
		return
	}
	userID := currentUser(c)
	for i := range records {
		records[i].UserID = userID
	}
	inserted, err := r.trades.InsertBatch(c.Request.Context(), records)
	if err != nil {
		writeError(c, err, false)
		return
	}
	logger.Infof("[api] csv import user=%s imported=%d skipped=%d", userID, inserted, res.Skipped)
	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"imported": inserted,
		"skipped":  res.Skipped,
		"message":  fmt.Sprintf("Successfully imported %d trades", inserted),
	})
}

func bindFilter(c *gin.Context) (*journal.TradeFilter, bool) {
	var filter journal.TradeFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	if err := filter.Normalize(); err != nil {
		writeError(c, err, false)
		return nil, false
	}
	return &filter, true
}
