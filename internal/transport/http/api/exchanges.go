package apihttp

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tradetrack/internal/exchange"
	"tradetrack/internal/journal"
	"tradetrack/internal/syncer"
)

func (r *Router) handleListSources(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"exchanges": exchange.Supported()})
}

func (r *Router) handleTestConnection(c *gin.Context) {
	var req syncer.ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := r.sync.TestCredentials(c.Request.Context(), req)
	if err != nil {
		writeError(c, err, true)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (r *Router) handleConnect(c *gin.Context) {
	var req syncer.ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	conn, err := r.sync.Connect(c.Request.Context(), currentUser(c), req)
	if err != nil {
		writeError(c, err, true)
		return
	}
	c.JSON(http.StatusCreated, conn)
}

func (r *Router) handleListConnections(c *gin.Context) {
	conns, err := r.sync.List(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err, false)
		return
	}
	if conns == nil {
		conns = []journal.ExchangeConnection{}
	}
	c.JSON(http.StatusOK, gin.H{"connections": conns})
}

func (r *Router) handleDisconnect(c *gin.Context) {
	if err := r.sync.Disconnect(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		writeError(c, err, false)
		return
	}
	c.Status(http.StatusNoContent)
}

func (r *Router) handleSync(c *gin.Context) {
	// Ownership first: syncing itself runs by connection id alone, and a 404
	// must not leak whether someone else's connection exists.
	conn, err := r.sync.GetConnection(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		writeError(c, err, false)
		return
	}
	reportOut, err := r.sync.Sync(c.Request.Context(), conn.ID)
	if err != nil {
		writeError(c, err, true)
		return
	}
	c.JSON(http.StatusOK, reportOut)
}

func (r *Router) handleBalances(c *gin.Context) {
	balances, err := r.sync.Balances(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		writeError(c, err, true)
		return
	}
	if balances == nil {
		balances = []exchange.Balance{}
	}
	c.JSON(http.StatusOK, gin.H{"balances": balances})
}

func (r *Router) handlePositions(c *gin.Context) {
	positions, err := r.sync.Positions(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		writeError(c, err, true)
		return
	}
	c.JSON(http.StatusOK, gin.H{"positions": positions})
}
