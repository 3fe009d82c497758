package apihttp

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tradetrack/internal/analytics"
	"tradetrack/internal/store"
	"tradetrack/internal/syncer"
)

// Router mounts every /api/v1 endpoint.
type Router struct {
	trades    *store.TradeStore
	analytics *analytics.Service
	sync      *syncer.Service
}

func NewRouter(trades *store.TradeStore, analyticsSvc *analytics.Service, syncSvc *syncer.Service) *Router {
	return &Router{trades: trades, analytics: analyticsSvc, sync: syncSvc}
}

// Register mounts the routes on the given group.
func (r *Router) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.GET("/health", r.handleHealth)
	group.GET("/exchanges", r.handleListSources)

	authed := group.Group("", requireUser())

	authed.GET("/trades", r.handleListTrades)
	authed.POST("/trades", r.handleCreateTrade)
	authed.POST("/trades/import", r.handleImportTrades)
	authed.GET("/trades/:id", r.handleGetTrade)
	authed.PATCH("/trades/:id", r.handleUpdateTrade)
	authed.DELETE("/trades/:id", r.handleDeleteTrade)

	authed.GET("/analytics/dashboard", r.handleDashboard)
	authed.GET("/analytics/journal", r.handleJournal)
	authed.GET("/analytics/equity-curve", r.handleEquityCurve)

	authed.POST("/exchanges/test", r.handleTestConnection)
	authed.POST("/exchanges/connect", r.handleConnect)
	authed.GET("/exchanges/connections", r.handleListConnections)
	authed.DELETE("/exchanges/connections/:id", r.handleDisconnect)
	authed.POST("/exchanges/connections/:id/sync", r.handleSync)
	authed.GET("/exchanges/connections/:id/balances", r.handleBalances)
	authed.GET("/exchanges/connections/:id/positions", r.handlePositions)
}

func (r *Router) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "tradetrack"})
}

const userHeader = "X-User-ID"

// requireUser resolves the request owner from the X-User-ID header. Identity
// verification happens upstream; here the header is only required to exist.
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(userHeader))
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + userHeader + " header"})
			return
		}
		c.Set("user_id", userID)
		c.Next()
	}
}

func currentUser(c *gin.Context) string {
	return c.GetString("user_id")
}
