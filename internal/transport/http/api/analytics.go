package apihttp

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tradetrack/internal/journal"
	"tradetrack/internal/report"
)

func (r *Router) handleDashboard(c *gin.Context) {
	filter, ok := bindFilter(c)
	if !ok {
		return
	}
	stats, err := r.analytics.Dashboard(c.Request.Context(), currentUser(c), filter)
	if err != nil {
		writeError(c, err, false)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (r *Router) handleJournal(c *gin.Context) {
	filter, ok := bindFilter(c)
	if !ok {
		return
	}
	daily, err := r.analytics.Journal(c.Request.Context(), currentUser(c), filter)
	if err != nil {
		writeError(c, err, false)
		return
	}
	c.JSON(http.StatusOK, gin.H{"daily_stats": daily})
}

func (r *Router) handleEquityCurve(c *gin.Context) {
	filter, ok := bindFilter(c)
	if !ok {
		return
	}
	points, err := r.analytics.EquityCurve(c.Request.Context(), currentUser(c), filter)
	if err != nil {
		writeError(c, err, false)
		return
	}
	if c.Query("format") == "html" {
		c.Header("Content-Type", "text/html; charset=utf-8")
		if err := report.RenderEquityCurve(c.Writer, "Equity Curve", points); err != nil {
			writeError(c, err, false)
		}
		return
	}
	if points == nil {
		points = []journal.EquityPoint{}
	}
	c.JSON(http.StatusOK, gin.H{"data": points})
}
