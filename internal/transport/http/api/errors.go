package apihttp

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tradetrack/internal/exchange"
	"tradetrack/internal/journal"
	"tradetrack/internal/logger"
	"tradetrack/internal/store"
	"tradetrack/internal/syncer"
)

// writeError maps domain errors onto HTTP statuses. venueOp marks handlers
// that talk to an external venue, where an unclassified failure is the
// upstream's fault rather than ours.
func writeError(c *gin.Context, err error, venueOp bool) {
	switch {
	case errors.Is(err, journal.ErrValidation),
		errors.Is(err, exchange.ErrUnsupportedSource),
		errors.Is(err, syncer.ErrPassphraseRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, syncer.ErrSyncInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case syncer.IsCredentialError(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case venueOp:
		logger.Errorf("[api] upstream venue failure ip=%s err=%v", c.ClientIP(), err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		logger.Errorf("[api] request failed ip=%s err=%v", c.ClientIP(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
