// Package csvimport turns broker CSV exports into trade records. Column names
// vary wildly between brokers, so headers are matched against known aliases
// and rows that cannot produce a full trade are skipped rather than failing
// the whole file.
package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"tradetrack/internal/journal"
	"tradetrack/internal/logger"
)

// ErrNoRows is returned when the file holds a header but no data rows.
var ErrNoRows = errors.New("csv contains no data rows")

// Column aliases in priority order. First present, non-empty cell wins.
var (
	symbolAliases   = []string{"symbol", "ticker", "pair", "instrument"}
	sideAliases     = []string{"side", "type", "direction", "action"}
	quantityAliases = []string{"quantity", "qty", "size", "amount", "volume"}
	priceAliases    = []string{"price", "entry price", "avg price", "fill price"}
	timeAliases     = []string{"time", "date", "entry time", "timestamp", "open time"}
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"02/01/2006 15:04:05",
	"01/02/2006",
	"02-01-2006 15:04:05",
}

// Result summarizes one import run.
type Result struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Parse reads the CSV and maps every usable row into a trade record. Records
// come back with Status OPEN and no owner; the caller stamps the user before
// persisting. Unusable rows are counted, not fatal.
func Parse(r io.Reader) ([]journal.TradeRecord, Result, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, Result{}, ErrNoRows
	}
	if err != nil {
		return nil, Result{}, fmt.Errorf("read csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var (
		records []journal.TradeRecord
		res     Result
		line    = 1
	)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			// Malformed line, move on like any other unusable row.
			res.Skipped++
			continue
		}
		rec, ok := rowToRecord(cols, row)
		if !ok {
			logger.Debugf("[csvimport] skip line %d: incomplete row", line)
			res.Skipped++
			continue
		}
		records = append(records, rec)
		res.Imported++
	}
	if res.Imported == 0 && res.Skipped == 0 {
		return nil, res, ErrNoRows
	}
	return records, res, nil
}

func rowToRecord(cols map[string]int, row []string) (journal.TradeRecord, bool) {
	symbol := pick(cols, row, symbolAliases)
	quantity, qok := pickNumber(cols, row, quantityAliases)
	price, pok := pickNumber(cols, row, priceAliases)
	when, tok := pickTime(cols, row)
	if symbol == "" || !qok || quantity == 0 || !pok || price == 0 || !tok {
		return journal.TradeRecord{}, false
	}

	side := journal.SideBuy
	switch strings.ToUpper(pick(cols, row, sideAliases)) {
	case "SELL", "SHORT", "S":
		side = journal.SideSell
	}

	return journal.TradeRecord{
		Symbol:     strings.ToUpper(symbol),
		Side:       side,
		Quantity:   math.Abs(quantity),
		EntryPrice: math.Abs(price),
		EntryTime:  &when,
		Status:     journal.StatusOpen,
	}, true
}

func pick(cols map[string]int, row []string, aliases []string) string {
	for _, alias := range aliases {
		idx, ok := cols[alias]
		if !ok || idx >= len(row) {
			continue
		}
		if v := strings.TrimSpace(row[idx]); v != "" {
			return v
		}
	}
	return ""
}

func pickNumber(cols map[string]int, row []string, aliases []string) (float64, bool) {
	raw := pick(cols, row, aliases)
	if raw == "" {
		return 0, false
	}
	cleaned := strings.NewReplacer(",", "", "$", "").Replace(raw)
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, false
	}
	f, _ := d.Float64()
	return f, true
}

func pickTime(cols map[string]int, row []string) (time.Time, bool) {
	raw := pick(cols, row, timeAliases)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
