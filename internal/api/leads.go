package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"pine-backend/internal/store"
)

type LeadHandler struct {
	Store *store.Store
}

func NewLeadHandler(s *store.Store) *LeadHandler {
	return &LeadHandler{Store: s}
}

// GetLeads returns recently archived leads, newest first. ?limit caps the
// result, default 100.
func (h *LeadHandler) GetLeads(c *gin.Context) {
	if h.Store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Lead archive not available"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	leads, err := h.Store.RecentLeads(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load leads"})
		return
	}

	c.JSON(http.StatusOK, leads)
}

// ExportLeads downloads the archive as CSV, mirroring the sheet columns.
func (h *LeadHandler) ExportLeads(c *gin.Context) {
	if h.Store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Lead archive not available"})
		return
	}

	leads, err := h.Store.RecentLeads(500)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load leads"})
		return
	}

	csv := "ID,Timestamp,Name,Contact,Message,Reply,Source\n"
	for _, lead := range leads {
		cells := lead.LedgerRow()
		for i, cell := range cells {
			cells[i] = csvEscape(cell)
		}
		csv += strings.Join(cells, ",") + "\n"
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=leads.csv")
	c.String(http.StatusOK, csv)
}

func csvEscape(cell string) string {
	if strings.ContainsAny(cell, ",\"\n") {
		return "\"" + strings.ReplaceAll(cell, "\"", "\"\"") + "\""
	}
	return cell
}
