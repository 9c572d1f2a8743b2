package handlers

import (
	"github.com/gin-gonic/gin"

	"salesboard/internal/core/apperror"
	"salesboard/internal/domain/reports"
	"salesboard/internal/infrastructure/http/v1/dto"
)

// ReportsHandler serves the dashboard report views.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(service *reports.Service) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
	}
}

// MonthlySales handles GET /api/v1/reports/monthly-sales.
func (h *ReportsHandler) MonthlySales(c *gin.Context) {
	var req dto.MonthlySalesRequest
	if !h.BindQuery(c, &req) {
		return
	}

	buckets, err := h.service.MonthlySales(c.Request.Context(), req.Year)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromMonthlyBuckets(req.Year, buckets))
}

// SalesByLocation handles GET /api/v1/reports/sales-by-location.
func (h *ReportsHandler) SalesByLocation(c *gin.Context) {
	var req dto.BreakdownRequest
	if !h.BindQuery(c, &req) {
		return
	}
	metric, ok := dto.NormalizedMetric(req.Metric)
	if !ok {
		h.Error(c, apperror.NewValidation("metric must be total or quantity").WithDetail("metric", req.Metric))
		return
	}
	month := dto.NormalizedMonth(req.Month)

	buckets, err := h.service.SalesByLocation(c.Request.Context(), req.Year, month)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromLocationBuckets(req.Year, month, metric, buckets))
}

// SalesByProduct handles GET /api/v1/reports/sales-by-product.
func (h *ReportsHandler) SalesByProduct(c *gin.Context) {
	var req dto.BreakdownRequest
	if !h.BindQuery(c, &req) {
		return
	}
	metric, ok := dto.NormalizedMetric(req.Metric)
	if !ok {
		h.Error(c, apperror.NewValidation("metric must be total or quantity").WithDetail("metric", req.Metric))
		return
	}
	month := dto.NormalizedMonth(req.Month)

	buckets, err := h.service.SalesByProduct(c.Request.Context(), req.Year, month)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromProductBuckets(req.Year, month, metric, buckets))
}

// Stock handles GET /api/v1/reports/stock.
func (h *ReportsHandler) Stock(c *gin.Context) {
	var req dto.StockRequest
	if !h.BindQuery(c, &req) {
		return
	}

	recs, err := h.service.Stock(c.Request.Context(), reports.StockQuery{
		LocationID:   req.LocationID,
		LocationName: req.LocationName,
		ProductID:    req.ProductID,
		SortBy:       req.SortBy,
		SortDesc:     req.SortDesc,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromStockRecords(recs))
}

// Filters handles GET /api/v1/reports/filters.
func (h *ReportsHandler) Filters(c *gin.Context) {
	opts, err := h.service.FilterOptions(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromFilterOptions(opts))
}
