package handlers

import (
	"net/http"

	"curbfinder/internal/domain/entities"
	apperrors "curbfinder/internal/pkg/errors"
	"curbfinder/internal/services"

	"github.com/gin-gonic/gin"
)

type CurbHandler struct {
	curbService *services.CurbService
}

func NewCurbHandler(curbService *services.CurbService) *CurbHandler {
	return &CurbHandler{
		curbService: curbService,
	}
}

// SearchRequest caps limit at 1000 and radius at 100 km; the CLI has no
// such cap.
type SearchRequest struct {
	Address string  `form:"address" binding:"required"`
	Radius  float64 `form:"radius" binding:"omitempty,gte=0,lte=100000"`
	Limit   int     `form:"limit" binding:"omitempty,gte=0,lte=1000"`
}

// Search handles GET /curbs/search?address=<geohash>&radius=<m>&limit=<k>
func (h *CurbHandler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		writeError(c, apperrors.ErrInvalidRequest.WithDetails(gin.H{"reason": err.Error()}))
		return
	}

	result, err := h.curbService.Search(c.Request.Context(), req.Address, req.Radius, req.Limit)
	if err != nil {
		_ = c.Error(err)
		writeError(c, apperrors.FromDomain(err))
		return
	}

	c.JSON(http.StatusOK, result)
}

// Upsert handles PUT /curbs
func (h *CurbHandler) Upsert(c *gin.Context) {
	var req entities.CurbInput
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.ErrMalformedRecord.WithDetails(gin.H{"reason": err.Error()}))
		return
	}

	record, err := req.ToRecord()
	if err == nil {
		err = h.curbService.Update(c.Request.Context(), record)
	}
	if err != nil {
		_ = c.Error(err)
		writeError(c, apperrors.FromDomain(err))
		return
	}

	c.JSON(http.StatusOK, record)
}

// Bucket handles GET /curbs/buckets/:key
func (h *CurbHandler) Bucket(c *gin.Context) {
	key := c.Param("key")
	curbs := h.curbService.Bucket(c.Request.Context(), key)
	c.JSON(http.StatusOK, gin.H{
		"bucket": key,
		"count":  len(curbs),
		"curbs":  curbs,
	})
}

// Buckets handles GET /curbs/buckets
func (h *CurbHandler) Buckets(c *gin.Context) {
	buckets := h.curbService.Buckets(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"count":   len(buckets),
		"buckets": buckets,
	})
}

// Stats handles GET /curbs/stats
func (h *CurbHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.curbService.Stats(c.Request.Context()))
}

func writeError(c *gin.Context, err *apperrors.AppError) {
	c.Header("X-Error-Code", err.Code)
	c.AbortWithStatusJSON(err.StatusCode, err)
}

