package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	fiscaldomain "github.com/fiscalware/fiscalway/internal/fiscal/domain"
)

func (s *Server) openFiscalDay(c *gin.Context) {
	deviceID, err := parseDeviceID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.fiscalSvc.OpenFiscalDay(c.Request.Context(), deviceID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) closeFiscalDay(c *gin.Context) {
	deviceID, err := parseDeviceID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.fiscalSvc.CloseFiscalDay(c.Request.Context(), deviceID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) recordFiscalCounters(c *gin.Context) {
	deviceID, err := parseDeviceID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req struct {
		FiscalDayNo int64                  `json:"fiscal_day_no"`
		Counters    []fiscaldomain.Counter `json:"counters"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.fiscalSvc.RecordCounters(c.Request.Context(), deviceID, req.FiscalDayNo, req.Counters); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"recorded": len(req.Counters)}})
}

func (s *Server) getFiscalCounters(c *gin.Context) {
	deviceID, err := parseDeviceID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var fiscalDayNo int64
	if raw := strings.TrimSpace(c.Query("fiscal_day_no")); raw != "" {
		fiscalDayNo, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || fiscalDayNo <= 0 {
			AbortWithError(c, newValidationError("fiscal_day_no", "invalid_fiscal_day_no", "invalid fiscal_day_no"))
			return
		}
	}

	counters, err := s.fiscalSvc.GetFiscalCounters(c.Request.Context(), deviceID, fiscalDayNo)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": counters})
}

func (s *Server) listDaySignatures(c *gin.Context) {
	deviceID, err := parseDeviceID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	signatures, err := s.fiscalSvc.ListDaySignatures(c.Request.Context(), deviceID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": signatures})
}
