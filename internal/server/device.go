package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	devicedomain "github.com/fiscalware/fiscalway/internal/device/domain"
)

func parseDeviceID(c *gin.Context) (int64, error) {
	deviceID, err := strconv.ParseInt(strings.TrimSpace(c.Param("device_id")), 10, 64)
	if err != nil || deviceID <= 0 {
		return 0, newValidationError("device_id", "invalid_device_id", "invalid device_id")
	}
	return deviceID, nil
}

func (s *Server) registerDevice(c *gin.Context) {
	var req devicedomain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.deviceSvc.Register(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) listDevices(c *gin.Context) {
	var query struct {
		TaxpayerID string `form:"taxpayer_id"`
		SerialNo   string `form:"serial_no"`
		Status     string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req := devicedomain.ListRequest{
		SerialNo: strings.TrimSpace(query.SerialNo),
		Status:   devicedomain.FiscalDayStatus(strings.TrimSpace(query.Status)),
	}
	if raw := strings.TrimSpace(query.TaxpayerID); raw != "" {
		taxpayerID, err := snowflake.ParseString(raw)
		if err != nil {
			AbortWithError(c, newValidationError("taxpayer_id", "invalid_taxpayer", "invalid taxpayer_id"))
			return
		}
		req.TaxpayerID = taxpayerID
	}

	resp, err := s.deviceSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) getDevice(c *gin.Context) {
	deviceID, err := parseDeviceID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.deviceSvc.GetByDeviceID(c.Request.Context(), deviceID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) updateDeviceConfig(c *gin.Context) {
	deviceID, err := parseDeviceID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req devicedomain.UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.DeviceID = deviceID

	resp, err := s.deviceSvc.UpdateConfig(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
