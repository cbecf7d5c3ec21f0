package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	devicedomain "github.com/fiscalware/fiscalway/internal/device/domain"
	fiscaldomain "github.com/fiscalware/fiscalway/internal/fiscal/domain"
	receiptdomain "github.com/fiscalware/fiscalway/internal/receipt/domain"
	"github.com/fiscalware/fiscalway/pkg/tenantctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFiscalService struct {
	fiscaldomain.Service

	openCalls  int
	closeErr   error
	dayNo      int64
	lastDevice int64
}

func (f *fakeFiscalService) OpenFiscalDay(_ context.Context, deviceID int64) (*fiscaldomain.DayResponse, error) {
	f.openCalls++
	f.lastDevice = deviceID
	return &fiscaldomain.DayResponse{
		FiscalDayNo:     f.dayNo,
		FiscalDayStatus: devicedomain.FiscalDayOpened,
	}, nil
}

func (f *fakeFiscalService) CloseFiscalDay(_ context.Context, deviceID int64) (*fiscaldomain.DayResponse, error) {
	f.lastDevice = deviceID
	if f.closeErr != nil {
		return nil, f.closeErr
	}
	return &fiscaldomain.DayResponse{
		FiscalDayNo:     f.dayNo,
		FiscalDayStatus: devicedomain.FiscalDayClosed,
	}, nil
}

type fakeReceiptService struct {
	receiptdomain.Service

	submitErr error
}

func (f *fakeReceiptService) Submit(context.Context, receiptdomain.SubmitRequest) (*receiptdomain.SubmitResponse, error) {
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return &receiptdomain.SubmitResponse{ReceiptGlobalNo: 1, FiscalDayNo: 1}, nil
}

func newTestServer(fiscal fiscaldomain.Service, receipts receiptdomain.Service) *Server {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	srv := &Server{
		engine:     engine,
		fiscalSvc:  fiscal,
		receiptSvc: receipts,
	}
	srv.registerAPIRoutes()
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	srv.engine.ServeHTTP(w, req)
	return w
}

func TestOpenFiscalDayRoute(t *testing.T) {
	fiscal := &fakeFiscalService{dayNo: 7}
	srv := newTestServer(fiscal, &fakeReceiptService{})

	w := doJSON(t, srv, http.MethodPost, "/api/devices/42/fiscal/open", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, fiscal.openCalls)
	assert.Equal(t, int64(42), fiscal.lastDevice)
	assert.Contains(t, w.Body.String(), `"fiscal_day_no":7`)
}

func TestOpenFiscalDayRejectsBadDeviceID(t *testing.T) {
	srv := newTestServer(&fakeFiscalService{}, &fakeReceiptService{})

	w := doJSON(t, srv, http.MethodPost, "/api/devices/abc/fiscal/open", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation_error")
}

func TestCloseFiscalDayMapsTransitionConflict(t *testing.T) {
	fiscal := &fakeFiscalService{closeErr: fiscaldomain.ErrInvalidTransition}
	srv := newTestServer(fiscal, &fakeReceiptService{})

	w := doJSON(t, srv, http.MethodPost, "/api/devices/42/fiscal/close", nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "conflict")
}

func TestCloseFiscalDayMapsSigningFailure(t *testing.T) {
	fiscal := &fakeFiscalService{
		closeErr: fmt.Errorf("%w: key unreadable", fiscaldomain.ErrSigning),
	}
	srv := newTestServer(fiscal, &fakeReceiptService{})

	w := doJSON(t, srv, http.MethodPost, "/api/devices/42/fiscal/close", nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "fiscal_day_close_failed")
}

func TestSubmitReceiptMapsDayNotOpen(t *testing.T) {
	receipts := &fakeReceiptService{submitErr: receiptdomain.ErrDayNotOpen}
	srv := newTestServer(&fakeFiscalService{}, receipts)

	w := doJSON(t, srv, http.MethodPost, "/api/receipts/submit", map[string]any{
		"device_id": 42,
		"receipt":   map[string]any{"receipt_type": "FiscalInvoice"},
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "fiscal_day_not_open")
}

func TestSubmitReceiptRejectsMalformedBody(t *testing.T) {
	srv := newTestServer(&fakeFiscalService{}, &fakeReceiptService{})

	req := httptest.NewRequest(http.MethodPost, "/api/receipts/submit", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation_error")
}

func TestTenantMiddlewarePropagatesTaxpayerID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TenantMiddleware())

	var got int64
	var ok bool
	r.GET("/ping", func(c *gin.Context) {
		got, ok = tenantctx.TaxpayerID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(taxpayerHeader, "1234567890123456789")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.True(t, ok)
	assert.Equal(t, int64(1234567890123456789), got)
}

func TestTenantMiddlewareIgnoresMissingHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TenantMiddleware())

	var ok bool
	r.GET("/ping", func(c *gin.Context) {
		_, ok = tenantctx.TaxpayerID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.False(t, ok)
}
