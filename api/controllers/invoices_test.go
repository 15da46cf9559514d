package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/safetyshop-backend/internal/invoice"
	pkgerrors "github.com/angelmondragon/safetyshop-backend/pkg/errors"
	"github.com/angelmondragon/safetyshop-backend/pkg/logger"
	"github.com/angelmondragon/safetyshop-backend/pkg/types"
)

type stubInvoiceService struct {
	doc      *invoice.Document
	err      error
	pdf      []byte
	filename string
	gotID    uuid.UUID
	gotOrder map[string]any
}

func (s *stubInvoiceService) Document(_ context.Context, id uuid.UUID) (*invoice.Document, error) {
	s.gotID = id
	return s.doc, s.err
}

func (s *stubInvoiceService) Preview(_ context.Context, order map[string]any) (*invoice.Document, error) {
	s.gotOrder = order
	return s.doc, s.err
}

func (s *stubInvoiceService) RenderPDF(_ context.Context, id uuid.UUID) ([]byte, string, error) {
	s.gotID = id
	return s.pdf, s.filename, s.err
}

func withOrderID(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("orderId", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func sampleDocument() *invoice.Document {
	return &invoice.Document{
		InvoiceNumber: "INV-SO-1",
		Totals:        invoice.Totals{Total: decimal.RequireFromString("908")},
	}
}

func TestInvoiceDocument_Success(t *testing.T) {
	svc := &stubInvoiceService{doc: sampleDocument()}
	id := uuid.New()

	rec := httptest.NewRecorder()
	req := withOrderID(httptest.NewRequest(http.MethodGet, "/", nil), id.String())
	InvoiceDocument(svc, logger.Nop())(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, svc.gotID)

	var body struct {
		Data struct {
			InvoiceNumber string `json:"invoice_number"`
			Totals        struct {
				Total string `json:"total"`
			} `json:"totals"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "INV-SO-1", body.Data.InvoiceNumber)
	assert.Equal(t, "908", body.Data.Totals.Total)
}

func TestInvoiceDocument_InvalidID(t *testing.T) {
	svc := &stubInvoiceService{}

	rec := httptest.NewRecorder()
	req := withOrderID(httptest.NewRequest(http.MethodGet, "/", nil), "not-a-uuid")
	InvoiceDocument(svc, logger.Nop())(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, uuid.Nil, svc.gotID)
}

func TestInvoiceDocument_NotFound(t *testing.T) {
	svc := &stubInvoiceService{err: pkgerrors.New(pkgerrors.CodeNotFound, "order not found")}

	rec := httptest.NewRecorder()
	req := withOrderID(httptest.NewRequest(http.MethodGet, "/", nil), uuid.NewString())
	InvoiceDocument(svc, logger.Nop())(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "order not found", body.Error.Message)
}

func TestInvoicePDF_StreamsAttachment(t *testing.T) {
	svc := &stubInvoiceService{pdf: []byte("%PDF-1.3 test"), filename: "invoice-INV-SO-1.pdf"}

	rec := httptest.NewRecorder()
	req := withOrderID(httptest.NewRequest(http.MethodGet, "/", nil), uuid.NewString())
	InvoicePDF(svc, logger.Nop())(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "invoice-INV-SO-1.pdf")
	assert.Equal(t, "%PDF-1.3 test", rec.Body.String())
}

func TestInvoicePDF_Timeout(t *testing.T) {
	svc := &stubInvoiceService{err: pkgerrors.New(pkgerrors.CodeTimeout, "invoice rendering timed out")}

	rec := httptest.NewRecorder()
	req := withOrderID(httptest.NewRequest(http.MethodGet, "/", nil), uuid.NewString())
	InvoicePDF(svc, logger.Nop())(rec, req)

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestInvoicePreview(t *testing.T) {
	svc := &stubInvoiceService{doc: sampleDocument()}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"order":{"orderNumber":"SO-1","total":908}}`))
	InvoicePreview(svc, logger.Nop())(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "SO-1", svc.gotOrder["orderNumber"])
	assert.Equal(t, json.Number("908"), svc.gotOrder["total"])
}

func TestInvoicePreview_MissingOrder(t *testing.T) {
	svc := &stubInvoiceService{doc: sampleDocument()}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	InvoicePreview(svc, logger.Nop())(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, svc.gotOrder)
}
