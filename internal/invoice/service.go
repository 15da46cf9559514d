package invoice

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/safetyshop-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/safetyshop-backend/pkg/errors"
	"github.com/angelmondragon/safetyshop-backend/pkg/logger"
	"github.com/angelmondragon/safetyshop-backend/pkg/metrics"
)

const (
	sourceStored  = "stored"
	sourcePreview = "preview"
	sourcePDF     = "pdf"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// OrderReader loads stored orders.
type OrderReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

// Renderer turns a document into a printable byte stream.
type Renderer interface {
	Render(ctx context.Context, doc *Document) ([]byte, error)
}

// Service exposes invoice generation to transports.
type Service interface {
	Document(ctx context.Context, orderID uuid.UUID) (*Document, error)
	Preview(ctx context.Context, order map[string]any) (*Document, error)
	RenderPDF(ctx context.Context, orderID uuid.UUID) ([]byte, string, error)
}

type ServiceParams struct {
	Orders   OrderReader
	Builder  *Builder
	Renderer Renderer
	Metrics  *metrics.InvoiceMetrics
	Timeout  time.Duration
	Logger   *logger.Logger
}

type service struct {
	orders   OrderReader
	builder  *Builder
	renderer Renderer
	metrics  *metrics.InvoiceMetrics
	timeout  time.Duration
	logg     *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Builder == nil {
		return nil, fmt.Errorf("document builder required")
	}
	if params.Renderer == nil {
		return nil, fmt.Errorf("renderer required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		orders:   params.Orders,
		builder:  params.Builder,
		renderer: params.Renderer,
		metrics:  params.Metrics,
		timeout:  params.Timeout,
		logg:     params.Logger,
	}, nil
}

func (s *service) Document(ctx context.Context, orderID uuid.UUID) (*Document, error) {
	doc, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.metrics.IncDocuments(sourceStored)
	return doc, nil
}

// load builds the document for a stored order without counting it.
func (s *service) load(ctx context.Context, orderID uuid.UUID) (*Document, error) {
	ctx = s.logg.WithOrderID(ctx, orderID.String())

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	return s.builder.Build(ctx, map[string]any(order.Document),
		WithOrderNumber(order.OrderNumber),
		WithOrderID(order.ID.String()),
	)
}

func (s *service) Preview(ctx context.Context, order map[string]any) (*Document, error) {
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order is required")
	}
	doc, err := s.builder.Build(ctx, order)
	if err != nil {
		return nil, err
	}
	s.metrics.IncDocuments(sourcePreview)
	return doc, nil
}

func (s *service) RenderPDF(ctx context.Context, orderID uuid.UUID) ([]byte, string, error) {
	doc, err := s.load(ctx, orderID)
	if err != nil {
		return nil, "", err
	}
	ctx = s.logg.WithOrderID(ctx, orderID.String())

	started := time.Now()
	body, err := s.render(ctx, doc)
	s.metrics.ObserveRender(time.Since(started), err == nil)
	if err != nil {
		s.logg.Error(ctx, "invoice.render.failed", err)
		return nil, "", err
	}

	s.metrics.IncDocuments(sourcePDF)
	s.logg.Info(s.logg.WithField(ctx, "bytes", len(body)), "invoice.render.completed")
	return body, Filename(doc, orderID.String()), nil
}

// render bounds the renderer by the configured timeout. Renderer errors
// are returned as is.
func (s *service) render(ctx context.Context, doc *Document) ([]byte, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	type result struct {
		body []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("renderer panic: %v", r)}
			}
		}()
		body, err := s.renderer.Render(ctx, doc)
		done <- result{body: body, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil && errors.Is(res.err, context.DeadlineExceeded) && ctx.Err() != nil {
			return nil, timeoutError(ctx.Err())
		}
		return res.body, res.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, timeoutError(ctx.Err())
		}
		return nil, ctx.Err()
	}
}

func timeoutError(err error) error {
	return pkgerrors.Wrap(pkgerrors.CodeTimeout, err, "invoice rendering timed out")
}

// Filename is the attachment name for a rendered invoice.
func Filename(doc *Document, fallback string) string {
	name := fallback
	if doc != nil && doc.InvoiceNumber != Placeholder && doc.InvoiceNumber != "" {
		name = doc.InvoiceNumber
	}
	name = unsafeFilenameChars.ReplaceAllString(name, "-")
	if name == "" || name == "-" {
		name = "invoice"
	}
	return fmt.Sprintf("invoice-%s.pdf", name)
}
