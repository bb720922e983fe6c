package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/abgdnv/catalog/pkg/messaging"
	"github.com/abgdnv/catalog/pkg/messaging/events"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const instrumentationName = "github.com/abgdnv/catalog/internal/catalog"

// Service validates catalog input and delegates to a DAO.
// It holds no state of its own besides its collaborators.
type Service struct {
	dao        DAO
	logger     *slog.Logger
	tracer     trace.Tracer
	operations metric.Int64Counter
	publisher  messaging.Publisher
}

// Option configures a Service.
type Option func(*options)

type options struct {
	tp        trace.TracerProvider
	mp        metric.MeterProvider
	publisher messaging.Publisher
}

// WithTracerProvider sets the provider used to trace catalog operations.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tp = tp }
}

// WithMeterProvider sets the provider used to count catalog operations.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) { o.mp = mp }
}

// WithPublisher makes the service emit an event after every successful write.
// Publish failures are logged and do not fail the write.
func WithPublisher(p messaging.Publisher) Option {
	return func(o *options) { o.publisher = p }
}

// NewService creates a new Service backed by dao. A nil logger means slog.Default().
func NewService(dao DAO, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	o := options{
		tp: tracenoop.NewTracerProvider(),
		mp: metricnoop.NewMeterProvider(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	operations, err := o.mp.Meter(instrumentationName).Int64Counter(
		"catalog.operations",
		metric.WithDescription("Total number of catalog operations"),
	)
	if err != nil {
		logger.Warn("Unable to create operations counter", "error", err)
		operations, _ = metricnoop.NewMeterProvider().Meter(instrumentationName).Int64Counter("catalog.operations")
	}

	return &Service{
		dao:        dao,
		logger:     logger.With("component", "catalog"),
		tracer:     o.tp.Tracer(instrumentationName),
		operations: operations,
		publisher:  o.publisher,
	}
}

// ListProducts returns every product known to the DAO, in DAO order.
func (s *Service) ListProducts(ctx context.Context) ([]Product, error) {
	ctx, span := s.tracer.Start(ctx, "Service.ListProducts")
	defer span.End()

	data, err := s.dao.ListProducts(ctx)
	if err != nil {
		s.fail(ctx, span, "list", err)
		return nil, err
	}

	products := make([]Product, 0, len(data))
	for _, m := range data {
		p, err := FromMapping(m)
		if err != nil {
			s.fail(ctx, span, "list", err)
			return nil, err
		}
		products = append(products, *p)
	}

	span.SetAttributes(attribute.Int("product.count", len(products)))
	s.succeed(ctx, "list")
	s.logger.DebugContext(ctx, "Products listed", "count", len(products))
	return products, nil
}

// GetProduct returns the product stored under id.
// Returns nil without error if the DAO has no such product.
func (s *Service) GetProduct(ctx context.Context, id int64) (*Product, error) {
	ctx, span := s.tracer.Start(ctx, "Service.GetProduct")
	defer span.End()
	span.SetAttributes(attribute.Int64("product.id", id))

	data, err := s.dao.GetProduct(ctx, id)
	if err != nil {
		s.fail(ctx, span, "get", err)
		return nil, err
	}
	if len(data) == 0 {
		s.record(ctx, "get", "not_found")
		s.logger.DebugContext(ctx, "Product not found", "ID", id)
		return nil, nil
	}

	p, err := FromMapping(data)
	if err != nil {
		s.fail(ctx, span, "get", err)
		return nil, err
	}
	s.succeed(ctx, "get")
	return p, nil
}

// AddProduct validates m and stores it.
func (s *Service) AddProduct(ctx context.Context, m Mapping) error {
	ctx, span := s.tracer.Start(ctx, "Service.AddProduct")
	defer span.End()

	if err := ValidateProductData(m); err != nil {
		s.reject(ctx, span, "add", err)
		return err
	}
	if err := s.dao.AddProduct(ctx, m); err != nil {
		s.fail(ctx, span, "add", err)
		return err
	}
	s.succeed(ctx, "add")
	s.logger.DebugContext(ctx, "Product added", "ID", m[KeyID])
	s.publishAdded(ctx, []Mapping{m})
	return nil
}

// AddProducts validates every mapping of ms and, only if all of them pass,
// stores them with a single batch call.
func (s *Service) AddProducts(ctx context.Context, ms []Mapping) error {
	ctx, span := s.tracer.Start(ctx, "Service.AddProducts")
	defer span.End()
	span.SetAttributes(attribute.Int("product.count", len(ms)))

	for _, m := range ms {
		if err := ValidateProductData(m); err != nil {
			s.reject(ctx, span, "add_batch", err)
			return err
		}
	}
	if err := s.dao.AddProducts(ctx, ms); err != nil {
		s.fail(ctx, span, "add_batch", err)
		return err
	}
	s.succeed(ctx, "add_batch")
	s.logger.DebugContext(ctx, "Products added", "count", len(ms))
	s.publishAdded(ctx, ms)
	return nil
}

// UpdateQty sets the quantity of the product stored under id.
// The existence of id is left to the DAO.
func (s *Service) UpdateQty(ctx context.Context, id int64, qty int64) error {
	ctx, span := s.tracer.Start(ctx, "Service.UpdateQty")
	defer span.End()
	span.SetAttributes(attribute.Int64("product.id", id), attribute.Int64("product.qty", qty))

	if qty < 0 {
		s.reject(ctx, span, "update_qty", errNegativeQty)
		return errNegativeQty
	}
	if err := s.dao.UpdateQty(ctx, id, qty); err != nil {
		s.fail(ctx, span, "update_qty", err)
		return err
	}
	s.succeed(ctx, "update_qty")
	s.logger.DebugContext(ctx, "Quantity updated", "ID", id, "qty", qty)
	s.publish(ctx, events.ProductQtyUpdatedEvent{
		ProductID: id,
		Qty:       qty,
		UpdatedAt: time.Now().UTC(),
	})
	return nil
}

func (s *Service) publishAdded(ctx context.Context, ms []Mapping) {
	products := make([]map[string]any, len(ms))
	for i, m := range ms {
		products[i] = m
	}
	s.publish(ctx, events.ProductsAddedEvent{
		Products: products,
		AddedAt:  time.Now().UTC(),
	})
}

func (s *Service) publish(ctx context.Context, event messaging.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event", "subject", event.Subject(), "error", err)
	}
}

func (s *Service) succeed(ctx context.Context, op string) {
	s.record(ctx, op, "success")
}

func (s *Service) reject(ctx context.Context, span trace.Span, op string, err error) {
	span.SetStatus(codes.Error, "validation failed")
	s.record(ctx, op, "invalid")
	s.logger.WarnContext(ctx, "Rejected invalid input", "operation", op, "error", err)
}

func (s *Service) fail(ctx context.Context, span trace.Span, op string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.record(ctx, op, "failure")
}

func (s *Service) record(ctx context.Context, op, result string) {
	s.operations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("result", result),
	))
}
