// Package pantry implements the owner-scoped pantry operations and the live
// list snapshots built on top of them.
package pantry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/erazemk/pantrypal/internal/live"
	"github.com/erazemk/pantrypal/internal/model"
	"github.com/erazemk/pantrypal/internal/store"
	"github.com/erazemk/pantrypal/internal/validate"
)

const instrumentationName = "github.com/erazemk/pantrypal/internal/pantry"

var (
	// ErrNotFound is returned when no item matches for the owner.
	ErrNotFound = errors.New("item not found")
	// ErrInvalidQuantity wraps the reason a quantity was rejected.
	ErrInvalidQuantity = errors.New("invalid quantity")
)

// Service performs pantry operations for a single owner at a time and
// announces every change through a notifier.
type Service struct {
	db       *sql.DB
	notifier live.Notifier
	now      func() time.Time
	loc      *time.Location

	tracer        trace.Tracer
	itemsCreated  metric.Int64Counter
	itemsDeleted  metric.Int64Counter
	quantityEdits metric.Int64Counter
	liveSubs      metric.Int64UpDownCounter
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the function used to read the current time.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the time zone that decides which calendar day "today" is.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

// NewService creates a pantry service.
func NewService(db *sql.DB, notifier live.Notifier, opts ...Option) *Service {
	s := &Service{
		db:       db,
		notifier: notifier,
		now:      time.Now,
		loc:      time.Local,
		tracer:   otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(s)
	}

	meter := otel.Meter(instrumentationName)
	s.itemsCreated, _ = meter.Int64Counter("pantry.items.created",
		metric.WithDescription("Pantry items added"))
	s.itemsDeleted, _ = meter.Int64Counter("pantry.items.deleted",
		metric.WithDescription("Pantry items removed"))
	s.quantityEdits, _ = meter.Int64Counter("pantry.quantity.updates",
		metric.WithDescription("Quantity updates"))
	s.liveSubs, _ = meter.Int64UpDownCounter("pantry.live.subscriptions",
		metric.WithDescription("Open live list subscriptions"))

	return s
}

// Today returns the current calendar date in the service's time zone.
func (s *Service) Today() model.Date {
	return model.Today(s.now(), s.loc)
}

func (s *Service) start(ctx context.Context, op, ownerID string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "pantry."+op,
		trace.WithAttributes(attribute.String("pantry.owner_id", ownerID)))
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// changed announces a change for ownerID. The mutation has already
// succeeded, so a failed announcement is only logged.
func (s *Service) changed(ctx context.Context, ownerID string) {
	if err := s.notifier.Publish(ctx, ownerID); err != nil {
		slog.Error("publishing pantry change", "owner", ownerID, "error", err)
	}
}

// Create adds an item and returns it with its assigned id.
func (s *Service) Create(ctx context.Context, item model.Item) (*model.Item, error) {
	ctx, span := s.start(ctx, "Create", item.OwnerID)
	defer span.End()

	if err := validate.Quantity(item.Quantity, item.Unit); err != nil {
		return nil, fail(span, fmt.Errorf("%w: %w", ErrInvalidQuantity, err))
	}

	created, err := store.CreateItem(ctx, s.db, item)
	if err != nil {
		return nil, fail(span, err)
	}

	s.itemsCreated.Add(ctx, 1)
	s.changed(ctx, item.OwnerID)
	return created, nil
}

// Get returns a single item of the owner.
func (s *Service) Get(ctx context.Context, ownerID, id string) (*model.Item, error) {
	item, err := store.GetItem(ctx, s.db, ownerID, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	return item, nil
}

// DeleteByID removes the owner's item with the given id and returns its
// name.
func (s *Service) DeleteByID(ctx context.Context, ownerID, id string) (string, error) {
	ctx, span := s.start(ctx, "DeleteByID", ownerID)
	defer span.End()

	name, err := store.DeleteItem(ctx, s.db, ownerID, id)
	if err != nil {
		return "", fail(span, err)
	}
	if name == "" {
		return "", ErrNotFound
	}

	s.itemsDeleted.Add(ctx, 1)
	s.changed(ctx, ownerID)
	return name, nil
}

// DeleteByName removes the owner's oldest item with exactly this name.
func (s *Service) DeleteByName(ctx context.Context, ownerID, name string) error {
	ctx, span := s.start(ctx, "DeleteByName", ownerID)
	defer span.End()

	id, err := store.DeleteItemByName(ctx, s.db, ownerID, name)
	if err != nil {
		return fail(span, err)
	}
	if id == "" {
		return ErrNotFound
	}

	s.itemsDeleted.Add(ctx, 1)
	s.changed(ctx, ownerID)
	return nil
}

// UpdateQuantity sets a new quantity on the owner's item. The value must be
// positive, and whole when the item is counted in pieces.
func (s *Service) UpdateQuantity(ctx context.Context, ownerID, id string, quantity float64) error {
	ctx, span := s.start(ctx, "UpdateQuantity", ownerID)
	defer span.End()

	item, err := store.GetItem(ctx, s.db, ownerID, id)
	if err != nil {
		return fail(span, err)
	}
	if item == nil {
		return ErrNotFound
	}
	if err := validate.Quantity(quantity, item.Unit); err != nil {
		return fail(span, fmt.Errorf("%w: %w", ErrInvalidQuantity, err))
	}

	ok, err := store.UpdateItemQuantity(ctx, s.db, ownerID, id, quantity)
	if err != nil {
		return fail(span, err)
	}
	if !ok {
		return ErrNotFound
	}

	s.quantityEdits.Add(ctx, 1)
	s.changed(ctx, ownerID)
	return nil
}

// SetImage stores a photo for the owner's item.
func (s *Service) SetImage(ctx context.Context, ownerID, id string, image []byte, mime string) error {
	ctx, span := s.start(ctx, "SetImage", ownerID)
	defer span.End()

	ok, err := store.SetItemImage(ctx, s.db, ownerID, id, image, mime)
	if err != nil {
		return fail(span, err)
	}
	if !ok {
		return ErrNotFound
	}

	s.changed(ctx, ownerID)
	return nil
}

// Image returns the photo of the owner's item. An item without a photo
// returns nil data and no error.
func (s *Service) Image(ctx context.Context, ownerID, id string) ([]byte, string, error) {
	item, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, "", err
	}
	if item.ImageMime == "" {
		return nil, "", nil
	}
	return store.GetItemImage(ctx, s.db, ownerID, id)
}

// List returns a sorted, classified snapshot of the owner's pantry.
func (s *Service) List(ctx context.Context, ownerID string) (*View, error) {
	ctx, span := s.start(ctx, "List", ownerID)
	defer span.End()

	items, err := store.ListItems(ctx, s.db, ownerID)
	if err != nil {
		return nil, fail(span, err)
	}
	span.SetAttributes(attribute.Int("pantry.items", len(items)))

	return NewView(items, s.Today()), nil
}

// DeleteAll removes every item of the owner and returns how many were
// removed.
func (s *Service) DeleteAll(ctx context.Context, ownerID string) (int64, error) {
	ctx, span := s.start(ctx, "DeleteAll", ownerID)
	defer span.End()

	n, err := store.DeleteItemsByOwner(ctx, s.db, ownerID)
	if err != nil {
		return 0, fail(span, err)
	}

	if n > 0 {
		s.itemsDeleted.Add(ctx, n)
		s.changed(ctx, ownerID)
	}
	return n, nil
}

// Touch announces a change for ownerID without modifying anything, so live
// lists recompute their labels.
func (s *Service) Touch(ctx context.Context, ownerID string) error {
	return s.notifier.Publish(ctx, ownerID)
}
