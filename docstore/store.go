package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pilab-dev/shadow-identity/domain"
	"github.com/pilab-dev/shadow-identity/log"
	"github.com/pilab-dev/shadow-identity/metrics"
)

const tracerName = "github.com/pilab-dev/shadow-identity/docstore"

// Option configures a Store.
type Option func(*storeOptions)

type storeOptions struct {
	logger   log.Logger
	metrics  *metrics.Recorder
	newStamp func() string
}

func WithLogger(l log.Logger) Option {
	return func(o *storeOptions) { o.logger = l }
}

func WithMetrics(r *metrics.Recorder) Option {
	return func(o *storeOptions) { o.metrics = r }
}

// WithStampGenerator replaces the random UUID concurrency stamps.
func WithStampGenerator(fn func() string) Option {
	return func(o *storeOptions) { o.newStamp = fn }
}

// Store writes documents of type D guarded by their concurrency stamp and
// answers queries against the same collection. D is a pointer type such as
// *domain.User[string].
type Store[D domain.Document[K], K comparable] struct {
	coll     Collection
	entity   string
	logger   log.Logger
	metrics  *metrics.Recorder
	newStamp func() string
	tracer   trace.Tracer
}

// NewStore creates a Store over coll. entity names the document kind in logs,
// spans and metrics.
func NewStore[D domain.Document[K], K comparable](coll Collection, entity string, opts ...Option) *Store[D, K] {
	o := storeOptions{
		logger:   log.NewNopLogger(),
		newStamp: uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[D, K]{
		coll:     coll,
		entity:   entity,
		logger:   o.logger.With(log.Fields{"entity": entity}),
		metrics:  o.metrics,
		newStamp: o.newStamp,
		tracer:   otel.Tracer(tracerName),
	}
}

// Collection returns the underlying collection.
func (s *Store[D, K]) Collection() Collection { return s.coll }

// NewStamp returns a fresh stamp from the store's generator.
func (s *Store[D, K]) NewStamp() string { return s.newStamp() }

func (s *Store[D, K]) start(ctx context.Context, op string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "docstore."+op, trace.WithAttributes(
		attribute.String("docstore.entity", s.entity),
	))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Create inserts doc unconditionally. A unique key violation is reported as a
// failed Result; any other store error is returned as is.
func (s *Store[D, K]) Create(ctx context.Context, doc D) (res domain.Result, err error) {
	ctx, span := s.start(ctx, "create")
	defer func() { endSpan(span, err) }()

	if doc.GetConcurrencyStamp() == "" {
		doc.SetConcurrencyStamp(s.newStamp())
	}
	if err = s.coll.InsertOne(ctx, doc); err != nil {
		if errors.Is(err, ErrDuplicateKey) {
			s.metrics.Write(s.entity, "create", metrics.OutcomeDuplicate)
			s.logger.Warn(ctx, "Document already exists", log.Fields{"id": fmt.Sprint(doc.GetID())})
			return domain.DuplicateKey(err.Error()), nil
		}
		s.metrics.Write(s.entity, "create", metrics.OutcomeError)
		s.logger.Error(ctx, "Error inserting document", err, log.Fields{"id": fmt.Sprint(doc.GetID())})
		return domain.Result{}, err
	}
	s.metrics.Write(s.entity, "create", metrics.OutcomeSuccess)
	s.logger.Debug(ctx, "Document created", log.Fields{"id": fmt.Sprint(doc.GetID())})
	return domain.Success(), nil
}

// casFilter matches the stored document only while it still carries stamp.
func casFilter(id any, stamp string) bson.D {
	return And(ByID(id), Eq(FieldConcurrencyStamp, stamp))
}

// Update replaces the stored document if its stamp still equals the one doc was
// loaded with. doc receives a new stamp before the write; on a concurrency
// failure that stamp is not rolled back and the caller has to reload.
func (s *Store[D, K]) Update(ctx context.Context, doc D) (res domain.Result, err error) {
	ctx, span := s.start(ctx, "update")
	defer func() { endSpan(span, err) }()

	oldStamp := doc.GetConcurrencyStamp()
	doc.SetConcurrencyStamp(s.newStamp())

	modified, err := s.coll.ReplaceOne(ctx, casFilter(doc.GetID(), oldStamp), doc)
	if err != nil {
		s.metrics.Write(s.entity, "update", metrics.OutcomeError)
		s.logger.Error(ctx, "Error replacing document", err, log.Fields{"id": fmt.Sprint(doc.GetID())})
		return domain.Result{}, err
	}
	return s.casOutcome(ctx, "update", doc.GetID(), modified), nil
}

// Delete removes the stored document under the same stamp precondition as Update.
func (s *Store[D, K]) Delete(ctx context.Context, doc D) (res domain.Result, err error) {
	ctx, span := s.start(ctx, "delete")
	defer func() { endSpan(span, err) }()

	oldStamp := doc.GetConcurrencyStamp()
	doc.SetConcurrencyStamp(s.newStamp())

	deleted, err := s.coll.DeleteOne(ctx, casFilter(doc.GetID(), oldStamp))
	if err != nil {
		s.metrics.Write(s.entity, "delete", metrics.OutcomeError)
		s.logger.Error(ctx, "Error deleting document", err, log.Fields{"id": fmt.Sprint(doc.GetID())})
		return domain.Result{}, err
	}
	return s.casOutcome(ctx, "delete", doc.GetID(), deleted), nil
}

func (s *Store[D, K]) casOutcome(ctx context.Context, op string, id K, affected int64) domain.Result {
	if affected == 0 {
		s.metrics.Write(s.entity, op, metrics.OutcomeConcurrencyFailure)
		s.logger.Warn(ctx, "Concurrency stamp mismatch", log.Fields{"id": fmt.Sprint(id), "op": op})
		return domain.ConcurrencyFailure()
	}
	s.metrics.Write(s.entity, op, metrics.OutcomeSuccess)
	s.logger.Debug(ctx, "Document written", log.Fields{"id": fmt.Sprint(id), "op": op})
	return domain.Success()
}

// UpdateField overwrites one field of the stored document, filtered by id only.
// There is no stamp precondition and the stamp is left untouched, so two
// concurrent writers of the same field resolve as last write wins.
func (s *Store[D, K]) UpdateField(ctx context.Context, doc D, field string, value any) (ok bool, err error) {
	ctx, span := s.start(ctx, "update_field")
	span.SetAttributes(attribute.String("docstore.field", field))
	defer func() { endSpan(span, err) }()

	ok, err = s.coll.UpdateField(ctx, doc.GetID(), field, value)
	if err != nil {
		s.logger.Error(ctx, "Error updating document field", err, log.Fields{"id": fmt.Sprint(doc.GetID()), "field": field})
		return false, err
	}
	s.metrics.FieldWrite(s.entity, field)
	if !ok {
		s.logger.Warn(ctx, "Field update matched no document", log.Fields{"id": fmt.Sprint(doc.GetID()), "field": field})
	}
	return ok, nil
}

// Drop removes the whole collection.
func (s *Store[D, K]) Drop(ctx context.Context) error {
	return s.coll.Drop(ctx)
}
