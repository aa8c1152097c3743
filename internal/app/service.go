// Package service provides the ingestion orchestrator that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/okian/pushlog/internal/adapters/eventstore"
	"github.com/okian/pushlog/internal/domain/event"
	"github.com/okian/pushlog/internal/domain/translator"
	"github.com/okian/pushlog/pkg/logger"
	"github.com/okian/pushlog/pkg/metrics"
)

// Stream and projection names. Partition keys are always
// "<projection>-<uuid>".
const (
	digestStream         = "digests"
	digestProjection     = "digest"
	inboxProjection      = "inbox"
	inboxListProjection  = "inboxes-for-digest"
	inboxListPartitionID = "digestInbox"
)

// stalenessPollInterval spaces projection re-reads inside the staleness
// window.
const stalenessPollInterval = 100 * time.Millisecond

// Store abstracts the two event store calls the orchestrator makes.
type Store interface {
	// AppendToStream appends events to the named stream as one batch.
	AppendToStream(ctx context.Context, stream string, events []event.Event) error

	// PartitionState reads materialized projection state for a partition.
	PartitionState(ctx context.Context, projection, partition string) ([]byte, error)
}

// Digest is the materialized read state of a digest.
type Digest struct {
	DigestID    string `json:"digestId"`
	Description string `json:"description"`
}

// Inbox is the materialized read state of an inbox.
type Inbox struct {
	InboxID  string `json:"inboxId"`
	DigestID string `json:"digestId"`
	Family   string `json:"family"`
	Name     string `json:"name"`
	URL      string `json:"url,omitempty"`
}

// InboxInput carries the client-supplied fields of an inbox to create.
type InboxInput struct {
	Family string
	Name   string
	URL    string
}

// InboxList is the materialized set of inboxes owned by one digest.
type InboxList struct {
	DigestID string           `json:"digestId"`
	Inboxes  map[string]Inbox `json:"inboxes"`
}

// CommitAck acknowledges an ingested webhook. The referenced digest will
// reflect the write only after the projection catches up; callers must not
// read their own write synchronously.
type CommitAck struct {
	InboxID    string
	DigestID   string
	EventCount int
	Ping       bool
}

// Service orchestrates webhook ingestion. It holds no cross-request state;
// all coordination state lives in the external store.
type Service struct {
	store           Store
	registry        *translator.Registry
	instanceID      string
	stalenessWindow time.Duration
	retryMax        int
	retryBase       time.Duration
	logger          logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the event store client.
func WithStore(store Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithRegistry sets the translator registry.
func WithRegistry(r *translator.Registry) Option {
	return func(s *Service) {
		if r != nil {
			s.registry = r
		}
	}
}

// WithInstanceID scopes the inbox stream for this deployment.
func WithInstanceID(id string) Option {
	return func(s *Service) {
		if id != "" {
			s.instanceID = id
		}
	}
}

// WithStalenessWindow bounds how long a just-created digest may stay
// invisible in its projection before inbox creation gives up on it.
func WithStalenessWindow(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.stalenessWindow = d
		}
	}
}

// WithRetryPolicy tunes the bounded backoff applied to transient appends.
func WithRetryPolicy(max int, base time.Duration) Option {
	return func(s *Service) {
		if max >= 0 {
			s.retryMax = max
		}
		if base > 0 {
			s.retryBase = base
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		registry:        translator.Default(),
		instanceID:      "default",
		stalenessWindow: time.Second,
		retryMax:        3,
		retryBase:       100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// CreateDigest validates the description, appends a DigestAdded event and
// acknowledges without waiting for the read side to materialize.
func (s *Service) CreateDigest(ctx context.Context, description *string) (Digest, error) {
	ev, err := event.NewDigestAdded(description)
	if err != nil {
		return Digest{}, err
	}
	if err := s.append(ctx, digestStream, []event.Event{ev}); err != nil {
		return Digest{}, err
	}
	data := ev.Data.(event.DigestData)
	s.logger.Info(ctx, "digest created", logger.String("digestId", data.DigestID))
	return Digest{DigestID: data.DigestID, Description: data.Description}, nil
}

// GetDigest reads the materialized digest state.
func (s *Service) GetDigest(ctx context.Context, digestID string) (Digest, error) {
	if uuid.Validate(digestID) != nil {
		return Digest{}, &InvalidIdentifierError{Kind: "digest", Value: digestID}
	}
	body, err := s.store.PartitionState(ctx, digestProjection, partitionKey(digestProjection, digestID))
	if errors.Is(err, eventstore.ErrNotFound) {
		return Digest{}, &UnknownEntityError{Kind: "digest", ID: digestID}
	}
	if err != nil {
		return Digest{}, err
	}
	var d Digest
	if err := json.Unmarshal(body, &d); err != nil {
		return Digest{}, fmt.Errorf("decode digest state: %w", err)
	}
	return d, nil
}

// CreateInbox validates the inbox, verifies its digest exists (tolerating
// projection staleness) and appends an InboxAdded event to the
// instance-scoped inbox stream.
func (s *Service) CreateInbox(ctx context.Context, digestID string, in InboxInput) (Inbox, error) {
	ev, err := event.NewInboxAdded(digestID, in.Family, in.Name, in.URL)
	if err != nil {
		return Inbox{}, err
	}
	if err := s.awaitDigest(ctx, digestID); err != nil {
		return Inbox{}, err
	}
	if err := s.append(ctx, "inboxes-"+s.instanceID, []event.Event{ev}); err != nil {
		return Inbox{}, err
	}
	data := ev.Data.(event.InboxData)
	s.logger.Info(ctx, "inbox created",
		logger.String("inboxId", data.InboxID),
		logger.String("digestId", data.DigestID),
		logger.String("family", data.Family),
	)
	return Inbox{
		InboxID:  data.InboxID,
		DigestID: data.DigestID,
		Family:   data.Family,
		Name:     data.Name,
		URL:      data.URL,
	}, nil
}

// GetInbox reads the materialized inbox state.
func (s *Service) GetInbox(ctx context.Context, inboxID string) (Inbox, error) {
	if uuid.Validate(inboxID) != nil {
		return Inbox{}, &InvalidIdentifierError{Kind: "inbox", Value: inboxID}
	}
	body, err := s.store.PartitionState(ctx, inboxProjection, partitionKey(inboxProjection, inboxID))
	if errors.Is(err, eventstore.ErrNotFound) {
		return Inbox{}, &UnknownEntityError{Kind: "inbox", ID: inboxID}
	}
	if err != nil {
		return Inbox{}, err
	}
	var in Inbox
	if err := json.Unmarshal(body, &in); err != nil {
		return Inbox{}, fmt.Errorf("decode inbox state: %w", err)
	}
	return in, nil
}

// ListInboxes reads the materialized set of inboxes for a digest.
func (s *Service) ListInboxes(ctx context.Context, digestID string) (InboxList, error) {
	if uuid.Validate(digestID) != nil {
		return InboxList{}, &InvalidIdentifierError{Kind: "digest", Value: digestID}
	}
	body, err := s.store.PartitionState(ctx, inboxListProjection, partitionKey(inboxListPartitionID, digestID))
	if errors.Is(err, eventstore.ErrNotFound) {
		return InboxList{}, &UnknownEntityError{Kind: "digest", ID: digestID}
	}
	if err != nil {
		return InboxList{}, err
	}
	list := InboxList{DigestID: digestID}
	if err := json.Unmarshal(body, &list); err != nil {
		return InboxList{}, fmt.Errorf("decode inbox list state: %w", err)
	}
	return list, nil
}

// IngestCommits runs the webhook pipeline for one inbound request:
// validate -> resolve inbox context -> select translator -> translate ->
// append -> acknowledge. A provider ping short-circuits before any store
// or translator interaction.
func (s *Service) IngestCommits(ctx context.Context, inboxID string, sig translator.Signal, payload []byte) (CommitAck, error) {
	if uuid.Validate(inboxID) != nil {
		return CommitAck{}, &InvalidIdentifierError{Kind: "inbox", Value: inboxID}
	}

	if sig.IsPing() {
		metrics.RecordWebhookPing()
		return CommitAck{InboxID: inboxID, Ping: true}, nil
	}
	if !sig.HasProviderHeader() {
		return CommitAck{}, ErrMissingEventTypeHeader
	}

	// Resolve inbox context. Unlike the digest check at inbox-creation
	// time, a missing inbox here is a hard client error: the inbox must
	// have been created in an earlier request, outside any staleness
	// window this request participates in.
	body, err := s.store.PartitionState(ctx, inboxProjection, partitionKey(inboxProjection, inboxID))
	if errors.Is(err, eventstore.ErrNotFound) {
		return CommitAck{}, &UnknownEntityError{Kind: "inbox", ID: inboxID}
	}
	if err != nil {
		return CommitAck{}, err
	}
	var inbox Inbox
	if err := json.Unmarshal(body, &inbox); err != nil {
		return CommitAck{}, fmt.Errorf("decode inbox state: %w", err)
	}

	tr, err := s.registry.Select(sig)
	if err != nil {
		return CommitAck{}, err
	}
	metrics.RecordWebhookReceived(tr.Name())

	events, err := tr.TranslatePush(payload, s.instanceID, inbox.DigestID, inboxID)
	if err != nil {
		var terr *translator.TranslationError
		if errors.As(err, &terr) {
			metrics.RecordTranslationError(terr.Provider)
			s.logger.Warn(ctx, "translation failed",
				logger.String("provider", terr.Provider),
				logger.String("inboxId", inboxID),
				logger.Int("payloadBytes", len(terr.Payload)),
				logger.Error(terr.Err),
			)
		}
		return CommitAck{}, err
	}

	ack := CommitAck{InboxID: inboxID, DigestID: inbox.DigestID, EventCount: len(events)}
	if len(events) == 0 {
		// A push with no commits is valid; there is nothing to append.
		return ack, nil
	}
	if err := s.append(ctx, "inboxCommits-"+inboxID, events); err != nil {
		return CommitAck{}, err
	}
	s.logger.Info(ctx, "commits ingested",
		logger.String("inboxId", inboxID),
		logger.String("digestId", inbox.DigestID),
		logger.Int("events", len(events)),
	)
	return ack, nil
}

// append writes a batch with bounded exponential backoff on transient
// store failures. Fatal rejections surface immediately.
func (s *Service) append(ctx context.Context, stream string, events []event.Event) error {
	err := eventstore.Retry(ctx, s.retryMax, s.retryBase, func(ctx context.Context) error {
		return s.store.AppendToStream(ctx, stream, events)
	})
	if err != nil {
		s.logger.Error(ctx, "append failed",
			logger.String("stream", stream),
			logger.Int("events", len(events)),
			logger.Error(err),
		)
		return err
	}
	metrics.RecordEventsAppended(len(events))
	return nil
}

// awaitDigest verifies a digest exists, tolerating projection staleness: a
// digest created moments ago may not be materialized yet, so NotFound is
// re-read until the staleness window expires.
func (s *Service) awaitDigest(ctx context.Context, digestID string) error {
	deadline := time.Now().Add(s.stalenessWindow)
	for {
		_, err := s.store.PartitionState(ctx, digestProjection, partitionKey(digestProjection, digestID))
		if err == nil {
			return nil
		}
		if !errors.Is(err, eventstore.ErrNotFound) {
			return err
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return &UnknownEntityError{Kind: "digest", ID: digestID}
		}
		wait := stalenessPollInterval
		if wait > remaining {
			wait = remaining
		}
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return &UnknownEntityError{Kind: "digest", ID: digestID}
		}
	}
}

func partitionKey(projection, id string) string {
	return projection + "-" + id
}
