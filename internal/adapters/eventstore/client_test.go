package eventstore_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/pushlog/internal/adapters/eventstore"
	"github.com/okian/pushlog/internal/domain/event"
	"github.com/smartystreets/goconvey/convey"
)

func testEvents() []event.Event {
	ev, _ := event.NewDigestAdded(strPtr("a digest"))
	return []event.Event{ev}
}

func strPtr(s string) *string { return &s }

func TestAppendToStream(t *testing.T) {
	convey.Convey("Given an append client", t, func() {
		ctx := context.Background()

		convey.Convey("When the store accepts the batch", func() {
			var gotPath string
			var gotBody []event.Event
			var gotUser, gotPass string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotUser, gotPass, _ = r.BasicAuth()
				_ = json.NewDecoder(r.Body).Decode(&gotBody)
				w.WriteHeader(http.StatusCreated)
			}))
			defer srv.Close()

			client := eventstore.NewClient(srv.URL, eventstore.WithBasicAuth("admin", "changeit"))
			events := testEvents()
			err := client.AppendToStream(ctx, "digests", events)

			convey.Convey("Then the batch should be posted to the stream in order", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(gotPath, convey.ShouldEqual, "/streams/digests")
				convey.So(gotUser, convey.ShouldEqual, "admin")
				convey.So(gotPass, convey.ShouldEqual, "changeit")
				convey.So(len(gotBody), convey.ShouldEqual, 1)
				convey.So(gotBody[0].EventID, convey.ShouldEqual, events[0].EventID)
				convey.So(gotBody[0].EventType, convey.ShouldEqual, event.TypeDigestAdded)
			})
		})

		convey.Convey("When the store rejects the batch with 400", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
			}))
			defer srv.Close()

			err := eventstore.NewClient(srv.URL).AppendToStream(ctx, "digests", testEvents())

			convey.Convey("Then the error should be fatal, not transient", func() {
				convey.So(errors.Is(err, eventstore.ErrFatal), convey.ShouldBeTrue)
				convey.So(errors.Is(err, eventstore.ErrTransient), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When the store answers 503", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			}))
			defer srv.Close()

			err := eventstore.NewClient(srv.URL).AppendToStream(ctx, "digests", testEvents())

			convey.Convey("Then the error should be transient", func() {
				convey.So(errors.Is(err, eventstore.ErrTransient), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the store is unreachable", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			srv.Close() // immediately, so the port refuses connections

			err := eventstore.NewClient(srv.URL).AppendToStream(ctx, "digests", testEvents())

			convey.Convey("Then the error should be transient", func() {
				convey.So(errors.Is(err, eventstore.ErrTransient), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the stream name is empty", func() {
			err := eventstore.NewClient("http://localhost:0").AppendToStream(ctx, "  ", testEvents())

			convey.Convey("Then it should fail before any network call", func() {
				convey.So(errors.Is(err, eventstore.ErrEmptyStream), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the events batch is empty", func() {
			err := eventstore.NewClient("http://localhost:0").AppendToStream(ctx, "digests", nil)

			convey.Convey("Then it should fail before any network call", func() {
				convey.So(errors.Is(err, eventstore.ErrNoEvents), convey.ShouldBeTrue)
			})
		})
	})
}

func TestPartitionState(t *testing.T) {
	convey.Convey("Given a projection reader", t, func() {
		ctx := context.Background()

		convey.Convey("When the partition is materialized", func() {
			var gotPath, gotPartition string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotPartition = r.URL.Query().Get("partition")
				w.Write([]byte(`{"digestId":"abc","description":"hello"}`))
			}))
			defer srv.Close()

			body, err := eventstore.NewClient(srv.URL).PartitionState(ctx, "digest", "digest-abc")

			convey.Convey("Then the state body should be returned verbatim", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(gotPath, convey.ShouldEqual, "/projection/digest/state")
				convey.So(gotPartition, convey.ShouldEqual, "digest-abc")
				convey.So(string(body), convey.ShouldEqual, `{"digestId":"abc","description":"hello"}`)
			})
		})

		convey.Convey("When the partition does not exist", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}))
			defer srv.Close()

			_, err := eventstore.NewClient(srv.URL).PartitionState(ctx, "digest", "digest-missing")

			convey.Convey("Then ErrNotFound should be returned", func() {
				convey.So(errors.Is(err, eventstore.ErrNotFound), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the store returns an empty body", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			defer srv.Close()

			_, err := eventstore.NewClient(srv.URL).PartitionState(ctx, "digest", "digest-empty")

			convey.Convey("Then ErrNotFound should be returned, same as a 404", func() {
				convey.So(errors.Is(err, eventstore.ErrNotFound), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the store answers 500", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}))
			defer srv.Close()

			_, err := eventstore.NewClient(srv.URL).PartitionState(ctx, "digest", "digest-x")

			convey.Convey("Then the error should be transient", func() {
				convey.So(errors.Is(err, eventstore.ErrTransient), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the call exceeds its timeout", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(200 * time.Millisecond)
			}))
			defer srv.Close()

			client := eventstore.NewClient(srv.URL, eventstore.WithTimeout(20*time.Millisecond))
			_, err := client.PartitionState(ctx, "digest", "digest-slow")

			convey.Convey("Then the timeout should classify as transient", func() {
				convey.So(errors.Is(err, eventstore.ErrTransient), convey.ShouldBeTrue)
			})
		})
	})
}

func TestRetry(t *testing.T) {
	convey.Convey("Given the retry helper", t, func() {
		ctx := context.Background()

		convey.Convey("When the first attempt succeeds", func() {
			var calls int32
			err := eventstore.Retry(ctx, 3, time.Millisecond, func(context.Context) error {
				atomic.AddInt32(&calls, 1)
				return nil
			})

			convey.Convey("Then fn should run exactly once", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(atomic.LoadInt32(&calls), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When transient failures precede a success", func() {
			var calls int32
			err := eventstore.Retry(ctx, 3, time.Millisecond, func(context.Context) error {
				if atomic.AddInt32(&calls, 1) < 3 {
					return eventstore.ErrTransient
				}
				return nil
			})

			convey.Convey("Then fn should be retried until it succeeds", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(atomic.LoadInt32(&calls), convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When every attempt fails transiently", func() {
			var calls int32
			err := eventstore.Retry(ctx, 2, time.Millisecond, func(context.Context) error {
				atomic.AddInt32(&calls, 1)
				return eventstore.ErrTransient
			})

			convey.Convey("Then the attempt budget should be honored", func() {
				convey.So(errors.Is(err, eventstore.ErrTransient), convey.ShouldBeTrue)
				convey.So(atomic.LoadInt32(&calls), convey.ShouldEqual, 3) // initial + 2 retries
			})
		})

		convey.Convey("When the failure is fatal", func() {
			var calls int32
			err := eventstore.Retry(ctx, 5, time.Millisecond, func(context.Context) error {
				atomic.AddInt32(&calls, 1)
				return eventstore.ErrFatal
			})

			convey.Convey("Then fn should never be retried", func() {
				convey.So(errors.Is(err, eventstore.ErrFatal), convey.ShouldBeTrue)
				convey.So(atomic.LoadInt32(&calls), convey.ShouldEqual, 1)
			})
		})
	})
}
