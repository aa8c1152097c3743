package translator_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/okian/pushlog/internal/domain/event"
	"github.com/okian/pushlog/internal/domain/translator"
	"github.com/smartystreets/goconvey/convey"
)

func gitHubPushPayload(commitCount int) []byte {
	commits := make([]map[string]any, 0, commitCount)
	for i := 0; i < commitCount; i++ {
		commits = append(commits, map[string]any{
			"id":        fmt.Sprintf("sha-%d", i),
			"message":   fmt.Sprintf("commit %d", i),
			"timestamp": "2016-01-01T12:00:00Z",
			"url":       fmt.Sprintf("https://github.com/acme/widget/commit/sha-%d", i),
			"author":    map[string]any{"name": "Ada", "email": "ada@example.com", "username": "ada"},
			"committer": map[string]any{"name": "Ada", "email": "ada@example.com"},
		})
	}
	payload, _ := json.Marshal(map[string]any{
		"ref":        "refs/heads/main",
		"repository": map[string]any{"id": 42, "name": "widget"},
		"commits":    commits,
	})
	return payload
}

func gitLabPushPayload() []byte {
	payload, _ := json.Marshal(map[string]any{
		"ref":     "refs/heads/feature/retry",
		"project": map[string]any{"id": 7, "name": "widget"},
		"commits": []map[string]any{
			{
				"id":        "deadbeef",
				"message":   "tighten backoff",
				"timestamp": "2016-02-02T08:30:00Z",
				"url":       "https://gitlab.com/acme/widget/commit/deadbeef",
				"author":    map[string]any{"name": "Grace", "email": "grace@example.com"},
			},
		},
	})
	return payload
}

func TestRegistry(t *testing.T) {
	convey.Convey("Given the default registry", t, func() {
		registry := translator.Default()

		convey.Convey("When a GitHub push signal arrives", func() {
			sig := translator.Signal{GitHubEvent: "push"}
			tr, err := registry.Select(sig)

			convey.Convey("Then the GitHub translator should be selected", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(tr.Name(), convey.ShouldEqual, "GitHub")
			})

			convey.Convey("And repeated selection should be stable", func() {
				for i := 0; i < 5; i++ {
					again, err := registry.Select(sig)
					convey.So(err, convey.ShouldBeNil)
					convey.So(again.Name(), convey.ShouldEqual, tr.Name())
				}
			})
		})

		convey.Convey("When a GitLab push signal arrives", func() {
			tr, err := registry.Select(translator.Signal{GitLabEvent: "Push Hook"})

			convey.Convey("Then the GitLab translator should be selected", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(tr.Name(), convey.ShouldEqual, "GitLab")
			})
		})

		convey.Convey("When no provider header is recognized", func() {
			_, err := registry.Select(translator.Signal{GitHubEvent: "issues"})

			convey.Convey("Then selection should fail with ErrUnsupportedProvider", func() {
				convey.So(errors.Is(err, translator.ErrUnsupportedProvider), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the signal is empty", func() {
			sig := translator.Signal{}

			convey.Convey("Then no header and no ping should be detected", func() {
				convey.So(sig.HasProviderHeader(), convey.ShouldBeFalse)
				convey.So(sig.IsPing(), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When a GitHub ping arrives", func() {
			sig := translator.Signal{GitHubEvent: "ping"}

			convey.Convey("Then it should be flagged as a ping, not a push", func() {
				convey.So(sig.IsPing(), convey.ShouldBeTrue)
				_, err := registry.Select(sig)
				convey.So(errors.Is(err, translator.ErrUnsupportedProvider), convey.ShouldBeTrue)
			})
		})
	})
}

func TestGitHubTranslatePush(t *testing.T) {
	convey.Convey("Given the GitHub translator", t, func() {
		gh := translator.NewGitHub()
		digestID := uuid.NewString()
		inboxID := uuid.NewString()

		convey.Convey("When translating a push with three commits", func() {
			events, err := gh.TranslatePush(gitHubPushPayload(3), "default", digestID, inboxID)

			convey.Convey("Then exactly three events should be produced", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(events), convey.ShouldEqual, 3)
			})

			convey.Convey("And every event should carry a distinct id and the owning digest", func() {
				seen := make(map[string]bool, len(events))
				for _, ev := range events {
					convey.So(ev.EventType, convey.ShouldEqual, event.TypeGitHubCommitReceived)
					convey.So(uuid.Validate(ev.EventID), convey.ShouldBeNil)
					convey.So(seen[ev.EventID], convey.ShouldBeFalse)
					seen[ev.EventID] = true
					convey.So(ev.Metadata.DigestID, convey.ShouldEqual, digestID)
				}
			})

			convey.Convey("And commit fields should be normalized", func() {
				data, ok := events[0].Data.(event.CommitData)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(data.Sha, convey.ShouldEqual, "sha-0")
				convey.So(data.Branch, convey.ShouldEqual, "main")
				convey.So(data.Repository, convey.ShouldResemble, event.Repository{ID: 42, Name: "widget"})
				convey.So(data.Commit.Message, convey.ShouldEqual, "commit 0")
				convey.So(data.Commit.Committer.Email, convey.ShouldEqual, "ada@example.com")
				convey.So(data.Commit.Committer.Date, convey.ShouldEqual, "2016-01-01T12:00:00Z")
				convey.So(string(data.Original), convey.ShouldContainSubstring, `"username":"ada"`)
			})
		})

		convey.Convey("When the push carries no commits", func() {
			events, err := gh.TranslatePush(gitHubPushPayload(0), "default", digestID, inboxID)

			convey.Convey("Then translation should succeed with zero events", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(events), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When the payload is missing its ref", func() {
			payload := []byte(`{"repository":{"id":1,"name":"widget"},"commits":[]}`)
			events, err := gh.TranslatePush(payload, "default", digestID, inboxID)

			convey.Convey("Then a TranslationError should wrap the payload", func() {
				convey.So(events, convey.ShouldBeNil)
				var terr *translator.TranslationError
				convey.So(errors.As(err, &terr), convey.ShouldBeTrue)
				convey.So(terr.Provider, convey.ShouldEqual, "GitHub")
				convey.So(terr.Payload, convey.ShouldResemble, payload)
			})
		})

		convey.Convey("When a commit is missing required sub-fields", func() {
			payload := []byte(`{"ref":"refs/heads/main","repository":{"id":1,"name":"widget"},"commits":[{"id":"abc"}]}`)
			events, err := gh.TranslatePush(payload, "default", digestID, inboxID)

			convey.Convey("Then no events should be emitted at all", func() {
				convey.So(events, convey.ShouldBeNil)
				var terr *translator.TranslationError
				convey.So(errors.As(err, &terr), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the payload is not JSON", func() {
			_, err := gh.TranslatePush([]byte("not json"), "default", digestID, inboxID)

			convey.Convey("Then a TranslationError should be returned", func() {
				var terr *translator.TranslationError
				convey.So(errors.As(err, &terr), convey.ShouldBeTrue)
			})
		})
	})
}

func TestGitLabTranslatePush(t *testing.T) {
	convey.Convey("Given the GitLab translator", t, func() {
		gl := translator.NewGitLab()
		digestID := uuid.NewString()

		convey.Convey("When translating a push", func() {
			events, err := gl.TranslatePush(gitLabPushPayload(), "default", digestID, uuid.NewString())

			convey.Convey("Then one GitLabCommitReceived event should be produced", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(events), convey.ShouldEqual, 1)
				convey.So(events[0].EventType, convey.ShouldEqual, event.TypeGitLabCommitReceived)

				data, ok := events[0].Data.(event.CommitData)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(data.Sha, convey.ShouldEqual, "deadbeef")
				convey.So(data.Branch, convey.ShouldEqual, "retry")
				convey.So(data.Repository, convey.ShouldResemble, event.Repository{ID: 7, Name: "widget"})
				convey.So(data.Commit.Committer.Name, convey.ShouldEqual, "Grace")
				convey.So(data.Commit.Committer.Date, convey.ShouldEqual, "2016-02-02T08:30:00Z")
			})
		})

		convey.Convey("When the project block is missing", func() {
			payload := []byte(`{"ref":"refs/heads/main","commits":[]}`)
			_, err := gl.TranslatePush(payload, "default", digestID, uuid.NewString())

			convey.Convey("Then a TranslationError should be returned", func() {
				var terr *translator.TranslationError
				convey.So(errors.As(err, &terr), convey.ShouldBeTrue)
				convey.So(terr.Provider, convey.ShouldEqual, "GitLab")
			})
		})
	})
}
