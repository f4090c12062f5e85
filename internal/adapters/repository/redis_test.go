package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/joshmont53/SwimTeamOptimizer/internal/adapters/repository"
	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/engine"
	. "github.com/smartystreets/goconvey/convey"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Skipf("Skipping test, cannot start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return mr, client
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given a redis store", t, func() {
		mr, client := newRedis(t)
		mr.FlushAll()
		store := repository.NewRedisStore(client, repository.WithKeyPrefix("test:run:"), repository.WithRedisTTL(time.Hour))

		Convey("When a finished run with a result is saved", func() {
			at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
			run := finished("r1", repository.StatusSucceeded, at)
			run.Result = &engine.Result{CompetitionType: "arena_league", Stats: engine.Stats{FilledSlots: 3}}
			So(store.Save(ctx, run), ShouldBeNil)

			Convey("Then it round-trips through JSON", func() {
				got, err := store.Get(ctx, "r1")
				So(err, ShouldBeNil)
				So(got.Status, ShouldEqual, repository.StatusSucceeded)
				So(got.FinishedAt.Equal(at), ShouldBeTrue)
				So(got.Result.Stats.FilledSlots, ShouldEqual, 3)
				So(mr.Exists("test:run:r1"), ShouldBeTrue)
				So(store.Count(ctx), ShouldEqual, 1)
			})

			Convey("Then it expires after the TTL", func() {
				So(mr.TTL("test:run:r1"), ShouldEqual, time.Hour)
				mr.FastForward(2 * time.Hour)
				_, err := store.Get(ctx, "r1")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When a pending run is saved", func() {
			So(store.Save(ctx, repository.Run{ID: "p1", Status: repository.StatusPending}), ShouldBeNil)

			Convey("Then it has no expiry", func() {
				So(mr.TTL("test:run:p1"), ShouldEqual, time.Duration(0))
			})
		})

		Convey("When an unknown run is requested", func() {
			_, err := store.Get(ctx, "missing")

			Convey("Then ErrNotFound is returned", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the stored document is corrupt", func() {
			So(mr.Set("test:run:bad", "{not json"), ShouldBeNil)
			_, err := store.Get(ctx, "bad")

			Convey("Then a decode error is returned", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeFalse)
			})
		})
	})

	Convey("Given a reachable server", t, func() {
		mr, _ := newRedis(t)

		Convey("Then DialRedis connects", func() {
			client, err := repository.DialRedis(ctx, mr.Addr(), "", 0)
			So(err, ShouldBeNil)
			So(client.Close(), ShouldBeNil)
		})
	})
}
