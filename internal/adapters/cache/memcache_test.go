package cache_test

import (
	"context"
	"sync"
	"testing"
	"time"

	cache "github.com/okian/matchbox/internal/adapters/cache"
	model "github.com/okian/matchbox/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemCacheGetSet(t *testing.T) {
	Convey("Given a TTL cache", t, func() {
		ctx := context.Background()
		c := cache.NewMemCache(cache.WithTTL(time.Minute))
		defer c.Stop()

		key := model.EdgeID("a", "b", "p1")
		m := model.Match{EdgeID: key, Score: 0.7}

		Convey("When a match is cached", func() {
			c.Set(ctx, key, m)

			Convey("Then it is returned on lookup", func() {
				got, ok := c.Get(ctx, key)
				So(ok, ShouldBeTrue)
				So(got.Score, ShouldEqual, 0.7)
			})

			Convey("Then a different profile id misses", func() {
				_, ok := c.Get(ctx, model.EdgeID("a", "b", "p2"))
				So(ok, ShouldBeFalse)
			})

			Convey("Then Clear flushes everything", func() {
				c.Clear(ctx)
				_, ok := c.Get(ctx, key)
				So(ok, ShouldBeFalse)
				So(c.Len(ctx), ShouldEqual, 0)
			})
		})

		Convey("When looking up an unknown key", func() {
			_, ok := c.Get(ctx, "nope")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestMemCacheExpiry(t *testing.T) {
	Convey("Given a cache with a controllable clock", t, func() {
		ctx := context.Background()

		var mu sync.Mutex
		current := time.Now()
		clock := func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return current
		}
		advance := func(d time.Duration) {
			mu.Lock()
			current = current.Add(d)
			mu.Unlock()
		}

		c := cache.NewMemCache(
			cache.WithTTL(time.Minute),
			cache.WithJanitorInterval(time.Hour), // keep eviction lazy for the test
			cache.WithClock(clock),
		)
		defer c.Stop()

		key := model.EdgeID("a", "b", "p1")
		c.Set(ctx, key, model.Match{EdgeID: key, Score: 0.5})

		Convey("When the TTL has not elapsed", func() {
			advance(30 * time.Second)
			_, ok := c.Get(ctx, key)
			So(ok, ShouldBeTrue)
		})

		Convey("When the TTL has elapsed", func() {
			advance(2 * time.Minute)

			Convey("Then the entry is treated as a miss", func() {
				_, ok := c.Get(ctx, key)
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestMemCacheConcurrency(t *testing.T) {
	Convey("Given concurrent readers and writers", t, func() {
		ctx := context.Background()
		c := cache.NewMemCache(cache.WithShardCount(8))
		defer c.Stop()

		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					key := model.EdgeID("a", "b", string(rune('a'+n)))
					c.Set(ctx, key, model.Match{EdgeID: key})
					c.Get(ctx, key)
				}
			}(i)
		}
		wg.Wait()

		Convey("Then the cache holds one entry per distinct key", func() {
			So(c.Len(ctx), ShouldEqual, 16)
		})
	})
}
