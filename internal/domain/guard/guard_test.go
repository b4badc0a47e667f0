package guard_test

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	guard "github.com/okian/tourintel/internal/domain/guard"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryGuard(t *testing.T) {
	Convey("Given a new in-memory guard", t, func() {
		Convey("When creating a guard with default options", func() {
			g := guard.NewInMemoryGuard()

			Convey("Then it should start empty", func() {
				So(g, ShouldNotBeNil)
				So(g.InFlight(), ShouldEqual, 0)
			})
		})

		Convey("When acquiring a key", func() {
			g := guard.NewInMemoryGuard()

			Convey("And the key is free", func() {
				acquired := g.TryAcquire("intel:bts:NA")

				Convey("Then it should acquire and count it", func() {
					So(acquired, ShouldBeTrue)
					So(g.InFlight(), ShouldEqual, 1)
				})
			})

			Convey("And the key is already held", func() {
				g.TryAcquire("intel:bts:NA")
				acquired := g.TryAcquire("intel:bts:NA")

				Convey("Then the second acquire should fail", func() {
					So(acquired, ShouldBeFalse)
					So(g.InFlight(), ShouldEqual, 1)
				})
			})

			Convey("And multiple distinct keys are acquired", func() {
				keys := []string{"intel:a:NA", "intel:b:NA", "intel:c:US"}

				for _, key := range keys {
					So(g.TryAcquire(key), ShouldBeTrue)
				}

				Convey("Then all keys should be held independently", func() {
					So(g.InFlight(), ShouldEqual, len(keys))
				})
			})
		})

		Convey("When releasing a key", func() {
			g := guard.NewInMemoryGuard()

			Convey("And the key is held", func() {
				g.TryAcquire("intel:bts:NA")
				g.Release("intel:bts:NA")

				Convey("Then it should be acquirable again", func() {
					So(g.InFlight(), ShouldEqual, 0)
					So(g.TryAcquire("intel:bts:NA"), ShouldBeTrue)
				})
			})

			Convey("And the key is not held", func() {
				g.Release("never-acquired")

				Convey("Then the release should be a no-op", func() {
					So(g.InFlight(), ShouldEqual, 0)
				})
			})

			Convey("And the same key is released twice", func() {
				g.TryAcquire("intel:bts:NA")
				g.Release("intel:bts:NA")
				g.Release("intel:bts:NA")

				Convey("Then the count should not go negative", func() {
					So(g.InFlight(), ShouldEqual, 0)
				})
			})
		})

		Convey("When the guard has a max in-flight cap", func() {
			g := guard.NewInMemoryGuard(guard.WithMaxInFlight(2))

			Convey("And the cap is reached", func() {
				So(g.TryAcquire("key-1"), ShouldBeTrue)
				So(g.TryAcquire("key-2"), ShouldBeTrue)
				acquired := g.TryAcquire("key-3")

				Convey("Then further acquires should fail until a release", func() {
					So(acquired, ShouldBeFalse)
					So(g.InFlight(), ShouldEqual, 2)

					g.Release("key-1")
					So(g.TryAcquire("key-3"), ShouldBeTrue)
				})
			})
		})
	})
}

func TestInMemoryGuardConcurrency(t *testing.T) {
	Convey("Given concurrent acquirers of one key", t, func() {
		g := guard.NewInMemoryGuard()

		const goroutines = 64
		var winners atomic.Int64
		var wg sync.WaitGroup

		wg.Add(goroutines)
		for i := 0; i < goroutines; i++ {
			go func() {
				defer wg.Done()
				if g.TryAcquire("intel:contested:NA") {
					winners.Add(1)
				}
			}()
		}
		wg.Wait()

		Convey("Then exactly one goroutine should win", func() {
			So(winners.Load(), ShouldEqual, 1)
			So(g.InFlight(), ShouldEqual, 1)
		})
	})

	Convey("Given concurrent acquirers of distinct keys", t, func() {
		g := guard.NewInMemoryGuard()

		const goroutines = 32
		var wg sync.WaitGroup

		wg.Add(goroutines)
		for i := 0; i < goroutines; i++ {
			go func(n int) {
				defer wg.Done()
				key := fmt.Sprintf("intel:artist-%d:NA", n)
				if g.TryAcquire(key) {
					g.Release(key)
					g.TryAcquire(key)
				}
			}(i)
		}
		wg.Wait()

		Convey("Then every key should be held exactly once", func() {
			So(g.InFlight(), ShouldEqual, goroutines)
		})
	})
}
