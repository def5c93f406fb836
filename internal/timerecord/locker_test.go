package timerecord_test

import (
	"sync"
	"sync/atomic"

	"github.com/eventstaff/attendance/internal/timerecord"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("KeyedLocker", func() {
	It("should allow one holder per key", func() {
		locker := timerecord.NewKeyedLocker()
		var (
			wg      sync.WaitGroup
			active  int32
			maxSeen int32
		)
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock := locker.Lock(1, 1)
				n := atomic.AddInt32(&active, 1)
				for {
					seen := atomic.LoadInt32(&maxSeen)
					if n <= seen || atomic.CompareAndSwapInt32(&maxSeen, seen, n) {
						break
					}
				}
				atomic.AddInt32(&active, -1)
				unlock()
			}()
		}
		wg.Wait()
		Expect(maxSeen).To(Equal(int32(1)))
	})

	It("should not block different keys", func() {
		locker := timerecord.NewKeyedLocker()
		unlockA := locker.Lock(1, 1)
		unlockB := locker.Lock(1, 2)
		Expect(locker.Len()).To(Equal(2))
		unlockA()
		unlockB()
	})

	It("should forget released keys", func() {
		locker := timerecord.NewKeyedLocker()
		locker.Lock(3, 4)()
		Expect(locker.Len()).To(BeZero())
	})
})
