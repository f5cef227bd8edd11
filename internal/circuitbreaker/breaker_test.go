package circuitbreaker_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/uptime-client/internal/circuitbreaker"
)

var _ = Describe("CircuitBreaker", func() {
	var cb *circuitbreaker.CircuitBreaker

	trip := func() {
		cb.RecordFailure()
		cb.RecordFailure()
		cb.RecordFailure()
	}

	BeforeEach(func() {
		cb = circuitbreaker.NewCircuitBreaker(3, 100*time.Millisecond)
	})

	It("starts closed", func() {
		Expect(cb.State()).To(Equal(circuitbreaker.StateClosed))
		Expect(cb.Allow()).To(BeTrue())
	})

	It("treats a threshold below one as one", func() {
		cb = circuitbreaker.NewCircuitBreaker(0, time.Second)
		cb.RecordFailure()
		Expect(cb.State()).To(Equal(circuitbreaker.StateOpen))
	})

	Context("when CLOSED", func() {
		It("stays closed below the threshold", func() {
			cb.RecordFailure()
			cb.RecordFailure()
			Expect(cb.State()).To(Equal(circuitbreaker.StateClosed))
			Expect(cb.Allow()).To(BeTrue())
		})

		It("opens at the threshold", func() {
			trip()
			Expect(cb.State()).To(Equal(circuitbreaker.StateOpen))
		})

		It("forgets failures after a success", func() {
			cb.RecordFailure()
			cb.RecordFailure()
			cb.RecordSuccess()
			cb.RecordFailure()
			Expect(cb.State()).To(Equal(circuitbreaker.StateClosed))
		})
	})

	Context("when OPEN", func() {
		BeforeEach(trip)

		It("fails fast before the reset timeout", func() {
			Expect(cb.Allow()).To(BeFalse())
			Expect(cb.State()).To(Equal(circuitbreaker.StateOpen))
		})

		It("lets one probe through after the reset timeout", func() {
			time.Sleep(150 * time.Millisecond)
			Expect(cb.Allow()).To(BeTrue())
			Expect(cb.State()).To(Equal(circuitbreaker.StateHalfOpen))
			Expect(cb.Allow()).To(BeFalse())
		})
	})

	Context("when HALF-OPEN", func() {
		BeforeEach(func() {
			trip()
			time.Sleep(150 * time.Millisecond)
			Expect(cb.Allow()).To(BeTrue())
		})

		It("closes on success", func() {
			cb.RecordSuccess()
			Expect(cb.State()).To(Equal(circuitbreaker.StateClosed))
			Expect(cb.Allow()).To(BeTrue())
		})

		It("reopens on failure", func() {
			cb.RecordFailure()
			Expect(cb.State()).To(Equal(circuitbreaker.StateOpen))
			Expect(cb.Allow()).To(BeFalse())
		})

		It("frees the probe slot on Release", func() {
			Expect(cb.Allow()).To(BeFalse())
			cb.Release()
			Expect(cb.Allow()).To(BeTrue())
			Expect(cb.State()).To(Equal(circuitbreaker.StateHalfOpen))
		})
	})

	DescribeTable("State.String",
		func(s circuitbreaker.State, want string) {
			Expect(s.String()).To(Equal(want))
		},
		Entry("closed", circuitbreaker.StateClosed, "CLOSED"),
		Entry("open", circuitbreaker.StateOpen, "OPEN"),
		Entry("half-open", circuitbreaker.StateHalfOpen, "HALF-OPEN"),
		Entry("unknown", circuitbreaker.State(42), "UNKNOWN"),
	)
})
