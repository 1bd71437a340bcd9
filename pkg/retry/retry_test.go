package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/timeclock/pkg/retry"
)

func TestRetry(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Retry Suite")
}

var _ = Describe("Do", func() {
	var (
		transient = errors.New("transient failure")
		permanent = errors.New("permanent failure")
		policy    retry.Policy
		ctx       context.Context
	)

	BeforeEach(func() {
		policy = retry.Policy{
			MaxRetries: 3,
			BaseDelay:  time.Millisecond,
			MaxDelay:   5 * time.Millisecond,
			IsRetryable: func(err error) bool {
				return errors.Is(err, transient)
			},
		}
		ctx = context.Background()
	})

	It("should not retry on success", func() {
		calls := 0
		err := retry.Do(ctx, policy, func(ctx context.Context) error {
			calls++
			return nil
		})

		Expect(err).ToNot(HaveOccurred())
		Expect(calls).To(Equal(1))
	})

	It("should retry transient errors until success", func() {
		calls := 0
		err := retry.Do(ctx, policy, func(ctx context.Context) error {
			calls++
			if calls < 3 {
				return transient
			}
			return nil
		})

		Expect(err).ToNot(HaveOccurred())
		Expect(calls).To(Equal(3))
	})

	It("should give up after the retry budget and return the last error", func() {
		calls := 0
		err := retry.Do(ctx, policy, func(ctx context.Context) error {
			calls++
			return transient
		})

		Expect(err).To(MatchError(transient))
		Expect(calls).To(Equal(4)) // initial attempt plus three retries
	})

	It("should fail immediately on permanent errors", func() {
		calls := 0
		err := retry.Do(ctx, policy, func(ctx context.Context) error {
			calls++
			return permanent
		})

		Expect(err).To(MatchError(permanent))
		Expect(calls).To(Equal(1))
	})

	It("should stop when the context is cancelled", func() {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		err := retry.Do(cancelled, policy, func(ctx context.Context) error {
			return transient
		})

		Expect(err).To(HaveOccurred())
	})
})
