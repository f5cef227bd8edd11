package notify_test

import (
	"io"
	"log/slog"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/uptime-client/internal/notify"
)

type recordingSink struct {
	mutex     sync.Mutex
	shown     []string
	dismissed []string
	gate      chan struct{}
}

func (s *recordingSink) Shown(n notify.Notification) {
	s.mutex.Lock()
	s.shown = append(s.shown, n.Message)
	s.mutex.Unlock()

	if s.gate != nil {
		<-s.gate
	}
}

func (s *recordingSink) Dismissed(n notify.Notification) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.dismissed = append(s.dismissed, n.Message)
}

func (s *recordingSink) shownMessages() []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return append([]string(nil), s.shown...)
}

func (s *recordingSink) dismissedMessages() []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return append([]string(nil), s.dismissed...)
}

func messages(ns []notify.Notification) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = n.Message
	}
	return out
}

var _ = Describe("Dispatcher", func() {
	var (
		logger *slog.Logger
		sink   *recordingSink
	)

	BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		sink = &recordingSink{}
	})

	It("displays notifications in arrival order", func() {
		d := notify.New(logger, notify.WithSink(sink), notify.WithDuration(time.Minute))
		defer d.Close()

		d.Show("first", notify.KindInfo)
		d.Show("second", notify.KindSuccess)
		d.Show("third", notify.KindError)

		Eventually(sink.shownMessages).Should(Equal([]string{"first", "second", "third"}))
	})

	It("stacks active notifications with the most recent on top", func() {
		d := notify.New(logger, notify.WithDuration(time.Minute))
		defer d.Close()

		d.Show("first", notify.KindInfo)
		d.Show("second", notify.KindInfo)

		Eventually(func() []string { return messages(d.Active()) }).
			Should(Equal([]string{"second", "first"}))

		active := d.Active()
		Expect(active[0].ID).NotTo(BeEmpty())
		Expect(active[0].ID).NotTo(Equal(active[1].ID))
		Expect(active[0].Kind).To(Equal(notify.KindInfo))
	})

	It("dismisses notifications after the configured duration", func() {
		d := notify.New(logger, notify.WithSink(sink), notify.WithDuration(50*time.Millisecond))
		defer d.Close()

		d.Show("Checker created!", notify.KindSuccess)

		Eventually(d.Active).Should(HaveLen(1))
		Eventually(d.Active, time.Second).Should(BeEmpty())
		Expect(sink.dismissedMessages()).To(Equal([]string{"Checker created!"}))
	})

	It("drops notifications when the queue is full", func() {
		sink.gate = make(chan struct{})
		d := notify.New(logger, notify.WithSink(sink), notify.WithQueueSize(1), notify.WithDuration(time.Minute))

		d.Show("a", notify.KindInfo)
		Eventually(sink.shownMessages).Should(Equal([]string{"a"}))

		d.Show("b", notify.KindInfo)
		d.Show("c", notify.KindInfo)

		close(sink.gate)
		Eventually(sink.shownMessages).Should(Equal([]string{"a", "b"}))
		Consistently(sink.shownMessages, 100*time.Millisecond).Should(Equal([]string{"a", "b"}))

		d.Close()
	})

	It("dismisses everything still active on close", func() {
		d := notify.New(logger, notify.WithSink(sink), notify.WithDuration(time.Minute))

		d.Show("one", notify.KindInfo)
		d.Show("two", notify.KindInfo)
		Eventually(d.Active).Should(HaveLen(2))

		d.Close()

		Expect(d.Active()).To(BeEmpty())
		Expect(sink.dismissedMessages()).To(Equal([]string{"one", "two"}))
	})

	It("ignores Show after Close", func() {
		d := notify.New(logger, notify.WithSink(sink))
		d.Close()

		Expect(func() { d.Show("late", notify.KindError) }).NotTo(Panic())
		Expect(func() { d.Close() }).NotTo(Panic())
		Expect(sink.shownMessages()).To(BeEmpty())
	})

	It("accepts notifications from many goroutines", func() {
		d := notify.New(logger, notify.WithSink(sink), notify.WithDuration(time.Minute))

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				d.Show("hello", notify.KindInfo)
			}()
		}
		wg.Wait()

		Eventually(sink.shownMessages).Should(HaveLen(10))
		d.Close()
	})
})
