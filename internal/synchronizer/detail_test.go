package synchronizer_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/uptime-client/internal/checker"
	"github.com/angeloszaimis/uptime-client/internal/synchronizer"
	"github.com/angeloszaimis/uptime-client/internal/transport"
)

var _ = Describe("CheckerDetail", func() {
	var (
		api      *fakeAPI
		notifier *recordingNotifier
		detail   *synchronizer.CheckerDetail
		logsOne  []checker.LogEntry
		logsTwo  []checker.LogEntry
	)

	BeforeEach(func() {
		api = newFakeAPI()
		notifier = &recordingNotifier{}
		logsOne = []checker.LogEntry{
			{CheckerID: 1, RequestTime: "2025-03-01T10:00:00Z", ResponseTime: 80, Status: checker.StatusOK, Site: "https://a.example"},
		}
		logsTwo = []checker.LogEntry{
			{CheckerID: 2, RequestTime: "2025-03-01T10:00:10Z", ResponseTime: checker.NoResponse, Status: checker.StatusBad, Site: "https://b.example"},
			{CheckerID: 2, RequestTime: "2025-03-01T10:00:00Z", ResponseTime: 95, Status: checker.StatusOK, Site: "https://b.example"},
		}
	})

	AfterEach(func() {
		if detail != nil {
			detail.Close()
		}
	})

	logs := func() []checker.LogEntry { return detail.State().Logs }

	It("does not fetch without an id", func() {
		detail = synchronizer.NewCheckerDetail(context.Background(), api, nil, synchronizer.WithNotifier(notifier))

		Consistently(api.calls, 100*time.Millisecond).ShouldNot(Receive())
		state := detail.State()
		Expect(state.ID).To(BeNil())
		Expect(state.Loading).To(BeFalse())
		Expect(state.Logs).To(BeNil())

		detail.Refresh()
		Consistently(api.calls, 100*time.Millisecond).ShouldNot(Receive())
	})

	It("fetches the history of the selected checker", func() {
		detail = synchronizer.NewCheckerDetail(context.Background(), api, intPtr(1))

		var call *pendingCall
		Eventually(api.calls).Should(Receive(&call))
		Expect(call.id).To(Equal(1))
		Expect(detail.State().Loading).To(BeTrue())

		call.replyLogs(logsOne)

		Eventually(logs).Should(Equal(logsOne))
		Expect(*detail.State().ID).To(Equal(1))
		Expect(detail.State().Loading).To(BeFalse())
	})

	It("never shows the previous checker's logs after switching", func() {
		detail = synchronizer.NewCheckerDetail(context.Background(), api, intPtr(1))

		var one *pendingCall
		Eventually(api.calls).Should(Receive(&one))

		detail.SetID(intPtr(2))
		Expect(one.ctx.Err()).To(MatchError(context.Canceled))

		state := detail.State()
		Expect(*state.ID).To(Equal(2))
		Expect(state.Logs).To(BeNil())

		var two *pendingCall
		Eventually(api.calls).Should(Receive(&two))
		Expect(two.id).To(Equal(2))

		one.replyLogs(logsOne)
		Consistently(logs, 100*time.Millisecond).Should(BeNil())

		two.replyLogs(logsTwo)
		Eventually(logs).Should(Equal(logsTwo))
	})

	It("drops the logs of the previous checker immediately", func() {
		detail = synchronizer.NewCheckerDetail(context.Background(), api, intPtr(1))

		var call *pendingCall
		Eventually(api.calls).Should(Receive(&call))
		call.replyLogs(logsOne)
		Eventually(logs).Should(Equal(logsOne))

		detail.SetID(intPtr(2))
		Expect(detail.State().Logs).To(BeNil())
		Expect(detail.State().Loading).To(BeTrue())
	})

	It("does not refetch when the id is unchanged", func() {
		detail = synchronizer.NewCheckerDetail(context.Background(), api, intPtr(1))

		var call *pendingCall
		Eventually(api.calls).Should(Receive(&call))

		detail.SetID(intPtr(1))
		Consistently(api.calls, 100*time.Millisecond).ShouldNot(Receive())
		Expect(call.ctx.Err()).NotTo(HaveOccurred())
	})

	It("clears everything when the selection is removed", func() {
		detail = synchronizer.NewCheckerDetail(context.Background(), api, intPtr(1))

		var call *pendingCall
		Eventually(api.calls).Should(Receive(&call))

		detail.SetID(nil)
		Expect(call.ctx.Err()).To(MatchError(context.Canceled))

		state := detail.State()
		Expect(state.ID).To(BeNil())
		Expect(state.Loading).To(BeFalse())
		Consistently(api.calls, 100*time.Millisecond).ShouldNot(Receive())
	})

	It("keeps the logs and reports the error on failure", func() {
		detail = synchronizer.NewCheckerDetail(context.Background(), api, intPtr(2), synchronizer.WithNotifier(notifier))

		var call *pendingCall
		Eventually(api.calls).Should(Receive(&call))
		call.replyLogs(logsTwo)
		Eventually(logs).Should(Equal(logsTwo))

		detail.Refresh()
		Eventually(api.calls).Should(Receive(&call))
		call.fail(&transport.HTTPError{StatusCode: 404, Message: "checker not found"})

		Eventually(func() error { return detail.State().Err }).Should(MatchError("checker not found"))
		Expect(logs()).To(Equal(logsTwo))
		Expect(notifier.Messages()).To(Equal([]string{"checker not found"}))
	})

	It("ignores the canceled fetch of a previous checker", func() {
		detail = synchronizer.NewCheckerDetail(context.Background(), api, intPtr(1), synchronizer.WithNotifier(notifier))

		var one *pendingCall
		Eventually(api.calls).Should(Receive(&one))
		detail.SetID(intPtr(2))

		one.fail(transport.ErrCanceled)
		Consistently(func() error { return detail.State().Err }, 100*time.Millisecond).ShouldNot(HaveOccurred())
		Expect(notifier.Messages()).To(BeEmpty())
	})

	Describe("Status", func() {
		It("prefers the latest log entry over the initial status", func() {
			detail = synchronizer.NewCheckerDetail(context.Background(), api, intPtr(2))

			var call *pendingCall
			Eventually(api.calls).Should(Receive(&call))

			initial := checker.StatusOK
			Expect(detail.Status(&initial)).To(Equal(checker.StatusOK))

			call.replyLogs(logsTwo)
			Eventually(func() checker.Status { return detail.Status(&initial) }).Should(Equal(checker.StatusBad))
		})

		It("falls back to initial without an initial status", func() {
			detail = synchronizer.NewCheckerDetail(context.Background(), api, nil)
			Expect(detail.Status(nil)).To(Equal(checker.StatusInitial))
		})
	})
})
