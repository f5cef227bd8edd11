package httpserver_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/uptime-client/internal/httpserver"
)

var _ = Describe("HTTP Server", func() {
	var logger *slog.Logger

	BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	})

	Context("server creation", func() {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

		DescribeTable("address validation",
			func(addr string, valid bool) {
				srv, err := httpserver.New(addr, handler, logger)
				if valid {
					Expect(err).NotTo(HaveOccurred())
					Expect(srv).NotTo(BeNil())
				} else {
					Expect(err).To(HaveOccurred())
					Expect(srv).To(BeNil())
				}
			},
			Entry("host name", "localhost:9999", true),
			Entry("IP address", "127.0.0.1:9999", true),
			Entry("port only", ":9999", true),
			Entry("too many colons", "invalid:host:port", false),
			Entry("missing port", "localhost:", false),
			Entry("bad host", "bad_host!:9999", false),
		)
	})

	Context("server lifecycle", func() {
		It("serves requests until the context ends", func() {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("test"))
			})
			srv, err := httpserver.New("127.0.0.1:19999", handler, logger)
			Expect(err).NotTo(HaveOccurred())

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- srv.Run(ctx) }()

			Eventually(func() error {
				resp, err := http.Get("http://127.0.0.1:19999")
				if err != nil {
					return err
				}
				defer resp.Body.Close()
				body, _ := io.ReadAll(resp.Body)
				Expect(string(body)).To(Equal("test"))
				return nil
			}).Should(Succeed())

			cancel()
			Eventually(done, 2*time.Second).Should(Receive(BeNil()))
		})

		It("shuts down gracefully", func() {
			srv, err := httpserver.New("127.0.0.1:19998", http.NotFoundHandler(), logger)
			Expect(err).NotTo(HaveOccurred())

			go srv.Start()
			time.Sleep(100 * time.Millisecond)

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			Expect(srv.Shutdown(ctx)).To(Succeed())
		})
	})
})
