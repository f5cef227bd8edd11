package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/uptime-client/config"
)

var _ = Describe("Config", func() {
	var (
		tempDir string
		origDir string
	)

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "config-test-*")
		Expect(err).NotTo(HaveOccurred())

		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())
		Expect(os.Chdir(tempDir)).To(Succeed())
	})

	AfterEach(func() {
		Expect(os.Chdir(origDir)).To(Succeed())
		os.RemoveAll(tempDir)
		os.Unsetenv("UPTIME_API_BASE_URL")
		os.Unsetenv("UPTIME_POLL_INTERVAL")
		os.Unsetenv("UPTIME_LOGGING_LEVEL")
	})

	writeConfig := func(content string) string {
		path := filepath.Join(tempDir, "config.yaml")
		Expect(os.WriteFile(path, []byte(content), 0644)).To(Succeed())
		return path
	}

	Describe("Load", func() {
		Context("with valid config file", func() {
			var path string

			BeforeEach(func() {
				path = writeConfig(`
environment: "staging"

api:
  base_url: "https://uptime.example.com/api"
  timeout: "5s"
  breaker:
    threshold: 3
    reset_timeout: "1m"

session:
  path: "/tmp/uptime-session"

poll:
  interval: "30s"

notify:
  duration: "3s"
  queue_size: 8

checker:
  period_unit: "minutes"

logging:
  level: "debug"

metrics:
  address: "127.0.0.1:9100"
`)
			})

			It("should load configuration successfully", func() {
				cfg, err := config.Load(path)
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Environment).To(Equal(config.EnvStaging))
				Expect(cfg.API.BaseURL).To(Equal("https://uptime.example.com/api"))
				Expect(cfg.Session.Path).To(Equal("/tmp/uptime-session"))
				Expect(cfg.Metrics.Address).To(Equal("127.0.0.1:9100"))
			})

			It("should parse durations", func() {
				cfg, err := config.Load(path)
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.API.Timeout).To(Equal(5 * time.Second))
				Expect(cfg.API.Breaker.ResetTimeout).To(Equal(time.Minute))
				Expect(cfg.Poll.Interval).To(Equal(30 * time.Second))
				Expect(cfg.Notify.Duration).To(Equal(3 * time.Second))
			})

			It("should keep defaults for keys the file leaves out", func() {
				cfg, err := config.Load(path)
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.API.ErrorField).To(Equal("$.error"))
				Expect(cfg.Poll.Schedule).To(BeEmpty())
			})

			It("should let environment variables override the file", func() {
				os.Setenv("UPTIME_API_BASE_URL", "http://localhost:9000")
				os.Setenv("UPTIME_POLL_INTERVAL", "15s")

				cfg, err := config.Load(path)
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.API.BaseURL).To(Equal("http://localhost:9000"))
				Expect(cfg.Poll.Interval).To(Equal(15 * time.Second))
			})
		})

		Context("without a config file", func() {
			It("should use defaults when config file missing", func() {
				cfg, err := config.Load("")
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Environment).To(Equal(config.EnvDev))
				Expect(cfg.API.BaseURL).To(Equal("http://localhost:8080"))
				Expect(cfg.Poll.Interval).To(Equal(10 * time.Second))
				Expect(cfg.Notify.Duration).To(Equal(2 * time.Second))
				Expect(cfg.Notify.QueueSize).To(Equal(32))
				Expect(cfg.Checker.PeriodUnit).To(Equal(config.UnitSeconds))
				Expect(cfg.Session.Path).NotTo(BeEmpty())
			})

			It("should read variables from a .env file", func() {
				Expect(os.WriteFile(filepath.Join(tempDir, ".env"), []byte("UPTIME_LOGGING_LEVEL=warn\n"), 0644)).To(Succeed())

				cfg, err := config.Load("")
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Logging.Level).To(Equal(config.LogLevelWarn))
			})

			It("should fail when an explicit path does not exist", func() {
				_, err := config.Load(filepath.Join(tempDir, "missing.yaml"))
				Expect(err).To(HaveOccurred())
			})
		})

		Context("with invalid values", func() {
			It("should reject a base url without scheme", func() {
				_, err := config.Load(writeConfig("api:\n  base_url: \"uptime.example.com\"\n"))
				Expect(err).To(MatchError(ContainSubstring("BaseURL")))
			})

			It("should reject an unknown environment", func() {
				_, err := config.Load(writeConfig("environment: \"qa\"\n"))
				Expect(err).To(MatchError(ContainSubstring("Environment")))
			})

			It("should reject an unknown period unit", func() {
				_, err := config.Load(writeConfig("checker:\n  period_unit: \"hours\"\n"))
				Expect(err).To(MatchError(ContainSubstring("PeriodUnit")))
			})

			It("should reject a non-positive poll interval", func() {
				_, err := config.Load(writeConfig("poll:\n  interval: \"0s\"\n"))
				Expect(err).To(MatchError(ContainSubstring("Interval")))
			})

			It("should accept a cron schedule in place of the interval", func() {
				cfg, err := config.Load(writeConfig("poll:\n  interval: \"0s\"\n  schedule: \"*/5 * * * *\"\n"))
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Poll.Schedule).To(Equal("*/5 * * * *"))
			})

			It("should reject a malformed metrics address", func() {
				_, err := config.Load(writeConfig("metrics:\n  address: \"not-an-address\"\n"))
				Expect(err).To(MatchError(ContainSubstring("host:port")))
			})
		})
	})

	DescribeTable("CheckerConfig.Period",
		func(unit string, value float64, want time.Duration) {
			Expect(config.CheckerConfig{PeriodUnit: unit}.Period(value)).To(Equal(want))
		},
		Entry("seconds", config.UnitSeconds, 30.0, 30*time.Second),
		Entry("minutes", config.UnitMinutes, 1.5, 90*time.Second),
		Entry("milliseconds", config.UnitMilliseconds, 250.0, 250*time.Millisecond),
	)
})
