package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestCmd(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Cmd Suite")
}

const testConfig = `
http_server:
  port: 9090
  allowed_origins: "*"
  read_header_timeout: 5s
  read_timeout: 15s
database:
  source: postgres://u:p@localhost:5432/attendance
  max_open_conns: 10
  max_idle_conns: 2
security:
  access_token_secret: test-access-secret-0123456789abcdef
  refresh_token_secret: test-refresh-secret-0123456789abcdef
  bcrypt_cost: 4
observability:
  logging:
    level: warn
    format: json
attendance:
  timezone: Europe/Lisbon
  stats_cache_ttl: 2s
`

var _ = Describe("loadConfig", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		os.Unsetenv("APP_ENV")
		os.Unsetenv("DOCKER_ENV")
	})

	It("should read config.yml from the given directory", func() {
		Expect(os.WriteFile(filepath.Join(dir, "config.yml"), []byte(testConfig), 0o600)).To(Succeed())

		cfg, err := loadConfig(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Server.Port).To(Equal(9090))
		Expect(cfg.Attendance.StatsCacheTTL).To(Equal(2 * time.Second))
		Expect(cfg.Attendance.Location().String()).To(Equal("Europe/Lisbon"))
	})

	It("should let ENV_ variables override the file", func() {
		Expect(os.WriteFile(filepath.Join(dir, "config.yml"), []byte(testConfig), 0o600)).To(Succeed())
		GinkgoT().Setenv("ENV_HTTP_SERVER_PORT", "7070")

		cfg, err := loadConfig(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Server.Port).To(Equal(7070))
	})

	It("should reject an invalid file", func() {
		bad := testConfig + "\n  recent_activity_limit: -1\n"
		Expect(os.WriteFile(filepath.Join(dir, "config.yml"), []byte(bad), 0o600)).To(Succeed())

		_, err := loadConfig(dir)
		Expect(err).To(MatchError(ContainSubstring("recent_activity_limit")))
	})

	It("should fail when no file exists", func() {
		_, err := loadConfig(dir)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("rootCmd", func() {
	It("should register every subcommand", func() {
		names := map[string]bool{}
		for _, c := range rootCmd.Commands() {
			names[c.Name()] = true
		}
		Expect(names).To(HaveKey("server"))
		Expect(names).To(HaveKey("migrate"))
		Expect(names).To(HaveKey("seed"))
		Expect(names).To(HaveKey("bus"))
	})
})
