package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/moviebooking/docs-gateway/config"
)

const validConfig = `
server:
  address: ":8080"
  environment: "dev"

health_check:
  interval: "10s"

strategy:
  type: "least-conn"

docs:
  validator_url: "https://validator.swagger.io/validator"

services:
  - id: user-service
    name: User Service
    instances:
      - url: "http://localhost:8081"
  - id: movie-service
    name: Movie Service
    docs_path: /v3/api-docs
    instances:
      - url: "http://localhost:8082"
        weight: 3
      - url: "http://localhost:8083"

logging:
  level: "info"
`

var _ = Describe("Config", func() {
	var tempDir string

	writeConfig := func(content string) string {
		path := filepath.Join(tempDir, "config.yaml")
		Expect(os.WriteFile(path, []byte(content), 0644)).To(Succeed())
		return path
	}

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "config-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tempDir)
		os.Unsetenv("STRATEGY_TYPE")
		os.Unsetenv("DOCS_TITLE")
	})

	Describe("Load", func() {
		Context("with valid config file", func() {
			var path string

			BeforeEach(func() {
				path = writeConfig(validConfig)
			})

			It("should load configuration successfully", func() {
				cfg, err := config.Load(path)
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg).NotTo(BeNil())
			})

			It("should keep services in file order", func() {
				cfg, _ := config.Load(path)
				Expect(cfg.Services).To(HaveLen(2))
				Expect(cfg.Services[0].ID).To(Equal("user-service"))
				Expect(cfg.Services[1].ID).To(Equal("movie-service"))
			})

			It("should default docs path and instance weight", func() {
				cfg, _ := config.Load(path)
				Expect(cfg.Services[0].DocsPath).To(Equal("/api-docs"))
				Expect(cfg.Services[0].Instances[0].Weight).To(Equal(1))
				Expect(cfg.Services[1].DocsPath).To(Equal("/v3/api-docs"))
				Expect(cfg.Services[1].Instances[0].Weight).To(Equal(3))
			})

			It("should apply docs defaults", func() {
				cfg, _ := config.Load(path)
				Expect(cfg.Docs.UIPath).To(Equal("/docs"))
				Expect(cfg.Docs.ConfigPath).To(Equal("/api-docs/swagger-config"))
				Expect(cfg.Docs.Resolve).To(Equal(config.ResolveClient))
				Expect(cfg.Docs.ValidatorURL).To(Equal("https://validator.swagger.io/validator"))
			})

			It("should parse durations", func() {
				cfg, _ := config.Load(path)
				Expect(cfg.HealthCheckInterval()).To(Equal(10 * time.Second))
				Expect(cfg.HealthCheckTimeout()).To(Equal(5 * time.Second))
				Expect(cfg.BreakerResetTimeout()).To(Equal(30 * time.Second))
				Expect(cfg.DocsFetchTimeout()).To(Equal(5 * time.Second))
			})

			It("should let environment variables override file values", func() {
				os.Setenv("STRATEGY_TYPE", "round-robin")
				os.Setenv("DOCS_TITLE", "Gateway Docs")
				cfg, err := config.Load(path)
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Strategy.Type).To(Equal("round-robin"))
				Expect(cfg.Docs.Title).To(Equal("Gateway Docs"))
			})
		})

		Context("with invalid config file", func() {
			It("should reject a config without services", func() {
				path := writeConfig("server:\n  address: \":8080\"\n")
				_, err := config.Load(path)
				Expect(err).To(HaveOccurred())
			})

			It("should reject duplicate service ids", func() {
				path := writeConfig(`
services:
  - id: user-service
    name: User Service
    instances: [{url: "http://localhost:8081"}]
  - id: user-service
    name: Users Again
    instances: [{url: "http://localhost:8082"}]
`)
				_, err := config.Load(path)
				Expect(err).To(MatchError(ContainSubstring("duplicate service id")))
			})

			It("should require a config source in server resolve mode", func() {
				path := writeConfig(`
docs:
  resolve: server
services:
  - id: user-service
    name: User Service
    instances: [{url: "http://localhost:8081"}]
`)
				_, err := config.Load(path)
				Expect(err).To(HaveOccurred())
			})
		})
	})

	Describe("Validate", func() {
		var cfg *config.Config

		BeforeEach(func() {
			path := writeConfig(validConfig)
			var err error
			cfg, err = config.Load(path)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should reject unknown strategies", func() {
			cfg.Strategy.Type = "consistent_hash"
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject non-http instance urls", func() {
			cfg.Services[0].Instances[0].URL = "ftp://localhost:21"
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject service ids that cannot be a path segment", func() {
			cfg.Services[0].ID = "User Service"
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject relative ui paths", func() {
			cfg.Docs.UIPath = "docs"
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject bad addresses", func() {
			cfg.Server.Address = "invalid:host:port"
			Expect(cfg.Validate()).NotTo(Succeed())
		})
	})
})
