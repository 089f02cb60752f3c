package httpserver_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/moviebooking/docs-gateway/internal/httpserver"
)

var _ = Describe("HTTP Server", func() {
	noop := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	DescribeTable("address validation",
		func(addr string, valid bool) {
			srv, err := httpserver.New(addr, noop)
			if valid {
				Expect(err).NotTo(HaveOccurred())
				Expect(srv.Addr()).To(Equal(addr))
			} else {
				Expect(err).To(HaveOccurred())
				Expect(srv).To(BeNil())
			}
		},
		Entry("hostname", "localhost:9999", true),
		Entry("ip", "127.0.0.1:9999", true),
		Entry("port only", ":9999", true),
		Entry("too many colons", "invalid:host:port", false),
		Entry("missing port", "localhost", false),
		Entry("empty port", "localhost:", false),
		Entry("port out of range", ":70000", false),
	)

	Context("server lifecycle", func() {
		var testServer *httpserver.Server

		AfterEach(func() {
			if testServer != nil {
				_ = testServer.Shutdown(context.Background())
			}
		})

		It("starts, serves and shuts down", func() {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"status":"UP"}`))
			})
			var err error
			testServer, err = httpserver.New("127.0.0.1:19999", handler)
			Expect(err).NotTo(HaveOccurred())

			done := make(chan error, 1)
			go func() { done <- testServer.Start() }()

			Eventually(func() error {
				resp, err := http.Get("http://127.0.0.1:19999/health")
				if err != nil {
					return err
				}
				defer resp.Body.Close()
				body, _ := io.ReadAll(resp.Body)
				Expect(string(body)).To(Equal(`{"status":"UP"}`))
				return nil
			}).Should(Succeed())

			Expect(testServer.Shutdown(context.Background())).To(Succeed())
			Eventually(done, 2*time.Second).Should(Receive(BeNil()))
		})
	})
})

var _ = Describe("RequestLogger", func() {
	var (
		logs *bytes.Buffer
		log  *slog.Logger
	)

	BeforeEach(func() {
		logs = &bytes.Buffer{}
		log = slog.New(slog.NewTextHandler(logs, nil))
	})

	serve := func(status int) {
		h := middleware.RequestID(httpserver.RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/docs", nil))
	}

	It("should log successful requests at info with a request id", func() {
		serve(http.StatusOK)
		Expect(logs.String()).To(ContainSubstring("level=INFO"))
		Expect(logs.String()).To(ContainSubstring("path=/docs"))
		Expect(logs.String()).To(ContainSubstring("status=200"))
		Expect(logs.String()).To(ContainSubstring("request_id="))
	})

	It("should log client errors at warn", func() {
		serve(http.StatusTooManyRequests)
		Expect(logs.String()).To(ContainSubstring("level=WARN"))
	})

	It("should log server errors at error", func() {
		serve(http.StatusServiceUnavailable)
		Expect(logs.String()).To(ContainSubstring("level=ERROR"))
	})
})
