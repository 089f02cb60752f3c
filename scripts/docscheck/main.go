// docscheck exercises a running docs gateway: it verifies the Swagger UI
// configuration, proxies docs for one service, and watches the breaker and
// fallback behaviour while that service fails.
//
// Usage:
//
//	go run ./scripts/docscheck -gateway http://localhost:8080 -service payment-service
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

type swaggerConfig struct {
	URLs []struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"urls"`
	ValidatorURL *string `json:"validatorUrl"`
}

type snapshot struct {
	TotalRequests int64 `json:"total_requests"`
	Services      map[string]struct {
		Requests  int64            `json:"requests"`
		Fallbacks map[string]int64 `json:"fallbacks"`
		Backends  map[string]struct {
			Selections int64 `json:"selections"`
			Healthy    bool  `json:"healthy"`
		} `json:"backends"`
	} `json:"services"`
}

func main() {
	var (
		gateway    = flag.String("gateway", "http://localhost:8080", "Docs gateway URL")
		configPath = flag.String("config-path", "/api-docs/swagger-config", "Swagger UI configuration path")
		service    = flag.String("service", "payment-service", "Service whose docs are requested")
		requests   = flag.Int("requests", 20, "Docs requests to send")
		interval   = flag.Duration("interval", 250*time.Millisecond, "Pause between docs requests")
	)
	flag.Parse()

	client := &http.Client{Timeout: 5 * time.Second}

	fmt.Println(colorCyan + "━━━ DOCS GATEWAY CHECK ━━━" + colorReset)
	fmt.Println()

	// PHASE 1: configuration
	fmt.Println(colorBlue + "━━━ PHASE 1: Swagger UI configuration ━━━" + colorReset)
	var cfg swaggerConfig
	if err := getJSON(client, *gateway+*configPath, &cfg); err != nil {
		fmt.Printf(colorRed+"  ✗ Could not load configuration: %v\n"+colorReset, err)
		os.Exit(1)
	}
	for _, u := range cfg.URLs {
		fmt.Printf("    %s → %s\n", u.Name, u.URL)
	}
	if cfg.ValidatorURL != nil {
		fmt.Printf("  validatorUrl=%q\n", *cfg.ValidatorURL)
	}
	fmt.Printf(colorGreen+"  ✓ %d services listed\n"+colorReset, len(cfg.URLs))
	fmt.Println()

	// PHASE 2: docs requests, run this while stopping the backend to watch the fallback
	fmt.Println(colorBlue + "━━━ PHASE 2: Docs requests ━━━" + colorReset)
	sources := make(map[string]int)
	for i := 0; i < *requests; i++ {
		status, source, backend, err := fetchDocs(client, *gateway+"/"+*service+"/api-docs")
		if err != nil {
			fmt.Printf(colorRed+"  Request %d: ERROR - %v\n"+colorReset, i+1, err)
			continue
		}
		color := colorGreen
		switch {
		case status >= 500:
			color = colorRed
		case source != "upstream":
			color = colorYellow
		}
		fmt.Printf(color+"  Request %d: Status=%d Source=%s Backend=%s\n"+colorReset, i+1, status, source, backend)
		sources[source]++
		time.Sleep(*interval)
	}
	fmt.Println("\n  Response sources:")
	for source, count := range sources {
		fmt.Printf("    %s → %d requests\n", source, count)
	}
	fmt.Println()

	// PHASE 3: breaker state
	fmt.Println(colorBlue + "━━━ PHASE 3: Fallback health ━━━" + colorReset)
	var health struct {
		Status   string            `json:"status"`
		Breakers map[string]string `json:"breakers"`
	}
	if err := getJSON(client, *gateway+"/fallback/health", &health); err != nil {
		fmt.Printf(colorYellow+"  Could not fetch fallback health: %v\n"+colorReset, err)
	} else {
		fmt.Printf("  status=%s\n", health.Status)
		for name, state := range health.Breakers {
			fmt.Printf("    %s → %s\n", name, state)
		}
	}
	fmt.Println()

	// PHASE 4: metrics
	fmt.Println(colorBlue + "━━━ PHASE 4: Metrics snapshot ━━━" + colorReset)
	var snap snapshot
	if err := getJSON(client, *gateway+"/metrics/snapshot", &snap); err != nil {
		fmt.Printf(colorYellow+"  Could not fetch metrics: %v\n"+colorReset, err)
		return
	}
	fmt.Printf("  total requests: %d\n", snap.TotalRequests)
	if sm, ok := snap.Services[*service]; ok {
		fmt.Printf("  %s: requests=%d fallbacks=%v\n", *service, sm.Requests, sm.Fallbacks)
		for url, b := range sm.Backends {
			status := colorGreen + "HEALTHY" + colorReset
			if !b.Healthy {
				status = colorRed + "UNHEALTHY" + colorReset
			}
			fmt.Printf("    %s → %s (selections: %d)\n", url, status, b.Selections)
		}
	}
}

func fetchDocs(client *http.Client, url string) (int, string, string, error) {
	resp, err := client.Get(url)
	if err != nil {
		return 0, "", "", err
	}
	defer resp.Body.Close()

	source := resp.Header.Get("X-Docs-Source")
	if source == "" {
		source = "upstream"
	}
	return resp.StatusCode, source, resp.Header.Get("X-Backend-Server"), nil
}

func getJSON(client *http.Client, url string, v any) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
