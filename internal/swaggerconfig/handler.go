package swaggerconfig

import (
	"encoding/json"
	"net/http"

	"github.com/moviebooking/docs-gateway/internal/catalog"
)

// Build lists every catalog service, in configuration order, whatever its
// current health.
func Build(cat *catalog.Catalog, configPath, validatorURL string) SwaggerConfig {
	services := cat.Services()
	cfg := SwaggerConfig{URLs: make([]SwaggerURL, 0, len(services))}

	for _, svc := range services {
		cfg.URLs = append(cfg.URLs, SwaggerURL{Name: svc.Name, URL: svc.DocsURL()})
	}

	if configPath != "" {
		cfg.ConfigURL = &configPath
	}
	if validatorURL != "" {
		cfg.ValidatorURL = &validatorURL
	}

	return cfg
}

// Handler serves the swagger-config document.
func Handler(cat *catalog.Catalog, configPath, validatorURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		body, err := json.Marshal(Build(cat, configPath, validatorURL))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodGet {
			_, _ = w.Write(body)
		}
	}
}
