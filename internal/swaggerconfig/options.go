package swaggerconfig

const (
	DomID            = "#swagger-ui"
	StandaloneLayout = "StandaloneLayout"

	PresetAPIs       = "SwaggerUIBundle.presets.apis"
	PresetStandalone = "SwaggerUIStandalonePreset"
	PluginDownload   = "SwaggerUIBundle.plugins.DownloadUrl"
)

type SwaggerURL struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// SwaggerConfig is the swagger-config document. Nil pointers mean the field
// was absent.
type SwaggerConfig struct {
	URLs         []SwaggerURL `json:"urls"`
	ValidatorURL *string      `json:"validatorUrl,omitempty"`
	ConfigURL    *string      `json:"configUrl,omitempty"`
}

// BundleOptions is the argument handed to SwaggerUIBundle. Presets, Plugins
// and Layout hold JavaScript identifiers, not strings.
type BundleOptions struct {
	URLs         []SwaggerURL `json:"urls" yaml:"urls"`
	DomID        string       `json:"dom_id" yaml:"dom_id"`
	DeepLinking  bool         `json:"deepLinking" yaml:"deepLinking"`
	Presets      []string     `json:"presets" yaml:"presets"`
	Plugins      []string     `json:"plugins" yaml:"plugins"`
	Layout       string       `json:"layout" yaml:"layout"`
	ValidatorURL *string      `json:"validatorUrl,omitempty" yaml:"validatorUrl,omitempty"`
	ConfigURL    *string      `json:"configUrl,omitempty" yaml:"configUrl,omitempty"`
}

// Source tells which path produced a set of BundleOptions.
type Source string

const (
	SourceRemote   Source = "remote"
	SourceFallback Source = "fallback"
)

var fallbackURLs = []SwaggerURL{
	{Name: "User Service", URL: "/user-service/api-docs"},
	{Name: "Movie Service", URL: "/movie-service/api-docs"},
	{Name: "Theatre Service", URL: "/theatre-service/api-docs"},
	{Name: "Booking Service", URL: "/booking-service/api-docs"},
	{Name: "Payment Service", URL: "/payment-service/api-docs"},
	{Name: "Notification Service", URL: "/notification-service/api-docs"},
}

// FallbackURLs returns a fresh copy of the built-in service list.
func FallbackURLs() []SwaggerURL {
	out := make([]SwaggerURL, len(fallbackURLs))
	copy(out, fallbackURLs)
	return out
}

// NewBundleOptions sets the fields shared by every viewer instance.
func NewBundleOptions(urls []SwaggerURL) BundleOptions {
	return BundleOptions{
		URLs:        urls,
		DomID:       DomID,
		DeepLinking: true,
		Presets:     []string{PresetAPIs, PresetStandalone},
		Plugins:     []string{PluginDownload},
		Layout:      StandaloneLayout,
	}
}

// FromConfig builds options from a fetched document. validatorUrl defaults
// to the empty string; configUrl is passed through as is.
func FromConfig(cfg *SwaggerConfig) BundleOptions {
	opts := NewBundleOptions(cfg.URLs)

	validator := ""
	if cfg.ValidatorURL != nil {
		validator = *cfg.ValidatorURL
	}
	opts.ValidatorURL = &validator
	opts.ConfigURL = cfg.ConfigURL

	return opts
}
