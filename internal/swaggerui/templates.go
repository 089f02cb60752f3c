package swaggerui

const indexTemplate = `<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="UTF-8">
    <title>{{.Title}}</title>
    <link rel="stylesheet" type="text/css" href="{{.AssetsURL}}/swagger-ui.css" />
    <link rel="icon" type="image/png" href="{{.AssetsURL}}/favicon-32x32.png" sizes="32x32" />
    <link rel="icon" type="image/png" href="{{.AssetsURL}}/favicon-16x16.png" sizes="16x16" />
    <style>
      html {
        box-sizing: border-box;
        overflow-y: scroll;
      }
      *, *:before, *:after {
        box-sizing: inherit;
      }
      body {
        margin: 0;
        background: #fafafa;
      }
    </style>
  </head>

  <body>
    <div id="swagger-ui"></div>

    <script src="{{.AssetsURL}}/swagger-ui-bundle.js" charset="UTF-8"></script>
    <script src="{{.AssetsURL}}/swagger-ui-standalone-preset.js" charset="UTF-8"></script>
    <script src="{{.InitializerPath}}" charset="UTF-8"></script>
  </body>
</html>
`

// defaults renders the options shared by both initializer paths as a JS
// function, so the client script builds them the same way in both branches.
const defaultsTemplate = `function bundleDefaults(urls) {
  return {
    urls: urls,
    dom_id: {{json .DomID}},
    deepLinking: {{.DeepLinking}},
    presets: [
      {{join .Presets}}
    ],
    plugins: [
      {{join .Plugins}}
    ],
    layout: {{json .Layout}}
  };
}
`

const clientTemplate = `{{template "defaults" .Defaults}}
window.onload = function() {
  fetch({{json .ConfigPath}}, { headers: { Accept: "application/json" } })
    .then(function(response) {
      if (!response.ok) {
        throw new Error("swagger config request failed with status " + response.status);
      }
      return response.json();
    })
    .then(function(config) {
      if (!config || !Array.isArray(config.urls)) {
        throw new Error("swagger config has no urls");
      }
      var options = bundleDefaults(config.urls);
      options.validatorUrl = config.validatorUrl || "";
      options.configUrl = config.configUrl;
      window.ui = SwaggerUIBundle(options);
    })
    .catch(function(error) {
      console.error("Failed to load Swagger configuration:", error);
      window.ui = SwaggerUIBundle(bundleDefaults({{json .FallbackURLs}}));
    });
};
`

const serverTemplate = `{{template "defaults" .}}
window.onload = function() {
  var options = bundleDefaults({{json .URLs}});
{{- if .ValidatorURL}}
  options.validatorUrl = {{json .ValidatorURL}};
{{- end}}
{{- if .ConfigURL}}
  options.configUrl = {{json .ConfigURL}};
{{- end}}
  window.ui = SwaggerUIBundle(options);
};
`
