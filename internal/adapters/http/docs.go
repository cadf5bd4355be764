package http

import (
	"os"

	"github.com/gofiber/fiber/v2"
)

// docsPage introduces the route API above the interactive reference.
const docsPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>KulturaPass Route API</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
  <style>body{margin:0;background:#fafafa;font-family:sans-serif}header{padding:16px 24px;background:#1b3a4b;color:#fff}header p{margin:4px 0 0;max-width:60em}code{background:rgba(255,255,255,.15);padding:0 4px}</style>
</head>
<body>
  <header>
    <h1>KulturaPass Route API</h1>
    <p>Orders a set of venues into a short visiting tour (<code>POST /v1/routes/optimize</code>),
    plans road geometry through them for a travel profile (<code>POST /v1/routes/plan</code>)
    and encodes or decodes Google encoded polylines (<code>/v1/polylines/encode</code>, <code>/v1/polylines/decode</code>).
    Coordinates are WGS84 degrees; distances use a 6371 km earth radius.</p>
  </header>
  <div id="swagger-ui"></div>
  <script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({
      url: '/docs/openapi.yaml',
      dom_id: '#swagger-ui',
      deepLinking: true,
      tryItOutEnabled: true,
      presets: [SwaggerUIBundle.presets.apis],
    });
  </script>
</body>
</html>`

// SetupDocs registers the API reference at /docs and the raw OpenAPI document
// at /docs/openapi.yaml.
func SetupDocs(app *fiber.App) {
	app.Get("/docs", func(c *fiber.Ctx) error {
		c.Set("Content-Type", "text/html; charset=utf-8")
		return c.SendString(docsPage)
	})

	app.Get("/docs/openapi.yaml", func(c *fiber.Ctx) error {
		data, err := os.ReadFile("api/openapi.yaml")
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "openapi.yaml not found"})
		}
		c.Set("Content-Type", "application/yaml")
		return c.Send(data)
	})
}
