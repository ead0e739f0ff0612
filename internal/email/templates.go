package email

import (
	"bytes"
	"html/template"
	"time"
)

// CatalogAlert describes a pipeline run that fell back to local data.
type CatalogAlert struct {
	RunID      string
	Origin     string
	Reason     string
	OccurredAt time.Time
}

var catalogAlertTmpl = template.Must(template.New("catalog_alert").Parse(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: #c0392b; padding: 20px; border-radius: 10px 10px 0 0;">
		<h1 style="color: white; margin: 0; font-size: 22px;">Error al cargar el catálogo</h1>
	</div>
	<div style="background: #fff; padding: 20px; border: 1px solid #eee; border-top: none; border-radius: 0 0 10px 10px;">
		<p style="margin-top: 0;">La API remota no respondió. Los productos se están sirviendo desde el origen <strong>{{.Origin}}</strong>.</p>
		<table style="width: 100%; border-collapse: collapse;">
			<tr><td style="padding: 6px; color: #666;">Ejecución</td><td style="padding: 6px; font-family: monospace;">{{.RunID}}</td></tr>
			<tr><td style="padding: 6px; color: #666;">Motivo</td><td style="padding: 6px;">{{.Reason}}</td></tr>
			<tr><td style="padding: 6px; color: #666;">Fecha</td><td style="padding: 6px;">{{.OccurredAt.Format "2006-01-02 15:04:05 MST"}}</td></tr>
		</table>
		<hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
		<p style="font-size: 12px; color: #999; margin-bottom: 0;">Este mensaje se envía automáticamente.</p>
	</div>
</body>
</html>`))

// BuildCatalogAlertBody renders the HTML body of a catalog alert.
func BuildCatalogAlertBody(alert CatalogAlert) (string, error) {
	var buf bytes.Buffer
	if err := catalogAlertTmpl.Execute(&buf, alert); err != nil {
		return "", err
	}
	return buf.String(), nil
}
