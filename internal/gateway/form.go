package gateway

import (
	"bytes"
	"fmt"
	"html/template"
)

// formTemplate renders the signed request as a page that immediately POSTs
// itself to the gateway. This is the server-side half of the full-page
// redirect: once the browser loads it, control passes to the gateway until
// one of the return URLs fires.
var formTemplate = template.Must(template.New("gatewayForm").Parse(`<!DOCTYPE html>
<html>
<head><title>Redirecting to payment…</title></head>
<body onload="document.getElementById('paymentForm').submit()">
<form id="paymentForm" method="POST" action="{{.Endpoint}}">
{{- range .Fields}}
<input type="hidden" name="{{.Name}}" value="{{.Value}}">
{{- end}}
<noscript><button type="submit">Continue to payment</button></noscript>
</form>
</body>
</html>
`))

// RenderForm produces the auto-submitting HTML form for a signed request.
func RenderForm(req *SignedRequest) ([]byte, error) {
	var buf bytes.Buffer
	err := formTemplate.Execute(&buf, struct {
		Endpoint string
		Fields   []FormField
	}{
		Endpoint: req.Endpoint,
		Fields:   req.FormFields(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render gateway form: %w", err)
	}
	return buf.Bytes(), nil
}
