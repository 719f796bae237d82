package hostserver

import (
	"bytes"
	"html/template"

	"github.com/GriffinCanCode/viewsync/internal/boot"
	"github.com/microcosm-cc/bluemonday"
)

const defaultTitle = "viewsync"

var bootPage = template.Must(template.New("boot").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<textarea id="data" hidden>{{.Data}}</textarea>
<div id="root"></div>
</body>
</html>
`))

// pageRenderer renders boot pages. Project names are user content and are
// stripped of markup before they reach the title.
type pageRenderer struct {
	policy *bluemonday.Policy
}

func newPageRenderer() *pageRenderer {
	return &pageRenderer{policy: bluemonday.StrictPolicy()}
}

func (r *pageRenderer) render(p boot.Payload) ([]byte, error) {
	data, err := boot.Encode(p)
	if err != nil {
		return nil, err
	}

	title := defaultTitle
	if p.Project != nil && p.Project.Name != "" {
		if name := r.policy.Sanitize(p.Project.Name); name != "" {
			title = name + " - " + defaultTitle
		}
	}

	var buf bytes.Buffer
	err = bootPage.Execute(&buf, struct {
		Title template.HTML
		Data  string
	}{
		Title: template.HTML(title), // already escaped by the policy
		Data:  data,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
