package render

const frameTemplate = `<div class="slide-wrapper" data-slide-id="{{.ID}}">
<div class="slide-content">
{{.Body}}
{{- if .Notes}}
<div class="slide-notes"><details><summary>Notes</summary>{{.Notes}}</details></div>
{{- end}}
</div>
<div class="slide-navigation">
<button class="nav-btn nav-prev"{{if .First}} disabled{{end}}>&larr; Previous</button>
<span class="slide-counter">{{.Number}} / {{.Total}}</span>
<button class="nav-btn nav-next"{{if .Last}} disabled{{end}}>Next &rarr;</button>
<a class="nav-btn nav-menu" href="../">Menu</a>
{{- if .Search}}
<button class="nav-btn nav-search">Search</button>
{{- end}}
{{- if .Print}}
<button class="nav-btn nav-print">Print</button>
{{- end}}
</div>
{{- if .Progress}}
<div class="slide-progress">
<div class="progress-bar"><div class="progress-fill" style="width: {{.Percent}}%"></div></div>
<div class="progress-text">Progress: {{.Percent}}%</div>
</div>
{{- end}}
<div class="slide-indicators">
{{- range .Indicators}}
<span class="indicator{{if .Active}} active{{end}}" data-slide="{{.Index}}" title="Slide {{.Number}}"></span>
{{- end}}
</div>
</div>
`

const errorTemplate = `<div class="error-message">
<h2>Error</h2>
<p>{{.}}</p>
<button class="reload-btn" onclick="location.reload()">Reload</button>
</div>
`

const printTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <style>
    @media print {
      .slide-page { page-break-after: always; }
      .no-print { display: none; }
    }
    body { font-family: 'Times New Roman', serif; line-height: 1.6; }
    .slide-page { padding: 30px; margin-bottom: 50px; border-bottom: 2px solid #ccc; }
    h1 { color: #333; border-bottom: 2px solid #667eea; padding-bottom: 10px; }
  </style>
</head>
<body>
  <h1>{{.Title}}</h1>
{{- range .Pages}}
  <div class="slide-page" data-slide-id="{{.ID}}">
    <h2>Slide {{.Number}}{{if .Title}}: {{.Title}}{{end}}</h2>
    {{.Body}}
    {{- if .Notes}}
    <div class="notes"><strong>Notes:</strong> {{.Notes}}</div>
    {{- end}}
  </div>
{{- end}}
</body>
</html>
`
