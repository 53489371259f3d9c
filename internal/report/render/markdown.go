package render

import (
	"bytes"
	"html/template"

	"github.com/dockshield/web-dashboard/internal/report"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Placeholder fragments shown instead of a report body.
const (
	// AnalysisUnavailable replaces a container analysis whose text is missing or malformed.
	AnalysisUnavailable template.HTML = "<p>Erro ao carregar o relatório de análise da imagem.</p>"
	// CVEReportUnavailable replaces a CVE report whose text is missing or malformed.
	CVEReportUnavailable template.HTML = "<p>Erro ao carregar o conteúdo do relatório.</p>"
	// AnalysisPending is shown when no container analysis exists yet.
	AnalysisPending template.HTML = "<p>A análise desta imagem ainda não foi gerada.</p>"
)

// Renderer converts report markdown into HTML fragments.
type Renderer struct {
	md goldmark.Markdown
}

// New returns a Renderer with GitHub-flavoured extensions. Raw HTML embedded in
// the markdown is dropped rather than passed through.
func New() *Renderer {
	return &Renderer{md: goldmark.New(goldmark.WithExtensions(extension.GFM))}
}

// Field renders the markdown found at path inside doc. A missing segment, a
// wrong shape, empty text or a conversion failure all yield placeholder.
func (r *Renderer) Field(doc report.Document, path string, placeholder template.HTML) template.HTML {
	if doc == nil {
		return placeholder
	}
	src, ok := doc.LookupString(path)
	if !ok {
		return placeholder
	}
	out, err := r.Markdown(src)
	if err != nil {
		return placeholder
	}
	return out
}

// Markdown converts src to HTML.
func (r *Renderer) Markdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
