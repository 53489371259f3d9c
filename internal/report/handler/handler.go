package handler

import (
	"embed"
	"html/template"
	"net/http"
	"net/url"

	"github.com/dockshield/web-dashboard/internal/report"
	"github.com/dockshield/web-dashboard/internal/report/render"
	"github.com/dockshield/web-dashboard/internal/report/service"
	"github.com/dockshield/web-dashboard/pkg/middleware"
	"github.com/gin-gonic/gin"
)

// StoreUnavailableHTML is the diagnostic served when the database is unreachable.
const StoreUnavailableHTML = "<p>Banco de dados não disponível.</p>"

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.New("pages").Funcs(template.FuncMap{
		"add":        func(a, b int) int { return a + b },
		"pathEscape": url.PathEscape,
		"id":         func(d report.Document) string { return d.ID() },
	}).ParseFS(templateFS, "templates/*.html")
}

type pages struct {
	loc *service.Locator
	md  *render.Renderer
}

// RegisterReportRoutes installs the page templates on r and mounts the four
// dashboard pages behind gate.
func RegisterReportRoutes(r *gin.Engine, gate gin.HandlerFunc, loc *service.Locator, md *render.Renderer) error {
	tmpl, err := Templates()
	if err != nil {
		return err
	}
	r.SetHTMLTemplate(tmpl)

	p := &pages{loc: loc, md: md}
	g := r.Group("/", gate)
	g.GET("/", p.index)
	g.GET("/docker/:colecao", p.docker)
	g.GET("/cve-list/:colecao", p.cveList)
	g.GET("/resumo/:colecao/:id", p.resumo)
	return nil
}

func username(c *gin.Context) string {
	if claims, ok := middleware.ClaimsFrom(c); ok {
		if claims.Name != "" {
			return claims.Name
		}
		return claims.Username
	}
	return ""
}

func storeUnavailable(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(StoreUnavailableHTML))
}

func cveListURL(collection string) string {
	return "/cve-list/" + url.PathEscape(collection)
}

func (p *pages) index(c *gin.Context) {
	names, err := p.loc.Collections(c.Request.Context())
	if err != nil {
		names = []string{}
	}
	c.HTML(http.StatusOK, "index.html", gin.H{"user": username(c), "collections": names})
}

func (p *pages) docker(c *gin.Context) {
	collection := c.Param("colecao")
	doc, found, err := p.loc.ContainerAnalysis(c.Request.Context(), collection)
	if err != nil {
		storeUnavailable(c)
		return
	}
	analysis := render.AnalysisPending
	if found {
		analysis = p.md.Field(doc, report.ContainerAnalysisContentPath, render.AnalysisUnavailable)
	}
	c.HTML(http.StatusOK, "docker.html", gin.H{"user": username(c), "collection": collection, "analysis_html": analysis})
}

func (p *pages) cveList(c *gin.Context) {
	collection := c.Param("colecao")
	page, err := p.loc.CVEs(c.Request.Context(), collection, service.ParsePage(c.Query("page")))
	if err != nil {
		storeUnavailable(c)
		return
	}
	c.HTML(http.StatusOK, "cve.html", gin.H{
		"user":        username(c),
		"collection":  collection,
		"documents":   page.Documents,
		"page":        page.Page,
		"total_pages": page.TotalPages,
		"total_cves":  page.TotalCVEs,
	})
}

// resumo never fails visibly: unparseable ids, missing documents and store
// errors all send the user back to the collection's CVE list.
func (p *pages) resumo(c *gin.Context) {
	collection := c.Param("colecao")
	doc, found, err := p.loc.CVE(c.Request.Context(), collection, c.Param("id"))
	if err != nil || !found {
		c.Redirect(http.StatusFound, cveListURL(collection))
		return
	}
	c.HTML(http.StatusOK, "relatorio.html", gin.H{
		"user":         username(c),
		"collection":   collection,
		"doc":          doc,
		"content_html": p.md.Field(doc, report.CVEReportContentPath, render.CVEReportUnavailable),
	})
}
