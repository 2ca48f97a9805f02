// Package site 渲染 /board 以外的所有页面。
package site

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"runtime"
	"strings"

	"github.com/SlpAus/board-site/pkg/platform"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"go.uber.org/zap"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Diagnostics 显示在 Hero 区块中的运行环境信息
type Diagnostics struct {
	Runtime  string // Go/<version> <os>/<arch>
	Platform string
}

type heroView struct {
	Title         template.HTML
	Description   string
	Image         string
	Layout        string
	ContentLayout string
	CTA           []CTA
}

type pageView struct {
	PageTitle   string
	Hero        heroView
	Diagnostics Diagnostics
}

type renderedPage struct {
	page      Page
	title     template.HTML
	pageTitle string
}

// Renderer 按精确路径查找页面并输出HTML
type Renderer struct {
	tmpl   *template.Template
	pages  map[string]renderedPage
	diag   Diagnostics
	logger *zap.Logger
}

// NewRenderer 解析模板并预先把标题的 Markdown 转为 HTML。
// 页面来自运营配置，标题中的原始HTML会原样输出。
func NewRenderer(pages []Page, logger *zap.Logger) (*Renderer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	tmpl, err := template.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("解析页面模板失败: %w", err)
	}

	md := goldmark.New(goldmark.WithRendererOptions(html.WithUnsafe()))
	r := &Renderer{
		tmpl:  tmpl,
		pages: make(map[string]renderedPage, len(pages)),
		diag: Diagnostics{
			Runtime:  runtimeID(),
			Platform: platform.Current().String(),
		},
		logger: logger,
	}
	for _, p := range pages {
		if _, dup := r.pages[p.Path]; dup {
			return nil, fmt.Errorf("页面路径重复: %s", p.Path)
		}
		p = p.withDefaults()
		var buf bytes.Buffer
		if err := md.Convert([]byte(p.Title), &buf); err != nil {
			return nil, fmt.Errorf("渲染页面 %s 的标题失败: %w", p.Path, err)
		}
		pageTitle := p.PageTitle
		if pageTitle == "" {
			pageTitle = plainText(md, []byte(p.Title))
		}
		r.pages[p.Path] = renderedPage{page: p, title: template.HTML(buf.String()), pageTitle: pageTitle}
	}
	return r, nil
}

// Handle 是路由表之外所有请求的兜底处理器
func (r *Renderer) Handle(c *gin.Context) {
	rp, ok := r.pages[c.Request.URL.Path]
	if !ok {
		c.Render(http.StatusNotFound, render.HTML{
			Template: r.tmpl,
			Name:     "not_found",
			Data:     gin.H{"Path": c.Request.URL.Path},
		})
		return
	}

	view := pageView{
		PageTitle: rp.pageTitle,
		Hero: heroView{
			Title:         rp.title,
			Description:   rp.page.Description,
			Image:         rp.page.Image,
			Layout:        rp.page.Layout(),
			ContentLayout: rp.page.ContentLayout(),
			CTA:           rp.page.CTA,
		},
		Diagnostics: r.diag,
	}
	r.logger.Debug("渲染页面", zap.String("path", rp.page.Path))
	c.Render(http.StatusOK, render.HTML{Template: r.tmpl, Name: "page", Data: view})
}

func runtimeID() string {
	return "Go/" + runtime.Version() + " " + runtime.GOOS + "/" + runtime.GOARCH
}

// plainText 去掉 Markdown 标记，只保留文字，用作 <title>
func plainText(md goldmark.Markdown, src []byte) string {
	doc := md.Parser().Parse(text.NewReader(src))
	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock {
				b.WriteByte(' ')
			}
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Text:
			b.Write(n.Segment.Value(src))
			if n.SoftLineBreak() || n.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(n.Value)
		case *ast.AutoLink:
			b.Write(n.Label(src))
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(b.String()), " ")
}
