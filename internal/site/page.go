package site

import (
	"strings"

	"github.com/SlpAus/board-site/internal/platform/config"
)

const (
	defaultTitle       = "Click here to tweak this text however you want."
	defaultDescription = "This text is entirely editable, tailor it freely."
)

var placementLayout = map[string]string{
	"left":  "flex-col text-left lg:flex-row-reverse",
	"right": "flex-col text-left lg:flex-row",
}

// Page 是一个可渲染的 Hero 页面
type Page struct {
	Path        string
	Title       string // Markdown
	PageTitle   string // <title>，为空时取 Title 的纯文本
	Description string
	Image       string
	Placement   string // left | right
	CTA         []CTA
}

// CTA 是页面上的按钮链接
type CTA struct {
	ID      string
	Href    string
	Text    string
	Outline bool
}

// Target 外部链接在新窗口打开
func (c CTA) Target() string {
	if strings.Contains(c.Href, "http") {
		return "_blank"
	}
	return "_self"
}

func (c CTA) Class() string {
	if c.Outline {
		return "font-normal btn btn-primary btn-outline"
	}
	return "font-normal btn btn-primary"
}

// withDefaults 补全未配置的字段
func (p Page) withDefaults() Page {
	if p.Title == "" {
		p.Title = defaultTitle
	}
	if p.Description == "" {
		p.Description = defaultDescription
	}
	if _, ok := placementLayout[p.Placement]; !ok {
		p.Placement = "left"
	}
	return p
}

// Layout 是外层容器的排列方式，没有图片时居中
func (p Page) Layout() string {
	if p.Image == "" {
		return "flex-col items-center justify-center text-center"
	}
	return placementLayout[p.Placement]
}

func (p Page) ContentLayout() string {
	if p.Image == "" {
		return "flex flex-col items-center justify-center lg:max-w-3xl"
	}
	return "lg:w-1/2 lg:max-w-xl"
}

// PagesFromConfig 把配置转换为页面表。没有配置任何页面时提供默认首页。
func PagesFromConfig(cfg config.SiteConfig) []Page {
	if len(cfg.Pages) == 0 {
		return []Page{{Path: "/"}}
	}
	pages := make([]Page, 0, len(cfg.Pages))
	for _, pc := range cfg.Pages {
		p := Page{
			Path:        pc.Path,
			Title:       pc.Title,
			PageTitle:   pc.PageTitle,
			Description: pc.Description,
			Image:       pc.Image,
			Placement:   pc.Placement,
		}
		for _, c := range pc.CTA {
			p.CTA = append(p.CTA, CTA{ID: c.ID, Href: c.Href, Text: c.Text, Outline: c.Outline})
		}
		pages = append(pages, p)
	}
	return pages
}
