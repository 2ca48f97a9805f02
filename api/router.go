package api

import (
	"slices"

	"github.com/SlpAus/board-site/internal/board"
	"github.com/SlpAus/board-site/internal/platform/config"
	"github.com/SlpAus/board-site/internal/platform/health"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthPath 是健康检查的路由
const HealthPath = "/healthz"

// Route 把一个精确路径映射到处理器
type Route struct {
	Path    string
	Handler gin.HandlerFunc
}

// Routes 返回项目的路由表。表外的路径全部交给页面渲染器。
func Routes(boardHandler *board.Handler, checker *health.Checker) []Route {
	return []Route{
		{Path: board.Path, Handler: boardHandler.Serve},
		{Path: HealthPath, Handler: checker.Handle},
	}
}

// NewEngine 创建Gin引擎并注册路由表。
// 引擎本身不注册任何方法路由，全部请求经由 SetupRoutes 的分发器；
// 关闭了尾斜杠和大小写修正的重定向，所以 /board/ 和 /Board 会落到 fallback。
func NewEngine(cfg config.ServerConfig, routes []Route, fallback gin.HandlerFunc, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.HandleMethodNotAllowed = false

	r.Use(RequestID(), AccessLog(logger), Recovery(logger))
	r.Use(cors.New(corsConfig(cfg.Cors)))

	SetupRoutes(r, routes, fallback)
	return r
}

// SetupRoutes 把路由表和 fallback 装成一个分发器。
// 分发只看 URL.Path 是否与表中路径完全相等，与请求方法无关，
// 所以 PROPFIND /board 这类非标准方法同样进入留言板。
func SetupRoutes(r *gin.Engine, routes []Route, fallback gin.HandlerFunc) {
	table := make(map[string]gin.HandlerFunc, len(routes))
	for _, route := range routes {
		table[route.Path] = route.Handler
	}
	r.NoRoute(func(c *gin.Context) {
		if h, ok := table[c.Request.URL.Path]; ok {
			h(c)
			return
		}
		fallback(c)
	})
}

func corsConfig(cfg config.CorsConfig) cors.Config {
	c := cors.DefaultConfig()
	c.AllowMethods = []string{"GET", "HEAD", "OPTIONS"}
	c.ExposeHeaders = []string{"Content-Length", RequestIDHeader}
	if len(cfg.AllowedOrigins) == 0 || slices.Contains(cfg.AllowedOrigins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.AllowedOrigins
	}
	return c
}
