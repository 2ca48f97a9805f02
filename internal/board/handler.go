package board

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 是 /board 路由的HTTP入口
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// Serve 处理 /board 的所有请求。
//
//   - 没有存储: 200 纯文本诊断信息，不访问存储
//   - GET 且带 txt 参数（包括空值）: 更新后 302 跳回 /board
//   - 其他情况: 200 纯文本返回当前留言，禁止任何缓存
//
// 非GET方法即使带了 txt 也走读取分支。
func (h *Handler) Serve(c *gin.Context) {
	if !h.svc.Available() {
		c.String(http.StatusOK, NoStoreMessage)
		return
	}

	raw, hasTxt := c.GetQuery(QueryParam)
	if hasTxt && c.Request.Method == http.MethodGet {
		if _, err := h.svc.Update(c.Request.Context(), raw); err != nil {
			h.fail(c, err)
			return
		}
		c.Redirect(http.StatusFound, requestOrigin(c.Request)+Path)
		return
	}

	msg, err := h.svc.Current(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
	c.String(http.StatusOK, msg)
}

func (h *Handler) fail(c *gin.Context, err error) {
	h.logger.Error("/board 请求失败", zap.Error(err))
	c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

// requestOrigin 还原请求的 scheme://host
func requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}
