package server

import (
	"BikeSharingDashboard/src/dashboard"
	"BikeSharingDashboard/src/processor"
	"BikeSharingDashboard/src/render"
	"BikeSharingDashboard/src/storage"
	"BikeSharingDashboard/src/utils"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type handler struct {
	store  *dashboard.Store
	logger *storage.Logger
}

// session 取当前会话和请求中的区间，出错时已写好响应
func (h *handler) session(c *gin.Context) (*dashboard.Session, processor.DateRange, bool) {
	s := h.store.Get()
	if s == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "数据尚未加载"})
		return nil, processor.DateRange{}, false
	}
	r, err := dashboard.ResolveRange(c.Query("start"), c.Query("end"), s.Bounds())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, processor.DateRange{}, false
	}
	return s, r, true
}

func (h *handler) page(c *gin.Context) {
	s, r, ok := h.session(c)
	if !ok {
		return
	}
	v, err := s.Refresh(r)
	if err != nil {
		h.fail(c, err)
		return
	}

	var buf bytes.Buffer
	if err := dashboard.WritePage(&buf, v); err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (h *handler) summary(c *gin.Context) {
	s, r, ok := h.session(c)
	if !ok {
		return
	}
	sums := s.Summaries(r)
	c.JSON(http.StatusOK, gin.H{
		"summaries": sums,
		"totals":    sums.Totals(),
		"metrics":   sums.CalculateMetrics(),
	})
}

func (h *handler) chartPNG(c *gin.Context) {
	name, ok := strings.CutSuffix(c.Param("file"), ".png")
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "只支持png"})
		return
	}
	s, r, ok := h.session(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	err := render.WritePNG(name, s.Summaries(r), &buf)
	switch {
	case errors.Is(err, render.ErrUnknownChart):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, render.ErrNoData):
		c.Status(http.StatusNoContent)
	case err != nil:
		h.fail(c, err)
	default:
		c.Data(http.StatusOK, "image/png", buf.Bytes())
	}
}

func (h *handler) exportXLSX(c *gin.Context) {
	s, r, ok := h.session(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := utils.WriteExcel(s.Summaries(r).Sheets(), &buf); err != nil {
		h.fail(c, err)
		return
	}
	filename := fmt.Sprintf("bike-summary-%s-%s.xlsx",
		r.Start.Format("20060102"), r.End.Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// logs 实时输出日志，客户端断开后取消订阅
func (h *handler) logs(c *gin.Context) {
	sub := h.logger.Subscribe()
	defer h.logger.Unsubscribe(sub)

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		select {
		case entry, ok := <-sub:
			if !ok {
				return false
			}
			_, err := io.WriteString(w, entry)
			return err == nil
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (h *handler) fail(c *gin.Context, err error) {
	h.logger.Error(fmt.Sprintf("处理请求失败 %s: %v", c.Request.URL.Path, err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
