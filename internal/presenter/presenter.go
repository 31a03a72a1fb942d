package presenter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/RecoveryAshes/linkcounter/internal/models"
	"github.com/rs/zerolog/log"
)

var (
	ErrAlreadyRequested  = errors.New("本次弹出层已发送过数据请求")
	ErrNoSnapshot        = errors.New("尚未收到页面数据")
	ErrSearchUnavailable = errors.New("没有可搜索的链接")
	ErrClosed            = errors.New("弹出层已关闭")
)

// Host 宿主环境提供的能力
// 对应浏览器扩展的 tabs.query / tabs.sendMessage / i18n.getMessage
type Host interface {
	// QueryActiveTab 返回当前窗口的活动标签页
	QueryActiveTab(ctx context.Context) (models.Tab, error)

	// SendMessage 向标签页发送消息并等待响应
	// 页面不响应时返回 nil, nil
	SendMessage(ctx context.Context, tabID string, req models.Request) (json.RawMessage, error)

	// GetMessage 按键查找界面文字
	GetMessage(key string) string
}

// View 弹出层当前视图
type View int

const (
	ViewWaiting View = iota // 等待页面数据
	ViewSummary             // 统计视图
	ViewSearch              // 搜索视图
)

func (v View) String() string {
	switch v {
	case ViewSummary:
		return "summary"
	case ViewSearch:
		return "search"
	default:
		return "waiting"
	}
}

// Options 弹出层选项
type Options struct {
	DownloadDir string // 报告保存目录 (默认:output)
}

// Presenter 一次弹出层生命周期内的状态
// 打开时创建,关闭时调用Close释放
type Presenter struct {
	host        Host
	downloadDir string

	mu        sync.Mutex
	requested bool
	closed    bool
	snapshot  *models.PageSnapshot
	body      string
	view      View
	searchDoc *goquery.Document
}

// New 创建弹出层
func New(host Host, opts Options) *Presenter {
	if opts.DownloadDir == "" {
		opts.DownloadDir = "output"
	}

	return &Presenter{
		host:        host,
		downloadDir: opts.DownloadDir,
		view:        ViewWaiting,
	}
}

// Load 向活动标签页请求数据并渲染统计视图
// 每个弹出层只发送一次请求,不设超时,由ctx控制取消
func (p *Presenter) Load(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	if p.requested {
		p.mu.Unlock()
		return ErrAlreadyRequested
	}
	p.requested = true
	p.mu.Unlock()

	tab, err := p.host.QueryActiveTab(ctx)
	if err != nil {
		return fmt.Errorf("查询活动标签页失败: %w", err)
	}

	req := models.NewRequest(models.ActionGetData)
	log.Debug().Str("request_id", req.ID).Str("tab", tab.ID).Str("url", tab.URL).Msg("请求页面数据")

	raw, err := p.host.SendMessage(ctx, tab.ID, req)
	if err != nil {
		return fmt.Errorf("发送消息失败 [%s]: %w", tab.ID, err)
	}

	p.renderData(req.ID, raw)
	return nil
}

// renderData 处理响应,非对象响应直接丢弃
func (p *Presenter) renderData(requestID string, raw json.RawMessage) {
	if !isObject(raw) {
		log.Debug().Str("request_id", requestID).Msg("响应不是对象,已忽略")
		return
	}

	var snapshot models.PageSnapshot
	if err := snapshot.FromJSON(raw); err != nil {
		log.Debug().Str("request_id", requestID).Err(err).Msg("响应无法解析,已忽略")
		return
	}
	if err := snapshot.Validate(); err != nil {
		log.Warn().Str("request_id", requestID).Err(err).Msg("页面数据计数不一致")
	}

	body := p.RenderSummary(&snapshot)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.snapshot = &snapshot
	p.body = body
	p.view = ViewSummary

	log.Info().
		Str("url", snapshot.SourceURL).
		Int("total", snapshot.Total).
		Int("internal", snapshot.InternalCount).
		Int("external", snapshot.ExternalCount).
		Msg("页面数据已渲染")
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// Snapshot 返回当前快照,未加载时为nil
func (p *Presenter) Snapshot() *models.PageSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot
}

// Body 返回当前视图的标记
func (p *Presenter) Body() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.body
}

// View 返回当前视图
func (p *Presenter) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.view
}

// Close 关闭弹出层,丢弃所有状态
func (p *Presenter) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	p.snapshot = nil
	p.body = ""
	p.searchDoc = nil
	p.view = ViewWaiting
}

func (p *Presenter) msg(key string) string {
	return p.host.GetMessage(key)
}
