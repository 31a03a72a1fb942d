package browser

import (
	"errors"

	"github.com/RecoveryAshes/linkcounter/internal/i18n"
)

// ErrNoActiveTab 尚未打开页面或标签页已关闭
var ErrNoActiveTab = errors.New("没有活动标签页")

// messages 界面文字查找,两种宿主共用
type messages struct {
	catalog *i18n.Catalog
}

// GetMessage 按键查找界面文字
func (m messages) GetMessage(key string) string {
	if m.catalog == nil {
		return ""
	}
	return m.catalog.GetMessage(key)
}
