// Package i18n 提供界面文字的按键查找
//
// 消息文件采用浏览器扩展的 _locales/<lang>/messages.json 格式,编译时嵌入。
// 语言协商使用 golang.org/x/text/language,无法匹配时回退到英文。
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// 界面文字的键
const (
	KeyTotal      = "total"
	KeyInternal   = "internal"
	KeyExternal   = "external"
	KeyExportTXT  = "exportTXT"
	KeyExportCSV  = "exportCSV"
	KeySearch     = "search"
	KeyURL        = "url"
	KeyText       = "text"
	KeyReportName = "reportName"
)

//go:embed locales/*/messages.json
var localeFS embed.FS

// supported 与 localeDirs 一一对应,第一个为默认语言
var (
	supported  = []language.Tag{language.English, language.SimplifiedChinese}
	localeDirs = []string{"en", "zh_CN"}
	matcher    = language.NewMatcher(supported)
)

type message struct {
	Message     string `json:"message"`
	Description string `json:"description,omitempty"`
}

// Catalog 单一语言的消息表
type Catalog struct {
	tag      language.Tag
	messages map[string]string
}

// Load 按语言标识加载消息表
// 支持 "zh_CN" / "zh-CN" 两种写法,空值使用英文
func Load(locale string) (*Catalog, error) {
	idx := 0
	if locale = strings.TrimSpace(locale); locale != "" {
		tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
		if err != nil {
			return nil, fmt.Errorf("无效的语言标识 [%s]: %w", locale, err)
		}
		_, idx, _ = matcher.Match(tag)
	}

	path := "locales/" + localeDirs[idx] + "/messages.json"
	data, err := localeFS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取消息文件失败 [%s]: %w", path, err)
	}

	var raw map[string]message
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("解析消息文件失败 [%s]: %w", path, err)
	}

	messages := make(map[string]string, len(raw))
	for key, msg := range raw {
		messages[key] = msg.Message
	}

	return &Catalog{
		tag:      supported[idx],
		messages: messages,
	}, nil
}

// GetMessage 按键查找文字,未知键返回空字符串
func (c *Catalog) GetMessage(key string) string {
	return c.messages[key]
}

// Tag 返回实际使用的语言
func (c *Catalog) Tag() language.Tag {
	return c.tag
}
