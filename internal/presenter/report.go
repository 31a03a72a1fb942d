package presenter

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/RecoveryAshes/linkcounter/internal/i18n"
	"github.com/RecoveryAshes/linkcounter/internal/models"
	"github.com/rs/zerolog/log"
)

const (
	MimeText = "text/plain"
	MimeCSV  = "text/csv"
)

// whitespaceRun 匹配2个及以上连续空白(含Unicode空格)
var whitespaceRun = regexp.MustCompile(`[\s\x0B\p{Zs}\x{FEFF}\x{2028}\x{2029}]{2,}`)

// FormatReport 生成报告内容
//
// 格式: 三行统计(标签: 数量),空一行后每行一个链接。
// 文本模式只输出URL; CSV模式输出 "URL";"TEXT",TEXT中的连续空白压缩为一个空格。
// 字段内的双引号不做转义。
func (p *Presenter) FormatReport(snapshot *models.PageSnapshot, asCSV bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %d\n", p.msg(i18n.KeyTotal), snapshot.Total)
	fmt.Fprintf(&sb, "%s: %d\n", p.msg(i18n.KeyInternal), snapshot.InternalCount)
	fmt.Fprintf(&sb, "%s: %d\n", p.msg(i18n.KeyExternal), snapshot.ExternalCount)

	for _, link := range snapshot.Links {
		sb.WriteString("\n")

		if asCSV {
			sb.WriteString(`"` + link.URL + `"`)
			sb.WriteString(";")
			sb.WriteString(`"` + whitespaceRun.ReplaceAllString(link.Text, " ") + `"`)
		} else {
			sb.WriteString(link.URL)
		}
	}

	return sb.String()
}

// TriggerDownload 将内容保存为下载目录中的文件
// 任何失败都只通过返回false报告
func (p *Presenter) TriggerDownload(content, filename, mimeType string) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Interface("panic", r).Str("file", filename).Msg("保存报告时发生panic")
			ok = false
		}
	}()

	if filename == "" || filepath.Base(filename) != filename {
		log.Warn().Str("file", filename).Msg("无效的报告文件名")
		return false
	}

	if _, _, err := mime.ParseMediaType(mimeType); err != nil {
		log.Warn().Str("mime", mimeType).Err(err).Msg("无效的文件类型")
		return false
	}

	if err := os.MkdirAll(p.downloadDir, 0755); err != nil {
		log.Warn().Err(err).Str("dir", p.downloadDir).Msg("创建下载目录失败")
		return false
	}

	path := filepath.Join(p.downloadDir, filename)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		log.Warn().Err(err).Str("file", path).Msg("保存报告失败")
		return false
	}

	log.Info().Str("file", path).Str("mime", mimeType).Int("size", len(content)).Msg("报告已保存")
	return true
}

// ExportText 导出文本报告
func (p *Presenter) ExportText() bool {
	return p.export(false)
}

// ExportCSV 导出CSV报告
func (p *Presenter) ExportCSV() bool {
	return p.export(true)
}

func (p *Presenter) export(asCSV bool) bool {
	snapshot := p.Snapshot()
	if snapshot == nil {
		log.Warn().Msg("没有可导出的页面数据")
		return false
	}

	ext, mimeType := ".txt", MimeText
	if asCSV {
		ext, mimeType = ".csv", MimeCSV
	}

	return p.TriggerDownload(p.FormatReport(snapshot, asCSV), p.msg(i18n.KeyReportName)+ext, mimeType)
}

// ReportPath 返回报告文件的保存路径
func (p *Presenter) ReportPath(asCSV bool) string {
	ext := ".txt"
	if asCSV {
		ext = ".csv"
	}
	return filepath.Join(p.downloadDir, p.msg(i18n.KeyReportName)+ext)
}
