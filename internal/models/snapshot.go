package models

import (
	"encoding/json"
	"fmt"
)

// LinkRecord 页面上的一个超链接
type LinkRecord struct {
	URL     string `json:"url"`   // 解析后的绝对URL
	Text    string `json:"text"`  // 元素的文本内容(不做trim)
	IsLocal bool   `json:"local"` // 链接主机名与页面主机名相同
}

// PageSnapshot 一次提取得到的页面链接快照
// 不变式: Total == len(Links) == InternalCount + ExternalCount
type PageSnapshot struct {
	SourceURL     string       `json:"url"`      // 页面地址
	Links         []LinkRecord `json:"links"`    // 按文档顺序排列的链接
	Total         int          `json:"total"`    // 链接总数
	InternalCount int          `json:"internal"` // 内部链接数
	ExternalCount int          `json:"external"` // 外部链接数
}

// NewPageSnapshot 根据链接列表构建快照并计算统计
func NewPageSnapshot(sourceURL string, links []LinkRecord) *PageSnapshot {
	if links == nil {
		links = []LinkRecord{}
	}

	snapshot := &PageSnapshot{
		SourceURL: sourceURL,
		Links:     links,
	}

	for _, link := range links {
		if link.IsLocal {
			snapshot.InternalCount++
		} else {
			snapshot.ExternalCount++
		}
	}
	snapshot.Total = len(links)

	return snapshot
}

// Validate 检查计数不变式
func (s *PageSnapshot) Validate() error {
	if s.Total != len(s.Links) {
		return fmt.Errorf("链接总数不一致: total=%d, links=%d", s.Total, len(s.Links))
	}
	if s.InternalCount+s.ExternalCount != s.Total {
		return fmt.Errorf("内外部链接数之和与总数不一致: %d+%d != %d",
			s.InternalCount, s.ExternalCount, s.Total)
	}
	if s.InternalCount < 0 || s.ExternalCount < 0 {
		return fmt.Errorf("链接计数不能为负数")
	}

	internal := 0
	for _, link := range s.Links {
		if link.IsLocal {
			internal++
		}
	}
	if internal != s.InternalCount {
		return fmt.Errorf("内部链接数与链接标记不一致: %d != %d", s.InternalCount, internal)
	}

	return nil
}

// ToJSON 序列化为JSON
func (s *PageSnapshot) ToJSON() ([]byte, error) {
	return json.Marshal(s)
}

// FromJSON 从JSON反序列化
func (s *PageSnapshot) FromJSON(data []byte) error {
	return json.Unmarshal(data, s)
}
