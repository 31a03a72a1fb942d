package models

// Action 消息动作标识
type Action string

const (
	// ActionGetData 请求当前页面数据
	ActionGetData Action = "get-data"
)

// Request 弹出层发往页面的请求消息
type Request struct {
	ID     string `json:"id,omitempty"` // 请求ID,仅用于日志关联
	Action Action `json:"action"`
}

// NewRequest 创建带唯一ID的请求
func NewRequest(action Action) Request {
	return Request{
		ID:     generateID(),
		Action: action,
	}
}

// Tab 宿主环境中的标签页
type Tab struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Title  string `json:"title"`
	Active bool   `json:"active"`
}
