// Package browser 提供弹出层使用的宿主环境
//
// # 概述
//
// 宿主负责打开页面并作为"活动标签页"应答弹出层的消息,
// 实现 presenter.Host 接口: QueryActiveTab / SendMessage / GetMessage。
// 每个宿主只持有一个标签页,不做多标签页协调。
//
// # 核心组件
//
// ## StaticHost
//
// 基于Colly获取页面,支持gzip/deflate/brotli解压和自定义HTTP头部。
// 页面不执行脚本,消息由进程内的 extractor.Handler 按同样的规则应答。
//
//	host := NewStaticHost(StaticOptions{WaitTime: 3, HeaderProvider: headerManager, Catalog: catalog})
//	defer host.Close()
//	err := host.Open(ctx, "https://example.com")
//
// ## DynamicHost
//
// 基于go-rod打开真实的浏览器标签页,等待加载完成后在页面内执行 extractor.PageScript。
// 脚本返回undefined表示页面不响应,SendMessage返回nil。
//
//	host := NewDynamicHost(DynamicOptions{Headless: true, WaitTime: 3, SafetyThreshold: 512})
//	defer host.Close()
//	err := host.Open(ctx, "https://example.com")
//
// ## 内存检查
//
// 启动浏览器前使用gopsutil读取系统可用内存,低于 SafetyThreshold(MB) 时返回 ErrLowMemory,
// 不启动浏览器。无法读取内存时只记录警告。
//
// # 错误处理
//
//   - 未打开页面或标签页ID不匹配: ErrNoActiveTab
//   - 页面返回4xx/5xx: 记录警告,仍然统计页面中的链接
//   - 解压失败: 记录警告,使用原始响应体
package browser
