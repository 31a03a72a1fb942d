package extractor

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/RecoveryAshes/linkcounter/internal/models"
)

func mustDoc(t *testing.T, content string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		t.Fatalf("解析HTML失败: %v", err)
	}
	return doc
}

func TestCollectLinks_Classification(t *testing.T) {
	pageURL := "https://example.com/path/"

	testCases := []struct {
		name      string
		html      string
		wantURL   string
		wantLocal bool
	}{
		{"根路径链接", `<a href="/about">About</a>`, "https://example.com/about", true},
		{"相对路径链接", `<a href="contact.html">Contact</a>`, "https://example.com/path/contact.html", true},
		{"外部链接", `<a href="https://google.com/search">Google</a>`, "https://google.com/search", false},
		{"子域名为外部链接", `<a href="https://sub.example.com/page">Sub</a>`, "https://sub.example.com/page", false},
		{"片段链接", `<a href="#top">Top</a>`, "https://example.com/path/#top", true},
		{"空href指向当前页", `<a href="">Self</a>`, "https://example.com/path/", true},
		{"mailto链接无主机名", `<a href="mailto:test@example.com">Mail</a>`, "mailto:test@example.com", false},
		{"协议相对链接", `<a href="//example.com/x">X</a>`, "https://example.com/x", true},
		{"area元素", `<map><area href="/area" alt="a"></map>`, "https://example.com/area", true},
		{"无效href保留原值", `<a href="http://a b.com/">Invalid</a>`, "http://a b.com/", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			snapshot, err := CollectLinks(mustDoc(t, tc.html), pageURL)
			if err != nil {
				t.Fatalf("CollectLinks() error = %v", err)
			}
			if len(snapshot.Links) != 1 {
				t.Fatalf("期望1个链接, 得到 %d", len(snapshot.Links))
			}

			link := snapshot.Links[0]
			if link.URL != tc.wantURL {
				t.Errorf("URL = %q, want %q", link.URL, tc.wantURL)
			}
			if link.IsLocal != tc.wantLocal {
				t.Errorf("IsLocal = %v, want %v", link.IsLocal, tc.wantLocal)
			}
		})
	}
}

func TestCollectLinks_HostnameIgnoresPortAndCase(t *testing.T) {
	snapshot, err := CollectLinks(mustDoc(t, `<a href="https://EXAMPLE.com:8443/p">P</a>`), "https://example.com/")
	if err != nil {
		t.Fatalf("CollectLinks() error = %v", err)
	}
	if !snapshot.Links[0].IsLocal {
		t.Error("主机名相同(端口不同)的链接应为内部链接")
	}
}

func TestCollectLinks_HrefNormalization(t *testing.T) {
	pageURL := "https://example.com/"

	testCases := []struct {
		name      string
		html      string
		wantURL   string
		wantLocal bool
	}{
		{"href中的换行", "<a href=\"https://example.com/docs/\nintro\">Intro</a>", "https://example.com/docs/intro", true},
		{"href中的制表符", `<a href="https://example.com/a&#9;b">Tab</a>`, "https://example.com/ab", true},
		{"首尾空白", "<a href=\"\t /about\n \">About</a>", "https://example.com/about", true},
		{"主机名转小写并补根路径", `<a href="HTTP://Example.COM">Home</a>`, "http://example.com/", true},
		{"外部主机补根路径", `<a href="https://Golang.org">Go</a>`, "https://golang.org/", false},
		{"保留端口", `<a href="https://EXAMPLE.com:8443">Port</a>`, "https://example.com:8443/", true},
		{"有查询参数时补根路径", `<a href="https://example.com?q=1">Q</a>`, "https://example.com/?q=1", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			snapshot, err := CollectLinks(mustDoc(t, tc.html), pageURL)
			if err != nil {
				t.Fatalf("CollectLinks() error = %v", err)
			}
			if len(snapshot.Links) != 1 {
				t.Fatalf("期望1个链接, 得到 %d", len(snapshot.Links))
			}

			link := snapshot.Links[0]
			if link.URL != tc.wantURL {
				t.Errorf("URL = %q, want %q", link.URL, tc.wantURL)
			}
			if link.IsLocal != tc.wantLocal {
				t.Errorf("IsLocal = %v, want %v", link.IsLocal, tc.wantLocal)
			}
		})
	}
}

func TestCollectLinks_OnlyDocumentLinks(t *testing.T) {
	testCases := []struct {
		name      string
		html      string
		wantTotal int
		wantTexts []string
	}{
		{
			name:      "跳过template内容",
			html:      `<a href="/a">A</a><template><a href="https://x.com/">T</a></template>`,
			wantTotal: 1,
			wantTexts: []string{"A"},
		},
		{
			name:      "跳过SVG中的a元素",
			html:      `<svg><a href="https://x.com/">S</a></svg><a href="/b">B</a>`,
			wantTotal: 1,
			wantTexts: []string{"B"},
		},
		{
			name:      "template之后的链接仍然统计",
			html:      `<template><a href="/t">T</a></template><p><a href="/c">C</a></p>`,
			wantTotal: 1,
			wantTexts: []string{"C"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			snapshot, err := CollectLinks(mustDoc(t, tc.html), "https://example.com/")
			if err != nil {
				t.Fatalf("CollectLinks() error = %v", err)
			}
			if snapshot.Total != tc.wantTotal {
				t.Fatalf("Total = %d, want %d", snapshot.Total, tc.wantTotal)
			}
			for i, want := range tc.wantTexts {
				if snapshot.Links[i].Text != want {
					t.Errorf("第%d个链接文本 = %q, want %q", i, snapshot.Links[i].Text, want)
				}
			}
		})
	}
}

func TestCollectLinks_SkipsAnchorsWithoutHref(t *testing.T) {
	content := `<a name="top">Top</a><a href="/a">A</a><link href="/style.css"><a>Plain</a>`

	snapshot, err := CollectLinks(mustDoc(t, content), "https://example.com/")
	if err != nil {
		t.Fatalf("CollectLinks() error = %v", err)
	}
	if snapshot.Total != 1 {
		t.Errorf("Total = %d, want 1", snapshot.Total)
	}
}

func TestCollectLinks_TextNotTrimmed(t *testing.T) {
	content := `<a href="/x">  Hello <b>World</b>  </a>`

	snapshot, err := CollectLinks(mustDoc(t, content), "https://example.com/")
	if err != nil {
		t.Fatalf("CollectLinks() error = %v", err)
	}
	if got := snapshot.Links[0].Text; got != "  Hello World  " {
		t.Errorf("Text = %q, want %q", got, "  Hello World  ")
	}
}

func TestCollectLinks_BaseElement(t *testing.T) {
	content := `<html><head><base href="https://cdn.example.org/assets/"></head>
		<body><a href="img.png">img</a><a href="https://example.com/home">home</a></body></html>`

	snapshot, err := CollectLinks(mustDoc(t, content), "https://example.com/")
	if err != nil {
		t.Fatalf("CollectLinks() error = %v", err)
	}

	if snapshot.Links[0].URL != "https://cdn.example.org/assets/img.png" {
		t.Errorf("URL = %q", snapshot.Links[0].URL)
	}
	if snapshot.Links[0].IsLocal {
		t.Error("base指向其他主机时链接应为外部链接")
	}
	if !snapshot.Links[1].IsLocal {
		t.Error("绝对地址指向本站时应为内部链接")
	}
}

func TestCollectLinks_OrderAndCounts(t *testing.T) {
	content := `
		<nav><a href="/1">one</a><a href="https://a.org/2">two</a></nav>
		<main><p><a href="/3">three</a></p><a href="https://b.org/4">four</a></main>
		<footer><a href="/5">five</a></footer>`

	snapshot, err := CollectLinks(mustDoc(t, content), "https://example.com/")
	if err != nil {
		t.Fatalf("CollectLinks() error = %v", err)
	}

	wantTexts := []string{"one", "two", "three", "four", "five"}
	for i, want := range wantTexts {
		if snapshot.Links[i].Text != want {
			t.Errorf("第%d个链接文本 = %q, want %q", i, snapshot.Links[i].Text, want)
		}
	}

	if snapshot.Total != len(snapshot.Links) || snapshot.Total != snapshot.InternalCount+snapshot.ExternalCount {
		t.Errorf("计数不变式被破坏: %+v", snapshot)
	}
	if snapshot.InternalCount != 3 || snapshot.ExternalCount != 2 {
		t.Errorf("internal=%d external=%d, want 3/2", snapshot.InternalCount, snapshot.ExternalCount)
	}
	if err := snapshot.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestCollectLinks_EmptyDocument(t *testing.T) {
	snapshot, err := CollectLinks(mustDoc(t, ``), "https://example.com/")
	if err != nil {
		t.Fatalf("CollectLinks() error = %v", err)
	}
	if snapshot.Total != 0 || len(snapshot.Links) != 0 {
		t.Errorf("空文档应没有链接: %+v", snapshot)
	}
	if snapshot.SourceURL != "https://example.com/" {
		t.Errorf("SourceURL = %q", snapshot.SourceURL)
	}
}

func TestCollectLinks_InvalidPageURL(t *testing.T) {
	if _, err := CollectLinks(mustDoc(t, `<a href="/x">x</a>`), "http://a b.com/"); err == nil {
		t.Error("页面URL无效时应返回错误")
	}
}

func TestCollectLinksFromHTML(t *testing.T) {
	snapshot, err := CollectLinksFromHTML(strings.NewReader(`<a href="/a">a</a><a href="https://x.io/">x</a>`), "http://example.com")
	if err != nil {
		t.Fatalf("CollectLinksFromHTML() error = %v", err)
	}
	if snapshot.InternalCount != 1 || snapshot.ExternalCount != 1 {
		t.Errorf("internal=%d external=%d, want 1/1", snapshot.InternalCount, snapshot.ExternalCount)
	}
}

func TestHandler_HandleMessage(t *testing.T) {
	handler, err := NewHandler(mustDoc(t, `<a href="/a">a</a>`), "https://example.com/")
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	t.Run("get-data返回快照", func(t *testing.T) {
		snapshot, ok := handler.HandleMessage(models.NewRequest(models.ActionGetData))
		if !ok {
			t.Fatal("期望响应")
		}
		if snapshot.Total != 1 {
			t.Errorf("Total = %d, want 1", snapshot.Total)
		}
	})

	t.Run("未知动作不响应", func(t *testing.T) {
		snapshot, ok := handler.HandleMessage(models.Request{Action: "get-links"})
		if ok || snapshot != nil {
			t.Error("未知动作不应有响应")
		}
	})

	t.Run("空动作不响应", func(t *testing.T) {
		if _, ok := handler.HandleMessage(models.Request{}); ok {
			t.Error("空动作不应有响应")
		}
	})
}

func TestNewHandler_Errors(t *testing.T) {
	if _, err := NewHandler(nil, "https://example.com/"); err == nil {
		t.Error("文档为空时应返回错误")
	}
	if _, err := NewHandler(mustDoc(t, ``), "http://a b.com/"); err == nil {
		t.Error("页面URL无效时应返回错误")
	}
}

func TestPageScript_IgnoresOtherActions(t *testing.T) {
	if !strings.Contains(PageScript, "'get-data'") {
		t.Error("页面脚本应检查get-data动作")
	}
	if !strings.Contains(PageScript, "document.links") {
		t.Error("页面脚本应遍历document.links")
	}
}
