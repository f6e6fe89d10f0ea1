package security

import (
	"strings"
	"testing"
)

func assertContainsAll(t *testing.T, input, got string, want []string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(got, w) {
			t.Errorf("Sanitize(%q) = %q, expected to contain %q", input, got, w)
		}
	}
}

func assertContainsNone(t *testing.T, input, got string, absent []string) {
	t.Helper()
	for _, a := range absent {
		if strings.Contains(got, a) {
			t.Errorf("Sanitize(%q) = %q, should NOT contain %q", input, got, a)
		}
	}
}

// TestSanitize_AllowedTags は許可タグが正しく通過することを検証する。
func TestSanitize_AllowedTags(t *testing.T) {
	sanitizer := NewDescriptionSanitizer()

	tests := []struct {
		name         string
		input        string
		wantContains []string
	}{
		{"pタグ", "<p>Go concurrency cheatsheet</p>", []string{"<p>Go concurrency cheatsheet</p>"}},
		{"brタグ", "line1<br>line2", []string{"<br>", "line1", "line2"}},
		{"リスト", "<ul><li>chan</li><li>select</li></ul>", []string{"<ul>", "<li>chan</li>", "</ul>"}},
		{"番号付きリスト", "<ol><li>one</li></ol>", []string{"<ol>", "<li>one</li>", "</ol>"}},
		{"引用", "<blockquote>quote</blockquote>", []string{"<blockquote>quote</blockquote>"}},
		{"コード", "<pre><code>go func() {}()</code></pre>", []string{"<pre>", "<code>", "go func() {}()"}},
		{"強調", "<strong>bold</strong> <em>italic</em>", []string{"<strong>bold</strong>", "<em>italic</em>"}},
		{"リンク", `<a href="https://github.com/dropzone/repo">repo</a>`, []string{"<a", "https://github.com/dropzone/repo", "repo", "</a>"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertContainsAll(t, tt.input, sanitizer.Sanitize(tt.input), tt.wantContains)
		})
	}
}

// TestSanitize_ForbiddenContent は禁止タグと危険な属性が除去されることを検証する。
func TestSanitize_ForbiddenContent(t *testing.T) {
	sanitizer := NewDescriptionSanitizer()

	tests := []struct {
		name         string
		input        string
		wantAbsent   []string
		wantContains []string
	}{
		{
			name:         "scriptタグ",
			input:        `<p>safe</p><script>alert('xss')</script>`,
			wantAbsent:   []string{"<script", "alert"},
			wantContains: []string{"safe"},
		},
		{
			name:       "iframeタグ",
			input:      `<iframe src="https://evil.com"></iframe>`,
			wantAbsent: []string{"<iframe", "evil.com"},
		},
		{
			name:       "styleタグ",
			input:      `<style>body{display:none}</style>`,
			wantAbsent: []string{"<style", "display:none"},
		},
		{
			name:         "divは除去され中身は残る",
			input:        `<div><p>text</p></div>`,
			wantAbsent:   []string{"<div"},
			wantContains: []string{"<p>text</p>"},
		},
		{
			name:       "imgは許可しない",
			input:      `<img src="https://example.com/a.png">`,
			wantAbsent: []string{"<img"},
		},
		{
			name:       "onclick属性",
			input:      `<p onclick="alert(1)">x</p>`,
			wantAbsent: []string{"onclick", "alert"},
		},
		{
			name:       "javascriptスキーム",
			input:      `<a href="javascript:alert(1)">x</a>`,
			wantAbsent: []string{"javascript:"},
		},
		{
			name:       "相対URL",
			input:      `<a href="/admin">x</a>`,
			wantAbsent: []string{`href="/admin"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizer.Sanitize(tt.input)
			assertContainsNone(t, tt.input, got, tt.wantAbsent)
			assertContainsAll(t, tt.input, got, tt.wantContains)
		})
	}
}

// TestSanitize_AnchorAttributes はaタグにtarget="_blank"とrelが付与されることを検証する。
func TestSanitize_AnchorAttributes(t *testing.T) {
	sanitizer := NewDescriptionSanitizer()

	input := `<a href="https://example.com" target="_self" rel="nofollow">link</a>`
	got := sanitizer.Sanitize(input)

	assertContainsAll(t, input, got, []string{`target="_blank"`, "noopener", "noreferrer"})
	assertContainsNone(t, input, got, []string{`target="_self"`})
}

// TestSanitize_PlainText はプレーンテキストがそのまま通過することを検証する。
func TestSanitize_PlainText(t *testing.T) {
	sanitizer := NewDescriptionSanitizer()

	if got := sanitizer.Sanitize(""); got != "" {
		t.Errorf("Sanitize(\"\") = %q, expected empty string", got)
	}

	input := "A printable PDF covering every Git command you need"
	if got := sanitizer.Sanitize(input); got != input {
		t.Errorf("Sanitize(%q) = %q, expected unchanged", input, got)
	}
}

// TestSanitize_Idempotent は二重サニタイズで結果が変わらないことを検証する。
func TestSanitize_Idempotent(t *testing.T) {
	sanitizer := NewDescriptionSanitizer()

	input := `<p>intro <strong>bold</strong></p><a href="https://example.com">link</a><script>x</script>`

	first := sanitizer.Sanitize(input)
	second := sanitizer.Sanitize(first)
	if first != second {
		t.Errorf("二重サニタイズで結果が変わった: 1回目=%q, 二重=%q", first, second)
	}
}
