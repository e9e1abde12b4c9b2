package security

import (
	"strings"
	"testing"
)

// TestSanitize_RemovesScriptTags はscriptタグが除去されることをテストする。
func TestSanitize_RemovesScriptTags(t *testing.T) {
	s := NewContentSanitizer()

	got := s.Sanitize(`<p>こんにちは</p><script>alert("xss")</script>`)

	if strings.Contains(got, "<script") {
		t.Errorf("sanitized output contains script tag: %q", got)
	}
	if !strings.Contains(got, "<p>こんにちは</p>") {
		t.Errorf("sanitized output lost allowed content: %q", got)
	}
}

// TestSanitize_RemovesEventAttributes はon*イベント属性が除去されることをテストする。
func TestSanitize_RemovesEventAttributes(t *testing.T) {
	s := NewContentSanitizer()

	got := s.Sanitize(`<p onclick="steal()">テキスト</p>`)

	if strings.Contains(got, "onclick") {
		t.Errorf("sanitized output contains event attribute: %q", got)
	}
}

// TestSanitize_AllowsBasicFormatting は許可タグが通過することをテストする。
func TestSanitize_AllowsBasicFormatting(t *testing.T) {
	s := NewContentSanitizer()

	input := `<p><strong>太字</strong>と<em>斜体</em></p><ul><li>項目</li></ul>`
	got := s.Sanitize(input)

	for _, tag := range []string{"<strong>", "<em>", "<ul>", "<li>"} {
		if !strings.Contains(got, tag) {
			t.Errorf("sanitized output lost allowed tag %s: %q", tag, got)
		}
	}
}

// TestSanitize_HTTPSOnlyImages はhttpスキームの画像が除去され、
// httpsの画像が通過することをテストする。
func TestSanitize_HTTPSOnlyImages(t *testing.T) {
	s := NewContentSanitizer()

	httpsImg := s.Sanitize(`<img src="https://example.com/a.png" alt="作品">`)
	if !strings.Contains(httpsImg, "https://example.com/a.png") {
		t.Errorf("https image should survive: %q", httpsImg)
	}

	httpImg := s.Sanitize(`<img src="http://example.com/a.png">`)
	if strings.Contains(httpImg, "http://example.com/a.png") {
		t.Errorf("http image should be removed: %q", httpImg)
	}
}

// TestSanitize_AddsSafeLinkAttributes は外部リンクに安全属性が
// 付与されることをテストする。
func TestSanitize_AddsSafeLinkAttributes(t *testing.T) {
	s := NewContentSanitizer()

	got := s.Sanitize(`<a href="https://example.com/">リンク</a>`)

	if !strings.Contains(got, `target="_blank"`) {
		t.Errorf("expected target=_blank: %q", got)
	}
	if !strings.Contains(got, "noreferrer") {
		t.Errorf("expected noreferrer rel: %q", got)
	}
}

// TestSanitize_EmptyInput は空入力に空出力が返ることをテストする。
func TestSanitize_EmptyInput(t *testing.T) {
	s := NewContentSanitizer()
	if got := s.Sanitize(""); got != "" {
		t.Errorf("Sanitize(\"\") = %q, want empty", got)
	}
}

// TestSanitize_Idempotent は同一入力に対して常に同一出力を返すことをテストする。
func TestSanitize_Idempotent(t *testing.T) {
	s := NewContentSanitizer()

	input := `<p>作品の<strong>紹介</strong></p><script>x()</script>`
	first := s.Sanitize(input)
	second := s.Sanitize(first)

	if first != second {
		t.Errorf("Sanitize is not idempotent: %q vs %q", first, second)
	}
}
