package textnorm

import (
	"math"
	"testing"
)

func TestStripMarkup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{name: "empty", input: "", expect: ""},
		{name: "plain text untouched", input: "청년 창업 지원", expect: "청년 창업 지원"},
		{name: "tags removed", input: "<p>지원<b>대상</b></p>", expect: "지원 대상"},
		{
			name:   "script and style removed with content",
			input:  `<style>.a{color:red}</style>본문<script type="text/javascript">alert('x')</script>끝`,
			expect: "본문 끝",
		},
		{name: "common entities decoded", input: "R&amp;D &quot;지원&quot; &#39;기업&#39;", expect: `R&D "지원" '기업'`},
		{name: "nbsp and unknown entities become spaces", input: "최대&nbsp;1억원&middot;보조", expect: "최대 1억원 보조"},
		{name: "escaped markup does not survive", input: "&lt;b&gt;굵게&lt;/b&gt;", expect: "굵게"},
		{name: "whitespace collapsed", input: "  a \n\t b  ", expect: "a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := StripMarkup(tt.input); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestStripMarkupIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"<div><p>사업 개요</p><script>var a = '<b>';</script></div>",
		"&amp;lt;script&amp;gt;x&amp;lt;/script&amp;gt;",
		"&lt;p&gt;문단&lt;/p&gt; &amp;amp;",
		"<<b>>중첩<</b>>",
		"a\t\tb",
	}

	for _, input := range inputs {
		once := StripMarkup(input)
		if twice := StripMarkup(once); twice != once {
			t.Fatalf("not idempotent for %q: %q then %q", input, once, twice)
		}
		if markupTag.MatchString(once) {
			t.Fatalf("tag survived in %q", once)
		}
	}
}

func TestMatchKeyword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		text    string
		keyword string
		expect  bool
	}{
		{name: "acronym inside word", text: "ITEMS launched", keyword: "IT", expect: false},
		{name: "acronym followed by space", text: "IT 분야", keyword: "IT", expect: true},
		{name: "acronym case-insensitive", text: "국내 ai 스타트업", keyword: "AI", expect: true},
		{name: "acronym in brackets", text: "지원분야(ICT)", keyword: "ict", expect: true},
		{name: "acronym with middle dot", text: "바이오·ESG 분야", keyword: "ESG", expect: true},
		{name: "acronym inside hangul word", text: "스마트IT기업", keyword: "IT", expect: false},
		{name: "long keyword substring", text: "클라우드컴퓨팅 기업", keyword: "클라우드", expect: true},
		{name: "four letter word is substring", text: "SaaS기반", keyword: "saas", expect: true},
		{name: "empty keyword", text: "anything", keyword: " ", expect: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := MatchKeyword(tt.text, tt.keyword); got != tt.expect {
				t.Fatalf("MatchKeyword(%q, %q) = %v, want %v", tt.text, tt.keyword, got, tt.expect)
			}
		})
	}
}

func TestKeywordCoverage(t *testing.T) {
	t.Parallel()

	keywords := []string{"AI", "플랫폼", "데이터", "클라우드", "핀테크", "블록체인", "SaaS", "앱", "웹", "솔루션"}

	if got := KeywordCoverage("", keywords); got != 0 {
		t.Fatalf("expected 0 for empty text, got %v", got)
	}
	if got := KeywordCoverage("AI 플랫폼", nil); got != 0 {
		t.Fatalf("expected 0 for empty keywords, got %v", got)
	}

	// 10 keywords need 3 matches for a full score.
	if got := KeywordCoverage("<p>AI 플랫폼 기업</p>", keywords); math.Abs(got-2.0/3.0) > 1e-9 {
		t.Fatalf("expected 2/3 coverage, got %v", got)
	}
	if got := KeywordCoverage("AI 플랫폼 데이터 클라우드", keywords); got != 1 {
		t.Fatalf("expected coverage capped at 1, got %v", got)
	}
	// A single keyword needs a single match.
	if got := KeywordCoverage("데이터 바우처", []string{"데이터"}); got != 1 {
		t.Fatalf("expected full coverage for one keyword, got %v", got)
	}
}

func TestMatchedKeywords(t *testing.T) {
	t.Parallel()

	got := MatchedKeywords("<b>IT</b> 기반 플랫폼 ITEMS", []string{"플랫폼", "IT", "커머스"})
	if len(got) != 2 || got[0] != "플랫폼" || got[1] != "IT" {
		t.Fatalf("unexpected matches: %v", got)
	}
}
