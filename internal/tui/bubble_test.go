package tui

import (
	"strings"
	"testing"

	"github.com/diogo/optchat/internal/models"
)

func TestRenderContent_PreservesText(t *testing.T) {
	inputs := []string{
		"plain text\n  with indentation",
		"承知しました。詳しく確認して回答いたします。\nサンプル画像URL: https://sample-img-url/test.jpg\n他に質問はありますか？",
		"https://a/x.png https://b/y.gif",
	}

	for _, in := range inputs {
		want := in
		for _, url := range imageURLs(in) {
			want = strings.Replace(want, url, "🖼 "+url, 1)
		}
		if got := stripANSI(renderContent(in, -1)); got != want {
			t.Errorf("renderContent(%q)\n got  %q\n want %q", in, got, want)
		}
	}
}

func TestRenderContent_HighlightsSelected(t *testing.T) {
	in := "https://a/x.png https://b/y.gif"
	plain := renderContent(in, -1)
	selected := renderContent(in, 1)

	if stripANSI(plain) != stripANSI(selected) {
		t.Error("highlighting should not change the text")
	}
}

func TestRenderOptions_Layouts(t *testing.T) {
	options := []string{"one", "two", "three", "four"}

	vertical := models.NewAssistantMessage("pick", options, models.LayoutVertical)
	if got := len(strings.Split(renderOptions(vertical, -1, 200), "\n")); got != 12 {
		t.Errorf("vertical options should stack, got %d lines", got)
	}

	horizontal := models.NewAssistantMessage("pick", options, models.LayoutHorizontal)
	if got := len(strings.Split(renderOptions(horizontal, -1, 200), "\n")); got != 3 {
		t.Errorf("wide horizontal options should fit one row, got %d lines", got)
	}

	if got := len(strings.Split(renderOptions(horizontal, -1, 20), "\n")); got <= 3 {
		t.Errorf("narrow horizontal options should wrap, got %d lines", got)
	}

	out := stripANSI(renderOptions(horizontal, 2, 200))
	for _, o := range options {
		if !strings.Contains(out, o) {
			t.Errorf("missing option %q", o)
		}
	}
}
