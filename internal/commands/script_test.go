package commands

import (
	"strings"
	"testing"

	"github.com/diogo/optchat/internal/dispatch"
)

func TestScriptCommand_Raw(t *testing.T) {
	env := newTestEnv("")
	if err := env.run("script", "--raw"); err != nil {
		t.Fatal(err)
	}
	out := env.out.String()

	for _, want := range []string{
		"# Response script",
		"## Greeting",
		"> チャットサポートへようこそ！ご質問は何でしょうか？",
		"Options (horizontal):",
		"### 注文に関するご質問",
		"Options (vertical):",
		"### その他",
		"`{option}`",
		"> サンプル画像URL: https://sample-img-url/test.jpg",
		"*回答を生成中...*",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestScriptCommand_RendersInTerminal(t *testing.T) {
	env := newTestEnv("")
	env.deps.IsTerminal = func() bool { return true }

	if err := env.run("script"); err != nil {
		t.Fatal(err)
	}
	out := env.out.String()
	if strings.Contains(out, "# Response script") {
		t.Error("markdown headings should be rendered, not printed raw")
	}
	if !strings.Contains(out, "Response") {
		t.Error("rendered output should keep the heading text")
	}
}

func TestScriptCommand_MissingFile(t *testing.T) {
	env := newTestEnv("")
	if err := env.run("script", "--script", "/nonexistent/desk.json"); err == nil {
		t.Error("expected an error for a missing script")
	}
}

func TestDescribeTable_KeysSorted(t *testing.T) {
	md := describeTable(dispatch.DefaultTable())
	keys := dispatch.DefaultTable().Keys()

	last := -1
	for _, k := range keys {
		idx := strings.Index(md, "### "+k)
		if idx < 0 {
			t.Fatalf("missing section for %q", k)
		}
		if idx < last {
			t.Errorf("section %q out of order", k)
		}
		last = idx
	}
}
