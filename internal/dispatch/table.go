// Package dispatch turns user actions into conversation updates: it appends
// the user entry and a placeholder, then swaps the placeholder for a canned
// response chosen from a response table.
package dispatch

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/tidwall/gjson"

	apperrors "github.com/diogo/optchat/internal/errors"
	"github.com/diogo/optchat/internal/models"
)

// OptionToken is replaced by the clicked option text in Table.FallbackFormat
const OptionToken = "{option}"

// Response describes a canned assistant reply
type Response struct {
	Content string
	Options []string
	Layout  models.Layout
}

// Message builds an assistant message from the response
func (r Response) Message() models.Message {
	return models.NewAssistantMessage(r.Content, r.Options, r.Layout)
}

// Table maps option strings to canned responses
type Table struct {
	Greeting       Response
	Placeholder    string
	Entries        map[string]Response
	FallbackFormat string
	TextResponse   Response
}

// DefaultTable returns the built-in support desk script
func DefaultTable() *Table {
	return &Table{
		Greeting: Response{
			Content: "チャットサポートへようこそ！ご質問は何でしょうか？",
			Options: []string{"注文に関するご質問", "ポイントに関するご質問", "その他"},
			Layout:  models.LayoutHorizontal,
		},
		Placeholder: "回答を生成中...",
		Entries: map[string]Response{
			"注文に関するご質問": {
				Content: "注文に関するご質問ですね。以下の中から選択してください。",
				Options: []string{"商品の検索", "カート・購入手続き", "キャンセル・変更", "その他"},
				Layout:  models.LayoutVertical,
			},
			"ポイントに関するご質問": {
				Content: "ポイントに関するご質問ですね。以下の中から選択してください。",
				Options: []string{"ポイントの確認方法", "ポイントの有効期限", "ポイントの使い方", "その他"},
				Layout:  models.LayoutHorizontal,
			},
			"その他": {
				Content: "どのような内容でしょうか？入力欄にご記入ください。",
			},
		},
		FallbackFormat: "「" + OptionToken + "」ですね。さらに詳しい内容を入力してください。",
		TextResponse: Response{
			Content: "承知しました。詳しく確認して回答いたします。\nサンプル画像URL: https://sample-img-url/test.jpg\n他に質問はありますか？",
		},
	}
}

// Lookup returns the response for an option. Unknown options get the
// fallback reply echoing the option text.
func (t *Table) Lookup(option string) Response {
	if r, ok := t.Entries[option]; ok {
		return r
	}
	return Response{Content: strings.ReplaceAll(t.FallbackFormat, OptionToken, option)}
}

// ForText returns the reply to free-text input. The text itself is not inspected.
func (t *Table) ForText(string) Response {
	return t.TextResponse
}

// Known reports whether the option has a dedicated entry
func (t *Table) Known(option string) bool {
	_, ok := t.Entries[option]
	return ok
}

// Keys returns the known options in sorted order
func (t *Table) Keys() []string {
	keys := make([]string, 0, len(t.Entries))
	for k := range t.Entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LoadTableFile reads a JSON response script from disk
func LoadTableFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read response script: %w", err)
	}

	table, err := LoadTable(data)
	if err != nil {
		var se *apperrors.ScriptError
		if errors.As(err, &se) {
			se.Path = path
		}
		return nil, err
	}
	return table, nil
}

// LoadTable parses a JSON response script. Keys that are absent keep the
// values of DefaultTable; a present "responses" object replaces the default
// entries entirely.
//
//	{
//	  "greeting":      {"content": "...", "options": ["a", "b"], "layout": "horizontal"},
//	  "placeholder":   "...",
//	  "fallback":      "You picked {option}.",
//	  "text_response": {"content": "..."},
//	  "responses":     {"a": {"content": "...", "options": ["c"], "layout": "vertical"}}
//	}
func LoadTable(data []byte) (*Table, error) {
	if !gjson.ValidBytes(data) {
		return nil, apperrors.NewScriptError("", "not valid JSON")
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, apperrors.NewScriptError("", "top level must be an object")
	}

	table := DefaultTable()

	if v := root.Get("greeting"); v.Exists() {
		r, err := parseResponse("greeting", v)
		if err != nil {
			return nil, err
		}
		table.Greeting = r
	}

	if v := root.Get("placeholder"); v.Exists() {
		if strings.TrimSpace(v.String()) == "" {
			return nil, apperrors.NewScriptError("", "placeholder must not be empty")
		}
		table.Placeholder = v.String()
	}

	if v := root.Get("fallback"); v.Exists() {
		if strings.TrimSpace(v.String()) == "" {
			return nil, apperrors.NewScriptError("", "fallback must not be empty")
		}
		table.FallbackFormat = v.String()
	}

	if v := root.Get("text_response"); v.Exists() {
		r, err := parseResponse("text_response", v)
		if err != nil {
			return nil, err
		}
		table.TextResponse = r
	}

	if v := root.Get("responses"); v.Exists() {
		if !v.IsObject() {
			return nil, apperrors.NewScriptError("", "responses must be an object")
		}
		entries := make(map[string]Response)
		var parseErr error
		v.ForEach(func(key, value gjson.Result) bool {
			r, err := parseResponse("responses."+key.String(), value)
			if err != nil {
				parseErr = err
				return false
			}
			entries[key.String()] = r
			return true
		})
		if parseErr != nil {
			return nil, parseErr
		}
		table.Entries = entries
	}

	return table, nil
}

func parseResponse(name string, v gjson.Result) (Response, error) {
	if !v.IsObject() {
		return Response{}, apperrors.NewScriptError("", name+" must be an object")
	}

	content := v.Get("content").String()
	if strings.TrimSpace(content) == "" {
		return Response{}, apperrors.NewScriptError("", name+": content must not be empty")
	}

	r := Response{Content: content}

	if opts := v.Get("options"); opts.Exists() {
		if !opts.IsArray() {
			return Response{}, apperrors.NewScriptError("", name+": options must be an array")
		}
		for _, o := range opts.Array() {
			r.Options = append(r.Options, o.String())
		}
	}

	if layout := v.Get("layout"); layout.Exists() {
		switch models.Layout(layout.String()) {
		case models.LayoutHorizontal, models.LayoutVertical:
			r.Layout = models.Layout(layout.String())
		default:
			return Response{}, apperrors.NewScriptError("", fmt.Sprintf("%s: unknown layout %q", name, layout.String()))
		}
	}

	return r, nil
}
