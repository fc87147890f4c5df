package recognizer

import (
	"context"
	"reflect"
	"testing"
)

func TestScriptedReplay(t *testing.T) {
	script := []Result{
		{Text: "hello", IsFinal: false},
		{Text: "hello world", IsFinal: false},
		{Text: "hello world", IsFinal: true},
	}
	src := &Scripted{Script: script}

	sess, err := src.Start(context.Background(), "en-US")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer sess.Close()

	var got []Result
	for res := range sess.Results() {
		got = append(got, res)
	}

	if len(got) != len(script) {
		t.Fatalf("got %d results, want %d", len(got), len(script))
	}
	for i, res := range got {
		if res.Text != script[i].Text || res.IsFinal != script[i].IsFinal {
			t.Errorf("result %d = %+v, want %+v", i, res, script[i])
		}
		if res.Language != "en-US" {
			t.Errorf("result %d language = %q, want %q", i, res.Language, "en-US")
		}
	}
}

func TestScriptedCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := &Scripted{Script: []Result{{Text: "a"}, {Text: "b"}, {Text: "c"}}}

	sess, err := src.Start(ctx, "")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	<-sess.Results()
	cancel()

	// The channel must close after cancellation; draining must not hang.
	for range sess.Results() {
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	src := &Scripted{}
	reg.Register(src)

	if got := reg.Get("scripted"); got != Source(src) {
		t.Errorf("Get(scripted) = %v, want the registered source", got)
	}
	if got := reg.Get("missing"); got != nil {
		t.Errorf("Get(missing) = %v, want nil", got)
	}
	if got := len(reg.List()); got != 1 {
		t.Errorf("List length = %d, want 1", got)
	}
}

func TestParseDeepgramMessage(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		want   Result
		wantOK bool
	}{
		{
			name:   "interim transcript",
			data:   `{"type":"Results","is_final":false,"channel":{"alternatives":[{"transcript":"hello wor","confidence":0.87}]}}`,
			want:   Result{Text: "hello wor", IsFinal: false, Confidence: 0.87},
			wantOK: true,
		},
		{
			name:   "final transcript",
			data:   `{"type":"Results","is_final":true,"channel":{"alternatives":[{"transcript":"hello world","confidence":0.99}]}}`,
			want:   Result{Text: "hello world", IsFinal: true, Confidence: 0.99},
			wantOK: true,
		},
		{
			name:   "metadata message skipped",
			data:   `{"type":"Metadata","request_id":"abc"}`,
			wantOK: false,
		},
		{
			name:   "empty transcript skipped",
			data:   `{"type":"Results","is_final":false,"channel":{"alternatives":[{"transcript":""}]}}`,
			wantOK: false,
		},
		{
			name:   "malformed json skipped",
			data:   `{nope`,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseDeepgramMessage([]byte(tt.data))
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("result = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSentenceChunks(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "two sentences",
			text: "Hello world. How are you?",
			want: []string{"Hello world.", "How are you?"},
		},
		{
			name: "trailing text without punctuation",
			text: "First sentence. and then some",
			want: []string{"First sentence.", "and then some"},
		},
		{
			name: "cjk punctuation",
			text: "你好世界。今天怎么样？",
			want: []string{"你好世界。", "今天怎么样？"},
		},
		{
			name: "empty input",
			text: "",
			want: nil,
		},
		{
			name: "whitespace between sentences",
			text: "One!   Two!",
			want: []string{"One!", "Two!"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sentenceChunks(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("sentenceChunks(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}
