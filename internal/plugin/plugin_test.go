package plugin

import (
	"errors"
	"testing"

	"golang.org/x/net/html"
)

func TestMetadataString(t *testing.T) {
	m := Metadata{Name: "diagram", Version: "v1.0.0", Kind: KindStateless}
	if got := m.String(); got != "diagram@v1.0.0 (stateless)" {
		t.Errorf("String() = %q", got)
	}
}

func TestKindIsValid(t *testing.T) {
	if !KindStateless.IsValid() || !KindStateful.IsValid() {
		t.Error("built-in kinds should be valid")
	}
	if Kind("other").IsValid() {
		t.Error("unknown kind should be invalid")
	}
}

func TestEventNames(t *testing.T) {
	cases := map[string]Event{
		"content_changed": ContentChanged{Source: "x"},
		"execute":         Execute{},
		"pointer_down":    Pointer{Kind: PointerDown, X: 1, Y: 2},
	}
	for want, ev := range cases {
		if got := ev.EventName(); got != want {
			t.Errorf("EventName() = %q, want %q", got, want)
		}
	}
}

func TestPluginErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewPluginError("diagram", "render", cause)
	if !errors.Is(err, cause) {
		t.Error("PluginError should unwrap to its cause")
	}
	if err.Error() != "plugin diagram failed during render: boom" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.HighlightTheme != DefaultHighlightTheme || cfg.ScriptEntry != "main" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

type fencedMock struct{ mockStrategy }

func (m *fencedMock) RenderFenced(fence, content string, _ Config) (*html.Node, error) {
	return &html.Node{Type: html.TextNode, Data: fence + "|" + content}, nil
}

func TestRenderBlockPassesFence(t *testing.T) {
	plain := newMockStrategy("plain", "x")
	n, err := RenderBlock(plain, "x", "body", DefaultConfig())
	if err != nil || n.Data != "plain:body" {
		t.Errorf("RenderBlock(plain) = %v, %v", n, err)
	}

	fenced := &fencedMock{mockStrategy: *newMockStrategy("fenced", "y")}
	n, err = RenderBlock(fenced, "go", "body", DefaultConfig())
	if err != nil || n.Data != "go|body" {
		t.Errorf("RenderBlock(fenced) = %v, %v", n, err)
	}
}
