package manifest

import (
	"context"
	"errors"
	"testing"

	"github.com/masmgr/histwalk/internal/git"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantErr   bool
		wantOrder bool
		orderLen  int
		outputs   int
	}{
		{
			name:      "order and outputs",
			input:     `{"order":[{"type":"terminal","path":"out.log"},{"type":"file","path":"src/a.ts"}],"outputs":[{"type":"image","path":"plot.png"}]}`,
			wantOrder: true,
			orderLen:  2,
			outputs:   1,
		},
		{name: "missing order key", input: `{"outputs":[]}`, wantOrder: false},
		{name: "empty order array", input: `{"order":[]}`, wantOrder: true, orderLen: 0},
		{name: "unknown fields are tolerated", input: `{"order":[{"type":"file","path":"a","note":"x"}],"version":2}`, wantOrder: true, orderLen: 1},
		{name: "not json", input: `{order`, wantErr: true},
		{name: "unknown kind", input: `{"order":[{"type":"video","path":"a.mp4"}]}`, wantErr: true},
		{name: "empty path", input: `{"order":[{"type":"file","path":""}]}`, wantErr: true},
		{name: "missing type", input: `{"order":[{"path":"a"}]}`, wantErr: true},
		{name: "order not array", input: `{"order":{}}`, wantErr: true},
		{name: "top-level array", input: `[]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", m)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if m.HasOrder() != tt.wantOrder {
				t.Fatalf("HasOrder() = %v, expected %v", m.HasOrder(), tt.wantOrder)
			}
			if len(m.Order) != tt.orderLen {
				t.Errorf("len(Order) = %d, expected %d", len(m.Order), tt.orderLen)
			}
			if len(m.Outputs) != tt.outputs {
				t.Errorf("len(Outputs) = %d, expected %d", len(m.Outputs), tt.outputs)
			}
		})
	}
}

func TestIsReserved(t *testing.T) {
	tests := map[string]bool{
		"__cleanough/meta.json":     true,
		"__cleanough":               true,
		"__cleanough_old/x.txt":     true,
		"/__cleanough/out.log":      true,
		"src/__cleanough/meta.json": false,
		"cleanough/meta.json":       false,
		"README.md":                 false,
	}
	for path, want := range tests {
		if got := IsReserved(path); got != want {
			t.Errorf("IsReserved(%q) = %v, expected %v", path, got, want)
		}
	}
}

func TestManifest_Output(t *testing.T) {
	m := &Manifest{Outputs: []Entry{{Kind: KindImage, Path: "a.png"}}}

	if e, ok := m.Output(0); !ok || e.Path != "a.png" {
		t.Errorf("Output(0) = %+v, %v", e, ok)
	}
	if _, ok := m.Output(1); ok {
		t.Error("Output(1) should be out of range")
	}
	if _, ok := m.Output(-1); ok {
		t.Error("Output(-1) should be out of range")
	}
	var nilManifest *Manifest
	if _, ok := nilManifest.Output(0); ok {
		t.Error("nil manifest should have no outputs")
	}
}

func TestLoader_Load(t *testing.T) {
	ctx := context.Background()
	provider := git.NewMemoryProvider("main")
	provider.SetFile("good", DefaultPath, []byte(`{"order":[{"type":"file","path":"a.go"}]}`))
	provider.SetFile("bad", DefaultPath, []byte(`not json`))

	loader := &Loader{Provider: provider}

	t.Run("present", func(t *testing.T) {
		m, err := loader.Load(ctx, "good")
		if err != nil || m == nil || len(m.Order) != 1 {
			t.Fatalf("Load = %+v, %v", m, err)
		}
	})

	t.Run("absent maps to nil", func(t *testing.T) {
		m, err := loader.Load(ctx, "empty")
		if err != nil || m != nil {
			t.Fatalf("Load = %+v, %v; expected nil, nil", m, err)
		}
	})

	t.Run("malformed maps to nil", func(t *testing.T) {
		m, err := loader.Load(ctx, "bad")
		if err != nil || m != nil {
			t.Fatalf("Load = %+v, %v; expected nil, nil", m, err)
		}
	})

	t.Run("provider failure is returned", func(t *testing.T) {
		failing := git.NewMemoryProvider("main")
		failing.Error = errors.New("network down")
		_, err := (&Loader{Provider: failing}).Load(ctx, "good")
		if err == nil {
			t.Fatal("expected provider error")
		}
	})
}
