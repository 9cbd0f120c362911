package shaders

import (
	"errors"
	"strings"
	"testing"

	"icoviewer/gpu"
)

func TestDefaultRegistryVariants(t *testing.T) {
	r := Default()

	tests := []struct {
		stage gpu.Stage
		names []string
	}{
		{gpu.VertexStage, []string{"fireball", "lambert", "expand", "collapse"}},
		{gpu.FragmentStage, []string{"fireball", "lambert", "perlin", "worley", "custom"}},
	}

	for _, tc := range tests {
		t.Run(tc.stage.String(), func(t *testing.T) {
			got := r.Names(tc.stage)
			if strings.Join(got, ",") != strings.Join(tc.names, ",") {
				t.Fatalf("Names = %v, want %v", got, tc.names)
			}
			for _, name := range tc.names {
				src, err := r.Lookup(tc.stage, name)
				if err != nil {
					t.Fatal(err)
				}
				if !strings.HasPrefix(src.Text, "#version 410 core") {
					t.Errorf("%s: missing version directive", name)
				}
			}
		})
	}

	if _, err := r.Lookup(gpu.VertexStage, DefaultVertex); err != nil {
		t.Errorf("default vertex variant: %v", err)
	}
	if _, err := r.Lookup(gpu.FragmentStage, DefaultFragment); err != nil {
		t.Errorf("default fragment variant: %v", err)
	}
}

func TestVariantsShareInterface(t *testing.T) {
	r := Default()
	for _, name := range r.Names(gpu.VertexStage) {
		src, _ := r.Lookup(gpu.VertexStage, name)
		for _, decl := range []string{"in vec4 vs_Pos;", "in vec3 vs_Nor;", "out float fs_Disp;"} {
			if !strings.Contains(src.Text, decl) {
				t.Errorf("vertex %s: missing %q", name, decl)
			}
		}
	}
	for _, name := range r.Names(gpu.FragmentStage) {
		src, _ := r.Lookup(gpu.FragmentStage, name)
		for _, decl := range []string{"uniform vec4 u_Color;", "uniform vec4 u_Effect;", "in float fs_Disp;"} {
			if !strings.Contains(src.Text, decl) {
				t.Errorf("fragment %s: missing %q", name, decl)
			}
		}
	}
}

func TestLookupUnknown(t *testing.T) {
	_, err := Default().Lookup(gpu.FragmentStage, "toon")
	if !errors.Is(err, ErrUnknownVariant) {
		t.Fatalf("err = %v, want ErrUnknownVariant", err)
	}
}

func TestRegisterRejectsDuplicatesAndEmpty(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(Source{Name: "a", Stage: gpu.VertexStage, Text: "x"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(Source{Name: "a", Stage: gpu.VertexStage, Text: "y"}); err == nil {
		t.Error("duplicate name accepted")
	}
	if err := r.Register(Source{Name: "a", Stage: gpu.FragmentStage, Text: "y"}); err != nil {
		t.Errorf("same name on another stage rejected: %v", err)
	}
	if err := r.Register(Source{Name: "", Stage: gpu.VertexStage, Text: "y"}); err == nil {
		t.Error("empty name accepted")
	}
	if err := r.Register(Source{Name: "b", Stage: gpu.VertexStage}); err == nil {
		t.Error("empty source accepted")
	}
}

func TestNextWraps(t *testing.T) {
	r := Default()
	names := r.Names(gpu.FragmentStage)
	cur := names[0]
	for i := 1; i <= len(names); i++ {
		cur = r.Next(gpu.FragmentStage, cur)
		if want := names[i%len(names)]; cur != want {
			t.Fatalf("step %d: Next = %q, want %q", i, cur, want)
		}
	}
	if got := r.Next(gpu.VertexStage, "nope"); got != r.Names(gpu.VertexStage)[0] {
		t.Errorf("Next(unknown) = %q", got)
	}
}
