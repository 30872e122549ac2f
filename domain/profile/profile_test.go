package profile

import (
	"image"
	"testing"
	"testing/fstest"
)

const testProfileYAML = `
resolution: "480x800"
y_padding: 30
points:
  fight_boss: {x: 425, y: 31}
  screen_top: {x: 240, y: 6}
regions:
  stage: {x: 214, y: 37, w: 54, h: 16}
grids:
  fairy_taps:
    - {x: 100, y: 400}
    - {x: 200, y: 420}
    - {x: 300, y: 440}
templates:
  exit_panel: exit_panel.png
  fight_boss: fight_boss.png
`

func loadTestRegistry(t *testing.T) *Registry {
	t.Helper()
	fsys := fstest.MapFS{
		"profiles/480x800.yaml": &fstest.MapFile{Data: []byte(testProfileYAML)},
	}
	reg := NewRegistry()
	if err := NewLoader(reg).LoadFromFS(fsys); err != nil {
		t.Fatalf("LoadFromFS failed: %v", err)
	}
	return reg
}

func TestLoader_LoadFromFS(t *testing.T) {
	reg := loadTestRegistry(t)

	p := reg.Get("480x800")
	if p == nil {
		t.Fatal("profile 480x800 not registered")
	}
	if p.YPadding != 30 {
		t.Errorf("YPadding = %d, want 30", p.YPadding)
	}

	pt, ok := p.Point("fight_boss")
	if !ok || pt != image.Pt(425, 31) {
		t.Errorf("Point(fight_boss) = (%v, %v), want (425,31)", pt, ok)
	}

	r, ok := p.Region("stage")
	if !ok || r != image.Rect(214, 37, 268, 53) {
		t.Errorf("Region(stage) = (%v, %v), want x:214 y:37 w:54 h:16", r, ok)
	}

	grid, ok := p.Grid("fairy_taps")
	if !ok || len(grid) != 3 {
		t.Errorf("Grid(fairy_taps) = (%v, %v), want 3 points", grid, ok)
	}

	tpl, ok := p.Template("exit_panel")
	if !ok || tpl != "exit_panel.png" {
		t.Errorf("Template(exit_panel) = (%q, %v)", tpl, ok)
	}

	if _, ok := p.Point("missing"); ok {
		t.Error("unknown point lookup should return not ok")
	}
}

func TestProfile_Validate(t *testing.T) {
	p := loadTestRegistry(t).Get("480x800")

	if err := p.Validate(
		[]string{"fight_boss", "screen_top"},
		[]string{"stage"},
		[]string{"exit_panel", "fight_boss"},
	); err != nil {
		t.Errorf("Validate of present names failed: %v", err)
	}

	if err := p.Validate([]string{"missing_point"}, nil, nil); err == nil {
		t.Error("Validate should fail on a missing point")
	}
	if err := p.Validate(nil, nil, []string{"missing_tpl"}); err == nil {
		t.Error("Validate should fail on a missing template")
	}
}

func TestLoader_MissingResolution(t *testing.T) {
	fsys := fstest.MapFS{
		"profiles/broken.yaml": &fstest.MapFile{Data: []byte("y_padding: 10\n")},
	}
	if err := NewLoader(NewRegistry()).LoadFromFS(fsys); err == nil {
		t.Error("profile without resolution label should fail to load")
	}
}
