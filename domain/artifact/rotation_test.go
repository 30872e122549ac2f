package artifact

import (
	"log/slog"
	"testing"
	"testing/fstest"
)

func testCatalog() *Catalog {
	c := NewCatalog()
	c.Register(&Descriptor{Name: "book_of_shadows", Tier: "S", Template: "book_of_shadows.png"})
	c.Register(&Descriptor{Name: "stone_of_the_valrunes", Tier: "A", Template: "stone_of_the_valrunes.png"})
	c.Register(&Descriptor{Name: "flute_of_the_soloist", Tier: "A", Template: "flute_of_the_soloist.png"})
	c.Register(&Descriptor{Name: "heart_of_storms", Tier: "B", Template: "heart_of_storms.png"})
	c.Register(&Descriptor{Name: "glacial_axe", Tier: "B", Template: "glacial_axe.png", MaxLevel: true})
	return c
}

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestBuildUpgradeList(t *testing.T) {
	catalog := testCatalog()
	owned := []string{
		"book_of_shadows", "stone_of_the_valrunes",
		"flute_of_the_soloist", "heart_of_storms", "glacial_axe",
	}

	tests := []struct {
		name     string
		owned    []string
		opts     ListOptions
		expected []string
	}{
		{
			name:     "tier filter preserves discovery order",
			owned:    owned,
			opts:     ListOptions{UpgradeTiers: []string{"A"}},
			expected: []string{"stone_of_the_valrunes", "flute_of_the_soloist"},
		},
		{
			name:     "unowned artifacts excluded",
			owned:    []string{"flute_of_the_soloist"},
			opts:     ListOptions{UpgradeTiers: []string{"A"}},
			expected: []string{"flute_of_the_soloist"},
		},
		{
			name:     "capped artifact excluded even when tier selected",
			owned:    owned,
			opts:     ListOptions{UpgradeTiers: []string{"B"}},
			expected: []string{"heart_of_storms"},
		},
		{
			name:     "ignore excludes tier match",
			owned:    owned,
			opts:     ListOptions{UpgradeTiers: []string{"A"}, Ignore: []string{"flute_of_the_soloist"}},
			expected: []string{"stone_of_the_valrunes"},
		},
		{
			name:     "force wins over ignore",
			owned:    owned,
			opts:     ListOptions{UpgradeTiers: []string{"A"}, Ignore: []string{"flute_of_the_soloist"}, Force: []string{"flute_of_the_soloist"}},
			expected: []string{"stone_of_the_valrunes", "flute_of_the_soloist"},
		},
		{
			name:     "force includes outside selected tiers",
			owned:    owned,
			opts:     ListOptions{UpgradeTiers: []string{"S"}, Force: []string{"heart_of_storms"}},
			expected: []string{"book_of_shadows", "heart_of_storms"},
		},
		{
			name:     "no filters yields empty list",
			owned:    owned,
			opts:     ListOptions{},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildUpgradeList(catalog, tt.owned, tt.opts, discard())
			if len(got) != len(tt.expected) {
				t.Fatalf("BuildUpgradeList = %v, want %v", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("list[%d] = %s, want %s", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestBuildUpgradeList_ShuffleKeepsMembers(t *testing.T) {
	catalog := testCatalog()
	owned := []string{"book_of_shadows", "stone_of_the_valrunes", "flute_of_the_soloist", "heart_of_storms"}
	opts := ListOptions{UpgradeTiers: []string{"S", "A", "B"}, Shuffle: true}

	got := BuildUpgradeList(catalog, owned, opts, discard())
	if len(got) != 4 {
		t.Fatalf("shuffled list has %d members, want 4", len(got))
	}
	seen := map[string]bool{}
	for _, name := range got {
		seen[name] = true
	}
	for _, name := range owned {
		if !seen[name] {
			t.Errorf("shuffled list missing %s", name)
		}
	}
}

func TestRotation_Wraparound(t *testing.T) {
	list := []string{"a", "b", "c"}
	r := NewRotation(list)

	first, ok := r.Advance()
	if !ok || first != "a" {
		t.Fatalf("first Advance = (%s, %v), want (a, true)", first, ok)
	}

	// N more advances wrap back to the first artifact.
	var last string
	for i := 0; i < len(list); i++ {
		last, _ = r.Advance()
	}
	if last != first {
		t.Errorf("after N+1 advances got %s, want %s", last, first)
	}
}

func TestRotation_EachMemberOncePerCycle(t *testing.T) {
	list := []string{"a", "b", "c", "d"}
	r := NewRotation(list)

	counts := map[string]int{}
	for i := 0; i < len(list); i++ {
		name, ok := r.Advance()
		if !ok {
			t.Fatal("Advance returned not ok on non-empty list")
		}
		counts[name]++
	}
	for _, name := range list {
		if counts[name] != 1 {
			t.Errorf("%s advanced %d times in one cycle, want exactly once", name, counts[name])
		}
	}
}

func TestRotation_Empty(t *testing.T) {
	r := NewRotation(nil)
	if r.Enabled() {
		t.Error("empty rotation should be disabled")
	}
	if _, ok := r.Advance(); ok {
		t.Error("Advance on empty rotation should return not ok")
	}
}

func TestLoader_LoadFromFS(t *testing.T) {
	fsys := fstest.MapFS{
		"artifacts/tier_s.yaml": &fstest.MapFile{Data: []byte(`
tier: S
artifacts:
  - name: book_of_shadows
    template: book_of_shadows.png
  - name: glacial_axe
    template: glacial_axe.png
    max_level: true
`)},
		"artifacts/tier_a.yaml": &fstest.MapFile{Data: []byte(`
tier: A
artifacts:
  - name: stone_of_the_valrunes
    template: stone_of_the_valrunes.png
`)},
	}

	catalog := NewCatalog()
	if err := NewLoader(catalog).LoadFromFS(fsys); err != nil {
		t.Fatalf("LoadFromFS failed: %v", err)
	}

	if catalog.Count() != 3 {
		t.Fatalf("catalog has %d artifacts, want 3", catalog.Count())
	}
	axe := catalog.Get("glacial_axe")
	if axe == nil || !axe.MaxLevel || axe.Tier != "S" {
		t.Errorf("glacial_axe = %+v, want max-level tier S", axe)
	}
	if catalog.Get("missing") != nil {
		t.Error("Get of unknown artifact should return nil")
	}
}
