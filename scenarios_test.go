// End-to-end scenario tests, one per concrete example in the sparse
// index's testable-properties section, plus two cross-cutting laws
// (remove-last refusal, prefix-range subsumes prefix-set). The start
// repair scenario also covers remove-then-repair; multi-point
// agreement is in property_test.go.
package sparseindex

import "testing"

func p(key string) CompositeKey { return NewCompositeKey("p", StringKey(key)) }

// TestScenarioThreeWaySplit: start with block B1, add ("p","c")->B2 and
// ("p","f")->B3, then check every boundary and interior lookup.
func TestScenarioThreeWaySplit(t *testing.T) {
	b1, b2, b3 := NewBlockID(), NewBlockID(), NewBlockID()
	w := NewWriter(b1, WriterConfig{})
	if err := w.AddBlock(p("c"), b2); err != nil {
		t.Fatalf("AddBlock b2: %v", err)
	}
	if err := w.AddBlock(p("f"), b3); err != nil {
		t.Fatalf("AddBlock b3: %v", err)
	}

	tests := []struct {
		key  string
		want BlockID
	}{
		{"a", b1}, {"b", b1}, {"c", b2}, {"d", b2}, {"f", b3}, {"g", b3},
	}
	for _, tt := range tests {
		got := w.GetTargetBlockID(p(tt.key))
		if got != tt.want {
			t.Errorf("GetTargetBlockID(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

// TestScenarioCountsRequired: committing before every block has a
// count fails with ErrCountsNotSet; setting the rest succeeds.
func TestScenarioCountsRequired(t *testing.T) {
	b1, b2, b3 := NewBlockID(), NewBlockID(), NewBlockID()
	w := NewWriter(b1, WriterConfig{})
	if err := w.AddBlock(p("c"), b2); err != nil {
		t.Fatalf("AddBlock b2: %v", err)
	}
	if err := w.AddBlock(p("f"), b3); err != nil {
		t.Fatalf("AddBlock b3: %v", err)
	}
	if err := w.SetCount(b1, 1); err != nil {
		t.Fatalf("SetCount b1: %v", err)
	}
	if err := w.SetCount(b2, 1); err != nil {
		t.Fatalf("SetCount b2: %v", err)
	}

	if _, err := w.ToReader(); err != ErrCountsNotSet {
		t.Fatalf("ToReader before all counts set = %v, want ErrCountsNotSet", err)
	}

	if err := w.SetCount(b3, 1); err != nil {
		t.Fatalf("SetCount b3: %v", err)
	}
	if _, err := w.ToReader(); err != nil {
		t.Fatalf("ToReader after all counts set: %v", err)
	}
}

// TestScenarioDuplicateBlockID: after the three-way split, adding
// with an already-used block id fails and leaves state unchanged.
func TestScenarioDuplicateBlockID(t *testing.T) {
	b1, b2, b3 := NewBlockID(), NewBlockID(), NewBlockID()
	w := NewWriter(b1, WriterConfig{})
	if err := w.AddBlock(p("c"), b2); err != nil {
		t.Fatalf("AddBlock b2: %v", err)
	}
	if err := w.AddBlock(p("f"), b3); err != nil {
		t.Fatalf("AddBlock b3: %v", err)
	}

	before := w.Len()
	if err := w.AddBlock(p("z"), b2); err != ErrBlockIDExists {
		t.Fatalf("AddBlock with duplicate id = %v, want ErrBlockIDExists", err)
	}
	if w.Len() != before {
		t.Errorf("Len() changed after failed AddBlock: %d != %d", w.Len(), before)
	}
}

// TestScenarioMultiPointLookup matches spec's worked example:
// Start->B1, ("p","a")->B2, ("p","d")->B3, ("p","f")->B4.
func TestScenarioMultiPointLookup(t *testing.T) {
	b1, b2, b3, b4 := NewBlockID(), NewBlockID(), NewBlockID(), NewBlockID()
	w := NewWriter(b1, WriterConfig{})
	for _, step := range []struct {
		key string
		id  BlockID
	}{{"a", b2}, {"d", b3}, {"f", b4}} {
		if err := w.AddBlock(p(step.key), step.id); err != nil {
			t.Fatalf("AddBlock: %v", err)
		}
	}
	for _, id := range []BlockID{b1, b2, b3, b4} {
		if err := w.SetCount(id, 1); err != nil {
			t.Fatalf("SetCount: %v", err)
		}
	}
	r, err := w.ToReader()
	if err != nil {
		t.Fatalf("ToReader: %v", err)
	}

	got := r.GetAllTargetBlockIDs([]CompositeKey{p("b"), p("c"), p("d"), p("e")})
	want := []BlockID{b2, b3}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("GetAllTargetBlockIDs([b,c,d,e]) = %v, want %v", got, want)
	}

	got2 := r.GetAllTargetBlockIDs([]CompositeKey{p("f"), p("g"), p("h")})
	if len(got2) != 1 || got2[0] != b4 {
		t.Errorf("GetAllTargetBlockIDs([f,g,h]) = %v, want [%v]", got2, b4)
	}
}

// TestScenarioPrefixRange matches spec's worked example: Start->B0,
// ("a","a")->B1, ("a","c")->B2, ("b","a")->B3, ("b","f")->B4,
// ("c","n")->B5, ("d","x")->B6.
func TestScenarioPrefixRange(t *testing.T) {
	ids := make([]BlockID, 7)
	for i := range ids {
		ids[i] = NewBlockID()
	}
	w := NewWriter(ids[0], WriterConfig{})
	steps := []struct {
		prefix, key string
		idx         int
	}{
		{"a", "a", 1}, {"a", "c", 2}, {"b", "a", 3},
		{"b", "f", 4}, {"c", "n", 5}, {"d", "x", 6},
	}
	for _, s := range steps {
		if err := w.AddBlock(NewCompositeKey(s.prefix, StringKey(s.key)), ids[s.idx]); err != nil {
			t.Fatalf("AddBlock: %v", err)
		}
	}
	for _, id := range ids {
		if err := w.SetCount(id, 1); err != nil {
			t.Fatalf("SetCount: %v", err)
		}
	}
	r, err := w.ToReader()
	if err != nil {
		t.Fatalf("ToReader: %v", err)
	}

	checkIDs := func(name string, got []BlockID, wantIdx []int) {
		t.Helper()
		if len(got) != len(wantIdx) {
			t.Errorf("%s = %v, want indices %v", name, got, wantIdx)
			return
		}
		for i, wi := range wantIdx {
			if got[i] != ids[wi] {
				t.Errorf("%s[%d] = %v, want block %d", name, i, got[i], wi)
			}
		}
	}

	checkIDs("full range", r.GetBlockIDsRange(FullPrefixRange()), []int{0, 1, 2, 3, 4, 5, 6})
	checkIDs("..a (exclusive)", r.GetBlockIDsRange(PrefixRangeTo("a")), []int{0})
	checkIDs("..=a", r.GetBlockIDsRange(PrefixRangeToInclusive("a")), []int{0, 1, 2})
	checkIDs("b..=c", r.GetBlockIDsRange(ClosedPrefixRange("b", "c")), []int{2, 3, 4, 5})
	checkIDs("c..", r.GetBlockIDsRange(PrefixRangeFrom("c")), []int{4, 5, 6})
}

// TestScenarioStartRepair matches spec's worked example: build four
// blocks, remove the one at Start, and check the repaired state.
func TestScenarioStartRepair(t *testing.T) {
	b1, b2, b3, b4 := NewBlockID(), NewBlockID(), NewBlockID(), NewBlockID()
	w := NewWriter(b1, WriterConfig{})
	for _, step := range []struct {
		key string
		id  BlockID
	}{{"a", b2}, {"d", b3}, {"f", b4}} {
		if err := w.AddBlock(p(step.key), step.id); err != nil {
			t.Fatalf("AddBlock: %v", err)
		}
	}
	if err := w.SetCount(b2, 17); err != nil {
		t.Fatalf("SetCount b2: %v", err)
	}

	if !w.RemoveBlock(b1) {
		t.Fatal("RemoveBlock(b1) should have succeeded")
	}

	got := w.GetTargetBlockID(NewCompositeKey("", StringKey("")))
	if got != b2 {
		t.Errorf("block now at Start = %v, want b2", got)
	}

	for _, id := range []BlockID{b2, b3, b4} {
		if id != b2 {
			if err := w.SetCount(id, 1); err != nil {
				t.Fatalf("SetCount: %v", err)
			}
		}
	}
	r, err := w.ToReader()
	if err != nil {
		t.Fatalf("ToReader: %v", err)
	}
	if !r.IsValid() {
		t.Error("repaired reader should be valid")
	}
	entries := r.orderedEntries()
	if entries[0].count != 17 {
		t.Errorf("count preserved at Start = %d, want 17", entries[0].count)
	}
}

// TestLawRemoveLastRefusal: remove_block on the sole remaining block
// leaves the writer unchanged and returns false.
func TestLawRemoveLastRefusal(t *testing.T) {
	id := NewBlockID()
	w := NewWriter(id, WriterConfig{})
	if w.RemoveBlock(id) {
		t.Error("RemoveBlock on the sole block should return false")
	}
	if w.Len() != 1 {
		t.Errorf("Len() = %d, want 1", w.Len())
	}
}

// TestLawPrefixRangeSubsumesPrefixSet: for a set of prefixes P and the
// range [min(P), max(P)], get_block_ids_range must be a superset of
// get_block_ids_for_prefixes(P).
func TestLawPrefixRangeSubsumesPrefixSet(t *testing.T) {
	ids := make([]BlockID, 5)
	for i := range ids {
		ids[i] = NewBlockID()
	}
	w := NewWriter(ids[0], WriterConfig{})
	for i, prefix := range []string{"b", "d", "f", "h"} {
		if err := w.AddBlock(NewCompositeKey(prefix, StringKey("")), ids[i+1]); err != nil {
			t.Fatalf("AddBlock: %v", err)
		}
	}
	for _, id := range ids {
		if err := w.SetCount(id, 1); err != nil {
			t.Fatalf("SetCount: %v", err)
		}
	}
	r, err := w.ToReader()
	if err != nil {
		t.Fatalf("ToReader: %v", err)
	}

	prefixSet := []string{"c", "g"}
	fromSet := r.GetBlockIDsForPrefixes(prefixSet)
	fromRange := r.GetBlockIDsRange(ClosedPrefixRange("c", "g"))

	rangeHas := make(map[BlockID]bool, len(fromRange))
	for _, id := range fromRange {
		rangeHas[id] = true
	}
	for _, id := range fromSet {
		if !rangeHas[id] {
			t.Errorf("block %v from prefix-set lookup missing from prefix-range superset", id)
		}
	}
}
