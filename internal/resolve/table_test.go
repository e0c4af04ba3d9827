package resolve

import (
	"errors"
	"testing"

	"ptxref/internal/extract"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_SetLookup(t *testing.T) {
	tbl := NewTable()

	conflict, err := tbl.Set("lst-intro", "ch1_lst-intro", "a.ptx")
	require.NoError(t, err)
	assert.False(t, conflict)

	q, ok := tbl.Lookup("lst-intro")
	assert.True(t, ok)
	assert.Equal(t, "ch1_lst-intro", q)

	_, ok = tbl.Lookup("fig-missing")
	assert.False(t, ok)
	assert.Equal(t, 1, tbl.Len())
}

func TestTable_LastWriteWinsAndConflicts(t *testing.T) {
	tbl := NewTable()

	_, _ = tbl.Set("lst-dup", "a_lst-dup", "a.ptx")
	conflict, err := tbl.Set("lst-dup", "a_lst-dup", "a.ptx")
	require.NoError(t, err)
	assert.False(t, conflict, "same declaration twice is not a conflict")

	conflict, err = tbl.Set("lst-dup", "b_lst-dup", "b.ptx")
	require.NoError(t, err)
	assert.True(t, conflict)

	q, _ := tbl.Lookup("lst-dup")
	assert.Equal(t, "b_lst-dup", q)

	want := []Conflict{{
		Short:  "lst-dup",
		Winner: "b_lst-dup",
		Candidates: []Candidate{
			{Qualified: "a_lst-dup", Path: "a.ptx"},
			{Qualified: "b_lst-dup", Path: "b.ptx"},
		},
	}}
	if diff := cmp.Diff(want, tbl.Conflicts()); diff != "" {
		t.Errorf("Conflicts() mismatch (-want +got):\n%s", diff)
	}
}

func TestTable_SameQualifiedInTwoDocumentsIsNotAConflict(t *testing.T) {
	tbl := NewTable()
	_, _ = tbl.Set("fig-a", "ch_fig-a", "one.ptx")
	conflict, _ := tbl.Set("fig-a", "ch_fig-a", "two.ptx")
	assert.False(t, conflict)
	assert.Empty(t, tbl.Conflicts())
}

func TestTable_Freeze(t *testing.T) {
	tbl := NewTable()
	_, _ = tbl.Set("lst-a", "x_lst-a", "a.ptx")
	tbl.Freeze()
	assert.True(t, tbl.Frozen())

	_, err := tbl.Set("lst-b", "x_lst-b", "a.ptx")
	assert.True(t, errors.Is(err, ErrFrozen))

	q, ok := tbl.Lookup("lst-a")
	assert.True(t, ok)
	assert.Equal(t, "x_lst-a", q)
}

func TestTable_KeysEntriesUnstable(t *testing.T) {
	tbl := NewTable()
	_, _ = tbl.Set("lst-y", "lst-x_lst-y", "b.ptx")
	_, _ = tbl.Set("lst-x_lst-y", "z_lst-x_lst-y", "a.ptx")
	_, _ = tbl.Set("fig-a", "ch_fig-a", "a.ptx")

	assert.Equal(t, []string{"fig-a", "lst-x_lst-y", "lst-y"}, tbl.Keys())
	assert.Equal(t, []string{"lst-y"}, tbl.Unstable(nil))
	assert.Equal(t, []string{"lst-y"}, tbl.Unstable(extract.MustPatterns("lst-", "fig-").IsReferenceID))

	entries := tbl.Entries()
	entries["fig-a"] = "mutated"
	q, _ := tbl.Lookup("fig-a")
	assert.Equal(t, "ch_fig-a", q, "Entries returns a copy")
}

func TestTable_UnstableByShape(t *testing.T) {
	// lst-x_lst-y is not a key here, but it would be read as a reference
	tbl := NewTable()
	_, _ = tbl.Set("lst-y", "lst-x_lst-y", "b.ptx")
	_, _ = tbl.Set("fig-a", "ch_fig-a", "a.ptx")

	assert.Empty(t, tbl.Unstable(nil))
	assert.Equal(t, []string{"lst-y"}, tbl.Unstable(extract.MustPatterns("lst-", "fig-").IsReferenceID))
	assert.Empty(t, tbl.Unstable(extract.MustPatterns("tab-").IsReferenceID))
}
