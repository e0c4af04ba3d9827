package resolve

import (
	"testing"

	"ptxref/internal/extract"

	"github.com/stretchr/testify/assert"
)

func tableOf(pairs ...string) *Table {
	tbl := NewTable()
	for i := 0; i+1 < len(pairs); i += 2 {
		_, _ = tbl.Set(pairs[i], pairs[i+1], "test.ptx")
	}
	tbl.Freeze()
	return tbl
}

func TestApply(t *testing.T) {
	p := extract.MustPatterns("lst-", "fig-")
	tbl := tableOf("lst-intro", "ch1_lst-intro", "fig-tree", "ch2_fig-tree")

	tests := []struct {
		name       string
		in         string
		want       string
		rewritten  int
		unresolved []string
	}{
		{
			name:      "single reference",
			in:        `<p><xref ref="lst-intro"/></p>`,
			want:      `<p><xref ref="ch1_lst-intro"/></p>`,
			rewritten: 1,
		},
		{
			name:      "multiple references and surrounding bytes",
			in:        "a <xref ref=\"fig-tree\">x</xref>\r\n\tb <xref ref=\"lst-intro\" text=\"type-global\"/> c",
			want:      "a <xref ref=\"ch2_fig-tree\">x</xref>\r\n\tb <xref ref=\"ch1_lst-intro\" text=\"type-global\"/> c",
			rewritten: 2,
		},
		{
			name:       "unresolved left alone",
			in:         `<xref ref="fig-missing"/> and <xref ref="lst-intro"/>`,
			want:       `<xref ref="fig-missing"/> and <xref ref="ch1_lst-intro"/>`,
			rewritten:  1,
			unresolved: []string{"fig-missing"},
		},
		{
			name: "declarations and prose untouched",
			in:   `<listing xml:id="ch1_lst-intro">lst-intro</listing>`,
			want: `<listing xml:id="ch1_lst-intro">lst-intro</listing>`,
		},
		{
			name: "already qualified is not a reference",
			in:   `<xref ref="ch1_lst-intro"/>`,
			want: `<xref ref="ch1_lst-intro"/>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := []byte(tt.in)
			out, n, unresolved := Apply(text, p.References(text), tbl)
			assert.Equal(t, tt.want, string(out))
			assert.Equal(t, tt.rewritten, n)
			assert.Equal(t, tt.unresolved, unresolved)
		})
	}
}

func TestApply_IgnoresOverlappingSpans(t *testing.T) {
	tbl := tableOf("lst-a", "x_lst-a")
	text := []byte(`lst-a lst-a`)
	refs := []extract.Reference{
		{ID: "lst-a", Start: 6, End: 11},
		{ID: "lst-a", Start: 0, End: 5},
	}
	out, n, _ := Apply(text, refs, tbl)
	assert.Equal(t, "lst-a x_lst-a", string(out))
	assert.Equal(t, 1, n)
}
