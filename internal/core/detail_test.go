package core

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestColorizeTags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []TagSegment
	}{
		{
			name: "known tokens are styled",
			in:   "Fire, Ice",
			want: []TagSegment{
				{Text: "Fire", Style: "red"},
				{Text: ", "},
				{Text: "Ice", Style: "lightblue"},
			},
		},
		{
			name: "unknown tokens are plain",
			in:   "Dark, Lightning",
			want: []TagSegment{
				{Text: "Dark"},
				{Text: ", "},
				{Text: "Lightning", Style: "yellow"},
			},
		},
		{
			name: "single token",
			in:   "Cannot",
			want: []TagSegment{{Text: "Cannot", Style: "red"}},
		},
		{
			name: "comma without space is not a separator",
			in:   "Yes,No",
			want: []TagSegment{{Text: "Yes,No"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ColorizeTags(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ColorizeTags(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}

			var b strings.Builder
			for _, s := range got {
				b.WriteString(s.Text)
			}
			if b.String() != tt.in {
				t.Errorf("segments join to %q, want %q", b.String(), tt.in)
			}
		})
	}
}

func TestTagStyle(t *testing.T) {
	if style, ok := TagStyle("Yes"); !ok || style != "green" {
		t.Errorf("TagStyle(Yes) = %q, %v; want green, true", style, ok)
	}
	if _, ok := TagStyle("Earth"); ok {
		t.Error("TagStyle(Earth) ok = true, want false")
	}
}

func skillPayload(t *testing.T, n *Normalizer) GridPayload {
	t.Helper()
	return n.Payload(RawTable{
		Headers: []string{"Skill", "Damage", "Element", "Notes"},
		Rows: [][]any{
			{"Lumiere Assault", "1500", "Fire, Ice", nil},
			{nil, "80-120", "Lightning", "Needs 2 AP"},
		},
	})
}

func TestDetail(t *testing.T) {
	n := NewNormalizer(Options{IdentityColumn: "Skill"})
	p := skillPayload(t, n)

	got, err := n.Detail(p, 0)
	if err != nil {
		t.Fatalf("Detail() error = %v", err)
	}

	want := RowDetail{
		Index: 0,
		Title: "Lumiere Assault",
		Fields: []DetailField{
			{Name: "Damage", Display: "1,500", Segments: []TagSegment{{Text: "1500"}}},
			{Name: "Element", Display: "Fire, Ice", Segments: []TagSegment{
				{Text: "Fire", Style: "red"},
				{Text: ", "},
				{Text: "Ice", Style: "lightblue"},
			}},
			{Name: "Notes", Display: "-"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Detail() mismatch (-want +got):\n%s", diff)
	}
}

func TestDetail_MissingIdentityUsesDefaultTitle(t *testing.T) {
	n := NewNormalizer(Options{IdentityColumn: "Skill"})
	p := skillPayload(t, n)

	got, err := n.Detail(p, 1, "Notes")
	if err != nil {
		t.Fatalf("Detail() error = %v", err)
	}
	if got.Title != DefaultDetailTitle {
		t.Errorf("Title = %q, want %q", got.Title, DefaultDetailTitle)
	}
	for _, f := range got.Fields {
		if f.Name == "Notes" || f.Name == "Skill" {
			t.Errorf("field %q should be excluded", f.Name)
		}
	}
	if len(got.Fields) != 2 {
		t.Errorf("got %d fields, want 2", len(got.Fields))
	}
}

func TestDetail_OutOfRange(t *testing.T) {
	n := NewNormalizer(Options{})
	p := skillPayload(t, n)

	for _, idx := range []int{-1, 2, 100} {
		_, err := n.Detail(p, idx)
		if !errors.Is(err, ErrRowNotFound) {
			t.Errorf("Detail(%d) error = %v, want ErrRowNotFound", idx, err)
		}
	}
}
