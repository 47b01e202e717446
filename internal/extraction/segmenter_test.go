package extraction

import (
	"reflect"
	"strings"
	"testing"
)

func TestSegment(t *testing.T) {
	doc := strings.Join([]string{
		"ACME Wireless",
		"123 Main St",
		"",
		"CUSTOMER INFORMATION",
		"Name: Jane Doe",
		"",
		"ORDER SUMMARY",
		"Total: $20.00",
	}, "\n")

	sections := Segment(doc)
	if len(sections) != 3 {
		t.Fatalf("got %d sections, want 3: %+v", len(sections), sections)
	}

	wantKeys := []string{"header", "customer_information", "order_summary"}
	for i, want := range wantKeys {
		if sections[i].Key != want {
			t.Errorf("section %d key = %q, want %q", i, sections[i].Key, want)
		}
	}

	if !reflect.DeepEqual(sections[0].Content, []string{"ACME Wireless", "123 Main St"}) {
		t.Errorf("header content = %v", sections[0].Content)
	}
	if !reflect.DeepEqual(sections[1].Content, []string{"CUSTOMER INFORMATION", "Name: Jane Doe"}) {
		t.Errorf("customer content = %v", sections[1].Content)
	}
	if !reflect.DeepEqual(sections[2].Content, []string{"ORDER SUMMARY", "Total: $20.00"}) {
		t.Errorf("summary content = %v", sections[2].Content)
	}
}

func TestSegmentNoHeaders(t *testing.T) {
	sections := Segment("Case 29.99\n03/15/2024")
	if len(sections) != 1 {
		t.Fatalf("got %d sections, want 1", len(sections))
	}
	if sections[0].Key != "header" {
		t.Errorf("key = %q, want header", sections[0].Key)
	}
	if sections[0].StartLine != 0 || sections[0].EndLine != 2 {
		t.Errorf("range = [%d,%d), want [0,2)", sections[0].StartLine, sections[0].EndLine)
	}
}

func TestSegmentHeaderFirstLine(t *testing.T) {
	sections := Segment("PRODUCT INFORMATION\nWidget $5.00")
	if len(sections) != 1 {
		t.Fatalf("got %d sections, want 1", len(sections))
	}
	if sections[0].Key != "product_information" {
		t.Errorf("key = %q", sections[0].Key)
	}
}

// Line ranges must cover the document with no gaps or overlaps, and every
// non-blank line must land in exactly one section's content.
func TestSegmentPartition(t *testing.T) {
	docs := []string{
		"a\nb\nc",
		"CUSTOMER INFORMATION\nJane\n\nORDER SUMMARY\nTotal: $5.00",
		"preamble\nINVOICE DETAILS\n#123\nPAYMENT DETAILS\nVisa",
	}
	for _, doc := range docs {
		lines := strings.Split(doc, "\n")
		sections := Segment(doc)
		if len(sections) == 0 {
			t.Fatalf("no sections for %q", doc)
		}

		if sections[0].StartLine != 0 {
			t.Errorf("first section starts at %d", sections[0].StartLine)
		}
		for i := 1; i < len(sections); i++ {
			if sections[i].StartLine != sections[i-1].EndLine {
				t.Errorf("gap/overlap between sections %d and %d in %q", i-1, i, doc)
			}
		}
		if last := sections[len(sections)-1]; last.EndLine != len(lines) {
			t.Errorf("last section ends at %d, want %d", last.EndLine, len(lines))
		}

		var got []string
		for _, s := range sections {
			got = append(got, s.Content...)
		}
		var want []string
		for _, l := range lines {
			if strings.TrimSpace(l) != "" {
				want = append(want, strings.TrimSpace(l))
			}
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("content union = %v, want %v", got, want)
		}
	}
}

func TestSegmentEmpty(t *testing.T) {
	if got := Segment(""); len(got) != 0 {
		t.Errorf("Segment(\"\") = %+v, want none", got)
	}
}

func TestSectionsMatching(t *testing.T) {
	sections := []Section{
		{Key: "header"},
		{Key: "customer_information"},
		{Key: "order_summary"},
	}
	got := sectionsMatching(sections, "customer", "billing")
	if len(got) != 1 || got[0].Key != "customer_information" {
		t.Errorf("sectionsMatching = %+v", got)
	}
	if got := sectionsMatching(sections, "nothing"); len(got) != 0 {
		t.Errorf("expected no matches, got %+v", got)
	}
}
