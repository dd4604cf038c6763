package markup

import (
	"strings"
	"testing"
)

func mustParse(t *testing.T, s string) *Node {
	t.Helper()
	doc, err := Parse(s)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return doc
}

func TestParse_Fragment(t *testing.T) {
	doc := mustParse(t, `<ul><li class="a b"><a href="/p/1">Item</a></li></ul>`)

	if doc.Kind != DocumentNode {
		t.Fatalf("expected document root, got %s", doc.Kind)
	}
	if len(doc.Children) != 1 || !doc.Children[0].IsElement("ul") {
		t.Fatalf("expected single ul child, got %d children", len(doc.Children))
	}

	li := doc.Find(Tag("li"))
	if li == nil {
		t.Fatal("expected li element")
	}
	if !li.HasClass("a") || !li.HasClass("b") || li.HasClass("c") {
		t.Errorf("unexpected class matching on %v", li.Attrs)
	}

	a := li.Find(Tag("a"))
	if href, _ := a.Attr("href"); href != "/p/1" {
		t.Errorf("expected href /p/1, got %q", href)
	}
}

func TestParse_FullDocumentHasNoWrappers(t *testing.T) {
	doc := mustParse(t, `<html><head></head><body><div>x</div></body></html>`)

	if doc.Find(Tag("html", "head", "body")) != nil {
		t.Error("document wrappers should not be part of the tree")
	}
	if doc.Find(Tag("div")) == nil {
		t.Error("expected div from body content")
	}
}

func TestParse_DropsComments(t *testing.T) {
	doc := mustParse(t, `<div><!-- note -->text</div>`)
	if got := doc.String(); strings.Contains(got, "note") {
		t.Errorf("comment should be dropped, got %q", got)
	}
}

func TestParse_Malformed(t *testing.T) {
	doc := mustParse(t, `<div><p>unclosed <b>bold</div><li>stray`)
	if !strings.Contains(doc.Text(), "bold") || !strings.Contains(doc.Text(), "stray") {
		t.Errorf("expected text to survive malformed markup, got %q", doc.Text())
	}
}

func TestStrippedText(t *testing.T) {
	doc := mustParse(t, "<div>  a \n<p> b </p>\n\n<p>c d</p></div>")

	tests := []struct {
		sep  string
		want string
	}{
		{"", "abc d"},
		{" ", "a b c d"},
	}
	for _, tt := range tests {
		if got := doc.StrippedText(tt.sep); got != tt.want {
			t.Errorf("StrippedText(%q) = %q, want %q", tt.sep, got, tt.want)
		}
	}
}

func TestFindAll_DocumentOrder(t *testing.T) {
	doc := mustParse(t, `<ul><li>1<ul><li>1.1</li></ul></li><li>2</li></ul>`)

	items := doc.FindAll(Tag("li"))
	if len(items) != 3 {
		t.Fatalf("expected 3 li, got %d", len(items))
	}
	want := []string{"11.1", "1.1", "2"}
	for i, li := range items {
		if got := li.StrippedText(""); got != want[i] {
			t.Errorf("item %d text = %q, want %q", i, got, want[i])
		}
	}
}

func TestRender_RoundTrip(t *testing.T) {
	in := `<div id="x"><img src="a.png" alt="A"/><a href="/b">B &amp; C</a></div>`
	doc := mustParse(t, in)

	if got := doc.String(); got != in {
		t.Errorf("String() = %q, want %q", got, in)
	}

	again := mustParse(t, doc.String())
	if !Equal(doc, again) {
		t.Error("re-parsing rendered output should give an equal tree")
	}
}

func TestCloneAndEqual(t *testing.T) {
	doc := mustParse(t, `<div a="1"><span>t</span></div>`)
	cp := doc.Clone()
	if !Equal(doc, cp) {
		t.Fatal("clone should be equal")
	}

	cp.Children[0].Attrs[0].Val = "2"
	if Equal(doc, cp) {
		t.Error("mutating the clone should not affect the original")
	}
	if v, _ := doc.Children[0].Attr("a"); v != "1" {
		t.Errorf("original attribute changed to %q", v)
	}
}

func TestCount(t *testing.T) {
	doc := NewDocument(NewElement("div", nil, NewText("a"), NewElement("p", nil)))
	if got := doc.Count(); got != 4 {
		t.Errorf("Count() = %d, want 4", got)
	}
}

func TestMergeText(t *testing.T) {
	doc := NewDocument(NewElement("div", nil,
		NewText("12,900"), NewText(""), NewText("원"),
		NewElement("b", nil, NewText("a"), NewText("b")),
		NewText("x"),
	))
	if got := doc.MergeText(); got != 3 {
		t.Errorf("MergeText() = %d, want 3", got)
	}
	div := doc.Children[0]
	if len(div.Children) != 3 || div.Children[0].Data != "12,900원" || div.Children[2].Data != "x" {
		t.Errorf("div children = %s", doc)
	}
	if b := div.Children[1]; len(b.Children) != 1 || b.Children[0].Data != "ab" {
		t.Errorf("nested text not merged: %s", doc)
	}
	if got := doc.MergeText(); got != 0 {
		t.Errorf("second MergeText() = %d, want 0", got)
	}
}
