package gleaner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jmylchreest/gleaner/internal/crawler"
	"github.com/jmylchreest/gleaner/pkg/extract/catalog"
	"github.com/jmylchreest/gleaner/pkg/extract/news"
	"github.com/jmylchreest/gleaner/pkg/fetcher"
	"github.com/jmylchreest/gleaner/pkg/identity"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

// listItem mimics a marketplace search result with badges, icons and
// wrapper nesting around the fields.
func listItem(name string) string {
	return `<li class="search-product" data-id="` + name + `">
  <a href="/vp/products/` + name + `" target="_blank">
    <div class="thumb"><div><img src="//img.example/` + name + `.jpg" alt="` + name + `"/></div></div>
    <span data-badge-id="ROCKET">rocket</span>
    <img src="https://img.example/image/badges/cashback/1.png" alt="cashback"/>
    <div class="price"><del>2,000원</del><strong>10%</strong><em>1,000원</em></div>
    <svg><path d="M0"/></svg>
    <em class="rating" aria-label="4.5"></em>
    <div class="empty"><div> </div></div>
  </a>
</li>`
}

func names(recs []catalog.Record) string {
	var out []string
	for _, r := range recs {
		out = append(out, *r.Name)
	}
	return strings.Join(out, ",")
}

func TestCatalog_AggregatesBatches(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "catalog_1.txt", `<ul id="productList">`+listItem("A")+listItem("B")+`</ul>`)
	writeFile(t, dir, "catalog_2.txt", `<ul id="productList">`+listItem("B")+listItem("C")+`</ul>`)

	g := New(WithCategory("kettle"))
	report, err := g.Catalog(context.Background(), []string{
		filepath.Join(dir, "catalog_*.txt"),
		filepath.Join(dir, "catalog_3.txt"),
	}, catalog.ShapeList)
	if err != nil {
		t.Fatalf("Catalog() error = %v", err)
	}

	if got := names(report.Records); got != "A,B,C" {
		t.Fatalf("records = %s, want A,B,C", got)
	}
	if report.Duplicates != 1 || report.Failed() != 0 || len(report.Sources) != 2 {
		t.Errorf("duplicates = %d, failed = %d, sources = %d", report.Duplicates, report.Failed(), len(report.Sources))
	}

	a := report.Records[0]
	if *a.Link != "https://www.coupang.com/vp/products/A" || *a.Thumb != "//img.example/A.jpg" {
		t.Errorf("link = %s, thumb = %s", *a.Link, *a.Thumb)
	}
	if *a.Price != "1,000" || *a.Discount != "10%" || *a.Rating != 4.5 || a.Category != "kettle" {
		t.Errorf("price = %s, discount = %s, rating = %v, category = %s", *a.Price, *a.Discount, *a.Rating, a.Category)
	}
	if a.ID != identity.Hash("A") {
		t.Error("list ids hash the name")
	}
}

func TestParseCatalog_ProductCards(t *testing.T) {
	html := `<div class="row"><div class="wrapper">
<div class="product-item">
  <div class="product-picture"><img src="p.jpg"/></div>
  <div class="product-description"><div><div>Steel Pan</div></div></div>
  <div class="sale-price"><span>할인</span>12,900원</div>
  <button><svg></svg>담기</button>
</div>
<div class="product-item"><div class="product-description"> </div></div>
</div></div>`

	recs, err := New().ParseCatalog(html, catalog.ShapeProduct)
	if err != nil {
		t.Fatalf("ParseCatalog() error = %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("len = %d, want 1", len(recs))
	}
	r := recs[0]
	if *r.Name != "Steel Pan" || *r.Price != "12,900" || *r.Thumb != "p.jpg" || *r.Link != "" {
		t.Errorf("record = name %q price %q thumb %q link %q", *r.Name, *r.Price, *r.Thumb, *r.Link)
	}
	if r.ID != identity.Hash("Steel Pan", "12,900") {
		t.Error("product ids hash name and price")
	}
}

func TestParseCatalog_TextSplitByNoise(t *testing.T) {
	html := `<ul><li><img src="a.jpg" alt="테슬라"/>` +
		`<div>12,900<span class="u"></span>원</div><div>20<del>1</del>%</div></li></ul>`

	recs, err := New().ParseCatalog(html, catalog.ShapeList)
	if err != nil {
		t.Fatalf("ParseCatalog() error = %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("len = %d, want 1", len(recs))
	}
	r := recs[0]
	if r.Price == nil || *r.Price != "12,900" {
		t.Errorf("price = %v, want 12,900", r.Price)
	}
	if r.Discount == nil || *r.Discount != "20%" {
		t.Errorf("discount = %v, want 20%%", r.Discount)
	}
}

func TestCatalog_FailedSourceDoesNotStopOthers(t *testing.T) {
	dir := t.TempDir()
	empty := writeFile(t, dir, "a.txt", "   ")
	good := writeFile(t, dir, "b.txt", `<ul>`+listItem("Z")+`</ul>`)

	report, err := New().Catalog(context.Background(), []string{empty, good}, catalog.ShapeList)
	if err != nil {
		t.Fatal(err)
	}
	if report.Failed() != 1 || names(report.Records) != "Z" {
		t.Errorf("failed = %d, records = %s", report.Failed(), names(report.Records))
	}
}

type memStore struct {
	ids map[string][]uint64
}

func (m *memStore) SeenIDs(_ context.Context, kind string) ([]uint64, error) {
	return m.ids[kind], nil
}

func (m *memStore) Remember(_ context.Context, kind string, ids []uint64) (int, error) {
	if m.ids == nil {
		m.ids = map[string][]uint64{}
	}
	m.ids[kind] = append(m.ids[kind], ids...)
	return len(ids), nil
}

func TestCatalog_StoreRejectsEarlierRuns(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "1.txt", `<ul>`+listItem("A")+listItem("B")+`</ul>`)
	second := writeFile(t, dir, "2.txt", `<ul>`+listItem("B")+listItem("C")+`</ul>`)

	store := &memStore{}
	g := New(WithStore(store))
	ctx := context.Background()

	if r, err := g.Catalog(ctx, []string{first}, catalog.ShapeList); err != nil || names(r.Records) != "A,B" {
		t.Fatalf("first run = %v, %v", r, err)
	}
	r, err := g.Catalog(ctx, []string{second}, catalog.ShapeList)
	if err != nil {
		t.Fatal(err)
	}
	if names(r.Records) != "C" || r.Duplicates != 1 {
		t.Errorf("second run = %s (duplicates %d), want C", names(r.Records), r.Duplicates)
	}
	if len(store.ids[KindCatalog]) != 3 {
		t.Errorf("stored ids = %d, want 3", len(store.ids[KindCatalog]))
	}
}

func TestNews_MergesSites(t *testing.T) {
	dir := t.TempDir()
	naver := writeFile(t, dir, "naver.html", `<ul class="list_news"><li><div class="sds-comps-vertical-layout">
<a data-heatmap-target=".tit" href="https://n.example/1">Shared</a>
<div class="sds-comps-profile-info-subtext"><span>1시간 전</span></div>
</div></li><li><div class="sds-comps-vertical-layout">
<a data-heatmap-target=".tit" href="https://n.example/2">Fresh</a>
<div class="sds-comps-profile-info-subtext"><span>5분 전</span></div>
</div></li></ul>`)
	investing := writeFile(t, dir, "investing.html", `<div class="articleItem"><a class="title" href="/n/1">Shared</a><time class="date">1분 전</time></div>
<div class="articleItem"><a class="title" href="/n/2">Old</a><time class="date">2026년 01월 01일</time></div>`)

	clock := func() time.Time { return time.Date(2026, 1, 23, 12, 0, 0, 0, time.UTC) }
	report, err := New(WithClock(clock)).News(context.Background(),
		NewsBatch{Site: news.SiteNaver, Inputs: []string{naver}},
		NewsBatch{Site: news.SiteInvesting, Inputs: []string{investing}},
	)
	if err != nil {
		t.Fatalf("News() error = %v", err)
	}

	var got []string
	for _, r := range report.Records {
		got = append(got, r.Title+"@"+r.Source)
	}
	want := "Fresh@Naver,Shared@Naver,Old@Investing.com"
	if strings.Join(got, ",") != want {
		t.Errorf("records = %s, want %s", strings.Join(got, ","), want)
	}
	if report.Duplicates != 1 {
		t.Errorf("duplicates = %d", report.Duplicates)
	}

	if _, err := New().News(context.Background(), NewsBatch{Site: "daum"}); err == nil {
		t.Error("expected error for unknown site")
	}
}

func TestSubsidy(t *testing.T) {
	dir := t.TempDir()
	row := `<tr><td>서울</td><td>서울</td><td></td><td></td><td></td><td>1,000</td><td></td><td>250</td></tr>`
	path := writeFile(t, dir, "electriccar.txt", `<table><tbody>`+row+row+`</tbody></table>`)

	report, err := New().Subsidy(context.Background(), []string{path})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Records) != 2 || report.Records[0].TotalCount != 1000 || report.Records[1].ApplyCount != 250 {
		t.Errorf("records = %+v", report.Records)
	}
}

func TestSelect(t *testing.T) {
	got, err := Select(`<ul><li class="a">1</li><li>2</li><li class="a">3</li></ul>`, "li.a")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(got, "") != `<li class="a">1</li><li class="a">3</li>` {
		t.Errorf("Select() = %v", got)
	}
}

type pageFetcher map[string]string

func (f pageFetcher) Fetch(_ context.Context, url string, _ fetcher.Options) (fetcher.Content, error) {
	html, ok := f[url]
	if !ok {
		return fetcher.Content{}, fetcher.ErrHTTPStatus
	}
	return fetcher.Content{URL: url, HTML: html, StatusCode: 200}, nil
}

func (f pageFetcher) Close() error { return nil }
func (f pageFetcher) Type() string { return "pages" }

func TestCatalog_FollowsPagination(t *testing.T) {
	next := func(href string) string { return `<a class="next" href="` + href + `">next</a>` }
	site := pageFetcher{
		"https://shop.example/s?page=1": `<ul>` + listItem("A") + listItem("B") + `</ul>` + next("/s?page=2"),
		"https://shop.example/s?page=2": `<ul>` + listItem("B") + listItem("C") + `</ul>`,
	}

	g := New(
		WithFetcher(site),
		WithOrigin("https://shop.example"),
		WithPagination(crawler.Config{NextSelector: "a.next"}),
	)
	report, err := g.Catalog(context.Background(), []string{
		"https://shop.example/s?page=1",
		"https://shop.example/missing",
	}, catalog.ShapeList)
	if err != nil {
		t.Fatal(err)
	}
	if names(report.Records) != "A,B,C" {
		t.Errorf("records = %s, want A,B,C", names(report.Records))
	}
	if len(report.Sources) != 3 || report.Failed() != 1 {
		t.Errorf("sources = %d, failed = %d; want 3 and 1", len(report.Sources), report.Failed())
	}
	if *report.Records[0].Link != "https://shop.example/vp/products/A" {
		t.Errorf("link = %s", *report.Records[0].Link)
	}
}
