package pagination

import (
	"net/url"
	"testing"
)

func TestNormalizePageSize(t *testing.T) {
	cases := map[int]int{0: DefaultPageSize, -3: DefaultPageSize, 10: 10, 500: MaxPageSize}
	for in, want := range cases {
		if got := NormalizePageSize(in); got != want {
			t.Fatalf("size %d: expected %d got %d", in, want, got)
		}
	}
}

func TestInfo(t *testing.T) {
	info := Params{Page: 2, PageSize: 10}.Info(25)
	if info.TotalPages != 3 || info.CurrentPage != 2 || !info.HasNext || !info.HasPrevious {
		t.Fatalf("unexpected info %+v", info)
	}

	last := Params{Page: 3, PageSize: 10}.Info(25)
	if last.HasNext {
		t.Fatalf("last page must not have next: %+v", last)
	}

	empty := Params{}.Info(0)
	if empty.TotalPages != 0 || empty.HasNext || empty.HasPrevious || empty.CurrentPage != 1 {
		t.Fatalf("unexpected empty info %+v", empty)
	}
}

func TestWindow(t *testing.T) {
	start, end := Params{Page: 3, PageSize: 10}.Window(25)
	if start != 20 || end != 25 {
		t.Fatalf("expected [20,25), got [%d,%d)", start, end)
	}
	start, end = Params{Page: 9, PageSize: 10}.Window(25)
	if start != 25 || end != 25 {
		t.Fatalf("expected empty window past the end, got [%d,%d)", start, end)
	}
}

func TestValuesRoundTrip(t *testing.T) {
	values := Params{Page: 4, PageSize: 15}.Values()
	if values.Get("page") != "4" || values.Get("page_size") != "15" {
		t.Fatalf("unexpected values %v", values)
	}
	got := FromValues(values)
	if got.Page != 4 || got.PageSize != 15 {
		t.Fatalf("unexpected params %+v", got)
	}

	if len(Params{}.Values()) != 0 {
		t.Fatal("zero params must encode to no values")
	}
}

func TestFromValuesDefaults(t *testing.T) {
	got := FromValues(url.Values{"page": {"abc"}, "page_size": {"-1"}})
	if got.Page != 1 || got.PageSize != DefaultPageSize {
		t.Fatalf("unexpected defaults %+v", got)
	}
}
