package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func queryFor(t *testing.T, rawQuery string) Query {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+rawQuery, nil)
	return FromContext(c)
}

func TestFromContextDefaults(t *testing.T) {
	q := queryFor(t, "")
	if q.Page != 1 || q.Size != 10 {
		t.Errorf("got %+v, want page 1 size 10", q)
	}
}

func TestFromContextClamping(t *testing.T) {
	cases := []struct {
		raw      string
		page     int
		size     int
	}{
		{"page=3&size=25", 3, 25},
		{"page=-1&size=0", 1, 10},
		{"page=abc&size=xyz", 1, 10},
		{"page=1&size=9999", 1, 100},
	}
	for _, tc := range cases {
		q := queryFor(t, tc.raw)
		if q.Page != tc.page || q.Size != tc.size {
			t.Errorf("%q: got %+v, want page %d size %d", tc.raw, q, tc.page, tc.size)
		}
	}
}

func TestMeta(t *testing.T) {
	m := Meta(25, Query{Page: 2, Size: 10})
	if m.TotalPage != 3 {
		t.Errorf("TotalPage = %d, want 3", m.TotalPage)
	}
	if !m.HasNextPage {
		t.Error("page 2 of 3 should have a next page")
	}

	last := Meta(25, Query{Page: 3, Size: 10})
	if last.HasNextPage {
		t.Error("last page should not have a next page")
	}

	empty := Meta(0, Query{Page: 1, Size: 10})
	if empty.TotalPage != 0 || empty.HasNextPage {
		t.Errorf("empty result meta = %+v", empty)
	}
}
