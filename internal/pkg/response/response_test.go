package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func record(t *testing.T, fn func(c *gin.Context)) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	fn(c)

	var body map[string]interface{}
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid json body %q: %v", w.Body.String(), err)
		}
	}
	return w, body
}

func TestOKEnvelope(t *testing.T) {
	w, body := record(t, func(c *gin.Context) {
		OK(c, gin.H{"id": "a1"})
	})
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if body["success"] != true {
		t.Errorf("success = %v, want true", body["success"])
	}
	if _, ok := body["error"]; ok {
		t.Error("success response must not carry an error field")
	}
}

func TestErrorEnvelope(t *testing.T) {
	w, body := record(t, func(c *gin.Context) {
		BadRequest(c, "articleId is required")
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if body["success"] != false {
		t.Errorf("success = %v, want false", body["success"])
	}
	if body["error"] != "articleId is required" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestGoneAndConflict(t *testing.T) {
	w, _ := record(t, func(c *gin.Context) { Gone(c, "already deleted") })
	if w.Code != http.StatusGone {
		t.Errorf("Gone status = %d, want 410", w.Code)
	}
	w, _ = record(t, func(c *gin.Context) { Conflict(c, "busy") })
	if w.Code != http.StatusConflict {
		t.Errorf("Conflict status = %d, want 409", w.Code)
	}
}

func TestPagedEnvelope(t *testing.T) {
	_, body := record(t, func(c *gin.Context) {
		Paged(c, []string{"a"}, Pagination{Total: 1, CurrentPage: 1, TotalPage: 1, Size: 10})
	})
	pag, ok := body["pagination"].(map[string]interface{})
	if !ok {
		t.Fatalf("pagination missing: %v", body)
	}
	if pag["total"] != float64(1) {
		t.Errorf("total = %v, want 1", pag["total"])
	}
}
