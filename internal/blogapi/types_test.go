package blogapi

import (
	"encoding/json"
	"testing"
	"time"
)

func TestComment_UnmarshalCollapsesWireVariants(t *testing.T) {
	variantA := []byte(`{"id":"c1","author":"alice","text":"hi","created_at":"2025-06-01T10:00:00Z"}`)
	variantB := []byte(`{"id":"c2","author_username":"bob","content":"hey","created_at":"2025-06-01T11:00:00"}`)

	var a, b Comment
	if err := json.Unmarshal(variantA, &a); err != nil {
		t.Fatalf("unmarshal variant A: %v", err)
	}
	if err := json.Unmarshal(variantB, &b); err != nil {
		t.Fatalf("unmarshal variant B: %v", err)
	}

	if a.Author != "alice" || a.Text != "hi" {
		t.Fatalf("variant A mis-decoded: %+v", a)
	}
	if b.Author != "bob" || b.Text != "hey" {
		t.Fatalf("variant B mis-decoded: %+v", b)
	}
}

func TestComment_CanonicalFieldsWinOverVariants(t *testing.T) {
	raw := []byte(`{"id":"c1","author":"alice","author_username":"ignored","text":"hi","content":"ignored"}`)
	var c Comment
	if err := json.Unmarshal(raw, &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.Author != "alice" || c.Text != "hi" {
		t.Fatalf("canonical fields should take precedence: %+v", c)
	}
}

func TestAPITime_ZonelessParsedAsUTC(t *testing.T) {
	for _, raw := range []string{
		`"2025-06-01T10:30:00.123456"`,
		`"2025-06-01 10:30:00.123456"`,
	} {
		var ts apiTime
		if err := json.Unmarshal([]byte(raw), &ts); err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		got := time.Time(ts)
		want := time.Date(2025, 6, 1, 10, 30, 0, 123456000, time.UTC)
		if !got.Equal(want) {
			t.Fatalf("parsed %s as %v, want %v", raw, got, want)
		}
	}
}

func TestAPITime_RejectsGarbage(t *testing.T) {
	var ts apiTime
	if err := json.Unmarshal([]byte(`"last tuesday"`), &ts); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestPost_RoundTripKeepsCreatedAt(t *testing.T) {
	post := Post{
		ID:        "p1",
		Author:    "alice",
		Title:     "hello",
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Tags:      []string{"go"},
	}

	data, err := json.Marshal(post)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded Post
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !decoded.CreatedAt.Equal(post.CreatedAt) {
		t.Fatalf("created_at drifted: %v != %v", decoded.CreatedAt, post.CreatedAt)
	}
}

func TestAccessRequest_DecodesRequesterUsername(t *testing.T) {
	raw := []byte(`{"id":"7","post_id":"p1","requester_username":"bob","status":"pending","created_at":"2025-06-01T09:00:00"}`)
	var request AccessRequest
	if err := json.Unmarshal(raw, &request); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if request.Requester != "bob" || request.Status != AccessPending {
		t.Fatalf("mis-decoded request: %+v", request)
	}
	if request.CreatedAt.IsZero() {
		t.Fatal("created_at not decoded")
	}
}
