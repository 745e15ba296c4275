package webhook

import "testing"

func TestParse(t *testing.T) {
	t.Run("json body", func(t *testing.T) {
		body := []byte(`{"event":"ONCRMDEALUPDATE","data":{"FIELDS":{"ID":"97"}}}`)
		p, err := Parse("application/json", body)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Event != "ONCRMDEALUPDATE" || p.ID != "97" {
			t.Fatalf("unexpected payload: %+v", p)
		}
	})

	t.Run("json with charset", func(t *testing.T) {
		body := []byte(`{"event":"ONCRMDEALDELETE","data":{"FIELDS":{"ID":"42"}}}`)
		p, err := Parse("application/json; charset=utf-8", body)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Event != "ONCRMDEALDELETE" || p.ID != "42" {
			t.Fatalf("unexpected payload: %+v", p)
		}
	})

	t.Run("form body", func(t *testing.T) {
		body := []byte("event=ONCRMDEALADD&data%5BFIELDS%5D%5BID%5D=101&ts=1700000000")
		p, err := Parse("application/x-www-form-urlencoded", body)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Event != "ONCRMDEALADD" || p.ID != "101" {
			t.Fatalf("unexpected payload: %+v", p)
		}
	})

	t.Run("form body missing id", func(t *testing.T) {
		p, err := Parse("application/x-www-form-urlencoded", []byte("event=ONCRMDEALADD"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Event != "ONCRMDEALADD" || p.ID != "" {
			t.Fatalf("unexpected payload: %+v", p)
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		if _, err := Parse("application/json", []byte("{")); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("empty body", func(t *testing.T) {
		p, err := Parse("application/x-www-form-urlencoded", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Event != "" || p.ID != "" {
			t.Fatalf("unexpected payload: %+v", p)
		}
	})
}
