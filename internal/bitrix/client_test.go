package bitrix

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetDeal(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/crm.deal.get.json" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode request: %v", err)
			}
			if body["id"] != "97" {
				t.Errorf("unexpected id: %v", body["id"])
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"result": map[string]any{
					"ID":    "97",
					"TITLE": "Fix bug",
				},
			})
		}))
		defer srv.Close()

		c := NewClient(srv.URL)
		deal, err := c.GetDeal(context.Background(), "97")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if deal.ID != "97" || deal.Title != "Fix bug" {
			t.Fatalf("unexpected deal: %+v", deal)
		}
	})

	t.Run("api error envelope", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"NOT_FOUND","error_description":"Not found"}`))
		}))
		defer srv.Close()

		c := NewClient(srv.URL)
		_, err := c.GetDeal(context.Background(), "404")
		if err == nil {
			t.Fatal("expected error")
		}
		var apiErr APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected APIError, got %v", err)
		}
		if apiErr.Errors != "NOT_FOUND" {
			t.Fatalf("unexpected api error: %+v", apiErr)
		}
	})

	t.Run("empty result envelope", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"time":{}}`))
		}))
		defer srv.Close()

		c := NewClient(srv.URL)
		_, err := c.GetDeal(context.Background(), "97")
		if !errors.Is(err, ErrEmptyResult) {
			t.Fatalf("expected ErrEmptyResult, got %v", err)
		}
	})
}

func TestGetDealFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/crm.deal.fields.json" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"result":{
			"UF_CRM_1761285087347":{"type":"enumeration","items":[{"ID":"192","VALUE":"Internal"}]},
			"TITLE":{"type":"string"}
		}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	fields, err := c.GetDealFields(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	meta, ok := fields[FieldReturnType]
	if !ok {
		t.Fatalf("missing field %s", FieldReturnType)
	}
	if len(meta.Items) != 1 || meta.Items[0].Value != "Internal" {
		t.Fatalf("unexpected items: %+v", meta.Items)
	}
}

func TestUpdateDealTitle(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var got map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/crm.deal.update.json" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			_ = json.NewDecoder(r.Body).Decode(&got)
			_, _ = w.Write([]byte(`{"result":true}`))
		}))
		defer srv.Close()

		c := NewClient(srv.URL)
		if err := c.UpdateDealTitle(context.Background(), "97", "♨️ Fix bug"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		fields, _ := got["fields"].(map[string]any)
		if fields["TITLE"] != "♨️ Fix bug" {
			t.Fatalf("unexpected update payload: %v", got)
		}
	})

	t.Run("failure surfaces in return", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`boom`))
		}))
		defer srv.Close()

		c := NewClient(srv.URL)
		if err := c.UpdateDealTitle(context.Background(), "97", "x"); err == nil {
			t.Fatal("expected error")
		}
	})
}
