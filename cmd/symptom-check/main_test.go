package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Skufu/SymptomTriage/internal/client"
)

func fakeService(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"disease":"Respiratory Infection","advice":"Consider cough syrup. See doctor if worsens."}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCheckPrintsDiseaseAndAdvice(t *testing.T) {
	srv := fakeService(t)
	var out bytes.Buffer

	if err := check(context.Background(), client.New(srv.URL, nil), "cough", false, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "The predicted disease is: Respiratory Infection\nAdvice: Consider cough syrup. See doctor if worsens.\n"
	if out.String() != want {
		t.Fatalf("expected %q, got %q", want, out.String())
	}
}

func TestCheckBrief(t *testing.T) {
	srv := fakeService(t)
	var out bytes.Buffer

	if err := check(context.Background(), client.New(srv.URL, nil), "cough", true, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out.String()) != "The predicted disease is: Respiratory Infection" {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestReadAll(t *testing.T) {
	got, err := readAll(strings.NewReader("fever,\ncough"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "fever,\ncough\n" {
		t.Fatalf("unexpected text: %q", got)
	}
}
