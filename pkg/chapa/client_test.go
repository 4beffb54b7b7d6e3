package chapa

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hermon", "Hermon"},
		{"  O'Neil-Smith ", "O'Neil-Smith"},
		{"穆罕默德", "User"},
		{"", "User"},
		{"Jean@Pierre!", "JeanPierre"},
		{"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"},
	}
	for _, tt := range tests {
		if got := SanitizeName(tt.in); got != tt.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"user@gmail.com", "user@gmail.com"},
		{"  USER@Gmail.Com ", "user@gmail.com"},
		{"user@unknown-host.xy", "payer@rent.com"},
		{"not-an-email", "payer@rent.com"},
		{"", "payer@rent.com"},
		{"a@b", "payer@rent.com"},
	}
	for _, tt := range tests {
		if got := SanitizeEmail(tt.in); got != tt.want {
			t.Errorf("SanitizeEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestInitialize(t *testing.T) {
	t.Run("returns the checkout url", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/v1/transaction/initialize" {
				t.Errorf("path = %s", r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
				t.Errorf("auth header = %q", got)
			}
			w.Write([]byte(`{"status":"success","data":{"checkout_url":"https://checkout.chapa.co/x"}}`))
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "sk-test")
		url, err := c.Initialize(context.Background(), InitializeRequest{
			Amount: "1000", Email: "payer@rent.com", FirstName: "Hermon", TxRef: "grp1-usr2-abc",
		})
		if err != nil {
			t.Fatalf("Initialize failed: %v", err)
		}
		if url != "https://checkout.chapa.co/x" {
			t.Errorf("checkout url = %q", url)
		}
	})

	t.Run("provider failure surfaces as an api error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"status":"failed","message":"Invalid currency"}`))
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "sk-test")
		_, err := c.Initialize(context.Background(), InitializeRequest{Amount: "1000"})
		apiErr, ok := err.(*APIError)
		if !ok {
			t.Fatalf("err = %v, want *APIError", err)
		}
		if apiErr.StatusCode != http.StatusBadRequest || apiErr.Message != "Invalid currency" {
			t.Errorf("apiErr = %+v", apiErr)
		}
	})
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"successful transaction", `{"status":"success","data":{"status":"success","tx_ref":"abc"}}`, true},
		{"pending transaction", `{"status":"success","data":{"status":"pending","tx_ref":"abc"}}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/v1/transaction/verify/abc" {
					t.Errorf("path = %s", r.URL.Path)
				}
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL, "sk-test")
			ok, err := c.Verify(context.Background(), "abc")
			if err != nil {
				t.Fatalf("Verify failed: %v", err)
			}
			if ok != tt.want {
				t.Errorf("Verify = %v, want %v", ok, tt.want)
			}
		})
	}
}
