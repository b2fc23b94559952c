package tikrelay

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExtractVideoID(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{
			name: "standard url",
			url:  "https://www.tiktok.com/@selenagomez/video/7001245956863126789",
			want: "7001245956863126789",
		},
		{
			name: "standard url without scheme",
			url:  "www.tiktok.com/@user.name/video/123456",
			want: "123456",
		},
		{
			name: "vm short link",
			url:  "https://vm.tiktok.com/ZMabc123/",
			want: "ZMabc123",
		},
		{
			name: "vt short link",
			url:  "https://vt.tiktok.com/ZSxyz789/",
			want: "ZSxyz789",
		},
		{
			name: "t short link",
			url:  "https://www.tiktok.com/t/ZTabcdef/",
			want: "ZTabcdef",
		},
		{
			name: "mobile url",
			url:  "https://m.tiktok.com/@someone/video/555",
			want: "555",
		},
		{
			name: "share url with query",
			url:  "https://www.tiktok.com/@user/video/777?is_from_webapp=1&sender_device=pc",
			want: "777",
		},
		{
			name: "bare video path",
			url:  "/video/424242",
			want: "424242",
		},
		{
			name:    "unrelated url",
			url:     "https://example.com/watch?v=abc",
			wantErr: true,
		},
		{
			name:    "empty",
			url:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ExtractVideoID(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExtractVideoID(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidURL) {
					t.Errorf("expected ErrInvalidURL, got %v", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ExtractVideoID(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestIsTikTokURL(t *testing.T) {
	t.Parallel()
	if !IsTikTokURL("https://www.tiktok.com/@user/video/1") {
		t.Error("expected tiktok.com url to be accepted")
	}
	if !IsTikTokURL("vm.tiktok.com/ZM123") {
		t.Error("expected short link to be accepted")
	}
	if IsTikTokURL("https://example.com/video/1") {
		t.Error("expected non-tiktok url to be rejected")
	}
}

func TestNormalizeURL_AddsScheme(t *testing.T) {
	t.Parallel()
	c := New()
	got := c.NormalizeURL(context.Background(), "www.tiktok.com/@user/video/1")
	if got != "https://www.tiktok.com/@user/video/1" {
		t.Errorf("expected https prefix, got %q", got)
	}
}

func TestNormalizeURL_PassthroughCanonical(t *testing.T) {
	t.Parallel()
	c := New()
	in := "https://www.tiktok.com/@user/video/1"
	if got := c.NormalizeURL(context.Background(), in); got != in {
		t.Errorf("expected canonical url unchanged, got %q", got)
	}
}

func TestResolveRedirect(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("expected HEAD, got %s", r.Method)
		}
		if r.URL.Path == "/short" {
			http.Redirect(w, r, "/@user/video/987", http.StatusMovedPermanently)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New()
	got, err := c.resolveRedirect(context.Background(), srv.URL+"/short")
	if err != nil {
		t.Fatalf("resolveRedirect: %v", err)
	}
	if got != srv.URL+"/@user/video/987" {
		t.Errorf("expected expanded url, got %q", got)
	}
}

func TestNormalizeURL_ShortLinkExpansionFailureKeepsInput(t *testing.T) {
	t.Parallel()
	c := New()
	// vm.tiktok.com is unreachable from the test transport; the input must
	// survive with a scheme attached.
	c.client.Transport = roundTripperFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("dial blocked")
	})

	got := c.NormalizeURL(context.Background(), "vm.tiktok.com/ZM123")
	if got != "https://vm.tiktok.com/ZM123" {
		t.Errorf("expected input kept with scheme, got %q", got)
	}
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
