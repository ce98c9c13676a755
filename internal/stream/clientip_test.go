package stream

import (
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xri        string
		trustProxy bool
		want       string
	}{
		{
			name:       "remote addr only",
			remoteAddr: "192.0.2.1:54321",
			want:       "192.0.2.1",
		},
		{
			name:       "proxy headers ignored without trust",
			remoteAddr: "192.0.2.1:54321",
			xff:        "203.0.113.9",
			xri:        "203.0.113.10",
			want:       "192.0.2.1",
		},
		{
			name:       "forwarded-for first entry",
			remoteAddr: "10.0.0.1:1234",
			xff:        "203.0.113.9, 10.0.0.2, 10.0.0.3",
			trustProxy: true,
			want:       "203.0.113.9",
		},
		{
			name:       "real-ip fallback",
			remoteAddr: "10.0.0.1:1234",
			xri:        "203.0.113.10",
			trustProxy: true,
			want:       "203.0.113.10",
		},
		{
			name:       "trusted but no proxy headers",
			remoteAddr: "192.0.2.7:999",
			trustProxy: true,
			want:       "192.0.2.7",
		},
		{
			name:       "unparseable remote addr returned verbatim",
			remoteAddr: "not-a-hostport",
			want:       "not-a-hostport",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			if got := clientIP(r, tt.trustProxy); got != tt.want {
				t.Errorf("clientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
