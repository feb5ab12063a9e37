package iptrust

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestIsTrustedProviderNetworks(t *testing.T) {
	f := New([]string{"185.71.76.0/27", "77.75.156.11/32", "2a02:5180::/32"}, false, zap.NewNop())

	cases := []struct {
		addr string
		want bool
	}{
		{"185.71.76.5", true},
		{"185.71.76.31", true},
		{"185.71.76.40", false},
		{"77.75.156.11", true},
		{"77.75.156.12", false},
		{"2a02:5180::1", true},
		{"2a02:5181::1", false},
		{"9.9.9.9", false},
	}
	for _, tc := range cases {
		if got := f.IsTrusted(tc.addr); got != tc.want {
			t.Errorf("IsTrusted(%q) = %v, want %v", tc.addr, got, tc.want)
		}
	}
}

func TestIsTrustedLogsMatchedNetwork(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	f := New([]string{"185.71.76.0/27", "77.75.156.11/32"}, false, zap.New(core))

	if !f.IsTrusted("77.75.156.11") {
		t.Fatal("provider address should be trusted")
	}

	entries := logs.FilterMessage("webhook source matched provider network").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 match log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["network"] != "77.75.156.11/32" {
		t.Errorf("logged network = %v, want 77.75.156.11/32", fields["network"])
	}
	if fields["addr"] != "77.75.156.11" {
		t.Errorf("logged addr = %v, want 77.75.156.11", fields["addr"])
	}
}

func TestIsTrustedFailsClosed(t *testing.T) {
	f := New(nil, false, zap.NewNop())

	for _, addr := range []string{"185.71.76.5", "127.0.0.1", "not-an-ip", ""} {
		if f.IsTrusted(addr) {
			t.Errorf("IsTrusted(%q) = true with empty allowlist", addr)
		}
	}
}

func TestIsTrustedRelaxedMode(t *testing.T) {
	f := New([]string{"185.71.76.0/27"}, true, zap.NewNop())

	if !f.IsTrusted("127.0.0.1") {
		t.Error("loopback should be trusted in relaxed mode")
	}
	if !f.IsTrusted("192.168.1.10") {
		t.Error("private address should be trusted in relaxed mode")
	}
	if f.IsTrusted("9.9.9.9") {
		t.Error("public non-provider address must stay untrusted in relaxed mode")
	}
	if f.IsTrusted("bogus") {
		t.Error("unparseable address must stay untrusted in relaxed mode")
	}
}

func TestNewSkipsInvalidCIDR(t *testing.T) {
	f := New([]string{"not-a-cidr", "185.71.77.0/27"}, false, zap.NewNop())

	if !f.IsTrusted("185.71.77.3") {
		t.Error("valid entry after invalid one should still be honored")
	}
	if len(f.networks) != 1 {
		t.Errorf("expected 1 parsed network, got %d", len(f.networks))
	}
}
