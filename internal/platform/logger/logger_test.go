package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func observed(redact bool) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return &Logger{SugaredLogger: zap.New(core).Sugar(), redact: redact, hashSalt: "salt"}, logs
}

func TestRedactsSensitiveKeys(t *testing.T) {
	log, logs := observed(true)
	log.Info("request", "api_key", "secret-key", "pack_code", "delivery_ops")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries: want=1 got=%d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["api_key"] != "[REDACTED]" {
		t.Fatalf("api_key: want=[REDACTED] got=%v", fields["api_key"])
	}
	if fields["pack_code"] != "delivery_ops" {
		t.Fatalf("pack_code: want=delivery_ops got=%v", fields["pack_code"])
	}
}

func TestHashesClientAddress(t *testing.T) {
	log, logs := observed(true)
	log.With("client_ip", "10.0.0.1").Info("request")

	fields := logs.All()[0].ContextMap()
	got, _ := fields["client_ip"].(string)
	if got == "10.0.0.1" || len(got) != len("hash:")+12 {
		t.Fatalf("client_ip: expected hashed value, got %q", got)
	}
}

func TestRedactionDisabled(t *testing.T) {
	log, logs := observed(false)
	log.Warn("request", "token", "abc")

	if got := logs.All()[0].ContextMap()["token"]; got != "abc" {
		t.Fatalf("token: want=abc got=%v", got)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]string{"debug": "debug", "WARN": "warn", "error": "error", "": "info", "bogus": "info"}
	for in, want := range cases {
		if got := parseLevel(in).String(); got != want {
			t.Fatalf("parseLevel(%q): want=%s got=%s", in, want, got)
		}
	}
}
