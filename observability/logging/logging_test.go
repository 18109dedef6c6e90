package logging

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestSetupEmitsStructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("decentpay-gateway", "testnet", Options{Output: &buf})
	logger.Info("listening", "addr", ":8080")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if line["message"] != "listening" {
		t.Fatalf("unexpected message: %v", line["message"])
	}
	if line["severity"] != "INFO" {
		t.Fatalf("unexpected severity: %v", line["severity"])
	}
	if line["service"] != "decentpay-gateway" {
		t.Fatalf("unexpected service: %v", line["service"])
	}
	if line["network"] != "testnet" {
		t.Fatalf("unexpected network: %v", line["network"])
	}
	if _, ok := line["timestamp"]; !ok {
		t.Fatalf("expected a timestamp field")
	}
}

func TestSetupHonorsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("decentpay-cli", "", Options{Level: "warn", Output: &buf})
	logger.Info("suppressed")
	if buf.Len() != 0 {
		t.Fatalf("info line leaked past warn level: %s", buf.String())
	}
	logger.Warn("kept")
	if buf.Len() == 0 {
		t.Fatalf("warn line was suppressed")
	}
}

func TestMaskFieldRedactsSensitiveKeys(t *testing.T) {
	attr := MaskField("auth_token", "secret")
	if attr.Value.String() != RedactedValue {
		t.Fatalf("auth token was not masked: %s", attr.Value.String())
	}
	attr = MaskField("function", "get_escrow")
	if attr.Value.String() != "get_escrow" {
		t.Fatalf("harmless field was masked: %s", attr.Value.String())
	}
	attr = MaskField("signature", "")
	if attr.Value.String() != "" {
		t.Fatalf("empty value should pass through: %s", attr.Value.String())
	}
}
