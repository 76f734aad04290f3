package render

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pterm/pterm"
)

func init() {
	// Keep ANSI sequences out of assertions, same as production chat output.
	pterm.DisableStyling()
}

func TestRender_Table(t *testing.T) {
	body := "\"name\",\"count\"\n\"bgp_updates\",42\n\"flows\",7\n"

	got, err := Render(body)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if !strings.HasPrefix(got, "```\n") || !strings.HasSuffix(got, "\n```") {
		t.Errorf("Render() output not fenced: %q", got)
	}
	for _, cell := range []string{"name", "count", "bgp_updates", "42", "flows", "7"} {
		if !strings.Contains(got, cell) {
			t.Errorf("Render() output missing %q:\n%s", cell, got)
		}
	}
}

func TestRender_HeaderOnly(t *testing.T) {
	got, err := Render("\"Count()\"\n")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if diff := cmp.Diff(noRows, got); diff != "" {
		t.Errorf("Render() mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_EmptyBody(t *testing.T) {
	got, err := Render("")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if diff := cmp.Diff(noRows, got); diff != "" {
		t.Errorf("Render() mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_MalformedCSV(t *testing.T) {
	if _, err := Render("\"a\",\"b\"\n\"unterminated\n"); err == nil {
		t.Error("Render() should fail on malformed CSV")
	}
}

func TestRender_QuotedCommas(t *testing.T) {
	body := "\"asn\",\"name\"\n\"64500\",\"Example, Inc.\"\n"

	got, err := Render(body)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(got, "Example, Inc.") {
		t.Errorf("Render() lost quoted field:\n%s", got)
	}
}
