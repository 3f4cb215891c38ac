package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"parallel-timeline/internal/timeline"
)

const testCSV = `Order,Era Title,Main Background,Comparative Background,Comparative Background Color,Group Title,Main/Comparative,Event Date,Event Brief,Event Text,Image URL,Image Caption,Image left|right|top|bottom
1,Antiquity,rome.jpg,,,Republic,Main,509 BC,Republic founded,,forum.jpg,Forum,left
2,Antiquity,rome.jpg,,,,Comparative,490 BC,Marathon,,,,
3,Medieval,,,,,,,,,,,
`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConvert_csvToJSON(t *testing.T) {
	in := writeFile(t, "timeline.csv", testCSV)
	outPath := filepath.Join(t.TempDir(), "timeline.json")

	if _, err := run(t, "", "convert", in, outPath); err != nil {
		t.Fatalf("convert: %v", err)
	}
	doc, err := timeline.LoadFile(outPath)
	if err != nil {
		t.Fatalf("load converted: %v", err)
	}
	if len(doc.Eras) != 2 || len(doc.Eras[0].EventGroups) != 1 {
		t.Errorf("unexpected document %+v", doc)
	}
}

func TestConvert_stdinToStdout(t *testing.T) {
	out, err := run(t, `{"eras":[{"title":{"headline":"Antiquity"}}]}`, "convert", "-", "-", "--to", "yaml")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if !strings.Contains(out, "headline: Antiquity") {
		t.Errorf("unexpected yaml output:\n%s", out)
	}
}

func TestConvert_unsupportedFormat(t *testing.T) {
	_, err := run(t, "", "convert", "in.txt", "out.json")
	if !errors.Is(err, timeline.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
	_, err = run(t, "{}", "convert", "-", "-", "--to", "xml")
	if !errors.Is(err, timeline.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat for --to xml, got %v", err)
	}
}

func TestInspect(t *testing.T) {
	in := writeFile(t, "timeline.csv", testCSV)

	out, err := run(t, "", "inspect", in)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if !strings.HasPrefix(out, "2 eras, 2 pages, 0 app tracks") {
		t.Errorf("unexpected summary:\n%s", out)
	}
	if !strings.Contains(out, "title-page") {
		t.Errorf("expected a title page row:\n%s", out)
	}

	out, err = run(t, "", "inspect", in, "--json")
	if err != nil {
		t.Fatalf("inspect --json: %v", err)
	}
	var report inspectReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if len(report.Pages) != 2 || len(report.DrawerCards) != 2 || report.DrawerCards[1].FirstPageIndex != 1 {
		t.Errorf("unexpected report %+v", report)
	}
}

func TestValidate(t *testing.T) {
	good := writeFile(t, "good.csv", testCSV)
	out, err := run(t, "", "validate", good)
	if err != nil || strings.TrimSpace(out) != "ok" {
		t.Errorf("validate good: out %q err %v", out, err)
	}

	bad := writeFile(t, "bad.json", `{"eras":[{"eventGroups":[{"mainEvents":[{"image":{"url":"x.jpg","position":"middle"}}]}]}]}`)
	out, err = run(t, "", "validate", bad)
	if !errors.Is(err, errInvalid) {
		t.Errorf("expected errInvalid, got %v", err)
	}
	if !strings.Contains(out, "position") {
		t.Errorf("expected the issue to be printed:\n%s", out)
	}
}
