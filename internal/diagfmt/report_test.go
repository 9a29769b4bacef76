package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"gqlmerge/internal/attrib"
	"gqlmerge/internal/diag"
	"gqlmerge/internal/source"
)

func sampleReport(t *testing.T) (*attrib.Report, *source.FragmentSet) {
	t.Helper()
	set := source.NewFragmentSetWithBase("/work")
	for _, f := range [][2]string{
		{"/work/schema/a.graphql", "type Foo { x: Int }"},
		{"/work/schema/b.graphql", "type Foo { y: Int }"},
		{"/work/schema/broken.graphql", "type Bar {\n\tname String\n}"},
	} {
		if _, err := set.Add(f[0], []byte(f[1]), 0); err != nil {
			t.Fatal(err)
		}
	}
	report := &attrib.Report{
		Records: []attrib.Record{
			{
				Ordinal:    1,
				Diagnostic: diag.NewSyntaxError("Expected :, found Name", diag.Location{File: "/work/schema/broken.graphql", Line: 2, Column: 7}),
				FragmentID: "/work/schema/broken.graphql",
				Candidates: []string{"/work/schema/broken.graphql"},
				Blame:      "/work/schema/broken.graphql",
				Phase:      attrib.PhaseIsolation,
			},
			{
				Ordinal:    2,
				Diagnostic: diag.NewError(diag.StageSchema, "Cannot redeclare type Foo."),
				FragmentID: attrib.Multiple,
				Candidates: []string{"/work/schema/a.graphql", "/work/schema/b.graphql"},
				Blame:      "/work/schema/b.graphql",
				Phase:      attrib.PhaseExclusion,
			},
			{
				Ordinal:    3,
				Diagnostic: diag.NewError(diag.StageSchema, "engine gave up"),
				Phase:      attrib.PhaseTail,
			},
		},
		Total: 3,
	}
	return report, set
}

func TestPretty(t *testing.T) {
	report, set := sampleReport(t)
	var buf bytes.Buffer
	Pretty(&buf, report, set, PrettyOpts{PathMode: source.PathModeRelative, Context: true, Summary: true})

	want := strings.Join([]string{
		"error(1): Expected :, found Name",
		"  --> schema/broken.graphql:2:7",
		"  2 |     name String",
		"    |          ^",
		"",
		"error(2): Cannot redeclare type Foo.",
		"  --> multiple: schema/a.graphql, schema/b.graphql",
		"",
		"error(3): engine gave up",
		"  --> unattributed",
		"",
		"total errors found: 3 (1 unattributed)",
		"",
	}, "\n")
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("Pretty mismatch (-want +got):\n%s", diff)
	}
}

func TestPrettyLinks(t *testing.T) {
	report, set := sampleReport(t)
	var buf bytes.Buffer
	Pretty(&buf, report, set, PrettyOpts{Links: true})
	if !strings.Contains(buf.String(), "file:///work/schema/broken.graphql") {
		t.Errorf("expected file URL:\n%s", buf.String())
	}
}

func TestShortAndErrorText(t *testing.T) {
	report, set := sampleReport(t)
	var buf bytes.Buffer
	Short(&buf, report, set, source.PathModeBasename)
	want := "1\tbroken.graphql\tExpected :, found Name\n" +
		"2\tmultiple: a.graphql, b.graphql\tCannot redeclare type Foo.\n" +
		"3\tunattributed\tengine gave up\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("Short mismatch (-want +got):\n%s", diff)
	}

	text := ErrorText(report, set, source.PathModeBasename)
	if !strings.Contains(text, "error(3): engine gave up (unattributed)") {
		t.Errorf("error text must include unattributed records:\n%s", text)
	}
}

func TestJSONAndYAMLShareShape(t *testing.T) {
	report, set := sampleReport(t)

	var jbuf bytes.Buffer
	if err := JSON(&jbuf, report, set, JSONOpts{PathMode: source.PathModeBasename}); err != nil {
		t.Fatal(err)
	}
	var fromJSON ReportOutput
	if err := json.Unmarshal(jbuf.Bytes(), &fromJSON); err != nil {
		t.Fatal(err)
	}

	var ybuf bytes.Buffer
	if err := YAML(&ybuf, report, set, source.PathModeBasename); err != nil {
		t.Fatal(err)
	}
	var fromYAML ReportOutput
	if err := yaml.Unmarshal(ybuf.Bytes(), &fromYAML); err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(fromJSON, fromYAML); diff != "" {
		t.Errorf("JSON and YAML differ (-json +yaml):\n%s", diff)
	}
	if fromJSON.Total != 3 || fromJSON.Unattributed != 1 {
		t.Errorf("counts = %d/%d", fromJSON.Total, fromJSON.Unattributed)
	}
	if fromJSON.Records[2].Fragment != nil {
		t.Error("unattributed record must have a null fragment")
	}
	if got := *fromJSON.Records[1].Fragment; got != attrib.Multiple {
		t.Errorf("fragment = %q", got)
	}
	if !strings.Contains(jbuf.String(), `"fragment":null`) {
		t.Errorf("expected explicit null fragment:\n%s", jbuf.String())
	}
}

func TestJSONMax(t *testing.T) {
	report, set := sampleReport(t)
	var buf bytes.Buffer
	if err := JSON(&buf, report, set, JSONOpts{Max: 1}); err != nil {
		t.Fatal(err)
	}
	var out ReportOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Records) != 1 || out.Total != 3 {
		t.Errorf("records = %d, total = %d", len(out.Records), out.Total)
	}
}

func TestLog(t *testing.T) {
	report, set := sampleReport(t)
	core, logs := observer.New(zapcore.DebugLevel)
	Log(zap.New(core), report, set, source.PathModeBasename)

	entries := logs.All()
	if len(entries) != 4 {
		t.Fatalf("entries = %d, want 3 records + summary", len(entries))
	}
	if entries[2].Level != zapcore.WarnLevel {
		t.Errorf("unattributed record logged at %v", entries[2].Level)
	}
	fields := entries[1].ContextMap()
	if fields["blame"] != "b.graphql" {
		t.Errorf("blame field = %v", fields["blame"])
	}
}

func TestSarif(t *testing.T) {
	report, set := sampleReport(t)
	var buf bytes.Buffer
	if err := Sarif(&buf, report, set, SarifRunMeta{ToolVersion: "1.0.0", PathMode: source.PathModeRelative}); err != nil {
		t.Fatal(err)
	}

	var log struct {
		Version string `json:"version"`
		Runs    []struct {
			Tool struct {
				Driver struct {
					Name string `json:"name"`
				} `json:"driver"`
			} `json:"tool"`
			Results []struct {
				RuleID    string `json:"ruleId"`
				Level     string `json:"level"`
				Locations []struct {
					PhysicalLocation struct {
						ArtifactLocation struct {
							URI string `json:"uri"`
						} `json:"artifactLocation"`
						Region *struct {
							StartLine int `json:"startLine"`
						} `json:"region"`
					} `json:"physicalLocation"`
				} `json:"locations"`
			} `json:"results"`
		} `json:"runs"`
	}
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("invalid SARIF: %v", err)
	}
	if log.Version != "2.1.0" || len(log.Runs) != 1 || log.Runs[0].Tool.Driver.Name != "gqlmerge" {
		t.Fatalf("unexpected envelope: %s", buf.String())
	}
	results := log.Runs[0].Results
	if len(results) != 3 {
		t.Fatalf("got %d results", len(results))
	}

	syntax := results[0]
	if syntax.RuleID != "syntax" || len(syntax.Locations) != 1 {
		t.Fatalf("syntax result = %+v", syntax)
	}
	if loc := syntax.Locations[0].PhysicalLocation; loc.ArtifactLocation.URI != "schema/broken.graphql" || loc.Region == nil || loc.Region.StartLine != 2 {
		t.Errorf("syntax location = %+v", loc)
	}

	var uris []string
	for _, l := range results[1].Locations {
		uris = append(uris, l.PhysicalLocation.ArtifactLocation.URI)
	}
	if diff := cmp.Diff([]string{"schema/a.graphql", "schema/b.graphql"}, uris); diff != "" {
		t.Errorf("multiple locations (-want +got):\n%s", diff)
	}

	if tail := results[2]; tail.Level != "warning" || len(tail.Locations) != 0 {
		t.Errorf("unattributed result = %+v", tail)
	}
}
