package diagfmt

import (
	"encoding/json"
	"io"

	"gqlmerge/internal/attrib"
	"gqlmerge/internal/source"
)

const (
	sarifVersion = "2.1.0"
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
)

// SarifRunMeta describes the tool of a SARIF run.
type SarifRunMeta struct {
	ToolName    string
	ToolVersion string
	PathMode    source.PathMode
}

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

type sarifResult struct {
	RuleID     string            `json:"ruleId"`
	Level      string            `json:"level"`
	Message    sarifMessage      `json:"message"`
	Locations  []sarifLocation   `json:"locations,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysical `json:"physicalLocation"`
}

type sarifPhysical struct {
	ArtifactLocation sarifArtifact `json:"artifactLocation"`
	Region           *sarifRegion  `json:"region,omitempty"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn,omitempty"`
}

// Sarif форматирует отчёт в SARIF (v2.1.0). Каждая запись даёт один result;
// у записи "multiple" по локации на каждого кандидата, у неатрибутированной
// локаций нет.
func Sarif(w io.Writer, report *attrib.Report, set *source.FragmentSet, meta SarifRunMeta) error {
	name := meta.ToolName
	if name == "" {
		name = "gqlmerge"
	}
	results := make([]sarifResult, 0, len(report.Records))
	for _, rec := range report.Records {
		res := sarifResult{
			RuleID:     rec.Diagnostic.Stage.String(),
			Level:      sarifLevel(rec),
			Message:    sarifMessage{Text: rec.Diagnostic.Message},
			Properties: map[string]string{"phase": rec.Phase.String()},
		}
		switch {
		case !rec.Attributed():
		case rec.IsMultiple():
			for _, id := range rec.Candidates {
				res.Locations = append(res.Locations, sarifLocationFor(set, id, meta.PathMode, nil))
			}
			res.Properties["blame"] = formatPath(set, rec.Blame, meta.PathMode)
		default:
			var region *sarifRegion
			if loc := rec.Diagnostic.Location; loc.Known() && loc.File == rec.FragmentID {
				region = &sarifRegion{StartLine: loc.Line, StartColumn: loc.Column}
			}
			res.Locations = append(res.Locations, sarifLocationFor(set, rec.FragmentID, meta.PathMode, region))
		}
		results = append(results, res)
	}

	log := sarifLog{
		Version: sarifVersion,
		Schema:  sarifSchema,
		Runs: []sarifRun{{
			Tool:    sarifTool{Driver: sarifDriver{Name: name, Version: meta.ToolVersion}},
			Results: results,
		}},
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(log)
}

func sarifLevel(rec attrib.Record) string {
	if !rec.Attributed() {
		return "warning"
	}
	return "error"
}

func sarifLocationFor(set *source.FragmentSet, id string, mode source.PathMode, region *sarifRegion) sarifLocation {
	return sarifLocation{PhysicalLocation: sarifPhysical{
		ArtifactLocation: sarifArtifact{URI: formatPath(set, id, mode)},
		Region:           region,
	}}
}
