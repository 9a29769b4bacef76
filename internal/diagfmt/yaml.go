package diagfmt

import (
	"io"

	"github.com/goccy/go-yaml"

	"gqlmerge/internal/attrib"
	"gqlmerge/internal/source"
)

// YAML writes the report as a YAML document with the same shape as JSON.
func YAML(w io.Writer, report *attrib.Report, set *source.FragmentSet, mode source.PathMode) error {
	data, err := yaml.Marshal(BuildReportOutput(report, set, mode, 0))
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
