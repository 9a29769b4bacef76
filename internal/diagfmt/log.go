package diagfmt

import (
	"go.uber.org/zap"

	"gqlmerge/internal/attrib"
	"gqlmerge/internal/source"
)

// Log writes one structured entry per record. Unattributed records are
// logged at warn level so they stand out from localized errors.
func Log(logger *zap.Logger, report *attrib.Report, set *source.FragmentSet, mode source.PathMode) {
	if logger == nil {
		return
	}
	for _, rec := range report.Records {
		fields := []zap.Field{
			zap.Int("ordinal", rec.Ordinal),
			zap.String("stage", rec.Diagnostic.Stage.String()),
			zap.String("phase", rec.Phase.String()),
			zap.String("message", oneLine(rec.Diagnostic.Message)),
		}
		if loc := rec.Diagnostic.Location; loc.Known() {
			fields = append(fields, zap.Int("line", loc.Line), zap.Int("column", loc.Column))
		}
		if !rec.Attributed() {
			logger.Warn("unattributed schema error", fields...)
			continue
		}
		paths := make([]string, len(rec.Candidates))
		for i, id := range rec.Candidates {
			paths[i] = formatPath(set, id, mode)
		}
		fields = append(fields,
			zap.String("fragment", recordSource(rec, set, mode)),
			zap.Strings("candidates", paths),
			zap.String("blame", formatPath(set, rec.Blame, mode)),
		)
		logger.Error("schema error", fields...)
	}
	logger.Info("attribution finished",
		zap.Int("total", report.Total),
		zap.Int("unattributed", len(report.Unattributed())))
}
