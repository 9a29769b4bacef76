package diagfmt

import (
	"fmt"
	"io"

	"gqlmerge/internal/driver"
)

// OperationErrors prints operation validation failures grouped by file.
func OperationErrors(w io.Writer, errs []driver.QueryFileError, useColor bool) {
	pal := newPalette(useColor)
	fmt.Fprintln(w, pal.label.Sprint("Errors found:"))
	for _, fe := range errs {
		fmt.Fprintf(w, "\nFile: %s\n", pal.path.Sprint(fe.File))
		for _, e := range fe.Errors {
			fmt.Fprintf(w, "\t%s\n", e)
		}
	}
	fmt.Fprintln(w)
}
