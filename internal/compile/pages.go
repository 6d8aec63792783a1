package compile

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// PageCount returns the number of pages in a PDF file
func PageCount(pdfPath string) (int, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return 0, &Error{Message: fmt.Sprintf("failed to open PDF: %s", pdfPath), Cause: err}
	}
	defer f.Close()

	count, err := api.PageCount(f, nil)
	if err != nil {
		return 0, &Error{Message: fmt.Sprintf("failed to count pages: %s", pdfPath), Cause: err}
	}
	return count, nil
}
