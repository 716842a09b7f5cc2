package services

import (
	"errors"

	"gripulse/internal/dataprocessing"
	apierrors "gripulse/internal/errors"
)

// Data service errors
var (
	ErrNoDataFound = errors.New("no data found")

	// Report errors
	ErrReportNotFound = errors.New("report not found")

	// Agent errors
	ErrSessionNotFound = errors.New("chat session not found")
)

// companyWorkbookError maps loader failures on request-supplied
// workbook names: names that are not bare file names are validation
// errors, anything else means the workbook is not there.
func companyWorkbookError(err error) error {
	if errors.Is(err, dataprocessing.ErrBadWorkbookName) {
		return apierrors.ErrValidation("company", "Company must be a bare workbook file name")
	}
	return apierrors.NotFoundError("company workbook")
}
