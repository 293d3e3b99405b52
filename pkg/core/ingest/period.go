package ingest

import (
	"fmt"
	"strings"

	"sec_insights/pkg/core/errs"
)

// NormalizeCIK converts user input into the 10-digit zero-padded CIK SEC
// expects in URLs ("320193" -> "0000320193"). Applying it twice gives the
// same result.
func NormalizeCIK(s string) (string, error) {
	trimmed := strings.TrimLeft(strings.TrimSpace(s), "0")
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty CIK %q", errs.ErrInvalidIdentifier, s)
	}
	if len(trimmed) > 10 {
		return "", fmt.Errorf("%w: CIK %q has more than 10 digits", errs.ErrInvalidIdentifier, s)
	}
	for _, r := range trimmed {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("%w: CIK %q is not numeric", errs.ErrInvalidIdentifier, s)
		}
	}
	return strings.Repeat("0", 10-len(trimmed)) + trimmed, nil
}

// FramePeriod builds the frames API period: CY2024 for a calendar year,
// CY2024Q3 for a quarter, CY2024Q3I for a point in time at quarter end.
// quarter 0 means the full year; instantaneous only applies to quarters.
func FramePeriod(year, quarter int, instantaneous bool) (string, error) {
	if quarter < 0 || quarter > 4 {
		return "", fmt.Errorf("%w: quarter must be 0-4, got %d", errs.ErrInvalidArgument, quarter)
	}
	if year <= 0 {
		return "", fmt.Errorf("%w: invalid year %d", errs.ErrInvalidArgument, year)
	}
	if quarter == 0 {
		return fmt.Sprintf("CY%d", year), nil
	}
	period := fmt.Sprintf("CY%dQ%d", year, quarter)
	if instantaneous {
		period += "I"
	}
	return period, nil
}

// FrameQuery selects one frame.
type FrameQuery struct {
	Taxonomy      string
	Tag           string
	Unit          string
	Year          int
	Quarter       int // 0 = annual
	Instantaneous bool
}

// Period validates the query and returns its period string.
func (q FrameQuery) Period() (string, error) {
	if q.Taxonomy == "" || q.Tag == "" || q.Unit == "" {
		return "", fmt.Errorf("%w: taxonomy, tag and unit are required", errs.ErrInvalidArgument)
	}
	return FramePeriod(q.Year, q.Quarter, q.Instantaneous)
}
