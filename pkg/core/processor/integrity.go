package processor

import "math"

// Integrity check statuses.
const (
	StatusMatch            = "MATCH"
	StatusImmaterial       = "IMMATERIAL"
	StatusMaterialMismatch = "MATERIAL_MISMATCH"
)

// materialityPct is the tolerance, in percent of the reported value, below
// which a difference is immaterial.
const materialityPct = 0.05

// IntegrityCheck compares a reported total with the sum of its components
// for one period.
type IntegrityCheck struct {
	Name       string  `json:"name"`
	Period     string  `json:"period"`
	Reported   float64 `json:"reported"`
	Calculated float64 `json:"calculated"`
	Variance   float64 `json:"variance"`
	Status     string  `json:"status"`
}

// VerifyIntegrity checks every period where both the reported and the
// calculated column have a value.
func VerifyIntegrity(st *Statement, reportedCol, calculatedCol string) []IntegrityCheck {
	var checks []IntegrityCheck
	for i, p := range st.periods {
		reported, ok := st.Value(reportedCol, i)
		if !ok {
			continue
		}
		calculated, ok := st.Value(calculatedCol, i)
		if !ok {
			continue
		}

		diff := calculated - reported
		status := StatusMatch
		if diff != 0 {
			status = StatusMaterialMismatch
			if reported != 0 && math.Abs(diff/reported*100) <= materialityPct {
				status = StatusImmaterial
			}
		}

		checks = append(checks, IntegrityCheck{
			Name:       reportedCol,
			Period:     p.Format(dateLayout),
			Reported:   reported,
			Calculated: calculated,
			Variance:   diff,
			Status:     status,
		})
	}
	return checks
}
