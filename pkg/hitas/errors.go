package hitas

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// IndexMissingError reports that a required index value for a given period is
// absent. It always propagates uncaught out of the calculation core; the
// caller translates it into a diagnostic naming the exact missing index and
// period. Missing indices are never defaulted.
type IndexMissingError struct {
	ErrorCode string
	Date      time.Time
}

func (e *IndexMissingError) Error() string {
	return fmt.Sprintf("%s: index value missing for %s", e.ErrorCode, e.Date.Format("2006-01"))
}

// InvalidCalculationResultError reports a computation whose result is
// logically invalid under the business rules, such as a non-positive maximum
// price. Fatal to the single calculation, not to a batch.
type InvalidCalculationResultError struct {
	ErrorCode string
}

func (e *InvalidCalculationResultError) Error() string {
	return fmt.Sprintf("invalid calculation result: %s", e.ErrorCode)
}

// MissingValuesError aggregates every housing company or apartment whose
// expected data turned out to be absent, so operators see all required fixes
// in one pass instead of one per run.
type MissingValuesError struct {
	Reason string
	Names  []string
}

func (e *MissingValuesError) Error() string {
	names := append([]string(nil), e.Names...)
	sort.Strings(names)
	return fmt.Sprintf("%s: %s", e.Reason, strings.Join(names, ", "))
}
