package attendance

import (
	"time"

	"github.com/Tiliavir/worklog-audit/internal/timecalc"
)

// Day bundles what Audit needs to judge a person: the civil date under
// audit, the timezone that defines it, and the hours threshold.
type Day struct {
	Date      timecalc.CivilDate
	Location  *time.Location
	Threshold float64
}
