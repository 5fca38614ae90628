// Package schedule parses the cron expressions that drive scheduled checks.
package schedule

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// DefaultExpression runs every five minutes, on the minute
const DefaultExpression = "0 */5 * * * *"

var parser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Parse parses a cron expression with a leading seconds field.
// A trailing year field is accepted when it is "*", so that expressions
// such as "0 */5 * * * * *" keep working.
func Parse(expr string) (cron.Schedule, error) {
	fields := strings.Fields(expr)
	if len(fields) == 0 {
		return nil, fmt.Errorf("schedule is empty")
	}

	if len(fields) == 7 {
		if fields[6] != "*" {
			return nil, fmt.Errorf("year field %q is not supported, use *", fields[6])
		}
		fields = fields[:6]
	}

	s, err := parser.Parse(strings.Join(fields, " "))
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", expr, err)
	}
	return s, nil
}
