package salesreport

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the wire format of report dates.
const DateLayout = "2006-01-02"

// ErrInvalidFilter is wrapped by every filter validation failure.
var ErrInvalidFilter = errors.New("salesreport: invalid filter")

var filterValidator = validator.New()

// Filter selects the report period and optional narrowing.
type Filter struct {
	From      time.Time `validate:"required"`
	To        time.Time `validate:"required,gtefield=From"`
	OrderType string    `validate:"omitempty,max=64"`
	Category  string    `validate:"omitempty,max=128"`
}

// Normalize truncates dates to days and trims the text filters.
func (f Filter) Normalize() Filter {
	f.From = truncateDay(f.From)
	f.To = truncateDay(f.To)
	f.OrderType = strings.TrimSpace(f.OrderType)
	f.Category = strings.TrimSpace(f.Category)
	return f
}

// Validate checks the filter; maxRange bounds the number of days covered
// when positive.
func (f Filter) Validate(maxRange time.Duration) error {
	if err := filterValidator.Struct(f); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("%w: %s failed %s", ErrInvalidFilter, strings.ToLower(fe.Field()), fe.Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	if maxRange > 0 && f.To.Sub(f.From) > maxRange {
		return fmt.Errorf("%w: range exceeds %d days", ErrInvalidFilter, int(maxRange.Hours()/24))
	}
	return nil
}

// Key identifies the filter in caches.
func (f Filter) Key() string {
	return strings.Join([]string{
		f.From.Format(DateLayout),
		f.To.Format(DateLayout),
		tokenOrDash(f.OrderType),
		tokenOrDash(f.Category),
	}, ":")
}

func tokenOrDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}

func truncateDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
