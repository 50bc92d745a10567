package goal

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrInvalidInput marks input-shape errors: the caller must fix the request.
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
)

// CheckOwner rejects access to a record owned by someone else.
func CheckOwner(owner, user uuid.UUID) error {
	if owner != user {
		return ErrUnauthorized
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func requireTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return invalid("title is required")
	}
	return nil
}

func checkYear(year int) error {
	if year < 1900 || year > 9999 {
		return invalid("year %d out of range", year)
	}
	return nil
}

func (m Measure) Validate() error {
	if math.IsNaN(m.TargetValue) || math.IsInf(m.TargetValue, 0) || m.TargetValue < 0 {
		return invalid("target_value must be a non-negative number")
	}
	if math.IsNaN(m.CurrentValue) || math.IsInf(m.CurrentValue, 0) || m.CurrentValue < 0 {
		return invalid("current_value must be a non-negative number")
	}
	return nil
}

// CheckValue validates a progress value submitted through the update path.
func CheckValue(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return invalid("value must be a non-negative number")
	}
	return nil
}

func (a *Ambition) Validate() error {
	if err := requireTitle(a.Title); err != nil {
		return err
	}
	if err := checkYear(a.Year); err != nil {
		return err
	}
	if !a.Category.IsValid() {
		return invalid("unknown category")
	}
	if !a.Priority.IsValid() {
		return invalid("unknown priority")
	}
	return nil
}

func (k *KeyResult) Validate() error {
	if err := requireTitle(k.Title); err != nil {
		return err
	}
	return k.Measure.Validate()
}

func (o *QuarterlyObjective) Validate() error {
	if err := requireTitle(o.Title); err != nil {
		return err
	}
	if err := checkYear(o.Year); err != nil {
		return err
	}
	if !o.Quarter.IsValid() {
		return invalid("unknown quarter")
	}
	return nil
}

func (k *QuarterlyKeyResult) Validate() error {
	if err := requireTitle(k.Title); err != nil {
		return err
	}
	if math.IsNaN(k.Weight) || k.Weight < 0 || k.Weight > 100 {
		return invalid("weight must be between 0 and 100")
	}
	return k.Measure.Validate()
}

func (a *Action) Validate() error {
	if err := requireTitle(a.Title); err != nil {
		return err
	}
	if !a.Status.IsValid() {
		return invalid("unknown status")
	}
	if !a.Priority.IsValid() {
		return invalid("unknown priority")
	}
	if a.QuarterlyKeyResultID == nil && a.ObjectiveID == nil {
		return invalid("action needs a quarterly key result or an objective")
	}
	if a.OrderIndex < 0 {
		return invalid("order_index must not be negative")
	}
	if a.Status == StatusDone && a.CompletedAt == nil {
		return invalid("done action without completed_at")
	}
	if a.Status != StatusDone && a.CompletedAt != nil {
		return invalid("completed_at set on a %s action", a.Status)
	}
	return nil
}
