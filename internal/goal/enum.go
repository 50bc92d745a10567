package goal

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Every enum is declared as a small integer plus one table that maps each
// variant to its API name (lowercase) and its store name (uppercase). The
// table length is pinned to the variant count below, so adding a variant
// without a table row fails to compile.

type enumNames struct {
	app   string
	store string
}

type enumTable[T ~uint8] struct {
	kind    string
	names   []enumNames
	byApp   map[string]T
	byStore map[string]T
}

func newEnumTable[T ~uint8](kind string, names []enumNames) *enumTable[T] {
	t := &enumTable[T]{
		kind:    kind,
		names:   names,
		byApp:   make(map[string]T, len(names)),
		byStore: make(map[string]T, len(names)),
	}
	for i, n := range names {
		if n.app == "" || n.store == "" {
			panic(fmt.Sprintf("goal: %s variant %d has no name", kind, i))
		}
		if _, dup := t.byApp[n.app]; dup {
			panic(fmt.Sprintf("goal: duplicate %s name %q", kind, n.app))
		}
		if _, dup := t.byStore[n.store]; dup {
			panic(fmt.Sprintf("goal: duplicate %s store name %q", kind, n.store))
		}
		t.byApp[n.app] = T(i)
		t.byStore[n.store] = T(i)
	}
	return t
}

func (t *enumTable[T]) valid(v T) bool { return int(v) < len(t.names) }

func (t *enumTable[T]) app(v T) string {
	if !t.valid(v) {
		return fmt.Sprintf("%s(%d)", t.kind, v)
	}
	return t.names[v].app
}

func (t *enumTable[T]) store(v T) string {
	if !t.valid(v) {
		return ""
	}
	return t.names[v].store
}

func (t *enumTable[T]) parse(s string) (T, error) {
	if v, ok := t.byApp[s]; ok {
		return v, nil
	}
	return 0, fmt.Errorf("%w: unknown %s %q", ErrInvalidInput, t.kind, s)
}

func (t *enumTable[T]) parseStore(s string) (T, error) {
	if v, ok := t.byStore[s]; ok {
		return v, nil
	}
	return 0, fmt.Errorf("unknown stored %s %q", t.kind, s)
}

func (t *enumTable[T]) marshal(v T) ([]byte, error) {
	if !t.valid(v) {
		return nil, fmt.Errorf("cannot marshal invalid %s %d", t.kind, v)
	}
	return json.Marshal(t.names[v].app)
}

func (t *enumTable[T]) unmarshal(dst *T, b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %s must be a string", ErrInvalidInput, t.kind)
	}
	v, err := t.parse(s)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func (t *enumTable[T]) value(v T) (driver.Value, error) {
	if !t.valid(v) {
		return nil, fmt.Errorf("cannot store invalid %s %d", t.kind, v)
	}
	return t.names[v].store, nil
}

func (t *enumTable[T]) scan(dst *T, src any) error {
	var name string
	switch s := src.(type) {
	case string:
		name = s
	case []byte:
		name = string(s)
	default:
		return fmt.Errorf("cannot scan %T into %s", src, t.kind)
	}
	v, err := t.parseStore(name)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// ActionStatus is the kanban column of an action.
type ActionStatus uint8

const (
	StatusTodo ActionStatus = iota
	StatusInProgress
	StatusDone
	StatusBlocked
	StatusCancelled
	actionStatusCount
)

var actionStatusNames = [...]enumNames{
	StatusTodo:       {"todo", "TODO"},
	StatusInProgress: {"in_progress", "IN_PROGRESS"},
	StatusDone:       {"done", "DONE"},
	StatusBlocked:    {"blocked", "BLOCKED"},
	StatusCancelled:  {"cancelled", "CANCELLED"},
}

var _ = [1]struct{}{}[len(actionStatusNames)-int(actionStatusCount)]

var actionStatuses = newEnumTable[ActionStatus]("action status", actionStatusNames[:])

// AllStatuses lists the columns in board order.
var AllStatuses = []ActionStatus{StatusTodo, StatusInProgress, StatusDone, StatusBlocked, StatusCancelled}

func ParseActionStatus(s string) (ActionStatus, error) { return actionStatuses.parse(s) }

func (s ActionStatus) IsValid() bool                 { return actionStatuses.valid(s) }
func (s ActionStatus) String() string                { return actionStatuses.app(s) }
func (s ActionStatus) StoreName() string             { return actionStatuses.store(s) }
func (s ActionStatus) MarshalJSON() ([]byte, error)  { return actionStatuses.marshal(s) }
func (s ActionStatus) Value() (driver.Value, error)  { return actionStatuses.value(s) }
func (s *ActionStatus) UnmarshalJSON(b []byte) error { return actionStatuses.unmarshal(s, b) }
func (s *ActionStatus) Scan(src any) error           { return actionStatuses.scan(s, src) }

// Priority ranks ambitions and actions.
type Priority uint8

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityCritical
	priorityCount
)

var priorityNames = [...]enumNames{
	PriorityLow:      {"low", "LOW"},
	PriorityMedium:   {"medium", "MEDIUM"},
	PriorityHigh:     {"high", "HIGH"},
	PriorityCritical: {"critical", "CRITICAL"},
}

var _ = [1]struct{}{}[len(priorityNames)-int(priorityCount)]

var priorities = newEnumTable[Priority]("priority", priorityNames[:])

func ParsePriority(s string) (Priority, error) { return priorities.parse(s) }

func (p Priority) IsValid() bool                 { return priorities.valid(p) }
func (p Priority) String() string                { return priorities.app(p) }
func (p Priority) MarshalJSON() ([]byte, error)  { return priorities.marshal(p) }
func (p Priority) Value() (driver.Value, error)  { return priorities.value(p) }
func (p *Priority) UnmarshalJSON(b []byte) error { return priorities.unmarshal(p, b) }
func (p *Priority) Scan(src any) error           { return priorities.scan(p, src) }

// Category groups ambitions by life area.
type Category uint8

const (
	CategoryCareer Category = iota
	CategoryHealth
	CategoryFinance
	CategoryLearning
	CategoryRelationships
	CategoryPersonal
	CategoryOther
	categoryCount
)

var categoryNames = [...]enumNames{
	CategoryCareer:        {"career", "CAREER"},
	CategoryHealth:        {"health", "HEALTH"},
	CategoryFinance:       {"finance", "FINANCE"},
	CategoryLearning:      {"learning", "LEARNING"},
	CategoryRelationships: {"relationships", "RELATIONSHIPS"},
	CategoryPersonal:      {"personal", "PERSONAL"},
	CategoryOther:         {"other", "OTHER"},
}

var _ = [1]struct{}{}[len(categoryNames)-int(categoryCount)]

var categories = newEnumTable[Category]("category", categoryNames[:])

func ParseCategory(s string) (Category, error) { return categories.parse(s) }

func (c Category) IsValid() bool                 { return categories.valid(c) }
func (c Category) String() string                { return categories.app(c) }
func (c Category) MarshalJSON() ([]byte, error)  { return categories.marshal(c) }
func (c Category) Value() (driver.Value, error)  { return categories.value(c) }
func (c *Category) UnmarshalJSON(b []byte) error { return categories.unmarshal(c, b) }
func (c *Category) Scan(src any) error           { return categories.scan(c, src) }

// Quarter is one of Q1..Q4.
type Quarter uint8

const (
	Q1 Quarter = iota
	Q2
	Q3
	Q4
	quarterCount
)

var quarterNames = [...]enumNames{
	Q1: {"q1", "Q1"},
	Q2: {"q2", "Q2"},
	Q3: {"q3", "Q3"},
	Q4: {"q4", "Q4"},
}

var _ = [1]struct{}{}[len(quarterNames)-int(quarterCount)]

var quarters = newEnumTable[Quarter]("quarter", quarterNames[:])

func ParseQuarter(s string) (Quarter, error) { return quarters.parse(s) }

func (q Quarter) IsValid() bool                 { return quarters.valid(q) }
func (q Quarter) String() string                { return quarters.app(q) }
func (q Quarter) MarshalJSON() ([]byte, error)  { return quarters.marshal(q) }
func (q Quarter) Value() (driver.Value, error)  { return quarters.value(q) }
func (q *Quarter) UnmarshalJSON(b []byte) error { return quarters.unmarshal(q, b) }
func (q *Quarter) Scan(src any) error           { return quarters.scan(q, src) }

// EntityType tags a progress snapshot with the kind of record it measures.
type EntityType uint8

const (
	EntityKeyResult EntityType = iota
	EntityQuarterlyKeyResult
	EntityAmbition
	EntityObjective
	entityTypeCount
)

var entityTypeNames = [...]enumNames{
	EntityKeyResult:          {"key_result", "KEY_RESULT"},
	EntityQuarterlyKeyResult: {"quarterly_key_result", "QUARTERLY_KEY_RESULT"},
	EntityAmbition:           {"ambition", "AMBITION"},
	EntityObjective:          {"objective", "OBJECTIVE"},
}

var _ = [1]struct{}{}[len(entityTypeNames)-int(entityTypeCount)]

var entityTypes = newEnumTable[EntityType]("entity type", entityTypeNames[:])

func ParseEntityType(s string) (EntityType, error) { return entityTypes.parse(s) }

func (e EntityType) IsValid() bool                 { return entityTypes.valid(e) }
func (e EntityType) String() string                { return entityTypes.app(e) }
func (e EntityType) MarshalJSON() ([]byte, error)  { return entityTypes.marshal(e) }
func (e EntityType) Value() (driver.Value, error)  { return entityTypes.value(e) }
func (e *EntityType) UnmarshalJSON(b []byte) error { return entityTypes.unmarshal(e, b) }
func (e *EntityType) Scan(src any) error           { return entityTypes.scan(e, src) }
