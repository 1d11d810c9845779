package fields

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"codeberg.org/mutker/upslogger/internal/timezone"
)

// Kind identifies the value type a binding produces.
type Kind int

const (
	KindString Kind = iota
	KindTime
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindTime:
		return "time"
	case KindFloat:
		return "float"
	default:
		return "string"
	}
}

// Binding parses and formats the values of one field name or name class.
// Parse reports ok=false for text it cannot read; the field is then absent.
type Binding struct {
	Kind   Kind
	Parse  func(raw string) (value any, ok bool)
	Format func(value any) string
}

type classBinding struct {
	names   map[string]struct{}
	binding Binding
}

// Registry maps field names to bindings: exact names first, then name
// classes, then the identity string binding.
type Registry struct {
	tz       *timezone.Service
	exact    map[string]Binding
	classes  []classBinding
	fallback Binding
}

// NewRegistry returns a registry with the apcupsd bindings. Timestamps are
// parsed into the local zone of tz, or of the default service when tz is nil.
func NewRegistry(tz *timezone.Service) *Registry {
	if tz == nil {
		tz = timezone.Default()
	}

	r := &Registry{
		tz:       tz,
		exact:    make(map[string]Binding),
		fallback: identityBinding(),
	}

	r.Bind(LineV, unitFloatBinding("volts", "%5.1f"))
	r.Bind(LineFreq, unitFloatBinding("hz", "%4.1f"))
	r.Bind(BattV, unitFloatBinding("volts", "%.1f"))
	r.Bind(OutputV, unitFloatBinding("volts", "%.1f"))
	r.Bind(BCharge, unitFloatBinding("percent", "%.1f"))
	r.Bind(LoadPct, unitFloatBinding("percent", "%.1f"))
	r.Bind(TimeLeft, unitFloatBinding("minutes", "%.1f"))
	r.Bind(ITemp, unitFloatBinding("c", "%.1f"))
	r.BindClass(DateFields, r.dateBinding())

	return r
}

var std = NewRegistry(timezone.Default())

// Default returns the registry backed by the process-wide timezone service.
func Default() *Registry {
	return std
}

// Timezone returns the service the registry parses dates with.
func (r *Registry) Timezone() *timezone.Service {
	return r.tz
}

// Bind registers b for an exact field name.
func (r *Registry) Bind(name string, b Binding) {
	r.exact[name] = b
}

// BindClass registers b for every name in names.
func (r *Registry) BindClass(names []string, b Binding) {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	r.classes = append(r.classes, classBinding{names: set, binding: b})
}

// Lookup returns the binding for name.
func (r *Registry) Lookup(name string) Binding {
	if b, ok := r.exact[name]; ok {
		return b
	}
	for _, c := range r.classes {
		if _, ok := c.names[name]; ok {
			return c.binding
		}
	}
	return r.fallback
}

// Parse builds a field from raw status text. "-" and unreadable text both
// give an absent value.
func (r *Registry) Parse(name, raw string) Field {
	if raw == Absent {
		return Null(name)
	}
	v, ok := r.Lookup(name).Parse(raw)
	if !ok {
		return Null(name)
	}
	return Field{Name: name, Value: v}
}

// Format renders f for the log. Absent values render as "-".
func (r *Registry) Format(f Field) string {
	if f.Value == nil {
		return Absent
	}
	return r.Lookup(f.Name).Format(f.Value)
}

// Parse uses the default registry.
func Parse(name, raw string) Field {
	return std.Parse(name, raw)
}

// Format uses the default registry.
func Format(f Field) string {
	return std.Format(f)
}

func (r *Registry) dateBinding() Binding {
	return Binding{
		Kind: KindTime,
		Parse: func(raw string) (any, bool) {
			t, err := r.tz.Parse(strings.TrimSpace(raw), r.tz.LocalZone())
			if err != nil {
				return nil, false
			}
			return t, true
		},
		Format: func(v any) string {
			if t, ok := v.(time.Time); ok {
				return timezone.Format(t)
			}
			return fmt.Sprint(v)
		},
	}
}

func unitFloatBinding(unit, layout string) Binding {
	return Binding{
		Kind: KindFloat,
		Parse: func(raw string) (any, bool) {
			f, err := strconv.ParseFloat(trimUnit(raw, unit), 64)
			if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
				return nil, false
			}
			return f, true
		},
		Format: func(v any) string {
			if f, ok := v.(float64); ok {
				return fmt.Sprintf(layout, f)
			}
			return fmt.Sprint(v)
		},
	}
}

func identityBinding() Binding {
	return Binding{
		Kind: KindString,
		Parse: func(raw string) (any, bool) {
			return raw, true
		},
		Format: func(v any) string {
			return fmt.Sprint(v)
		},
	}
}

// trimUnit drops a trailing case-insensitive unit suffix and surrounding
// whitespace.
func trimUnit(raw, unit string) string {
	s := strings.TrimSpace(raw)
	if len(s) >= len(unit) && strings.EqualFold(s[len(s)-len(unit):], unit) {
		s = s[:len(s)-len(unit)]
	}
	return strings.TrimSpace(s)
}
