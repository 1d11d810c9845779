package fields

// Record is one sample: fields keyed by name, kept in insertion order.
type Record struct {
	names  []string
	values map[string]Field
}

// NewRecord builds a record from fields in the given order. A repeated name
// replaces the earlier value but keeps its position.
func NewRecord(fs ...Field) Record {
	r := Record{values: make(map[string]Field, len(fs))}
	for _, f := range fs {
		r.Set(f)
	}
	return r
}

// Set stores f under f.Name.
func (r *Record) Set(f Field) {
	if r.values == nil {
		r.values = make(map[string]Field)
	}
	if _, ok := r.values[f.Name]; !ok {
		r.names = append(r.names, f.Name)
	}
	r.values[f.Name] = f
}

// Get returns the field called name.
func (r Record) Get(name string) (Field, bool) {
	f, ok := r.values[name]
	return f, ok
}

// Has reports whether the record carries name, null or not.
func (r Record) Has(name string) bool {
	_, ok := r.values[name]
	return ok
}

// Names returns field names in record order.
func (r Record) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Fields returns the fields in record order.
func (r Record) Fields() []Field {
	out := make([]Field, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.values[name])
	}
	return out
}

// Len returns the number of fields.
func (r Record) Len() int {
	return len(r.names)
}

// Missing returns the names from want that the record does not carry.
func (r Record) Missing(want ...string) []string {
	var missing []string
	for _, name := range want {
		if !r.Has(name) {
			missing = append(missing, name)
		}
	}
	return missing
}
