package object

import "bytes"

type DictPair struct {
	Key   Object
	Value Object
}

// Dict preserves insertion order: iteration, Inspect and Pairs all walk
// keys in the order they were first set. Re-setting an existing key keeps
// its original position.
type Dict struct {
	pairs map[string]DictPair
	order []string
}

func NewDict() *Dict {
	return &Dict{pairs: map[string]DictPair{}}
}

func (*Dict) Type() Type { return DICT_OBJ }

func (d *Dict) Inspect() string {
	var out bytes.Buffer
	out.WriteString("{")
	for i, k := range d.order {
		if i > 0 {
			out.WriteString(", ")
		}
		pair := d.pairs[k]
		out.WriteString(reprOf(pair.Key))
		out.WriteString(": ")
		out.WriteString(reprOf(pair.Value))
	}
	out.WriteString("}")
	return out.String()
}

func (d *Dict) Len() int { return len(d.order) }

// Get looks a key up by its hash key.
func (d *Dict) Get(key Object) (Object, bool) {
	hk, ok := HashKeyOf(key)
	if !ok {
		return nil, false
	}
	pair, ok := d.pairs[HashKeyString(hk)]
	if !ok {
		return nil, false
	}
	return pair.Value, true
}

// Set inserts or updates a key. The second return is false when the key
// is not hashable.
func (d *Dict) Set(key, value Object) bool {
	hk, ok := HashKeyOf(key)
	if !ok {
		return false
	}
	ks := HashKeyString(hk)
	if _, exists := d.pairs[ks]; !exists {
		d.order = append(d.order, ks)
	}
	d.pairs[ks] = DictPair{Key: key, Value: value}
	return true
}

// Delete removes a key; reports whether it was present.
func (d *Dict) Delete(key Object) bool {
	hk, ok := HashKeyOf(key)
	if !ok {
		return false
	}
	ks := HashKeyString(hk)
	if _, exists := d.pairs[ks]; !exists {
		return false
	}
	delete(d.pairs, ks)
	for i, k := range d.order {
		if k == ks {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return true
}

// Pairs returns the entries in insertion order.
func (d *Dict) Pairs() []DictPair {
	out := make([]DictPair, 0, len(d.order))
	for _, k := range d.order {
		out = append(out, d.pairs[k])
	}
	return out
}
