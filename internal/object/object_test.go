package object

import "testing"

func TestInspectForms(t *testing.T) {
	tests := []struct {
		obj  Object
		want string
	}{
		{&Integer{Value: 42}, "42"},
		{&Integer{Value: -7}, "-7"},
		{&Float{Value: 3.5}, "3.5"},
		{&Float{Value: 2}, "2.0"},
		{&Boolean{Value: true}, "True"},
		{&Boolean{Value: false}, "False"},
		{&None{}, "None"},
		{&String{Value: "hi"}, "hi"},
		{&List{Elements: []Object{&Integer{Value: 1}, &String{Value: "a"}}}, "[1, 'a']"},
		{&Error{Kind: NameErrorKind, Message: "name 'x' is not defined"}, "NameError: name 'x' is not defined"},
	}

	for i, tt := range tests {
		if got := tt.obj.Inspect(); got != tt.want {
			t.Fatalf("tests[%d] - expected %q, got %q", i, tt.want, got)
		}
	}
}

func TestStringRepr(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"hi", "'hi'"},
		{"it's", `'it\'s'`},
		{`a\b`, `'a\\b'`},
	}
	for i, tt := range tests {
		s := &String{Value: tt.in}
		if got := s.Repr(); got != tt.want {
			t.Fatalf("tests[%d] - expected %q, got %q", i, tt.want, got)
		}
	}
}

func TestPyName(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{INTEGER_OBJ, "int"},
		{FLOAT_OBJ, "float"},
		{BOOLEAN_OBJ, "bool"},
		{STRING_OBJ, "str"},
		{NONE_OBJ, "NoneType"},
		{LIST_OBJ, "list"},
		{DICT_OBJ, "dict"},
		{FUNCTION_OBJ, "function"},
		{HOST_BINDING_OBJ, "function"},
	}
	for i, tt := range tests {
		if got := PyName(tt.typ); got != tt.want {
			t.Fatalf("tests[%d] - expected %q, got %q", i, tt.want, got)
		}
	}
}

func TestDictInsertionOrder(t *testing.T) {
	d := NewDict()
	d.Set(&String{Value: "b"}, &Integer{Value: 2})
	d.Set(&String{Value: "a"}, &Integer{Value: 1})
	d.Set(&String{Value: "c"}, &Integer{Value: 3})

	want := []string{"b", "a", "c"}
	pairs := d.Pairs()
	if len(pairs) != 3 {
		t.Fatalf("expected 3 pairs, got %d", len(pairs))
	}
	for i, p := range pairs {
		if p.Key.(*String).Value != want[i] {
			t.Fatalf("pairs[%d] - expected key %q, got %q", i, want[i], p.Key.(*String).Value)
		}
	}

	// Re-setting keeps the original slot.
	d.Set(&String{Value: "a"}, &Integer{Value: 10})
	pairs = d.Pairs()
	if pairs[1].Key.(*String).Value != "a" {
		t.Fatalf("re-set moved key 'a' to position %d", 1)
	}
	if pairs[1].Value.(*Integer).Value != 10 {
		t.Fatalf("re-set did not update value, got %d", pairs[1].Value.(*Integer).Value)
	}

	if got := d.Inspect(); got != "{'b': 2, 'a': 10, 'c': 3}" {
		t.Fatalf("unexpected Inspect: %q", got)
	}
}

func TestDictDelete(t *testing.T) {
	d := NewDict()
	d.Set(&Integer{Value: 1}, &String{Value: "one"})
	d.Set(&Integer{Value: 2}, &String{Value: "two"})

	if !d.Delete(&Integer{Value: 1}) {
		t.Fatal("expected Delete to report true")
	}
	if d.Delete(&Integer{Value: 1}) {
		t.Fatal("expected repeated Delete to report false")
	}
	if d.Len() != 1 {
		t.Fatalf("expected len 1, got %d", d.Len())
	}
	if _, found := d.Get(&Integer{Value: 1}); found {
		t.Fatal("deleted key still present")
	}
}

func TestHashKeys(t *testing.T) {
	a := (&String{Value: "same"}).HashKey()
	b := (&String{Value: "same"}).HashKey()
	c := (&String{Value: "other"}).HashKey()
	if a != b {
		t.Fatal("equal strings should share a hash key")
	}
	if a == c {
		t.Fatal("different strings should not share a hash key")
	}

	// 1 and 1.0 address the same dict slot; True does not.
	i := (&Integer{Value: 1}).HashKey()
	f := (&Float{Value: 1.0}).HashKey()
	bl := (&Boolean{Value: true}).HashKey()
	if i != f {
		t.Fatal("1 and 1.0 should hash alike")
	}
	if i == bl {
		t.Fatal("True should not hash like 1")
	}

	if _, ok := HashKeyOf(&List{}); ok {
		t.Fatal("lists must not be hashable")
	}
	if _, ok := HashKeyOf(&None{}); !ok {
		t.Fatal("None must be hashable")
	}
}

func TestEnvironmentChain(t *testing.T) {
	outer := NewEnvironment()
	outer.Set("x", &Integer{Value: 1})

	inner := NewEnclosedEnvironment(outer)
	if v, ok := inner.Get("x"); !ok || v.(*Integer).Value != 1 {
		t.Fatal("inner frame should see outer binding")
	}

	// Set binds locally; the outer frame is untouched.
	inner.Set("x", &Integer{Value: 2})
	if v, _ := outer.Get("x"); v.(*Integer).Value != 1 {
		t.Fatal("inner Set leaked into outer frame")
	}
}

func TestEnvironmentSnapshot(t *testing.T) {
	outer := NewEnvironment()
	outer.Set("x", &Integer{Value: 1})
	outer.Set("y", &Integer{Value: 9})

	inner := NewEnclosedEnvironment(outer)
	inner.Set("x", &Integer{Value: 2}) // shadows outer x

	snap := inner.Snapshot()
	if v, _ := snap.Get("x"); v.(*Integer).Value != 2 {
		t.Fatal("snapshot should keep the innermost binding")
	}
	if v, _ := snap.Get("y"); v.(*Integer).Value != 9 {
		t.Fatal("snapshot should include outer bindings")
	}

	// Later rebinding in the source frames is not observed.
	inner.Set("x", &Integer{Value: 3})
	outer.Set("y", &Integer{Value: 10})
	if v, _ := snap.Get("x"); v.(*Integer).Value != 2 {
		t.Fatal("snapshot observed a later rebinding of x")
	}
	if v, _ := snap.Get("y"); v.(*Integer).Value != 9 {
		t.Fatal("snapshot observed a later rebinding of y")
	}
}

func TestMemCosts(t *testing.T) {
	if CostString(10) <= CostString(0) {
		t.Fatal("longer strings must cost more")
	}
	if CostList(4) <= CostList(0) {
		t.Fatal("longer lists must cost more")
	}
	if CostDict(2) <= CostDict(0) {
		t.Fatal("bigger dicts must cost more")
	}
	if CostListElements(0) != 0 {
		t.Fatal("zero elements cost nothing")
	}
	if CostFunction() <= 0 || CostDictEntry() <= 0 || CostError() <= 0 {
		t.Fatal("fixed costs must be positive")
	}
}
