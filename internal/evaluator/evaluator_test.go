package evaluator

import (
	"bytes"
	"testing"
	"time"

	"sandpit/internal/lexer"
	"sandpit/internal/limits"
	"sandpit/internal/object"
	"sandpit/internal/parser"
)

func testEvalWith(t *testing.T, input string, cfg limits.Config, sink *bytes.Buffer) object.Object {
	t.Helper()

	l := lexer.New(input)
	p := parser.New(l)
	prog := p.ParseProgram()
	if len(l.Errors()) > 0 {
		t.Fatalf("lex errors for %q: %v", input, l.Errors())
	}
	if len(p.Errors()) > 0 {
		t.Fatalf("parse errors for %q: %v", input, p.Errors())
	}

	var s *Session
	if sink != nil {
		s = NewSession(limits.NewGovernor(cfg), sink)
	} else {
		s = NewSession(limits.NewGovernor(cfg), nil)
	}

	env := object.NewEnvironment()
	for name, b := range NewBuiltins(s) {
		env.Set(name, b)
	}
	return s.Eval(prog, env)
}

func testEval(t *testing.T, input string) object.Object {
	t.Helper()
	return testEvalWith(t, input, limits.Config{}, nil)
}

func wantInt(t *testing.T, got object.Object, want int64) {
	t.Helper()
	i, ok := got.(*object.Integer)
	if !ok {
		t.Fatalf("expected *object.Integer, got %T (%v)", got, got)
	}
	if i.Value != want {
		t.Fatalf("expected %d, got %d", want, i.Value)
	}
}

func wantFloat(t *testing.T, got object.Object, want float64) {
	t.Helper()
	f, ok := got.(*object.Float)
	if !ok {
		t.Fatalf("expected *object.Float, got %T (%v)", got, got)
	}
	if f.Value != want {
		t.Fatalf("expected %v, got %v", want, f.Value)
	}
}

func wantBool(t *testing.T, got object.Object, want bool) {
	t.Helper()
	b, ok := got.(*object.Boolean)
	if !ok {
		t.Fatalf("expected *object.Boolean, got %T (%v)", got, got)
	}
	if b.Value != want {
		t.Fatalf("expected %v, got %v", want, b.Value)
	}
}

func wantString(t *testing.T, got object.Object, want string) {
	t.Helper()
	s, ok := got.(*object.String)
	if !ok {
		t.Fatalf("expected *object.String, got %T (%v)", got, got)
	}
	if s.Value != want {
		t.Fatalf("expected %q, got %q", want, s.Value)
	}
}

func wantError(t *testing.T, got object.Object, kind object.ErrorKind) *object.Error {
	t.Helper()
	e, ok := got.(*object.Error)
	if !ok {
		t.Fatalf("expected *object.Error, got %T (%v)", got, got)
	}
	if e.Kind != kind {
		t.Fatalf("expected %s, got %s: %s", kind, e.Kind, e.Message)
	}
	return e
}

func TestIntegerArithmetic(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"5", 5},
		{"-5", -5},
		{"2 + 3 * 4", 14},
		{"10 - 4 - 3", 3},
		{"(2 + 3) * 4", 20},
		{"7 // 2", 3},
		{"-7 // 2", -4},
		{"7 // -2", -4},
		{"7 % 3", 1},
		{"-7 % 3", 2},
		{"7 % -3", -2},
		{"2 * -3", -6},
	}
	for _, tt := range tests {
		wantInt(t, testEval(t, tt.input), tt.want)
	}
}

func TestFloatArithmeticAndPromotion(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"6 / 3", 2},    // true division always yields float
		{"1 / 2", 0.5},
		{"1 + 2.5", 3.5},
		{"2.5 * 2", 5},
		{"7.0 % 3", 1},
		{"-7.5 % 3", 1.5},
		{"2.5 // 0.5", 5},
		{"-0.5 // 1.0", -1},
	}
	for _, tt := range tests {
		wantFloat(t, testEval(t, tt.input), tt.want)
	}
}

func TestZeroDivision(t *testing.T) {
	for _, input := range []string{"1 / 0", "1 // 0", "1 % 0", "1.0 / 0.0", "5 // 0.0"} {
		wantError(t, testEval(t, input), object.ZeroDivisionKind)
	}
}

func TestComparisonsAndEquality(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"1 < 2", true},
		{"2 <= 2", true},
		{"3 > 4", false},
		{"1 == 1.0", true},
		{"1 != 2", true},
		{"'a' < 'b'", true},
		{"'a' == 'a'", true},
		{"'a' == 1", false},
		{"True == True", true},
		{"True == 1", false}, // bool is not a number here
		{"None == None", true},
		{"[1, 2] == [1, 2]", true},
		{"[1, 2] == [2, 1]", false},
		{"{'a': 1} == {'a': 1}", true},
		{"{'a': 1} == {'a': 2}", false},
		{"not 0", true},
		{"not 'x'", false},
	}
	for _, tt := range tests {
		got := testEval(t, tt.input)
		wantBool(t, got, tt.want)
	}
}

func TestBoolArithmeticRejected(t *testing.T) {
	e := wantError(t, testEval(t, "True + 1"), object.TypeErrorKind)
	if e.Message != "unsupported operand type(s) for +: 'bool' and 'int'" {
		t.Fatalf("unexpected message: %q", e.Message)
	}
	wantError(t, testEval(t, "1 - False"), object.TypeErrorKind)
	wantError(t, testEval(t, "True < 1"), object.TypeErrorKind)
}

func TestShortCircuitYieldsOperand(t *testing.T) {
	wantString(t, testEval(t, "0 or 'fallback'"), "fallback")
	wantInt(t, testEval(t, "1 and 2"), 2)
	wantInt(t, testEval(t, "0 and boom"), 0)  // right side never evaluated
	wantInt(t, testEval(t, "1 or boom"), 1)
	wantString(t, testEval(t, "'' or 'x'"), "x")
}

func TestStrings(t *testing.T) {
	wantString(t, testEval(t, "'a' + 'b'"), "ab")
	wantString(t, testEval(t, "'ab' * 3"), "ababab")
	wantString(t, testEval(t, "'ab' * -1"), "")
	wantString(t, testEval(t, "'abc'[1]"), "b")
	wantString(t, testEval(t, "'abc'[-1]"), "c")
	wantString(t, testEval(t, "'hello'[1:3]"), "el")
	wantString(t, testEval(t, "'hello'[:2]"), "he")
	wantString(t, testEval(t, "'hello'[3:]"), "lo")
	wantBool(t, testEval(t, "'ell' in 'hello'"), true)
	wantBool(t, testEval(t, "'z' not in 'hello'"), true)
	wantError(t, testEval(t, "'abc'[10]"), object.IndexErrorKind)
	wantError(t, testEval(t, "'a' + 1"), object.TypeErrorKind)
}

func TestLists(t *testing.T) {
	wantInt(t, testEval(t, "[1, 2, 3][0]"), 1)
	wantInt(t, testEval(t, "[1, 2, 3][-1]"), 3)
	wantInt(t, testEval(t, "len([1, 2] + [3])"), 3)
	wantInt(t, testEval(t, "len([0] * 4)"), 4)
	wantBool(t, testEval(t, "2 in [1, 2]"), true)
	wantBool(t, testEval(t, "4 in [1, 2]"), false)
	wantError(t, testEval(t, "[1][5]"), object.IndexErrorKind)
	wantError(t, testEval(t, "[1][-2]"), object.IndexErrorKind)

	// Python-style slice clamping: out-of-range bounds are legal.
	got := testEval(t, "[1, 2, 3][1:10]")
	list, ok := got.(*object.List)
	if !ok || len(list.Elements) != 2 {
		t.Fatalf("expected 2-element slice, got %v", got)
	}

	wantInt(t, testEval(t, "xs = [1, 2, 3]\nxs[1] = 20\nxs[1]"), 20)
	wantError(t, testEval(t, "xs = [1]\nxs[3] = 0"), object.IndexErrorKind)
}

func TestDicts(t *testing.T) {
	wantInt(t, testEval(t, "{'a': 1, 'b': 2}['b']"), 2)
	wantInt(t, testEval(t, "d = {}\nd['k'] = 7\nd['k']"), 7)
	wantInt(t, testEval(t, "d = {'n': 1}\nd['n'] += 5\nd['n']"), 6)
	wantBool(t, testEval(t, "'a' in {'a': 1}"), true)
	wantBool(t, testEval(t, "'z' not in {'a': 1}"), true)
	wantInt(t, testEval(t, "d = {1: 'one'}\nd[1.0]\nlen(d)"), 1)

	e := wantError(t, testEval(t, "{'a': 1}['missing']"), object.KeyErrorKind)
	if e.Message != "'missing'" {
		t.Fatalf("unexpected KeyError message: %q", e.Message)
	}
	wantError(t, testEval(t, "{[1]: 2}"), object.TypeErrorKind)
	wantError(t, testEval(t, "d = {}\nd[[1]] = 2"), object.TypeErrorKind)
}

func TestDictIterationOrder(t *testing.T) {
	input := `d = {'b': 1, 'a': 2, 'c': 3}
keys = ''
for k in d:
    keys += k
keys`
	wantString(t, testEval(t, input), "bac")
}

func TestAssignment(t *testing.T) {
	wantInt(t, testEval(t, "x = 5\nx += 2\nx"), 7)
	wantInt(t, testEval(t, "x = 10\nx -= 3\nx *= 2\nx"), 14)
	wantError(t, testEval(t, "y += 1"), object.NameErrorKind)

	e := wantError(t, testEval(t, "z"), object.NameErrorKind)
	if e.Message != "name 'z' is not defined" {
		t.Fatalf("unexpected message: %q", e.Message)
	}
	if e.Detail != "z" {
		t.Fatalf("expected Detail 'z', got %q", e.Detail)
	}
	if e.Line != 1 || e.Col != 1 {
		t.Fatalf("expected position 1:1, got %d:%d", e.Line, e.Col)
	}
}

func TestControlFlow(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"if True:\n    x = 1\nelse:\n    x = 2\nx", 1},
		{"if 0:\n    x = 1\nelif 1:\n    x = 2\nelse:\n    x = 3\nx", 2},
		{"if 0:\n    x = 1\nelif 0:\n    x = 2\nelse:\n    x = 3\nx", 3},
		{"x = 0\nwhile x < 5:\n    x += 1\nx", 5},
		{"x = 0\nwhile True:\n    x += 1\n    if x == 3:\n        break\nx", 3},
		{"total = 0\nfor i in range(10):\n    if i % 2 == 1:\n        continue\n    total += i\ntotal", 20},
		{"total = 0\nfor x in [1, 2, 3]:\n    total += x\ntotal", 6},
	}
	for i, tt := range tests {
		got := testEval(t, tt.input)
		if _, ok := got.(*object.Integer); !ok {
			t.Fatalf("tests[%d] - expected int, got %T (%v)", i, got, got)
		}
		wantInt(t, got, tt.want)
	}
}

func TestForOverString(t *testing.T) {
	input := "out = ''\nfor c in 'abc':\n    out = c + out\nout"
	wantString(t, testEval(t, input), "cba")
}

func TestControlSignalsOutsideContext(t *testing.T) {
	e := wantError(t, testEval(t, "return 1"), object.SyntaxErrorKind)
	if e.Message != "'return' outside function" {
		t.Fatalf("unexpected message: %q", e.Message)
	}
	wantError(t, testEval(t, "break"), object.SyntaxErrorKind)
	wantError(t, testEval(t, "continue"), object.SyntaxErrorKind)
	wantError(t, testEval(t, "def f():\n    break\nf()"), object.SyntaxErrorKind)
}

func TestFunctions(t *testing.T) {
	fact := `def fact(n):
    if n <= 1:
        return 1
    return n * fact(n - 1)
fact(5)`
	wantInt(t, testEval(t, fact), 120)

	wantInt(t, testEval(t, "def add(a, b):\n    return a + b\nadd(2, 3)"), 5)

	// A body that falls off the end yields None.
	got := testEval(t, "def f():\n    pass\nf()")
	if _, ok := got.(*object.None); !ok {
		t.Fatalf("expected None, got %T (%v)", got, got)
	}

	// return stops the loop and the function.
	early := `def first_even(xs):
    for x in xs:
        if x % 2 == 0:
            return x
    return -1
first_even([3, 5, 8, 9])`
	wantInt(t, testEval(t, early), 8)
}

func TestFunctionArity(t *testing.T) {
	e := wantError(t, testEval(t, "def f(a, b):\n    return a\nf(1)"), object.TypeErrorKind)
	if e.Message != "f() takes 2 arguments (1 given)" {
		t.Fatalf("unexpected message: %q", e.Message)
	}
	wantError(t, testEval(t, "5(1)"), object.TypeErrorKind)
}

func TestClosureCapturesDefinitionScope(t *testing.T) {
	// Rebinding after the def is not observed by the function.
	input := `x = 1
def f():
    return x
x = 2
f()`
	wantInt(t, testEval(t, input), 1)
}

func TestClosureOverEnclosingFunction(t *testing.T) {
	input := `def make_adder(n):
    def add(x):
        return x + n
    return add
add3 = make_adder(3)
add3(4)`
	wantInt(t, testEval(t, input), 7)
}

func TestFunctionLocalsDoNotLeak(t *testing.T) {
	input := `def f():
    local = 42
    return local
f()
local`
	wantError(t, testEval(t, input), object.NameErrorKind)
}

func TestBuiltins(t *testing.T) {
	wantInt(t, testEval(t, "len('héllo')"), 5)
	wantInt(t, testEval(t, "len([1, 2, 3])"), 3)
	wantInt(t, testEval(t, "len({'a': 1})"), 1)
	wantInt(t, testEval(t, "len(range(4))"), 4)
	wantInt(t, testEval(t, "range(2, 5)[0]"), 2)
	wantInt(t, testEval(t, "range(10, 0, -3)[1]"), 7)
	wantString(t, testEval(t, "str(12)"), "12")
	wantString(t, testEval(t, "str(True)"), "True")
	wantString(t, testEval(t, "repr('hi')"), "'hi'")
	wantInt(t, testEval(t, "int('42')"), 42)
	wantInt(t, testEval(t, "int(3.9)"), 3)
	wantInt(t, testEval(t, "int(-3.9)"), -3)
	wantFloat(t, testEval(t, "float(2)"), 2)
	wantFloat(t, testEval(t, "float('0.5')"), 0.5)
	wantBool(t, testEval(t, "bool([])"), false)
	wantBool(t, testEval(t, "bool('x')"), true)
	wantInt(t, testEval(t, "abs(-4)"), 4)
	wantFloat(t, testEval(t, "abs(-1.5)"), 1.5)
	wantInt(t, testEval(t, "min(3, 1, 2)"), 1)
	wantInt(t, testEval(t, "max([3, 1, 2])"), 3)
	wantInt(t, testEval(t, "sum([1, 2, 3])"), 6)
	wantFloat(t, testEval(t, "sum([1, 0.5])"), 1.5)
	wantInt(t, testEval(t, "sorted([3, 1, 2])[0]"), 1)
	wantString(t, testEval(t, "sorted(['b', 'a'])[0]"), "a")

	wantError(t, testEval(t, "range(1, 10, 0)"), object.ValueErrorKind)
	wantError(t, testEval(t, "int('nope')"), object.ValueErrorKind)
	wantError(t, testEval(t, "len(1)"), object.TypeErrorKind)
	wantError(t, testEval(t, "min([])"), object.ValueErrorKind)
	wantError(t, testEval(t, "sorted([1, 'a'])"), object.TypeErrorKind)

	// Builtin errors carry the call position.
	e := wantError(t, testEval(t, "x = 1\nlen(1)"), object.TypeErrorKind)
	if e.Line != 2 {
		t.Fatalf("expected builtin error on line 2, got %d", e.Line)
	}
}

func TestPrintWritesToSink(t *testing.T) {
	var buf bytes.Buffer
	got := testEvalWith(t, "print(1, 'two', [3])\nprint()", limits.Config{}, &buf)
	if _, ok := got.(*object.None); !ok {
		t.Fatalf("print program should end as None, got %T", got)
	}
	if buf.String() != "1 two [3]\n\n" {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestProgramValueIsLastExpression(t *testing.T) {
	wantInt(t, testEval(t, "1 + 2"), 3)
	wantInt(t, testEval(t, "x = 1\nx + 1\nx + 2"), 3)

	got := testEval(t, "x = 1")
	if _, ok := got.(*object.None); !ok {
		t.Fatalf("assignment-only program should be None, got %T (%v)", got, got)
	}
}

func TestStepLimitStopsLoops(t *testing.T) {
	got := testEvalWith(t, "while True:\n    pass", limits.Config{MaxSteps: 100}, nil)
	e := wantError(t, got, object.ResourceKind)
	if e.Detail != string(limits.Steps) {
		t.Fatalf("expected steps detail, got %q", e.Detail)
	}
}

func TestDepthLimitIsRecursionError(t *testing.T) {
	input := `def loop(n):
    return loop(n + 1)
loop(0)`
	got := testEvalWith(t, input, limits.Config{MaxDepth: 16}, nil)
	e := wantError(t, got, object.RecursionErrorKind)
	if e.Detail != string(limits.Depth) {
		t.Fatalf("expected depth detail, got %q", e.Detail)
	}

	// Within the budget, recursion is fine.
	ok := testEvalWith(t, "def fact(n):\n    if n <= 1:\n        return 1\n    return n * fact(n - 1)\nfact(5)",
		limits.Config{MaxDepth: 16}, nil)
	wantInt(t, ok, 120)
}

func TestWallLimitViaGovernor(t *testing.T) {
	got := testEvalWith(t, "x = 0\nwhile True:\n    x += 1", limits.Config{MaxWall: time.Millisecond}, nil)
	e := wantError(t, got, object.ResourceKind)
	if e.Detail != string(limits.Wall) {
		t.Fatalf("expected time detail, got %q", e.Detail)
	}
}

func TestMemoryLimit(t *testing.T) {
	input := `s = 'x'
while True:
    s = s + s`
	got := testEvalWith(t, input, limits.Config{MaxMemory: 1 << 16}, nil)
	e := wantError(t, got, object.ResourceKind)
	if e.Detail != string(limits.Memory) {
		t.Fatalf("expected memory detail, got %q", e.Detail)
	}
}

func TestHostBindingCalledOnce(t *testing.T) {
	calls := 0
	binding := &object.HostBinding{
		Name: "probe",
		Fn: func(args []object.Object) object.Object {
			calls++
			return &object.Integer{Value: int64(len(args))}
		},
	}

	l := lexer.New("probe(1, 2, 3)")
	p := parser.New(l)
	prog := p.ParseProgram()
	if len(p.Errors()) > 0 {
		t.Fatalf("parse errors: %v", p.Errors())
	}

	s := NewSession(limits.NewGovernor(limits.Config{}), nil)
	env := object.NewEnvironment()
	env.Set("probe", binding)

	got := s.Eval(prog, env)
	wantInt(t, got, 3)
	if calls != 1 {
		t.Fatalf("expected exactly 1 call, got %d", calls)
	}
}

func TestHostBindingErrorGetsPosition(t *testing.T) {
	binding := &object.HostBinding{
		Name: "fail",
		Fn: func([]object.Object) object.Object {
			return &object.Error{Kind: object.HostErrorKind, Message: "backend down"}
		},
	}

	l := lexer.New("x = 1\nfail()")
	p := parser.New(l)
	prog := p.ParseProgram()
	if len(p.Errors()) > 0 {
		t.Fatalf("parse errors: %v", p.Errors())
	}

	s := NewSession(limits.NewGovernor(limits.Config{}), nil)
	env := object.NewEnvironment()
	env.Set("fail", binding)

	e := wantError(t, s.Eval(prog, env), object.HostErrorKind)
	if e.Line != 2 {
		t.Fatalf("expected host error on line 2, got %d", e.Line)
	}
}

func TestErrorsAbortEvaluation(t *testing.T) {
	var buf bytes.Buffer
	testEvalWith(t, "print('before')\nboom\nprint('after')", limits.Config{}, &buf)
	if buf.String() != "before\n" {
		t.Fatalf("evaluation continued past the error: %q", buf.String())
	}
}
