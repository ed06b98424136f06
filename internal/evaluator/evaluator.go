package evaluator

import (
	"sandpit/internal/ast"
	"sandpit/internal/object"
	"sandpit/internal/token"
)

var (
	TRUE  = &object.Boolean{Value: true}
	FALSE = &object.Boolean{Value: false}
	NONE  = &object.None{}
)

// eval charges one governor step per node visited, which covers the two
// unbounded-repetition points of the grammar: loop iteration boundaries
// (the body is re-visited each pass) and call entries (the callee body is
// a visit). loopDepth and fnDepth track whether break/continue/return are
// legal where they appear.
func eval(node ast.Node, env *object.Environment, s *Session, loopDepth, fnDepth int) object.Object {
	if errObj := s.chargeStep(node.Tok()); errObj != nil {
		return errObj
	}

	switch n := node.(type) {

	case *ast.Program:
		return evalProgram(n, env, s)

	case *ast.BlockStatement:
		return evalBlock(n, env, s, loopDepth, fnDepth)

	// Statements
	case *ast.ExpressionStatement:
		return eval(n.Expression, env, s, loopDepth, fnDepth)

	case *ast.AssignStatement:
		return evalAssign(n, env, s, loopDepth, fnDepth)

	case *ast.IfStatement:
		return evalIf(n, env, s, loopDepth, fnDepth)

	case *ast.WhileStatement:
		return evalWhile(n, env, s, loopDepth, fnDepth)

	case *ast.ForInStatement:
		return evalForIn(n, env, s, loopDepth, fnDepth)

	case *ast.DefStatement:
		if errObj := s.chargeMemory(n.Token, object.CostFunction()); errObj != nil {
			return errObj
		}
		snap := env.Snapshot()
		fn := &object.Function{
			Name:       n.Name.Value,
			Parameters: n.Parameters,
			Body:       n.Body,
			Env:        snap,
		}
		snap.Set(n.Name.Value, fn) // the function sees itself, for recursion
		env.Set(n.Name.Value, fn)
		return NONE

	case *ast.ReturnStatement:
		if fnDepth == 0 {
			return newErrorAt(n.Token, object.SyntaxErrorKind, "'return' outside function")
		}
		if n.Value == nil {
			return &object.ReturnValue{Value: NONE}
		}
		val := eval(n.Value, env, s, loopDepth, fnDepth)
		if isError(val) {
			return val
		}
		return &object.ReturnValue{Value: val}

	case *ast.BreakStatement:
		if loopDepth == 0 {
			return newErrorAt(n.Token, object.SyntaxErrorKind, "'break' outside loop")
		}
		return &object.Break{}

	case *ast.ContinueStatement:
		if loopDepth == 0 {
			return newErrorAt(n.Token, object.SyntaxErrorKind, "'continue' outside loop")
		}
		return &object.Continue{}

	case *ast.PassStatement:
		return NONE

	// Expressions
	case *ast.Identifier:
		val, ok := env.Get(n.Value)
		if !ok {
			errObj := newErrorAt(n.Token, object.NameErrorKind, "name '%s' is not defined", n.Value)
			errObj.Detail = n.Value
			return errObj
		}
		return val

	case *ast.IntegerLiteral:
		return &object.Integer{Value: n.Value}

	case *ast.FloatLiteral:
		return &object.Float{Value: n.Value}

	case *ast.StringLiteral:
		if errObj := s.chargeMemory(n.Token, object.CostString(len(n.Value))); errObj != nil {
			return errObj
		}
		return &object.String{Value: n.Value}

	case *ast.BooleanLiteral:
		return nativeBool(n.Value)

	case *ast.NoneLiteral:
		return NONE

	case *ast.ListLiteral:
		elems, errObj := evalExpressions(n.Elements, env, s, loopDepth, fnDepth)
		if errObj != nil {
			return errObj
		}
		if errObj := s.chargeMemory(n.Token, object.CostList(len(elems))); errObj != nil {
			return errObj
		}
		return &object.List{Elements: elems}

	case *ast.DictLiteral:
		return evalDictLiteral(n, env, s, loopDepth, fnDepth)

	case *ast.PrefixExpression:
		right := eval(n.Right, env, s, loopDepth, fnDepth)
		if isError(right) {
			return right
		}
		return evalPrefix(n.Token, n.Operator, right)

	case *ast.InfixExpression:
		return evalInfixNode(n, env, s, loopDepth, fnDepth)

	case *ast.IndexExpression:
		left := eval(n.Left, env, s, loopDepth, fnDepth)
		if isError(left) {
			return left
		}
		index := eval(n.Index, env, s, loopDepth, fnDepth)
		if isError(index) {
			return index
		}
		return evalIndex(n.Token, left, index, s)

	case *ast.SliceExpression:
		return evalSlice(n, env, s, loopDepth, fnDepth)

	case *ast.CallExpression:
		fn := eval(n.Function, env, s, loopDepth, fnDepth)
		if isError(fn) {
			return fn
		}
		args, errObj := evalExpressions(n.Arguments, env, s, loopDepth, fnDepth)
		if errObj != nil {
			return errObj
		}
		return applyFunction(n.Token, fn, args, s, fnDepth)
	}

	return newErrorAt(node.Tok(), object.SyntaxErrorKind, "unhandled syntax node")
}

func evalProgram(p *ast.Program, env *object.Environment, s *Session) object.Object {
	var last object.Object = NONE
	for _, stmt := range p.Statements {
		res := eval(stmt, env, s, 0, 0)
		if isError(res) {
			return res
		}
		switch res.(type) {
		case *object.ReturnValue, *object.Break, *object.Continue:
			// Defensive: parse-time checks should make this unreachable.
			return newErrorAt(stmt.Tok(), object.SyntaxErrorKind, "control signal escaped the program")
		}
		if _, ok := stmt.(*ast.ExpressionStatement); ok {
			last = res
		}
	}
	return last
}

func evalBlock(b *ast.BlockStatement, env *object.Environment, s *Session, loopDepth, fnDepth int) object.Object {
	var result object.Object = NONE
	for _, stmt := range b.Statements {
		result = eval(stmt, env, s, loopDepth, fnDepth)
		if result != nil {
			switch result.Type() {
			case object.ERROR_OBJ, object.RETURN_VALUE_OBJ, object.BREAK_OBJ, object.CONTINUE_OBJ:
				return result
			}
		}
	}
	return result
}

func evalAssign(n *ast.AssignStatement, env *object.Environment, s *Session, loopDepth, fnDepth int) object.Object {
	switch target := n.Target.(type) {

	case *ast.Identifier:
		if n.Op == token.ASSIGN {
			val := eval(n.Value, env, s, loopDepth, fnDepth)
			if isError(val) {
				return val
			}
			env.Set(target.Value, val)
			return NONE
		}

		cur, ok := env.Get(target.Value)
		if !ok {
			errObj := newErrorAt(target.Token, object.NameErrorKind, "name '%s' is not defined", target.Value)
			errObj.Detail = target.Value
			return errObj
		}
		val := eval(n.Value, env, s, loopDepth, fnDepth)
		if isError(val) {
			return val
		}
		res := evalInfix(n.Token, augmentedOp(n.Op), cur, val, s)
		if isError(res) {
			return res
		}
		env.Set(target.Value, res)
		return NONE

	case *ast.IndexExpression:
		base := eval(target.Left, env, s, loopDepth, fnDepth)
		if isError(base) {
			return base
		}
		index := eval(target.Index, env, s, loopDepth, fnDepth)
		if isError(index) {
			return index
		}
		val := eval(n.Value, env, s, loopDepth, fnDepth)
		if isError(val) {
			return val
		}
		if n.Op != token.ASSIGN {
			cur := evalIndex(target.Token, base, index, s)
			if isError(cur) {
				return cur
			}
			val = evalInfix(n.Token, augmentedOp(n.Op), cur, val, s)
			if isError(val) {
				return val
			}
		}
		return setIndex(n.Token, base, index, val, s)
	}

	return newErrorAt(n.Token, object.SyntaxErrorKind, "invalid assignment target")
}

func augmentedOp(op token.Type) string {
	switch op {
	case token.PLUS_ASSIGN:
		return "+"
	case token.MINUS_ASSIGN:
		return "-"
	case token.STAR_ASSIGN:
		return "*"
	case token.SLASH_ASSIGN:
		return "/"
	case token.PERCENT_ASSIGN:
		return "%"
	default:
		return string(op)
	}
}

func evalIf(n *ast.IfStatement, env *object.Environment, s *Session, loopDepth, fnDepth int) object.Object {
	cond := eval(n.Condition, env, s, loopDepth, fnDepth)
	if isError(cond) {
		return cond
	}
	if isTruthy(cond) {
		return eval(n.Consequence, env, s, loopDepth, fnDepth)
	}
	if n.Alternative != nil {
		return eval(n.Alternative, env, s, loopDepth, fnDepth)
	}
	return NONE
}

func evalWhile(n *ast.WhileStatement, env *object.Environment, s *Session, loopDepth, fnDepth int) object.Object {
	for {
		cond := eval(n.Condition, env, s, loopDepth, fnDepth)
		if isError(cond) {
			return cond
		}
		if !isTruthy(cond) {
			return NONE
		}
		res := eval(n.Body, env, s, loopDepth+1, fnDepth)
		if isError(res) {
			return res
		}
		if res != nil && res.Type() == object.RETURN_VALUE_OBJ {
			return res
		}
		if res != nil && res.Type() == object.BREAK_OBJ {
			return NONE
		}
		// Continue falls through to the next iteration.
	}
}

func evalForIn(n *ast.ForInStatement, env *object.Environment, s *Session, loopDepth, fnDepth int) object.Object {
	iterable := eval(n.Iterable, env, s, loopDepth, fnDepth)
	if isError(iterable) {
		return iterable
	}

	runBody := func(item object.Object) object.Object {
		env.Set(n.Var.Value, item)
		return eval(n.Body, env, s, loopDepth+1, fnDepth)
	}

	switch it := iterable.(type) {
	case *object.List:
		// Index-based so in-place mutation during iteration stays safe.
		for i := 0; i < len(it.Elements); i++ {
			res := runBody(it.Elements[i])
			if isError(res) {
				return res
			}
			if res != nil && res.Type() == object.RETURN_VALUE_OBJ {
				return res
			}
			if res != nil && res.Type() == object.BREAK_OBJ {
				return NONE
			}
		}
		return NONE

	case *object.String:
		for _, r := range it.Value {
			ch := &object.String{Value: string(r)}
			if errObj := s.chargeMemory(n.Token, object.CostString(len(ch.Value))); errObj != nil {
				return errObj
			}
			res := runBody(ch)
			if isError(res) {
				return res
			}
			if res != nil && res.Type() == object.RETURN_VALUE_OBJ {
				return res
			}
			if res != nil && res.Type() == object.BREAK_OBJ {
				return NONE
			}
		}
		return NONE

	case *object.Dict:
		for _, pair := range it.Pairs() {
			res := runBody(pair.Key)
			if isError(res) {
				return res
			}
			if res != nil && res.Type() == object.RETURN_VALUE_OBJ {
				return res
			}
			if res != nil && res.Type() == object.BREAK_OBJ {
				return NONE
			}
		}
		return NONE

	default:
		return newErrorAt(n.Token, object.TypeErrorKind, "'%s' object is not iterable", object.PyName(iterable.Type()))
	}
}

func evalInfixNode(n *ast.InfixExpression, env *object.Environment, s *Session, loopDepth, fnDepth int) object.Object {
	// and/or short-circuit and yield the deciding operand.
	switch n.Operator {
	case "and":
		left := eval(n.Left, env, s, loopDepth, fnDepth)
		if isError(left) {
			return left
		}
		if !isTruthy(left) {
			return left
		}
		return eval(n.Right, env, s, loopDepth, fnDepth)
	case "or":
		left := eval(n.Left, env, s, loopDepth, fnDepth)
		if isError(left) {
			return left
		}
		if isTruthy(left) {
			return left
		}
		return eval(n.Right, env, s, loopDepth, fnDepth)
	}

	left := eval(n.Left, env, s, loopDepth, fnDepth)
	if isError(left) {
		return left
	}
	right := eval(n.Right, env, s, loopDepth, fnDepth)
	if isError(right) {
		return right
	}
	return evalInfix(n.Token, n.Operator, left, right, s)
}

func evalDictLiteral(n *ast.DictLiteral, env *object.Environment, s *Session, loopDepth, fnDepth int) object.Object {
	dict := object.NewDict()
	for _, entry := range n.Entries {
		key := eval(entry.Key, env, s, loopDepth, fnDepth)
		if isError(key) {
			return key
		}
		value := eval(entry.Value, env, s, loopDepth, fnDepth)
		if isError(value) {
			return value
		}
		if !dict.Set(key, value) {
			return newErrorAt(n.Token, object.TypeErrorKind, "unhashable type: '%s'", object.PyName(key.Type()))
		}
	}
	if errObj := s.chargeMemory(n.Token, object.CostDict(dict.Len())); errObj != nil {
		return errObj
	}
	return dict
}

func evalExpressions(exps []ast.Expression, env *object.Environment, s *Session, loopDepth, fnDepth int) ([]object.Object, *object.Error) {
	out := make([]object.Object, 0, len(exps))
	for _, e := range exps {
		res := eval(e, env, s, loopDepth, fnDepth)
		if isError(res) {
			return nil, res.(*object.Error)
		}
		out = append(out, res)
	}
	return out, nil
}

// applyFunction dispatches a call. Script functions run in a fresh frame
// enclosed by the environment captured at definition time, never the
// caller's; the governor's depth budget is charged before the body runs
// and released on every exit path.
func applyFunction(tok token.Token, fn object.Object, args []object.Object, s *Session, fnDepth int) object.Object {
	switch f := fn.(type) {

	case *object.Function:
		if s != nil && s.gov != nil {
			if err := s.gov.EnterCall(); err != nil {
				return limitErrorAt(tok, err)
			}
			defer s.gov.ExitCall()
		}

		if len(args) != len(f.Parameters) {
			name := f.Name
			if name == "" {
				name = "<anon>"
			}
			return newErrorAt(tok, object.TypeErrorKind,
				"%s() takes %d arguments (%d given)", name, len(f.Parameters), len(args))
		}

		extended := object.NewEnclosedEnvironment(f.Env)
		for i, p := range f.Parameters {
			extended.Set(p.Value, args[i])
		}

		evaluated := eval(f.Body, extended, s, 0, fnDepth+1)
		if isError(evaluated) {
			return evaluated
		}
		return unwrapReturnValue(evaluated)

	case *object.Builtin:
		return annotateAt(tok, f.Fn(args...))

	case *object.HostBinding:
		return annotateAt(tok, f.Fn(args))
	}

	return newErrorAt(tok, object.TypeErrorKind, "'%s' object is not callable", object.PyName(fn.Type()))
}

// unwrapReturnValue resolves the Return control signal at the call
// boundary. A body that falls off the end yields None.
func unwrapReturnValue(obj object.Object) object.Object {
	if rv, ok := obj.(*object.ReturnValue); ok {
		return rv.Value
	}
	return NONE
}

// annotateAt stamps the call position onto errors raised inside builtins
// and host bindings, which have no source position of their own.
func annotateAt(tok token.Token, res object.Object) object.Object {
	if errObj, ok := res.(*object.Error); ok && errObj.Line == 0 {
		errObj.Line = tok.Line
		errObj.Col = tok.Col
	}
	return res
}

func nativeBool(b bool) *object.Boolean {
	if b {
		return TRUE
	}
	return FALSE
}

func isTruthy(obj object.Object) bool {
	switch o := obj.(type) {
	case *object.Boolean:
		return o.Value
	case *object.None:
		return false
	case *object.Integer:
		return o.Value != 0
	case *object.Float:
		return o.Value != 0
	case *object.String:
		return len(o.Value) > 0
	case *object.List:
		return len(o.Elements) > 0
	case *object.Dict:
		return o.Len() > 0
	default:
		return true
	}
}
