// Package lang implements vexpr, a small typed expression language meant to
// be embedded in a host application and evaluated repeatedly.
//
// # Grammar
//
// Informal EBNF, lowest precedence first:
//
//	Expression  → Assignment (';' Assignment)* ';'?
//	Assignment  → Declaration
//	            | Target ('=' | '+=' | '-=' | '*=' | '/=' | '%=' | '&=' | '|=') Assignment
//	            | Ternary
//	Declaration → Type Identifier ('=' Assignment)?
//	Type        → ('bool' | 'int' | 'float' | 'float2' | 'float3' | 'float4' | 'string') Rank*
//	Rank        → '[' ','* ']'
//	Ternary     → LogicalOr ('?' Ternary ':' Ternary)?
//	LogicalOr   → LogicalAnd ('||' LogicalAnd)*
//	LogicalAnd  → Equality ('&&' Equality)*
//	Equality    → Relational (('==' | '!=') Relational)?
//	Relational  → Additive (('<' | '>' | '<=' | '>=') Additive)?
//	Additive    → Multiply (('+' | '-') Multiply)*
//	Multiply    → Unary (('*' | '/' | '%') Unary)*
//	Unary       → ('+' | '-' | '!')* Indexed
//	Indexed     → Primary ('[' Ternary (',' Ternary)* ']')* ('++' | '--')?
//	Primary     → Literal | Identifier | Identifier '(' Args? ')'
//	            | ('++' | '--') Primary ('[' Args ']')* | '(' Expression ')'
//	            | '{' Args? '}' | 'new' Type '(' Args? ')'
//	            | 'new' Kind '[' (Args | ','*) ']' Rank* ('{' Args? '}')?
//
// Each level returns its operand unchanged when its operator is absent, so
// "1" parses to a single Literal rather than a chain of wrappers.
//
// # Values
//
// A [Value] holds exactly one of null, bool, int (int64), float (float64),
// float2, float3, float4 or string, or an array of any of those. Arrays are
// references: assigning an array shares it, and indexed assignment mutates
// it in place. An array type may nest ranks: float[,][] is a
// two-dimensional block whose elements are one-dimensional float arrays.
//
// Arithmetic promotes int to float when mixed, works componentwise on
// vectors, and broadcasts scalars across vectors. "+" concatenates when
// either side is a string. "&&", "||", "!" and "?:" require bool operands.
// "==" and "!=" never fail: values of unrelated kinds are simply unequal.
//
// # Scopes
//
// Variables live in [Scope] frames created while parsing: the root frame of
// the [Program] and one child frame per parenthesized group. Declarations
// and first plain assignments bind names in the innermost frame at parse
// time, so a name declared inside parentheses is invisible outside them.
// Frames keep their values between evaluations until [Program.Reset].
//
// Function calls are the only thing delegated to the [Host] passed to
// Evaluate. The host never resolves variables.
//
// # Example
//
//	prog, err := lang.Compile(ctx, `float3 v = new float3(1, 2, 3); v * 2`)
//	if err != nil {
//		return err
//	}
//
//	v, err := prog.Evaluate(ctx, nil)
//	// v.String() == "(2, 4, 6)"
package lang
