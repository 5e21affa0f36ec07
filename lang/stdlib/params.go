package stdlib

// builtinParams names the parameters of each built-in function for
// signature hints.
var builtinParams = map[string][]string{
	"abs":       {"x"},
	"floor":     {"x"},
	"ceil":      {"x"},
	"round":     {"x"},
	"sqrt":      {"x"},
	"sin":       {"x"},
	"cos":       {"x"},
	"tan":       {"x"},
	"pow":       {"x", "y"},
	"min":       {"...x"},
	"max":       {"...x"},
	"clamp":     {"x", "lo", "hi"},
	"lerp":      {"a", "b", "t"},
	"dot":       {"a", "b"},
	"length":    {"v"},
	"normalize": {"v"},
	"cross":     {"a", "b"},
	"len":       {"v"},
	"upper":     {"s"},
	"lower":     {"s"},
	"trim":      {"s"},
	"str":       {"v"},
	"toint":     {"v"},
	"tofloat":   {"v"},
	"getenv":    {"key", "default"},
	"hostname":  {},
	"username":  {},
	"shell":     {},
	"platform":  {},
	"target":    {},
	"cwd":       {},
	"exists":    {"path"},
	"isdir":     {"path"},
	"isfile":    {"path"},
	"islink":    {"path"},
	"abspath":   {"path"},
	"joinpath":  {"...elem"},
	"relpath":   {"base", "target"},
	"prefix":    {"list", "...items"},
	"prefixdir": {"list", "...items"},
}
