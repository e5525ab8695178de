package dispatch

import "pyrite/internal/types"

// Rewrite describes the target call shape for one source method.
type Rewrite struct {
	// Name is the target method name.
	Name string
	// Suffix is a call chain appended after the invocation, e.g.
	// ".count()" for substring counting.
	Suffix string
	// ArgRef wraps arguments in references.
	ArgRef bool
	// ArgCast casts integer arguments, e.g. "usize" for positions.
	ArgCast string
}

var strMethods = map[string]Rewrite{
	"upper":      {Name: "to_uppercase"},
	"lower":      {Name: "to_lowercase"},
	"strip":      {Name: "trim", Suffix: ".to_string()"},
	"lstrip":     {Name: "trim_start", Suffix: ".to_string()"},
	"rstrip":     {Name: "trim_end", Suffix: ".to_string()"},
	"startswith": {Name: "starts_with"},
	"endswith":   {Name: "ends_with"},
	"replace":    {Name: "replace"},
	"find":       {Name: "find", Suffix: ".map(|i| i as i64).unwrap_or(-1)"},
	// Substring counting is a pattern-match count, never a manual
	// filter over characters.
	"count": {Name: "matches", Suffix: ".count() as i64"},
	"split": {Name: "split", Suffix: ".map(|s| s.to_string()).collect::<Vec<String>>()"},
	"isdigit": {Name: "chars", Suffix: ".all(|c| c.is_ascii_digit())"},
	"isalpha": {Name: "chars", Suffix: ".all(|c| c.is_alphabetic())"},
}

var listMethods = map[string]Rewrite{
	"append":  {Name: "push"},
	"pop":     {Name: "pop", Suffix: ".unwrap()"},
	"insert":  {Name: "insert", ArgCast: "usize"},
	"extend":  {Name: "extend"},
	"sort":    {Name: "sort"},
	"reverse": {Name: "reverse"},
	"clear":   {Name: "clear"},
	"copy":    {Name: "clone"},
}

var dictMethods = map[string]Rewrite{
	"get":    {Name: "get", ArgRef: true, Suffix: ".cloned()"},
	"keys":   {Name: "keys", Suffix: ".cloned().collect::<Vec<_>>()"},
	"values": {Name: "values", Suffix: ".cloned().collect::<Vec<_>>()"},
	"items":  {Name: "iter"},
	"pop":    {Name: "remove", ArgRef: true, Suffix: ".unwrap()"},
	"clear":  {Name: "clear"},
}

var setMethods = map[string]Rewrite{
	"add":     {Name: "insert"},
	"remove":  {Name: "remove", ArgRef: true},
	"discard": {Name: "remove", ArgRef: true},
	"clear":   {Name: "clear"},
	"union":   {Name: "union", ArgRef: true, Suffix: ".cloned().collect()"},
}

// Method resolves a receiver method to its target form. Unresolved
// methods keep their source name; the target compiler rejects what
// does not exist and the feedback loop owns the repair.
func Method(recv types.Type, name string) Rewrite {
	var table map[string]Rewrite
	switch recv.Kind() {
	case types.KindStr:
		table = strMethods
	case types.KindList:
		table = listMethods
	case types.KindDict:
		table = dictMethods
	case types.KindSet:
		table = setMethods
	}
	if rw, ok := table[name]; ok {
		return rw
	}
	return Rewrite{Name: name}
}
