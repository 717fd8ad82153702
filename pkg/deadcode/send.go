package deadcode

// ArgKind tags the shape of a send argument.
type ArgKind uint8

const (
	ArgOther ArgKind = iota
	ArgSymbol
	ArgString
	ArgConstant
	ArgInteger
	ArgHash
	ArgArray
	ArgMethodDef
	ArgIdentifier
	ArgCall
	ArgSelf
	ArgLiteral
	ArgBlockPass
	ArgSplat
)

var argKindNames = [...]string{
	ArgOther:      "other",
	ArgSymbol:     "symbol",
	ArgString:     "string",
	ArgConstant:   "constant",
	ArgInteger:    "integer",
	ArgHash:       "hash",
	ArgArray:      "array",
	ArgMethodDef:  "method_def",
	ArgIdentifier: "identifier",
	ArgCall:       "call",
	ArgSelf:       "self",
	ArgLiteral:    "literal",
	ArgBlockPass:  "block_pass",
	ArgSplat:      "splat",
}

func (k ArgKind) String() string {
	if int(k) < len(argKindNames) {
		return argKindNames[k]
	}
	return "other"
}

// Arg is one argument of a send site.
//
// Value holds the symbol or string contents, the constant path, the integer
// literal, the defined method name, the identifier, or the called method name,
// depending on Kind. Hash arguments carry Pairs, arrays carry Elems. A block
// pass or splat wraps its operand in Elems[0].
type Arg struct {
	Kind     ArgKind
	Value    string
	Pairs    []Pair
	Elems    []Arg
	Location Location
}

// IsName reports whether the argument is a symbol or plain string literal,
// the two forms metaprogramming APIs accept as method names.
func (a Arg) IsName() bool {
	return a.Kind == ArgSymbol || a.Kind == ArgString
}

// Names returns the symbol/string values of the argument, flattening arrays.
func (a Arg) Names() []string {
	switch {
	case a.IsName():
		return []string{a.Value}
	case a.Kind == ArgArray:
		var names []string
		for _, e := range a.Elems {
			if e.IsName() {
				names = append(names, e.Value)
			}
		}
		return names
	default:
		return nil
	}
}

// Pair is a key/value entry of a hash argument or keyword argument.
type Pair struct {
	Key   Arg
	Value Arg
}

// ReceiverPresence distinguishes `recv.name` from bare `name`.
type ReceiverPresence uint8

const (
	ReceiverImplicit ReceiverPresence = iota
	ReceiverExplicit
)

// Send is the value plugins receive for every call site.
type Send struct {
	Name             string
	Receiver         string
	ReceiverPresence ReceiverPresence
	Args             []Arg
	HasBlock         bool
	Location         Location
}

// Implicit reports whether the call has no explicit receiver (or self).
func (s *Send) Implicit() bool {
	return s.ReceiverPresence == ReceiverImplicit || s.Receiver == "self"
}

// Positional returns the arguments that are not keyword hashes.
func (s *Send) Positional() []Arg {
	out := make([]Arg, 0, len(s.Args))
	for _, a := range s.Args {
		if a.Kind != ArgHash {
			out = append(out, a)
		}
	}
	return out
}

// FirstName returns the first positional argument if it is a symbol or string.
func (s *Send) FirstName() (string, Location, bool) {
	for _, a := range s.Args {
		if a.Kind == ArgHash {
			continue
		}
		if a.IsName() {
			return a.Value, a.Location, true
		}
		return "", Location{}, false
	}
	return "", Location{}, false
}

// NameArgs returns every symbol/string positional argument, flattening arrays.
func (s *Send) NameArgs() []Arg {
	var out []Arg
	for _, a := range s.Args {
		switch {
		case a.IsName():
			out = append(out, a)
		case a.Kind == ArgArray:
			for _, e := range a.Elems {
				if e.IsName() {
					out = append(out, e)
				}
			}
		}
	}
	return out
}

// Keyword returns the value of a keyword argument such as `if: :admin?`.
func (s *Send) Keyword(key string) (Arg, bool) {
	for _, a := range s.Args {
		if a.Kind != ArgHash {
			continue
		}
		for _, p := range a.Pairs {
			if p.Key.IsName() && p.Key.Value == key {
				return p.Value, true
			}
		}
	}
	return Arg{}, false
}
