package artifact

// Scope constrains when a dependency is visible on a classpath.
type Scope string

// Maven dependency scopes.
const (
	ScopeCompile  Scope = "compile"
	ScopeProvided Scope = "provided"
	ScopeRuntime  Scope = "runtime"
	ScopeTest     Scope = "test"
	ScopeSystem   Scope = "system"
	ScopeImport   Scope = "import"
)

// Normalize returns s, or [ScopeCompile] if s is empty.
func (s Scope) Normalize() Scope {
	if s == "" {
		return ScopeCompile
	}
	return s
}

// String returns the normalized scope name.
func (s Scope) String() string { return string(s.Normalize()) }

// Transitive computes the effective scope of a dependency declared with
// scope s on an artifact that itself sits on the path with scope parent.
//
// It follows Maven's combination table:
//
//	parent \ child   compile    runtime
//	compile          compile    runtime
//	provided         provided   provided
//	runtime          runtime    runtime
//	test             test       test
//
// provided, test, system and import dependencies are not transitive, so ok is
// false for them. Unknown child scopes are handled like compile.
func (s Scope) Transitive(parent Scope) (scope Scope, ok bool) {
	child := s.Normalize()
	switch child {
	case ScopeProvided, ScopeTest, ScopeSystem, ScopeImport:
		return "", false
	}

	switch parent.Normalize() {
	case ScopeCompile:
		if child == ScopeRuntime {
			return ScopeRuntime, true
		}
		return child, true
	case ScopeProvided, ScopeSystem:
		return ScopeProvided, true
	case ScopeRuntime:
		return ScopeRuntime, true
	case ScopeTest:
		return ScopeTest, true
	default:
		return child, true
	}
}
