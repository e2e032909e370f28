package resolver

import (
	"path/filepath"
	"regexp"
	"strings"
)

// RouteResolver maps a framework-specific indirection (an HTTP route,
// a decorator-registered endpoint) to the qualified name of the
// handler it dispatches to. Both implementations are best-effort: a
// false return simply falls through to the unresolved-ref step.
type RouteResolver interface {
	ResolveRoute(callerPath, target string) (qualifiedName string, ok bool)
}

// HTTPHandlerResolver recognizes Go net/http handler-method
// conventions: a target named "ServeHTTP" or "Handle*" is resolved to
// "<caller file base name>.<target>", i.e. a symbol declared at the
// top level of the caller's own file.
type HTTPHandlerResolver struct{}

func (HTTPHandlerResolver) ResolveRoute(callerPath, target string) (string, bool) {
	if target == "ServeHTTP" || strings.HasPrefix(target, "Handle") {
		base := strings.TrimSuffix(filepath.Base(callerPath), filepath.Ext(callerPath))
		return base + "." + target, true
	}
	return "", false
}

// DecoratorRouteResolver approximates Python/TypeScript route decorator
// conventions (@app.get, @Get, @router.post). It does not read
// decorator text or source lines: CallSite only carries a textual
// target, so this resolver matches target names that start with an
// HTTP verb (e.g. "get_users", "postLogin") and resolves them to
// "<caller file base name>.<target>".
type DecoratorRouteResolver struct{}

var routeVerbPattern = regexp.MustCompile(`(?i)^(get|post|put|patch|delete)[_-]?`)

func (DecoratorRouteResolver) ResolveRoute(callerPath, target string) (string, bool) {
	if !routeVerbPattern.MatchString(target) {
		return "", false
	}
	base := strings.TrimSuffix(filepath.Base(callerPath), filepath.Ext(callerPath))
	return base + "." + target, true
}
