package auth

import (
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/spec-kit/auth-service/internal/domain"
)

// Rule is one route policy entry.
type Rule struct {
	Pattern      string
	Anonymous    bool
	RequiredRole domain.Role
}

// DefaultRule applies when no pattern matches: authentication required, no role.
var DefaultRule = Rule{Pattern: "**"}

// RoutePolicy is an ordered, read-only rule table. The first matching pattern wins.
// Patterns and paths are compared lower-cased, the way fiber routes by default.
type RoutePolicy struct {
	rules    []Rule
	fallback Rule
}

// NewRoutePolicy validates the rules and returns a policy falling back to DefaultRule.
func NewRoutePolicy(rules ...Rule) (*RoutePolicy, error) {
	copied := make([]Rule, 0, len(rules))
	for _, rule := range rules {
		if !doublestar.ValidatePattern(rule.Pattern) {
			return nil, fmt.Errorf("route policy: invalid pattern %q", rule.Pattern)
		}
		if rule.Anonymous && rule.RequiredRole != "" {
			return nil, fmt.Errorf("route policy: anonymous pattern %q cannot require role %s", rule.Pattern, rule.RequiredRole)
		}
		if rule.RequiredRole != "" && !rule.RequiredRole.Valid() {
			return nil, fmt.Errorf("route policy: unknown role %q for %q", rule.RequiredRole, rule.Pattern)
		}
		rule.Pattern = strings.ToLower(rule.Pattern)
		copied = append(copied, rule)
	}
	return &RoutePolicy{rules: copied, fallback: DefaultRule}, nil
}

// MustRoutePolicy is NewRoutePolicy that panics on an invalid table.
func MustRoutePolicy(rules ...Rule) *RoutePolicy {
	p, err := NewRoutePolicy(rules...)
	if err != nil {
		panic(err)
	}
	return p
}

// Match returns the first rule whose pattern matches the request path.
func (p *RoutePolicy) Match(requestPath string) Rule {
	cleaned := strings.ToLower(path.Clean("/" + requestPath))
	for _, rule := range p.rules {
		if ok, _ := doublestar.Match(rule.Pattern, cleaned); ok {
			return rule
		}
	}
	return p.fallback
}

// Rules returns a copy of the ordered table.
func (p *RoutePolicy) Rules() []Rule {
	return append([]Rule(nil), p.rules...)
}

// DefaultPolicy is the service's route table. When registration is admin-only the
// register route requires an ADMIN token instead of being anonymous.
func DefaultPolicy(adminOnlyRegister bool) *RoutePolicy {
	register := Rule{Pattern: "/auth/register", Anonymous: true}
	if adminOnlyRegister {
		register = Rule{Pattern: "/auth/register", RequiredRole: domain.RoleAdmin}
	}
	return MustRoutePolicy(
		Rule{Pattern: "/auth/login", Anonymous: true},
		register,
		Rule{Pattern: "/health/**", Anonymous: true},
		Rule{Pattern: "/public/**", Anonymous: true},
		Rule{Pattern: "/demo/admin", RequiredRole: domain.RoleAdmin},
		Rule{Pattern: "/admin/**", RequiredRole: domain.RoleAdmin},
	)
}
