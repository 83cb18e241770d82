package rbac

import (
	"sort"
	"strings"

	"github.com/odyssey-erp/odyssey-pos/internal/shared"
)

// Service resolves the permissions granted to a principal.
type Service struct {
	grants map[string]map[string]struct{}
}

// NewService constructs a Service with the built-in role table.
func NewService() *Service {
	grants := make(map[string]map[string]struct{}, len(rolePermissions))
	for role, perms := range rolePermissions {
		set := make(map[string]struct{}, len(perms))
		for _, p := range perms {
			set[p] = struct{}{}
		}
		grants[role] = set
	}
	return &Service{grants: grants}
}

// PermissionsForRole returns the sorted permissions of role. Unknown roles get none.
func (s *Service) PermissionsForRole(role string) []string {
	set := s.grants[normalize(role)]
	perms := make([]string, 0, len(set))
	for p := range set {
		perms = append(perms, p)
	}
	sort.Strings(perms)
	return perms
}

// EffectivePermissions returns the permissions held by the principal.
func (s *Service) EffectivePermissions(p shared.Principal) []string {
	return s.PermissionsForRole(p.Role)
}

// Missing returns the entries of perms the principal does not hold.
func (s *Service) Missing(p shared.Principal, perms []string) []string {
	set := s.grants[normalize(p.Role)]
	var missing []string
	for _, perm := range perms {
		if _, ok := set[perm]; !ok {
			missing = append(missing, perm)
		}
	}
	return missing
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
