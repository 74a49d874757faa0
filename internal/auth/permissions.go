package auth

import (
	"encoding/json"
	"sort"
	"strings"
)

// Permission flags understood by the API surface.
const (
	PermReportsRead = "reports.read"
	PermCRMRead     = "crm.read"
	PermPlantRead   = "plant.read"
	PermUsersManage = "users.manage"
)

// PermissionSet is the canonical in-process representation of a user's
// permission flags. The credential store may hold a JSON object, a JSON
// array, or a doubly-encoded JSON string; ParsePermissions normalizes all of
// them at the store boundary so nothing downstream branches on shape.
type PermissionSet map[string]bool

// Has reports whether the named permission is granted.
func (ps PermissionSet) Has(key string) bool {
	return ps[key]
}

// Keys returns the granted permissions in sorted order.
func (ps PermissionSet) Keys() []string {
	out := make([]string, 0, len(ps))
	for k, granted := range ps {
		if granted {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// ParsePermissions decodes the stored permission payload.
func ParsePermissions(raw []byte) PermissionSet {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return PermissionSet{}
	}

	// Some legacy rows store the JSON document re-encoded as a string.
	var nested string
	if json.Unmarshal([]byte(trimmed), &nested) == nil {
		trimmed = nested
	}

	var asMap map[string]bool
	if err := json.Unmarshal([]byte(trimmed), &asMap); err == nil {
		set := make(PermissionSet, len(asMap))
		for k, v := range asMap {
			k = strings.TrimSpace(k)
			if k == "" {
				continue
			}
			set[k] = v
		}
		return set
	}

	var asList []string
	if err := json.Unmarshal([]byte(trimmed), &asList); err == nil {
		set := make(PermissionSet, len(asList))
		for _, k := range asList {
			k = strings.TrimSpace(k)
			if k == "" {
				continue
			}
			set[k] = true
		}
		return set
	}

	return PermissionSet{}
}

// EncodePermissions serializes a set for storage as a JSON object.
func EncodePermissions(ps PermissionSet) []byte {
	if ps == nil {
		ps = PermissionSet{}
	}
	data, err := json.Marshal(ps)
	if err != nil {
		return []byte("{}")
	}
	return data
}
