package auth

import (
	"reflect"
	"testing"
)

func TestParsePermissionsShapes(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want PermissionSet
	}{
		{"object", `{"reports.read": true, "crm.read": false}`, PermissionSet{"reports.read": true, "crm.read": false}},
		{"array", `["reports.read", "users.manage"]`, PermissionSet{"reports.read": true, "users.manage": true}},
		{"double encoded", `"{\"reports.read\": true}"`, PermissionSet{"reports.read": true}},
		{"empty", ``, PermissionSet{}},
		{"null", `null`, PermissionSet{}},
		{"garbage", `not-json`, PermissionSet{}},
		{"blank keys dropped", `{" ": true, "plant.read": true}`, PermissionSet{"plant.read": true}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParsePermissions([]byte(tc.raw))
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ParsePermissions(%q) = %v, want %v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestPermissionSetKeysSortedAndGrantedOnly(t *testing.T) {
	set := PermissionSet{"users.manage": true, "crm.read": false, "reports.read": true}
	got := set.Keys()
	want := []string{"reports.read", "users.manage"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
}

func TestEncodeParseRoundTrip(t *testing.T) {
	set := PermissionSet{"reports.read": true, "plant.read": true}
	got := ParsePermissions(EncodePermissions(set))
	if !reflect.DeepEqual(got, set) {
		t.Fatalf("round trip = %v, want %v", got, set)
	}
	if string(EncodePermissions(nil)) != "{}" {
		t.Fatalf("nil set should encode as empty object, got %s", EncodePermissions(nil))
	}
}
