package rbac

// rolePermissionGroups assigns permission groups to each role. Groups may
// overlap; the flattened sets below deduplicate them.
var rolePermissionGroups = map[Role][][]Permission{
	RoleAdmin: {
		{
			Perm(ResourceUsers, ActionCreate),
			Perm(ResourceUsers, ActionRead),
			Perm(ResourceUsers, ActionUpdate),
			Perm(ResourceUsers, ActionDelete),
		},
		{
			Perm(ResourceReports, ActionRead),
			Perm(ResourceReports, ActionUpdate),
			Perm(ResourceReports, ActionDelete),
		},
		{
			Perm(ResourceDistricts, ActionCreate),
			Perm(ResourceDistricts, ActionRead),
			Perm(ResourceDistricts, ActionUpdate),
			Perm(ResourceDistricts, ActionDelete),
		},
		{
			Perm(ResourceVillages, ActionCreate),
			Perm(ResourceVillages, ActionRead),
			Perm(ResourceVillages, ActionUpdate),
			Perm(ResourceVillages, ActionDelete),
		},
		{
			Perm(ResourceFeedbackUser, ActionRead),
		},
	},
	RoleUser: {
		{
			Perm(ResourceReports, ActionCreate),
			Perm(ResourceReports, ActionRead),
		},
		{
			Perm(ResourceUsers, ActionUpdate),
			Perm(ResourceUsersProfile, ActionRead),
			Perm(ResourceUsersProfile, ActionUpdate),
		},
		{
			Perm(ResourceDistricts, ActionRead),
		},
		{
			Perm(ResourceVillages, ActionRead),
		},
	},
}

// rolePermissions holds the flattened, deduplicated set per role. Built once
// at init and never mutated afterwards, safe for concurrent reads.
var rolePermissions = buildRolePermissions()

func buildRolePermissions() map[Role]map[Permission]struct{} {
	table := make(map[Role]map[Permission]struct{}, len(rolePermissionGroups))
	for role, groups := range rolePermissionGroups {
		set := make(map[Permission]struct{})
		for _, group := range groups {
			for _, perm := range group {
				set[perm] = struct{}{}
			}
		}
		table[role] = set
	}
	return table
}

// PermissionsFor returns the permission set for a role. Unknown roles get an
// empty set, never an error.
func PermissionsFor(role Role) map[Permission]struct{} {
	return rolePermissions[role]
}

// HasPermission reports whether the role holds the given permission.
func HasPermission(role Role, perm Permission) bool {
	_, ok := rolePermissions[role][perm]
	return ok
}
