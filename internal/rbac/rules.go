package rbac

// Default policy. Students practice and sit exams; admins author content.
var RolePermissions = map[string][]string{
	"student": {
		"exam:take",
		"exam:submit",
		"dashboard:view-own",
	},
	"admin": {
		"*", // everything
	},
}
