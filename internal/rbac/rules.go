package rbac

// Default policy. Students take tests and review their own results;
// editors manage content; admins do everything.
var RolePermissions = map[string][]string{
	"student": {
		"test:view",
		"attempt:begin",
		"attempt:submit",
		"result:view-own",
		"access:check",
	},
	"editor": {
		"test:view",
		"question:manage",
		"test:manage",
		"category:manage",
		"course:manage",
		"access:check",
	},
	"admin": {
		"*", // everything
	},
}
