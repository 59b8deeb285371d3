package rbac

// Default policy. Trainers own exam authoring and grading review;
// students take exams and see their own results.
var RolePermissions = map[string][]string{
	"student": {
		"exam:view",
		"question:view",
		"submission:create",
		"submission:view-own",
		"user:change_password",
	},
	"trainer": {
		"exam:*",
		"question:*",
		"submission:view-own",
		"submission:view-all",
		"users:list",
		"user:change_password",
	},
	"admin": {
		"*", // everything
	},
}
