package constant

const (
	ContextUserID   = "ctx_user_id"
	ContextUserRole = "ctx_user_role"

	RoleAdmin   = "admin"
	RoleStudent = "student"

	DefaultTimezone = "Europe/Budapest"

	HTTPSSchema = "https://"
	HTTPSchema  = "http://"
)
