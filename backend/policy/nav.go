package policy

// NavEntries returns the static navigation allow-list for a role. This is a
// projection for UI composition only; Authorize remains the authority.
func NavEntries(role Role) []string {
	switch role {
	case RoleStudent:
		return []string{"dashboard", "my-classes", "quizzes", "feed", "resources", "profile"}
	case RoleTeacher:
		return []string{"dashboard", "classes", "quizzes", "feed", "resources", "profile"}
	case RolePersonal:
		return []string{"dashboard", "feed", "resources", "profile"}
	case RoleAdmin:
		return []string{"dashboard", "quizzes", "feed", "resources", "users", "profile"}
	}
	return nil
}
