// Package policy decides, for a given identity, whether a requested action is
// allowed and which navigation entries the client should render. It is a pure
// in-process decision library; enforcement lives in middleware and controllers,
// the nav projection is UI-only and never authoritative.
package policy

// Role is a closed set. Keep switches over Role exhaustive so a new role is a
// compile-visible change everywhere access is decided.
type Role string

const (
	RoleStudent  Role = "student"
	RoleTeacher  Role = "teacher"
	RolePersonal Role = "personal"
	RoleAdmin    Role = "admin"
)

func ValidRole(r Role) bool {
	switch r {
	case RoleStudent, RoleTeacher, RolePersonal, RoleAdmin:
		return true
	}
	return false
}

// Identity is the authenticated principal as loaded from the users table.
type Identity struct {
	ID        uint
	Role      Role
	IsBlocked bool
}

// Action names every gated operation on the platform.
type Action string

const (
	ActionManageClass      Action = "class:manage"      // create/edit class, create assignment
	ActionGradeSubmission  Action = "class:grade"       // grade a submission in own class
	ActionEnrollClass      Action = "class:enroll"      // join a class / view "my classes"
	ActionSubmitAssignment Action = "class:submit"      // submit to an enrolled class's assignment
	ActionAuthorQuiz       Action = "quiz:author"       // create/edit/delete quizzes, view analytics
	ActionTakeQuiz         Action = "quiz:take"         // attempt a quiz
	ActionViewQuizResults  Action = "quiz:results"      // view attempt results
	ActionAuthorResource   Action = "resource:author"   // create/edit/delete library resources
	ActionViewResource     Action = "resource:view"     // read-only library access
	ActionCreatePost       Action = "feed:post"         // post or comment on the feed
	ActionDeleteContent    Action = "feed:delete"       // delete a post or comment
	ActionManageUsers      Action = "users:manage"      // role change, block/unblock, delete
	ActionViewDashboard    Action = "dashboard:view"    // any authenticated page entry
)

// Request carries the action plus the relationship facts the matrix needs.
// OwnerID is the creator of the targeted content (class teacher, quiz author,
// post author, result owner). TargetID is the user being acted on for
// user-management actions. Enrolled reports whether the acting student is
// enrolled in the class the content belongs to.
type Request struct {
	Action   Action
	OwnerID  uint
	TargetID uint
	Enrolled bool
}

// Decision is ephemeral, computed per request and never persisted.
type Decision struct {
	Allow        bool
	Redirect     string // set on deny: where the client should navigate
	ForceSignOut bool   // set when the session itself must be invalidated
	Reason       string
}

const loginRoute = "/login"

func allow() Decision {
	return Decision{Allow: true}
}

func deny(reason string) Decision {
	return Decision{Redirect: loginRoute, Reason: reason}
}

// Authorize resolves the role x resource matrix. Check order is fixed: missing
// identity, then block status, then the matrix — so a blocked admin is signed
// out before self-action rejection is ever considered.
func Authorize(identity *Identity, req Request) Decision {
	if identity == nil {
		return deny("no active session")
	}
	if identity.IsBlocked {
		d := deny("account is blocked")
		d.ForceSignOut = true
		return d
	}

	switch req.Action {
	case ActionViewDashboard, ActionViewResource, ActionCreatePost:
		// Any authenticated, non-blocked identity. Paid HSC resources are
		// excluded for non-admins at the query boundary, not here.
		return allow()

	case ActionManageClass, ActionGradeSubmission:
		if identity.Role != RoleTeacher {
			return deny("teacher role required")
		}
		if req.OwnerID != 0 && req.OwnerID != identity.ID {
			return deny("not the owning teacher")
		}
		return allow()

	case ActionEnrollClass:
		if identity.Role != RoleStudent {
			return deny("student role required")
		}
		return allow()

	case ActionSubmitAssignment:
		if identity.Role != RoleStudent {
			return deny("student role required")
		}
		if !req.Enrolled {
			return deny("not enrolled in this class")
		}
		return allow()

	case ActionAuthorQuiz:
		switch identity.Role {
		case RoleAdmin:
			return allow()
		case RoleTeacher:
			if req.OwnerID != 0 && req.OwnerID != identity.ID {
				return deny("not the quiz author")
			}
			return allow()
		case RoleStudent, RolePersonal:
			return deny("teacher or admin role required")
		}
		return deny("unknown role")

	case ActionTakeQuiz:
		switch identity.Role {
		case RoleStudent, RoleAdmin:
			return allow()
		case RoleTeacher, RolePersonal:
			return deny("student or admin role required")
		}
		return deny("unknown role")

	case ActionViewQuizResults:
		switch identity.Role {
		case RoleAdmin:
			return allow()
		case RoleStudent:
			if req.OwnerID != identity.ID {
				return deny("not your results")
			}
			return allow()
		case RoleTeacher, RolePersonal:
			return deny("student or admin role required")
		}
		return deny("unknown role")

	case ActionAuthorResource:
		if identity.Role != RoleAdmin {
			return deny("admin role required")
		}
		return allow()

	case ActionDeleteContent:
		// Owner-or-admin, applied uniformly to posts and comments.
		if identity.Role == RoleAdmin || identity.ID == req.OwnerID {
			return allow()
		}
		return deny("only the author or an admin may delete this")

	case ActionManageUsers:
		if identity.Role != RoleAdmin {
			return deny("admin role required")
		}
		if req.TargetID == identity.ID {
			// Rejected before any store call ever happens.
			return deny("admins may not target their own account")
		}
		return allow()
	}

	// Fail-closed on any action the matrix does not know.
	return deny("unknown action")
}
