package models

const (
	RoleCandidate  = "candidate"
	RoleLearner    = "learner"
	RoleSupervisor = "supervisor"
	RoleAdmin      = "admin"
)

// Identity is the acting user, taken on trust from the platform's auth
// middleware (X-User-ID / X-User-Role headers).
type Identity struct {
	UserID string
	Role   string
}

// CanGrade reports grading authority: supervisors and admins see answer
// keys and may grade submitted attempts.
func (id Identity) CanGrade() bool {
	return id.Role == RoleSupervisor || id.Role == RoleAdmin
}

func (id Identity) IsAdmin() bool {
	return id.Role == RoleAdmin
}
