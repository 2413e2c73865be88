// Package authz decides who may act on which record. Every function here is
// pure: it reads the actor and the already-loaded resource and never touches
// storage.
package authz

import (
	"anoa.com/jobboard/internal/entity"
	"anoa.com/jobboard/pkg/apperror"
)

// Role is what an actor is relative to a resource.
type Role uint8

const (
	// RoleApplicant: the actor submitted the application.
	RoleApplicant Role = 1 << iota
	// RoleJobEmployer: the actor posted the job the application targets.
	RoleJobEmployer
	RoleAdmin
)

// CapabilitySet is a set of roles.
type CapabilitySet uint8

func (s CapabilitySet) Has(r Role) bool {
	return s&CapabilitySet(r) != 0
}

func (s CapabilitySet) Any(roles ...Role) bool {
	for _, r := range roles {
		if s.Has(r) {
			return true
		}
	}
	return false
}

// Decision is the outcome of a check. Reason is only set on deny.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Reason: reason}
}

// Err returns nil when allowed and a 403 otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return apperror.Forbidden(d.Reason)
}

// Capabilities computes the actor's roles against an application. The
// application's Job must be loaded for the employer relation to count.
func Capabilities(actor *entity.User, app *entity.JobApplication) CapabilitySet {
	var set CapabilitySet
	if actor == nil {
		return set
	}
	if actor.IsAdmin {
		set |= CapabilitySet(RoleAdmin)
	}
	if app == nil {
		return set
	}
	if app.UserID == actor.ID {
		set |= CapabilitySet(RoleApplicant)
	}
	if app.Job != nil && app.Job.EmployerID == actor.ID {
		set |= CapabilitySet(RoleJobEmployer)
	}
	return set
}

func CanViewApplication(actor *entity.User, app *entity.JobApplication) Decision {
	if Capabilities(actor, app).Any(RoleApplicant, RoleJobEmployer, RoleAdmin) {
		return allow()
	}
	return deny("you are not allowed to view this application")
}

// CanManageApplication uses the same rule as viewing.
func CanManageApplication(actor *entity.User, app *entity.JobApplication) Decision {
	if Capabilities(actor, app).Any(RoleApplicant, RoleJobEmployer, RoleAdmin) {
		return allow()
	}
	return deny("you are not allowed to modify this application")
}

func CanScheduleInterview(actor *entity.User, app *entity.JobApplication) Decision {
	if Capabilities(actor, app).Any(RoleJobEmployer, RoleAdmin) {
		return allow()
	}
	return deny("only the job's employer can schedule interviews for this application")
}

func isEmployerOrAdmin(actor *entity.User) bool {
	return actor != nil && (actor.IsEmployer || actor.IsAdmin)
}

func CanListOwnJobs(actor *entity.User) Decision {
	if isEmployerOrAdmin(actor) {
		return allow()
	}
	return deny("only employers can list posted jobs")
}

func CanListOwnInterviews(actor *entity.User) Decision {
	if isEmployerOrAdmin(actor) {
		return allow()
	}
	return deny("only employers can list scheduled interviews")
}

// CanActAsUser has no admin override. Saved jobs and profile edits are
// strictly self-service.
func CanActAsUser(actor *entity.User, targetUserID uint) Decision {
	if actor != nil && actor.ID == targetUserID {
		return allow()
	}
	return deny("you can only perform this action for your own account")
}

// CanManageJob allows the posting employer and admins.
func CanManageJob(actor *entity.User, job *entity.Job) Decision {
	if actor == nil || job == nil {
		return deny("you are not allowed to modify this job")
	}
	if actor.IsAdmin || job.EmployerID == actor.ID {
		return allow()
	}
	return deny("you are not allowed to modify this job")
}

// CanCreateJobFor requires employer capability, and that employers post only
// under their own id. Admins may post for anyone.
func CanCreateJobFor(actor *entity.User, employerID uint) Decision {
	if !isEmployerOrAdmin(actor) {
		return deny("only employers can post jobs")
	}
	if !actor.IsAdmin && actor.ID != employerID {
		return deny("you can only post jobs as yourself")
	}
	return allow()
}

// CanGrantRoles guards changes to is_admin and is_employer.
func CanGrantRoles(actor *entity.User) Decision {
	if actor != nil && actor.IsAdmin {
		return allow()
	}
	return deny("only administrators can change account roles")
}
