package access

import (
	"context"

	"github.com/ebdplacar/backend/core/class"
	"github.com/ebdplacar/backend/core/user"
)

// Resolver builds an Actor from a login identity. Meant to run once per
// request; the resulting Actor is passed through to every Can call.
type Resolver struct {
	classRepo class.Repository
	userRepo  user.Repository
}

func NewResolver(classRepo class.Repository, userRepo user.Repository) *Resolver {
	return &Resolver{classRepo: classRepo, userRepo: userRepo}
}

func (r *Resolver) ResolveActor(ctx context.Context, usr user.User) (Actor, error) {
	actor := Actor{UserID: usr.ID, Role: usr.Role}

	switch usr.Role {
	case user.RoleTeacher:
		classIDs, err := r.classRepo.QueryTeacherClassIDs(ctx, usr.ID)
		if err != nil {
			return Actor{}, err
		}
		actor.ClassIDs = classIDs

		profile, err := r.userRepo.GetTeacherProfile(ctx, user.ProfileGetFilter{UserID: usr.ID})
		switch err {
		case nil:
			actor.TeacherProfileID = profile.ID
		case user.ErrProfileNotFound:
			// assigned role but never provisioned; actor keeps class access only
		default:
			return Actor{}, err
		}

	case user.RoleStudent:
		std, err := r.classRepo.GetStudentByUserID(ctx, usr.ID)
		switch err {
		case nil:
			actor.StudentID = std.ID
			actor.StudentClassID = std.ClassID
		case class.ErrStudentNotFound:
			// login not linked to a student row; every check will deny
		default:
			return Actor{}, err
		}
	}

	return actor, nil
}
