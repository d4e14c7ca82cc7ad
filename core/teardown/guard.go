package teardown

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/school"
	"github.com/trezcool/darasa/core/user"
)

// errNotAllowed is what every denial surfaces as; callers map it to a 403.
var errNotAllowed = core.NewForbiddenError("not allowed to delete this target")

// authorize confirms the caller may destroy the root before anything runs.
// A User root may be torn down by itself or an admin; a Classroom root by
// its teacher or an admin. The check runs once up front; individual steps
// are trusted after that.
func (svc *Service) authorize(ctx context.Context, caller user.User, kind RootKind, rootID string) error {
	if caller.IsAdmin() {
		return nil
	}

	switch kind {
	case RootUser:
		if caller.ID == rootID {
			return nil
		}
		return errNotAllowed

	case RootClassroom:
		cls, err := svc.schoolRepo.GetClassroom(ctx, rootID)
		if err != nil {
			if errors.Cause(err) == school.ErrNotFound {
				// nothing left to verify ownership against; only admins may
				// retry a teardown whose root row is already gone.
				return errNotAllowed
			}
			return errors.Wrap(err, "authorizing classroom teardown")
		}
		if cls.TeacherID == caller.ID {
			return nil
		}
		return errNotAllowed
	}
	return errors.Wrapf(errUnknownRootKind, "%q", kind)
}
