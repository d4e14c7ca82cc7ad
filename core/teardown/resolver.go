package teardown

import (
	"context"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/school"
	"github.com/trezcool/darasa/core/user"
)

// Resolver enumerates everything that transitively depends on a root entity
// and lays it out as an ordered, leaves-first stage list. Ownership is a
// tree, not a cycle, so the list is built statically up front; store-native
// cascades cannot be used because blob cleanup has to ride along with each
// row delete.
type Resolver struct {
	users  user.Repository
	school school.Repository
	// providerImageHosts are hosts whose objects the app does not own;
	// URLs on them are never scheduled for blob cleanup.
	providerImageHosts []string
}

func NewResolver(users user.Repository, schoolRepo school.Repository, providerImageHosts []string) *Resolver {
	return &Resolver{
		users:              users,
		school:             schoolRepo,
		providerImageHosts: providerImageHosts,
	}
}

func (r *Resolver) Resolve(ctx context.Context, kind RootKind, rootID string) ([]Stage, error) {
	switch kind {
	case RootUser:
		return r.resolveUser(ctx, rootID)
	case RootClassroom:
		return r.resolveClassroom(ctx, rootID, nil)
	}
	return nil, errors.Wrapf(errUnknownRootKind, "%q", kind)
}

// resolveUser builds the stage list for tearing down User(uid):
// chat-messages, comments, private-comments, owned-streams, enrollments,
// owned-classrooms (each a full classroom teardown spliced in), notes,
// notifications, role-request, avatar-blob, root.
func (r *Resolver) resolveUser(ctx context.Context, uid string) ([]Stage, error) {
	usr, err := r.users.GetUser(ctx, user.GetFilter{ID: uid})
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			// root already gone: it is deleted strictly last, so nothing
			// else can remain; a bare idempotent root stage lets a retried
			// run report success.
			return []Stage{r.userRootStage(uid)}, nil
		}
		return nil, errors.Wrap(err, "resolving root user")
	}

	var stages []Stage

	msgs, err := r.school.QueryChatMessagesByUser(ctx, uid)
	if err != nil {
		return nil, errors.Wrap(err, "resolving chat messages")
	}
	var msgURLs []string
	for _, msg := range msgs {
		msgURLs = append(msgURLs, r.ownedURLs(msg.Attachments)...)
	}
	stages = append(stages, Stage{Name: StageChatMessages, Steps: []Step{{
		EntityID:    uid,
		Attachments: msgURLs,
		delete:      func(ctx context.Context) error { return r.school.DeleteChatMessagesByUser(ctx, uid) },
	}}})

	comments, err := r.school.QueryCommentsByUser(ctx, uid)
	if err != nil {
		return nil, errors.Wrap(err, "resolving comments")
	}
	var cmtURLs []string
	for _, cmt := range comments {
		cmtURLs = append(cmtURLs, r.ownedURLs(cmt.Attachments)...)
	}
	stages = append(stages, Stage{Name: StageComments, Steps: []Step{{
		EntityID:    uid,
		Attachments: cmtURLs,
		delete:      func(ctx context.Context) error { return r.school.DeleteCommentsByUser(ctx, uid) },
	}}})

	privComments, err := r.school.QueryPrivateCommentsByUser(ctx, uid)
	if err != nil {
		return nil, errors.Wrap(err, "resolving private comments")
	}
	var privURLs []string
	for _, cmt := range privComments {
		privURLs = append(privURLs, r.ownedURLs(cmt.Attachments)...)
	}
	stages = append(stages, Stage{Name: StagePrivateComments, Steps: []Step{{
		EntityID:    uid,
		Attachments: privURLs,
		delete:      func(ctx context.Context) error { return r.school.DeletePrivateCommentsByUser(ctx, uid) },
	}}})

	streams, err := r.school.QueryStreamsByUser(ctx, uid)
	if err != nil {
		return nil, errors.Wrap(err, "resolving owned streams")
	}
	ownedStreams := Stage{Name: StageOwnedStreams}
	scheduledStreams := make(map[string]bool, len(streams))
	for _, strm := range streams {
		steps, err := r.streamSteps(ctx, strm)
		if err != nil {
			return nil, err
		}
		ownedStreams.Steps = append(ownedStreams.Steps, steps...)
		scheduledStreams[strm.ID] = true
	}
	stages = append(stages, ownedStreams)

	enrollments, err := r.school.QueryEnrollmentsByUser(ctx, uid)
	if err != nil {
		return nil, errors.Wrap(err, "resolving enrollments")
	}
	enrollStage := Stage{Name: StageEnrollments}
	for _, enr := range enrollments {
		enr := enr
		enrollStage.Steps = append(enrollStage.Steps, Step{
			EntityID: enr.ID,
			delete:   func(ctx context.Context) error { return r.school.DeleteEnrollment(ctx, enr.ID, enr.ClassID) },
		})
	}
	stages = append(stages, enrollStage)

	// a teacher's classrooms get a full classroom teardown each, spliced in
	// before their own row delete; an enrolled (non-teaching) classroom is
	// never touched beyond the enrollment row above.
	classrooms, err := r.school.QueryClassroomsByTeacher(ctx, uid)
	if err != nil {
		return nil, errors.Wrap(err, "resolving owned classrooms")
	}
	ownedClassrooms := Stage{Name: StageOwnedClassrooms}
	for _, cls := range classrooms {
		steps, err := r.classroomSteps(ctx, cls, scheduledStreams)
		if err != nil {
			return nil, err
		}
		ownedClassrooms.Steps = append(ownedClassrooms.Steps, steps...)
	}
	stages = append(stages, ownedClassrooms)

	notes, err := r.school.QueryNotesByUser(ctx, uid)
	if err != nil {
		return nil, errors.Wrap(err, "resolving notes")
	}
	noteStage := Stage{Name: StageNotes}
	for _, note := range notes {
		note := note
		noteStage.Steps = append(noteStage.Steps, Step{
			EntityID:    note.ID,
			Attachments: r.ownedURLs(note.Attachments),
			delete:      func(ctx context.Context) error { return r.school.DeleteNote(ctx, note.ID) },
		})
	}
	stages = append(stages, noteStage)

	// notifications addressed to the user reference its id; they go too.
	stages = append(stages, Stage{Name: StageNotifications, Steps: []Step{{
		EntityID: uid,
		delete:   func(ctx context.Context) error { return r.school.DeleteNotificationsByUser(ctx, uid) },
	}}})

	roleReqStage := Stage{Name: StageRoleRequest}
	if _, err = r.users.GetRoleRequest(ctx, uid); err == nil {
		roleReqStage.Steps = append(roleReqStage.Steps, Step{
			EntityID: uid,
			delete:   func(ctx context.Context) error { return r.users.DeleteRoleRequest(ctx, uid) },
		})
	} else if errors.Cause(err) != user.ErrNotFound {
		return nil, errors.Wrap(err, "resolving role request")
	}
	stages = append(stages, roleReqStage)

	avatarStage := Stage{Name: StageAvatarBlob}
	if urls := r.ownedURLs([]school.Attachment{{URL: usr.AvatarURL}}); len(urls) > 0 {
		avatarStage.Steps = append(avatarStage.Steps, Step{EntityID: uid, Attachments: urls})
	}
	stages = append(stages, avatarStage)

	stages = append(stages, r.userRootStage(uid))
	return stages, nil
}

// resolveClassroom builds the stage list for tearing down Classroom(cid):
// chat-messages, streams (each with its dependents first), enrollments,
// notifications, root. The teacher's User row is never part of it.
// skipStreams holds stream ids an enclosing user resolution already
// scheduled, so each stream (and its blobs) is issued once per run.
func (r *Resolver) resolveClassroom(ctx context.Context, cid string, skipStreams map[string]bool) ([]Stage, error) {
	if _, err := r.school.GetClassroom(ctx, cid); err != nil {
		if errors.Cause(err) == school.ErrNotFound {
			return []Stage{r.classroomRootStage(cid)}, nil
		}
		return nil, errors.Wrap(err, "resolving root classroom")
	}

	var stages []Stage

	msgs, err := r.school.QueryChatMessagesByClass(ctx, cid)
	if err != nil {
		return nil, errors.Wrap(err, "resolving class chat messages")
	}
	var msgURLs []string
	for _, msg := range msgs {
		msgURLs = append(msgURLs, r.ownedURLs(msg.Attachments)...)
	}
	stages = append(stages, Stage{Name: StageChatMessages, Steps: []Step{{
		EntityID:    cid,
		Attachments: msgURLs,
		delete:      func(ctx context.Context) error { return r.school.DeleteChatMessagesByClass(ctx, cid) },
	}}})

	streams, err := r.school.QueryStreamsByClass(ctx, cid)
	if err != nil {
		return nil, errors.Wrap(err, "resolving class streams")
	}
	streamStage := Stage{Name: StageStreams}
	for _, strm := range streams {
		if skipStreams[strm.ID] {
			continue
		}
		steps, err := r.streamSteps(ctx, strm)
		if err != nil {
			return nil, err
		}
		streamStage.Steps = append(streamStage.Steps, steps...)
	}
	stages = append(stages, streamStage)

	enrollments, err := r.school.QueryEnrollmentsByClass(ctx, cid)
	if err != nil {
		return nil, errors.Wrap(err, "resolving class enrollments")
	}
	enrollStage := Stage{Name: StageEnrollments}
	for _, enr := range enrollments {
		enr := enr
		enrollStage.Steps = append(enrollStage.Steps, Step{
			EntityID: enr.ID,
			delete:   func(ctx context.Context) error { return r.school.DeleteEnrollment(ctx, enr.ID, enr.ClassID) },
		})
	}
	stages = append(stages, enrollStage)

	// stream-scoped notifications are handled per stream above; this picks
	// up notifications pointing at the classroom itself.
	stages = append(stages, Stage{Name: StageNotifications, Steps: []Step{{
		EntityID: cid,
		delete:   func(ctx context.Context) error { return r.school.DeleteNotificationsByResource(ctx, cid) },
	}}})

	stages = append(stages, r.classroomRootStage(cid))
	return stages, nil
}

// streamSteps expands one Stream into its dependents-first deletion steps:
// comments, private comments, classwork, stream-scoped notifications, then
// the stream row itself.
func (r *Resolver) streamSteps(ctx context.Context, strm school.Stream) ([]Step, error) {
	var steps []Step

	comments, err := r.school.QueryCommentsByStream(ctx, strm.ID)
	if err != nil {
		return nil, errors.Wrap(err, "resolving stream comments")
	}
	for _, cmt := range comments {
		cmt := cmt
		steps = append(steps, Step{
			EntityID:    cmt.ID,
			Attachments: r.ownedURLs(cmt.Attachments),
			delete:      func(ctx context.Context) error { return r.school.DeleteComment(ctx, cmt.ID) },
		})
	}

	privComments, err := r.school.QueryPrivateCommentsByStream(ctx, strm.ID)
	if err != nil {
		return nil, errors.Wrap(err, "resolving stream private comments")
	}
	for _, cmt := range privComments {
		cmt := cmt
		steps = append(steps, Step{
			EntityID:    cmt.ID,
			Attachments: r.ownedURLs(cmt.Attachments),
			delete:      func(ctx context.Context) error { return r.school.DeletePrivateComment(ctx, cmt.ID) },
		})
	}

	work, err := r.school.QueryClassworkByStream(ctx, strm.ID)
	if err != nil {
		return nil, errors.Wrap(err, "resolving stream classwork")
	}
	for _, cw := range work {
		cw := cw
		steps = append(steps, Step{
			EntityID:    cw.ID,
			Attachments: r.ownedURLs(cw.Attachments),
			delete:      func(ctx context.Context) error { return r.school.DeleteClasswork(ctx, cw.ID) },
		})
	}

	strmID := strm.ID
	steps = append(steps, Step{
		EntityID: strmID,
		delete:   func(ctx context.Context) error { return r.school.DeleteNotificationsByResource(ctx, strmID) },
	})
	steps = append(steps, Step{
		EntityID:    strmID,
		Attachments: r.ownedURLs(strm.Attachments),
		delete:      func(ctx context.Context) error { return r.school.DeleteStream(ctx, strmID) },
	})
	return steps, nil
}

// classroomSteps expands one owned Classroom into a full classroom teardown
// (dependents first, classroom row last) for splicing under a user root.
func (r *Resolver) classroomSteps(ctx context.Context, cls school.Classroom, skipStreams map[string]bool) ([]Step, error) {
	subStages, err := r.resolveClassroom(ctx, cls.ID, skipStreams)
	if err != nil {
		return nil, err
	}
	var steps []Step
	for _, stage := range subStages {
		steps = append(steps, stage.Steps...)
	}
	return steps, nil
}

func (r *Resolver) userRootStage(uid string) Stage {
	return Stage{Name: StageRoot, Steps: []Step{{
		EntityID: uid,
		delete:   func(ctx context.Context) error { return r.users.DeleteUser(ctx, uid) },
	}}}
}

func (r *Resolver) classroomRootStage(cid string) Stage {
	return Stage{Name: StageRoot, Steps: []Step{{
		EntityID: cid,
		delete:   func(ctx context.Context) error { return r.school.DeleteClassroom(ctx, cid) },
	}}}
}

// ownedURLs filters a set of attachments down to the URLs the app owns:
// empty URLs and provider-hosted images (third-party avatars) are skipped
// so they are never scheduled for blob cleanup.
func (r *Resolver) ownedURLs(atts []school.Attachment) []string {
	var urls []string
	for _, att := range atts {
		if att.URL == "" {
			continue
		}
		if r.isProviderHosted(att.URL) {
			continue
		}
		urls = append(urls, att.URL)
	}
	return urls
}

func (r *Resolver) isProviderHosted(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, ph := range r.providerImageHosts {
		if host == strings.ToLower(ph) {
			return true
		}
	}
	return false
}
