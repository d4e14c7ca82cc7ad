package teardown

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/school"
	"github.com/trezcool/darasa/core/user"
)

// Service is the teardown orchestrator: it authorizes the caller, resolves
// the ownership graph into ordered stages and drives them through the
// idempotent step runner, root row strictly last. The relational store and
// the object store are two independently-consistent resources with no
// cross-store transaction; sequencing plus idempotent retries stand in for
// rollback.
type Service struct {
	userRepo   user.Repository
	schoolRepo school.Repository
	resolver   *Resolver
	blobs      core.BlobCleaner
	locker     Locker
	mailSvc    core.EmailService
	logger     core.Logger
	conf       *core.Config
}

func NewService(
	userRepo user.Repository,
	schoolRepo school.Repository,
	blobs core.BlobCleaner,
	locker Locker,
	mailSvc core.EmailService,
	logger core.Logger,
	conf *core.Config,
) *Service {
	return &Service{
		userRepo:   userRepo,
		schoolRepo: schoolRepo,
		resolver:   NewResolver(userRepo, schoolRepo, conf.Storage.ProviderImageHosts),
		blobs:      blobs,
		locker:     locker,
		mailSvc:    mailSvc,
		logger:     logger,
		conf:       conf,
	}
}

// Teardown deletes the root entity and everything that depends on it.
// Stages completed before a failure stay committed; the caller retries the
// same call and the already-gone rows are skipped. Concurrent teardown of
// the same root is rejected with ErrTeardownInProgress.
func (svc *Service) Teardown(ctx context.Context, caller user.User, kind RootKind, rootID string) (Result, error) {
	res := Result{RootKind: kind, RootID: rootID, Status: StatusPending}

	res.Status = StatusAuthorizing
	if err := svc.authorize(ctx, caller, kind, rootID); err != nil {
		res.Status = StatusFailed
		return res, err
	}

	release, err := svc.locker.Acquire(ctx, string(kind)+":"+rootID)
	if err != nil {
		res.Status = StatusFailed
		return res, err
	}
	defer release()

	// capture the address for the closure notice before the row goes away
	var closedAddr mail.Address
	if kind == RootUser {
		if usr, err := svc.userRepo.GetUser(ctx, user.GetFilter{ID: rootID}); err == nil {
			closedAddr = mail.Address{Name: usr.Name, Address: usr.Email}
		}
	}

	res.Status = StatusResolving
	stages, err := svc.resolver.Resolve(ctx, kind, rootID)
	if err != nil {
		res.Status = StatusFailed
		return res, err
	}

	res.Status = StatusExecuting
	for _, stage := range stages {
		if stage.Name == StageRoot {
			res.Status = StatusCompletingRoot
		}
		for _, st := range stage.Steps {
			if err = ctx.Err(); err != nil {
				res.Status = StatusFailed
				res.FailedStage = stage.Name
				return res, errors.Wrapf(err, "teardown interrupted at stage %q", stage.Name)
			}

			warnings, _, err := svc.runStep(ctx, st)
			res.Warnings = append(res.Warnings, warnings...)
			if err != nil {
				res.Status = StatusFailed
				res.FailedStage = stage.Name
				svc.logger.Error(
					fmt.Sprintf("teardown of %s %q failed at stage %q: %v", kind, rootID, stage.Name, err),
					errors.Wrap(err, "running teardown step"), caller,
				)
				return res, errors.Wrapf(err, "stage %q", stage.Name)
			}
		}
		res.CompletedStages = append(res.CompletedStages, stage.Name)
	}

	res.Status = StatusCompleted
	for _, warning := range res.Warnings {
		svc.logger.Warn(warning)
	}
	svc.logger.Info(fmt.Sprintf("teardown of %s %q completed (%d stages, %d warnings)",
		kind, rootID, len(res.CompletedStages), len(res.Warnings)), caller)

	if kind == RootUser && closedAddr.Address != "" {
		svc.mailSvc.SendMessages(&core.EmailMessage{
			To:           []mail.Address{closedAddr},
			Subject:      "Your account has been deleted",
			TemplateName: "account_closed",
			TemplateData: struct{ Name string }{closedAddr.Name},
		})
	}
	return res, nil
}
