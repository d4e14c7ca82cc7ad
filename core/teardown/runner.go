package teardown

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/school"
	"github.com/trezcool/darasa/core/user"
)

// runStep executes one deletion step: blobs first, row second, so a crash
// between the two leaves at worst an already-unreferenced blob instead of a
// row pointing at a missing one. "Entity already gone" is success, which is
// what makes a retried teardown able to re-run every completed stage.
// Returned warnings are non-fatal blob failures.
func (svc *Service) runStep(ctx context.Context, st Step) (warnings []string, alreadyGone bool, err error) {
	warnings = svc.deleteStepBlobs(ctx, st)

	if st.delete == nil { // blob-only step
		return warnings, false, nil
	}

	if err = st.delete(ctx); err != nil {
		switch errors.Cause(err) {
		case user.ErrNotFound, school.ErrNotFound:
			return warnings, true, nil
		}
		return warnings, false, err
	}
	return warnings, false, nil
}

// deleteStepBlobs issues the step's blob deletions concurrently; they are
// independent of each other but must all settle before the row delete.
// A failed blob delete is a warning, never a blocker: an orphaned blob is
// preferable to an undeletable account.
func (svc *Service) deleteStepBlobs(ctx context.Context, st Step) []string {
	if len(st.Attachments) == 0 {
		return nil
	}

	var (
		mu       sync.Mutex
		warnings []string
		wg       sync.WaitGroup
	)
	for _, rawURL := range st.Attachments {
		rawURL := rawURL
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := svc.blobs.DeleteBlob(ctx, rawURL); err != nil && errors.Cause(err) != core.ErrBlobNotFound {
				mu.Lock()
				warnings = append(warnings, fmt.Sprintf("deleting blob %q: %v", rawURL, err))
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return warnings
}
