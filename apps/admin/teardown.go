package main

import (
	"context"
	"fmt"

	"github.com/trezcool/darasa/core/teardown"
	"github.com/trezcool/darasa/core/user"
)

// teardown cascade-deletes the root entity with everything it owns,
// including stored files. The CLI acts with admin rights.
func (cli *commandLine) teardown(kind, id string) error {
	rk := teardown.RootKind(kind)
	if rk != teardown.RootUser && rk != teardown.RootClassroom {
		return fmt.Errorf("%q: no such root kind (want user or classroom)", kind)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cli.conf.Server.TeardownTimeout)
	defer cancel()

	caller := user.User{Name: "admin-cli", Roles: []string{user.RoleAdminOwner}}
	res, err := cli.teardownSvc.Teardown(ctx, caller, rk, id)
	if err != nil {
		if res.FailedStage != "" {
			fmt.Printf("teardown of %s %q failed at stage %q; retry to resume\n", kind, id, res.FailedStage)
		}
		return err
	}

	fmt.Printf("teardown of %s %q: %s (%d stages, %d warnings)\n",
		kind, id, res.Status, len(res.CompletedStages), len(res.Warnings))
	for _, w := range res.Warnings {
		fmt.Println("warning:", w)
	}
	return nil
}
