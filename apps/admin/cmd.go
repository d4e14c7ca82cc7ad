package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/teardown"
	"github.com/trezcool/darasa/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db          *sql.DB
	conf        *core.Config
	usrRepo     user.Repository
	teardownSvc *teardown.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate SUBCOMMAND [args]                 - run database migrations (up, down, status, ...)")
	fmt.Println("  createadmin -username USERNAME -email EMAIL - create or promote an admin user. The password will be prompted next.")
	fmt.Println("  resetpassword -username USERNAME|EMAIL    - reset user's password")
	fmt.Println("  teardown -kind user|classroom -id UUID    - cascade-delete a root entity with everything it owns")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	createAdminCmd := flag.NewFlagSet("createadmin", flag.ExitOnError)
	createAdminUname := createAdminCmd.String("username", "", "The admin's username.")
	createAdminEmail := createAdminCmd.String("email", "", "The admin's email.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The user's username or email. The password will be prompted next.")

	teardownCmd := flag.NewFlagSet("teardown", flag.ExitOnError)
	teardownKind := teardownCmd.String("kind", "", "The root kind: user or classroom.")
	teardownID := teardownCmd.String("id", "", "The root entity's ID.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "createadmin":
		if err := createAdminCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *createAdminUname == "" || *createAdminEmail == "" {
			createAdminCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword(createAdminCmd)
		if err != nil || pwd == "" {
			return err
		}
		return cli.createAdmin(*createAdminUname, *createAdminEmail, pwd)
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword(resetPasswordCmd)
		if err != nil || pwd == "" {
			return err
		}
		return cli.resetPassword(*resetPasswordUname, pwd)
	case "teardown":
		if err := teardownCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *teardownKind == "" || *teardownID == "" {
			teardownCmd.Usage()
			return errHelp
		}
		return cli.teardown(*teardownKind, *teardownID)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword(cmd *flag.FlagSet) (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		cmd.Usage()
		return "", errHelp
	}
	return string(pwd), nil
}
