package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/kita-portal/kita-api/internal/models"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type accountCreator interface {
	CreateAccount(ctx context.Context, req models.SignUpRequest, role models.UserRole) (*models.User, error)
}

type roleSetter interface {
	SetRoleByEmail(ctx context.Context, actor models.Actor, email string, role models.UserRole) (*models.User, error)
}

type commandLine struct {
	out      io.Writer
	migrate  func() error
	accounts accountCreator
	roles    roleSetter
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate                                   - apply pending database migrations")
	fmt.Fprintln(cli.out, "  adduser -email EMAIL -name NAME [-role R]  - create an account, the password is prompted next")
	fmt.Fprintln(cli.out, "  setrole -email EMAIL -role ROLE            - change the role of an account")
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserCmd.SetOutput(cli.out)
	addUserEmail := addUserCmd.String("email", "", "Login email of the new account.")
	addUserName := addUserCmd.String("name", "", "Display name of the new account.")
	addUserRole := addUserCmd.String("role", string(models.RoleAdmin), "Role: admin, parent or employee.")

	setRoleCmd := flag.NewFlagSet("setrole", flag.ContinueOnError)
	setRoleCmd.SetOutput(cli.out)
	setRoleEmail := setRoleCmd.String("email", "", "Login email of the account.")
	setRoleRole := setRoleCmd.String("role", "", "Role: admin, parent or employee.")

	switch args[1] {
	case "migrate":
		if err := cli.migrate(); err != nil {
			return err
		}
		fmt.Fprintln(cli.out, "migrations applied")
		return nil

	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserEmail == "" || *addUserName == "" {
			addUserCmd.Usage()
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			addUserCmd.Usage()
			return errHelp
		}
		user, err := cli.accounts.CreateAccount(ctx, models.SignUpRequest{
			Name:     *addUserName,
			Email:    *addUserEmail,
			Password: string(pwd),
		}, models.UserRole(*addUserRole))
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "created %s (%s) as %s\n", user.Email, user.ID, user.Role)
		return nil

	case "setrole":
		if err := setRoleCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *setRoleEmail == "" || *setRoleRole == "" {
			setRoleCmd.Usage()
			return errHelp
		}
		user, err := cli.roles.SetRoleByEmail(ctx, models.Actor{UserAgent: "kita-admin"}, *setRoleEmail, models.UserRole(*setRoleRole))
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "%s is now %s\n", user.Email, user.Role)
		return nil

	default:
		cli.printUsage()
		return errHelp
	}
}
