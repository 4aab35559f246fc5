package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supinter/ums/core/catalog"
	"github.com/supinter/ums/core/user"
	inmemdb "github.com/supinter/ums/storage/database/inmem"
	"github.com/supinter/ums/tests"
)

var (
	db      *inmemdb.DB
	usrRepo user.Repository
)

func setup(t *testing.T) *commandLine {
	db = inmemdb.Open()
	usrRepo = inmemdb.NewUserRepository(db)
	return &commandLine{usrRepo: usrRepo, out: io.Discard}
}

type cliTest struct {
	name       string
	args       []string // without program name
	pwd        string
	wantErr    error
	wantErrStr string
}

func (tt cliTest) run(t *testing.T, cli *commandLine) error {
	readPasswordFunc = func(fd int) ([]byte, error) {
		return []byte(tt.pwd), nil
	}
	return cli.run(append([]string{"admin"}, tt.args...))
}

func (tt cliTest) check(t *testing.T, err error) bool {
	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, err)
	case tt.wantErrStr != "":
		if assert.Error(t, err) {
			assert.Equal(t, tt.wantErrStr, err.Error())
		}
	default:
		assert.NoError(t, err)
	}
	return err == nil
}

func Test_commandLine_usage(t *testing.T) {
	var out bytes.Buffer
	cli := setup(t)
	cli.out = &out

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "unknown flag", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, tt.run(t, cli))
		})
	}
	assert.Contains(t, out.String(), "resetpassword -email EMAIL")
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)
	campus, err := catalog.NewService(inmemdb.NewCatalogRepository(db)).CreateCampus(
		context.Background(), catalog.CampusInput{Name: "Abidjan Plateau"},
	)
	require.NoError(t, err)

	tests := []cliTest{
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "no name", args: []string{"adduser", "-email", "a@b.ci"}, pwd: "pwd", wantErr: errHelp},
		{name: "no password", args: []string{"adduser", "-email", "a@b.ci", "-name", "A"}, wantErr: errHelp},
		{
			name: "unknown role", args: []string{"adduser", "-email", "a@b.ci", "-name", "A", "-role", "dean"}, pwd: "pwd",
			wantErrStr: `unknown role "dean"`,
		},
		{
			name: "staff without campus", args: []string{"adduser", "-email", "a@b.ci", "-name", "A", "-role", "director"}, pwd: "pwd",
			wantErrStr: `role "director" needs a campus`,
		},
		{
			name: "unknown campus", pwd: "pwd",
			args:    []string{"adduser", "-email", "a@b.ci", "-name", "A", "-role", "director", "-campus", "nope"},
			wantErr: user.ErrCampusNotFound,
		},
		{name: "founder", args: []string{"adduser", "-email", " Founder@SupInter.ci ", "-name", "Fondateur"}, pwd: "Gr@ndeEcole2024"},
		{
			name: "director", pwd: "Dir3cteur!",
			args: []string{"adduser", "-email", "dir@supinter.ci", "-name", "Directeur", "-role", "director", "-campus", campus.ID},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, tt.run(t, cli))
		})
	}

	founder, err := usrRepo.GetUser(context.Background(), user.GetFilter{Email: "founder@supinter.ci"})
	require.NoError(t, err)
	assert.Equal(t, user.RoleFounder, founder.Role)
	assert.False(t, founder.CampusID.Valid)
	assert.True(t, founder.IsActive)
	assert.NoError(t, founder.CheckPassword("Gr@ndeEcole2024"))

	dir, err := usrRepo.GetUser(context.Background(), user.GetFilter{Email: "dir@supinter.ci"})
	require.NoError(t, err)
	assert.Equal(t, campus.ID, dir.CampusID.String)

	t.Run("existing user is updated", func(t *testing.T) {
		tt := cliTest{args: []string{"adduser", "-email", "dir@supinter.ci", "-name", "Fondatrice"}, pwd: "N0uveau!"}
		tt.check(t, tt.run(t, cli))

		usr, err := usrRepo.GetUser(context.Background(), user.GetFilter{Email: "dir@supinter.ci"})
		require.NoError(t, err)
		assert.Equal(t, dir.ID, usr.ID)
		assert.Equal(t, "Fondatrice", usr.Name)
		assert.Equal(t, user.RoleFounder, usr.Role)
		assert.False(t, usr.CampusID.Valid)
		assert.NoError(t, usr.CheckPassword("N0uveau!"))
	})
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)
	usr := testutil.CreateUser(t, usrRepo, "Awa Koné", "awa@supinter.ci", "old", user.RoleFounder, "", true)

	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", usr.Email}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-email", "lol@supinter.ci"}, pwd: "lol", wantErr: user.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-email", usr.Email}, pwd: "lol"},
		{name: "reset with a mixed-case email", args: []string{"resetpassword", "-email", "AWA@supinter.ci"}, pwd: "lmao"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.check(t, tt.run(t, cli)) {
				refreshed, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
				require.NoError(t, err)
				assert.NoError(t, refreshed.CheckPassword(tt.pwd))
			}
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	t.Run("in-memory engine", func(t *testing.T) {
		tt := cliTest{args: []string{"migrate", "up"}, wantErr: errNoDatabase}
		tt.check(t, tt.run(t, cli))
	})

	cli.db = &sqlx.DB{}
	var ran []string
	gooseRunFunc = func(_ *sqlx.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		ran = append(ran, command)
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "add_room", "sql"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, tt.run(t, cli))
		})
	}
	assert.Equal(t, []string{"up", "up-to", "down-to", "status", "create"}, ran)
}
