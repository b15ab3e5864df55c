package main

import (
	"context"
	"fmt"
	"syscall"

	"github.com/dmchugh/medlib/internal/models"
	"github.com/dmchugh/medlib/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// Login exchanges credentials for a bearer token and resolves the user profile.
func (r *Runner) Login(ctx context.Context, cmd *cli.Command) error {
	username := cmd.StringArg("username")
	if username == "" {
		return fmt.Errorf("%w: username is required", shared.ErrMissingArgument)
	}

	password := cmd.String("password")
	if password == "" {
		r.writePlain("Password: ")
		raw, err := term.ReadPassword(int(syscall.Stdin))
		r.writePlain("\n")
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = string(raw)
	}

	snapshot, err := r.session.Login(ctx, username, password)
	if err != nil {
		return err
	}

	r.writePlain("✓ Logged in as %s\n", snapshot.User.Username)
	if snapshot.User.IsSuperuser {
		r.writePlain("Role: admin\n")
	}
	return nil
}

// Logout clears the session token from memory and durable storage.
func (r *Runner) Logout(ctx context.Context, cmd *cli.Command) error {
	r.session.Logout()
	return r.writePlain("✓ Logged out\n")
}

// Register creates a new account. The account is not logged in afterwards.
func (r *Runner) Register(ctx context.Context, cmd *cli.Command) error {
	data := models.RegisterData{
		Username: cmd.StringArg("username"),
		Email:    cmd.String("email"),
		Password: cmd.String("password"),
		FullName: cmd.String("full-name"),
	}

	if data.Username == "" || data.Email == "" || data.Password == "" {
		return fmt.Errorf("%w: username, --email and --password are required", shared.ErrMissingArgument)
	}

	user, err := r.session.Register(ctx, data)
	if err != nil {
		return err
	}

	r.writePlain("✓ Account created: %s\n", user.Username)
	r.writePlain("Run 'medlib auth login %s' to sign in\n", user.Username)
	return nil
}

// Whoami prints the profile behind the current session.
func (r *Runner) Whoami(ctx context.Context, cmd *cli.Command) error {
	r.restoreSession(ctx)

	snapshot := r.session.Snapshot()
	if !snapshot.IsAuthenticated() {
		return r.writePlain("Not logged in\n")
	}

	if cmd.Bool("json") {
		return r.writeJSON(snapshot.User, true)
	}

	user := snapshot.User
	r.writePlainHeader(user.Username)
	if user.FullName != "" {
		r.writePlain("Name:  %s\n", user.FullName)
	}
	r.writePlain("Email: %s\n", user.Email)
	if user.IsSuperuser {
		r.writePlain("Role:  admin\n")
	}
	if user.LastLogin != nil {
		r.writePlain("Last login: %s\n", user.LastLogin.Format("2006-01-02 15:04"))
	}
	return nil
}

// UpdateProfile applies a partial profile update from the provided flags.
func (r *Runner) UpdateProfile(ctx context.Context, cmd *cli.Command) error {
	r.restoreSession(ctx)

	patch := models.UserPatch{}
	if cmd.IsSet("email") {
		v := cmd.String("email")
		patch.Email = &v
	}
	if cmd.IsSet("full-name") {
		v := cmd.String("full-name")
		patch.FullName = &v
	}
	if cmd.IsSet("avatar-url") {
		v := cmd.String("avatar-url")
		patch.AvatarURL = &v
	}

	user, err := r.session.UpdateProfile(ctx, patch)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("%w: log in first", shared.ErrNotAuthenticated)
	}

	r.writePlain("✓ Profile updated\n")
	return r.writeJSON(user, true)
}

// Preferences shows the current user's display preferences.
func (r *Runner) Preferences(ctx context.Context, cmd *cli.Command) error {
	r.restoreSession(ctx)

	prefs, err := r.session.Preferences(ctx)
	if err != nil {
		return err
	}
	if prefs == nil {
		return fmt.Errorf("%w: log in first", shared.ErrNotAuthenticated)
	}

	return r.writeJSON(prefs, true)
}

// UpdatePreferences applies a partial preferences update from the provided flags.
func (r *Runner) UpdatePreferences(ctx context.Context, cmd *cli.Command) error {
	r.restoreSession(ctx)

	patch := models.PreferencesPatch{}
	if cmd.IsSet("theme") {
		v := cmd.String("theme")
		patch.Theme = &v
	}
	if cmd.IsSet("layout") {
		v := cmd.String("layout")
		patch.Layout = &v
	}
	if cmd.IsSet("items-per-page") {
		v := int(cmd.Int("items-per-page"))
		patch.ItemsPerPage = &v
	}
	if cmd.IsSet("auto-scan") {
		v := cmd.Bool("auto-scan")
		patch.AutoScan = &v
	}
	if cmd.IsSet("thumbnails") {
		v := cmd.Bool("thumbnails")
		patch.ShowThumbnails = &v
	}

	prefs, err := r.session.UpdatePreferences(ctx, patch)
	if err != nil {
		return err
	}
	if prefs == nil {
		return fmt.Errorf("%w: log in first", shared.ErrNotAuthenticated)
	}

	r.writePlain("✓ Preferences updated\n")
	return r.writeJSON(prefs, true)
}

// Palettes lists the color palettes offered by the server.
func (r *Runner) Palettes(ctx context.Context, cmd *cli.Command) error {
	r.restoreSession(ctx)

	palettes, err := r.session.ColorPalettes(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(palettes, true)
	}

	for _, p := range palettes {
		r.writePlain("%s  primary=%s accent=%s\n", p.Name, p.Primary, p.Accent)
	}
	return nil
}

// authCommand handles session and account operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the session and account",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Log in with username and password",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "username"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "password",
						Aliases: []string{"p"},
						Usage:   "Password (prompted when omitted)",
					},
				},
				Action: r.Login,
			},
			{
				Name:   "logout",
				Usage:  "Clear the stored session token",
				Action: r.Logout,
			},
			{
				Name:  "register",
				Usage: "Create a new account",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "username"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Usage: "Account email", Required: true},
					&cli.StringFlag{Name: "password", Usage: "Account password", Required: true},
					&cli.StringFlag{Name: "full-name", Usage: "Display name"},
				},
				Action: r.Register,
			},
			{
				Name:  "whoami",
				Usage: "Show the current session's user",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.Whoami,
			},
			{
				Name:  "profile",
				Usage: "Update the current user's profile",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Usage: "New email"},
					&cli.StringFlag{Name: "full-name", Usage: "New display name"},
					&cli.StringFlag{Name: "avatar-url", Usage: "New avatar URL"},
				},
				Action: r.UpdateProfile,
			},
			{
				Name:  "prefs",
				Usage: "Show or update display preferences",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "theme", Usage: "UI theme (light or dark)"},
					&cli.StringFlag{Name: "layout", Usage: "Listing layout (grid or list)"},
					&cli.IntFlag{Name: "items-per-page", Usage: "Listing page size"},
					&cli.BoolFlag{Name: "auto-scan", Usage: "Scan library automatically"},
					&cli.BoolFlag{Name: "thumbnails", Usage: "Show thumbnails"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					for _, name := range []string{"theme", "layout", "items-per-page", "auto-scan", "thumbnails"} {
						if cmd.IsSet(name) {
							return r.UpdatePreferences(ctx, cmd)
						}
					}
					return r.Preferences(ctx, cmd)
				},
			},
			{
				Name:  "palettes",
				Usage: "List server color palettes",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.Palettes,
			},
		},
	}
}
