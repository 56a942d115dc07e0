package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	"github.com/aussiebroadwan/leadflow/internal/intake/app"
	"github.com/aussiebroadwan/leadflow/internal/intake/domain"
	"github.com/aussiebroadwan/leadflow/internal/intake/service"
	"github.com/aussiebroadwan/leadflow/internal/intake/store"
	"github.com/aussiebroadwan/leadflow/pkg/cryptox"
	"github.com/aussiebroadwan/leadflow/pkg/jwtx"
	"github.com/aussiebroadwan/leadflow/pkg/slogx"
)

// readPassword is swapped out in tests.
var readPassword = term.ReadPassword

// isTerminal reports whether stdin is an interactive terminal.
var isTerminal = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }

func newFlagSet(name string, e *env) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	return fs
}

// setup loads the configuration and opens the store. The caller closes it.
func setup(ctx context.Context, e *env) (app.Config, *slog.Logger, store.Store, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return app.Config{}, nil, nil, err
	}

	logger := slogx.New(slogx.Config{
		Service: "intakectl",
		Version: app.BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  "text",
		Output:  e.stderr,
	})
	cryptox.SetPepperPath(cfg.PepperFile)

	st, err := app.OpenStore(ctx, cfg)
	if err != nil {
		return app.Config{}, nil, nil, fmt.Errorf("open store: %w", err)
	}
	return cfg, logger, st, nil
}

func createAdmin(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("create-admin", e)
	email := fs.String("email", "", "account email (required)")
	username := fs.String("username", "", "account username (required)")
	name := fs.String("name", "", "display name")
	role := fs.String("role", string(domain.RoleAdmin), "account role: admin or client")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *email == "" || *username == "" {
		fs.Usage()
		return errUsage
	}

	password, err := promptPassword(e)
	if err != nil {
		return err
	}

	_, logger, st, err := setup(ctx, e)
	if err != nil {
		return err
	}
	defer st.Close()

	users := &service.UserService{Store: st}
	u, err := users.CreateUser(slogx.WithContext(ctx, logger), domain.System(), service.NewUser{
		Email:    strings.TrimSpace(*email),
		Username: strings.TrimSpace(*username),
		Password: password,
		Role:     domain.Role(*role),
		Name:     *name,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(e.stdout, "created %s %s (%s)\n", u.Role, u.Username, u.ID)
	return nil
}

// promptPassword reads the password twice from a terminal, or once from a
// pipe.
func promptPassword(e *env) (string, error) {
	if !isTerminal() {
		line, err := bufio.NewReader(e.stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	read := func(prompt string) (string, error) {
		fmt.Fprint(e.stderr, prompt)
		pw, err := readPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(e.stderr)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(pw), nil
	}

	first, err := read("Password: ")
	if err != nil {
		return "", err
	}
	second, err := read("Confirm password: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", errors.New("passwords do not match")
	}
	return first, nil
}

func mintToken(_ context.Context, e *env, args []string) error {
	fs := newFlagSet("mint-token", e)
	sub := fs.String("sub", "", "subject user id (required)")
	role := fs.String("role", string(domain.RoleClient), "role claim: admin or client")
	ttl := fs.Duration("ttl", time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *sub == "" {
		fs.Usage()
		return errUsage
	}
	if !domain.Role(*role).Valid() {
		return fmt.Errorf("invalid role %q", *role)
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}
	if cfg.AuthHS256Secret == "" {
		return errors.New("AUTH_HS256_SECRET is not set; tokens for JWKS deployments come from the auth service")
	}

	signer, err := jwtx.NewSignerHS256([]byte(cfg.AuthHS256Secret))
	if err != nil {
		return err
	}
	raw, err := signer.Sign(jwtx.NewClaims(*sub, *role, cfg.AuthIssuer, cfg.AuthAudience, *ttl, time.Now()))
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}

	fmt.Fprintln(e.stdout, raw)
	return nil
}

func reindex(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("reindex", e)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	cfg, logger, st, err := setup(ctx, e)
	if err != nil {
		return err
	}
	defer st.Close()

	if cfg.MeiliURL == "" {
		return errors.New("MEILI_URL is not set")
	}
	index := app.OpenSearch(cfg, logger)
	defer index.Close()

	users, challenges, err := service.Reindex(ctx, st, index)
	fmt.Fprintf(e.stdout, "indexed %d users and %d challenges\n", users, challenges)
	return err
}

func orphans(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("orphans", e)
	grace := fs.Duration("grace", 0, "minimum age (default ORPHAN_GRACE_PERIOD)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	cfg, logger, st, err := setup(ctx, e)
	if err != nil {
		return err
	}
	defer st.Close()

	if *grace <= 0 {
		*grace = cfg.OrphanGracePeriod
	}
	docs, err := service.NewOrphanAuditService(st, logger, 0, *grace).Report(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tSIZE\tFILENAME")
	for _, d := range docs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", d.ID, d.CreatedAt.UTC().Format(time.RFC3339), d.File.Size, d.File.Filename)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "%d orphaned documents\n", len(docs))
	return nil
}
