package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yungbote/clientbase-backend/internal/app"
	"github.com/yungbote/clientbase-backend/internal/seed"
)

func main() {
	var (
		ownerName     = flag.String("owner-name", "Demo Owner", "name of the workspace owner")
		ownerEmail    = flag.String("owner-email", "demo@clientbase.local", "owner email; signed in when it already exists")
		ownerPassword = flag.String("owner-password", "clientbase-demo", "owner password")
		wsName        = flag.String("workspace-name", "Demo Workspace", "workspace name")
		wsSlug        = flag.String("workspace-slug", "demo", "workspace slug; reused when the owner already has it")
		fixturesPath  = flag.String("fixtures", "", "YAML fixtures file (defaults to the embedded sample data)")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *fixturesPath, seed.Owner{Name: *ownerName, Email: *ownerEmail, Password: *ownerPassword}, seed.Workspace{Name: *wsName, Slug: *wsSlug}); err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, fixturesPath string, owner seed.Owner, ws seed.Workspace) error {
	fixtures, err := loadFixtures(fixturesPath)
	if err != nil {
		return err
	}

	a, err := app.New(ctx)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	seeder := seed.NewSeeder(a.Log,
		a.Services.Auth,
		a.Services.Workspace,
		a.Services.Client,
		a.Services.Contact,
		a.Repos.AuditLog,
	)
	sum, err := seeder.Run(ctx, owner, ws, fixtures)
	if err != nil {
		return err
	}

	a.Log.Info("Seed completed",
		"organization_id", sum.OrganizationID.String(),
		"clients", sum.Clients,
		"contacts", sum.Contacts,
	)
	for _, entry := range sum.RecentAudit {
		a.Log.Info("Audit", "action", entry.Action, "resource", entry.Resource, "status", entry.Status, "message", entry.Message)
	}
	return nil
}

func loadFixtures(path string) (*seed.Fixtures, error) {
	if path == "" {
		return seed.DefaultFixtures()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	return seed.ParseFixtures(raw)
}
