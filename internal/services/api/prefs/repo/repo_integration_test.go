//go:build integration_pg

package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"toxlens/internal/modkit/repokit"
	"toxlens/internal/platform/store"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	t.Cleanup(cancel)

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "postgres",
				"POSTGRES_DB":       "prefs",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections"),
			).WithDeadline(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	return fmt.Sprintf("postgres://postgres:postgres@%s:%s/prefs?sslmode=disable", host, port.Port())
}

func TestRepo_PostgresRoundTrip_Integration(t *testing.T) {
	dsn := startPostgres(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	s, err := store.Open(ctx, store.Config{AppName: "toxlens-prefs-it", PG: store.PGConfig{Enabled: true, URL: dsn, MaxConns: 2}})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer s.Close(ctx)

	b := ForDialect(s.Dialect())
	if b.Dialect() != store.DialectPostgres {
		t.Fatalf("dialect = %q", b.Dialect())
	}
	db := repokit.WithBeginHooks(s.SQL(), b.Schema())

	for _, v := range []string{"80", "12"} {
		if err := repokit.WithTx(ctx, db, func(q repokit.Queryer) error { return b.Bind(q).Put(ctx, "threshold", v) }); err != nil {
			t.Fatalf("put %s: %v", v, err)
		}
	}
	err = repokit.WithTx(ctx, db, func(q repokit.Queryer) error {
		got, ok, err := b.Bind(q).Get(ctx, "threshold")
		if err != nil {
			return err
		}
		if !ok || got != "12" {
			t.Fatalf("Get = (%q,%v)", got, ok)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
}
