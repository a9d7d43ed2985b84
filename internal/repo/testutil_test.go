package repo_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fundscope/fundscope/internal/config"
	"github.com/fundscope/fundscope/internal/db"
	"github.com/fundscope/fundscope/internal/model"
	"github.com/fundscope/fundscope/internal/repo"
)

func openTestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()
	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST not set, skipping postgres test")
	}
	conn, err := db.Open(config.DatabaseConfig{
		Host:     host,
		Port:     5432,
		User:     "fundscope",
		Password: "fundscope_pass",
		DBName:   "fundscope_test",
		SSLMode:  "disable",
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(conn); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	return conn, func() {
		_ = conn.Close()
	}
}

func createTestFund(t *testing.T, conn *sql.DB) *model.Fund {
	t.Helper()
	funds := repo.NewFundRepo(conn)
	fund := &model.Fund{
		Name:        fmt.Sprintf("Test Fund %d", time.Now().UnixNano()),
		GPName:      "Test GP",
		FundType:    "Buyout",
		VintageYear: 2022,
	}
	require.NoError(t, funds.Create(context.Background(), fund))
	t.Cleanup(func() {
		_ = funds.Delete(context.Background(), fund.ID)
	})
	return fund
}
