package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/meetpipe/meeting-gateway/internal/config"
	"github.com/meetpipe/meeting-gateway/internal/db"
	"github.com/meetpipe/meeting-gateway/internal/model"
	"github.com/meetpipe/meeting-gateway/internal/util"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with demo API clients and meetings",
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1) load config
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		// 2) connect MySQL
		sqlDB, err := db.NewMySQLConnection(cfg.MySQL.DSN, db.MySQLOpts{
			MaxOpenConns:    cfg.MySQL.MaxOpenConns,
			MaxIdleConns:    cfg.MySQL.MaxIdleConns,
			ConnMaxLifetime: cfg.MySQL.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.MySQL.ConnMaxIdleTime,
			PingTimeout:     cfg.MySQL.PingTimeout,
		})
		if err != nil {
			return fmt.Errorf("mysql connect: %w", err)
		}
		defer sqlDB.Close()

		log.Println(">> Seeding demo API clients...")

		if err := seedClients(sqlDB); err != nil {
			return err
		}
		if err := seedMeetings(sqlDB); err != nil {
			return err
		}

		log.Println(">> Seed completed ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

// seedClients inserts deterministic demo API clients (idempotent).
func seedClients(dbx *sqlx.DB) error {
	clients := []model.APIClient{
		{
			Name:         "Discord Collector Bot",
			APIKey:       "11111111111111111111111111111111",
			Status:       "active",
			RateLimitRPS: intptr(50),
		},
		{
			Name:         "Zoom Collector",
			APIKey:       "22222222222222222222222222222222",
			Status:       "active",
			RateLimitRPS: intptr(50),
		},
		{
			Name:         "Dashboard",
			APIKey:       "33333333333333333333333333333333",
			Status:       "active",
			RateLimitRPS: intptr(20),
		},
		{
			Name:         "Suspended Client",
			APIKey:       "44444444444444444444444444444444",
			Status:       "suspended",
			RateLimitRPS: nil,
		},
	}

	// idempotent upsert based on api_key (UNIQUE)
	const q = `
INSERT INTO api_clients
    (name, api_key, status, rate_limit_rps, created_at, updated_at)
VALUES
    (?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
    name        = VALUES(name),
    status      = VALUES(status),
    rate_limit_rps = VALUES(rate_limit_rps),
    updated_at  = VALUES(updated_at)
`
	tx, err := dbx.Beginx()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now()
	for _, c := range clients {
		if _, err := tx.Exec(q, c.Name, c.APIKey, c.Status, c.RateLimitRPS, now, now); err != nil {
			return fmt.Errorf("insert client %q: %w", c.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit clients: %w", err)
	}
	return nil
}

// seedMeetings creates a couple of demo meetings when the table is empty.
func seedMeetings(dbx *sqlx.DB) error {
	var count int
	if err := dbx.Get(&count, "SELECT COUNT(*) FROM meetings"); err != nil {
		return fmt.Errorf("count meetings: %w", err)
	}
	if count > 0 {
		return nil
	}

	const q = `
INSERT INTO meetings (id, title, platform, channel_id, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`
	now := time.Now()
	demos := []model.Meeting{
		{ID: util.New(), Title: "Weekly Sync", Platform: model.PlatformDiscord, ChannelID: "demo-channel-1", Status: model.MeetingCreated},
		{ID: util.New(), Title: "Sprint Review", Platform: model.PlatformZoom, ChannelID: "demo-channel-2", Status: model.MeetingCreated},
	}
	for _, m := range demos {
		if _, err := dbx.Exec(q, m.ID, m.Title, m.Platform, m.ChannelID, m.Status, now, now); err != nil {
			return fmt.Errorf("insert meeting %q: %w", m.Title, err)
		}
	}
	return nil
}

func intptr(i int) *int { return &i }
