package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/unclebandit/framestorm-backend/internal/config"
	"github.com/unclebandit/framestorm-backend/internal/db"
	"github.com/unclebandit/framestorm-backend/internal/logger"
	"github.com/unclebandit/framestorm-backend/internal/model"
	"github.com/unclebandit/framestorm-backend/internal/repository"
	"github.com/unclebandit/framestorm-backend/internal/service"
	"github.com/unclebandit/framestorm-backend/internal/session"
)

type commandContext struct {
	cfg *config.Config
}

func (c *commandContext) ensureConfig(ctx context.Context) (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	_ = godotenv.Load()
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Log); err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

func (c *commandContext) open(ctx context.Context) (*sqlx.DB, error) {
	cfg, err := c.ensureConfig(ctx)
	if err != nil {
		return nil, err
	}
	return db.Open(ctx, cfg.Database)
}

func newRootCommand() *cobra.Command {
	cc := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "seeder",
		Short:         "Database maintenance for the Framestorm backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newMigrateCommand(cc))
	rootCmd.AddCommand(newSeedCommand(cc))
	rootCmd.AddCommand(newCampaignsCommand(cc))
	rootCmd.AddCommand(newTokenCommand(cc))
	return rootCmd
}

func newMigrateCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := cc.open(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()

			applied, err := db.Migrate(cmd.Context(), conn)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
				return nil
			}
			for _, name := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "Applied: %s\n", name)
			}
			return nil
		},
	}
}

// demoCampaigns are created oldest first, so the video campaign ends up newest.
var demoCampaigns = []service.CreateCampaignInput{
	{Title: "Spring Launch", Description: "Announcement post for the spring collection", Type: "blog", TargetAudience: "Existing customers"},
	{Title: "Behind the Scenes", Description: "Studio day photo set", Type: "instagram", TargetAudience: "Followers aged 18-34"},
	{Title: "Product Teaser", Description: "30 second teaser for the new release", Type: "video", TargetAudience: "Prospective buyers"},
}

func newSeedCommand(cc *commandContext) *cobra.Command {
	var ownerID string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create demo campaigns for an owner",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := cc.open(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()

			svc := &service.CampaignService{CampaignRepo: &repository.CampaignRepository{DB: conn}}
			for _, in := range demoCampaigns {
				c, err := svc.CreateCampaign(cmd.Context(), ownerID, in)
				if err != nil {
					return fmt.Errorf("failed to seed %q: %w", in.Title, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Seeded: %s (%s)\n", c.Title, c.ID)
				// Distinct created_at values keep the ordering stable.
				time.Sleep(10 * time.Millisecond)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&ownerID, "owner", "", "Owner ID to seed campaigns for")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newCampaignsCommand(cc *commandContext) *cobra.Command {
	campaignsCmd := &cobra.Command{
		Use:   "campaigns",
		Short: "Inspect campaigns",
	}

	var ownerID string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List an owner's campaigns, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := cc.open(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()

			repo := &repository.CampaignRepository{DB: conn}
			campaigns, err := repo.ListByOwner(cmd.Context(), ownerID)
			if err != nil {
				return err
			}
			if len(campaigns) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No campaigns")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), campaignTable(campaigns))
			return nil
		},
	}
	listCmd.Flags().StringVar(&ownerID, "owner", "", "Owner ID")
	_ = listCmd.MarkFlagRequired("owner")

	campaignsCmd.AddCommand(listCmd)
	return campaignsCmd
}

func newTokenCommand(cc *commandContext) *cobra.Command {
	var ownerID string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cc.ensureConfig(cmd.Context())
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return fmt.Errorf("AUTH_JWT_SECRET is not set")
			}
			token, err := session.NewProvider(cfg.Auth.JWTSecret, cfg.Auth.Issuer).Issue(ownerID, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&ownerID, "owner", "", "Owner ID to put in the token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func campaignTable(campaigns []model.Campaign) string {
	rows := make([][]string, 0, len(campaigns))
	for _, c := range campaigns {
		rows = append(rows, []string{
			c.ID,
			c.Title,
			string(c.Type),
			strconv.Itoa(len(c.MediaFiles)),
			c.CreatedAt.Format(time.RFC3339),
		})
	}
	return renderTable(
		[]string{"ID", "Title", "Type", "Media", "Created"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	)
}
