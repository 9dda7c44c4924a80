package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/funnytourism/tourism-api/internal/admin"
	"github.com/funnytourism/tourism-api/internal/agent"
	"github.com/funnytourism/tourism-api/internal/utils"
	"github.com/spf13/cobra"
)

func generatePassword(cmd *cobra.Command) (string, error) {
	pw, err := utils.GenerateTemporaryPassword()
	if err != nil {
		return "", err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Generated password: %s\n", pw)
	return pw, nil
}

func CreateAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a back-office account",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			name, _ := cmd.Flags().GetString("name")
			pw, err := password(cmd, "password")
			if err != nil {
				return err
			}
			if len(pw) < 8 {
				return errors.New("password must be at least 8 characters")
			}

			_, database, err := open(cmd.Context())
			if err != nil {
				return err
			}
			a, err := admin.NewRepository(database).Create(cmd.Context(), email, pw, name)
			if err != nil {
				return fmt.Errorf("create admin: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Admin %s created (id %d).\n", a.Email, a.ID)
			return nil
		},
	}
	cmd.Flags().String("email", "", "login email")
	cmd.Flags().String("password", "", "password (generated when empty)")
	cmd.Flags().String("name", "Admin", "display name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func CreateAgentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-agent",
		Short: "Create an approved agent account",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			rate, _ := flags.GetFloat64("rate")
			if rate < 0 || rate > 100 {
				return errors.New("rate must be between 0 and 100")
			}
			pw, err := password(cmd, "password")
			if err != nil {
				return err
			}
			if len(pw) < 8 {
				return errors.New("password must be at least 8 characters")
			}
			hash, err := utils.HashPassword(pw)
			if err != nil {
				return err
			}

			a := &agent.Agent{Password: hash, CommissionRate: rate}
			a.Email, _ = flags.GetString("email")
			a.CompanyName, _ = flags.GetString("company")
			a.ContactName, _ = flags.GetString("contact")
			a.Phone, _ = flags.GetString("phone")
			a.Country, _ = flags.GetString("country")
			a.ApplyStatus(agent.StatusActive, "cli", time.Now().UTC())

			_, database, err := open(cmd.Context())
			if err != nil {
				return err
			}
			if err := agent.NewRepository(database).Create(cmd.Context(), a); err != nil {
				return fmt.Errorf("create agent: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Agent %s created (id %d, %.2f%% commission).\n", a.Email, a.ID, a.CommissionRate)
			return nil
		},
	}
	f := cmd.Flags()
	f.String("email", "", "login email")
	f.String("password", "", "password (generated when empty)")
	f.String("company", "", "company name")
	f.String("contact", "", "contact person")
	f.String("phone", "", "phone number")
	f.String("country", "", "country")
	f.Float64("rate", agent.DefaultCommissionRate, "commission rate in percent")
	for _, name := range []string{"email", "company", "contact", "phone"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
