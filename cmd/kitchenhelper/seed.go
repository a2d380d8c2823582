package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/PrinceLenny001/KitchenHelper-sub000/internal/core"
)

// seedFile is the YAML household definition consumed by `seed`
type seedFile struct {
	Account string       `yaml:"account"`
	Members []seedMember `yaml:"members"`
	Tasks   []seedTask   `yaml:"tasks"`
}

type seedMember struct {
	Name     string `yaml:"name"`
	ColorTag string `yaml:"color_tag"`
	Default  bool   `yaml:"default"`
}

type seedTask struct {
	Kind                 string     `yaml:"kind"`
	Name                 string     `yaml:"name"`
	Description          string     `yaml:"description"`
	Recurrence           string     `yaml:"recurrence"`
	CustomRecurrenceExpr string     `yaml:"custom_recurrence_expr"`
	StartDate            string     `yaml:"start_date"`
	EndDate              string     `yaml:"end_date"`
	EstimatedMinutes     int        `yaml:"estimated_minutes"`
	Priority             *int       `yaml:"priority"`
	Assignees            []string   `yaml:"assignees"` // member names
	Steps                []seedStep `yaml:"steps"`
}

type seedStep struct {
	Description      string `yaml:"description"`
	EstimatedMinutes int    `yaml:"estimated_minutes"`
}

func seedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import a household definition from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			var seed seedFile
			if err := yaml.Unmarshal(data, &seed); err != nil {
				return fmt.Errorf("parse seed file: %w", err)
			}
			if seed.Account == "" {
				return fmt.Errorf("seed file must name an account")
			}

			engine, err := openEngine(cfg)
			if err != nil {
				return err
			}
			defer engine.Close()

			ctx := context.Background()
			memberIDs := make(map[string]string, len(seed.Members))
			for _, m := range seed.Members {
				member, err := engine.CreateFamilyMember(ctx, seed.Account, m.Name, m.ColorTag, m.Default)
				if err != nil {
					return fmt.Errorf("member %q: %w", m.Name, err)
				}
				memberIDs[m.Name] = member.ID
			}

			for _, t := range seed.Tasks {
				def, err := t.toDefinition(memberIDs)
				if err != nil {
					return fmt.Errorf("task %q: %w", t.Name, err)
				}
				if _, err := engine.CreateTask(ctx, seed.Account, def); err != nil {
					return fmt.Errorf("task %q: %w", t.Name, err)
				}
			}

			fmt.Printf("Seeded %d members and %d tasks for account %s\n",
				len(seed.Members), len(seed.Tasks), seed.Account)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "household.yaml", "household definition file")

	return cmd
}

func (t *seedTask) toDefinition(memberIDs map[string]string) (core.TaskDefinition, error) {
	def := core.TaskDefinition{
		Kind:                 t.Kind,
		Name:                 t.Name,
		Description:          t.Description,
		Recurrence:           t.Recurrence,
		CustomRecurrenceExpr: t.CustomRecurrenceExpr,
		EstimatedMinutes:     t.EstimatedMinutes,
		Priority:             t.Priority,
		IsActive:             true,
	}

	start, err := time.Parse("2006-01-02", t.StartDate)
	if err != nil {
		return def, fmt.Errorf("start_date: %w", err)
	}
	def.StartDate = start
	if t.EndDate != "" {
		end, err := time.Parse("2006-01-02", t.EndDate)
		if err != nil {
			return def, fmt.Errorf("end_date: %w", err)
		}
		def.EndDate = &end
	}

	for _, name := range t.Assignees {
		id, ok := memberIDs[name]
		if !ok {
			return def, fmt.Errorf("unknown assignee %q", name)
		}
		def.FamilyMemberIDs = append(def.FamilyMemberIDs, id)
	}
	for _, s := range t.Steps {
		def.Steps = append(def.Steps, core.StepDefinition{
			Description:      s.Description,
			EstimatedMinutes: s.EstimatedMinutes,
		})
	}
	return def, nil
}
