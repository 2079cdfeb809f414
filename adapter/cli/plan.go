package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/gala/internal/app"
	"github.com/felixgeelhaar/gala/internal/planning/application/commands"
	"github.com/felixgeelhaar/gala/internal/planning/application/queries"
)

// NewPlanCommand creates the plan command group.
func NewPlanCommand(container *app.Container) *cobra.Command {
	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "Compute and inspect event preparation plans",
	}
	planCmd.AddCommand(newPlanRunCommand(container))
	planCmd.AddCommand(newPlanShowCommand(container))
	planCmd.AddCommand(newPlanListCommand(container))
	planCmd.AddCommand(newPlanConflictsCommand(container))
	return planCmd
}

func newPlanRunCommand(container *app.Container) *cobra.Command {
	var inputPath string
	var eventName string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the planning pipeline on an input file",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, inputs, err := loadPlanInputs(inputPath)
			if err != nil {
				return err
			}
			if eventName != "" {
				name = eventName
			}
			if name == "" {
				return fmt.Errorf("event name required (set event_name in the file or pass --event)")
			}

			out, err := container.PlanEvent.Handle(cmd.Context(), commands.PlanEventCommand{
				EventName: name,
				Inputs:    inputs,
			})
			if err != nil {
				return err
			}

			summary := out.Result.Summary
			fmt.Printf("Plan %s computed for %q\n", out.PlanID, name)
			if out.FromCache {
				fmt.Println("  (result served from cache)")
			}
			fmt.Printf("  tasks: %d  conflicts: %d  warnings: %d  manual review: %d\n",
				summary.TotalTasks, len(out.Result.Conflicts),
				summary.TasksWithWarnings, summary.TasksRequiringReview)

			return printJSON(cmd, out.Result)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "file", "f", "", "input JSON file (required)")
	cmd.Flags().StringVarP(&eventName, "event", "e", "", "event name override")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newPlanShowCommand(container *app.Container) *cobra.Command {
	var planID string
	var eventName string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a stored plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := container.GetPlan.Handle(cmd.Context(), queries.GetPlanQuery{
				ID:        planID,
				EventName: eventName,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, view)
		},
	}

	cmd.Flags().StringVar(&planID, "id", "", "plan id")
	cmd.Flags().StringVarP(&eventName, "event", "e", "", "event name (most recent plan)")
	return cmd
}

func newPlanListCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			views, err := container.ListPlans.Handle(cmd.Context(), queries.ListPlansQuery{})
			if err != nil {
				return err
			}
			if len(views) == 0 {
				fmt.Println("No plans stored.")
				return nil
			}
			for _, v := range views {
				conflicts := 0
				tasks := 0
				if v.Result != nil {
					conflicts = len(v.Result.Conflicts)
					tasks = v.Result.Summary.TotalTasks
				}
				fmt.Printf("%s  %-24s  tasks=%d conflicts=%d  %s\n",
					v.ID, v.EventName, tasks, conflicts, v.UpdatedAt)
			}
			return nil
		},
	}
}

func newPlanConflictsCommand(container *app.Container) *cobra.Command {
	var planID string
	var eventName string
	var minSeverity string

	cmd := &cobra.Command{
		Use:   "conflicts",
		Short: "List a plan's detected conflicts",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := container.ListConflicts.Handle(cmd.Context(), queries.ListConflictsQuery{
				ID:          planID,
				EventName:   eventName,
				MinSeverity: minSeverity,
			})
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("No conflicts.")
				return nil
			}
			for _, c := range records {
				fmt.Printf("[%s] %s: %s\n", c.Severity, c.Type, c.Description)
				for _, hint := range c.SuggestedResolutions {
					fmt.Printf("    - %s\n", hint)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&planID, "id", "", "plan id")
	cmd.Flags().StringVarP(&eventName, "event", "e", "", "event name (most recent plan)")
	cmd.Flags().StringVar(&minSeverity, "min-severity", "", "minimum severity (low, medium, high, critical)")
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
