package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jonathan/upskill-advisor/internal/catalog"
)

var catalogJSON bool

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the loaded roles and courses",
	RunE:  runCatalog,
}

func init() {
	catalogCmd.Flags().BoolVar(&catalogJSON, "json", false, "Print the catalog as JSON")
	rootCmd.AddCommand(catalogCmd)
}

func runCatalog(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	cat, err := catalog.Load(cfg.CoursesPath, cfg.RolesPath)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	out := cmd.OutOrStdout()
	if catalogJSON {
		return writeJSON(out, "", map[string]any{
			"roles":   cat.Roles(),
			"courses": cat.Courses(),
		})
	}

	_, _ = fmt.Fprintf(out, "Roles (%d):\n", len(cat.Roles()))
	for _, name := range cat.Roles() {
		role, _ := cat.Role(name)
		_, _ = fmt.Fprintf(out, "  %s (%d required skills)\n", role.Role, len(role.SkillsRequired))
	}

	_, _ = fmt.Fprintf(out, "\nCourses (%d):\n", cat.Len())
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "  ID\tDIFFICULTY\tWEEKS\tTITLE\tSKILLS")
	for _, c := range cat.Courses() {
		_, _ = fmt.Fprintf(tw, "  %s\t%s\t%d\t%s\t%s\n", c.CourseID, c.Difficulty, c.DurationWeeks, c.Title, strings.Join(c.Skills, ", "))
	}
	return tw.Flush()
}
