// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "careerdesk",
	Short: "CareerDesk is a job portal backend",
	Long: `CareerDesk is the backend of a job portal: job seekers browse and
apply to jobs, internships, and government-job listings, employers manage
their postings, and administrators run the platform through a role,
sub-role, and permission based access model.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
