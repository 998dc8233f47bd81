package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"govector/src/fsutil"
	"govector/src/storage/jobfs"
)

// cleanupCmd deletes expired job namespaces from local storage and
// prints what remains. Housekeeping is external to the job state
// machine; jobs themselves are never resurrected.
var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete stored jobs older than the retention window",
	RunE:  runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)

	settingDefaultConfig()
}

func runCleanup(cmd *cobra.Command, args []string) error {
	if viper.GetString("storage.backend") != "local" {
		return fmt.Errorf("cleanup only supports the local storage backend")
	}

	gateway, err := jobfs.New(viper.GetString("storage.path"), fsutil.NewLocalFileStore())
	if err != nil {
		return err
	}

	maxAge := time.Duration(viper.GetInt("retention.max_age_hours")) * time.Hour
	deleted, err := gateway.CleanupOlderThan(maxAge)
	if err != nil {
		return err
	}

	jobs, files, bytes, err := gateway.Stats()
	if err != nil {
		return err
	}

	fmt.Printf("deleted %d expired jobs\n", deleted)
	fmt.Printf("remaining: %d jobs, %d files, %.2f MB\n", jobs, files, float64(bytes)/(1024*1024))
	return nil
}
