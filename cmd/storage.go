package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"vibemesh/storage"

	"github.com/spf13/cobra"
)

var storagePrefix string

var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Inspect cached analysis objects",
	Long:  `List the analysis objects cached in the MinIO bucket, with aggregate size and modification stats.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		store, err := storage.NewAnalysisStore(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to MinIO: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		objects, stats, err := store.List(ctx, storagePrefix)
		if err != nil {
			log.Fatalf("Failed to list analysis objects: %v", err)
		}

		fmt.Printf("Bucket: %s\n", store.Bucket())
		fmt.Printf("Objects: %d\n", stats.TotalObjects)
		fmt.Printf("Total size: %.2f KB\n", float64(stats.TotalSize)/1024)
		if stats.TotalObjects > 0 {
			fmt.Printf("Last modified: %s\n", stats.LastModified.Format(time.RFC3339))
		}
		fmt.Println()

		for _, obj := range objects {
			fmt.Printf("%-60s %8d B  %s\n", obj.Key, obj.Size, obj.LastModified.Format("2006-01-02 15:04:05"))
		}
	},
}

func init() {
	rootCmd.AddCommand(storageCmd)

	storageCmd.Flags().StringVarP(&storagePrefix, "prefix", "p", "", "filter objects by key prefix")

	storageCmd.Example = `  # List all cached analyses
  vibemesh storage

  # Filter by track name prefix
  vibemesh storage -p "MySong"`
}
