package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saymi-el/looply/internal/types"
)

// GetVideosCmd returns the videos command group.
func GetVideosCmd() *cobra.Command {
	videosCmd := &cobra.Command{
		Use:   "videos",
		Short: "Manage video generation jobs",
	}

	videosCmd.AddCommand(submitVideoCmd())
	videosCmd.AddCommand(getVideoCmd())
	videosCmd.AddCommand(listVideosCmd())
	return videosCmd
}

func submitVideoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a new video generation job",
		RunE: func(cmd *cobra.Command, _ []string) error {
			topic, _ := cmd.Flags().GetString("topic")
			script, _ := cmd.Flags().GetString("script")
			tone, _ := cmd.Flags().GetString("tone")
			style, _ := cmd.Flags().GetString("style")
			duration, _ := cmd.Flags().GetInt("duration")
			modular, _ := cmd.Flags().GetBool("modular")

			resp, err := apiClient.SubmitVideo(context.Background(), types.VideoRequest{
				Topic:                topic,
				Script:               script,
				Tone:                 tone,
				VisualStyle:          style,
				Duration:             duration,
				UseModularGeneration: modular,
			})
			if err != nil {
				return fmt.Errorf("error submitting video: %w", err)
			}
			return printJSON(resp)
		},
	}

	cmd.Flags().StringP("topic", "T", "", "Topic to generate a video about")
	cmd.Flags().String("script", "", "Literal narration script (skips script generation)")
	cmd.Flags().String("tone", "", "Narration tone")
	cmd.Flags().String("style", "", "Visual style (modern, cinematic, professional, creative, dynamic, minimal)")
	cmd.Flags().IntP("duration", "d", 0, "Video duration in seconds (5-300)")
	cmd.Flags().Bool("modular", false, "Generate script and prompts in separate model calls")
	return cmd
}

func getVideoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Fetch the status of a video job",
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, _ := cmd.Flags().GetString("id")

			resp, err := apiClient.GetVideo(context.Background(), id)
			if err != nil {
				return fmt.Errorf("error fetching video job: %w", err)
			}
			return printJSON(resp)
		},
	}

	cmd.Flags().StringP("id", "i", "", "Video job ID to fetch")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func listVideosCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List video jobs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, _ := cmd.Flags().GetInt("page")
			pageSize, _ := cmd.Flags().GetInt("page-size")

			resp, err := apiClient.ListVideos(context.Background(), page, pageSize)
			if err != nil {
				return fmt.Errorf("error listing video jobs: %w", err)
			}
			return printJSON(resp)
		},
	}

	cmd.Flags().IntP("page", "p", 1, "Page number")
	cmd.Flags().Int("page-size", 10, "Jobs per page")
	return cmd
}

// printJSON pretty prints the response
func printJSON(v interface{}) error {
	prettyJSON, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("error formatting response: %w", err)
	}
	fmt.Println(string(prettyJSON))
	return nil
}
