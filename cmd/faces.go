package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"sentry-console/pkg/models"
)

// Variables to hold flag values
var (
	faceName      string
	faceAddStatus string
	faceSetStatus string
	faceImage     string
)

// Parent Command
var facesCmd = &cobra.Command{
	Use:   "faces",
	Short: "Manage the face watch-list",
	Long:  `List, add, re-classify and delete whitelisted and blacklisted faces.`,
}

// List Command
var facesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all registered faces",
	Run: func(cmd *cobra.Command, args []string) {
		api, s := getClient()
		ctx, cancel := requestContext(s)
		defer cancel()

		faces, err := api.ListFaces(ctx)
		exitOnErr("fetching faces", err)

		if jsonOutput {
			printJSON(faces)
			return
		}

		if len(faces) == 0 {
			fmt.Println("No faces registered.")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "NAME\tSTATUS\tLAST SEEN")
		fmt.Fprintln(w, "----\t------\t---------")
		for _, f := range faces {
			seen := f.LastSeen
			if seen == "" {
				seen = "never"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", f.Name, f.Status, seen)
		}
		w.Flush()
	},
}

// Add Command
var facesAddCmd = &cobra.Command{
	Use:     "add",
	Short:   "Register a face with a reference image",
	Example: `  sentry-console faces add --name "John Doe" --status blacklist --image john.jpg`,
	Run: func(cmd *cobra.Command, args []string) {
		status, err := models.ParseFaceStatus(faceAddStatus)
		exitOnErr("parsing status", err)

		f, err := os.Open(faceImage)
		exitOnErr("opening image", err)
		defer f.Close()

		api, s := getClient()
		ctx, cancel := requestContext(s)
		defer cancel()

		fmt.Printf("Registering %s as %s ...\n", faceName, status)
		if err := api.AddFace(ctx, faceName, status, f, filepath.Base(faceImage)); err != nil {
			fmt.Printf("Error adding face: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Face added successfully.")
	},
}

// Status Command
var facesStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Move a face between whitelist and blacklist",
	Example: `  sentry-console faces status --name "John Doe" --status whitelist`,
	Run: func(cmd *cobra.Command, args []string) {
		status, err := models.ParseFaceStatus(faceSetStatus)
		exitOnErr("parsing status", err)

		api, s := getClient()
		ctx, cancel := requestContext(s)
		defer cancel()

		exitOnErr("updating face", api.UpdateFaceStatus(ctx, faceName, status))
		fmt.Printf("%s is now %s.\n", faceName, status)
	},
}

// Delete Command
var facesDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a face",
	Run: func(cmd *cobra.Command, args []string) {
		api, s := getClient()
		ctx, cancel := requestContext(s)
		defer cancel()

		exitOnErr("deleting face", api.DeleteFace(ctx, faceName))
		fmt.Printf("Face %s deleted.\n", faceName)
	},
}

func init() {
	rootCmd.AddCommand(facesCmd)

	facesCmd.AddCommand(facesListCmd)
	facesCmd.AddCommand(facesAddCmd)
	facesCmd.AddCommand(facesStatusCmd)
	facesCmd.AddCommand(facesDeleteCmd)

	for _, c := range []*cobra.Command{facesAddCmd, facesStatusCmd, facesDeleteCmd} {
		c.Flags().StringVar(&faceName, "name", "", "Name of the person")
		_ = c.MarkFlagRequired("name")
	}

	facesAddCmd.Flags().StringVar(&faceAddStatus, "status", string(models.FaceBlacklist), "whitelist or blacklist")
	facesAddCmd.Flags().StringVar(&faceImage, "image", "", "Path to the reference image")
	_ = facesAddCmd.MarkFlagRequired("image")

	facesStatusCmd.Flags().StringVar(&faceSetStatus, "status", "", "whitelist or blacklist")
	_ = facesStatusCmd.MarkFlagRequired("status")
}
