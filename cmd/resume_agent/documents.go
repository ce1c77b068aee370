package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/github-resume/internal/db"
	"github.com/jonathan/github-resume/internal/sanitize"
)

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "Inspect archived résumés",
	Long:  "List and export documents archived by the server or by render --db-url. Uses DATABASE_URL unless --db-url is given.",
}

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent documents for a GitHub login",
	RunE:  runDocumentsList,
}

var documentsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print or export one archived document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsShow,
}

var (
	documentsDatabaseURL string
	documentsLogin       string
	documentsLimit       int
	documentsOutputDir   string
)

func init() {
	documentsCmd.PersistentFlags().StringVar(&documentsDatabaseURL, "db-url", "", "PostgreSQL connection URL (default: DATABASE_URL)")

	documentsListCmd.Flags().StringVarP(&documentsLogin, "login", "l", "", "GitHub login (required)")
	documentsListCmd.Flags().IntVarP(&documentsLimit, "limit", "n", 20, "Maximum number of documents")
	if err := documentsListCmd.MarkFlagRequired("login"); err != nil {
		panic(fmt.Sprintf("failed to mark login flag as required: %v", err))
	}

	documentsShowCmd.Flags().StringVarP(&documentsOutputDir, "out-dir", "o", "", "Write the document under its filename in this directory instead of stdout")

	documentsCmd.AddCommand(documentsListCmd, documentsShowCmd)
	rootCmd.AddCommand(documentsCmd)
}

func openArchive(ctx context.Context) (*db.DB, error) {
	url := documentsDatabaseURL
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}
	if url == "" {
		return nil, fmt.Errorf("DATABASE_URL not set and --db-url not provided")
	}
	database, err := db.Connect(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return database, nil
}

func runDocumentsList(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	database, err := openArchive(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	docs, err := database.ListDocuments(ctx, sanitize.Username(documentsLogin), documentsLimit)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		_, _ = fmt.Fprintf(os.Stdout, "No documents for %s\n", documentsLogin)
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tKIND\tFILENAME\tCREATED")
	for _, doc := range docs {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", doc.ID, doc.Kind, doc.Filename, doc.CreatedAt.UTC().Format(time.RFC3339))
	}
	return tw.Flush()
}

func runDocumentsShow(_ *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid document id: %w", err)
	}

	ctx := context.Background()
	database, err := openArchive(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	doc, err := database.GetDocument(ctx, id)
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("document %s not found", id)
	}

	if documentsOutputDir == "" {
		_, _ = fmt.Fprint(os.Stdout, doc.Content)
		return nil
	}
	path, err := writeOutput(documentsOutputDir, doc.Filename, []byte(doc.Content))
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(os.Stdout, "Output: %s\n", path)
	return nil
}
