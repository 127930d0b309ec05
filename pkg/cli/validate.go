package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/airform/pkg/cli/config"
	"github.com/secmon-lab/airform/pkg/domain/model"
	"github.com/secmon-lab/airform/pkg/repository/firestore"
	"github.com/secmon-lab/airform/pkg/usecase"
	"github.com/secmon-lab/airform/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

var (
	okColor    = color.New(color.FgGreen, color.Bold)
	ngColor    = color.New(color.FgRed, color.Bold)
	labelColor = color.New(color.FgCyan)
)

func cmdValidate() *cli.Command {
	var formPath string
	var schemaPath string
	var firestoreProjectID string
	var firestoreDatabaseID string
	var collectionPrefix string
	var airtableCfg config.Airtable

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "form",
			Aliases:     []string{"f"},
			Usage:       "Form definition TOML file to check offline (requires --schema)",
			Destination: &formPath,
		},
		&cli.StringFlag{
			Name:        "schema",
			Usage:       "Airtable base schema JSON, as returned by the tables endpoint",
			Destination: &schemaPath,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (if specified, stored forms are checked against live Airtable schemas)",
			Sources:     cli.EnvVars("AIRFORM_FIRESTORE_PROJECT_ID"),
			Destination: &firestoreProjectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Sources:     cli.EnvVars("AIRFORM_FIRESTORE_DATABASE_ID"),
			Destination: &firestoreDatabaseID,
		},
		&cli.StringFlag{
			Name:        "firestore-collection-prefix",
			Usage:       "Prefix added to every Firestore collection name",
			Sources:     cli.EnvVars("AIRFORM_FIRESTORE_COLLECTION_PREFIX"),
			Destination: &collectionPrefix,
		},
	}
	flags = append(flags, airtableCfg.Flags()...)

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate form definitions offline or check stored forms for Airtable schema drift",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			var w io.Writer = os.Stdout
			if formPath == "" && firestoreProjectID == "" {
				return goerr.New("nothing to validate: set --form with --schema, or --firestore-project-id")
			}

			if formPath != "" {
				if err := validateFormFile(w, formPath, schemaPath); err != nil {
					return err
				}
			}

			if firestoreProjectID == "" {
				return nil
			}

			repo, err := firestore.New(ctx, firestoreProjectID, firestoreDatabaseID,
				firestore.WithCollectionPrefix(collectionPrefix))
			if err != nil {
				return goerr.Wrap(err, "failed to initialize Firestore repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			factory, err := airtableCfg.ConfigureFactory(repo)
			if err != nil {
				return err
			}

			result, err := usecase.New(repo, factory).ValidateForms(ctx)
			if err != nil {
				return goerr.Wrap(err, "form drift check failed")
			}
			return printValidationResult(w, result)
		},
	}
}

// validateFormFile runs the same checks as form creation against a saved
// schema
func validateFormFile(w io.Writer, formPath, schemaPath string) error {
	if schemaPath == "" {
		return goerr.New("--form requires --schema")
	}

	form, err := config.LoadFormFile(formPath)
	if err != nil {
		return err
	}
	tables, err := config.LoadTableSchema(schemaPath)
	if err != nil {
		return err
	}

	table := model.FindTable(tables, form.TableID)
	if table == nil {
		_, _ = ngColor.Fprintf(w, "✗ %s: ", formPath)
		_, _ = fmt.Fprintf(w, "table %s is not in the schema\n", form.TableID)
		return goerr.Wrap(config.ErrInvalidConfig, "table not found in schema", goerr.V("table_id", form.TableID))
	}

	questions, err := model.BuildForm(form.Questions, table.Fields)
	if err != nil {
		_, _ = ngColor.Fprintf(w, "✗ %s: ", formPath)
		_, _ = fmt.Fprintln(w, err.Error())
		return goerr.Wrap(err, "form definition is invalid", goerr.V("path", formPath))
	}

	_, _ = okColor.Fprintf(w, "✓ %s ", formPath)
	_, _ = fmt.Fprintf(w, "%q on table %s (%d questions)\n", form.Title, table.Name, len(questions))
	for _, q := range questions {
		_, _ = labelColor.Fprintf(w, "  %-20s ", q.QuestionKey)
		_, _ = fmt.Fprintf(w, "%-12s -> %s", q.Type, q.ExternalFieldName)
		if len(q.Options) > 0 {
			_, _ = fmt.Fprintf(w, " [%s]", strings.Join(q.Options, ", "))
		}
		if q.Required {
			_, _ = fmt.Fprint(w, " required")
		}
		if q.ConditionalRules != nil {
			_, _ = fmt.Fprintf(w, " conditional(%s, %d)", q.ConditionalRules.Logic, len(q.ConditionalRules.Conditions))
		}
		_, _ = fmt.Fprintln(w)
	}
	return nil
}

func printValidationResult(w io.Writer, result *usecase.ValidationResult) error {
	if !result.HasIssues() {
		_, _ = okColor.Fprintf(w, "✓ %d stored form(s) match their Airtable tables\n", result.Forms)
		return nil
	}

	for _, issue := range result.Issues {
		_, _ = ngColor.Fprint(w, "✗ ")
		_, _ = fmt.Fprintln(w, issue.String())
	}
	return fmt.Errorf("form drift check found %d issue(s) in %d form(s)", len(result.Issues), result.Forms)
}
