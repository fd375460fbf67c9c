// Command i14y transforms ART-DECOR value-set exports into I14Y concept and
// codelist-entries documents and pushes them to the I14Y registry.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ehealth-suisse/i14y-transformer/codelists"
	"github.com/ehealth-suisse/i14y-transformer/config"
	"github.com/ehealth-suisse/i14y-transformer/i14yapi"
	"github.com/ehealth-suisse/i14y-transformer/models/i14y"
	"github.com/ehealth-suisse/i14y-transformer/persons"
	"github.com/ehealth-suisse/i14y-transformer/server"
	"github.com/ehealth-suisse/i14y-transformer/transform"
	"github.com/ehealth-suisse/i14y-transformer/util"
)

func main() {
	// The .env file is optional, the process environment wins either way.
	_ = godotenv.Load()
	log := zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) { w.Out = os.Stdout })).With().Timestamp().Caller().Logger()

	rootCmd := &cobra.Command{
		Use:   "i14y",
		Short: "ART-DECOR value-set transformer and I14Y uploader",
	}
	rootCmd.AddCommand(transformCmd(log))
	rootCmd.AddCommand(pushCmd(log))
	rootCmd.AddCommand(deleteCmd(log))
	rootCmd.AddCommand(serveCmd(log))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func transformCmd(log zerolog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transform <responsible> <deputy> <inputDir> <outputDir> <validFrom> [version]",
		Short: "Transform ART-DECOR CSV/XML exports into I14Y JSON documents",
		Args:  cobra.RangeArgs(5, 6),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			validFrom := args[4]
			if _, err := i14y.Date(validFrom).MarshalText(); err != nil {
				return fmt.Errorf("validFrom must be in YYYY-MM-DD format, got %q", validFrom)
			}
			version := cfg.DefaultVersion
			if len(args) == 6 {
				version = args[5]
			}
			newConcept, _ := cmd.Flags().GetBool("new")

			var lookup transform.ConceptLookup
			if creds := cfg.APICredentials(); creds.BaseURL != "" && creds.ClientID != "" {
				lookup = newAPIClient(cfg, log)
			} else {
				log.Warn().Msg("no API credentials configured, every concept is treated as new")
			}

			service := newTransformService(cfg, lookup, log)
			results, err := service.TransformFolder(cmd.Context(), args[2], args[3], transform.Params{
				ResponsibleKey: args[0],
				DeputyKey:      args[1],
				ValidFrom:      validFrom,
				Version:        version,
				NewConcept:     newConcept,
			})
			if err != nil {
				return err
			}
			log.Info().Int("files", len(results)).Str("output", args[3]).Msg("all transformations complete")
			return nil
		},
	}
	cmd.Flags().BoolP("new", "n", false, "create a new concept instead of a new version of an existing one")
	return cmd
}

func pushCmd(log zerolog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Push produced documents to the I14Y API",
	}

	conceptCmd := &cobra.Command{
		Use:   "concept <file>",
		Short: "Post one concept document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newConfiguredClient(log)
			if err != nil {
				return err
			}
			if err := client.CreateConcept(cmd.Context(), args[0]); err != nil {
				var apiErr *i14yapi.APIError
				if errors.As(err, &apiErr) && apiErr.IsAlreadyExists() {
					log.Warn().Msg("the concept already exists on the server, consider 'i14y delete codelist-entries' before re-posting")
				}
				return err
			}
			log.Info().Str("file", args[0]).Msg("concept posted")
			return nil
		},
	}

	conceptsCmd := &cobra.Command{
		Use:   "concepts <dir>",
		Short: "Post every concept document in a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newConfiguredClient(log)
			if err != nil {
				return err
			}
			created, err := client.CreateConceptFolder(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			log.Info().Int("posted", len(created)).Msg("concepts posted")
			return nil
		},
	}

	codelistCmd := &cobra.Command{
		Use:   "codelist <file> <conceptID>",
		Short: "Import a codelist-entries document into a concept",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newConfiguredClient(log)
			if err != nil {
				return err
			}
			if replace, _ := cmd.Flags().GetBool("replace"); replace {
				return client.ReplaceCodeListEntries(cmd.Context(), args[0], args[1])
			}
			return client.ImportCodeListEntries(cmd.Context(), args[0], args[1])
		},
	}
	codelistCmd.Flags().Bool("replace", false, "delete the concept's existing entries before importing")

	codelistsCmd := &cobra.Command{
		Use:   "codelists <dir>",
		Short: "Replace the codelist entries of every mapped concept in a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			registry, err := newRegistry(cfg)
			if err != nil {
				return err
			}
			client, err := newCheckedClient(cfg, log)
			if err != nil {
				return err
			}
			imported, err := client.ImportCodelistFolder(cmd.Context(), args[0], registry)
			if err != nil {
				return err
			}
			log.Info().Int("imported", len(imported)).Msg("codelists imported")
			return nil
		},
	}

	cmd.AddCommand(conceptCmd, conceptsCmd, codelistCmd, codelistsCmd)
	return cmd
}

func deleteCmd(log zerolog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete data on the I14Y API",
	}

	entriesCmd := &cobra.Command{
		Use:   "codelist-entries <conceptID>",
		Short: "Delete all codelist entries of a concept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newConfiguredClient(log)
			if err != nil {
				return err
			}
			return client.DeleteCodeListEntries(cmd.Context(), args[0])
		},
	}

	cmd.AddCommand(entriesCmd)
	return cmd
}

func serveCmd(log zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web front end",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			registry, err := newRegistry(cfg)
			if err != nil {
				return err
			}

			var (
				api    server.Pusher
				lookup transform.ConceptLookup
			)
			if creds := cfg.APICredentials(); creds.BaseURL != "" && creds.ClientID != "" {
				client := newAPIClient(cfg, log)
				api = client
				lookup = client
			} else {
				log.Warn().Msg("no API credentials configured, API commands are disabled")
			}

			log.Info().
				Str("uploads", util.GetAbsolutePath(cfg.UploadFolder)).
				Str("output", util.GetAbsolutePath(cfg.OutputFolder)).
				Msg("starting web front end")

			srv := server.New(server.Config{
				Port:         cfg.ServerPort,
				UploadFolder: cfg.UploadFolder,
				OutputFolder: cfg.OutputFolder,
			}, newTransformService(cfg, lookup, log), api, registry, log)
			return srv.Start()
		},
	}
}

func newTransformService(cfg *config.Config, lookup transform.ConceptLookup, log zerolog.Logger) *transform.TransformService {
	return transform.NewTransformService(transform.Config{
		PublisherIdentifier: cfg.PublisherIdentifier,
		PublisherName:       cfg.PublisherName,
		ConceptType:         cfg.DefaultConceptType,
		ValueType:           cfg.DefaultValueType,
		ValueMaxLength:      cfg.DefaultValueMaxLength,
		PeriodStart:         cfg.DefaultPeriodStart,
		PeriodEnd:           cfg.DefaultPeriodEnd,
	}, lookup, persons.NewDirectory(cfg.Persons()), log)
}

func newAPIClient(cfg *config.Config, log zerolog.Logger) *i14yapi.Client {
	creds := cfg.APICredentials()
	return i14yapi.NewClient(i14yapi.Config{
		BaseURL:      creds.BaseURL,
		TokenURL:     creds.TokenURL,
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
	}, log)
}

// newConfiguredClient loads the configuration and returns a client for the
// selected API environment.
func newConfiguredClient(log zerolog.Logger) (*i14yapi.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return newCheckedClient(cfg, log)
}

func newCheckedClient(cfg *config.Config, log zerolog.Logger) (*i14yapi.Client, error) {
	creds := cfg.APICredentials()
	if creds.BaseURL == "" || creds.ClientID == "" {
		return nil, fmt.Errorf("no API credentials configured for mode %s", cfg.APIMode)
	}
	return newAPIClient(cfg, log), nil
}

func newRegistry(cfg *config.Config) (*codelists.Registry, error) {
	if cfg.CodelistMappingFile == "" {
		return codelists.NewRegistry(), nil
	}
	return codelists.NewRegistryFromFile(cfg.CodelistMappingFile)
}
