package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fieldlens/fieldlens/internal/api"
	"github.com/fieldlens/fieldlens/internal/fields"
	"github.com/fieldlens/fieldlens/internal/home"
	"github.com/fieldlens/fieldlens/internal/store"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "Manage the local field schema",
}

var fieldsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the local field schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		schemaStore, err := store.NewSchemaStore(h.SchemaPath())
		if err != nil {
			return err
		}
		return api.Output(schemaStore.Get())
	},
}

var fieldsValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a field schema file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		schema, err := fields.Decode(data)
		if err != nil {
			return err
		}
		fmt.Printf("Valid: %d fields, %d presets\n", len(schema.Fields), len(schema.Presets))
		return nil
	},
}

var fieldsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the local field schema from a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		schema, err := fields.Decode(data)
		if err != nil {
			return err
		}

		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}
		if err := fields.Save(schema, h.SchemaPath()); err != nil {
			return err
		}
		fmt.Printf("Wrote %s (%d fields, %d presets)\n", h.SchemaPath(), len(schema.Fields), len(schema.Presets))
		return nil
	},
}

var fieldsExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write the local field schema to a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		schemaStore, err := store.NewSchemaStore(h.SchemaPath())
		if err != nil {
			return err
		}
		if err := fields.Save(schemaStore.Get(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", args[0])
		return nil
	},
}

var fieldsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the local field schema to the built-in defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}
		schema := fields.Default()
		if err := fields.Save(schema, h.SchemaPath()); err != nil {
			return err
		}
		fmt.Printf("Wrote %s (%d fields)\n", h.SchemaPath(), len(schema.Fields))
		return nil
	},
}

func init() {
	fieldsCmd.AddCommand(fieldsShowCmd)
	fieldsCmd.AddCommand(fieldsValidateCmd)
	fieldsCmd.AddCommand(fieldsImportCmd)
	fieldsCmd.AddCommand(fieldsExportCmd)
	fieldsCmd.AddCommand(fieldsResetCmd)
	rootCmd.AddCommand(fieldsCmd)
}
