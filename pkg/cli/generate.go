package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"standardthought/pkg/pipeline"
)

var generateCmd = LeafCommand{
	Use:   "generate",
	Short: "Generate the sitemap, store it and print it",
	BoolFlags: []BoolFlag{
		{Name: "index", Usage: "print the sitemap index instead of the sitemap"},
		{Name: "no-persist", Usage: "do not store the generated documents"},
	},
	StrFlags: []StringFlag{
		{Name: "out", Shorthand: "o", Usage: "write the document to this file instead of stdout"},
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		indexFlag, _ := cmd.Flags().GetBool("index")
		noPersistFlag, _ := cmd.Flags().GetBool("no-persist")
		outFlag, _ := cmd.Flags().GetString("out")

		_, gen, closeStore, err := openGenerator(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		return runGenerate(cmd, gen, indexFlag, !noPersistFlag, outFlag)
	},
}.Build()

func runGenerate(cmd *cobra.Command, gen *pipeline.Generator, index, persist bool, out string) error {
	ctx := cmd.Context()

	var res *pipeline.Result
	var err error
	if persist {
		res, err = gen.Run(ctx)
	} else {
		res, err = gen.Generate(ctx)
	}
	if err != nil {
		return fmt.Errorf("generate sitemap: %w", err)
	}
	if res.PersistErr != nil {
		klog.Warningf("Sitemap generated but not stored: %v", res.PersistErr)
	}

	doc := res.Document(index)
	if out == "" {
		_, err := cmd.OutOrStdout().Write(doc)
		return err
	}

	if err := os.WriteFile(out, doc, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d entries to %s\n", len(res.Entries), out)
	return nil
}
