// Command rdf-db-upgrade supplements original_source/librdf's
// utils/db_upgrade.c (spec.md's SUPPLEMENTED FEATURES): open a
// hashes-backend store, re-encode every statement into a freshly
// created store (forcing current-version Node/Statement encodings),
// and report a unified diff of the total statement count before and
// after.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/oxhq/rdfcore/model"
	"github.com/oxhq/rdfcore/statement"
	"github.com/oxhq/rdfcore/storage"
	"github.com/oxhq/rdfcore/world"
)

func main() {
	_ = godotenv.Load()

	var dir, identifier, outDir string
	root := &cobra.Command{
		Use:   "rdf-db-upgrade",
		Short: "Re-encode a hashes-backend store into a freshly created one and report the diff",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(dir, identifier, outDir)
		},
	}
	root.Flags().StringVar(&dir, "dir", ".", "directory holding the existing store")
	root.Flags().StringVar(&identifier, "identifier", "store", "store identifier (file name prefix)")
	root.Flags().StringVar(&outDir, "out", "", "directory for the upgraded store (required)")
	_ = root.MarkFlagRequired("out")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "rdf-db-upgrade:", err)
		os.Exit(1)
	}
}

func run(dir, identifier, outDir string) error {
	w := world.New(world.Config{})
	if err := w.Open(); err != nil {
		return err
	}
	defer w.Free()

	oldStore := storage.NewHashesStorage(w.NodeCaches, w.URICache)
	if err := oldStore.Open(storage.Options{Identifier: identifier, Dir: dir, Hashes: "dbhash", ContextsEnabled: true, ReadOnly: true}); err != nil {
		return fmt.Errorf("rdf-db-upgrade: open %s/%s: %w", dir, identifier, err)
	}
	defer oldStore.Close()
	oldModel := model.New(w, oldStore)

	newStore := storage.NewHashesStorage(w.NodeCaches, w.URICache)
	if err := newStore.Open(storage.Options{Identifier: identifier, Dir: outDir, Hashes: "dbhash", ContextsEnabled: true, New: true}); err != nil {
		return fmt.Errorf("rdf-db-upgrade: create %s/%s: %w", outDir, identifier, err)
	}
	defer newStore.Close()
	newModel := model.New(w, newStore)

	strm, err := oldModel.FindStatements(&statement.Statement{})
	if err != nil {
		return err
	}
	defer strm.Cancel()
	for strm.Next() {
		t := strm.Current()
		withCtx := statement.NewFromNodes(t.Subject, t.Predicate, t.Object)
		withCtx.Graph = strm.CurrentContext()
		if err := newModel.AddStatement(withCtx); err != nil {
			return fmt.Errorf("rdf-db-upgrade: re-insert: %w", err)
		}
	}

	report := fmt.Sprintf("statements: %d\n", oldModel.Size())
	upgraded := fmt.Sprintf("statements: %d\n", newModel.Size())
	d := difflib.UnifiedDiff{
		A:        difflib.SplitLines(report),
		B:        difflib.SplitLines(upgraded),
		FromFile: "before",
		ToFile:   "after",
		Context:  1,
	}
	text, err := difflib.GetUnifiedDiffString(d)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		fmt.Println("no changes: counts match")
	} else {
		fmt.Print(text)
	}
	return nil
}
