// Command rdf-digest is the programmatic counterpart of the collaborator
// utility named in spec.md §6 ("redland-digest"), supplementing
// original_source/librdf/utils/rdf-digest.c: fingerprint a URI string
// with the named digest algorithm and print the hex sum.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/oxhq/rdfcore/digest"
)

func main() {
	_ = godotenv.Load()

	var algo string
	root := &cobra.Command{
		Use:   "rdf-digest <uri-string>",
		Short: "Fingerprint a URI with a registered digest algorithm",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := digest.NewRegistry()
			sum, err := reg.HexSum(algo, []byte(args[0]))
			if err != nil {
				return err
			}
			fmt.Println(sum)
			return nil
		},
	}
	root.Flags().StringVarP(&algo, "algorithm", "a", "sha1", "digest algorithm: md5, sha1 or blake2b")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "rdf-digest:", err)
		os.Exit(1)
	}
}
