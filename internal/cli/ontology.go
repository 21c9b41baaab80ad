package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/RichterLProgram/CuraWay-sub000/internal/ontology"
	"github.com/spf13/cobra"
)

var resolveOntologyFile string

// ontologyCmd represents the ontology command group
var ontologyCmd = &cobra.Command{
	Use:   "ontology",
	Short: "Inspect the capability ontology",
}

var ontologyResolveCmd = &cobra.Command{
	Use:   "resolve <name>...",
	Short: "Resolve free-text capability names to canonical codes",
	Long: `Resolve shows how free-text capability names map onto the ontology:
which canonical code matched, through which tier (code, synonym, token),
and at what confidence.

Example:
  curaway ontology resolve "CT scanner"
  curaway ontology resolve "x-ray" "no mri available" IMAGING_CT`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := resolveRegistry()
		if err != nil {
			return err
		}
		for _, name := range args {
			match := registry.NormalizeName(name)
			if match.MatchType == ontology.MatchNone {
				fmt.Printf("%-30q -> no match\n", name)
				continue
			}
			fmt.Printf("%-30q -> %-24s %-8s %.2f\n", name, match.Code, match.MatchType, match.Confidence)
		}
		return nil
	},
}

var ontologyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known capability codes",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := resolveRegistry()
		if err != nil {
			return err
		}
		essential := make(map[string]bool)
		for _, code := range ontology.EssentialCapabilities {
			essential[code] = true
		}
		for _, code := range registry.Codes() {
			cap, _ := registry.Lookup(code)
			tag := ""
			if essential[code] {
				tag = "  [essential]"
			}
			fmt.Printf("%-26s %s%s\n", code, cap.DisplayName, tag)
			if verbose && len(cap.Synonyms) > 0 {
				fmt.Printf("%26s   synonyms: %s\n", "", strings.Join(cap.Synonyms, ", "))
			}
		}
		return nil
	},
}

// resolveRegistry loads the flag-selected ontology or the built-ins
func resolveRegistry() (*ontology.Registry, error) {
	if resolveOntologyFile == "" {
		return ontology.Default(), nil
	}
	registry, err := ontology.LoadRegistry(resolveOntologyFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ontology: %v\n", err)
		return nil, err
	}
	return registry, nil
}

func init() {
	rootCmd.AddCommand(ontologyCmd)
	ontologyCmd.AddCommand(ontologyResolveCmd)
	ontologyCmd.AddCommand(ontologyListCmd)

	ontologyCmd.PersistentFlags().StringVar(&resolveOntologyFile, "ontology", "", "capability ontology YAML (replaces built-ins)")
}
