// bankcheck verifies a question bank without starting the server: it loads
// the manifest, validates every file, and prints every count mismatch and
// duplicate id in one pass. With -list it just prints group and file names.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/quizbook/quizbook/internal/bank"
)

func main() {
	dir := flag.String("dir", "./bank", "bank directory containing the manifest and question-set files")
	manifestFile := flag.String("manifest", "manifest.json", "manifest file name within the bank directory")
	list := flag.Bool("list", false, "list group and file names instead of checking")
	flag.Parse()

	data, err := os.ReadFile(filepath.Join(*dir, *manifestFile))
	if err != nil {
		log.Fatalf("read manifest: %v", err)
	}
	m, err := bank.ParseManifest(data)
	if err != nil {
		log.Fatalf("parse manifest: %v", err)
	}

	if *list {
		for _, g := range m.Groups {
			fmt.Println(g.Label)
			for _, c := range g.Children {
				fmt.Printf("  %s (%d)\n", c.File, c.Count)
			}
		}
		return
	}

	b, err := bank.LoadBank(m, bank.DirLoader(*dir))
	if err != nil {
		var le *bank.LoadError
		if !errors.As(err, &le) {
			log.Fatalf("load bank: %v", err)
		}
		for _, mm := range le.Mismatches {
			fmt.Printf("COUNT MISMATCH  %s: declared %d, loaded %d\n", mm.File, mm.Expected, mm.Actual)
		}
		for _, d := range le.Duplicates {
			fmt.Printf("DUPLICATE ID    %s: %v\n", d.ID, d.Files)
		}
		for _, issue := range b.Issues {
			fmt.Printf("INVALID RECORD  %s[%d]: %s\n", issue.File, issue.Index, issue.Reason)
		}
		os.Exit(1)
	}

	for _, issue := range b.Issues {
		fmt.Printf("INVALID RECORD  %s[%d]: %s\n", issue.File, issue.Index, issue.Reason)
	}
	fmt.Printf("ok: %d questions in %d groups\n", b.Size(), len(b.Groups))
}
