package talepnlp_test

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/crimson-sun/talepnlp/internal/engine/testdata"
	"github.com/crimson-sun/talepnlp/pkg/talepnlp"
)

func Example() {
	// Small fixture models stand in for the production exports.
	dir, err := os.MkdirTemp("", "talepnlp-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)
	if err := testdata.WriteModelDir(dir); err != nil {
		log.Fatal(err)
	}

	a, err := talepnlp.New(
		talepnlp.WithModelDir(dir),
		talepnlp.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer a.Close()

	p := a.Predict("passolig krt ile odeme yapamadim")
	fmt.Println("Entity:", p.Entity)
	fmt.Println("Konu:", p.Topic)
	fmt.Printf("Severity: %d (%s)\n", p.Severity.Level, p.Severity.ActionMessage)
	// Output:
	// Entity: passo; passolig; passolig kart
	// Konu: odeme
	// Severity: 1 (action advised)
}
