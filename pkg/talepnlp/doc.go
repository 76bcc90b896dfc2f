// Package talepnlp analyses Turkish customer-service messages with five
// pre-trained models: entity extraction, topic ("konu"), sentiment,
// severity, and seven category flags.
//
// Quick start:
//
//	a, err := talepnlp.New(talepnlp.WithModelDir("data/models"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer a.Close()
//
//	p := a.Predict("passolig krt ile odeme yapamadim")
//	fmt.Println(p.Entity, p.Topic) // passo; passolig; passolig kart odeme
//
// Models that fail to load leave their stage unavailable instead of failing
// New; use WithRequired to insist on specific stages. An Analyzer is safe
// for concurrent use.
package talepnlp
