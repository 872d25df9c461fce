package cmd

import (
	"flag"

	"github.com/etnz/depositplan/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Complete handles shell completion requests, it exits the program when the
// shell asked for a completion and returns otherwise.
//
// Install it with: COMP_INSTALL=1 dpa
func Complete() {
	completion().Complete("dpa")
}

// completion describes the command line: global flags, subcommands and their flags.
func completion() *complete.Command {
	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: flagPredictors(flag.CommandLine),
	}
	for _, name := range []string{"help", "flags", "commands"} {
		root.Sub[name] = &complete.Command{}
	}

	for _, e := range commands() {
		fs := flag.NewFlagSet(e.cmd.Name(), flag.ContinueOnError)
		e.cmd.SetFlags(fs)
		sub := &complete.Command{Flags: flagPredictors(fs)}
		switch e.cmd.Name() {
		case "topic":
			sub.Args = topicPredictor{}
		case "import":
			sub.Args = predict.Files("*.json")
		}
		root.Sub[e.cmd.Name()] = sub
	}
	return root
}

// flagPredictors guesses a predictor for each flag from its name.
func flagPredictors(fs *flag.FlagSet) map[string]complete.Predictor {
	flags := map[string]complete.Predictor{}
	fs.VisitAll(func(f *flag.Flag) {
		switch f.Name {
		case "book":
			flags[f.Name] = predict.Or(predict.Files("*.yaml"), predict.Files("*.yml"), predict.Files("*.json"))
		case "deposits":
			flags[f.Name] = predict.Files("*.jsonl")
		case "config":
			flags[f.Name] = predict.Files("*.yaml")
		case "db":
			flags[f.Name] = predict.Files("*.db")
		case "currency":
			flags[f.Name] = predict.Set{"EUR", "USD", "GBP", "CHF", "JPY"}
		default:
			if bf, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && bf.IsBoolFlag() {
				flags[f.Name] = predict.Nothing
			} else {
				flags[f.Name] = predict.Something
			}
		}
	})
	return flags
}

// topicPredictor predicts documentation topics.
type topicPredictor struct{}

func (topicPredictor) Predict(prefix string) []string {
	topics, err := docs.GetAllTopics()
	if err != nil {
		return nil
	}
	return topics
}
