package cmd

import (
	"flag"

	"github.com/etnz/pocket"
	"github.com/etnz/pocket/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion describes the commands registered in c, and their flags, for shell completion.
func Completion(c *subcommands.Commander) *complete.Command {
	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: map[string]complete.Predictor{},
	}
	c.VisitAll(func(f *flag.Flag) { root.Flags[f.Name] = flagPredictor(f) })

	c.VisitCommands(func(_ *subcommands.CommandGroup, cmd subcommands.Command) {
		fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
		cmd.SetFlags(fs)
		sub := &complete.Command{Flags: map[string]complete.Predictor{}}
		fs.VisitAll(func(f *flag.Flag) { sub.Flags[f.Name] = flagPredictor(f) })
		switch cmd.Name() {
		case "topic":
			topics, _ := docs.GetAllTopics()
			sub.Args = predict.Set(topics)
		case "import":
			sub.Args = predict.Files("*")
		case "help":
			var names []string
			c.VisitCommands(func(_ *subcommands.CommandGroup, cmd subcommands.Command) { names = append(names, cmd.Name()) })
			sub.Args = predict.Set(names)
		}
		root.Sub[cmd.Name()] = sub
	})
	return root
}

func flagPredictor(f *flag.Flag) complete.Predictor {
	if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
		return predict.Nothing
	}
	switch f.Name {
	case "cat":
		var cats []string
		for _, c := range pocket.AssetCategories {
			cats = append(cats, string(c))
		}
		return predict.Set(cats)
	case "c":
		return predict.Set(pocket.Categories)
	case "format":
		return predict.Set{"term", "md", "html"}
	case "db", "o":
		return predict.Files("*")
	case "d", "remind":
		return predict.Set{"0d", "-1d", "-1w", "-1m"}
	}
	return predict.Something
}
