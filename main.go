package main

import (
	"fmt"
	"os"

	"github.com/Bublikus/groshify-sub000/cmd/analyze"
	"github.com/Bublikus/groshify-sub000/cmd/batch"
	"github.com/Bublikus/groshify-sub000/cmd/categories"
	"github.com/Bublikus/groshify-sub000/cmd/categorize"
	"github.com/Bublikus/groshify-sub000/cmd/root"
	"github.com/Bublikus/groshify-sub000/cmd/serve"
)

func init() {
	root.Init()

	root.Cmd.AddCommand(analyze.Cmd)
	root.Cmd.AddCommand(batch.Cmd)
	root.Cmd.AddCommand(categories.Cmd)
	root.Cmd.AddCommand(categorize.Cmd)
	root.Cmd.AddCommand(serve.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
