package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/hivekeeper/internal/buildinfo"
	"github.com/dmitrijs2005/hivekeeper/internal/signerd"
	"github.com/dmitrijs2005/hivekeeper/internal/signerd/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg := config.LoadConfig()
	app, err := signerd.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(context.Background())
}
