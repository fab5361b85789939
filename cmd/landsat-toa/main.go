package main

import (
	"os"

	"github.com/airbusgeo/godal"
	"github.com/forest-guardian/landsat-toa/internal/properties"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debugf("no .env file loaded: %v", err)
	}
	properties.ConfigureLogging()
	godal.RegisterAll()

	if err := createCliApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
