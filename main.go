package main

import (
	"os"

	"github.com/rs/zerolog/log"

	_ "time/tzdata"

	"moodbot/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Error().Err(err).Msg("moodbot failed")
		os.Exit(1)
	}
}
