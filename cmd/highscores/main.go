// highscores runs the HighScores leaderboard lookups against DynamoDB or a
// local store.
//
// # Commands
//
//	highscores query         Run the four leaderboard lookups
//	highscores plan          Print the query plans without running them
//	highscores seed          Populate the table with random scores
//	highscores create-table  Create every table in the schema
//	highscores whoami        Print the AWS caller identity
//	highscores version       Print the version
//
// # Quick Start
//
// Against a local store kept in ./data:
//
//	highscores seed --local --db ./data --users 10
//	highscores query --local --db ./data --user CFGV
//
// Against AWS with a shared credentials profile:
//
//	highscores query --profile adminuser --region eu-west-1 --user CFGV
//
// Configuration (optional): highscores.yaml is searched for from the working
// directory upwards. Flags override the file.
//
//	profile: adminuser
//	region: eu-west-1
//	local: true
//	db: ./data
package main

import (
	"fmt"
	"os"
)

const version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "highscores: %v\n", err)
		os.Exit(1)
	}
}
