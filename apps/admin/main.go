package main

import (
	"log"
	"os"

	"github.com/mroldanv/presente/core"
	"github.com/mroldanv/presente/core/account"
	"github.com/mroldanv/presente/storage/jsondb"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	// set up store
	db, err := jsondb.Open(core.Conf)
	if err != nil {
		logger.Fatal(err)
	}

	// start CLI
	repo := jsondb.NewAccountRepository(db)
	cli := commandLine{
		acctRepo: repo,
		acctSvc:  account.NewService(repo),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
