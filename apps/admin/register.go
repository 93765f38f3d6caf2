package main

import (
	"github.com/mroldanv/presente/core/account"
)

// register creates a new account with an empty data partition.
func (cli *commandLine) register(rut, pwd string) error {
	_, err := cli.acctSvc.Register(account.NewAccount{RUT: rut, Password: pwd})
	return err
}
