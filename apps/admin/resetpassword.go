package main

import (
	"github.com/mroldanv/presente/core/rut"
)

// resetPassword overwrites an account's password without knowing the old one.
func (cli *commandLine) resetPassword(rawRUT, pwd string) error {
	acct, err := cli.acctRepo.GetAccountByRUT(rut.Clean(rawRUT))
	if err != nil {
		return err
	}
	if err := acct.SetPassword(pwd); err != nil {
		return err
	}
	_, err = cli.acctRepo.UpdateAccount(acct.RUT, acct)
	return err
}
